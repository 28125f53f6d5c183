package bar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUrgentTimer(t *testing.T) {
	now := time.Unix(100, 0)
	var waited []time.Duration
	u := NewUrgentTimer()
	u.now = func() time.Time { return now }
	u.after = func(d time.Duration) <-chan time.Time {
		waited = append(waited, d)
		return make(chan time.Time)
	}

	assert.Nil(t, u.Wait())
	u.Reset()
	assert.False(t, u.Active())

	u.Toggle(true)
	assert.True(t, u.Active())
	assert.False(t, u.Swapped())

	now = now.Add(300 * time.Millisecond)
	assert.NotNil(t, u.Wait())
	u.Toggle(true)
	assert.False(t, u.Swapped())

	u.Reset()
	assert.True(t, u.Swapped())
	now = now.Add(2 * time.Second)
	u.Wait()
	u.Reset()
	assert.False(t, u.Swapped())
	u.Wait()

	assert.Equal(t, []time.Duration{700 * time.Millisecond, 0, time.Second}, waited)

	u.Reset()
	u.Toggle(false)
	assert.False(t, u.Swapped())
	assert.Nil(t, u.Wait())
}
