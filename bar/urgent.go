package bar

import "time"

const blinkInterval = time.Second

// UrgentTimer drives the 1 Hz blink of urgent blocks. It is inactive unless
// some block is urgent, and its wait channel is nil while inactive so a
// select never wakes for it.
type UrgentTimer struct {
	active  bool
	swapped bool
	started time.Time

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

func NewUrgentTimer() *UrgentTimer {
	return &UrgentTimer{now: time.Now, after: time.After}
}

// Toggle activates the timer, unswapped, or deactivates it.
func (u *UrgentTimer) Toggle(on bool) {
	switch {
	case on && !u.active:
		u.active = true
		u.swapped = false
		u.started = u.now()
	case !on:
		u.active = false
		u.swapped = false
	}
}

// Reset starts the next phase.
func (u *UrgentTimer) Reset() {
	if !u.active {
		return
	}
	u.swapped = !u.swapped
	u.started = u.now()
}

func (u *UrgentTimer) Active() bool { return u.active }

// Swapped reports whether urgent colors are drawn inverted this phase.
func (u *UrgentTimer) Swapped() bool {
	return u.active && u.swapped
}

// Wait fires when the current phase is over.
func (u *UrgentTimer) Wait() <-chan time.Time {
	if !u.active {
		return nil
	}
	d := blinkInterval - u.now().Sub(u.started)
	if d < 0 {
		d = 0
	}
	return u.after(d)
}
