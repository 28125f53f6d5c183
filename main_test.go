package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"istat/clicks"
	"istat/config"
	"istat/ipc"
)

func TestActionRouter(t *testing.T) {
	var items []config.Item
	require.NoError(t, json.Unmarshal([]byte(`[
		{"type":"raw"},
		{"type":"raw","actions":{"left_click":[{"modifiers":["Shift"],"command":"shifted"},"plain"]}}
	]`), &items))

	var spawned []string
	var routed []int
	r := actionRouter{
		items: items,
		next: clicks.RouterFunc(func(idx int, _ clicks.Click) error {
			routed = append(routed, idx)
			return nil
		}),
		spawn: func(cmd string) { spawned = append(spawned, cmd) },
	}

	require.NoError(t, r.RouteClick(0, clicks.Click{Button: clicks.Left}))
	require.NoError(t, r.RouteClick(1, clicks.Click{Button: clicks.Left}))
	require.NoError(t, r.RouteClick(1, clicks.Click{Button: clicks.Left, Modifiers: []clicks.Modifier{clicks.Shift}}))
	require.NoError(t, r.RouteClick(1, clicks.Click{Button: clicks.Right}))
	require.NoError(t, r.RouteClick(9, clicks.Click{Button: clicks.Left}))

	assert.Equal(t, []string{"plain", "shifted", "plain"}, spawned)
	assert.Equal(t, []int{0, 1, 9}, routed)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	assert.NotNil(t, cmd.Flags().Lookup("config"))
	assert.NotNil(t, cmd.Flags().Lookup("socket"))
	assert.Error(t, cmd.Args(cmd, []string{"extra"}))
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// barTexts returns the full_text of every block on the bar, or nil when the
// bar cannot be read.
func barTexts(sock string) []string {
	reply, err := ipc.Send(sock, ipc.Request{Kind: ipc.ReqGetBar})
	if err != nil || reply.Kind != ipc.ReplyValue {
		return nil
	}
	var blocks []struct {
		FullText string `json:"full_text"`
	}
	if err := json.Unmarshal(reply.Value, &blocks); err != nil {
		return nil
	}
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.FullText
	}
	return out
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"items":[
		{"type":"script","command":"printf 'signal: %s' \"${I3_SIGNAL:-false}\""},
		{"type":"script","command":"printf 'button: %s' \"${I3_BUTTON:-none}\""},
		{"type":"raw","full_text":"2","name":"custom_name"}
	]}`), 0o644))
	sock := filepath.Join(dir, "istat.sock")

	stdin, clicksIn := io.Pipe()
	t.Cleanup(func() { clicksIn.Close() })
	out := &syncBuffer{}

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfgPath, sock, stdin, out) }()

	require.Eventually(t, func() bool {
		s := out.String()
		return strings.Contains(s, `"full_text":"signal: false"`) &&
			strings.Contains(s, `"full_text":"button: none"`) &&
			strings.Contains(s, `"full_text":"2"`)
	}, 5*time.Second, 10*time.Millisecond)

	lines := strings.Split(out.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.JSONEq(t, `{"version":1,"click_events":true}`, lines[0])
	assert.Equal(t, "[", lines[1])
	assert.True(t, strings.HasSuffix(lines[2], "],"), lines[2])

	require.Eventually(t, func() bool {
		_, err := os.Stat(sock)
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	reply, err := ipc.Send(sock, ipc.Request{Kind: ipc.ReqRefreshAll})
	require.NoError(t, err)
	assert.True(t, reply.IsSuccess())
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), `"full_text":"signal: true"`)
	}, 5*time.Second, 10*time.Millisecond)

	reply, err = ipc.Send(sock, ipc.Request{Kind: ipc.ReqBarEvent, Event: &ipc.BarEvent{
		Instance: "custom_name",
		Event:    ipc.Event{Kind: ipc.EventSignal},
	}})
	require.NoError(t, err)
	assert.True(t, reply.IsSuccess(), "%+v", reply)

	reply, err = ipc.Send(sock, ipc.Request{Kind: ipc.ReqBarEvent, Event: &ipc.BarEvent{
		Instance: "custom_name",
		Event:    ipc.Event{Kind: ipc.EventCustom, Args: []string{"anything"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, ipc.FailureReply("bar item not listening for response"), reply)

	_, err = io.WriteString(clicksIn, "[\n{\"instance\":\"1\",\"button\":3}\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		texts := barTexts(sock)
		return len(texts) == 3 && texts[1] == "button: 3"
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"signal: true", "button: 3", "2"}, barTexts(sock))

	reply, err = ipc.Send(sock, ipc.Request{Kind: ipc.ReqShutdown})
	require.NoError(t, err)
	assert.True(t, reply.IsSuccess())
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not return after shutdown")
	}
}
