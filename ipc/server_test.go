package ipc

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"istat/bar"
	"istat/blocks"
	"istat/clicks"
	"istat/config"
	"istat/dispatch"
)

type fixture struct {
	path     string
	cfg      *config.Shared
	bar      *bar.Bar
	disp     *dispatch.Dispatcher
	inboxes  []*dispatch.Inbox
	shutdown chan struct{}
	done     chan error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Defaults()
	require.NoError(t, json.Unmarshal([]byte(`{"items":[
		{"type":"raw","full_text":"0"},
		{"type":"raw","full_text":"1"},
		{"type":"raw","full_text":"2","name":"custom_name"}
	]}`), cfg))

	f := &fixture{
		path:     filepath.Join(t.TempDir(), "istat.sock"),
		cfg:      config.NewShared(cfg),
		bar:      bar.New(3),
		disp:     dispatch.New(3),
		shutdown: make(chan struct{}),
		done:     make(chan error, 1),
	}
	for i := 0; i < 3; i++ {
		in := dispatch.NewInbox()
		f.disp.Set(i, in)
		f.inboxes = append(f.inboxes, in)
	}

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := Listen(f.path, Runtime{
		Config:     f.cfg,
		Bar:        f.bar,
		Dispatcher: f.disp,
		Shutdown: func() {
			close(f.shutdown)
			cancel()
		},
	})
	require.NoError(t, err)
	go func() { f.done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-f.done
	})
	return f
}

func (f *fixture) send(t *testing.T, req Request) Reply {
	t.Helper()
	reply, err := Send(f.path, req)
	require.NoError(t, err)
	return reply
}

func nextEvent(t *testing.T, in *dispatch.Inbox) dispatch.Event {
	t.Helper()
	select {
	case ev := <-in.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func TestSocketIsPrivate(t *testing.T) {
	f := newFixture(t)
	st, err := os.Stat(f.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestInfoAndEventByName(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, Request{Kind: ReqInfo})
	require.Equal(t, ReplyValue, reply.Kind)
	assert.JSONEq(t, `{"0":"raw","1":"raw","2":"custom_name"}`, string(reply.Value))

	reply = f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "custom_name", Event: Event{Kind: EventSignal}}})
	assert.True(t, reply.IsSuccess())
	assert.Equal(t, dispatch.SignalEvent{}, nextEvent(t, f.inboxes[2]))

	reply = f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "nobody", Event: Event{Kind: EventSignal}}})
	assert.Equal(t, FailureReply("no item found with name: nobody"), reply)

	reply = f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "-1", Event: Event{Kind: EventSignal}}})
	assert.Equal(t, FailureReply("no item found with name: -1"), reply)
}

func TestClickReachesOnlyItsItem(t *testing.T) {
	f := newFixture(t)
	reply := f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{
		Instance: "1",
		Event:    Event{Kind: EventClick, Click: &clicks.Click{Button: clicks.Left}},
	}})
	assert.True(t, reply.IsSuccess())

	ev := nextEvent(t, f.inboxes[1])
	require.IsType(t, dispatch.ClickEvent{}, ev)
	assert.Equal(t, "1", ev.(dispatch.ClickEvent).Instance)
	assert.Empty(t, f.inboxes[0].Events())
}

func TestRefreshAllBroadcasts(t *testing.T) {
	f := newFixture(t)
	assert.True(t, f.send(t, Request{Kind: ReqRefreshAll}).IsSuccess())
	for _, in := range f.inboxes {
		assert.Equal(t, dispatch.SignalEvent{}, nextEvent(t, in))
	}
}

func TestCustomEvents(t *testing.T) {
	f := newFixture(t)

	go func() {
		ev := (<-f.inboxes[0].Events()).(*dispatch.CustomEvent)
		ev.Drop()
	}()
	reply := f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "0", Event: Event{Kind: EventCustom, Args: []string{"x"}}}})
	assert.Equal(t, FailureReply("bar item not listening for response"), reply)

	go func() {
		ev := (<-f.inboxes[1].Events()).(*dispatch.CustomEvent)
		if len(ev.Args) == 0 {
			ev.Respond(dispatch.HelpResponse("usage: thing"))
			return
		}
		ev.Respond(dispatch.ValueResponse(ev.Args))
	}()
	reply = f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "1", Event: Event{Kind: EventCustom, Args: []string{"a", "b"}}}})
	require.Equal(t, ReplyValue, reply.Kind)
	assert.JSONEq(t, `["a","b"]`, string(reply.Value))

	go func() {
		ev := (<-f.inboxes[1].Events()).(*dispatch.CustomEvent)
		ev.Respond(dispatch.HelpResponse("usage: thing"))
	}()
	reply = f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "1", Event: Event{Kind: EventCustom}}})
	assert.Equal(t, HelpReply("usage: thing"), reply)

	f.inboxes[2].Close()
	reply = f.send(t, Request{Kind: ReqBarEvent, Event: &BarEvent{Instance: "2", Event: Event{Kind: EventCustom}}})
	assert.Equal(t, ReplyResult, reply.Kind)
	assert.Equal(t, Failure, reply.Result.Type)
}

func TestThemeRequests(t *testing.T) {
	f := newFixture(t)

	reply := f.send(t, Request{Kind: ReqSetTheme, Theme: json.RawMessage(`{"bg":"#123456"}`)})
	assert.True(t, reply.IsSuccess())
	assert.Equal(t, "#123456", f.cfg.Theme().Bg.String())
	select {
	case <-f.disp.Refresh():
	default:
		t.Fatal("set_theme did not schedule a refresh")
	}

	reply = f.send(t, Request{Kind: ReqSetTheme, Theme: json.RawMessage(`{"powerline":[]}`)})
	assert.Equal(t, FailureReply("theme.powerline must not be empty"), reply)

	reply = f.send(t, Request{Kind: ReqSetTheme})
	assert.Equal(t, FailureReply("decode theme: expected an object, got null"), reply)
	assert.Equal(t, "#123456", f.cfg.Theme().Bg.String())

	reply = f.send(t, Request{Kind: ReqGetTheme})
	require.Equal(t, ReplyValue, reply.Kind)
	var th map[string]any
	require.NoError(t, json.Unmarshal(reply.Value, &th))
	assert.Equal(t, "#123456", th["bg"])
}

func TestGetBarAndConfig(t *testing.T) {
	f := newFixture(t)
	f.bar.Set(1, blocks.Block{FullText: "one", Instance: "1"})

	reply := f.send(t, Request{Kind: ReqGetBar})
	require.Equal(t, ReplyValue, reply.Kind)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(reply.Value, &got))
	require.Len(t, got, 3)
	assert.Equal(t, "one", got[1]["full_text"])

	reply = f.send(t, Request{Kind: ReqGetConfig})
	require.Equal(t, ReplyValue, reply.Kind)
	var cfg map[string]any
	require.NoError(t, json.Unmarshal(reply.Value, &cfg))
	assert.Len(t, cfg["items"], 3)
}

func TestShutdown(t *testing.T) {
	f := newFixture(t)
	conn, err := net.Dial("unix", f.path)
	require.NoError(t, err)
	defer conn.Close()

	body := []byte(`{"shutdown": null}`)
	header := make([]byte, 8)
	binary.LittleEndian.PutUint64(header, uint64(len(body)))
	_, err = conn.Write(append(header, body...))
	require.NoError(t, err)

	var reply Reply
	require.NoError(t, ReadMessage(conn, &reply))
	assert.True(t, reply.IsSuccess())

	select {
	case <-f.shutdown:
	case <-time.After(time.Second):
		t.Fatal("shutdown was not requested")
	}
	select {
	case err := <-f.done:
		assert.NoError(t, err)
		f.done <- err
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
	_, err = os.Stat(f.path)
	assert.True(t, os.IsNotExist(err))
}

func TestProtocolErrorClosesOnlyThatConnection(t *testing.T) {
	f := newFixture(t)
	conn, err := net.Dial("unix", f.path)
	require.NoError(t, err)
	_, err = conn.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	conn.Close()

	assert.True(t, f.send(t, Request{Kind: ReqRefreshAll}).IsSuccess())
}
