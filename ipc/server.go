package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"istat/bar"
	"istat/clicks"
	"istat/config"
	"istat/dispatch"
	"istat/logging"
	"istat/theme"
)

const notListening = "bar item not listening for response"

// Runtime is the state the server reads and drives.
type Runtime struct {
	Config     *config.Shared
	Bar        *bar.Bar
	Dispatcher *dispatch.Dispatcher
	// Clicks routes bar_event clicks. It defaults to the dispatcher.
	Clicks clicks.Router
	// Shutdown stops the whole bar. It is called after the reply is sent.
	Shutdown func()
}

type Server struct {
	path string
	ln   net.Listener
	rt   Runtime

	wg sync.WaitGroup
}

// Listen binds the socket at path, replacing a stale socket file.
func Listen(path string, rt Runtime) (*Server, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	if rt.Clicks == nil {
		rt.Clicks = rt.Dispatcher
	}
	if rt.Shutdown == nil {
		rt.Shutdown = func() {}
	}
	return &Server{path: path, ln: ln, rt: rt}, nil
}

func (s *Server) Path() string { return s.path }

// Serve accepts connections until ctx is done, then removes the socket.
func (s *Server) Serve(ctx context.Context) error {
	logging.InfoLog.Printf("ipc listening on %s", s.path)
	go func() {
		<-ctx.Done()
		s.ln.Close()
	}()
	defer func() {
		s.wg.Wait()
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			logging.WarnLog.Printf("failed to remove socket %s: %v", s.path, err)
		}
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	id := uuid.NewString()
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	logging.DebugLog.Printf("ipc[%s]: connected", id)
	for {
		var req Request
		if err := ReadMessage(conn, &req); err != nil {
			switch {
			case errors.Is(err, io.EOF):
				logging.DebugLog.Printf("ipc[%s]: closed", id)
			case ctx.Err() != nil:
			default:
				logging.WarnLog.Printf("ipc[%s]: %v", id, err)
			}
			return
		}
		logging.DebugLog.Printf("ipc[%s]: %s", id, req.Kind)

		reply := s.handle(ctx, req)
		if err := WriteMessage(conn, reply); err != nil {
			logging.WarnLog.Printf("ipc[%s]: write reply: %v", id, err)
			return
		}
		if req.Kind == ReqShutdown {
			s.rt.Shutdown()
			return
		}
	}
}

func (s *Server) handle(ctx context.Context, req Request) Reply {
	switch req.Kind {
	case ReqInfo:
		names := s.rt.Config.Get().Names()
		out := make(map[string]string, len(names))
		for i, name := range names {
			out[strconv.Itoa(i)] = name
		}
		return ValueReply(out)
	case ReqRefreshAll:
		s.rt.Dispatcher.BroadcastSignal()
		return SuccessReply()
	case ReqGetBar:
		return ValueReply(s.rt.Bar.Snapshot())
	case ReqGetConfig:
		return ValueReply(s.rt.Config.Get())
	case ReqGetTheme:
		return ValueReply(s.rt.Config.Theme())
	case ReqSetTheme:
		t, err := theme.Decode(req.Theme)
		if err != nil {
			return FailureReply(err.Error())
		}
		s.rt.Config.SetTheme(t)
		s.rt.Dispatcher.ManualRefresh()
		return SuccessReply()
	case ReqBarEvent:
		return s.barEvent(ctx, req.Event)
	case ReqShutdown:
		return SuccessReply()
	default:
		return FailureReply(fmt.Sprintf("unknown request %q", req.Kind))
	}
}

// resolve finds an item by index, or by display name when instance is not a
// number.
func (s *Server) resolve(instance string) (int, error) {
	if idx, err := strconv.ParseUint(instance, 10, 31); err == nil {
		return int(idx), nil
	}
	for i, it := range s.rt.Config.Get().Items {
		if it.DisplayName() == instance {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no item found with name: %s", instance)
}

func (s *Server) barEvent(ctx context.Context, be *BarEvent) Reply {
	if be == nil {
		return FailureReply("bar_event without an event")
	}
	idx, err := s.resolve(be.Instance)
	if err != nil {
		return FailureReply(err.Error())
	}

	switch be.Event.Kind {
	case EventSignal:
		err = s.rt.Dispatcher.Send(idx, dispatch.SignalEvent{})
	case EventClick:
		if be.Event.Click == nil {
			return FailureReply("click event without a click")
		}
		c := *be.Event.Click
		c.Instance = strconv.Itoa(idx)
		err = s.rt.Clicks.RouteClick(idx, c)
	case EventCustom:
		return s.custom(ctx, idx, be.Event.Args)
	default:
		return FailureReply(fmt.Sprintf("unknown event %q", be.Event.Kind))
	}
	if err != nil {
		return FailureReply(err.Error())
	}
	return SuccessReply()
}

func (s *Server) custom(ctx context.Context, idx int, args []string) Reply {
	ev, reply := dispatch.NewCustomEvent(args)
	if err := s.rt.Dispatcher.Send(idx, ev); err != nil {
		return FailureReply(err.Error())
	}
	select {
	case resp, ok := <-reply:
		if !ok {
			return FailureReply(notListening)
		}
		if resp.IsHelp() {
			return HelpReply(resp.Help)
		}
		return ValueReply(resp.Value)
	case <-ctx.Done():
		ev.Drop()
		return FailureReply(notListening)
	}
}
