// Package ipc is the control socket: length prefixed JSON requests from
// istat-ipc and the replies to them.
package ipc

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"istat/clicks"
)

// MaxMessageSize bounds a single message body.
const MaxMessageSize = 16 << 20

const headerSize = 8

// ErrProtocol marks a malformed message. The connection it came from is
// closed.
var ErrProtocol = errors.New("ipc protocol error")

type RequestKind string

const (
	ReqInfo       RequestKind = "info"
	ReqRefreshAll RequestKind = "refresh_all"
	ReqGetBar     RequestKind = "get_bar"
	ReqGetConfig  RequestKind = "get_config"
	ReqGetTheme   RequestKind = "get_theme"
	ReqSetTheme   RequestKind = "set_theme"
	ReqBarEvent   RequestKind = "bar_event"
	ReqShutdown   RequestKind = "shutdown"
)

// Request is a tagged union. Unit variants travel as a bare string, the
// others as a single key object.
type Request struct {
	Kind RequestKind
	// Theme is the raw theme for set_theme.
	Theme json.RawMessage
	// Event is the payload of bar_event.
	Event *BarEvent
}

type BarEvent struct {
	// Instance is an item index, or a display name.
	Instance string `json:"instance"`
	Event    Event  `json:"event"`
}

type EventKind string

const (
	EventSignal EventKind = "signal"
	EventClick  EventKind = "click"
	EventCustom EventKind = "custom"
)

type Event struct {
	Kind  EventKind
	Click *clicks.Click
	Args  []string
}

func (r Request) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ReqInfo, ReqRefreshAll, ReqGetBar, ReqGetConfig, ReqGetTheme, ReqShutdown:
		return json.Marshal(string(r.Kind))
	case ReqSetTheme:
		t := r.Theme
		if len(t) == 0 {
			t = json.RawMessage("null")
		}
		return json.Marshal(map[string]json.RawMessage{string(r.Kind): t})
	case ReqBarEvent:
		if r.Event == nil {
			return nil, errors.New("bar_event request without an event")
		}
		return json.Marshal(map[string]*BarEvent{string(r.Kind): r.Event})
	default:
		return nil, fmt.Errorf("unknown request %q", r.Kind)
	}
}

func (r *Request) UnmarshalJSON(data []byte) error {
	tag, body, err := untag(data)
	if err != nil {
		return err
	}
	out := Request{Kind: RequestKind(tag)}
	switch out.Kind {
	case ReqInfo, ReqRefreshAll, ReqGetBar, ReqGetConfig, ReqGetTheme, ReqShutdown:
	case ReqSetTheme:
		// theme errors are answered with a failure reply by the server
		if len(body) == 0 {
			body = json.RawMessage("null")
		}
		out.Theme = append(json.RawMessage(nil), body...)
	case ReqBarEvent:
		out.Event = &BarEvent{}
		if err := json.Unmarshal(body, out.Event); err != nil {
			return fmt.Errorf("bar_event: %w", err)
		}
	default:
		return fmt.Errorf("unknown request %q", tag)
	}
	*r = out
	return nil
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EventSignal:
		return json.Marshal(string(e.Kind))
	case EventClick:
		if e.Click == nil {
			return nil, errors.New("click event without a click")
		}
		return json.Marshal(map[string]*clicks.Click{string(e.Kind): e.Click})
	case EventCustom:
		args := e.Args
		if args == nil {
			args = []string{}
		}
		return json.Marshal(map[string][]string{string(e.Kind): args})
	default:
		return nil, fmt.Errorf("unknown event %q", e.Kind)
	}
}

func (e *Event) UnmarshalJSON(data []byte) error {
	tag, body, err := untag(data)
	if err != nil {
		return err
	}
	out := Event{Kind: EventKind(tag)}
	switch out.Kind {
	case EventSignal:
	case EventClick:
		out.Click = &clicks.Click{}
		if err := json.Unmarshal(body, out.Click); err != nil {
			return fmt.Errorf("click: %w", err)
		}
	case EventCustom:
		if err := json.Unmarshal(body, &out.Args); err != nil {
			return fmt.Errorf("custom: %w", err)
		}
		if out.Args == nil {
			out.Args = []string{}
		}
	default:
		return fmt.Errorf("unknown event %q", tag)
	}
	*e = out
	return nil
}

// untag splits an externally tagged value into its tag and body. A bare
// string is a variant without a body.
func untag(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		err := json.Unmarshal(data, &tag)
		return tag, nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("expected one variant, got %d keys", len(m))
	}
	for tag, body := range m {
		if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
			body = nil
		}
		return tag, body, nil
	}
	panic("unreachable")
}

type ResultType string

const (
	Success ResultType = "success"
	Failure ResultType = "failure"
)

type Result struct {
	Type   ResultType `json:"type"`
	Detail *string    `json:"detail"`
}

type ReplyKind string

const (
	ReplyResult ReplyKind = "result"
	ReplyHelp   ReplyKind = "help"
	ReplyValue  ReplyKind = "value"
)

// Reply is a tagged union, always sent in object form.
type Reply struct {
	Kind   ReplyKind
	Result Result
	Help   string
	Value  json.RawMessage
}

func SuccessReply() Reply {
	return Reply{Kind: ReplyResult, Result: Result{Type: Success}}
}

func FailureReply(msg string) Reply {
	return Reply{Kind: ReplyResult, Result: Result{Type: Failure, Detail: &msg}}
}

func HelpReply(text string) Reply {
	return Reply{Kind: ReplyHelp, Help: text}
}

// ValueReply encodes v, or fails the request when v cannot be encoded.
func ValueReply(v any) Reply {
	data, err := json.Marshal(v)
	if err != nil {
		return FailureReply(fmt.Sprintf("failed to encode value: %v", err))
	}
	return Reply{Kind: ReplyValue, Value: data}
}

// IsSuccess reports whether r is a success result.
func (r Reply) IsSuccess() bool {
	return r.Kind == ReplyResult && r.Result.Type == Success
}

func (r Reply) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ReplyResult:
		return json.Marshal(map[string]Result{string(r.Kind): r.Result})
	case ReplyHelp:
		return json.Marshal(map[string]string{string(r.Kind): r.Help})
	case ReplyValue:
		v := r.Value
		if len(v) == 0 {
			v = json.RawMessage("null")
		}
		return json.Marshal(map[string]json.RawMessage{string(r.Kind): v})
	default:
		return nil, fmt.Errorf("unknown reply %q", r.Kind)
	}
}

func (r *Reply) UnmarshalJSON(data []byte) error {
	tag, body, err := untag(data)
	if err != nil {
		return err
	}
	out := Reply{Kind: ReplyKind(tag)}
	switch out.Kind {
	case ReplyResult:
		if err := json.Unmarshal(body, &out.Result); err != nil {
			return fmt.Errorf("result: %w", err)
		}
	case ReplyHelp:
		if err := json.Unmarshal(body, &out.Help); err != nil {
			return fmt.Errorf("help: %w", err)
		}
	case ReplyValue:
		if body == nil {
			body = json.RawMessage("null")
		}
		out.Value = append(json.RawMessage(nil), body...)
	default:
		return fmt.Errorf("unknown reply %q", tag)
	}
	*r = out
	return nil
}

// Encode frames v as a little endian u64 length followed by its JSON.
func Encode(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(body) > MaxMessageSize {
		return nil, fmt.Errorf("%w: message of %d bytes is too large", ErrProtocol, len(body))
	}
	out := make([]byte, headerSize, headerSize+len(body))
	binary.LittleEndian.PutUint64(out, uint64(len(body)))
	return append(out, body...), nil
}

// WriteMessage writes one framed message.
func WriteMessage(w io.Writer, v any) error {
	data, err := Encode(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadMessage reads one framed message into v. It returns io.EOF when the
// stream ends cleanly between messages.
func ReadMessage(r io.Reader, v any) error {
	var header [headerSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: short header", ErrProtocol)
		}
		return err
	}
	n := binary.LittleEndian.Uint64(header[:])
	if n > MaxMessageSize {
		return fmt.Errorf("%w: message of %d bytes is too large", ErrProtocol, n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: short body, wanted %d bytes", ErrProtocol, n)
		}
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	return nil
}
