package dispatch

import (
	"sync"

	"istat/clicks"
)

// Event is delivered to a single item's inbox.
type Event interface {
	isEvent()
}

// ClickEvent is a click on the item's block.
type ClickEvent struct {
	clicks.Click
}

// SignalEvent asks the item to refresh.
type SignalEvent struct{}

// CustomEvent carries argv from an IPC client and a one-shot reply.
type CustomEvent struct {
	Args []string

	reply chan CustomResponse
	once  sync.Once
}

func (ClickEvent) isEvent()   {}
func (SignalEvent) isEvent()  {}
func (*CustomEvent) isEvent() {}

// NewCustomEvent returns the event and the channel its answer arrives on.
// The channel is closed without a value if the event is dropped.
func NewCustomEvent(args []string) (*CustomEvent, <-chan CustomResponse) {
	ch := make(chan CustomResponse, 1)
	return &CustomEvent{Args: args, reply: ch}, ch
}

// Respond answers the event. Only the first answer or drop counts.
func (e *CustomEvent) Respond(r CustomResponse) {
	e.once.Do(func() {
		e.reply <- r
		close(e.reply)
	})
}

// Drop abandons the event without an answer.
func (e *CustomEvent) Drop() {
	e.once.Do(func() { close(e.reply) })
}

// CustomResponse is either ANSI help text or an arbitrary JSON value.
type CustomResponse struct {
	Help   string
	Value  any
	isHelp bool
}

func HelpResponse(text string) CustomResponse {
	return CustomResponse{Help: text, isHelp: true}
}

func ValueResponse(v any) CustomResponse {
	return CustomResponse{Value: v}
}

func (r CustomResponse) IsHelp() bool { return r.isHelp }
