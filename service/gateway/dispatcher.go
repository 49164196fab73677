package gateway

import (
	"fmt"
)

// Handler processes one inbound event name.
type Handler interface {
	Event() string
	Handle(ctx *Context, c *Client, data map[string]any) error
}

// Context hands the server to handlers without exposing package globals.
type Context struct {
	S *Server
}

type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]Handler)}
}

func (d *Dispatcher) Register(h Handler) { d.handlers[h.Event()] = h }

func (d *Dispatcher) Dispatch(ctx *Context, c *Client, f *Frame) error {
	h, ok := d.handlers[f.Event]
	if !ok {
		return fmt.Errorf("no handler for event=%q", f.Event)
	}
	return h.Handle(ctx, c, f.Data)
}
