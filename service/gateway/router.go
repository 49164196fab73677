package gateway

import (
	"VoChat/logger"
)

// Router delivers events to whoever is connected right now. At-most-once,
// fire and forget: a receiver with no live connection means a silent drop,
// because durability already happened upstream of this call.
type Router struct {
	reg *Registry
}

func NewRouter(reg *Registry) *Router {
	return &Router{reg: reg}
}

// Route looks up the event's receiver and enqueues the tagged payload on its
// connection. It never returns an error to the caller: unroutable events are
// not a failure mode of this component.
func (rt *Router) Route(ev DeliveryEvent) {
	if ev == nil {
		return
	}
	to := ev.Receiver()
	if to == "" {
		logger.Warnf("[router] event with empty receiver dropped")
		return
	}
	c, ok := rt.reg.Lookup(to)
	if !ok {
		logger.Debugf("[router] receiver %s not connected, dropping", to)
		return
	}
	event, data := ev.outbound()
	payload, err := marshalFrame(event, data)
	if err != nil {
		logger.Errorf("[router] marshal %s frame: %v", event, err)
		return
	}
	if !c.Enqueue(payload) {
		logger.Warnf("[router] send queue full or conn down, dropped %s for user=%s conn=%s",
			event, to, c.ConnID)
	}
}
