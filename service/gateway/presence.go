package gateway

import (
	"VoChat/logger"
)

// Broadcaster pushes the full online-user set to every connected client.
// It fires only on lifecycle changes, never on a timer; each broadcast is a
// complete replacement set, so redundant or reordered snapshots are harmless
// on the receiving end.
type Broadcaster struct {
	reg    *Registry
	fanout *Fanout
}

func NewBroadcaster(reg *Registry, fanout *Fanout) *Broadcaster {
	return &Broadcaster{reg: reg, fanout: fanout}
}

// Broadcast snapshots the registry and fans the set out to all connections,
// anonymous ones included.
func (b *Broadcaster) Broadcast() {
	snap := b.reg.Snapshot()
	payload, err := marshalFrame(EventOnlineUsers, snap)
	if err != nil {
		logger.Errorf("[presence] marshal snapshot: %v", err)
		return
	}
	b.fanout.Broadcast(b.reg.Clients(), payload)
}
