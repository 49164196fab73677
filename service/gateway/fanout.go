package gateway

import (
	"sync"

	"VoChat/tools/safe"
)

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout is a small worker pool for one-payload-to-many-connections pushes.
// It exists so a presence broadcast to thousands of clients never runs on
// the lifecycle goroutine that triggered it.
type Fanout struct {
	jobs chan fanoutJob
	quit chan struct{}
	once sync.Once
}

func NewFanout(workers, queue int) *Fanout {
	if workers <= 0 {
		workers = 4
	}
	if queue <= 0 {
		queue = 64
	}
	f := &Fanout{
		jobs: make(chan fanoutJob, queue),
		quit: make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		safe.Go("fanout-worker", f.run)
	}
	return f
}

func (f *Fanout) run() {
	for {
		select {
		case <-f.quit:
			return
		case job := <-f.jobs:
			for _, c := range job.conns {
				// Slow or dead clients just miss this payload.
				c.Enqueue(job.payload)
			}
		}
	}
}

// Broadcast hands the payload to the pool. After Close it is a no-op: hijacked
// websocket connections can still be tearing down while the process shuts
// down, and a late lifecycle broadcast must not be able to panic the pool.
func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	select {
	case <-f.quit:
		return
	default:
	}
	select {
	case <-f.quit:
	case f.jobs <- fanoutJob{conns: conns, payload: payload}:
	}
}

func (f *Fanout) Close() {
	f.once.Do(func() { close(f.quit) })
}
