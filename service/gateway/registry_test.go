package gateway

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegisterLastWriterWins(t *testing.T) {
	reg := NewRegistry()

	h1 := NewClient("c1", "alice", nil, 8)
	h2 := NewClient("c2", "alice", nil, 8)
	h3 := NewClient("c3", "alice", nil, 8)

	reg.Register(h1)
	reg.Register(h2)
	reg.Register(h3)

	got, ok := reg.Lookup("alice")
	if !ok {
		t.Fatal("alice should be registered")
	}
	if got != h3 {
		t.Fatalf("lookup returned conn %s, want %s", got.ConnID, h3.ConnID)
	}
}

func TestUnregisterGuardsAgainstStaleClose(t *testing.T) {
	reg := NewRegistry()

	h1 := NewClient("c1", "alice", nil, 8)
	h2 := NewClient("c2", "alice", nil, 8)

	reg.Register(h1)
	reg.Register(h2)

	// A delayed close signal for the replaced session must not evict the
	// newer one.
	reg.Unregister(h1)

	got, ok := reg.Lookup("alice")
	if !ok {
		t.Fatal("alice should still be registered after stale unregister")
	}
	if got != h2 {
		t.Fatalf("lookup returned conn %s, want %s", got.ConnID, h2.ConnID)
	}

	reg.Unregister(h2)
	if _, ok := reg.Lookup("alice"); ok {
		t.Fatal("alice should be gone after the current session unregisters")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	h := NewClient("c1", "alice", nil, 8)

	reg.Register(h)
	reg.Unregister(h)
	reg.Unregister(h) // duplicate close signal is a no-op

	if _, ok := reg.Lookup("alice"); ok {
		t.Fatal("alice should be unregistered")
	}
	if n := reg.ConnCount(); n != 0 {
		t.Fatalf("conn count = %d, want 0", n)
	}
}

func TestAnonymousConnectionsTrackedButNotRoutable(t *testing.T) {
	reg := NewRegistry()
	anon := NewClient("c1", "", nil, 8)

	reg.Register(anon)

	if n := reg.ConnCount(); n != 1 {
		t.Fatalf("conn count = %d, want 1", n)
	}
	if snap := reg.Snapshot(); len(snap) != 0 {
		t.Fatalf("snapshot = %v, want empty", snap)
	}
	if len(reg.Clients()) != 1 {
		t.Fatal("anonymous connection should still receive broadcasts")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	reg := NewRegistry()
	reg.Register(NewClient("c1", "alice", nil, 8))

	snap := reg.Snapshot()
	snap[0] = "mallory"

	if s := reg.Snapshot(); len(s) != 1 || s[0] != "alice" {
		t.Fatalf("mutating a snapshot leaked into the registry: %v", s)
	}
}

func TestSnapshotConsistencyUnderChurn(t *testing.T) {
	reg := NewRegistry()

	valid := make(map[string]bool, 64)
	for i := 0; i < 64; i++ {
		valid[fmt.Sprintf("user-%d", i)] = true
	}

	var churn, readers sync.WaitGroup
	stop := make(chan struct{})

	// Churners register and unregister their own user in a loop.
	for i := 0; i < 64; i++ {
		churn.Add(1)
		go func(i int) {
			defer churn.Done()
			user := fmt.Sprintf("user-%d", i)
			for j := 0; j < 50; j++ {
				c := NewClient(fmt.Sprintf("conn-%d-%d", i, j), user, nil, 1)
				reg.Register(c)
				reg.Unregister(c)
			}
		}(i)
	}

	// Snapshot readers run concurrently; every id they observe must belong
	// to a user that actually registered.
	for i := 0; i < 4; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				for _, u := range reg.Snapshot() {
					if !valid[u] {
						t.Errorf("snapshot contained unknown user %q", u)
						return
					}
				}
			}
		}()
	}

	churn.Wait()
	close(stop)
	readers.Wait()

	// A registration that strictly completes before Snapshot begins must be
	// visible.
	settled := NewClient("settled", "user-0", nil, 1)
	reg.Register(settled)
	found := false
	for _, u := range reg.Snapshot() {
		if u == "user-0" {
			found = true
		}
	}
	if !found {
		t.Fatal("completed registration missing from subsequent snapshot")
	}
}
