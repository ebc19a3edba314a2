package app

import (
	"sync"
	"testing"
	"time"

	"github.com/holoverse/presence/internal/domain"
)

type recordedLeave struct {
	World domain.WorldID
	User  domain.UserID
	Epoch uint64
}

type fakeLeaver struct {
	mu     sync.Mutex
	leaves []recordedLeave
}

func (l *fakeLeaver) Leave(w domain.WorldID, u domain.UserID, epoch uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.leaves = append(l.leaves, recordedLeave{World: w, User: u, Epoch: epoch})
}

func (l *fakeLeaver) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.leaves)
}

func (l *fakeLeaver) last() recordedLeave {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.leaves[len(l.leaves)-1]
}

func TestEpochsAreMonotonicPerWorldUserPair(t *testing.T) {
	sup := NewSupervisor(time.Minute, &fakeLeaver{})

	if e := sup.Acquire("w1", "alice"); e != 1 {
		t.Fatalf("first epoch = %d, want 1", e)
	}
	if e := sup.Acquire("w1", "alice"); e != 2 {
		t.Fatalf("second epoch = %d, want 2", e)
	}
	// Independent keys get independent counters.
	if e := sup.Acquire("w2", "alice"); e != 1 {
		t.Fatalf("other-world epoch = %d, want 1", e)
	}
	if e := sup.Acquire("w1", "bob"); e != 1 {
		t.Fatalf("other-user epoch = %d, want 1", e)
	}
}

func TestGraceExpirySendsStaleEpochLeave(t *testing.T) {
	leaver := &fakeLeaver{}
	sup := NewSupervisor(20*time.Millisecond, leaver)

	epoch := sup.Acquire("w1", "alice")
	sup.Disconnected("w1", "alice", epoch)

	waitFor(t, "grace expiry leave", func() bool { return leaver.count() == 1 })
	got := leaver.last()
	if got.World != "w1" || got.User != "alice" || got.Epoch != epoch {
		t.Fatalf("leave = %+v", got)
	}
}

func TestReconnectWithinGraceCancelsLeave(t *testing.T) {
	leaver := &fakeLeaver{}
	sup := NewSupervisor(60*time.Millisecond, leaver)

	epoch := sup.Acquire("w1", "alice")
	sup.Disconnected("w1", "alice", epoch)

	// Reconnect before the window closes.
	if e := sup.Acquire("w1", "alice"); e != epoch+1 {
		t.Fatalf("reconnect epoch = %d, want %d", e, epoch+1)
	}

	time.Sleep(120 * time.Millisecond)
	if n := leaver.count(); n != 0 {
		t.Fatalf("cancelled timer still produced %d leaves", n)
	}
}

func TestDisconnectOfSupersededSessionIsIgnored(t *testing.T) {
	leaver := &fakeLeaver{}
	sup := NewSupervisor(20*time.Millisecond, leaver)

	old := sup.Acquire("w1", "alice")
	_ = sup.Acquire("w1", "alice") // newer session took over

	sup.Disconnected("w1", "alice", old)
	time.Sleep(60 * time.Millisecond)
	if n := leaver.count(); n != 0 {
		t.Fatalf("superseded disconnect armed a timer, got %d leaves", n)
	}
}

func TestExplicitLeaveForgetsGraceTimer(t *testing.T) {
	leaver := &fakeLeaver{}
	sup := NewSupervisor(20*time.Millisecond, leaver)

	epoch := sup.Acquire("w1", "alice")
	sup.Disconnected("w1", "alice", epoch)
	sup.Forget("w1", "alice", epoch)

	time.Sleep(60 * time.Millisecond)
	if n := leaver.count(); n != 0 {
		t.Fatalf("forgotten timer still produced %d leaves", n)
	}
}

func TestForgetWithStaleEpochKeepsGraceTimer(t *testing.T) {
	leaver := &fakeLeaver{}
	sup := NewSupervisor(20*time.Millisecond, leaver)

	old := sup.Acquire("w1", "alice")
	live := sup.Acquire("w1", "alice")
	sup.Disconnected("w1", "alice", live)

	// A leave from the superseded session cannot cancel the live timer.
	sup.Forget("w1", "alice", old)

	waitFor(t, "live session eviction", func() bool { return leaver.count() == 1 })
	if got := leaver.last(); got.Epoch != live {
		t.Fatalf("evicted epoch = %d, want %d", got.Epoch, live)
	}
}
