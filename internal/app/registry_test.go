package app

import (
	"testing"

	"github.com/holoverse/presence/internal/domain"
)

func TestRegistryBindAndJoinTracking(t *testing.T) {
	r := NewRegistry()
	cancelled := false
	conn := &fakeConn{}

	r.Bind("sid-1", &domain.User{ID: "alice", Name: "Alice"}, conn, func() { cancelled = true })

	user, gotConn, ok := r.Session("sid-1")
	if !ok || user.ID != "alice" || gotConn != conn {
		t.Fatalf("session lookup failed: ok=%v user=%+v", ok, user)
	}

	r.SetJoined("sid-1", "w1", 3)
	r.SetJoined("sid-1", "w2", 1)

	if epoch, held := r.JoinedEpoch("sid-1", "w1"); !held || epoch != 3 {
		t.Fatalf("w1 epoch = %d held=%v", epoch, held)
	}
	if worlds := r.JoinedWorlds("sid-1"); len(worlds) != 2 || worlds["w2"] != 1 {
		t.Fatalf("joined worlds = %v", worlds)
	}

	epoch, held := r.ClearJoined("sid-1", "w1")
	if !held || epoch != 3 {
		t.Fatalf("clear returned %d/%v", epoch, held)
	}
	if _, held := r.JoinedEpoch("sid-1", "w1"); held {
		t.Fatal("w1 hold should be cleared")
	}

	r.Unbind("sid-1")
	if !cancelled {
		t.Fatal("unbind should cancel the session context")
	}
	if _, _, ok := r.Session("sid-1"); ok {
		t.Fatal("session should be gone")
	}
	if worlds := r.JoinedWorlds("sid-1"); worlds != nil {
		t.Fatalf("joined worlds after unbind = %v", worlds)
	}

	// Unbinding an unknown session is harmless.
	r.Unbind("sid-1")
}

func TestRegistryUpdateNameValidates(t *testing.T) {
	r := NewRegistry()
	r.Bind("sid-1", &domain.User{ID: "alice", Name: "Alice"}, &fakeConn{}, func() {})

	if err := r.UpdateName("sid-1", ""); err != domain.ErrNameEmpty {
		t.Fatalf("got %v, want ErrNameEmpty", err)
	}
	if err := r.UpdateName("sid-1", "Wanderer"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	user, _ := r.User("sid-1")
	if user.Name != "Wanderer" {
		t.Fatalf("name = %s", user.Name)
	}
}
