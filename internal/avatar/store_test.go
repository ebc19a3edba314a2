package avatar

import (
	"encoding/json"
	"testing"

	"github.com/holoverse/presence/internal/domain"
)

func TestUnknownUserGetsZeroAvatar(t *testing.T) {
	s := NewStore()
	got := s.Get("nobody")
	if got.Model != "" || got.Blob != nil {
		t.Fatalf("got %+v, want zero descriptor", got)
	}
}

func TestSetThenGetRoundTrip(t *testing.T) {
	s := NewStore()
	s.Set("alice", domain.AvatarState{Model: "fox", Blob: json.RawMessage(`{"hat":"red"}`)})

	got := s.Get("alice")
	if got.Model != "fox" || string(got.Blob) != `{"hat":"red"}` {
		t.Fatalf("got %+v", got)
	}

	s.Delete("alice")
	if got := s.Get("alice"); got.Model != "" {
		t.Fatalf("delete left %+v behind", got)
	}
}

func TestCopiesDoNotAlias(t *testing.T) {
	s := NewStore()
	blob := json.RawMessage(`{"hat":"red"}`)
	s.Set("alice", domain.AvatarState{Blob: blob})

	// Mutating the caller's slice must not reach the store.
	blob[9] = 'g'
	if got := s.Get("alice"); string(got.Blob) != `{"hat":"red"}` {
		t.Fatalf("store aliased caller blob: %s", got.Blob)
	}

	// Mutating a returned copy must not reach the store either.
	out := s.Get("alice")
	out.Blob[9] = 'g'
	if got := s.Get("alice"); string(got.Blob) != `{"hat":"red"}` {
		t.Fatalf("store aliased returned blob: %s", got.Blob)
	}
}
