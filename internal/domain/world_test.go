package domain

import (
	"errors"
	"testing"
)

func TestWorldValidate(t *testing.T) {
	tests := []struct {
		name  string
		world World
		err   error
	}{
		{"valid", World{Name: "Plaza", MaxParticipants: 1, CreatorID: "c"}, nil},
		{"zero capacity", World{Name: "Plaza", MaxParticipants: 0, CreatorID: "c"}, ErrZeroCapacity},
		{"empty name", World{MaxParticipants: 4, CreatorID: "c"}, ErrWorldNameEmpty},
		{"no creator", World{Name: "Plaza", MaxParticipants: 4}, ErrWorldNoCreator},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.world.Validate(); !errors.Is(err, tt.err) {
				t.Fatalf("got %v, want %v", err, tt.err)
			}
		})
	}
}

func TestWorldGated(t *testing.T) {
	free := World{IsPublic: true}
	if free.Gated() {
		t.Fatal("public free world should not be gated")
	}
	paid := World{IsPublic: true, PriceCents: 100}
	private := World{IsPublic: false}
	if !paid.Gated() || !private.Gated() {
		t.Fatal("paid and private worlds must be gated")
	}
}

func TestUserNameLimits(t *testing.T) {
	if _, err := NewUser(""); !errors.Is(err, ErrNameEmpty) {
		t.Fatalf("got %v", err)
	}
	long := make([]byte, MaxDisplayNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := NewUser(string(long)); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("got %v", err)
	}
	u, err := NewUser("Wanderer")
	if err != nil || u.ID == "" {
		t.Fatalf("user = %+v err = %v", u, err)
	}
}
