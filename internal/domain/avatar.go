package domain

import "encoding/json"

// MaxAvatarBlobLen bounds the appearance blob so one client cannot bloat
// every peer's presence traffic.
const MaxAvatarBlobLen = 4096

// AvatarState is an opaque appearance descriptor. The presence core never
// interprets the blob; it only stores, copies and rebroadcasts it.
type AvatarState struct {
	Blob  json.RawMessage `json:"blob,omitempty"`
	Model string          `json:"model,omitempty"`
}

// Clone returns an independent copy. Rooms hold copies of the canonical
// avatar, never the same mutable instance.
func (a AvatarState) Clone() AvatarState {
	out := AvatarState{Model: a.Model}
	if len(a.Blob) > 0 {
		out.Blob = make(json.RawMessage, len(a.Blob))
		copy(out.Blob, a.Blob)
	}
	return out
}

func (a AvatarState) Valid() bool {
	return len(a.Blob) <= MaxAvatarBlobLen
}
