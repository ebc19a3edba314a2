package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
)

// handleFrame routes one inbound frame. Returning false drops the
// connection: a malformed frame means a broken or hostile client, and no
// room ever sees its traffic.
func (ctl *PresenceController) handleFrame(ctx context.Context, sid core.SessionID, c *presenceConn, data []byte) bool {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("bad frame, dropping connection")
		return false
	}

	switch env.Type {
	case core.EvJoin:
		return ctl.handleJoin(ctx, sid, c, data)
	case core.EvLeave:
		return ctl.handleLeave(sid, c, data)
	case core.EvAvatarUpdate:
		return ctl.handleAvatarUpdate(sid, c, data)
	case core.EvPing:
		ctl.sendJSON(c, map[string]string{"type": core.EvPong})
		return true
	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown frame type")
		return true
	}
}

func (ctl *PresenceController) sendJSON(c *presenceConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *PresenceController) sendError(c *presenceConn, worldID domain.WorldID, code core.DenyCode) {
	ctl.sendJSON(c, core.ErrorEvent{Type: core.EvError, WorldID: worldID, Code: code})
}

func (ctl *PresenceController) handleJoin(ctx context.Context, sid core.SessionID, c *presenceConn, data []byte) bool {
	type joinPayload struct {
		Type    string              `json:"type"`
		WorldID string              `json:"worldId"`
		Name    string              `json:"name,omitempty"`
		Avatar  *domain.AvatarState `json:"avatar,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.WorldID == "" {
		log.Warn().Str("module", "ws").Str("sid", string(sid)).Msg("bad join payload")
		return false
	}
	if p.Avatar != nil && !p.Avatar.Valid() {
		log.Warn().Str("module", "ws").Str("sid", string(sid)).Msg("oversized avatar on join")
		return false
	}

	user, ok := ctl.Orch.Registry.User(sid)
	if !ok {
		return false
	}
	worldID := domain.WorldID(p.WorldID)
	if !ctl.limiter.Allow(user.ID) {
		log.Warn().Str("module", "ws").Str("user", string(user.ID)).Msg("join rate exceeded")
		// The client is waiting on a snapshot; it must hear something.
		ctl.sendError(c, worldID, core.DenyRateLimited)
		return true
	}
	if p.Name != "" {
		if err := ctl.Orch.Registry.UpdateName(sid, p.Name); err != nil {
			log.Warn().Err(err).Str("module", "ws").Str("sid", string(sid)).Msg("rename on join rejected")
		}
	}

	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("world", p.WorldID).Msg("join")

	// The admitted snapshot is queued by the room itself so it can never
	// trail a broadcast; only refusals are sent from here.
	_, err := ctl.Orch.Join(ctx, sid, worldID, p.Avatar)
	if err == nil {
		return true
	}

	var adm *core.AdmissionError
	if errors.As(err, &adm) {
		ctl.sendError(c, worldID, adm.Code)
		return true
	}
	log.Error().Err(err).Str("module", "ws").Str("sid", string(sid)).Str("world", p.WorldID).Msg("join failed")
	return false
}

func (ctl *PresenceController) handleLeave(sid core.SessionID, c *presenceConn, data []byte) bool {
	type leavePayload struct {
		Type    string `json:"type"`
		WorldID string `json:"worldId"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil || p.WorldID == "" {
		log.Warn().Str("module", "ws").Str("sid", string(sid)).Msg("bad leave payload")
		return false
	}
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("world", p.WorldID).Msg("leave")
	ctl.Orch.Leave(sid, domain.WorldID(p.WorldID))
	return true
}

func (ctl *PresenceController) handleAvatarUpdate(sid core.SessionID, c *presenceConn, data []byte) bool {
	type avatarPayload struct {
		Type    string             `json:"type"`
		WorldID string             `json:"worldId"`
		Avatar  domain.AvatarState `json:"avatar"`
	}
	var p avatarPayload
	if err := json.Unmarshal(data, &p); err != nil || p.WorldID == "" {
		log.Warn().Str("module", "ws").Str("sid", string(sid)).Msg("bad avatar payload")
		return false
	}
	if !p.Avatar.Valid() {
		log.Warn().Str("module", "ws").Str("sid", string(sid)).Msg("oversized avatar update")
		return false
	}
	ctl.Orch.UpdateAvatar(sid, domain.WorldID(p.WorldID), p.Avatar)
	return true
}
