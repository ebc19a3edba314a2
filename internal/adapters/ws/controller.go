package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/app"
	"github.com/holoverse/presence/internal/config"
	"github.com/holoverse/presence/internal/core"
	"github.com/holoverse/presence/internal/domain"
)

type PresenceController struct {
	Orch    *app.Orchestrator
	Cfg     *config.Config
	limiter *FrameRateLimiter
}

func NewPresenceController(orch *app.Orchestrator, cfg *config.Config) *PresenceController {
	return &PresenceController{
		Orch:    orch,
		Cfg:     cfg,
		limiter: NewFrameRateLimiter(defaultFrameLimit, defaultFrameInterval),
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandlePresence upgrades the connection. Identity must already be
// resolved by the auth middleware; a connection without one never reaches
// the room layer.
func (ctl *PresenceController) HandlePresence(ctx context.Context, c *gin.Context) {
	userID := c.GetString("user_id")
	userName := c.GetString("user_name")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	sid := core.SessionID(uuid.NewString())
	log.Info().Str("module", "ws").Str("sid", string(sid)).Str("user", userID).Msg("new presence connection")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("ws upgrade")
		return
	}
	conn.SetReadLimit(ctl.Cfg.ReadLimit)

	pc := newPresenceConn(conn, ctl.Cfg.SendBuffer)
	user := &domain.User{ID: domain.UserID(userID), Name: userName}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, user, pc, cancel)

	go ctl.writePump(ctx, sid, pc)
	go ctl.readPump(ctx, sid, pc)
}
