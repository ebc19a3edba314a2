package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/holoverse/presence/internal/adapters/ws"
	"github.com/holoverse/presence/internal/app"
	"github.com/holoverse/presence/internal/config"
	"github.com/holoverse/presence/internal/domain"
	"github.com/holoverse/presence/internal/worlds"
)

func SetupRouter(ctx context.Context, cfg *config.Config, orch *app.Orchestrator, catalog worlds.Registry) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("WorldSessions", store))
	r.Use(IdentityMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := r.Group("/api")

	// GET /api/rooms lists worlds with a live room right now.
	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": orch.Rooms.List()})
	})

	// GET /api/worlds/:id returns the catalog record plus current occupancy.
	api.GET("/worlds/:id", func(c *gin.Context) {
		id := domain.WorldID(c.Param("id"))
		world, err := catalog.Get(c.Request.Context(), id)
		if errors.Is(err, worlds.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "world not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"world":            world,
			"participantCount": orch.Rooms.Occupancy(id),
		})
	})

	ctl := ws.NewPresenceController(orch, cfg)
	api.GET("/ws/presence", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("user", c.GetString("user_id")).Msg("ws presence endpoint hit")
		ctl.HandlePresence(ctx, c)
	})

	return r
}
