package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/holoverse/presence/internal/adapters/http"
	"github.com/holoverse/presence/internal/app"
	"github.com/holoverse/presence/internal/avatar"
	"github.com/holoverse/presence/internal/billing"
	"github.com/holoverse/presence/internal/config"
	"github.com/holoverse/presence/internal/worlds"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	catalog, err := worlds.OpenSQLite(cfg.WorldsDB)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.WorldsDB).Msg("failed to open worlds catalog")
	}
	defer catalog.Close()

	var entitlements billing.EntitlementChecker = billing.AllowAll{}
	if cfg.BillingURL != "" {
		entitlements = billing.NewClient(cfg.BillingURL)
	} else {
		log.Warn().Msg("no billing endpoint configured; every entitlement is granted")
	}

	rooms := app.NewRoomManager(cfg.RoomLinger, app.DropPolicy{})
	orch := &app.Orchestrator{
		Registry:   app.NewRegistry(),
		Worlds:     catalog,
		Admission:  &app.AdmissionController{Billing: entitlements},
		Rooms:      rooms,
		Supervisor: app.NewSupervisor(cfg.GraceWindow, rooms),
		Avatars:    avatar.NewStore(),
	}

	r := router.SetupRouter(ctx, cfg, orch, catalog)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Worlds presence server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
