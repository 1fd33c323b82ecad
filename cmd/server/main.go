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

	router "github.com/matchlobby/voicebridge/internal/adapters/http"
	"github.com/matchlobby/voicebridge/internal/config"
	"github.com/matchlobby/voicebridge/internal/mover"
	"github.com/matchlobby/voicebridge/internal/notify"
	"github.com/matchlobby/voicebridge/internal/platform/discord"
	"github.com/matchlobby/voicebridge/internal/publish"
	"github.com/matchlobby/voicebridge/internal/reconcile"
	"github.com/matchlobby/voicebridge/internal/roster"
	"github.com/matchlobby/voicebridge/internal/stream"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	client, err := discord.New(cfg.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create platform client")
	}

	cache := roster.NewCache()
	hub := stream.NewHub()
	sink := publish.NewWebhook(cfg.TargetURL, cfg.AuthHeader, cfg.CallTimeout)
	coord := reconcile.NewCoordinator(
		client, client,
		publish.Fanout{sink, hub},
		cache,
		cfg.DebounceWindow,
		cfg.CallTimeout,
	)
	defer coord.Stop()

	h := &router.Handlers{
		Roster:   coord,
		Mover:    mover.NewExecutor(client, cfg.MoveDelay),
		Notifier: notify.NewNotifier(client),
		Stream:   hub,
	}

	if err := client.Connect(coord, func() {
		go coord.SweepAll(ctx)
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to platform")
	}
	defer client.Close()

	r := router.SetupRouter(ctx, cfg, h)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("voicebridge started")
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
