package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/voicegate/internal/adapters/gateway"
	router "github.com/dkeye/voicegate/internal/adapters/http"
	"github.com/dkeye/voicegate/internal/app"
	"github.com/dkeye/voicegate/internal/app/orch"
	"github.com/dkeye/voicegate/internal/config"
	"github.com/dkeye/voicegate/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	clk := clock.New()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	policy := app.NewBackoffPolicy(app.BackoffConfig{
		InitialInterval: cfg.Resend.InitialInterval,
		MaxInterval:     cfg.Resend.MaxInterval,
		Multiplier:      cfg.Resend.Multiplier,
		Jitter:          cfg.Resend.Jitter,
		MaxAttempts:     cfg.Resend.MaxAttempts,
		MaxElapsed:      cfg.Resend.MaxElapsed,
	}, clk)

	client := gateway.NewClient(gateway.Config{
		URL:          cfg.Gateway.URL,
		Token:        cfg.Gateway.Token,
		UserID:       cfg.Gateway.UserID,
		SendBuffer:   cfg.Gateway.SendBuffer,
		WriteTimeout: cfg.Gateway.WriteTimeout,
		RateLimit:    cfg.Gateway.RateLimit,
		RateInterval: cfg.Gateway.RateInterval,
		RedialMin:    cfg.Gateway.RedialMin,
		RedialMax:    cfg.Gateway.RedialMax,
	}, clk)

	ctl := orch.NewController(client, core.NewConnectionCache(), orch.Options{
		Clock:              clk,
		Policy:             policy,
		Metrics:            app.NewMetrics(reg),
		RetainOnDisconnect: cfg.Cache.RetainOnDisconnect,
	})
	client.Bind(ctl)

	resender := gateway.NewResender(ctl, clk, cfg.Resend.PollInterval)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(cfg, ctl, client, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(gctx) })
	g.Go(func() error { return resender.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("voicegate started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("voicegate stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}
