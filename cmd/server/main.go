package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	apihttp "mpvremote/internal/api/http"
	"mpvremote/internal/app"
	"mpvremote/internal/metrics"
	"mpvremote/internal/mpv"
	"mpvremote/internal/services/player"
	"mpvremote/internal/telemetry"
	"mpvremote/internal/usecase"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := app.LoadConfig()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics.Register(prometheus.DefaultRegisterer)

	shutdownTracer, err := telemetry.Init(context.Background(), "mpv-remote")
	if err != nil {
		logger.Warn("otel init failed", slog.String("error", err.Error()))
	}
	defer func() {
		if shutdownTracer != nil {
			_ = shutdownTracer(context.Background())
		}
	}()

	logger.Info("configuration loaded",
		slog.String("service", "mpv-remote"),
		slog.String("httpAddr", cfg.HTTPAddr),
		slog.String("logLevel", cfg.LogLevel),
		slog.String("logFormat", cfg.LogFormat),
		slog.String("mpvPath", cfg.MPVPath),
		slog.String("mpvSocket", cfg.MPVSocketPath),
		slog.Any("mpvExtraArgs", cfg.MPVExtraArgs),
		slog.Duration("connectDelay", cfg.ConnectDelay),
		slog.Int("connectMaxAttempts", cfg.ConnectMaxAttempts),
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	launcher := mpv.NewLauncher(mpv.LaunchConfig{
		Binary:     cfg.MPVPath,
		SocketPath: cfg.MPVSocketPath,
		ExtraArgs:  cfg.MPVExtraArgs,
	}, logger)

	manager := player.NewManager(player.Config{
		SocketPath:   cfg.MPVSocketPath,
		ConnectDelay: cfg.ConnectDelay,
		MaxAttempts:  cfg.ConnectMaxAttempts,
	}, player.MPVDialer(cfg.CommandTimeout), launcher, logger)

	startUC := usecase.StartPlayback{Player: manager}
	pauseUC := usecase.PausePlayback{Player: manager}
	resumeUC := usecase.ResumePlayback{Player: manager}

	handler := apihttp.NewServer(startUC,
		apihttp.WithLogger(logger),
		apihttp.WithPausePlayback(pauseUC),
		apihttp.WithResumePlayback(resumeUC),
		apihttp.WithPlayerHealth(manager),
		apihttp.WithAllowedOrigins(cfg.CORSAllowedOrigins),
		apihttp.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("server started", slog.String("addr", cfg.HTTPAddr))

	exitCode := 0
	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-manager.Fatal():
		logger.Error("player cannot be started, shutting down",
			slog.String("binary", cfg.MPVPath),
			slog.String("error", err.Error()),
		)
		exitCode = 1
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", slog.String("error", err.Error()))
			return 1
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", slog.String("error", err.Error()))
	}
	if err := manager.Close(); err != nil {
		logger.Warn("player channel close error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
	return exitCode
}

func newLogger(levelRaw, formatRaw string) *slog.Logger {
	level := parseLogLevel(levelRaw)
	options := &slog.HandlerOptions{Level: level}
	format := strings.ToLower(strings.TrimSpace(formatRaw))
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, options))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, options))
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
