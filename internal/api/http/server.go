package apihttp

import (
	"context"
	"log/slog"
	"net/http"

	"mpvremote/internal/domain"
	"mpvremote/internal/domain/ports"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type StartPlaybackUseCase interface {
	Execute(ctx context.Context, req domain.PlayRequest) error
}

type PausePlaybackUseCase interface {
	Execute(ctx context.Context) error
}

type ResumePlaybackUseCase interface {
	Execute(ctx context.Context) error
}

const (
	defaultRateLimitRPS   = 20
	defaultRateLimitBurst = 40
)

type Server struct {
	startPlayback  StartPlaybackUseCase
	pausePlayback  PausePlaybackUseCase
	resumePlayback ResumePlaybackUseCase
	health         ports.PlayerHealthReporter
	allowedOrigins []string
	rateLimitRPS   float64
	rateLimitBurst int
	logger         *slog.Logger
	handler        http.Handler
}

type ServerOption func(*Server)

func WithPausePlayback(uc PausePlaybackUseCase) ServerOption {
	return func(s *Server) {
		s.pausePlayback = uc
	}
}

func WithResumePlayback(uc ResumePlaybackUseCase) ServerOption {
	return func(s *Server) {
		s.resumePlayback = uc
	}
}

func WithPlayerHealth(reporter ports.PlayerHealthReporter) ServerOption {
	return func(s *Server) {
		s.health = reporter
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), cross-origin requests get no CORS headers.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithRateLimit sets the global token bucket. Non-positive values keep the
// defaults.
func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps > 0 {
			s.rateLimitRPS = rps
		}
		if burst > 0 {
			s.rateLimitBurst = burst
		}
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(start StartPlaybackUseCase, opts ...ServerOption) *Server {
	s := &Server{
		startPlayback:  start,
		rateLimitRPS:   defaultRateLimitRPS,
		rateLimitBurst: defaultRateLimitBurst,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/play", s.handlePlay)
	mux.HandleFunc("/pause", s.handlePause)
	mux.HandleFunc("/unpause", s.handleUnpause)
	mux.HandleFunc("/internal/health/player", s.handlePlayerHealth)
	mux.Handle("/metrics", promhttp.Handler())

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "mpv-remote",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/internal/health/player"
		}),
	)
	s.handler = recoveryMiddleware(s.logger,
		rateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst,
			metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
