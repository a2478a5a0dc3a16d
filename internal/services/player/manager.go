package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"mpvremote/internal/domain"
	"mpvremote/internal/domain/ports"
	"mpvremote/internal/metrics"
	"mpvremote/internal/mpv"
)

var (
	ErrSpawn       = errors.New("player spawn failed")
	ErrUnavailable = errors.New("player unavailable")
	ErrClosed      = errors.New("player manager closed")
)

// Dialer opens a control channel on socketPath.
type Dialer func(ctx context.Context, socketPath string) (ports.PlayerChannel, error)

// Spawner starts a player process. started is false when a previously
// started process is still alive and nothing was launched.
type Spawner interface {
	Spawn() (started bool, err error)
}

type Config struct {
	SocketPath string
	// ConnectDelay is waited before every connection attempt so that a
	// freshly spawned player has time to create its socket.
	ConnectDelay time.Duration
	// MaxAttempts caps connection attempts per acquisition; 0 retries until
	// the context is done.
	MaxAttempts int
}

// Manager owns the shared control channel to the player. The channel is
// opened lazily, spawning the player when the socket is unreachable, and is
// dropped and reopened after transport failures.
type Manager struct {
	cfg     Config
	dial    Dialer
	spawner Spawner
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time

	spawnGroup singleflight.Group

	mu          sync.Mutex
	channel     ports.PlayerChannel
	closed      bool
	spawns      int64
	lastSpawnAt time.Time
	lastErr     string
	lastErrAt   time.Time

	fatal     chan error
	fatalOnce sync.Once
}

func NewManager(cfg Config, dial Dialer, spawner Spawner, logger *slog.Logger) *Manager {
	if cfg.SocketPath == "" {
		cfg.SocketPath = mpv.DefaultSocketPath
	}
	if cfg.ConnectDelay < 0 {
		cfg.ConnectDelay = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:     cfg,
		dial:    dial,
		spawner: spawner,
		logger:  logger,
		tracer:  otel.Tracer("mpvremote/player"),
		now:     time.Now,
		fatal:   make(chan error, 1),
	}
}

// Fatal delivers the first spawn failure. A player that cannot be started is
// a misconfiguration the service cannot recover from.
func (m *Manager) Fatal() <-chan error {
	return m.fatal
}

// Acquire returns the shared control channel, connecting and spawning the
// player as needed.
func (m *Manager) Acquire(ctx context.Context) (ports.PlayerChannel, error) {
	ch, _, err := m.acquire(ctx)
	return ch, err
}

// WithChannel runs fn on the shared channel. If fn fails with a transport
// error the channel is dropped; when that channel had been reused from an
// earlier request fn is retried once on a fresh one.
func (m *Manager) WithChannel(ctx context.Context, fn func(ports.PlayerChannel) error) error {
	ch, reused, err := m.acquire(ctx)
	if err != nil {
		return err
	}
	err = fn(ch)
	if err == nil || !mpv.IsTransportError(err) {
		return err
	}
	m.invalidate(ch, err)
	if !reused {
		return err
	}

	m.logger.Info("player channel lost, reconnecting", slog.String("error", err.Error()))
	ch, _, err = m.acquire(ctx)
	if err != nil {
		return err
	}
	err = fn(ch)
	if err != nil && mpv.IsTransportError(err) {
		m.invalidate(ch, err)
	}
	return err
}

func (m *Manager) acquire(ctx context.Context) (ports.PlayerChannel, bool, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, false, ErrClosed
	}
	if m.channel != nil {
		ch := m.channel
		m.mu.Unlock()
		return ch, true, nil
	}
	m.mu.Unlock()

	ctx, span := m.tracer.Start(ctx, "player.acquire",
		trace.WithAttributes(attribute.String("mpv.socket", m.cfg.SocketPath)),
	)
	defer span.End()

	start := m.now()
	defer func() {
		metrics.PlayerAcquireDuration.Observe(m.now().Sub(start).Seconds())
	}()

	for attempt := 1; ; attempt++ {
		if err := sleepContext(ctx, m.cfg.ConnectDelay); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "acquire cancelled")
			return nil, false, err
		}

		ch, err := m.dial(ctx, m.cfg.SocketPath)
		if err == nil {
			metrics.PlayerConnectAttemptsTotal.WithLabelValues("success").Inc()
			span.SetAttributes(attribute.Int("player.attempts", attempt))
			stored, err := m.store(ch)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, false, err
			}
			return stored, false, nil
		}
		metrics.PlayerConnectAttemptsTotal.WithLabelValues("failure").Inc()
		m.logger.Debug("player connect failed",
			slog.String("socket", m.cfg.SocketPath),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)

		if m.cfg.MaxAttempts > 0 && attempt >= m.cfg.MaxAttempts {
			err = fmt.Errorf("%w: %d connect attempts to %s failed: %v", ErrUnavailable, attempt, m.cfg.SocketPath, err)
			m.recordError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "connect attempts exhausted")
			return nil, false, err
		}

		if err := m.spawn(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "spawn failed")
			return nil, false, err
		}
	}
}

func (m *Manager) store(ch ports.PlayerChannel) (ports.PlayerChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		_ = ch.Close()
		return nil, ErrClosed
	}
	if m.channel != nil {
		// Another request connected first.
		_ = ch.Close()
		return m.channel, nil
	}
	m.channel = ch
	metrics.PlayerConnected.Set(1)
	m.logger.Info("player channel connected", slog.String("socket", m.cfg.SocketPath))
	return ch, nil
}

func (m *Manager) spawn(ctx context.Context) error {
	result := m.spawnGroup.DoChan("spawn", func() (any, error) {
		started, err := m.spawner.Spawn()
		if err != nil {
			metrics.PlayerSpawnsTotal.WithLabelValues("failed").Inc()
			// Reported here so the failure survives callers that gave up waiting.
			err = fmt.Errorf("%w: %v", ErrSpawn, err)
			m.recordError(err)
			m.reportFatal(err)
			return false, err
		}
		if !started {
			metrics.PlayerSpawnsTotal.WithLabelValues("skipped").Inc()
			return false, nil
		}
		metrics.PlayerSpawnsTotal.WithLabelValues("started").Inc()
		m.mu.Lock()
		m.spawns++
		m.lastSpawnAt = m.now()
		m.mu.Unlock()
		return true, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-result:
		return res.Err
	}
}

func (m *Manager) invalidate(ch ports.PlayerChannel, cause error) {
	m.mu.Lock()
	dropped := m.channel == ch
	if dropped {
		m.channel = nil
		metrics.PlayerConnected.Set(0)
	}
	m.lastErr = cause.Error()
	m.lastErrAt = m.now()
	m.mu.Unlock()

	_ = ch.Close()
	if dropped {
		metrics.PlayerInvalidationsTotal.Inc()
		m.logger.Warn("player channel dropped", slog.String("error", cause.Error()))
	}
}

func (m *Manager) recordError(err error) {
	m.mu.Lock()
	m.lastErr = err.Error()
	m.lastErrAt = m.now()
	m.mu.Unlock()
}

func (m *Manager) reportFatal(err error) {
	m.fatalOnce.Do(func() {
		m.fatal <- err
	})
}

// Snapshot reports the channel state without touching the player.
func (m *Manager) Snapshot() domain.PlayerHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	health := domain.PlayerHealth{
		Connected:  m.channel != nil,
		SocketPath: m.cfg.SocketPath,
		Spawns:     m.spawns,
		LastError:  m.lastErr,
	}
	if !m.lastSpawnAt.IsZero() {
		at := m.lastSpawnAt
		health.LastSpawnAt = &at
	}
	if !m.lastErrAt.IsZero() {
		at := m.lastErrAt
		health.LastErrorAt = &at
	}
	return health
}

// Close drops the shared channel. The player process keeps running.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.channel == nil {
		return nil
	}
	err := m.channel.Close()
	m.channel = nil
	metrics.PlayerConnected.Set(0)
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
