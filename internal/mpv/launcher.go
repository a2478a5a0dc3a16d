package mpv

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
)

type LaunchConfig struct {
	Binary     string
	SocketPath string
	ExtraArgs  []string
}

// Launcher starts idle mpv processes listening on SocketPath. At most one
// launched process is tracked; Spawn is a no-op while it is still running.
type Launcher struct {
	cfg    LaunchConfig
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	pid     int
}

func NewLauncher(cfg LaunchConfig, logger *slog.Logger) *Launcher {
	cfg.Binary = strings.TrimSpace(cfg.Binary)
	if cfg.Binary == "" {
		cfg.Binary = "mpv"
	}
	if strings.TrimSpace(cfg.SocketPath) == "" {
		cfg.SocketPath = DefaultSocketPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{cfg: cfg, logger: logger}
}

func (l *Launcher) Args() []string {
	args := []string{
		"--input-ipc-server=" + l.cfg.SocketPath,
		"--idle",
	}
	for _, arg := range l.cfg.ExtraArgs {
		if arg = strings.TrimSpace(arg); arg != "" {
			args = append(args, arg)
		}
	}
	return args
}

// Spawn starts mpv unless a process started by this launcher is still alive.
// The child is not bound to any request context and outlives the service.
func (l *Launcher) Spawn() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.running {
		return false, nil
	}

	cmd := exec.Command(l.cfg.Binary, l.Args()...)
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return false, fmt.Errorf("start %s: binary not found: %w", l.cfg.Binary, err)
		}
		return false, fmt.Errorf("start %s: %w", l.cfg.Binary, err)
	}

	l.running = true
	l.pid = cmd.Process.Pid
	l.logger.Info("mpv started",
		slog.Int("pid", l.pid),
		slog.String("binary", l.cfg.Binary),
		slog.String("socket", l.cfg.SocketPath),
	)

	go l.reap(cmd)
	return true, nil
}

func (l *Launcher) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

func (l *Launcher) reap(cmd *exec.Cmd) {
	err := cmd.Wait()

	l.mu.Lock()
	if l.pid == cmd.Process.Pid {
		l.running = false
		l.pid = 0
	}
	l.mu.Unlock()

	attrs := []any{slog.Int("pid", cmd.Process.Pid)}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger.Info("mpv exited", attrs...)
}
