package player

import (
	"context"
	"time"

	"mpvremote/internal/domain/ports"
	"mpvremote/internal/mpv"
)

// MPVDialer dials mpv's JSON IPC socket with the given per-command timeout.
func MPVDialer(commandTimeout time.Duration) Dialer {
	return func(ctx context.Context, socketPath string) (ports.PlayerChannel, error) {
		client, err := mpv.Dial(ctx, socketPath, mpv.WithTimeout(commandTimeout))
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
