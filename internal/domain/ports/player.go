package ports

import (
	"context"

	"mpvremote/internal/domain"
)

// PlayerChannel is an open control channel to the player.
type PlayerChannel interface {
	ClearPlaylist(ctx context.Context) error
	AppendFile(ctx context.Context, url string) error
	PlaylistCount(ctx context.Context) (int, error)
	PlayIndex(ctx context.Context, index int) error
	RemoveEntry(ctx context.Context, index int) error
	Paused(ctx context.Context) (bool, error)
	SetPaused(ctx context.Context, paused bool) error
	Close() error
}

// PlayerSession hands out a live channel, starting the player if needed.
type PlayerSession interface {
	WithChannel(ctx context.Context, fn func(PlayerChannel) error) error
}

type PlayerHealthReporter interface {
	Snapshot() domain.PlayerHealth
}
