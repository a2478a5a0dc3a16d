package usecase

import (
	"context"

	"mpvremote/internal/domain"
	"mpvremote/internal/domain/ports"
)

// PausePlayback sets the pause flag. Pausing a paused player is a
// StateConflictError.
type PausePlayback struct {
	Player ports.PlayerSession
}

func (uc PausePlayback) Execute(ctx context.Context) error {
	return setPaused(ctx, uc.Player, true)
}

// ResumePlayback clears the pause flag. Resuming a playing player is a
// StateConflictError.
type ResumePlayback struct {
	Player ports.PlayerSession
}

func (uc ResumePlayback) Execute(ctx context.Context) error {
	return setPaused(ctx, uc.Player, false)
}

func setPaused(ctx context.Context, player ports.PlayerSession, paused bool) error {
	return wrapPlayer(player.WithChannel(ctx, func(ch ports.PlayerChannel) error {
		current, err := ch.Paused(ctx)
		if err != nil {
			return err
		}
		if current == paused {
			return &StateConflictError{State: domain.StateFromPauseFlag(current)}
		}
		return ch.SetPaused(ctx, paused)
	}))
}
