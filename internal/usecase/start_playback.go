package usecase

import (
	"context"
	"errors"

	"mpvremote/internal/domain"
	"mpvremote/internal/domain/ports"
)

var errEntryMissing = errors.New("appended entry missing from playlist")

type StartPlayback struct {
	Player ports.PlayerSession
}

// Execute replaces the playlist with req.URL and plays it. mpv keeps the
// playing file across a clear, so the new entry is the last one and any
// leftover entries ahead of it are removed once it is selected.
func (uc StartPlayback) Execute(ctx context.Context, req domain.PlayRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return wrapPlayer(uc.Player.WithChannel(ctx, func(ch ports.PlayerChannel) error {
		if err := ch.ClearPlaylist(ctx); err != nil {
			return err
		}
		if err := ch.AppendFile(ctx, req.URL); err != nil {
			return err
		}
		count, err := ch.PlaylistCount(ctx)
		if err != nil {
			return err
		}
		if count < 1 {
			return errEntryMissing
		}
		last := count - 1
		if err := ch.PlayIndex(ctx, last); err != nil {
			return err
		}
		for i := 0; i < last; i++ {
			if err := ch.RemoveEntry(ctx, 0); err != nil {
				return err
			}
		}
		if req.StartPaused() {
			return ch.SetPaused(ctx, true)
		}
		return nil
	}))
}
