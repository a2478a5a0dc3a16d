package domain

import (
	"errors"
	"strings"
)

var ErrInvalidPlayRequest = errors.New("invalid play request")

const (
	MessagePlaybackStarted = "Playback started."
	MessagePlaybackPaused  = "Paused playback."
	MessagePlaybackResumed = "Playback resumed."
)

// PlayRequest asks the player to replace its playlist with URL and start it,
// paused when State is Paused.
type PlayRequest struct {
	URL   string      `json:"url"`
	State PlayerState `json:"state"`
}

func (r PlayRequest) StartPaused() bool {
	return r.State.IsPaused()
}

func (r PlayRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errors.Join(ErrInvalidPlayRequest, errors.New("url is required"))
	}
	return nil
}
