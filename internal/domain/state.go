package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

type PlayerStateKind int

const (
	StatePlaying PlayerStateKind = iota
	StatePaused
	StateError
)

// PlayerState is the player's playback state as reported to clients. An error
// state carries the failure message and serializes to that message verbatim.
type PlayerState struct {
	Kind    PlayerStateKind
	Message string
}

var ErrInvalidPlayerState = errors.New("invalid player state")

func Playing() PlayerState { return PlayerState{Kind: StatePlaying} }

func Paused() PlayerState { return PlayerState{Kind: StatePaused} }

func ErrorState(message string) PlayerState {
	return PlayerState{Kind: StateError, Message: message}
}

// StateFromPauseFlag maps mpv's pause property onto a PlayerState.
func StateFromPauseFlag(paused bool) PlayerState {
	if paused {
		return Paused()
	}
	return Playing()
}

func (s PlayerState) IsPaused() bool { return s.Kind == StatePaused }

func (s PlayerState) IsError() bool { return s.Kind == StateError }

func (s PlayerState) String() string {
	switch s.Kind {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return s.Message
	}
}

func (s PlayerState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PlayerState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: expected string \"playing\" or \"paused\"", ErrInvalidPlayerState)
	}
	parsed, err := ParsePlayerState(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParsePlayerState accepts the wire names a client may send. "error" is
// accepted for symmetry with the serialized form and yields a generic error
// state.
func ParsePlayerState(raw string) (PlayerState, error) {
	switch raw {
	case "playing":
		return Playing(), nil
	case "paused":
		return Paused(), nil
	case "error":
		return ErrorState("error"), nil
	default:
		return PlayerState{}, fmt.Errorf("%w: unexpected string %q", ErrInvalidPlayerState, raw)
	}
}
