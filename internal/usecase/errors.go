package usecase

import (
	"errors"
	"fmt"

	"mpvremote/internal/domain"
)

var ErrPlayer = errors.New("player error")

// StateConflictError reports a request that does not apply to the player's
// current state, such as pausing an already paused player.
type StateConflictError struct {
	State domain.PlayerState
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("player is already %s", e.State)
}

func wrapPlayer(err error) error {
	if err == nil {
		return nil
	}
	var conflict *StateConflictError
	if errors.As(err, &conflict) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPlayer, err)
}
