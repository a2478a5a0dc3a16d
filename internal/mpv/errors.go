package mpv

import (
	"errors"
	"fmt"
	"strings"
)

var ErrClosed = errors.New("mpv: connection closed")

// CommandError is a failure reported by mpv itself; the connection stays usable.
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv: %s: %s", e.Command, e.Message)
}

// TransportError is an I/O failure on the control socket. The client that
// returned it is closed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("mpv: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsCommandError(err error) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr)
}

func IsTransportError(err error) bool {
	if errors.Is(err, ErrClosed) {
		return true
	}
	var tErr *TransportError
	return errors.As(err, &tErr)
}

func commandName(args []any) string {
	if len(args) == 0 {
		return ""
	}
	name, ok := args[0].(string)
	if !ok {
		return fmt.Sprint(args[0])
	}
	if len(args) > 1 && (name == "get_property" || name == "set_property") {
		if prop, ok := args[1].(string); ok {
			return strings.Join([]string{name, prop}, " ")
		}
	}
	return name
}
