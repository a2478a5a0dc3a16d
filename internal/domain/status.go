package domain

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Response is the envelope of every playback reply.
type Response[T any] struct {
	Status Status `json:"status"`
	Data   T      `json:"data"`
}

func Success[T any](data T) Response[T] {
	return Response[T]{Status: StatusSuccess, Data: data}
}

// Failure pairs an error state with StatusError; an error payload never goes
// out with StatusSuccess.
func Failure(state PlayerState) Response[PlayerState] {
	return Response[PlayerState]{Status: StatusError, Data: state}
}
