package game

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrorKindDuplicateJoin      ErrorKind = "DuplicateJoin"
	ErrorKindGameAlreadyStarted ErrorKind = "GameAlreadyStarted"
	ErrorKindPlayerNotFound     ErrorKind = "PlayerNotFound"
	ErrorKindInvalidTurnState   ErrorKind = "InvalidTurnState"
	ErrorKindNotYourTurn        ErrorKind = "NotYourTurn"
	ErrorKindRollLimitReached   ErrorKind = "RollLimitReached"
)

// Error is a recoverable session error. Its message is what players see
// in the published lastError field.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is a session Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var gameErr *Error
	if !errors.As(err, &gameErr) {
		return false
	}
	return gameErr.Kind == kind
}
