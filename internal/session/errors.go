package session

import (
	"errors"
	"fmt"
)

// ErrNotChatting indicates the user has no partner.
var ErrNotChatting = errors.New("user is not chatting")

// ErrInconsistent indicates the registry found a broken pairing invariant.
// It always points at a bug, never at an external failure.
var ErrInconsistent = errors.New("session registry inconsistent")

// ConsistencyError describes which user's session broke an invariant.
type ConsistencyError struct {
	Detail string
	User   int64
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: user %d: %s", ErrInconsistent, e.User, e.Detail)
}

// Unwrap returns ErrInconsistent so callers can match with errors.Is.
func (e *ConsistencyError) Unwrap() error {
	return ErrInconsistent
}

func newConsistencyError(user int64, detail string) *ConsistencyError {
	return &ConsistencyError{User: user, Detail: detail}
}
