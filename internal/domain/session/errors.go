package session

import "errors"

// ErrInvalidTransition is returned when a session is asked to move to a state
// its current state does not lead to.
var ErrInvalidTransition = errors.New("invalid session transition")
