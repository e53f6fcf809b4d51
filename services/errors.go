package services

import (
	"errors"
	"fmt"
)

var (
	ErrNoArea              = errors.New("owner has no current area")
	ErrUnknownNode         = errors.New("unknown node")
	ErrNodeNotConnected    = errors.New("node is not connected to the current node")
	ErrNodeLocked          = errors.New("node is locked")
	ErrNotCurrentNode      = errors.New("node is not the current node")
	ErrAlreadyCompleted    = errors.New("already completed")
	ErrObjectiveIncomplete = errors.New("objective is not yet satisfied")
	ErrUnknownLevel        = errors.New("unknown level")
	ErrLevelLocked         = errors.New("level is locked")
	ErrInvalidTask         = errors.New("task id is required")
)

// Rejection codes, also used as metric labels and wire error codes.
const (
	CodeUnknownNode         = "unknown_node"
	CodeNotConnected        = "not_connected"
	CodeNodeLocked          = "node_locked"
	CodeNotCurrentNode      = "not_current_node"
	CodeAlreadyCompleted    = "already_completed"
	CodeObjectiveIncomplete = "objective_incomplete"
	CodeUnknownLevel        = "unknown_level"
	CodeLevelLocked         = "level_locked"
)

// RejectionError is a caller-facing refusal of a move or completion. Traversal
// state is left as it was; a completion refused with objective_incomplete may
// still have saved a regenerated objective.
type RejectionError struct {
	Code   string
	Reason string
	Err    error
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func (e *RejectionError) Unwrap() error {
	return e.Err
}

func reject(err error, code, format string, args ...any) *RejectionError {
	return &RejectionError{Code: code, Reason: fmt.Sprintf(format, args...), Err: err}
}

// IsRejection reports whether err is a RejectionError and returns it.
func IsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
