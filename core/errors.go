package core

import (
	"errors"
	"fmt"
)

// ReuseFailure signals that an existing resource cannot absorb new input in place
// It is a control signal: callers rebuild the resource from scratch
type ReuseFailure struct {
	Reason string
}

func (e *ReuseFailure) Error() string {
	return "resource reuse failed: " + e.Reason
}

// NewReuseFailure formats a ReuseFailure
func NewReuseFailure(format string, args ...any) *ReuseFailure {
	return &ReuseFailure{Reason: fmt.Sprintf(format, args...)}
}

// IsReuseFailure reports whether err carries a ReuseFailure anywhere in its chain
func IsReuseFailure(err error) bool {
	var rf *ReuseFailure
	return errors.As(err, &rf)
}
