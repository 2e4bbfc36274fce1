package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedReply indicates a reply with an unexpected opcode.
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// CommandError wraps a non-OK status reported by the target.
type CommandError struct {
	Code byte
}

// Error implements error.
func (e *CommandError) Error() string {
	return fmt.Sprintf("command error %d", e.Code)
}
