package simpleserial

import (
	"errors"
	"fmt"
)

var (
	// ErrRegistryFull is returned by Push when no more handlers fit.
	ErrRegistryFull = errors.New("registry full")
)

// CommandError is the status byte reported to the capture board.
type CommandError byte

// Command status codes.
const (
	StatusOK               CommandError = 0
	ErrInvalidCommand      CommandError = 1
	ErrBadCRC              CommandError = 2
	ErrTimeout             CommandError = 3
	ErrInvalidLength       CommandError = 4
	ErrUnexpectedFrameByte CommandError = 5
	// ErrUnknown reports a handler error which is not a CommandError.
	ErrUnknown CommandError = 0xff
)

// Custom creates an application defined status.
func Custom(code byte) CommandError {
	return CommandError(code)
}

// Code returns the status byte.
func (e CommandError) Code() byte {
	return byte(e)
}

// Error implements error.
func (e CommandError) Error() string {
	switch e {
	case StatusOK:
		return "ok"
	case ErrInvalidCommand:
		return "invalid command"
	case ErrBadCRC:
		return "bad crc"
	case ErrTimeout:
		return "timeout"
	case ErrInvalidLength:
		return "invalid length"
	case ErrUnexpectedFrameByte:
		return "unexpected frame byte"
	}
	return fmt.Sprintf("command error 0x%02x", byte(e))
}

// StatusOf maps a handler error to the status byte.
func StatusOf(err error) byte {
	if err == nil {
		return StatusOK.Code()
	}
	var cmdErr CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code()
	}
	return ErrUnknown.Code()
}
