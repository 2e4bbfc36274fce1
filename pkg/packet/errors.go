package packet

import (
	"errors"
	"fmt"
)

var (
	// ErrCRCInvalid indicates the CRC8 of an unstuffed frame didn't check.
	ErrCRCInvalid = errors.New("crc invalid")
)

// InsufficientBytesError indicates a frame too short to carry metadata,
// the stuffing pointer, the CRC and the terminator.
type InsufficientBytesError struct {
	BufferLength int
}

// Error implements error.
func (e *InsufficientBytesError) Error() string {
	return fmt.Sprintf("insufficient bytes: %d", e.BufferLength)
}

// IncorrectDataLengthError indicates the declared data length doesn't
// match the frame, or exceeds MaxDataLen.
type IncorrectDataLengthError struct {
	BufferLength int
	DataLength   int
}

// Error implements error.
func (e *IncorrectDataLengthError) Error() string {
	return fmt.Sprintf("incorrect data length %d for buffer of %d bytes", e.DataLength, e.BufferLength)
}

// IsFrameError reports whether err rejects a frame, as opposed to a
// failure of the underlying bus.
func IsFrameError(err error) bool {
	var insufficient *InsufficientBytesError
	var incorrect *IncorrectDataLengthError
	return errors.Is(err, ErrCRCInvalid) ||
		errors.As(err, &insufficient) ||
		errors.As(err, &incorrect)
}
