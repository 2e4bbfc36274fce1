// Package bus moves frames one byte at a time across a shared byte stream.
package bus

import (
	"errors"
	"io"
)

// Terminator ends every frame on the bus.
const Terminator byte = 0x00

var (
	// ErrReadTimeout indicates the underlying stream returned no data.
	ErrReadTimeout = errors.New("read timeout")
)

// Bus is the blocking byte level access to the shared stream.
// bytes.Buffer satisfies it, which is handy in tests.
type Bus interface {
	io.ByteReader
	io.ByteWriter
}

// WriteAway writes buf to the bus and stops right after a terminator
// has been written.
func WriteAway(w io.ByteWriter, buf []byte) error {
	for _, b := range buf {
		if err := w.WriteByte(b); err != nil {
			return err
		}
		if b == Terminator {
			break
		}
	}
	return nil
}

// ReadAway fills buf from the bus until a terminator arrives or buf is
// full. The terminator is not stored. It returns the number of bytes
// consumed from the bus including the terminator, or len(buf) if the
// buffer filled up first.
func ReadAway(r io.ByteReader, buf []byte) (int, error) {
	for i := range buf {
		b, err := r.ReadByte()
		if err != nil {
			return i, err
		}
		if b == Terminator {
			return i + 1, nil
		}
		buf[i] = b
	}
	return len(buf), nil
}
