package bus

import (
	"io"
	"os"
)

// Stream adapts an io.ReadWriter (serial port, socket) to Bus.
type Stream struct {
	ReadWriter io.ReadWriter
	// EOFIsTimeout is set for ports which report an expired read timeout
	// as io.EOF, like a tty with VTIME.
	EOFIsTimeout bool

	rbuf [1]byte
	wbuf [1]byte
}

// NewStream wraps rw.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{ReadWriter: rw}
}

// ReadByte implements io.ByteReader.
func (s *Stream) ReadByte() (byte, error) {
	n, err := s.ReadWriter.Read(s.rbuf[:])
	if n == 1 {
		return s.rbuf[0], nil
	}
	if err == nil || os.IsTimeout(err) || (s.EOFIsTimeout && err == io.EOF) {
		return 0, ErrReadTimeout
	}
	return 0, err
}

// WriteByte implements io.ByteWriter.
func (s *Stream) WriteByte(b byte) error {
	s.wbuf[0] = b
	_, err := s.ReadWriter.Write(s.wbuf[:])
	return err
}

// Close closes the wrapped stream if it is closable.
func (s *Stream) Close() error {
	if closer, ok := s.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
