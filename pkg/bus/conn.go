package bus

import "io"

// Conn is a Bus backed by a closable transport.
type Conn interface {
	Bus
	io.Closer
}
