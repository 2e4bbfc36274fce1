// Package packet encodes and decodes SimpleSerial packets.
//
// On the wire a packet is [metadata][payload][crc8], byte stuffed so that
// 0x00 only appears as the final terminator. Capture to target packets
// carry 3 metadata bytes (cmd, sub_cmd, dlen), target to capture packets
// carry 2 (cmd, dlen).
package packet

import (
	"fmt"
	"io"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/checksum"
	"github.com/robotalks/simpleserial.go/pkg/cobs"
)

const (
	// MaxDataLen is the payload capacity of a packet.
	MaxDataLen = 192
	// UnstuffedSize is the size of the scratch buffer before stuffing.
	UnstuffedSize = 254
	// StuffedSize is the size of the raw frame buffer.
	StuffedSize = 256
)

// Packet is implemented by the packet shapes carried on the bus.
type Packet interface {
	// MetadataLen is the number of header bytes before the payload.
	MetadataLen() int
	// DataLenOffset is the header offset holding the payload length.
	DataLenOffset() int
	// DataLen is the declared payload length.
	DataLen() int
	// Payload returns the meaningful data bytes.
	Payload() []byte
	// PutMetadata writes the header into buf.
	PutMetadata(buf []byte)
	// Load fills the packet from a validated unstuffed run.
	Load(unstuffed []byte)
}

// Codec holds the scratch buffers used for one packet at a time.
// The zero value is ready to use; a Codec must not be shared between
// goroutines.
type Codec struct {
	unstuffed [UnstuffedSize]byte
	stuffed   [StuffedSize]byte
}

// Encode writes pkt as one frame.
func (c *Codec) Encode(w io.ByteWriter, pkt Packet) error {
	meta, dataLen := pkt.MetadataLen(), pkt.DataLen()
	if dataLen > MaxDataLen {
		return &IncorrectDataLengthError{BufferLength: meta + dataLen, DataLength: dataLen}
	}
	payload := pkt.Payload()

	c.unstuffed = [UnstuffedSize]byte{}
	copy(c.unstuffed[meta:], payload)
	pkt.PutMetadata(c.unstuffed[:meta])
	length := meta + len(payload)
	c.unstuffed[length] = checksum.CRC8(c.unstuffed[:length])

	c.stuffed = [StuffedSize]byte{}
	cobs.Stuff(c.stuffed[:], c.unstuffed[:])
	// the stuffed scratch continues past the packet, so the terminator is
	// placed right after the pointer, the packet and its crc.
	c.stuffed[length+2] = bus.Terminator

	if err := bus.WriteAway(w, c.stuffed[:]); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Decode reads one frame and loads it into pkt. pkt is left untouched
// unless the frame passes the size, CRC and length checks, in this order.
func (c *Codec) Decode(r io.ByteReader, pkt Packet) error {
	c.stuffed = [StuffedSize]byte{}
	n, err := bus.ReadAway(r, c.stuffed[:])
	if err != nil {
		return fmt.Errorf("read frame: %w", err)
	}
	meta := pkt.MetadataLen()
	if n < meta+3 {
		return &InsufficientBytesError{BufferLength: n}
	}

	c.unstuffed = [UnstuffedSize]byte{}
	size := cobs.Unstuff(c.unstuffed[:], c.stuffed[:])
	if !checksum.Valid(c.unstuffed[:size]) {
		return ErrCRCInvalid
	}

	dataLen := int(c.unstuffed[pkt.DataLenOffset()])
	if dataLen > MaxDataLen || size-dataLen != meta+1 {
		return &IncorrectDataLengthError{BufferLength: size, DataLength: dataLen}
	}
	pkt.Load(c.unstuffed[:size])
	return nil
}

// Encode writes pkt using a temporary Codec.
func Encode(w io.ByteWriter, pkt Packet) error {
	var c Codec
	return c.Encode(w, pkt)
}

// Decode reads into pkt using a temporary Codec.
func Decode(r io.ByteReader, pkt Packet) error {
	var c Codec
	return c.Decode(r, pkt)
}
