package packet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/simpleserial.go/pkg/checksum"
	"github.com/robotalks/simpleserial.go/pkg/cobs"
)

func patternData(dlen int) []byte {
	data := make([]byte, dlen)
	for i := range data {
		data[i] = byte(i*7 + dlen)
	}
	return data
}

func TestRoundTrip(t *testing.T) {
	var codec Codec
	for dlen := 0; dlen <= MaxDataLen; dlen++ {
		var stream bytes.Buffer
		ct := NewCT('p', byte(dlen), patternData(dlen))
		require.NoErrorf(t, codec.Encode(&stream, ct), "ct dlen=%d encode", dlen)
		var ctOut CTPacket
		require.NoErrorf(t, codec.Decode(&stream, &ctOut), "ct dlen=%d decode", dlen)
		require.Equalf(t, *ct, ctOut, "ct dlen=%d mismatch", dlen)
		require.Zerof(t, stream.Len(), "ct dlen=%d left bytes", dlen)

		tc := NewTC('r', patternData(dlen))
		require.NoErrorf(t, codec.Encode(&stream, tc), "tc dlen=%d encode", dlen)
		var tcOut TCPacket
		require.NoErrorf(t, codec.Decode(&stream, &tcOut), "tc dlen=%d decode", dlen)
		require.Equalf(t, *tc, tcOut, "tc dlen=%d mismatch", dlen)
		require.Zerof(t, stream.Len(), "tc dlen=%d left bytes", dlen)
	}
}

func TestEncodeWire(t *testing.T) {
	testCases := []struct {
		name  string
		pkt   Packet
		frame []byte
	}{
		{"version", NewTC('r', []byte{2}), []byte{0x05, 0x72, 0x01, 0x02, 0x36, 0x00}},
		{"ok", NewTC('e', []byte{0}), []byte{0x03, 0x65, 0x01, 0x02, 0x70, 0x00}},
		{"empty ct", NewCT('v', 0, nil), []byte{0x02, 0x76, 0x01, 0x02, 0x22, 0x00}},
	}
	for _, tc := range testCases {
		var out bytes.Buffer
		require.NoErrorf(t, Encode(&out, tc.pkt), "%s encode", tc.name)
		require.Equalf(t, tc.frame, out.Bytes(), "%s frame mismatch", tc.name)
	}
}

func TestEncodeTooLong(t *testing.T) {
	var out bytes.Buffer
	pkt := &TCPacket{Cmd: 'r', Dlen: MaxDataLen + 1}
	err := Encode(&out, pkt)
	var lenErr *IncorrectDataLengthError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, MaxDataLen+1, lenErr.DataLength)
	require.Zero(t, out.Len())
}

// codePositions returns the indices of the stuffing code bytes in frame.
func codePositions(frame []byte) map[int]bool {
	pos := make(map[int]bool)
	for i := 0; i < len(frame) && frame[i] != 0; i += int(frame[i]) {
		pos[i] = true
	}
	return pos
}

func TestCRCSensitivity(t *testing.T) {
	// no byte of this frame outside the stuffing codes can become a
	// terminator with a single bit flip.
	var frame bytes.Buffer
	data := []byte{0x33, 0x00, 0x5a, 0xa5, 0xff, 0x00, 0x81, 0x7e, 0x03, 0x12, 0xc0}
	require.NoError(t, Encode(&frame, NewCT('p', 0x21, data)))
	wire := frame.Bytes()
	codes := codePositions(wire)

	for i := 0; i < len(wire)-1; i++ {
		if codes[i] {
			continue
		}
		for bit := uint(0); bit < 8; bit++ {
			mutated := append([]byte(nil), wire...)
			mutated[i] ^= 1 << bit
			var pkt CTPacket
			err := Decode(bytes.NewBuffer(mutated), &pkt)
			require.Errorf(t, err, "byte %d bit %d accepted", i, bit)
			require.Equalf(t, ErrCRCInvalid, err, "byte %d bit %d", i, bit)
			require.Equal(t, CTPacket{}, pkt)
		}
	}
}

func stuffFrame(unstuffed []byte) []byte {
	frame := make([]byte, cobs.MaxEncodedLen(len(unstuffed))+1)
	n := cobs.Stuff(frame, unstuffed)
	return frame[:n+1]
}

func withCRC(run []byte) []byte {
	return append(run, checksum.CRC8(run))
}

func TestDecodeLengthBound(t *testing.T) {
	run := append([]byte{'p', 0, 200}, bytes.Repeat([]byte{0x11}, 200)...)
	var pkt CTPacket
	err := Decode(bytes.NewBuffer(stuffFrame(withCRC(run))), &pkt)
	var lenErr *IncorrectDataLengthError
	require.ErrorAs(t, err, &lenErr)
	require.Equal(t, 200, lenErr.DataLength)
	require.Equal(t, 204, lenErr.BufferLength)
}

func TestDecodeLengthMismatch(t *testing.T) {
	testCases := []struct {
		name string
		run  []byte
	}{
		{"short payload", []byte{'p', 0, 5, 1, 2, 3, 4}},
		{"long payload", []byte{'p', 0, 1, 1, 2, 3, 4}},
	}
	for _, tc := range testCases {
		var pkt CTPacket
		err := Decode(bytes.NewBuffer(stuffFrame(withCRC(tc.run))), &pkt)
		var lenErr *IncorrectDataLengthError
		require.ErrorAsf(t, err, &lenErr, "%s", tc.name)
	}
}

func TestDecodeInsufficientBytes(t *testing.T) {
	var pkt CTPacket
	err := Decode(bytes.NewBuffer([]byte{0x02, 'p', 0x00}), &pkt)
	var shortErr *InsufficientBytesError
	require.ErrorAs(t, err, &shortErr)
	require.Equal(t, 3, shortErr.BufferLength)

	// a TC frame only needs 5 bytes
	var reply TCPacket
	require.NoError(t, Decode(bytes.NewBuffer([]byte{0x02, 'z', 0x02, 0x0a, 0x00}), &reply))
	require.Equal(t, byte('z'), reply.Cmd)
	require.Zero(t, reply.Dlen)
}

func TestDecodeUnterminated(t *testing.T) {
	stream := bytes.NewBuffer(bytes.Repeat([]byte{0x11}, 300))
	var pkt CTPacket
	err := Decode(stream, &pkt)
	require.Error(t, err)
	require.True(t, IsFrameError(err))
	require.Equal(t, 300-StuffedSize, stream.Len())
}

func TestDecodeBusError(t *testing.T) {
	var pkt CTPacket
	err := Decode(bytes.NewBuffer([]byte{0x05, 'p'}), &pkt)
	require.Error(t, err)
	require.False(t, IsFrameError(err))
}
