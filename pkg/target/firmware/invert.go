package firmware

import (
	"github.com/robotalks/simpleserial.go/pkg/packet"
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
)

// InvertKey replies with the 16 byte payload reversed.
func InvertKey(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	if dlen != 16 {
		return nil, ss.ErrInvalidLength
	}
	reply := &packet.TCPacket{Cmd: ss.ReplyResult, Dlen: 16}
	for i := 0; i < 16; i++ {
		reply.Data[i] = data[15-i]
	}
	return reply, nil
}

// RegisterInvertKey pushes InvertKey for the plaintext command.
func RegisterInvertKey(d *ss.Dispatcher) error {
	return d.Push(ss.CmdPlainText, ss.HandlerFunc(InvertKey))
}
