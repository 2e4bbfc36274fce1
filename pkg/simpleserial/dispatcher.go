package simpleserial

import (
	"github.com/golang/glog"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/packet"
)

// registryFullByte is written to the bus when Push fails.
const registryFullByte byte = 'a'

// Handler is invoked for a command byte it is registered with.
// A nil reply sends nothing, an error stops the dispatch of the frame.
type Handler interface {
	HandleCommand(subCmd, dlen byte, data []byte) (*packet.TCPacket, error)
}

// HandlerFunc is func type of Handler.
type HandlerFunc func(subCmd, dlen byte, data []byte) (*packet.TCPacket, error)

// HandleCommand implements Handler.
func (f HandlerFunc) HandleCommand(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	return f(subCmd, dlen, data)
}

type command struct {
	cmd     byte
	handler Handler
}

// Dispatcher owns a fixed capacity registry of handlers and serves one
// frame per AttemptHandle call. It is meant to be driven from a single
// goroutine; handlers must be pushed before the first frame is handled.
type Dispatcher struct {
	Bus bus.Bus

	cmds  []command
	size  int
	codec packet.Codec
	in    packet.CTPacket
	out   packet.TCPacket
}

// NewDispatcher creates a Dispatcher with room for capacity handlers.
func NewDispatcher(b bus.Bus, capacity int) *Dispatcher {
	if capacity < 0 {
		capacity = 0
	}
	return &Dispatcher{Bus: b, cmds: make([]command, capacity)}
}

// Capacity returns the number of slots in the registry.
func (d *Dispatcher) Capacity() int {
	return len(d.cmds)
}

// Len returns the number of registered handlers.
func (d *Dispatcher) Len() int {
	return d.size
}

// Commands returns the registered command bytes in registration order.
func (d *Dispatcher) Commands() []byte {
	cmds := make([]byte, d.size)
	for i := range cmds {
		cmds[i] = d.cmds[i].cmd
	}
	return cmds
}

// Push appends a handler for cmd. Several handlers may share a command
// byte, they run in registration order. Push fails once fewer than two
// free slots remain.
func (d *Dispatcher) Push(cmd byte, h Handler) error {
	if len(d.cmds)-d.size < 2 {
		glog.Warningf("registry full, dropping handler for %q", cmd)
		d.Bus.WriteByte(registryFullByte)
		return ErrRegistryFull
	}
	d.cmds[d.size] = command{cmd: cmd, handler: h}
	d.size++
	return nil
}

// PushFunc is Push for a plain func.
func (d *Dispatcher) PushFunc(cmd byte, fn func(subCmd, dlen byte, data []byte) (*packet.TCPacket, error)) error {
	return d.Push(cmd, HandlerFunc(fn))
}

// AttemptHandle reads one frame and handles it. Frame errors are returned
// without sending anything back.
func (d *Dispatcher) AttemptHandle() error {
	if err := d.codec.Decode(d.Bus, &d.in); err != nil {
		return err
	}
	return d.Handle(&d.in)
}

// Handle serves a decoded packet and writes the replies.
func (d *Dispatcher) Handle(pkt *packet.CTPacket) error {
	if glog.V(2) {
		glog.Infof("CMD %q scmd=0x%02x dlen=%d", pkt.Cmd, pkt.SubCmd, pkt.Dlen)
	}
	switch pkt.Cmd {
	case CmdVersion:
		d.out = packet.TCPacket{Cmd: ReplyResult, Dlen: 1}
		d.out.Data[0] = Version
		return d.send(&d.out)
	case CmdListCommands:
		d.out = packet.TCPacket{Cmd: ReplyResult}
		for i := 0; i < d.size && i < packet.MaxDataLen; i++ {
			d.out.Data[i] = d.cmds[i].cmd
			d.out.Dlen++
		}
		return d.send(&d.out)
	}

	for i := 0; i < d.size; i++ {
		if d.cmds[i].cmd != pkt.Cmd {
			continue
		}
		reply, err := d.cmds[i].handler.HandleCommand(pkt.SubCmd, pkt.Dlen, pkt.Payload())
		if err != nil {
			glog.V(2).Infof("CMD %q failed: %v", pkt.Cmd, err)
			return d.sendStatus(StatusOf(err))
		}
		if reply != nil {
			if err = d.send(reply); err != nil {
				return err
			}
		}
	}
	return d.sendStatus(StatusOK.Code())
}

func (d *Dispatcher) sendStatus(code byte) error {
	d.out = packet.TCPacket{Cmd: ReplyStatus, Dlen: 1}
	d.out.Data[0] = code
	return d.send(&d.out)
}

func (d *Dispatcher) send(pkt *packet.TCPacket) error {
	return d.codec.Encode(d.Bus, pkt)
}
