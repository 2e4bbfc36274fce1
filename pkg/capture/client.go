// Package capture drives a SimpleSerial target from the capture side.
package capture

import (
	"sync"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/packet"
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
)

// Result is the outcome of a command sent with Do.
type Result struct {
	// Replies are the frames received before the status frame.
	Replies []packet.TCPacket
	// Status is the status byte closing the exchange.
	Status byte
}

// Client sends commands over a Bus, one exchange at a time.
type Client struct {
	Bus bus.Bus

	codec packet.Codec
	lock  sync.Mutex
}

// NewClient creates a Client on b.
func NewClient(b bus.Bus) *Client {
	return &Client{Bus: b}
}

// Do sends a command and collects replies up to the status frame.
// A non-OK status is returned as *CommandError along with the result.
// When a reply fails to decode, the rest of the exchange is read away and
// the first frame error is returned.
func (c *Client) Do(cmd, subCmd byte, data []byte) (*Result, error) {
	if len(data) > packet.MaxDataLen {
		return nil, &packet.IncorrectDataLengthError{BufferLength: len(data) + 3, DataLength: len(data)}
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.codec.Encode(c.Bus, packet.NewCT(cmd, subCmd, data)); err != nil {
		return nil, err
	}
	res := &Result{}
	var frameErr error
	for {
		var pkt packet.TCPacket
		if err := c.codec.Decode(c.Bus, &pkt); err != nil {
			if !packet.IsFrameError(err) {
				if frameErr != nil {
					return res, frameErr
				}
				return res, err
			}
			// keep reading up to the status frame of this exchange.
			if frameErr == nil {
				frameErr = err
			}
			continue
		}
		if frameErr != nil {
			if pkt.Cmd == ss.ReplyStatus {
				return res, frameErr
			}
			continue
		}
		if pkt.Cmd != ss.ReplyStatus {
			res.Replies = append(res.Replies, pkt)
			continue
		}
		if pkt.Dlen > 0 {
			res.Status = pkt.Data[0]
		}
		if res.Status != ss.StatusOK.Code() {
			return res, &CommandError{Code: res.Status}
		}
		return res, nil
	}
}

// Version queries the protocol version.
func (c *Client) Version() (byte, error) {
	pkt, err := c.query(ss.CmdVersion)
	if err != nil {
		return 0, err
	}
	if pkt.Dlen != 1 {
		return 0, ErrUnexpectedReply
	}
	return pkt.Data[0], nil
}

// ListCommands queries the command bytes registered on the target.
func (c *Client) ListCommands() ([]byte, error) {
	pkt, err := c.query(ss.CmdListCommands)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), pkt.Payload()...), nil
}

// built-in queries are answered with a single result frame, no status.
func (c *Client) query(cmd byte) (*packet.TCPacket, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.codec.Encode(c.Bus, packet.NewCT(cmd, 0, nil)); err != nil {
		return nil, err
	}
	pkt := &packet.TCPacket{}
	if err := c.codec.Decode(c.Bus, pkt); err != nil {
		return nil, err
	}
	if pkt.Cmd != ss.ReplyResult {
		return nil, ErrUnexpectedReply
	}
	return pkt, nil
}
