package capture

import (
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
)

// SetKey loads the cipher key on the target.
func (c *Client) SetKey(key []byte) error {
	_, err := c.Do(ss.CmdSetKey, 0, key)
	return err
}

// Encrypt sends a plaintext and returns the first result frame.
func (c *Client) Encrypt(plaintext []byte) ([]byte, error) {
	res, err := c.Do(ss.CmdPlainText, 0, plaintext)
	if err != nil {
		return nil, err
	}
	for i := range res.Replies {
		if res.Replies[i].Cmd == ss.ReplyResult {
			return append([]byte(nil), res.Replies[i].Payload()...), nil
		}
	}
	return nil, ErrUnexpectedReply
}

// Clear resets the target buffers.
func (c *Client) Clear() error {
	_, err := c.Do(ss.CmdClearBuffers, 0, nil)
	return err
}
