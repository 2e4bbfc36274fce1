// Package firmware contains reference target applications.
package firmware

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"

	"github.com/robotalks/simpleserial.go/pkg/packet"
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
	"github.com/robotalks/simpleserial.go/pkg/target"
)

// BlockSize is the key and block size of the AES target.
const BlockSize = aes.BlockSize

// Status codes specific to the AES target.
var (
	ErrUnsupportedStack = ss.Custom(0x10)
	ErrUnsupportedMode  = ss.Custom(0x11)
)

// AES is an AES-128 ECB target. Each plaintext is encrypted between a
// trigger high and low so the capture board records exactly one block.
type AES struct {
	Trigger target.Trigger

	key        [BlockSize]byte
	block      cipher.Block
	plaintext  [BlockSize]byte
	ciphertext [BlockSize]byte
	reply      packet.TCPacket
}

// NewAES creates the target with an all zero key. A nil trigger is
// replaced by target.NoTrigger.
func NewAES(trigger target.Trigger) *AES {
	if trigger == nil {
		trigger = target.NoTrigger{}
	}
	a := &AES{Trigger: trigger}
	a.setKey(a.key[:])
	return a
}

// Register pushes the AES handlers into d.
func (a *AES) Register(d *ss.Dispatcher) error {
	handlers := []struct {
		cmd byte
		fn  ss.HandlerFunc
	}{
		{ss.CmdSelectStack, a.SelectStack},
		{ss.CmdSetKey, a.SetKey},
		{ss.CmdCipherMode, a.CipherMode},
		{ss.CmdPlainText, a.Encrypt},
		{ss.CmdAuthChallenge, a.Authenticate},
		{ss.CmdClearBuffers, a.Clear},
	}
	for _, h := range handlers {
		if err := d.Push(h.cmd, h.fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *AES) setKey(key []byte) {
	copy(a.key[:], key)
	// a 16 byte key never fails
	a.block, _ = aes.NewCipher(a.key[:])
}

// SelectStack accepts the software implementation (0) only.
func (a *AES) SelectStack(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	if subCmd != 0 {
		return nil, ErrUnsupportedStack
	}
	return nil, nil
}

// CipherMode accepts ECB (0) only.
func (a *AES) CipherMode(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	if subCmd != 0 {
		return nil, ErrUnsupportedMode
	}
	return nil, nil
}

// SetKey loads a new key.
func (a *AES) SetKey(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	if dlen != BlockSize {
		return nil, ss.ErrInvalidLength
	}
	a.setKey(data)
	return nil, nil
}

// Encrypt encrypts one block and replies with the ciphertext.
func (a *AES) Encrypt(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	if dlen != BlockSize {
		return nil, ss.ErrInvalidLength
	}
	copy(a.plaintext[:], data)
	a.Trigger.TriggerHigh()
	a.block.Encrypt(a.ciphertext[:], a.plaintext[:])
	a.Trigger.TriggerLow()
	return a.result(a.ciphertext[:]), nil
}

// Authenticate compares the challenge with the last ciphertext and
// replies 1 on match, 0 otherwise.
func (a *AES) Authenticate(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	if dlen != BlockSize {
		return nil, ss.ErrInvalidLength
	}
	ok := byte(subtle.ConstantTimeCompare(a.ciphertext[:], data))
	return a.result([]byte{ok}), nil
}

// Clear resets key and block buffers.
func (a *AES) Clear(subCmd, dlen byte, data []byte) (*packet.TCPacket, error) {
	var zero [BlockSize]byte
	a.setKey(zero[:])
	a.plaintext = [BlockSize]byte{}
	a.ciphertext = [BlockSize]byte{}
	return nil, nil
}

func (a *AES) result(data []byte) *packet.TCPacket {
	a.reply = packet.TCPacket{Cmd: ss.ReplyResult}
	a.reply.Dlen = byte(copy(a.reply.Data[:], data))
	return &a.reply
}
