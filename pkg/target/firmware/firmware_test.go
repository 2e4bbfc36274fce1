package firmware

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/simpleserial.go/pkg/packet"
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
	"github.com/robotalks/simpleserial.go/pkg/target"
)

func hexBytes(t *testing.T, s string) []byte {
	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	return data
}

func TestAESEncrypt(t *testing.T) {
	p := &target.SoftPlatform{Name: "test"}
	a := NewAES(p)

	key := hexBytes(t, "000102030405060708090a0b0c0d0e0f")
	reply, err := a.SetKey(0, 16, key)
	require.NoError(t, err)
	require.Nil(t, reply)

	pt := hexBytes(t, "00112233445566778899aabbccddeeff")
	reply, err = a.Encrypt(0, 16, pt)
	require.NoError(t, err)
	require.Equal(t, ss.ReplyResult, reply.Cmd)
	require.Equal(t, hexBytes(t, "69c4e0d86a7b0430d8cdb78070b4c55a"), reply.Payload())
	require.Equal(t, 1, p.Pulses())
}

func TestAESInvalidLength(t *testing.T) {
	a := NewAES(&target.SoftPlatform{})
	_, err := a.SetKey(0, 15, make([]byte, 15))
	require.Equal(t, ss.ErrInvalidLength, err)
	_, err = a.Encrypt(0, 17, make([]byte, 17))
	require.Equal(t, ss.ErrInvalidLength, err)
	_, err = a.Authenticate(0, 1, []byte{0})
	require.Equal(t, ss.ErrInvalidLength, err)
}

func TestAESStackAndMode(t *testing.T) {
	a := NewAES(&target.SoftPlatform{})
	testCases := []struct {
		fn     func(subCmd, dlen byte, data []byte) (interface{}, error)
		reject error
	}{
		{func(s, d byte, b []byte) (interface{}, error) { return a.SelectStack(s, d, b) }, ErrUnsupportedStack},
		{func(s, d byte, b []byte) (interface{}, error) { return a.CipherMode(s, d, b) }, ErrUnsupportedMode},
	}
	for _, tc := range testCases {
		_, err := tc.fn(0, 0, nil)
		require.NoError(t, err)
		_, err = tc.fn(1, 0, nil)
		require.Equal(t, tc.reject, err)
	}
	require.Equal(t, byte(0x10), ErrUnsupportedStack.Code())
	require.Equal(t, byte(0x11), ErrUnsupportedMode.Code())
}

func TestAESAuthenticate(t *testing.T) {
	a := NewAES(&target.SoftPlatform{})
	reply, err := a.Encrypt(0, 16, make([]byte, 16))
	require.NoError(t, err)
	ct := append([]byte(nil), reply.Payload()...)
	require.Equal(t, hexBytes(t, "66e94bd4ef8a2c3b884cfa59ca342b2e"), ct)

	reply, err = a.Authenticate(0, 16, ct)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, reply.Payload())

	ct[0] ^= 0xff
	reply, err = a.Authenticate(0, 16, ct)
	require.NoError(t, err)
	require.Equal(t, []byte{0}, reply.Payload())
}

func TestAESClear(t *testing.T) {
	a := NewAES(&target.SoftPlatform{})
	_, err := a.SetKey(0, 16, hexBytes(t, "2b7e151628aed2a6abf7158809cf4f3c"))
	require.NoError(t, err)
	_, err = a.Clear(0, 0, nil)
	require.NoError(t, err)
	reply, err := a.Encrypt(0, 16, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, "66e94bd4ef8a2c3b884cfa59ca342b2e"), reply.Payload())
}

func TestInvertKey(t *testing.T) {
	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}
	reply, err := InvertKey(0, 16, data)
	require.NoError(t, err)
	require.Equal(t, ss.ReplyResult, reply.Cmd)
	require.Equal(t, []byte{15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, reply.Payload())

	_, err = InvertKey(0, 4, data[:4])
	require.Equal(t, ss.ErrInvalidLength, err)
}

func TestInstall(t *testing.T) {
	var out bytes.Buffer
	d := ss.NewDispatcher(&out, 8)
	require.NoError(t, Install(NameAES, d, &target.SoftPlatform{}))
	require.Equal(t, []byte("hkmptx"), d.Commands())

	d = ss.NewDispatcher(&out, 2)
	require.NoError(t, Install(NameInvert, d, nil))
	require.Equal(t, []byte("p"), d.Commands())

	require.Error(t, Install("des", d, nil))
	require.Zero(t, out.Len())
	require.ErrorIs(t, Install(NameAES, ss.NewDispatcher(&out, 2), &target.SoftPlatform{}), ss.ErrRegistryFull)
	require.Equal(t, "a", out.String())
}

func TestAESWithoutTrigger(t *testing.T) {
	var out bytes.Buffer
	d := ss.NewDispatcher(&out, 8)
	require.NoError(t, Install(NameAES, d, nil))
	reply, err := NewAES(nil).Encrypt(0, 16, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, hexBytes(t, "66e94bd4ef8a2c3b884cfa59ca342b2e"), reply.Payload())

	require.NoError(t, d.Handle(packet.NewCT(ss.CmdPlainText, 0, make([]byte, 16))))
	var r packet.TCPacket
	require.NoError(t, packet.Decode(&out, &r))
	require.Equal(t, ss.ReplyResult, r.Cmd)
	require.Equal(t, hexBytes(t, "66e94bd4ef8a2c3b884cfa59ca342b2e"), r.Payload())
}
