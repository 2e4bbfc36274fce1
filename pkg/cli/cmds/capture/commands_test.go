package capture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/simpleserial.go/pkg/capture"
	"github.com/robotalks/simpleserial.go/pkg/packet"
)

func TestParseHex(t *testing.T) {
	testCases := []struct {
		args []string
		data []byte
	}{
		{nil, []byte{}},
		{[]string{"0011"}, []byte{0x00, 0x11}},
		{[]string{"00", "11", "ff"}, []byte{0x00, 0x11, 0xff}},
		{[]string{"de:ad:be:ef"}, []byte{0xde, 0xad, 0xbe, 0xef}},
		{[]string{"0x2b7e"}, []byte{0x2b, 0x7e}},
	}
	for _, tc := range testCases {
		data, err := ParseHex(tc.args)
		require.NoError(t, err, tc.args)
		require.Equal(t, tc.data, data, tc.args)
	}
	_, err := ParseHex([]string{"abc"})
	require.Error(t, err)
	_, err = ParseHex([]string{"zz"})
	require.Error(t, err)
}

func TestParseCmd(t *testing.T) {
	cmd, err := ParseCmd("p")
	require.NoError(t, err)
	require.Equal(t, byte('p'), cmd)
	cmd, err = ParseCmd("0x70")
	require.NoError(t, err)
	require.Equal(t, byte('p'), cmd)
	_, err = ParseCmd("256")
	require.Error(t, err)
}

func TestParseSendArgs(t *testing.T) {
	testCases := []struct {
		args   []string
		subCmd byte
		data   []byte
		err    bool
	}{
		{nil, 0, []byte{}, false},
		{[]string{"1"}, 1, []byte{}, false},
		{[]string{"0x21"}, 0x21, []byte{}, false},
		{[]string{"255"}, 255, []byte{}, false},
		{[]string{"1", "aabb"}, 1, []byte{0xaa, 0xbb}, false},
		{[]string{"0x21", "aa", "bb"}, 0x21, []byte{0xaa, 0xbb}, false},
		{[]string{"00112233"}, 0, []byte{0x00, 0x11, 0x22, 0x33}, false},
		{[]string{"ab"}, 0, []byte{0xab}, false},
		{[]string{"zz", "aa"}, 0, nil, true},
		{[]string{"1", "abc"}, 0, nil, true},
	}
	for _, tc := range testCases {
		subCmd, data, err := ParseSendArgs(tc.args)
		if tc.err {
			require.Error(t, err, tc.args)
			continue
		}
		require.NoError(t, err, tc.args)
		require.Equal(t, tc.subCmd, subCmd, tc.args)
		require.Equal(t, tc.data, data, tc.args)
	}
}

func TestFormatResult(t *testing.T) {
	require.Equal(t, "OK", FormatResult(nil).String())

	res := &capture.Result{
		Replies: []packet.TCPacket{*packet.NewTC('r', []byte{0xab, 0x01})},
		Status:  0x10,
	}
	st := FormatResult(res)
	require.Equal(t, []Reply{{Cmd: "r", Data: "ab01"}}, st.Replies)
	require.Equal(t, "r ab01\nERR 16", st.String())
}
