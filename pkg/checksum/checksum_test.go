package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC8(t *testing.T) {
	require.Equal(t, byte(0x62), CRC8([]byte("123456789")))
	require.Equal(t, byte(0x36), CRC8([]byte{'r', 1, 2}))
	require.Equal(t, byte(0x70), CRC8([]byte{'e', 1, 0}))
	require.Zero(t, CRC8(nil))
}

func TestValid(t *testing.T) {
	require.True(t, Valid([]byte{'r', 1, 2, 0x36}))
	require.True(t, Valid([]byte{0, 0, 'r', 1, 2, 0x36}), "leading zeros")
	require.False(t, Valid([]byte{'r', 1, 3, 0x36}))
	require.False(t, Valid([]byte{'r', 1, 2, 0x37}))
}
