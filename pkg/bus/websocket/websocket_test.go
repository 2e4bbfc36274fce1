package websocket

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/packet"
)

func TestServeAndDial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan packet.CTPacket, 1)
	served := make(chan error, 1)
	go func() {
		served <- ServeListener(ctx, ln, func(ctx context.Context, b *Bus) error {
			var in packet.CTPacket
			if err := packet.Decode(b, &in); err != nil {
				return err
			}
			received <- in
			return packet.Encode(b, packet.NewTC('r', []byte{2}))
		})
	}()

	b, err := Dial("ws://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, packet.Encode(b, packet.NewCT('v', 0, nil)))
	select {
	case in := <-received:
		require.Equal(t, byte('v'), in.Cmd)
	case <-time.After(5 * time.Second):
		t.Fatal("frame not received")
	}

	var reply packet.TCPacket
	require.NoError(t, packet.Decode(b, &reply))
	require.Equal(t, byte('r'), reply.Cmd)
	require.Equal(t, []byte{2}, reply.Payload())

	cancel()
	select {
	case <-served:
	case <-time.After(5 * time.Second):
		t.Fatal("server not stopped")
	}
}

func TestReadTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ServeListener(ctx, ln, func(ctx context.Context, b *Bus) error {
		<-ctx.Done()
		return nil
	})

	b, err := Dial("ws://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	defer b.Close()
	b.ReadTimeout = 20 * time.Millisecond
	_, err = b.ReadByte()
	require.ErrorIs(t, err, bus.ErrReadTimeout)
}
