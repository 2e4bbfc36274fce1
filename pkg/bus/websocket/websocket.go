// Package websocket carries frames over a websocket, one binary message
// per frame.
package websocket

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/framework"
)

// ErrPeerConnected is reported when a second peer connects to Serve.
var ErrPeerConnected = errors.New("peer already connected")

// Bus implements bus.Conn on a websocket connection.
type Bus struct {
	Conn        *websocket.Conn
	ReadTimeout time.Duration

	reader *bufio.Reader
	wbuf   []byte
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *Bus {
	conn.PayloadType = websocket.BinaryFrame
	return &Bus{Conn: conn, reader: bufio.NewReader(conn)}
}

// Dial connects to a websocket endpoint like ws://host:port/path.
func Dial(rawURL string) (*Bus, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}
	conn, err := websocket.Dial(rawURL, "", origin)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// ReadByte implements io.ByteReader.
func (b *Bus) ReadByte() (byte, error) {
	if b.ReadTimeout > 0 && b.reader.Buffered() == 0 {
		b.Conn.SetReadDeadline(time.Now().Add(b.ReadTimeout))
	}
	c, err := b.reader.ReadByte()
	if err != nil && os.IsTimeout(err) {
		return 0, bus.ErrReadTimeout
	}
	return c, err
}

// WriteByte implements io.ByteWriter.
func (b *Bus) WriteByte(c byte) error {
	b.wbuf = append(b.wbuf, c)
	if c != bus.Terminator {
		return nil
	}
	frame := b.wbuf
	b.wbuf = b.wbuf[:0]
	return websocket.Message.Send(b.Conn, frame)
}

// Close implements io.Closer.
func (b *Bus) Close() error {
	return b.Conn.Close()
}

// Serve accepts a single peer at a time on addr and runs fn with its Bus
// until fn returns or ctx is done.
func Serve(ctx context.Context, addr string, fn func(context.Context, *Bus) error) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, ln, fn)
}

// ServeListener is Serve on an existing listener.
func ServeListener(ctx context.Context, ln net.Listener, fn func(context.Context, *Bus) error) error {
	var lock sync.Mutex
	handler := websocket.Handler(func(conn *websocket.Conn) {
		if !lock.TryLock() {
			glog.Warningf("websocket %s: %v", conn.Request().RemoteAddr, ErrPeerConnected)
			conn.Close()
			return
		}
		defer lock.Unlock()
		glog.Infof("websocket peer %s connected", conn.Request().RemoteAddr)
		b := New(conn)
		err := framework.RunWithContextCloser(ctx, b, func() error {
			return fn(ctx, b)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			glog.Warningf("websocket peer %s: %v", conn.Request().RemoteAddr, err)
		}
		glog.Infof("websocket peer %s disconnected", conn.Request().RemoteAddr)
	})
	server := &http.Server{Handler: handler}
	err := framework.RunWithContextCloser(ctx, server, func() error {
		return server.Serve(ln)
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
