package mqtt

import (
	"io"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/simpleserial.go/pkg/bus"
)

// Topic suffixes for the two directions of a target.
const (
	TopicCT   = "ct"
	TopicTC   = "tc"
	TopicMeta = "meta"
)

// frameQueueLen bounds frames received but not read yet.
const frameQueueLen = 16

// Publisher publishes a payload on a topic.
type Publisher interface {
	Pub(topic string, payload []byte) paho.Token
}

// Subscriber subscribes a topic.
type Subscriber interface {
	Sub(topic string, handler Handler) *Subscription
}

// Bus carries frames as MQTT messages, one frame per message.
type Bus struct {
	SubTopic    string
	PubTopic    string
	ReadTimeout time.Duration

	pub    Publisher
	sub    *Subscription
	frames chan []byte
	done   chan struct{}
	once   sync.Once

	cur  []byte
	wbuf []byte
}

// ForCapture creates a Bus used by capture side talking to target id.
func ForCapture(pub Publisher, id string) *Bus {
	return newBus(pub, id+"/"+TopicTC, id+"/"+TopicCT)
}

// ForTarget creates a Bus used by target id.
func ForTarget(pub Publisher, id string) *Bus {
	return newBus(pub, id+"/"+TopicCT, id+"/"+TopicTC)
}

func newBus(pub Publisher, subTopic, pubTopic string) *Bus {
	return &Bus{
		SubTopic: subTopic,
		PubTopic: pubTopic,
		pub:      pub,
		frames:   make(chan []byte, frameQueueLen),
		done:     make(chan struct{}),
	}
}

// Open subscribes SubTopic.
func (b *Bus) Open(s Subscriber) error {
	b.sub = s.Sub(b.SubTopic, b.HandleMessage)
	b.sub.Token.Wait()
	return b.sub.Token.Error()
}

// HandleMessage queues a received frame.
func (b *Bus) HandleMessage(topic string, payload []byte) {
	frame := make([]byte, len(payload))
	copy(frame, payload)
	select {
	case b.frames <- frame:
	case <-b.done:
	default:
		glog.Warningf("mqtt bus %s: frame dropped, queue full", topic)
	}
}

// ReadByte implements io.ByteReader.
func (b *Bus) ReadByte() (byte, error) {
	for len(b.cur) == 0 {
		if err := b.nextFrame(); err != nil {
			return 0, err
		}
	}
	c := b.cur[0]
	b.cur = b.cur[1:]
	return c, nil
}

func (b *Bus) nextFrame() error {
	var timeout <-chan time.Time
	if b.ReadTimeout > 0 {
		timer := time.NewTimer(b.ReadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case b.cur = <-b.frames:
		return nil
	case <-timeout:
		return bus.ErrReadTimeout
	case <-b.done:
		return io.EOF
	}
}

// WriteByte implements io.ByteWriter. The buffered frame is published
// when the terminator is written.
func (b *Bus) WriteByte(c byte) error {
	select {
	case <-b.done:
		return io.ErrClosedPipe
	default:
	}
	b.wbuf = append(b.wbuf, c)
	if c != bus.Terminator {
		return nil
	}
	frame := b.wbuf
	b.wbuf = nil
	token := b.pub.Pub(b.PubTopic, frame)
	token.Wait()
	return token.Error()
}

// Close implements io.Closer.
func (b *Bus) Close() (err error) {
	b.once.Do(func() {
		close(b.done)
		if b.sub != nil {
			err = b.sub.Close()
		}
	})
	return
}
