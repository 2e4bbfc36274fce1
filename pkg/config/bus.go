package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/bus/mqtt"
	"github.com/robotalks/simpleserial.go/pkg/bus/serial"
	"github.com/robotalks/simpleserial.go/pkg/bus/websocket"
)

// Role is the side of the bus being opened.
type Role int

// Roles.
const (
	RoleCapture Role = iota
	RoleTarget
)

// OpenBus opens the bus named by c.Bus for role.
func (c *Config) OpenBus(role Role) (bus.Conn, error) {
	u, err := url.Parse(c.Bus)
	if err != nil {
		return nil, fmt.Errorf("invalid bus URL: %w", err)
	}
	switch u.Scheme {
	case "serial":
		conf, err := serial.ConfigFromURL(u)
		if err != nil {
			return nil, err
		}
		if u.Query().Get("timeout") == "" {
			conf.ReadTimeout = time.Duration(c.ReadTimeout)
		}
		s, err := conf.Open()
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mqtt", "mqtts":
		return c.openMQTT(role)
	case "ws", "wss":
		b, err := websocket.Dial(c.Bus)
		if err != nil {
			return nil, err
		}
		b.ReadTimeout = time.Duration(c.ReadTimeout)
		return b, nil
	default:
		return nil, fmt.Errorf("unknown bus URL scheme: %q", u.Scheme)
	}
}

type mqttConn struct {
	*mqtt.Bus
	queue *mqtt.Queue
}

func (c *mqttConn) Close() error {
	err := c.Bus.Close()
	c.queue.Close()
	return err
}

// NewQueue connects to the MQTT broker in c.Bus.
func (c *Config) NewQueue() (*mqtt.Queue, error) {
	q, err := mqtt.NewQueueFromURL(c.Bus)
	if err != nil {
		return nil, err
	}
	if err := q.Connect(); err != nil {
		return nil, fmt.Errorf("connect MQTT broker: %w", err)
	}
	return q, nil
}

func (c *Config) openMQTT(role Role) (bus.Conn, error) {
	id := c.ResolveTargetID()
	if id == "" {
		return nil, mqtt.ErrNoTargetID
	}
	q, err := c.NewQueue()
	if err != nil {
		return nil, err
	}
	var b *mqtt.Bus
	if role == RoleTarget {
		b = mqtt.ForTarget(q, id)
	} else {
		b = mqtt.ForCapture(q, id)
	}
	b.ReadTimeout = time.Duration(c.ReadTimeout)
	if err := b.Open(q); err != nil {
		q.Close()
		return nil, err
	}
	if role == RoleTarget {
		if err := mqtt.Announce(q, mqtt.TargetInfo{
			ID:          id,
			Description: c.Description,
			Firmware:    c.Firmware,
			Capacity:    c.Capacity,
		}); err != nil {
			glog.Warningf("announce target %s: %v", id, err)
		}
	}
	glog.Infof("mqtt bus %s opened, target %s", c.Bus, id)
	return &mqttConn{Bus: b, queue: q}, nil
}
