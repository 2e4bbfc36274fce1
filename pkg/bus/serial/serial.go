// Package serial opens a UART as a bus.
package serial

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/tarm/serial"

	"github.com/robotalks/simpleserial.go/pkg/bus"
)

// DefaultBaud is the default baud rate of capture boards.
const DefaultBaud = 38400

// Config is the serial port configuration.
type Config struct {
	Name        string
	Baud        int
	ReadTimeout time.Duration
}

// ConfigFromURL parses serial:///dev/ttyUSB0?baud=115200&timeout=500ms.
func ConfigFromURL(u *url.URL) (*Config, error) {
	conf := &Config{Name: u.Path, Baud: DefaultBaud}
	if conf.Name == "" {
		conf.Name = u.Opaque
	}
	if conf.Name == "" {
		return nil, fmt.Errorf("serial device missing in %q", u.String())
	}
	query := u.Query()
	if val := query.Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("invalid baud rate %q", val)
		}
		conf.Baud = baud
	}
	if val := query.Get("timeout"); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %v", val, err)
		}
		conf.ReadTimeout = timeout
	}
	return conf, nil
}

// Open opens the port. A zero ReadTimeout blocks reads until data arrives.
func (c *Config) Open() (*bus.Stream, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Name,
		Baud:        c.Baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	s := bus.NewStream(port)
	s.EOFIsTimeout = c.ReadTimeout > 0
	return s, nil
}
