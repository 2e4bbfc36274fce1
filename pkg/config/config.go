// Package config provides common options to open the bus for capture
// tools and targets.
package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/robotalks/simpleserial.go/pkg/framework"
	"github.com/robotalks/simpleserial.go/pkg/target/firmware"
)

// DefaultCapacity is the default size of the command registry.
const DefaultCapacity = 16

// Duration is time.Duration read from text like "500ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	val, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(val)
	return nil
}

// Config is the common configuration.
type Config struct {
	// Bus is the URL of the bus, e.g.
	//   serial:///dev/ttyUSB0?baud=38400&timeout=500ms
	//   mqtt://host:1883/simpleserial/
	//   ws://host:8080/
	Bus string `toml:"bus"`
	// TargetID names the target on MQTT.
	TargetID    string   `toml:"target-id"`
	Capacity    int      `toml:"capacity"`
	ReadTimeout Duration `toml:"read-timeout"`
	Firmware    string   `toml:"firmware"`
	// Listen is the websocket address a simulated target serves on.
	Listen string `toml:"listen"`
	// Description is announced by targets on MQTT.
	Description string `toml:"description"`
}

var (
	defaultConfig = Config{
		Bus:         "serial:///dev/ttyUSB0",
		Capacity:    DefaultCapacity,
		ReadTimeout: Duration(500 * time.Millisecond),
		Firmware:    firmware.NameAES,
	}
	configFile string
)

func init() {
	if val := os.Getenv("SS_BUS"); val != "" {
		defaultConfig.Bus = val
	}
	if val := os.Getenv("SS_TARGET_ID"); val != "" {
		defaultConfig.TargetID = val
	}
	configFile = os.Getenv("SS_CONFIG")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "TOML configuration file.")
	flag.StringVar(&defaultConfig.Bus, "bus", defaultConfig.Bus, "Bus URL (serial, mqtt, ws).")
	flag.StringVar(&defaultConfig.TargetID, "target-id", defaultConfig.TargetID, "Target ID on MQTT, defaults to machine ID.")
	flag.IntVar(&defaultConfig.Capacity, "capacity", defaultConfig.Capacity, "Command registry capacity.")
	flag.Var((*durationFlag)(&defaultConfig.ReadTimeout), "read-timeout", "Bus read timeout, 0 blocks.")
	flag.StringVar(&defaultConfig.Firmware, "firmware", defaultConfig.Firmware, "Target firmware: aes or invert.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket listen address of the target.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Load creates a Config from defaults, the TOML file named by -config or
// SS_CONFIG, then the flags explicitly set on the command line.
func Load() (*Config, error) {
	conf := NewConfig()
	if configFile == "" {
		return conf, conf.Validate()
	}
	if err := conf.LoadFile(configFile); err != nil {
		return nil, err
	}
	explicit := *NewConfig()
	flag.Visit(func(f *flag.Flag) {
		conf.applyFlag(f.Name, &explicit)
	})
	return conf, conf.Validate()
}

// LoadFile merges the TOML file into c.
func (c *Config) LoadFile(fn string) error {
	if _, err := toml.DecodeFile(fn, c); err != nil {
		return fmt.Errorf("load config %s: %w", fn, err)
	}
	return nil
}

func (c *Config) applyFlag(name string, from *Config) {
	switch name {
	case "bus":
		c.Bus = from.Bus
	case "target-id":
		c.TargetID = from.TargetID
	case "capacity":
		c.Capacity = from.Capacity
	case "read-timeout":
		c.ReadTimeout = from.ReadTimeout
	case "firmware":
		c.Firmware = from.Firmware
	case "listen":
		c.Listen = from.Listen
	}
}

// ResolveTargetID returns TargetID, falling back to the machine id.
func (c *Config) ResolveTargetID() string {
	if c.TargetID == "" {
		c.TargetID = MachineID()
	}
	return c.TargetID
}

// Validate checks all fields and reports every problem found.
func (c *Config) Validate() error {
	errs := &framework.AggregatedError{}
	if c.Bus == "" && c.Listen == "" {
		errs.Add(fmt.Errorf("bus URL must be specified"))
	}
	if c.Bus != "" {
		if _, err := url.Parse(c.Bus); err != nil {
			errs.Add(fmt.Errorf("invalid bus URL: %w", err))
		}
	}
	if c.Capacity < 0 {
		errs.Add(fmt.Errorf("negative capacity %d", c.Capacity))
	}
	if c.ReadTimeout < 0 {
		errs.Add(fmt.Errorf("negative read timeout %v", time.Duration(c.ReadTimeout)))
	}
	switch c.Firmware {
	case firmware.NameAES, firmware.NameInvert:
	default:
		errs.Add(fmt.Errorf("unknown firmware %q", c.Firmware))
	}
	return errs.Aggregate()
}

type durationFlag Duration

func (d *durationFlag) String() string {
	return time.Duration(*d).String()
}

func (d *durationFlag) Set(val string) error {
	return (*Duration)(d).UnmarshalText([]byte(val))
}
