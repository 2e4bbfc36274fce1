// Package sh provides the interactive capture shell.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/bus/mqtt"
	"github.com/robotalks/simpleserial.go/pkg/capture"
	"github.com/robotalks/simpleserial.go/pkg/config"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	Shell  *ishell.Shell
	Config *config.Config
	Conn   *Conn
}

// Conn is an opened bus with a capture client on it.
type Conn struct {
	Name   string
	Bus    bus.Conn
	Client *capture.Client
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ClientFrom gets the capture client of the current connection.
func ClientFrom(c *ishell.Context) *capture.Client {
	return ShellFrom(c).Conn.Client
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// Print prints v as JSON in JSON mode, or as text otherwise.
func Print(c *ishell.Context, v interface{}, text string) error {
	if ShellFrom(c).OutputJSON {
		out, err := json.Marshal(v)
		if err != nil {
			c.Err(err)
			return err
		}
		c.Println(string(out))
		return nil
	}
	c.Println(text)
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// IsMQTT tells whether the configured bus is an MQTT broker.
func (s *Shell) IsMQTT() bool {
	u, err := url.Parse(s.Config.Bus)
	return err == nil && (u.Scheme == "mqtt" || u.Scheme == "mqtts")
}

// DiscoverTargets discovers targets announced on the MQTT broker.
func (s *Shell) DiscoverTargets() ([]mqtt.TargetInfo, error) {
	if !s.IsMQTT() {
		return nil, fmt.Errorf("discovery requires an MQTT bus, got %q", s.Config.Bus)
	}
	q, err := s.Config.NewQueue()
	if err != nil {
		return nil, err
	}
	defer q.Close()
	return mqtt.Discover(context.TODO(), q, mqtt.DefaultDiscoverTimeout)
}

// SelectTarget discovers targets and asks for a choice.
func (s *Shell) SelectTarget() (*mqtt.TargetInfo, error) {
	infoList, err := s.DiscoverTargets()
	if err != nil {
		return nil, err
	}
	if len(infoList) == 0 {
		return nil, nil
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 targets discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &infoList[index], nil
}

// FormatInfo prints TargetInfo into friendly string for display.
func FormatInfo(info mqtt.TargetInfo) string {
	str := info.ID
	if info.Firmware != "" {
		str += " [" + info.Firmware + "]"
	}
	if info.Description != "" {
		str += ": " + info.Description
	}
	return str
}

// Connect opens the bus in Config.
func (s *Shell) Connect() error {
	b, err := s.Config.OpenBus(config.RoleCapture)
	if err != nil {
		return err
	}
	name := s.Config.Bus
	if s.IsMQTT() {
		name = s.Config.TargetID
	}
	s.Disconnect()
	s.Conn = &Conn{Name: name, Bus: b, Client: capture.NewClient(b)}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", name))
	return nil
}

// Disconnect disconnects current bus.
func (s *Shell) Disconnect() {
	if s.Conn != nil {
		s.Conn.Bus.Close()
		s.Conn = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	if s.AutoConnect && s.Config.Bus != "" && (!s.IsMQTT() || s.Config.TargetID != "") {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Bus)
		}
		if err := s.Connect(); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Bus, err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers targets.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"ls"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverTargets()
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(infoList) == 0 {
					infoList = []mqtt.TargetInfo{}
				}
				Print(c, infoList, "")
				return
			}
			if len(infoList) == 0 {
				c.Println("No targets found")
				return
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd opens a bus.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[URL] [TARGET-ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 {
				s.Config.Bus = c.Args[0]
			}
			if len(c.Args) > 1 {
				s.Config.TargetID = c.Args[1]
			} else if s.IsMQTT() && s.Config.TargetID == "" {
				info, err := s.SelectTarget()
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no target discovered"))
					return
				}
				s.Config.TargetID = info.ID
			}
			if err := s.Connect(); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current bus.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	New(conf).WithAutoConnect(true).Run(flag.Args()...)
}
