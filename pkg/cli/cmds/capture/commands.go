// Package capture exposes capture client operations as shell commands.
package capture

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/simpleserial.go/pkg/capture"
	"github.com/robotalks/simpleserial.go/pkg/cli/sh"
)

// Reply is the printable form of a reply frame.
type Reply struct {
	Cmd  string `json:"cmd"`
	Data string `json:"data"`
}

// Status is the printable form of a command result.
type Status struct {
	Replies []Reply `json:"replies"`
	Status  byte    `json:"status"`
}

// ParseHex parses hex digits, ignoring spaces and colons.
func ParseHex(args []string) ([]byte, error) {
	str := strings.Join(args, "")
	str = strings.NewReplacer(" ", "", ":", "").Replace(str)
	str = strings.TrimPrefix(str, "0x")
	data, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("invalid HEX: %v", err)
	}
	return data, nil
}

// ParseCmd parses a command byte given as a character or a number.
func ParseCmd(arg string) (byte, error) {
	if len(arg) == 1 {
		return arg[0], nil
	}
	val, err := strconv.ParseUint(arg, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid command %q", arg)
	}
	return byte(val), nil
}

// ParseSendArgs splits the arguments following CMD. A leading argument
// which is a number in byte range is SCMD, the rest is HEX data.
func ParseSendArgs(args []string) (byte, []byte, error) {
	var subCmd byte
	if len(args) > 0 {
		if val, err := strconv.ParseUint(args[0], 0, 8); err == nil {
			subCmd, args = byte(val), args[1:]
		} else if len(args) > 1 {
			return 0, nil, fmt.Errorf("invalid SCMD %q", args[0])
		}
	}
	data, err := ParseHex(args)
	if err != nil {
		return 0, nil, err
	}
	return subCmd, data, nil
}

// FormatResult converts result into Status.
func FormatResult(res *capture.Result) *Status {
	st := &Status{Replies: []Reply{}}
	if res == nil {
		return st
	}
	st.Status = res.Status
	for i := range res.Replies {
		pkt := &res.Replies[i]
		st.Replies = append(st.Replies, Reply{
			Cmd:  string(rune(pkt.Cmd)),
			Data: hex.EncodeToString(pkt.Payload()),
		})
	}
	return st
}

func (s *Status) String() string {
	var lines []string
	for _, r := range s.Replies {
		lines = append(lines, r.Cmd+" "+r.Data)
	}
	if s.Status == 0 {
		lines = append(lines, "OK")
	} else {
		lines = append(lines, fmt.Sprintf("ERR %d", s.Status))
	}
	return strings.Join(lines, "\n")
}

func printResult(c *ishell.Context, res *capture.Result, err error) {
	if _, ok := err.(*capture.CommandError); err != nil && !ok {
		c.Err(err)
		return
	}
	st := FormatResult(res)
	sh.Print(c, st, st.String())
}

var (
	// VersionCmd queries the protocol version.
	VersionCmd = ishell.Cmd{
		Name:    "version",
		Aliases: []string{"v"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			ver, err := sh.ClientFrom(c).Version()
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, map[string]byte{"version": ver}, strconv.Itoa(int(ver)))
		}),
	}

	// ListCmd lists the commands registered on the target.
	ListCmd = ishell.Cmd{
		Name:    "list",
		Aliases: []string{"w"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			cmds, err := sh.ClientFrom(c).ListCommands()
			if err != nil {
				c.Err(err)
				return
			}
			names := make([]string, len(cmds))
			for n, cmd := range cmds {
				names[n] = string(rune(cmd))
			}
			sh.Print(c, names, strings.Join(names, " "))
		}),
	}

	// SendCmd sends an arbitrary command.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "CMD [SCMD] [HEX...], SCMD is a number up to 255 (e.g. 1, 0x21)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("CMD required"))
				return
			}
			cmd, err := ParseCmd(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			subCmd, data, err := ParseSendArgs(c.Args[1:])
			if err != nil {
				c.Err(err)
				return
			}
			res, err := sh.ClientFrom(c).Do(cmd, subCmd, data)
			printResult(c, res, err)
		}),
	}

	// KeyCmd sets the cipher key.
	KeyCmd = ishell.Cmd{
		Name:    "key",
		Aliases: []string{"k"},
		Help:    "HEX",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			key, err := ParseHex(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err := sh.ClientFrom(c).SetKey(key); err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, FormatResult(nil), "OK")
		}),
	}

	// PlainTextCmd encrypts a plaintext on the target.
	PlainTextCmd = ishell.Cmd{
		Name:    "pt",
		Aliases: []string{"p"},
		Help:    "HEX",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			pt, err := ParseHex(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			ct, err := sh.ClientFrom(c).Encrypt(pt)
			if err != nil {
				c.Err(err)
				return
			}
			out := hex.EncodeToString(ct)
			sh.Print(c, map[string]string{"ciphertext": out}, out)
		}),
	}

	// ClearCmd clears target buffers.
	ClearCmd = ishell.Cmd{
		Name:    "clear",
		Aliases: []string{"x"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if err := sh.ClientFrom(c).Clear(); err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, FormatResult(nil), "OK")
		}),
	}
)

func init() {
	sh.AddCmds(
		&VersionCmd,
		&ListCmd,
		&SendCmd,
		&KeyCmd,
		&PlainTextCmd,
		&ClearCmd,
	)
}
