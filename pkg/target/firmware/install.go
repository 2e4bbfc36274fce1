package firmware

import (
	"fmt"

	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
	"github.com/robotalks/simpleserial.go/pkg/target"
)

// Firmware names.
const (
	NameAES    = "aes"
	NameInvert = "invert"
)

// Install registers the handlers of the named firmware into d.
func Install(name string, d *ss.Dispatcher, trigger target.Trigger) error {
	switch name {
	case NameAES:
		return NewAES(trigger).Register(d)
	case NameInvert:
		return RegisterInvertKey(d)
	default:
		return fmt.Errorf("unknown firmware %q", name)
	}
}
