package target

import (
	"sync"

	"github.com/golang/glog"
)

// Trigger marks the window of interest on the measurement trace.
type Trigger interface {
	TriggerHigh()
	TriggerLow()
}

// NoTrigger is a Trigger without an output.
type NoTrigger struct{}

// TriggerHigh implements Trigger.
func (NoTrigger) TriggerHigh() {}

// TriggerLow implements Trigger.
func (NoTrigger) TriggerLow() {}

// Platform is the board support the target runs on.
type Platform interface {
	// Init brings up clocks and peripherals.
	Init()
	// InitUART prepares the serial link to the capture board.
	InitUART()
	// TriggerSetup configures the trigger output.
	TriggerSetup()

	Trigger
}

// SoftPlatform is a Platform without hardware. It logs the bring-up and
// counts trigger pulses.
type SoftPlatform struct {
	Name string

	lock   sync.Mutex
	high   bool
	pulses int
}

// Init implements Platform.
func (p *SoftPlatform) Init() {
	glog.Infof("%s: platform init", p.Name)
}

// InitUART implements Platform.
func (p *SoftPlatform) InitUART() {
	glog.Infof("%s: uart init", p.Name)
}

// TriggerSetup implements Platform.
func (p *SoftPlatform) TriggerSetup() {
	glog.Infof("%s: trigger setup", p.Name)
}

// TriggerHigh implements Trigger.
func (p *SoftPlatform) TriggerHigh() {
	p.lock.Lock()
	p.high = true
	p.lock.Unlock()
}

// TriggerLow implements Trigger.
func (p *SoftPlatform) TriggerLow() {
	p.lock.Lock()
	if p.high {
		p.pulses++
	}
	p.high = false
	p.lock.Unlock()
}

// Pulses returns the number of completed trigger pulses.
func (p *SoftPlatform) Pulses() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.pulses
}
