// Package target runs a SimpleSerial dispatcher as the firmware main loop.
package target

import (
	"context"
	"errors"
	"io"

	"github.com/golang/glog"

	"github.com/robotalks/simpleserial.go/pkg/bus"
	"github.com/robotalks/simpleserial.go/pkg/framework"
	"github.com/robotalks/simpleserial.go/pkg/packet"
	ss "github.com/robotalks/simpleserial.go/pkg/simpleserial"
)

// Target polls the dispatcher for frames.
type Target struct {
	Platform   Platform
	Dispatcher *ss.Dispatcher
}

// New creates a Target.
func New(platform Platform, dispatcher *ss.Dispatcher) *Target {
	return &Target{Platform: platform, Dispatcher: dispatcher}
}

// Run implements Runnable. It brings the platform up and handles frames
// until the bus fails or ctx is done. Rejected frames are logged and
// skipped, the capture board is expected to resend.
func (t *Target) Run(ctx context.Context) error {
	t.Platform.Init()
	t.Platform.InitUART()
	t.Platform.TriggerSetup()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		err := t.Dispatcher.AttemptHandle()
		switch {
		case err == nil:
		case packet.IsFrameError(err):
			glog.Warningf("frame rejected: %v", err)
		case errors.Is(err, bus.ErrReadTimeout):
		default:
			return err
		}
	}
}

// RunClosing is Run which closes c when ctx is done, for buses blocking
// on read.
func (t *Target) RunClosing(ctx context.Context, c io.Closer) error {
	return framework.RunWithContextCloser(ctx, c, func() error {
		return t.Run(ctx)
	})
}
