// Package framework runs the long lived parts of a program, such as a
// target loop and its transport, and collects their errors.
package framework

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait after a second stop signal.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun attaches a name to runnable, used in logs.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{Runnable: runnable, name: name}
}

func nameOf(runnable Runnable, index int) string {
	if named, ok := runnable.(Named); ok {
		return named.Name()
	}
	return strconv.Itoa(index)
}

// Runner runs Runnables concurrently on a shared context.
type Runner struct {
	ctx     context.Context
	running int
	results chan error
	forced  chan struct{}
}

// NewRunner creates a Runner on a background context.
func NewRunner() *Runner {
	return &Runner{
		ctx:     context.Background(),
		results: make(chan error, 1),
		forced:  make(chan struct{}),
	}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second signal
// makes Wait return ErrForcedExit without waiting.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.ctx)
	r.ctx = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.forced)
	}()
	return r
}

// Go starts each runnable in its own goroutine.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		name := nameOf(runnable, r.running)
		r.running++
		glog.V(4).Infof("start %s", name)
		go func(runnable Runnable) {
			err := runnable.Run(r.ctx)
			glog.V(4).Infof("%s stopped: %v", name, err)
			r.results <- err
		}(runnable)
	}
	return r
}

// Wait blocks until every started runnable returns. Cancellation is not
// an error.
func (r *Runner) Wait() error {
	errs := &AggregatedError{}
	for ; r.running > 0; r.running-- {
		select {
		case err := <-r.results:
			if !errors.Is(err, context.Canceled) {
				errs.Add(err)
			}
		case <-r.forced:
			return ErrForcedExit
		}
	}
	return errs.Aggregate()
}

// RunOrFail runs runnables until they all stop or a signal arrives, and
// exits the process on error.
func RunOrFail(runnables ...Runnable) {
	if err := NewRunner().HandleSignals().Go(runnables...).Wait(); err != nil {
		log.Fatalln(err)
	}
}

// RunWithContextCloser runs fn, which can't watch a context, like a loop
// blocked on reading a bus. When ctx is done closer is closed to make fn
// return and context.Canceled is reported. closer is closed once in
// either case.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()
	select {
	case err := <-done:
		closer.Close()
		return err
	case <-ctx.Done():
		closer.Close()
		<-done
		return context.Canceled
	}
}
