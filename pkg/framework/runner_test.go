package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestRunnerAggregatesErrors(t *testing.T) {
	boom := errors.New("boom")
	err := NewRunner().Go(
		RunFunc(func(context.Context) error { return nil }),
		NamedRun("canceled", RunFunc(func(context.Context) error { return context.Canceled })),
		NamedRun("failing", RunFunc(func(context.Context) error { return boom })),
	).Wait()
	require.Error(t, err)
	require.Equal(t, "boom", err.Error())

	var errs AggregatedError
	require.NoError(t, errs.Add(nil).Aggregate())
	errs.Add(boom, errors.New("bang"))
	require.Equal(t, "multiple errors:\n  boom\n  bang", errs.Error())
}

func TestRunWithContextCloser(t *testing.T) {
	unblock := make(chan struct{})
	var closes int
	closer := closerFunc(func() error {
		closes++
		close(unblock)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := RunWithContextCloser(ctx, closer, func() error {
		<-unblock
		return errors.New("closed")
	})
	require.Equal(t, context.Canceled, err)
	require.Equal(t, 1, closes)

	closes = 0
	unblock = make(chan struct{})
	err = RunWithContextCloser(context.Background(), closer, func() error { return nil })
	require.NoError(t, err)
	require.Equal(t, 1, closes)
}

func TestRunnerNames(t *testing.T) {
	require.Equal(t, "target", nameOf(NamedRun("target", RunFunc(nil)), 3))
	require.Equal(t, "3", nameOf(RunFunc(nil), 3))

	var errs AggregatedError
	require.Equal(t, "", errs.Error())
}
