package libevents

import (
	"context"
	"sync/atomic"
)

type (
	// Callback is a listener function that completes before returning.
	Callback func(ctx context.Context, args ...any) error

	// AsyncCallback is a listener function whose work settles later, through the returned Future.
	AsyncCallback func(ctx context.Context, args ...any) Future

	// Future settles once a value is received from it or it is closed. A nil Future is already settled.
	Future <-chan error
)

type listenerMode byte

const (
	modeAlways listenerMode = iota
	modeOnce
)

// Listener is the handle registered against an event key. Listeners are compared by pointer, so the same
// *Listener must be passed to Off to remove it.
type Listener struct {
	fn      Callback
	asyncFn AsyncCallback
}

// NewListener wraps a synchronous callback.
func NewListener(fn Callback) *Listener {
	return &Listener{fn: fn}
}

// NewAsyncListener wraps a callback that reports completion through a Future.
func NewAsyncListener(fn AsyncCallback) *Listener {
	return &Listener{asyncFn: fn}
}

func (l *Listener) valid() bool {
	return l != nil && (l.fn != nil || l.asyncFn != nil)
}

func (l *Listener) call(ctx context.Context, args []any) (Future, error) {
	if l.asyncFn != nil {
		return l.asyncFn(ctx, args...), nil
	}
	return nil, l.fn(ctx, args...)
}

// Async runs fn on its own goroutine and returns a Future that settles with its result.
func Async(fn func() error) Future {
	c := make(chan error, 1)
	go func() {
		c <- fn()
		close(c)
	}()
	return c
}

// Resolved returns a Future that is already settled with err.
func Resolved(err error) Future {
	c := make(chan error, 1)
	c <- err
	close(c)
	return c
}

func (f Future) wait(ctx context.Context) error {
	if f == nil {
		return nil
	}
	select {
	case err := <-f:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// listenerRecord is owned by exactly one per-key sequence of the dispatcher.
type listenerRecord struct {
	listener *Listener
	mode     listenerMode
	// claimed is set while a once record is being invoked or after it ran successfully.
	claimed atomic.Bool
}

func newListenerRecord(l *Listener, mode listenerMode) *listenerRecord {
	return &listenerRecord{listener: l, mode: mode}
}

func (r *listenerRecord) isOnce() bool {
	return r.mode == modeOnce
}
