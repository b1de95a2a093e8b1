package libevents

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidListener    = errors.New("listener is not invocable")
	ErrUnsafeKey          = errors.New("key is reserved and cannot be used")
	ErrDuplicateRemoveKey = errors.New("remove key is already registered")
)

// ListenerError is returned by Emit and EmitSync when a listener fails. It carries the event key and the
// position of the failing listener within the emission round.
type ListenerError struct {
	Key   Key
	Index int
	err   error
}

func (e ListenerError) Error() string {
	return fmt.Sprintf("listener #%d for event %s failed: %s", e.Index, e.Key, e.err)
}

func (e ListenerError) Unwrap() error { return e.err }

func wrapListenerError(key Key, index int, err error) error {
	if err == nil {
		return nil
	}
	return &ListenerError{
		Key:   key,
		Index: index,
		err:   err,
	}
}
