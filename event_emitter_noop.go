package libevents

import "context"

// Emitter is the contract fulfilled by EventDispatcher. Consumers that want eventing to be optional can depend
// on it and use NoopEmitter when it is disabled.
type Emitter interface {
	// On registers a new listener for the given event.
	On(key Key, l *Listener) error
	// Prepend registers a listener that runs before the ones already registered.
	Prepend(key Key, l *Listener) error
	// Once registers a listener that is removed after its first successful call.
	Once(key Key, l *Listener) error
	// PrependOnce combines Prepend and Once.
	PrependOnce(key Key, l *Listener) error

	// Off removes the specified listener from the given event.
	Off(key Key, l *Listener) bool
	// RemoveListeners removes all listeners of the given event.
	RemoveListeners(key Key) bool
	// RemoveAllListeners removes all listeners for all events.
	RemoveAllListeners()
	Listeners(key Key) []*Listener

	OnWithKey(eventKey Key, l *Listener, removeKey, masterKey string) (*Listener, error)
	OffWithKey(removeKey, masterKey string) bool
	OffByMasterKey(masterKey string) bool

	// Emit triggers all listeners registered for the given event, waiting for each one to settle.
	Emit(ctx context.Context, key Key, args ...any) (bool, error)
	// EmitSync triggers all listeners registered for the given event without waiting for their futures.
	EmitSync(ctx context.Context, key Key, args ...any) (bool, error)
}

var (
	_ Emitter = (*EventDispatcher)(nil)
	_ Emitter = NoopEmitter{}
)

// NoopEmitter accepts registrations and drops them. Emissions never reach anyone.
type NoopEmitter struct{}

func (NoopEmitter) On(Key, *Listener) error { return nil }

func (NoopEmitter) Prepend(Key, *Listener) error { return nil }

func (NoopEmitter) Once(Key, *Listener) error { return nil }

func (NoopEmitter) PrependOnce(Key, *Listener) error { return nil }

func (NoopEmitter) Off(Key, *Listener) bool { return false }

func (NoopEmitter) RemoveListeners(Key) bool { return false }

func (NoopEmitter) RemoveAllListeners() {}

func (NoopEmitter) Listeners(Key) []*Listener { return nil }

func (NoopEmitter) OnWithKey(_ Key, l *Listener, _, _ string) (*Listener, error) { return l, nil }

func (NoopEmitter) OffWithKey(string, string) bool { return false }

func (NoopEmitter) OffByMasterKey(string) bool { return false }

func (NoopEmitter) Emit(context.Context, Key, ...any) (bool, error) { return false, nil }

func (NoopEmitter) EmitSync(context.Context, Key, ...any) (bool, error) { return false, nil }
