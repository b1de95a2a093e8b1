// Package libevents provides an in-process publish/subscribe dispatcher. Listeners are registered against event
// keys and run in registration order when the key is emitted, optionally waiting for each one to settle before
// the next one starts.
package libevents

import (
	"slices"
	"sync"

	"github.com/pkg/errors"
)

// EventDispatcher maps event keys to ordered listener sequences. Listeners registered through OnWithKey can
// later be removed by a caller chosen remove key, or in bulk by the master key they were grouped under.
//
// The lock is never held while a listener runs, so listeners may register, remove or emit freely. Emissions of
// the same key from different goroutines are not serialized against each other.
type EventDispatcher struct {
	lock sync.RWMutex

	// events never holds an empty sequence: the key is deleted instead.
	events map[Key][]*listenerRecord

	removeKeys map[string]removeEntry
	masterKeys map[string]map[string]removeEntry

	listenersCache  *listenersCache
	validationCache *validationCache

	debug   *debugFilter
	logArgs bool
	logger  Logger
}

type removeEntry struct {
	eventKey Key
	listener *Listener
}

// NewEventDispatcher creates a new EventDispatcher and returns a pointer to it. A nil logger logs through the
// logrus standard logger.
func NewEventDispatcher(logger Logger, cfg Config) *EventDispatcher {
	if logger == nil {
		logger = NewLogrusLogger(nil)
	}

	return &EventDispatcher{
		events:          make(map[Key][]*listenerRecord),
		removeKeys:      make(map[string]removeEntry),
		masterKeys:      make(map[string]map[string]removeEntry),
		listenersCache:  newListenersCache(cfg.ListenersCacheSize),
		validationCache: newValidationCache(cfg.ValidationCacheSize),
		debug:           newDebugFilter(cfg.Debug),
		logArgs:         cfg.LogArgs,
		logger:          guardLogger(logger).WithField("type", "event_dispatcher"),
	}
}

// On appends the listener to the sequence of key.
func (d *EventDispatcher) On(key Key, l *Listener) error {
	return d.register("on", key, l, modeAlways, false)
}

// Prepend inserts the listener at the head of the sequence of key, so it runs first.
func (d *EventDispatcher) Prepend(key Key, l *Listener) error {
	return d.register("prepend", key, l, modeAlways, true)
}

// Once is like On, but the listener is removed after its first successful invocation.
func (d *EventDispatcher) Once(key Key, l *Listener) error {
	return d.register("once", key, l, modeOnce, false)
}

// PrependOnce is like Prepend, but the listener is removed after its first successful invocation.
func (d *EventDispatcher) PrependOnce(key Key, l *Listener) error {
	return d.register("prependOnce", key, l, modeOnce, true)
}

func (d *EventDispatcher) register(op string, key Key, l *Listener, mode listenerMode, prepend bool) error {
	if !l.valid() {
		return errors.Wrapf(ErrInvalidListener, "%s %s", op, key)
	}

	if !d.isSafeKey(key) {
		d.logger.Errorf("%s: rejected unsafe event key %q", op, key)
		return errors.Wrapf(ErrUnsafeKey, "%s %q", op, key)
	}

	d.logListen(key)

	d.lock.Lock()
	defer d.lock.Unlock()

	d.insertLocked(key, newListenerRecord(l, mode), prepend)
	return nil
}

func (d *EventDispatcher) insertLocked(key Key, record *listenerRecord, prepend bool) {
	if prepend {
		d.events[key] = append([]*listenerRecord{record}, d.events[key]...)
	} else {
		d.events[key] = append(d.events[key], record)
	}
	d.listenersCache.invalidate(key)
}

// detachLocked removes the first record of key accepted by match. The caller invalidates the cache.
func (d *EventDispatcher) detachLocked(key Key, match func(*listenerRecord) bool) bool {
	records, found := d.events[key]
	if !found {
		return false
	}

	idx := slices.IndexFunc(records, match)
	if idx < 0 {
		return false
	}

	records = slices.Delete(records, idx, idx+1)
	if len(records) == 0 {
		delete(d.events, key)
	} else {
		d.events[key] = records
	}
	return true
}

func (d *EventDispatcher) detachListenerLocked(key Key, l *Listener) bool {
	return d.detachLocked(key, func(r *listenerRecord) bool { return r.listener == l })
}

// Off removes the first occurrence of the listener from the sequence of key. It reports whether a listener
// was removed.
func (d *EventDispatcher) Off(key Key, l *Listener) bool {
	if !d.isSafeKey(key) {
		d.logger.Errorf("off: rejected unsafe event key %q", key)
		return false
	}
	if l == nil {
		return false
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.detachListenerLocked(key, l) {
		d.logger.Debugf("off: listener not found for event %q", key)
		return false
	}
	d.listenersCache.invalidate(key)
	return true
}

// RemoveListeners drops every listener of key.
func (d *EventDispatcher) RemoveListeners(key Key) bool {
	if !d.isSafeKey(key) {
		d.logger.Errorf("removeListeners: rejected unsafe event key %q", key)
		return false
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	if _, found := d.events[key]; !found {
		return false
	}
	delete(d.events, key)
	d.listenersCache.invalidate(key)
	return true
}

// RemoveAllListeners clears every listener and every remove key.
func (d *EventDispatcher) RemoveAllListeners() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.events = make(map[Key][]*listenerRecord)
	d.removeKeys = make(map[string]removeEntry)
	d.masterKeys = make(map[string]map[string]removeEntry)
	d.listenersCache.invalidateAll()
}

// Listeners returns the listeners of key in invocation order.
func (d *EventDispatcher) Listeners(key Key) []*Listener {
	records := d.snapshot(key)
	listeners := make([]*Listener, len(records))
	for i, r := range records {
		listeners[i] = r.listener
	}
	return listeners
}

func (d *EventDispatcher) ListenerCount(key Key) int {
	return len(d.snapshot(key))
}

// EventKeys returns the keys that currently have at least one listener, in no particular order.
func (d *EventDispatcher) EventKeys() []Key {
	d.lock.RLock()
	defer d.lock.RUnlock()

	keys := make([]Key, 0, len(d.events))
	for k := range d.events {
		keys = append(keys, k)
	}
	return keys
}

// snapshot returns the records of key as they are now. The returned slice must not be modified.
func (d *EventDispatcher) snapshot(key Key) []*listenerRecord {
	if !d.isSafeKey(key) {
		return nil
	}

	d.lock.RLock()
	defer d.lock.RUnlock()

	if records, found := d.listenersCache.get(key); found {
		return records
	}

	records, found := d.events[key]
	if !found {
		return nil
	}
	// writers hold the exclusive lock, so nothing can change the table between the read and the put
	records = slices.Clone(records)
	d.listenersCache.put(key, records)
	return records
}

func (d *EventDispatcher) isSafeKey(key Key) bool {
	return d.validationCache.isSafe(key)
}

// SetDebug replaces the debug filter. "all" logs every key, an empty filter disables diagnostics.
func (d *EventDispatcher) SetDebug(filter string) {
	d.debug.set(filter)
}

func (d *EventDispatcher) Debug() string {
	return d.debug.get()
}

func (d *EventDispatcher) logListen(key Key) {
	if d.debug.matches(key) {
		d.logger.Infof("Listen Event: %s", key)
	}
}

func (d *EventDispatcher) logFire(key Key, args []any) {
	if !d.debug.matches(key) {
		return
	}
	if d.logArgs && len(args) > 0 {
		d.logger.Infof("Fire Event: %s %s", key, summarizeArgs(args))
		return
	}
	d.logger.Infof("Fire Event: %s", key)
}
