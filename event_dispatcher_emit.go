package libevents

import (
	"context"

	"github.com/pkg/errors"
)

// Emit runs the listeners of key one after the other, in the order they had when the call started. When a
// listener returns a Future, the next listener only starts after it settles or ctx is done.
//
// It reports whether at least one listener existed. The first listener failure aborts the round and is
// returned as a *ListenerError; listener panics are not recovered. Once listeners that completed before the
// failure are removed all the same.
func (d *EventDispatcher) Emit(ctx context.Context, key Key, args ...any) (bool, error) {
	return d.emit(ctx, key, true, args)
}

// EmitSync behaves like Emit without waiting for the Futures returned by asynchronous listeners.
func (d *EventDispatcher) EmitSync(ctx context.Context, key Key, args ...any) (bool, error) {
	return d.emit(ctx, key, false, args)
}

func (d *EventDispatcher) emit(ctx context.Context, key Key, await bool, args []any) (bool, error) {
	if !d.isSafeKey(key) {
		d.logger.Errorf("emit: rejected unsafe event key %q", key)
		return false, errors.Wrapf(ErrUnsafeKey, "emit %q", key)
	}

	d.logFire(key, args)

	records := d.snapshot(key)
	if len(records) == 0 {
		return false, nil
	}

	var completed []*listenerRecord
	defer func() {
		d.dropOnce(key, completed)
	}()

	for i, record := range records {
		if record.isOnce() && !record.claimed.CompareAndSwap(false, true) {
			// already consumed by an earlier or enclosing round
			continue
		}

		if err := invoke(ctx, record, await, args); err != nil {
			return true, wrapListenerError(key, i, err)
		}

		if record.isOnce() {
			completed = append(completed, record)
		}
	}

	return true, nil
}

// invoke runs a single listener. A once record that does not complete gives its claim back.
func invoke(ctx context.Context, record *listenerRecord, await bool, args []any) (err error) {
	completed := false
	defer func() {
		if !completed && record.isOnce() {
			record.claimed.Store(false)
		}
	}()

	future, err := record.listener.call(ctx, args)
	if err == nil && await {
		err = future.wait(ctx)
	}
	completed = err == nil
	return err
}

// dropOnce removes exactly the given records from the sequence of key.
func (d *EventDispatcher) dropOnce(key Key, records []*listenerRecord) {
	if len(records) == 0 {
		return
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	removed := false
	for _, record := range records {
		target := record
		if d.detachLocked(key, func(r *listenerRecord) bool { return r == target }) {
			removed = true
		}
	}

	if removed {
		d.listenersCache.invalidate(key)
	}
}
