package libevents

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(calls *int) *Listener {
	return NewListener(func(context.Context, ...any) error {
		*calls++
		return nil
	})
}

func TestOnWithKeyRegistersListener(t *testing.T) {
	d, _ := newTestDispatcher(t)
	calls := 0
	l := counter(&calls)

	got, err := d.OnWithKey(Name("evt"), l, "test-key", "")
	require.NoError(t, err)
	assert.Same(t, l, got)
	assert.True(t, d.HasRemoveKey("test-key", ""))

	_, err = d.Emit(context.Background(), Name("evt"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// the returned handle works with Off as well
	assert.True(t, d.Off(Name("evt"), got))
}

func TestOnWithKeyRejectsDuplicateRemoveKey(t *testing.T) {
	d, buf := newTestDispatcher(t)
	fCalls, gCalls := 0, 0

	_, err := d.OnWithKey(Name("evt"), counter(&fCalls), "rk", "")
	require.NoError(t, err)

	got, err := d.OnWithKey(Name("evt2"), counter(&gCalls), "rk", "")
	assert.ErrorIs(t, err, ErrDuplicateRemoveKey)
	assert.Nil(t, got)
	assert.Equal(t, 0, d.ListenerCount(Name("evt2")))
	assert.Contains(t, buf.String(), "WARN")

	fired, err := d.Emit(context.Background(), Name("evt2"))
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, 0, gCalls)

	// the original handle is untouched
	assert.True(t, d.OffWithKey("rk", ""))
}

func TestOnWithKeyDuplicateUnderMasterKey(t *testing.T) {
	d, _ := newTestDispatcher(t)

	_, err := d.OnWithKey(Name("evt"), noop(), "sub", "mk")
	require.NoError(t, err)

	_, err = d.OnWithKey(Name("evt"), noop(), "sub", "mk")
	assert.ErrorIs(t, err, ErrDuplicateRemoveKey)

	// same remove key under another master is fine
	_, err = d.OnWithKey(Name("evt"), noop(), "sub", "other")
	assert.NoError(t, err)

	// a top-level remove key blocks the name under any master
	_, err = d.OnWithKey(Name("evt"), noop(), "top", "")
	require.NoError(t, err)
	_, err = d.OnWithKey(Name("evt"), noop(), "top", "mk")
	assert.ErrorIs(t, err, ErrDuplicateRemoveKey)

	assert.Equal(t, 3, d.ListenerCount(Name("evt")))
}

func TestOnWithKeyRejectsUnsafeKeys(t *testing.T) {
	d, _ := newTestDispatcher(t)

	cases := []struct {
		name      string
		eventKey  Key
		removeKey string
		masterKey string
	}{
		{"event key", Name("__proto__"), "rk", ""},
		{"remove key", Name("evt"), "constructor", ""},
		{"master key", Name("evt"), "rk", "prototype"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := d.OnWithKey(tc.eventKey, noop(), tc.removeKey, tc.masterKey)
			assert.ErrorIs(t, err, ErrUnsafeKey)
			assert.Nil(t, got)
		})
	}

	assert.Empty(t, d.events)
	assert.Empty(t, d.removeKeys)
	assert.Empty(t, d.masterKeys)
}

func TestOffWithKey(t *testing.T) {
	d, _ := newTestDispatcher(t)
	calls := 0

	_, err := d.OnWithKey(Name("evt"), counter(&calls), "remove-key", "")
	require.NoError(t, err)
	d.Listeners(Name("evt"))

	assert.True(t, d.OffWithKey("remove-key", ""))
	assert.False(t, d.HasRemoveKey("remove-key", ""))
	assert.False(t, d.listenersCache.contains(Name("evt")))
	assert.NotContains(t, d.EventKeys(), Name("evt"))

	_, err = d.Emit(context.Background(), Name("evt"))
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	// idempotent teardown
	assert.False(t, d.OffWithKey("remove-key", ""))
}

func TestOffWithKeyRemovesOnlyItsOccurrence(t *testing.T) {
	d, _ := newTestDispatcher(t)
	l := noop()

	require.NoError(t, d.On(Name("evt"), l))
	_, err := d.OnWithKey(Name("evt"), l, "rk", "")
	require.NoError(t, err)

	assert.True(t, d.OffWithKey("rk", ""))
	assert.Equal(t, 1, d.ListenerCount(Name("evt")))
}

func TestOffWithKeyUnderMasterKey(t *testing.T) {
	d, _ := newTestDispatcher(t)
	calls := 0

	_, err := d.OnWithKey(Name("evt"), counter(&calls), "sub-key", "master-key")
	require.NoError(t, err)
	_, err = d.OnWithKey(Name("evt"), counter(&calls), "sibling", "master-key")
	require.NoError(t, err)
	assert.True(t, d.HasRemoveKey("sub-key", "master-key"))
	assert.False(t, d.HasRemoveKey("sub-key", ""))

	assert.False(t, d.OffWithKey("sub-key", ""), "nested keys are not visible at the top level")
	assert.False(t, d.OffWithKey("sub-key", "unknown-master"))
	assert.True(t, d.OffWithKey("sub-key", "master-key"))
	assert.True(t, d.HasMasterKey("master-key"))

	_, err = d.Emit(context.Background(), Name("evt"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	assert.True(t, d.OffWithKey("sibling", "master-key"))
	assert.False(t, d.HasMasterKey("master-key"))
}

func TestOffWithKeyAfterListenerRemovedElsewhere(t *testing.T) {
	d, buf := newTestDispatcher(t)
	l := noop()

	_, err := d.OnWithKey(Name("evt"), l, "rk", "")
	require.NoError(t, err)
	require.True(t, d.Off(Name("evt"), l))

	assert.False(t, d.OffWithKey("rk", ""))
	assert.False(t, d.HasRemoveKey("rk", ""))
	assert.Contains(t, buf.String(), "already removed")
}

func TestOffWithKeyRejectsUnsafeKeys(t *testing.T) {
	d, _ := newTestDispatcher(t)

	assert.False(t, d.OffWithKey("__proto__", ""))
	assert.False(t, d.OffWithKey("rk", "constructor"))
	assert.False(t, d.OffByMasterKey("prototype"))
}

func TestOffByMasterKey(t *testing.T) {
	d, _ := newTestDispatcher(t)
	calls, survivor := 0, 0

	_, err := d.OnWithKey(Name("evt1"), counter(&calls), "sub1", "bulk-master")
	require.NoError(t, err)
	_, err = d.OnWithKey(Name("evt2"), counter(&calls), "sub2", "bulk-master")
	require.NoError(t, err)
	_, err = d.OnWithKey(Name("evt2"), counter(&calls), "sub3", "bulk-master")
	require.NoError(t, err)
	require.NoError(t, d.On(Name("evt2"), counter(&survivor)))

	d.Listeners(Name("evt1"))
	d.Listeners(Name("evt2"))

	assert.True(t, d.OffByMasterKey("bulk-master"))
	assert.False(t, d.HasMasterKey("bulk-master"))
	assert.False(t, d.listenersCache.contains(Name("evt1")))
	assert.False(t, d.listenersCache.contains(Name("evt2")))

	for _, key := range []Key{Name("evt1"), Name("evt2")} {
		_, err = d.Emit(context.Background(), key)
		require.NoError(t, err)
	}
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, survivor)
	assert.NotContains(t, d.EventKeys(), Name("evt1"))

	assert.False(t, d.OffByMasterKey("bulk-master"))
}

func TestOffByMasterKeySkipsListenersAlreadyRemoved(t *testing.T) {
	d, _ := newTestDispatcher(t)
	gone, kept := noop(), noop()

	_, err := d.OnWithKey(Name("evt"), gone, "a", "mk")
	require.NoError(t, err)
	_, err = d.OnWithKey(Name("other"), kept, "b", "mk")
	require.NoError(t, err)
	require.True(t, d.Off(Name("evt"), gone))

	assert.True(t, d.OffByMasterKey("mk"))
	assert.Empty(t, d.EventKeys())
}

func TestOffByMasterKeyUnknown(t *testing.T) {
	d, _ := newTestDispatcher(t)
	assert.False(t, d.OffByMasterKey("non-existent"))
}

func TestOnWithKeyDuplicateDoesNotLogListen(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := DefaultConfig()
	cfg.Debug = DebugAll
	d := NewEventDispatcher(NewWriterLogger(buf), cfg)

	_, err := d.OnWithKey(Name("evt"), noop(), "rk", "")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Listen Event: evt")

	_, err = d.OnWithKey(Name("evt2"), noop(), "rk", "")
	assert.ErrorIs(t, err, ErrDuplicateRemoveKey)

	out := buf.String()
	assert.Contains(t, out, "already registered")
	assert.NotContains(t, out, "Listen Event: evt2")
}
