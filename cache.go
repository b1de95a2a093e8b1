package libevents

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// listenersCache memoizes the listener sequence of a key. Every write to the event table must invalidate the
// affected key before the lock protecting the table is released.
type listenersCache struct {
	entries *lru.Cache[Key, []*listenerRecord]
}

func newListenersCache(size int) *listenersCache {
	entries, err := lru.New[Key, []*listenerRecord](size)
	if err != nil {
		entries, _ = lru.New[Key, []*listenerRecord](DefaultListenersCacheSize)
	}
	return &listenersCache{entries: entries}
}

func (c *listenersCache) get(key Key) ([]*listenerRecord, bool) {
	return c.entries.Get(key)
}

func (c *listenersCache) put(key Key, records []*listenerRecord) {
	c.entries.Add(key, records)
}

func (c *listenersCache) contains(key Key) bool {
	return c.entries.Contains(key)
}

func (c *listenersCache) invalidate(key Key) {
	c.entries.Remove(key)
}

func (c *listenersCache) invalidateAll() {
	c.entries.Purge()
}

func (c *listenersCache) len() int {
	return c.entries.Len()
}

// validationCache memoizes the safety verdict of key names. It is never invalidated: verdicts depend on the
// name alone. The LRU bound may evict old entries, which only means the verdict is computed again.
type validationCache struct {
	verdicts *lru.Cache[string, bool]
}

func newValidationCache(size int) *validationCache {
	verdicts, err := lru.New[string, bool](size)
	if err != nil {
		verdicts, _ = lru.New[string, bool](DefaultValidationCacheSize)
	}
	return &validationCache{verdicts: verdicts}
}

func (c *validationCache) isSafe(key Key) bool {
	if key.IsToken() {
		return true
	}
	if safe, found := c.verdicts.Get(key.name); found {
		return safe
	}
	safe := !isReservedName(key.name)
	c.verdicts.Add(key.name, safe)
	return safe
}

func (c *validationCache) cached(name string) (bool, bool) {
	return c.verdicts.Peek(name)
}
