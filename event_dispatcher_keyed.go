package libevents

import (
	"github.com/pkg/errors"
)

// OnWithKey registers the listener like On and records it under removeKey, nested under masterKey when it is
// not empty, so it can later be removed with OffWithKey or OffByMasterKey. A remove key that is already taken
// at the top level, or under the same master key, is rejected and nothing is registered.
func (d *EventDispatcher) OnWithKey(eventKey Key, l *Listener, removeKey, masterKey string) (*Listener, error) {
	if !l.valid() {
		return nil, errors.Wrapf(ErrInvalidListener, "onWithKey %s", eventKey)
	}

	if !d.isSafeKey(eventKey) || !d.isSafeKey(Name(removeKey)) ||
		(masterKey != "" && !d.isSafeKey(Name(masterKey))) {
		d.logger.Errorf(
			"onWithKey: rejected unsafe key (event=%q, remove=%q, master=%q)",
			eventKey, removeKey, masterKey,
		)
		return nil, errors.Wrapf(ErrUnsafeKey, "onWithKey %q/%q/%q", eventKey, removeKey, masterKey)
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	if d.removeKeyTakenLocked(removeKey, masterKey) {
		d.logger.Warnf("onWithKey: remove key %q (master %q) is already registered", removeKey, masterKey)
		return nil, errors.Wrapf(ErrDuplicateRemoveKey, "remove key %q", removeKey)
	}

	d.logListen(eventKey)

	d.insertLocked(eventKey, newListenerRecord(l, modeAlways), false)

	entry := removeEntry{eventKey: eventKey, listener: l}
	if masterKey == "" {
		d.removeKeys[removeKey] = entry
		return l, nil
	}

	group, found := d.masterKeys[masterKey]
	if !found {
		group = make(map[string]removeEntry)
		d.masterKeys[masterKey] = group
	}
	group[removeKey] = entry
	return l, nil
}

func (d *EventDispatcher) removeKeyTakenLocked(removeKey, masterKey string) bool {
	if _, found := d.removeKeys[removeKey]; found {
		return true
	}
	if masterKey == "" {
		return false
	}
	_, found := d.masterKeys[masterKey][removeKey]
	return found
}

// OffWithKey removes the listener registered under removeKey (and masterKey, if given). It reports false when
// the keys are unknown or the listener was already removed through another path; the remove key is forgotten
// in the latter case too.
func (d *EventDispatcher) OffWithKey(removeKey, masterKey string) bool {
	if !d.isSafeKey(Name(removeKey)) {
		d.logger.Errorf("offWithKey: rejected unsafe remove key %q", removeKey)
		return false
	}
	if masterKey != "" && !d.isSafeKey(Name(masterKey)) {
		d.logger.Errorf("offWithKey: rejected unsafe master key %q", masterKey)
		return false
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	var (
		entry removeEntry
		found bool
	)

	if masterKey == "" {
		entry, found = d.removeKeys[removeKey]
		if found {
			delete(d.removeKeys, removeKey)
		}
	} else {
		group, groupFound := d.masterKeys[masterKey]
		if !groupFound {
			d.logger.Debugf("offWithKey: master key %q not found", masterKey)
			return false
		}
		entry, found = group[removeKey]
		if found {
			delete(group, removeKey)
			if len(group) == 0 {
				delete(d.masterKeys, masterKey)
			}
		}
	}

	if !found {
		d.logger.Debugf("offWithKey: remove key %q (master %q) not found", removeKey, masterKey)
		return false
	}

	if !d.detachListenerLocked(entry.eventKey, entry.listener) {
		d.logger.Debugf("offWithKey: listener for event %q was already removed", entry.eventKey)
		return false
	}
	d.listenersCache.invalidate(entry.eventKey)
	return true
}

// OffByMasterKey removes every listener grouped under masterKey, whatever event they listen to, and forgets
// the master key. It reports false when the master key is unknown.
func (d *EventDispatcher) OffByMasterKey(masterKey string) bool {
	if !d.isSafeKey(Name(masterKey)) {
		d.logger.Errorf("offByMasterKey: rejected unsafe master key %q", masterKey)
		return false
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	group, found := d.masterKeys[masterKey]
	if !found {
		d.logger.Debugf("offByMasterKey: master key %q not found", masterKey)
		return false
	}

	affected := make(map[Key]struct{})
	for removeKey, entry := range group {
		if !d.isSafeKey(entry.eventKey) {
			continue
		}
		if !d.detachListenerLocked(entry.eventKey, entry.listener) {
			d.logger.Debugf(
				"offByMasterKey: listener %q for event %q was already removed",
				removeKey, entry.eventKey,
			)
			continue
		}
		affected[entry.eventKey] = struct{}{}
	}

	for key := range affected {
		d.listenersCache.invalidate(key)
	}

	delete(d.masterKeys, masterKey)
	return true
}

// HasRemoveKey reports whether removeKey is registered, at the top level when masterKey is empty or under
// masterKey otherwise.
func (d *EventDispatcher) HasRemoveKey(removeKey, masterKey string) bool {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if masterKey == "" {
		_, found := d.removeKeys[removeKey]
		return found
	}
	_, found := d.masterKeys[masterKey][removeKey]
	return found
}

func (d *EventDispatcher) HasMasterKey(masterKey string) bool {
	d.lock.RLock()
	defer d.lock.RUnlock()

	_, found := d.masterKeys[masterKey]
	return found
}
