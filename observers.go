// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ObserverID identifies a change notifier.
type ObserverID uint64

// ChangeListener is told that a browser produced a new frame. It runs on the
// pump's CallbackQueue.
type ChangeListener func(BrowserID)

var (
	nextObserverID atomic.Uint64

	notifierMu sync.RWMutex
	notifiers  = map[ObserverID]ChangeListener{}
)

// NewChangeNotifier registers a listener and returns its id for
// Browser.AddChangeObserver.
func NewChangeNotifier(l ChangeListener) (ObserverID, error) {
	if l == nil {
		return 0, fmt.Errorf("%w: nil listener", ErrInvalidArgument)
	}
	id := ObserverID(nextObserverID.Add(1))
	notifierMu.Lock()
	notifiers[id] = l
	notifierMu.Unlock()
	return id, nil
}

// ReleaseChangeNotifier unregisters a listener. Browsers still observing it
// stop notifying.
func ReleaseChangeNotifier(id ObserverID) error {
	notifierMu.Lock()
	defer notifierMu.Unlock()
	if _, ok := notifiers[id]; !ok {
		return fmt.Errorf("%w: change notifier %d", ErrNotFound, id)
	}
	delete(notifiers, id)
	return nil
}

func notifier(id ObserverID) ChangeListener {
	notifierMu.RLock()
	defer notifierMu.RUnlock()
	return notifiers[id]
}

func (i *instance) notifyObservers() {
	for id := range i.observers {
		l := notifier(id)
		if l == nil {
			delete(i.observers, id)
			continue
		}
		bid := i.id
		i.pump.callbacks.Post(func() { l(bid) })
	}
}
