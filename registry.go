// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/YindSoft/webtexture/urlscheme"
	"github.com/sirupsen/logrus"
)

// Process-wide state shared by every pump: the live instance table used by
// the reserved scheme, and the scheme handler itself.
var (
	nextBrowserID atomic.Uint64

	liveMu sync.RWMutex
	live   = map[BrowserID]*instance{}

	schemeOnce    sync.Once
	schemeHandler *urlscheme.Handler
)

func registerInstance(i *instance) {
	liveMu.Lock()
	live[i.id] = i
	liveMu.Unlock()
}

func unregisterInstance(id BrowserID) {
	liveMu.Lock()
	delete(live, id)
	liveMu.Unlock()
}

// lookupResolver finds the resolver of a live instance. It is called by the
// engine while resolving reserved-scheme URLs, possibly off the UI thread.
func lookupResolver(id uint64) (urlscheme.Resolver, bool) {
	liveMu.RLock()
	i := live[BrowserID(id)]
	liveMu.RUnlock()
	if i == nil {
		return nil, false
	}
	r := i.resolver.Load()
	if r == nil {
		return nil, false
	}
	return r, true
}

// reservedScheme registers the reserved scheme on first use.
func reservedScheme(name string, log logrus.FieldLogger) *urlscheme.Handler {
	schemeOnce.Do(func() {
		schemeHandler = urlscheme.New(name, lookupResolver)
		log.WithField("scheme", name).Debug("reserved scheme registered")
	})
	if !strings.EqualFold(schemeHandler.Scheme(), name) {
		log.WithFields(logrus.Fields{
			"requested":  name,
			"registered": schemeHandler.Scheme(),
		}).Warn("reserved scheme already registered")
	}
	return schemeHandler
}
