// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"errors"

	"github.com/YindSoft/webtexture/engine"
)

// goBack navigates back. When the engine history is exhausted after leaving
// in-memory content, the history is saved and the original content is
// reloaded, so the original page behaves like the first history entry.
func (i *instance) goBack() {
	if i.originalLoaded {
		return
	}
	err := i.eng.GoBack()
	if err == nil {
		return
	}
	if !errors.Is(err, engine.ErrNoEntry) {
		i.log.WithError(err).Warn("going back")
		return
	}
	if i.content == nil {
		return
	}
	i.saved = savedHistory(i.eng.Travel().Entries(), i.eng.LocationURL(), i.eng.LocationTitle())
	i.loadOriginal()
	i.mustClear = true
}

// goForward navigates forward, first restoring the saved history when the
// original content is displayed.
func (i *instance) goForward() {
	if i.originalLoaded && len(i.saved) > 0 {
		tl := i.eng.Travel()
		if err := tl.Clear(); err != nil {
			i.log.WithError(err).Warn("clearing travel log")
			return
		}
		for k := len(i.saved) - 1; k >= 0; k-- {
			if err := tl.InsertForward(i.saved[k]); err != nil {
				i.log.WithError(err).Warn("restoring travel log")
				return
			}
		}
		i.mustClear = false
	}
	if err := i.eng.GoForward(); err != nil && !errors.Is(err, engine.ErrNoEntry) {
		i.log.WithError(err).Warn("going forward")
	}
}

// savedHistory copies entries without consecutive duplicates. An empty log
// saves the current location instead.
func savedHistory(entries []engine.Entry, url, title string) []engine.Entry {
	var out []engine.Entry
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].URL == e.URL {
			continue
		}
		out = append(out, e)
	}
	if len(out) == 0 && url != "" {
		out = append(out, engine.Entry{URL: url, Title: title})
	}
	return out
}
