// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import "github.com/YindSoft/webtexture/engine"

// travelLog is the back/forward list. index is the current entry, -1 when the
// current document is not in the list (stream loads never are).
type travelLog struct {
	entries []engine.Entry
	index   int
}

func (t *travelLog) Entries() []engine.Entry {
	out := make([]engine.Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *travelLog) Clear() error {
	t.entries = nil
	t.index = -1
	return nil
}

func (t *travelLog) InsertForward(e engine.Entry) error {
	if t.entries == nil {
		t.index = -1
	}
	at := t.index + 1
	t.entries = append(t.entries, engine.Entry{})
	copy(t.entries[at+1:], t.entries[at:])
	t.entries[at] = e
	return nil
}

func (t *travelLog) add(e engine.Entry) {
	if t.entries == nil {
		t.index = -1
	}
	t.entries = append(t.entries[:t.index+1], e)
	t.index = len(t.entries) - 1
}

func (t *travelLog) retitle(title string) {
	if t.index >= 0 && t.index < len(t.entries) {
		t.entries[t.index].Title = title
	}
}

func (t *travelLog) back() (engine.Entry, error) {
	if t.index <= 0 || t.index > len(t.entries) {
		return engine.Entry{}, engine.ErrNoEntry
	}
	t.index--
	return t.entries[t.index], nil
}

func (t *travelLog) forward() (engine.Entry, error) {
	if t.index+1 >= len(t.entries) {
		return engine.Entry{}, engine.ErrNoEntry
	}
	t.index++
	return t.entries[t.index], nil
}
