// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"fmt"
	"image"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Browser is the host handle of a browser instance. Its methods are safe for
// concurrent use and never wait for the UI thread.
type Browser struct {
	id   BrowserID
	pump *Pump
	inst *instance
}

func (b *Browser) ID() BrowserID { return b.id }

// State returns the lifecycle state of the instance.
func (b *Browser) State() State { return b.inst.State() }

func (b *Browser) post(fn func(*instance)) error {
	if b.inst.State() == StateClosed {
		return fmt.Errorf("%w: browser %d", ErrClosed, b.id)
	}
	return b.pump.post(b.id, fn)
}

// SetHTML loads html with baseURL. An empty baseURL means about:blank. If
// the engine rejects baseURL the content is loaded with about:blank.
func (b *Browser) SetHTML(html, baseURL string) error {
	src, err := NewContentSource(html)
	if err != nil {
		return err
	}
	return b.post(func(i *instance) { i.setContent(src, baseURL, nil) })
}

// SetHTMLWithResolver loads html with a base URL in the reserved scheme, so
// every relative reference in it is mapped by r.
func (b *Browser) SetHTMLWithResolver(html string, r Resolver) error {
	if r == nil {
		return fmt.Errorf("%w: nil resolver", ErrInvalidArgument)
	}
	src, err := NewContentSource(html)
	if err != nil {
		return err
	}
	return b.post(func(i *instance) { i.setContent(src, "", r) })
}

// LoadURL navigates to url.
func (b *Browser) LoadURL(url string) error {
	if url == "" {
		return fmt.Errorf("%w: empty url", ErrInvalidArgument)
	}
	return b.post(func(i *instance) { i.loadURL(url) })
}

// SetActive gives or removes keyboard focus.
func (b *Browser) SetActive(active bool) error {
	return b.post(func(i *instance) { i.setActive(active) })
}

// SetBackgroundColor sets the body background to a CSS hex colour such as
// "#ff0000"; it is reapplied after every load.
func (b *Browser) SetBackgroundColor(hex string) error {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return fmt.Errorf("%w: background %q: %v", ErrInvalidArgument, hex, err)
	}
	color := c.Hex()
	return b.post(func(i *instance) { i.setBackground(color) })
}

// SetFrameSize resizes the captured frame.
func (b *Browser) SetFrameSize(width, height int) error {
	if width <= 0 || height <= 0 || width > 1<<14 || height > 1<<14 {
		return fmt.Errorf("%w: frame size %dx%d", ErrInvalidArgument, width, height)
	}
	return b.post(func(i *instance) { i.setFrameSize(width, height) })
}

// SetMinContentSize sets the layout size used to measure content. A zero
// dimension takes its default.
func (b *Browser) SetMinContentSize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: minimum content size %dx%d", ErrInvalidArgument, width, height)
	}
	if width == 0 {
		width = defaultMinContentWidth
	}
	if height == 0 {
		height = defaultMinContentHeight
	}
	i := b.inst
	i.metaMu.Lock()
	i.minSize = image.Pt(width, height)
	i.metaMu.Unlock()
	return b.post(func(i *instance) {
		i.contentLoadGen++
		i.dirty = true
	})
}

// AddChangeObserver makes the browser notify the change notifier id after
// every capture.
func (b *Browser) AddChangeObserver(id ObserverID) error {
	if notifier(id) == nil {
		return fmt.Errorf("%w: change notifier %d", ErrNotFound, id)
	}
	return b.post(func(i *instance) { i.observers[id] = struct{}{} })
}

func (b *Browser) RemoveChangeObserver(id ObserverID) error {
	return b.post(func(i *instance) { delete(i.observers, id) })
}

// SendEvent forwards a host input event.
func (b *Browser) SendEvent(ev Event) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event", ErrInvalidArgument)
	}
	return b.post(func(i *instance) { i.handleEvent(ev) })
}

// GoBack navigates back. Going back from the first page after in-memory
// content returns to that content.
func (b *Browser) GoBack() error {
	return b.post((*instance).goBack)
}

func (b *Browser) GoForward() error {
	return b.post((*instance).goForward)
}

// Release destroys the instance. It is safe to call more than once.
func (b *Browser) Release() error {
	if b.inst.State() == StateClosed {
		return nil
	}
	return b.pump.post(b.id, func(i *instance) { b.pump.destroy(i.id) })
}
