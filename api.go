// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
)

// PumpID identifies a pump created by NewMessagePump.
type PumpID uint64

// Handle tables for the numeric API.
var (
	nextPumpID atomic.Uint64

	handleMu sync.RWMutex
	pumps    = map[PumpID]*Pump{}
	browsers = map[BrowserID]*Browser{}
)

// NewMessagePump creates a pump and returns its handle.
func NewMessagePump(opts *Options) (PumpID, error) {
	p, err := NewPump(opts)
	if err != nil {
		return 0, err
	}
	id := PumpID(nextPumpID.Add(1))
	handleMu.Lock()
	pumps[id] = p
	handleMu.Unlock()
	return id, nil
}

func pumpByID(id PumpID) (*Pump, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: null pump id", ErrInvalidArgument)
	}
	handleMu.RLock()
	p := pumps[id]
	handleMu.RUnlock()
	if p == nil {
		return nil, fmt.Errorf("%w: pump %d", ErrInvalidArgument, id)
	}
	return p, nil
}

func browserByID(id BrowserID) (*Browser, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: null browser id", ErrInvalidArgument)
	}
	handleMu.RLock()
	b := browsers[id]
	handleMu.RUnlock()
	if b == nil {
		return nil, fmt.Errorf("%w: browser %d", ErrInvalidArgument, id)
	}
	return b, nil
}

// RunMessagePump runs the pump on the calling goroutine until shutdown.
func RunMessagePump(ctx context.Context, id PumpID) error {
	p, err := pumpByID(id)
	if err != nil {
		return err
	}
	return p.Run(ctx)
}

// ShutdownMessagePump asks a running pump to return from Run.
func ShutdownMessagePump(id PumpID) error {
	p, err := pumpByID(id)
	if err != nil {
		return err
	}
	return p.Shutdown()
}

// ReleaseMessagePump releases the pump and every browser handle on it.
func ReleaseMessagePump(id PumpID) error {
	p, err := pumpByID(id)
	if err != nil {
		return err
	}
	handleMu.Lock()
	delete(pumps, id)
	for bid, b := range browsers {
		if b.pump == p {
			delete(browsers, bid)
		}
	}
	handleMu.Unlock()
	p.Release()
	return nil
}

// NewBrowserHandle creates a browser on the pump and returns its id. It
// waits for the pump's UI thread.
func NewBrowserHandle(ctx context.Context, pump PumpID) (BrowserID, error) {
	p, err := pumpByID(pump)
	if err != nil {
		return 0, err
	}
	b, err := p.NewBrowser(ctx)
	if err != nil {
		return 0, err
	}
	handleMu.Lock()
	browsers[b.id] = b
	handleMu.Unlock()
	return b.id, nil
}

func ReleaseBrowser(id BrowserID) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	handleMu.Lock()
	delete(browsers, id)
	handleMu.Unlock()
	return b.Release()
}

// BrowserByID returns the Browser behind a handle.
func BrowserByID(id BrowserID) (*Browser, error) { return browserByID(id) }

func SetHTML(id BrowserID, html, baseURL string) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SetHTML(html, baseURL)
}

func SetHTMLWithResolver(id BrowserID, html string, r Resolver) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SetHTMLWithResolver(html, r)
}

func LoadURL(id BrowserID, url string) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.LoadURL(url)
}

func SetActive(id BrowserID, active bool) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SetActive(active)
}

func SetBackgroundColor(id BrowserID, hex string) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SetBackgroundColor(hex)
}

func SetFrameSize(id BrowserID, width, height int) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SetFrameSize(width, height)
}

func SetMinContentSize(id BrowserID, width, height int) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SetMinContentSize(width, height)
}

func AddChangeObserver(id BrowserID, obs ObserverID) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.AddChangeObserver(obs)
}

func RemoveChangeObserver(id BrowserID, obs ObserverID) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.RemoveChangeObserver(obs)
}

func SendEvent(id BrowserID, ev Event) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.SendEvent(ev)
}

// LoadDisplayIntoGLTexture uploads the pending frame into the bound texture
// of target. It reports false when there is no new frame.
func LoadDisplayIntoGLTexture(id BrowserID, target TextureTarget) (bool, error) {
	b, err := browserByID(id)
	if err != nil {
		return false, err
	}
	return b.LoadDisplayIntoTexture(target)
}

func GetUpdateTime(id BrowserID) (int64, error) {
	b, err := browserByID(id)
	if err != nil {
		return 0, err
	}
	return b.UpdateTime(), nil
}

func GetLinks(id BrowserID) ([]LinkRecord, error) {
	b, err := browserByID(id)
	if err != nil {
		return nil, err
	}
	return b.Links(), nil
}

func GetContentSize(id BrowserID) (image.Point, error) {
	b, err := browserByID(id)
	if err != nil {
		return image.Point{}, err
	}
	return b.ContentSize(), nil
}

func GetMinContentSize(id BrowserID) (image.Point, error) {
	b, err := browserByID(id)
	if err != nil {
		return image.Point{}, err
	}
	return b.MinContentSize(), nil
}

// GetContentURL returns the displayed URL, or false for in-memory content.
func GetContentURL(id BrowserID) (string, bool, error) {
	b, err := browserByID(id)
	if err != nil {
		return "", false, err
	}
	u, ok := b.ContentURL()
	return u, ok, nil
}

func GoBack(id BrowserID) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.GoBack()
}

func GoForward(id BrowserID) error {
	b, err := browserByID(id)
	if err != nil {
		return err
	}
	return b.GoForward()
}
