// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package softengine is a small pure-Go HTML engine implementing
// engine.Engine. It parses with golang.org/x/net/html, cascades inline and
// <style> CSS, lays out block and inline flow with a fixed 7x13 font and
// rasterizes into an image.RGBA.
//
// It is used where no native browser bridge is available and by tests.
package softengine

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/YindSoft/webtexture/engine"
	"github.com/sirupsen/logrus"
)

const (
	charWidth          = 7
	lineHeight         = 13
	scrollbarThickness = 17
	arrowExtent        = 17
	wheelDelta         = 120
	wheelLines         = 3
)

// Options configures engines created by Factory.
type Options struct {
	// Client fetches http and https URLs. Defaults to a client with a 30s timeout.
	Client *http.Client
}

// Factory returns an engine.Factory creating soft engines.
func Factory(opts *Options) engine.Factory {
	return func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg, opts)
	}
}

// Engine is a soft engine instance. It is not safe for concurrent use; all
// calls must come from the browser UI thread.
type Engine struct {
	cfg    engine.Config
	log    logrus.FieldLogger
	client *http.Client

	mu      sync.Mutex
	pending []func()

	width, height int
	origin        image.Point
	active        bool
	closed        bool

	doc    *document
	url    string
	title  string
	navSeq int

	travel   travelLog
	window   *Window
	aux      *Window
	children []*Window

	focus   *element
	pressed *element
	drag    *internalDrag
	accels  []engine.Message
}

// New creates a soft engine.
func New(cfg engine.Config, opts *Options) (*Engine, error) {
	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, fmt.Errorf("softengine: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	if opts != nil && opts.Client != nil {
		client = opts.Client
	}
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	e := &Engine{
		cfg:    cfg,
		log:    log,
		client: client,
		width:  cfg.Width,
		height: cfg.Height,
	}
	e.travel.index = -1
	e.window = &Window{eng: e, kind: mainWindow}
	e.aux = &Window{eng: e, kind: auxWindow}
	e.doc = e.parse(nil, "about:blank")
	e.relayout()
	return e, nil
}

func (e *Engine) enqueue(fn func()) {
	e.mu.Lock()
	e.pending = append(e.pending, fn)
	e.mu.Unlock()
}

// Pump runs work queued by loads and fetches.
func (e *Engine) Pump() {
	e.mu.Lock()
	work := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, fn := range work {
		if e.closed {
			return
		}
		fn()
	}
}

func (e *Engine) changed() {
	if e.cfg.Handler != nil && !e.closed {
		e.cfg.Handler.ViewChanged()
	}
}

func (e *Engine) Window() engine.Window    { return e.window }
func (e *Engine) AuxWindow() engine.Window { return e.aux }

// Children returns the plug-in child windows of the current layout.
func (e *Engine) Children() []*Window { return e.children }

// MainWindow returns the control window.
func (e *Engine) MainWindow() *Window { return e.window }

// Accelerators returns the messages offered through TranslateAccelerator.
func (e *Engine) Accelerators() []engine.Message { return e.accels }

func (e *Engine) ChildAt(p image.Point) (engine.Window, image.Point) {
	for i := len(e.children) - 1; i >= 0; i-- {
		c := e.children[i]
		if r := c.Rect(); p.In(r) {
			return c, p.Sub(r.Min)
		}
	}
	return e.window, p
}

func (e *Engine) Metrics() engine.Metrics {
	return engine.Metrics{
		ScrollbarThickness: scrollbarThickness,
		ArrowExtent:        arrowExtent,
		WheelDelta:         wheelDelta,
	}
}

// Navigate starts loading raw. Completion is delivered from Pump.
func (e *Engine) Navigate(raw string) error {
	if e.closed {
		return engine.ErrNoDocument
	}
	e.navigate(raw, false)
	return nil
}

func (e *Engine) navigate(raw string, history bool) {
	e.navSeq++
	seq := e.navSeq
	go func() {
		res := e.fetch(raw)
		e.enqueue(func() {
			if seq != e.navSeq {
				return
			}
			e.commit(res, false, history)
		})
	}()
}

// LoadStream loads HTML from r with the given base URL.
func (e *Engine) LoadStream(r io.Reader, baseURL string) error {
	if e.closed {
		return engine.ErrNoDocument
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: %q", engine.ErrBaseURLRejected, baseURL)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return fmt.Errorf("softengine: reading stream: %w", err)
	}
	e.navSeq++
	seq := e.navSeq
	res := fetchResult{url: baseURL, data: buf.Bytes()}
	e.enqueue(func() {
		if seq != e.navSeq {
			return
		}
		e.commit(res, true, false)
	})
	return nil
}

func (e *Engine) commit(res fetchResult, stream, history bool) {
	if res.err != nil {
		e.log.WithError(res.err).WithField("url", res.url).Warn("load failed")
		res.data = []byte("<html><body>Cannot load " + res.url + "</body></html>")
		res.contentType = "text/html; charset=utf-8"
	}
	e.doc = e.parse(decodeHTML(res.data, res.contentType), res.url)
	e.url = res.url
	e.title = e.doc.title
	e.focus, e.pressed, e.drag = nil, nil, nil
	switch {
	case history:
		e.travel.retitle(e.title)
	case !stream:
		e.travel.add(engine.Entry{URL: e.url, Title: e.title})
	}
	e.relayout()
	e.changed()
	if e.cfg.Handler != nil {
		e.cfg.Handler.DocumentComplete(true, e.url)
	}
}

func (e *Engine) Resize(width, height int) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("softengine: invalid size %dx%d", width, height)
	}
	if width == e.width && height == e.height {
		return nil
	}
	e.width, e.height = width, height
	e.relayout()
	e.changed()
	return nil
}

func (e *Engine) ClientSize() image.Point { return image.Pt(e.width, e.height) }

func (e *Engine) MoveTo(origin image.Point) { e.origin = origin }

// Origin returns the screen position of the client origin.
func (e *Engine) Origin() image.Point { return e.origin }

func (e *Engine) Focus(active bool) {
	if e.active != active {
		e.active = active
		e.changed()
	}
}

func (e *Engine) Caret() (image.Rectangle, bool) {
	if !e.active || e.focus == nil || e.focus.box.Empty() {
		return image.Rectangle{}, false
	}
	b := e.doc.toClient(e.focus.box)
	x := b.Min.X + 3 + runeCount(e.focus.value)*charWidth
	if x >= b.Max.X-1 {
		x = b.Max.X - 2
	}
	return image.Rect(x, b.Min.Y+2, x+1, b.Max.Y-2), true
}

func (e *Engine) Document() engine.Document {
	if e.doc == nil {
		return nil
	}
	return e.doc
}

func (e *Engine) LocationURL() string   { return e.url }
func (e *Engine) LocationTitle() string { return e.title }

func (e *Engine) Travel() engine.TravelLog { return &e.travel }

func (e *Engine) GoBack() error {
	entry, err := e.travel.back()
	if err != nil {
		return err
	}
	e.navigate(entry.URL, true)
	return nil
}

func (e *Engine) GoForward() error {
	entry, err := e.travel.forward()
	if err != nil {
		return err
	}
	e.navigate(entry.URL, true)
	return nil
}

func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.navSeq++
	e.mu.Lock()
	e.pending = nil
	e.mu.Unlock()
	e.doc = nil
	e.children = nil
	return nil
}
