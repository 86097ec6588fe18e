// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"errors"
	"image"
	"sync"
	"sync/atomic"

	"github.com/YindSoft/webtexture/engine"
	"github.com/sirupsen/logrus"
)

// BrowserID identifies a browser instance within the process.
type BrowserID uint64

// State is the lifecycle state of a browser instance.
type State int32

const (
	StateUninitialised State = iota
	StatePrimingBlank
	StateReady
	StateLoading
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialised:
		return "uninitialised"
	case StatePrimingBlank:
		return "priming"
	case StateReady:
		return "ready"
	case StateLoading:
		return "loading"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// instance is the UI-thread side of a browser. Fields without a mutex are
// only touched by the pump's Run goroutine.
type instance struct {
	id   BrowserID
	pump *Pump
	log  logrus.FieldLogger
	eng  engine.Engine
	sink *changeSink

	state         atomic.Int32
	captureQueued atomic.Bool
	resolver      atomic.Pointer[hostResolver]

	content         *ContentSource
	baseURL         string
	loadingOriginal bool
	originalLoaded  bool
	pending         func()
	alwaysCapture   bool
	dirty           bool
	background      string

	lastPoint image.Point
	lastMask  ButtonMask
	scroll    scrollDrag

	saved     []engine.Entry
	mustClear bool

	// contentLoadGen counts completed loads and minimum size changes;
	// metaGen is the value content size and URL were last measured at.
	contentLoadGen uint64
	metaGen        uint64
	linkGen        atomic.Uint64

	observers map[ObserverID]struct{}

	frameMu    sync.Mutex
	frame      *CaptureBuffer
	updateTime int64

	metaMu      sync.Mutex
	links       []LinkRecord
	contentSize image.Point
	minSize     image.Point
	contentURL  string
	hasURL      bool
	title       string
}

func newInstance(id BrowserID, p *Pump, log logrus.FieldLogger) *instance {
	i := &instance{
		id:        id,
		pump:      p,
		log:       log,
		baseURL:   DefaultBaseURL,
		observers: map[ObserverID]struct{}{},
		minSize:   image.Pt(p.opts.MinContentWidth, p.opts.MinContentHeight),
	}
	i.sink = &changeSink{inst: i}
	return i
}

func (i *instance) State() State { return State(i.state.Load()) }

func (i *instance) setState(s State) {
	if old := State(i.state.Swap(int32(s))); old != s {
		i.log.WithFields(logrus.Fields{"from": old, "to": s}).Debug("state changed")
	}
}

// requestCapture queues a capture unless one is already pending.
func (i *instance) requestCapture() {
	if !i.captureQueued.CompareAndSwap(false, true) {
		return
	}
	if err := i.pump.q.postCapture(i.id); err != nil {
		i.captureQueued.Store(false)
	}
}

// changeSink receives engine notifications for an instance. It is detached
// before the engine is closed so late notifications are ignored.
type changeSink struct {
	inst *instance
}

func (s *changeSink) DocumentComplete(topLevel bool, url string) {
	if s.inst != nil {
		s.inst.documentComplete(topLevel, url)
	}
}

func (s *changeSink) ViewChanged() {
	if s.inst != nil {
		s.inst.dirty = true
	}
}

func (i *instance) documentComplete(topLevel bool, url string) {
	if !topLevel {
		return
	}
	i.log.WithField("url", url).Debug("document complete")
	switch i.State() {
	case StateClosed:
		return
	case StateUninitialised:
		i.setState(StatePrimingBlank)
		if err := i.eng.Travel().Clear(); err != nil {
			i.log.WithError(err).Warn("clearing travel log")
		}
		i.setState(StateReady)
		if fn := i.pending; fn != nil {
			i.pending = nil
			fn()
		}
		return
	}
	if i.loadingOriginal {
		i.loadingOriginal = false
		i.originalLoaded = true
	} else {
		i.originalLoaded = false
		if i.mustClear {
			i.mustClear = false
			if err := i.eng.Travel().Clear(); err != nil {
				i.log.WithError(err).Warn("clearing travel log")
			}
		}
	}
	i.contentLoadGen++
	i.setState(StateReady)
	i.applyBackground()
	i.applyScrollbars()
	i.alwaysCapture = !i.pump.opts.DisableEmbedCapture && hasPlugins(i.eng.Document())
	i.dirty = true
}

// whenReady runs fn now, or after the priming load when the engine has not
// finished it yet. Only the latest deferred request survives.
func (i *instance) whenReady(fn func()) {
	if i.State() == StateUninitialised {
		i.pending = fn
		return
	}
	fn()
}

func (i *instance) setContent(src *ContentSource, baseURL string, r Resolver) {
	i.content = src
	i.saved = nil
	i.mustClear = false
	if r != nil {
		i.resolver.Store(&hostResolver{
			r:       r,
			queue:   i.pump.callbacks,
			timeout: i.pump.opts.ResolveTimeout.Std(),
			log:     i.log,
		})
		baseURL = schemeHandler.BaseURL(uint64(i.id))
	} else {
		i.resolver.Store(nil)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	i.baseURL = baseURL
	i.whenReady(i.loadOriginal)
}

// loadOriginal streams the in-memory content with its base URL, falling back
// to the default base URL when the engine rejects it.
func (i *instance) loadOriginal() {
	if i.content == nil {
		return
	}
	i.originalLoaded = true
	i.loadingOriginal = true
	i.setState(StateLoading)
	err := i.eng.LoadStream(i.content.Reader(), i.baseURL)
	if errors.Is(err, engine.ErrBaseURLRejected) {
		i.log.WithField("base", i.baseURL).Warn("base URL rejected, using default")
		i.baseURL = DefaultBaseURL
		err = i.eng.LoadStream(i.content.Reader(), i.baseURL)
	}
	if err != nil {
		i.log.WithError(err).Error("loading content")
		i.loadingOriginal = false
		i.setState(StateReady)
	}
}

func (i *instance) loadURL(url string) {
	i.whenReady(func() {
		i.loadingOriginal = false
		i.setState(StateLoading)
		if err := i.eng.Navigate(url); err != nil {
			i.log.WithError(err).WithField("url", url).Error("navigating")
			i.setState(StateReady)
		}
	})
}

func (i *instance) setActive(active bool) {
	i.eng.Focus(active)
	i.dirty = true
}

func (i *instance) setBackground(color string) {
	i.background = color
	i.applyBackground()
}

func (i *instance) applyBackground() {
	if i.background == "" {
		return
	}
	doc := i.eng.Document()
	if doc == nil {
		return
	}
	body := doc.Body()
	if body == nil {
		return
	}
	if err := body.SetStyle("background-color", i.background); err != nil {
		i.log.WithError(err).Warn("setting background")
	}
}

func (i *instance) setFrameSize(w, h int) {
	if err := i.eng.Resize(w, h); err != nil {
		i.log.WithError(err).Warn("resizing")
		return
	}
	i.applyScrollbars()
	i.dirty = true
}

func (i *instance) close() error {
	i.setState(StateClosed)
	i.scroll.stop()
	i.sink.inst = nil
	unregisterInstance(i.id)
	i.resolver.Store(nil)
	i.content = nil
	i.pending = nil
	i.observers = nil
	i.frameMu.Lock()
	i.frame = nil
	i.frameMu.Unlock()
	return i.eng.Close()
}

func hasPlugins(doc engine.Document) bool {
	if doc == nil {
		return false
	}
	return len(doc.ElementsByTag("embed")) > 0 || len(doc.ElementsByTag("object")) > 0
}
