// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package nativeengine drives a platform browser control through the
// wt_bridge shared library, loaded at runtime with purego. The bridge owns
// the native windows; this package exposes them as engine.Engine.
//
// The bridge library must sit in the directory passed to Load
// (wt_bridge.dll, libwt_bridge.so or libwt_bridge.dylib).
package nativeengine

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"unsafe"

	"github.com/YindSoft/webtexture/engine"
	"github.com/sirupsen/logrus"
)

// Factory returns an engine.Factory creating bridge views. Load must have
// succeeded first.
func Factory() engine.Factory {
	return func(cfg engine.Config) (engine.Engine, error) {
		return New(cfg)
	}
}

// Engine is a bridge view. Calls must come from the browser UI thread.
type Engine struct {
	cfg  engine.Config
	log  logrus.FieldLogger
	view int32

	width, height int
	metrics       engine.Metrics

	snap   *snapshot
	stale  bool
	closed bool
}

// New creates a view of cfg.Width x cfg.Height.
func New(cfg engine.Config) (*Engine, error) {
	if err := registerView(); err != nil {
		return nil, fmt.Errorf("nativeengine: %w", err)
	}
	if cfg.Schemes != nil {
		if err := registerScheme(cfg.Schemes); err != nil {
			unregisterView()
			return nil, err
		}
	}
	view := wtCreateView(int32(cfg.Width), int32(cfg.Height))
	if view < 0 {
		unregisterView()
		return nil, fmt.Errorf("nativeengine: wt_create_view failed with code %d", view)
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	var m [3]int32
	wtMetrics(uintptr(unsafe.Pointer(&m[0])))
	return &Engine{
		cfg:     cfg,
		log:     log.WithField("view", view),
		view:    view,
		width:   cfg.Width,
		height:  cfg.Height,
		metrics: engine.Metrics{ScrollbarThickness: int(m[0]), ArrowExtent: int(m[1]), WheelDelta: int(m[2])},
		stale:   true,
	}, nil
}

func codeError(op string, rc int32) error {
	switch rc {
	case rcOK:
		return nil
	case rcNoEntry:
		return engine.ErrNoEntry
	case rcBaseRejected:
		return engine.ErrBaseURLRejected
	case rcNoDocument:
		return engine.ErrNoDocument
	}
	return fmt.Errorf("nativeengine: %s failed with code %d", op, rc)
}

func (e *Engine) Window() engine.Window    { return &window{eng: e, index: windowMain} }
func (e *Engine) AuxWindow() engine.Window { return &window{eng: e, index: windowAux} }

func (e *Engine) ChildAt(p image.Point) (engine.Window, image.Point) {
	var out [2]int32
	idx := wtViewChildAt(e.view, int32(p.X), int32(p.Y), uintptr(unsafe.Pointer(&out[0])))
	if idx < windowChild {
		return e.Window(), p
	}
	return &window{eng: e, index: idx}, image.Pt(int(out[0]), int(out[1]))
}

func (e *Engine) TranslateAccelerator(m engine.Message) bool {
	return wtViewTranslateKey(e.view, m.ID, m.WParam, m.LParam) != 0
}

func (e *Engine) Metrics() engine.Metrics { return e.metrics }

func (e *Engine) Navigate(url string) error {
	e.stale = true
	return codeError("wt_view_navigate", wtViewNavigate(e.view, url))
}

func (e *Engine) LoadStream(r io.Reader, baseURL string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("nativeengine: reading stream: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("nativeengine: empty stream")
	}
	e.stale = true
	return codeError("wt_view_load_stream", wtViewLoadStream(e.view, uintptr(unsafe.Pointer(&data[0])), int64(len(data)), baseURL))
}

func (e *Engine) Resize(width, height int) error {
	if width == e.width && height == e.height {
		return nil
	}
	if err := codeError("wt_view_resize", wtViewResize(e.view, int32(width), int32(height))); err != nil {
		return err
	}
	e.width, e.height = width, height
	e.stale = true
	return nil
}

func (e *Engine) ClientSize() image.Point { return image.Pt(e.width, e.height) }

func (e *Engine) MoveTo(origin image.Point) { wtViewMove(e.view, int32(origin.X), int32(origin.Y)) }

func (e *Engine) Focus(active bool) {
	a := int32(0)
	if active {
		a = 1
	}
	wtViewFocus(e.view, a)
}

// Render copies the view's BGRA pixels into dst.
func (e *Engine) Render(dst *image.RGBA) error {
	if dst.Rect.Dx() != e.width || dst.Rect.Dy() != e.height {
		return fmt.Errorf("nativeengine: render target %v, view is %dx%d", dst.Rect, e.width, e.height)
	}
	ptr := wtViewGetPixels(e.view)
	if ptr == 0 {
		return engine.ErrNoDocument
	}
	defer wtViewUnlockPixels(e.view)
	rowBytes := int(wtViewGetRowBytes(e.view))
	src := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), rowBytes*e.height)
	for y := 0; y < e.height; y++ {
		srcRow := src[y*rowBytes:]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < e.width; x++ {
			dstRow[x*4+0] = srcRow[x*4+2] // BGRA -> RGBA
			dstRow[x*4+1] = srcRow[x*4+1]
			dstRow[x*4+2] = srcRow[x*4+0]
			dstRow[x*4+3] = 0xFF
		}
	}
	return nil
}

func (e *Engine) Caret() (image.Rectangle, bool) {
	var r [4]int32
	if wtViewCaret(e.view, uintptr(unsafe.Pointer(&r[0]))) == 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(int(r[0]), int(r[1]), int(r[2]), int(r[3])), true
}

func (e *Engine) Document() engine.Document {
	if e.snapshot() == nil {
		return nil
	}
	return &document{src: e}
}

// snapshot returns the DOM snapshot, fetching a new one after changes.
func (e *Engine) snapshot() *snapshot {
	if e.closed {
		return nil
	}
	if !e.stale {
		return e.snap
	}
	data := readString(func(buf uintptr, size int32) int32 { return wtViewSnapshot(e.view, buf, size) })
	if data == "" {
		e.snap = nil
		return nil
	}
	s, err := decodeSnapshot([]byte(data))
	if err != nil {
		e.log.WithError(err).Warn("snapshot")
		return e.snap
	}
	e.snap, e.stale = s, false
	return s
}

func (e *Engine) elementAt(p image.Point) int32 {
	return wtViewElementAt(e.view, int32(p.X), int32(p.Y))
}

func (e *Engine) componentAt(node int32, p image.Point) engine.Component {
	return engine.Component(wtViewComponentAt(e.view, node, int32(p.X), int32(p.Y)))
}

func (e *Engine) setStyle(node int32, prop, value string) error {
	e.stale = true
	return codeError("wt_view_set_style", wtViewSetStyle(e.view, node, prop, value))
}

func (e *Engine) setScroll(node int32, p image.Point) error {
	e.stale = true
	return codeError("wt_view_set_scroll", wtViewSetScroll(e.view, node, int32(p.X), int32(p.Y)))
}

func (e *Engine) doScroll(node int32, c engine.Component) error {
	e.stale = true
	return codeError("wt_view_do_scroll", wtViewDoScroll(e.view, node, int32(c)))
}

func (e *Engine) LocationURL() string {
	return readString(func(buf uintptr, size int32) int32 { return wtViewLocation(e.view, buf, size) })
}

func (e *Engine) LocationTitle() string {
	return readString(func(buf uintptr, size int32) int32 { return wtViewTitle(e.view, buf, size) })
}

func (e *Engine) Travel() engine.TravelLog { return travelLog{e} }

func (e *Engine) GoBack() error {
	e.stale = true
	return codeError("wt_view_go_back", wtViewGoBack(e.view))
}

func (e *Engine) GoForward() error {
	e.stale = true
	return codeError("wt_view_go_forward", wtViewGoForward(e.view))
}

// bridgeEvent is one entry of the view's event queue.
type bridgeEvent struct {
	Type     int    `json:"type"`
	TopLevel bool   `json:"topLevel"`
	URL      string `json:"url"`
}

// Pump ticks the engine and delivers queued view events to the handler.
func (e *Engine) Pump() {
	if e.closed {
		return
	}
	wtTick()
	for {
		raw := readString(func(buf uintptr, size int32) int32 { return wtViewPollEvent(e.view, buf, size) })
		if raw == "" {
			return
		}
		var ev bridgeEvent
		if err := json.Unmarshal([]byte(raw), &ev); err != nil {
			e.log.WithError(err).WithField("event", raw).Warn("decoding bridge event")
			continue
		}
		e.stale = true
		if e.cfg.Handler == nil {
			continue
		}
		switch ev.Type {
		case eventDocumentComplete:
			e.cfg.Handler.DocumentComplete(ev.TopLevel, ev.URL)
		case eventViewChanged:
			e.cfg.Handler.ViewChanged()
		}
		if e.closed {
			return
		}
	}
}

func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	wtDestroyView(e.view)
	unregisterView()
	e.snap = nil
	return nil
}

type window struct {
	eng   *Engine
	index int32
}

func (w *window) Post(m engine.Message) error {
	if w.eng.closed {
		return engine.ErrNoDocument
	}
	return codeError("wt_view_post", wtViewPost(w.eng.view, w.index, m.ID, m.WParam, m.LParam))
}

func (w *window) origin() image.Point {
	var out [2]int32
	wtViewWindowOrigin(w.eng.view, w.index, uintptr(unsafe.Pointer(&out[0])))
	return image.Pt(int(out[0]), int(out[1]))
}

func (w *window) ClientToScreen(p image.Point) image.Point { return p.Add(w.origin()) }
func (w *window) ScreenToClient(p image.Point) image.Point { return p.Sub(w.origin()) }

type travelLog struct {
	eng *Engine
}

func (t travelLog) Entries() []engine.Entry {
	raw := readString(func(buf uintptr, size int32) int32 { return wtViewTravel(t.eng.view, buf, size) })
	entries, err := decodeTravel(raw)
	if err != nil {
		t.eng.log.WithError(err).Warn("travel log")
	}
	return entries
}

func (t travelLog) Clear() error {
	return codeError("wt_view_travel_clear", wtViewTravelClear(t.eng.view))
}

func (t travelLog) InsertForward(e engine.Entry) error {
	return codeError("wt_view_travel_insert", wtViewTravelInsert(t.eng.view, e.URL, e.Title))
}

func decodeTravel(raw string) ([]engine.Entry, error) {
	if raw == "" {
		return nil, nil
	}
	var list []struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("nativeengine: decoding travel log: %w", err)
	}
	out := make([]engine.Entry, 0, len(list))
	for _, e := range list {
		out = append(out, engine.Entry{URL: e.URL, Title: e.Title})
	}
	return out, nil
}
