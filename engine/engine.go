// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package engine describes the surface of an embedded HTML engine as seen by
// the webtexture core. Implementations live in softengine (pure Go) and
// nativeengine (platform browser control through a bridge library).
//
// Every method of Engine, Window, Document, Element and TravelLog must be
// called from the browser UI thread that created the engine.
package engine

import (
	"errors"
	"image"
	"io"

	"github.com/sirupsen/logrus"
)

var (
	// ErrNoEntry is returned by GoBack/GoForward when the travel log has no
	// entry in that direction.
	ErrNoEntry = errors.New("engine: no travel entry")
	// ErrBaseURLRejected is returned by LoadStream when the engine refuses the
	// base URL. The caller may retry with a default base.
	ErrBaseURLRejected = errors.New("engine: base URL rejected")
	// ErrNoDocument is returned by operations that need a loaded document.
	ErrNoDocument = errors.New("engine: no document")
	// ErrUnsupported is returned for operations an engine does not implement.
	ErrUnsupported = errors.New("engine: unsupported")
)

// Handler receives engine callbacks on the browser UI thread.
type Handler interface {
	// DocumentComplete is called when a load finishes. topLevel is false for
	// sub-frame loads.
	DocumentComplete(topLevel bool, url string)
	// ViewChanged is called whenever the rendered view may have changed.
	ViewChanged()
}

// SchemeHandler resolves URLs of the reserved scheme during engine fetches.
type SchemeHandler interface {
	Handles(raw string) bool
	Parse(raw string) (string, error)
	Combine(base, rel string) (string, error)
}

// Config is passed to a Factory when a browser instance is created.
type Config struct {
	Width, Height int
	Handler       Handler
	Schemes       SchemeHandler
	Logger        logrus.FieldLogger
}

// Factory creates an engine. It runs on the browser UI thread.
type Factory func(cfg Config) (Engine, error)

// Metrics are the engine's system metrics.
type Metrics struct {
	ScrollbarThickness int
	ArrowExtent        int
	WheelDelta         int
}

// Entry is one travel log entry.
type Entry struct {
	URL   string
	Title string
}

// TravelLog is the engine's back/forward list.
type TravelLog interface {
	// Entries returns every entry, oldest first.
	Entries() []Entry
	// Clear removes every entry.
	Clear() error
	// InsertForward inserts e directly after the current position.
	InsertForward(e Entry) error
}

// Window is a native window owned by the engine: the top-level control
// window, a plug-in child, or the hidden auxiliary scroller window.
type Window interface {
	Post(m Message) error
	ClientToScreen(p image.Point) image.Point
	ScreenToClient(p image.Point) image.Point
}

// Engine is one embedded browser control.
type Engine interface {
	Window() Window
	// AuxWindow returns the hidden window that tracks engine-internal
	// scrollbar drags, or nil.
	AuxWindow() Window
	// ChildAt returns the deepest window under client point p and p in that
	// window's client coordinates.
	ChildAt(p image.Point) (Window, image.Point)
	// TranslateAccelerator offers m to the engine's accelerator handling and
	// reports whether it was consumed.
	TranslateAccelerator(m Message) bool
	Metrics() Metrics

	Navigate(url string) error
	LoadStream(r io.Reader, baseURL string) error
	Resize(width, height int) error
	ClientSize() image.Point
	// MoveTo places the client origin of the control window at screen point origin.
	MoveTo(origin image.Point)
	Focus(active bool)

	Render(dst *image.RGBA) error
	// Caret returns the caret rectangle in client coordinates.
	Caret() (image.Rectangle, bool)

	// Document returns the current document, or nil.
	Document() Document
	LocationURL() string
	LocationTitle() string

	Travel() TravelLog
	GoBack() error
	GoForward() error

	// Pump delivers pending engine work and callbacks. The controller calls
	// it on every tick.
	Pump()
	Close() error
}
