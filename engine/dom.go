// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package engine

import "image"

// Compatibility modes reported by Document.CompatMode.
const (
	StandardsMode = "CSS1Compat"
	QuirksMode    = "BackCompat"
)

// Document is the loaded document. Geometry is in client coordinates of the
// control window.
type Document interface {
	// Root returns the document element.
	Root() Element
	// Body returns the body element, or nil.
	Body() Element
	CompatMode() string
	ElementsByTag(tag string) []Element
	// ElementAt returns the deepest element under client point p, or nil.
	ElementAt(p image.Point) Element
}

// Element is a DOM element.
type Element interface {
	Tag() string
	Attr(name string) (string, bool)
	// Href returns the fully qualified href of an anchor.
	Href() string
	Parent() Element
	Descendants(tag string) []Element

	// CurrentStyle returns the cascaded value of a CSS property. A value of
	// "inherit" means the parent's value applies.
	CurrentStyle(prop string) string
	SetStyle(prop, value string) error

	// OffsetBox is the border box. It is empty when the element is not rendered.
	OffsetBox() image.Rectangle
	// ClientRects returns one rectangle per line box.
	ClientRects() []image.Rectangle
	// ClientArea is the client geometry: clientLeft/Top/Width/Height.
	ClientArea() image.Rectangle
	ScrollSize() image.Point
	ScrollPos() image.Point
	SetScrollPos(p image.Point) error
	// ComponentAt hit-tests p against this element's scrollbars.
	ComponentAt(p image.Point) Component
	// DoScroll performs the engine's scroll-by-component routine.
	DoScroll(c Component) error
}

// Component is a scrollbar hit-test result.
type Component int

const (
	ComponentNone Component = iota
	// ComponentOutside means the point is outside the document area, on a
	// scrollbar the engine owns itself.
	ComponentOutside
	ComponentVThumb
	ComponentVUp
	ComponentVDown
	ComponentVPageUp
	ComponentVPageDown
	ComponentHThumb
	ComponentHLeft
	ComponentHRight
	ComponentHPageLeft
	ComponentHPageRight
)

// IsScrollbar reports whether c is a part of a DOM-owned scrollbar.
func (c Component) IsScrollbar() bool { return c >= ComponentVThumb }

// IsThumb reports whether c is a scrollbar thumb.
func (c Component) IsThumb() bool { return c == ComponentVThumb || c == ComponentHThumb }

// Vertical reports whether c belongs to a vertical scrollbar.
func (c Component) Vertical() bool { return c >= ComponentVThumb && c <= ComponentVPageDown }

func (c Component) String() string {
	switch c {
	case ComponentNone:
		return "none"
	case ComponentOutside:
		return "outside"
	case ComponentVThumb:
		return "vthumb"
	case ComponentVUp:
		return "vup"
	case ComponentVDown:
		return "vdown"
	case ComponentVPageUp:
		return "vpageup"
	case ComponentVPageDown:
		return "vpagedown"
	case ComponentHThumb:
		return "hthumb"
	case ComponentHLeft:
		return "hleft"
	case ComponentHRight:
		return "hright"
	case ComponentHPageLeft:
		return "hpageleft"
	case ComponentHPageRight:
		return "hpageright"
	}
	return "unknown"
}
