// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package nativeengine

import (
	"encoding/json"
	"fmt"
	"image"
	"strings"

	"github.com/YindSoft/webtexture/engine"
)

// snapshot is the bridge's JSON dump of the live DOM: every element with its
// computed style and layout geometry in client coordinates.
type snapshot struct {
	CompatMode string     `json:"compatMode"`
	Root       int32      `json:"root"`
	Body       int32      `json:"body"`
	Nodes      []nodeData `json:"nodes"`

	byID     map[int32]*nodeData
	children map[int32][]int32
}

type nodeData struct {
	ID         int32             `json:"id"`
	Parent     int32             `json:"parent"`
	Tag        string            `json:"tag"`
	Attrs      map[string]string `json:"attrs"`
	Href       string            `json:"href"`
	Style      map[string]string `json:"style"`
	Box        rect              `json:"box"`
	Rects      []rect            `json:"rects"`
	Client     rect              `json:"client"`
	ScrollSize [2]int            `json:"scrollSize"`
	Scroll     [2]int            `json:"scroll"`
}

// rect is [x0, y0, x1, y1].
type rect [4]int

func (r rect) image() image.Rectangle { return image.Rect(r[0], r[1], r[2], r[3]) }

func decodeSnapshot(data []byte) (*snapshot, error) {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("nativeengine: decoding snapshot: %w", err)
	}
	s.byID = make(map[int32]*nodeData, len(s.Nodes))
	s.children = make(map[int32][]int32)
	for k := range s.Nodes {
		n := &s.Nodes[k]
		n.Tag = strings.ToLower(n.Tag)
		s.byID[n.ID] = n
		if n.Parent >= 0 {
			s.children[n.Parent] = append(s.children[n.Parent], n.ID)
		}
	}
	if _, ok := s.byID[s.Root]; !ok {
		return nil, fmt.Errorf("nativeengine: snapshot root %d missing", s.Root)
	}
	return &s, nil
}

// source provides the current snapshot and the mutating bridge calls. The
// Engine implements it; tests substitute a fake.
type source interface {
	snapshot() *snapshot
	elementAt(p image.Point) int32
	componentAt(node int32, p image.Point) engine.Component
	setStyle(node int32, prop, value string) error
	setScroll(node int32, p image.Point) error
	doScroll(node int32, c engine.Component) error
}

type document struct {
	src source
}

func (d *document) element(id int32) engine.Element {
	if s := d.src.snapshot(); s == nil || s.byID[id] == nil {
		return nil
	}
	return &element{src: d.src, id: id}
}

func (d *document) Root() engine.Element {
	s := d.src.snapshot()
	if s == nil {
		return nil
	}
	return d.element(s.Root)
}

func (d *document) Body() engine.Element {
	s := d.src.snapshot()
	if s == nil || s.Body < 0 {
		return nil
	}
	return d.element(s.Body)
}

func (d *document) CompatMode() string {
	if s := d.src.snapshot(); s != nil && s.CompatMode != "" {
		return s.CompatMode
	}
	return engine.QuirksMode
}

func (d *document) ElementsByTag(tag string) []engine.Element {
	s := d.src.snapshot()
	if s == nil {
		return nil
	}
	tag = strings.ToLower(tag)
	var out []engine.Element
	for _, n := range s.Nodes {
		if n.Tag == tag {
			out = append(out, &element{src: d.src, id: n.ID})
		}
	}
	return out
}

func (d *document) ElementAt(p image.Point) engine.Element {
	id := d.src.elementAt(p)
	if id < 0 {
		return nil
	}
	return d.element(id)
}

// element reads its data from the latest snapshot on every call, so it stays
// valid across style and scroll changes.
type element struct {
	src source
	id  int32
}

func (el *element) node() *nodeData {
	if s := el.src.snapshot(); s != nil {
		if n := s.byID[el.id]; n != nil {
			return n
		}
	}
	return &nodeData{Parent: -1}
}

func (el *element) Tag() string { return el.node().Tag }

func (el *element) Attr(name string) (string, bool) {
	v, ok := el.node().Attrs[strings.ToLower(name)]
	return v, ok
}

func (el *element) Href() string { return el.node().Href }

func (el *element) Parent() engine.Element {
	p := el.node().Parent
	if p < 0 {
		return nil
	}
	return (&document{src: el.src}).element(p)
}

func (el *element) Descendants(tag string) []engine.Element {
	s := el.src.snapshot()
	if s == nil {
		return nil
	}
	tag = strings.ToLower(tag)
	var out []engine.Element
	var walk func(id int32)
	walk = func(id int32) {
		for _, c := range s.children[id] {
			if s.byID[c].Tag == tag {
				out = append(out, &element{src: el.src, id: c})
			}
			walk(c)
		}
	}
	walk(el.id)
	return out
}

func (el *element) CurrentStyle(prop string) string {
	return el.node().Style[strings.ToLower(prop)]
}

func (el *element) SetStyle(prop, value string) error {
	return el.src.setStyle(el.id, prop, value)
}

func (el *element) OffsetBox() image.Rectangle { return el.node().Box.image() }

func (el *element) ClientRects() []image.Rectangle {
	n := el.node()
	out := make([]image.Rectangle, 0, len(n.Rects))
	for _, r := range n.Rects {
		out = append(out, r.image())
	}
	return out
}

func (el *element) ClientArea() image.Rectangle { return el.node().Client.image() }

func (el *element) ScrollSize() image.Point {
	n := el.node()
	return image.Pt(n.ScrollSize[0], n.ScrollSize[1])
}

func (el *element) ScrollPos() image.Point {
	n := el.node()
	return image.Pt(n.Scroll[0], n.Scroll[1])
}

func (el *element) SetScrollPos(p image.Point) error { return el.src.setScroll(el.id, p) }

func (el *element) ComponentAt(p image.Point) engine.Component {
	return el.src.componentAt(el.id, p)
}

func (el *element) DoScroll(c engine.Component) error { return el.src.doScroll(el.id, c) }
