// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"bytes"
	"image"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/YindSoft/webtexture/engine"
	"golang.org/x/net/html"
)

type document struct {
	eng     *Engine
	base    string
	title   string
	doctype bool

	root  *element
	body  *element
	all   []*element
	rules []rule

	runs   []textRun
	scroll image.Point
	view   viewport
}

// viewport is the result of the last layout.
type viewport struct {
	width, height int
	client        image.Point
	extent        image.Point
	vbar, hbar    bool
	// owned is true when scrollbars come from an explicit overflow style and
	// are hit-tested as DOM scrollbars.
	owned bool
}

type element struct {
	doc      *document
	tag      string
	text     string
	value    string
	attrs    map[string]string
	parent   *element
	children []*element

	inline  map[string]string
	sheet   map[string]string
	runtime map[string]string

	box   image.Rectangle
	lines []image.Rectangle
}

type textRun struct {
	rect  image.Rectangle
	text  string
	owner *element
}

func (e *Engine) parse(data []byte, base string) *document {
	d := &document{eng: e, base: base}
	n, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		e.log.WithError(err).Warn("parse failed")
		n, _ = html.Parse(strings.NewReader(""))
	}
	var styles []string
	d.build(n, nil, &styles)
	if d.root == nil {
		d.root = d.newElement("html", nil, nil)
	}
	if d.body == nil {
		d.body = d.newElement("body", nil, d.root)
	}
	d.rules = parseStylesheets(styles)
	for _, el := range d.all {
		el.sheet = d.match(el)
	}
	e.children = nil
	for _, el := range d.all {
		if el.tag == "embed" || el.tag == "object" {
			e.children = append(e.children, &Window{eng: e, kind: childWindow, el: el})
		}
	}
	return d
}

func (d *document) newElement(tag string, attrs []html.Attribute, parent *element) *element {
	el := &element{doc: d, tag: tag, parent: parent, attrs: map[string]string{}}
	for _, a := range attrs {
		el.attrs[strings.ToLower(a.Key)] = a.Val
	}
	if s, ok := el.attrs["style"]; ok {
		el.inline = parseDeclarations(s)
	}
	el.value = el.attrs["value"]
	if parent != nil {
		parent.children = append(parent.children, el)
	}
	d.all = append(d.all, el)
	switch tag {
	case "html":
		if d.root == nil {
			d.root = el
		}
	case "body":
		if d.body == nil {
			d.body = el
		}
	}
	return el
}

func (d *document) build(n *html.Node, parent *element, styles *[]string) {
	switch n.Type {
	case html.DoctypeNode:
		d.doctype = true
		return
	case html.TextNode:
		if parent == nil {
			return
		}
		switch parent.tag {
		case "style":
			*styles = append(*styles, n.Data)
		case "title":
			d.title += strings.TrimSpace(n.Data)
		case "textarea":
			parent.value += n.Data
		case "script", "head", "html":
		default:
			t := &element{doc: d, tag: "#text", text: n.Data, parent: parent}
			parent.children = append(parent.children, t)
		}
		return
	case html.ElementNode:
		parent = d.newElement(strings.ToLower(n.Data), n.Attr, parent)
	case html.DocumentNode:
	default:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.build(c, parent, styles)
	}
}

func (d *document) toClient(r image.Rectangle) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return r.Sub(d.scroll)
}

func (d *document) Root() engine.Element { return d.root }

func (d *document) Body() engine.Element {
	if d.body == nil {
		return nil
	}
	return d.body
}

func (d *document) CompatMode() string {
	if d.doctype {
		return engine.StandardsMode
	}
	return engine.QuirksMode
}

func (d *document) ElementsByTag(tag string) []engine.Element {
	tag = strings.ToLower(tag)
	var out []engine.Element
	for _, el := range d.all {
		if el.tag == tag {
			out = append(out, el)
		}
	}
	return out
}

func (d *document) ElementAt(p image.Point) engine.Element {
	if el := d.elementAt(p); el != nil {
		return el
	}
	return nil
}

func (d *document) elementAt(p image.Point) *element {
	dp := p.Add(d.scroll)
	for i := len(d.all) - 1; i >= 0; i-- {
		el := d.all[i]
		if el.box.Empty() || !dp.In(el.box) {
			continue
		}
		if len(el.lines) > 0 && el.display() == "inline" {
			hit := false
			for _, l := range el.lines {
				if dp.In(l) {
					hit = true
					break
				}
			}
			if !hit {
				continue
			}
		}
		return el
	}
	return d.root
}

func (el *element) isScroller() bool {
	return el == el.doc.root || el == el.doc.body
}

func (el *element) Tag() string { return el.tag }

func (el *element) Attr(name string) (string, bool) {
	v, ok := el.attrs[strings.ToLower(name)]
	return v, ok
}

func (el *element) Href() string {
	raw, ok := el.attrs["href"]
	if !ok {
		return ""
	}
	raw = strings.TrimSpace(raw)
	if s := el.doc.eng.cfg.Schemes; s != nil && s.Handles(el.doc.base) {
		if out, err := s.Combine(el.doc.base, raw); err == nil {
			return out
		}
		return raw
	}
	b, err := url.Parse(el.doc.base)
	if err != nil {
		return raw
	}
	r, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return b.ResolveReference(r).String()
}

func (el *element) Parent() engine.Element {
	if el.parent == nil {
		return nil
	}
	return el.parent
}

func (el *element) Descendants(tag string) []engine.Element {
	tag = strings.ToLower(tag)
	var out []engine.Element
	var walk func(*element)
	walk = func(n *element) {
		for _, c := range n.children {
			if c.tag == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(el)
	return out
}

func (el *element) SetStyle(prop, value string) error {
	if el.runtime == nil {
		el.runtime = map[string]string{}
	}
	el.runtime[strings.ToLower(prop)] = strings.TrimSpace(value)
	el.doc.eng.relayout()
	el.doc.eng.changed()
	return nil
}

func (el *element) OffsetBox() image.Rectangle { return el.doc.toClient(el.box) }

func (el *element) ClientRects() []image.Rectangle {
	out := make([]image.Rectangle, 0, len(el.lines))
	for _, l := range el.lines {
		out = append(out, el.doc.toClient(l))
	}
	return out
}

func (el *element) ClientArea() image.Rectangle {
	if el.isScroller() {
		return image.Rectangle{Max: el.doc.view.client}
	}
	return el.doc.toClient(el.box)
}

func (el *element) ScrollSize() image.Point {
	if el.isScroller() {
		return el.doc.scrollSize()
	}
	return el.box.Size()
}

func (el *element) ScrollPos() image.Point {
	if el.isScroller() {
		return el.doc.scroll
	}
	return image.Point{}
}

func (el *element) SetScrollPos(p image.Point) error {
	if !el.isScroller() {
		return nil
	}
	el.doc.setScroll(p)
	return nil
}

func (el *element) ComponentAt(p image.Point) engine.Component {
	if !el.isScroller() {
		return engine.ComponentNone
	}
	return el.doc.component(p)
}

func (el *element) DoScroll(c engine.Component) error {
	if !el.isScroller() {
		return nil
	}
	el.doc.doScroll(c)
	return nil
}

func (el *element) addLine(r image.Rectangle) {
	if n := len(el.lines); n > 0 && el.lines[n-1].Min.Y == r.Min.Y {
		el.lines[n-1] = el.lines[n-1].Union(r)
		return
	}
	el.lines = append(el.lines, r)
}

func runeCount(s string) int { return utf8.RuneCountInString(s) }
