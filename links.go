// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"image"

	"github.com/YindSoft/webtexture/engine"
)

// LinkRecord is a visible link in the last captured frame. Rectangles use
// texture coordinates with a bottom-left origin; Bounds is the union of
// Rects.
type LinkRecord struct {
	URL      string
	MIMEType string
	Target   string
	Bounds   image.Rectangle
	Rects    []image.Rectangle
}

// refreshMetadata recomputes links after a capture. Content size, URL and
// title are only measured again after a load or a minimum size change, since
// measuring resizes the engine window.
func (i *instance) refreshMetadata() {
	gen := i.linkGen.Add(1)
	r := i.resolver.Load()
	links, pending := i.extractLinks(r != nil)

	i.metaMu.Lock()
	if r == nil {
		i.links = links
	}
	i.metaMu.Unlock()
	if r != nil {
		i.resolveLinks(gen, r.r, pending)
	}

	if i.metaGen == i.contentLoadGen {
		return
	}
	i.metaGen = i.contentLoadGen
	size := i.measureContent()
	url, hasURL := i.currentURL()
	title := i.eng.LocationTitle()

	i.metaMu.Lock()
	i.contentSize = size
	i.contentURL, i.hasURL = url, hasURL
	i.title = title
	i.metaMu.Unlock()
}

func (i *instance) currentURL() (string, bool) {
	if i.originalLoaded {
		return "", false
	}
	u := i.eng.LocationURL()
	return u, u != ""
}

// linkCandidate is a link whose raw href still has to go through the
// content's resolver.
type linkCandidate struct {
	href string
	rec  LinkRecord
}

// extractLinks walks the anchors of the document. With deferred set, links
// are returned as candidates carrying their raw href instead.
func (i *instance) extractLinks(deferred bool) ([]LinkRecord, []linkCandidate) {
	doc := i.eng.Document()
	if doc == nil {
		return nil, nil
	}
	viewport := image.Rectangle{}
	if root := doc.Root(); root != nil {
		viewport = root.ClientArea()
	}
	if viewport.Empty() {
		if body := doc.Body(); body != nil {
			viewport = body.ClientArea()
		}
	}
	height := i.eng.ClientSize().Y

	var (
		out     []LinkRecord
		pending []linkCandidate
	)
	for _, a := range doc.ElementsByTag("a") {
		href, ok := a.Attr("href")
		if !ok || href == "" || !visible(a) {
			continue
		}
		var rec LinkRecord
		rec.MIMEType, _ = a.Attr("type")
		rec.Target, _ = a.Attr("target")
		for _, r := range linkRects(a) {
			r = r.Intersect(viewport)
			if r.Empty() {
				continue
			}
			r = flipY(r, height)
			rec.Rects = append(rec.Rects, r)
			rec.Bounds = rec.Bounds.Union(r)
		}
		if len(rec.Rects) == 0 {
			continue
		}
		if deferred {
			pending = append(pending, linkCandidate{href: href, rec: rec})
			continue
		}
		if rec.URL, ok = i.linkURL(a, href); ok {
			out = append(out, rec)
		}
	}
	return out, pending
}

// resolveLinks maps candidate hrefs through r on the callback queue and
// publishes the result from there, so the UI thread never waits on the host.
// Results of an older capture are discarded.
func (i *instance) resolveLinks(gen uint64, r Resolver, pending []linkCandidate) {
	publish := func(links []LinkRecord) {
		i.metaMu.Lock()
		if i.linkGen.Load() == gen {
			i.links = links
		}
		i.metaMu.Unlock()
	}
	ok := i.pump.callbacks.Post(func() {
		links := make([]LinkRecord, 0, len(pending))
		for _, c := range pending {
			if url, ok := r.Resolve(c.href); ok {
				c.rec.URL = url
				links = append(links, c.rec)
			}
		}
		publish(links)
	})
	if !ok {
		i.log.Warn("callback queue closed, links dropped")
		publish(nil)
	}
}

// linkURL returns the raw href for in-memory content on the default base
// URL and the engine's fully qualified href otherwise.
func (i *instance) linkURL(a engine.Element, href string) (string, bool) {
	if i.originalLoaded && i.baseURL == DefaultBaseURL {
		return href, true
	}
	u := a.Href()
	return u, u != ""
}

// linkRects collects the client rectangles of an anchor: its visible images
// and either its whole box (block anchors) or its line boxes.
func linkRects(a engine.Element) []image.Rectangle {
	box := a.OffsetBox()
	clip := false
	switch a.CurrentStyle("overflow") {
	case "hidden", "scroll":
		clip = true
	}
	var rects []image.Rectangle
	for _, img := range a.Descendants("img") {
		if !visible(img) {
			continue
		}
		r := img.OffsetBox()
		if clip {
			r = r.Intersect(box)
		}
		rects = append(rects, r)
	}
	lines := a.ClientRects()
	if a.CurrentStyle("display") == "block" || len(lines) == 0 {
		return append(rects, box)
	}
	return append(rects, lines...)
}

func visible(el engine.Element) bool {
	if el.OffsetBox().Empty() {
		return false
	}
	for e := el; e != nil; e = e.Parent() {
		switch e.CurrentStyle("visibility") {
		case "hidden", "collapse", "none":
			return false
		case "", "inherit":
		default:
			return true
		}
	}
	return true
}

// flipY converts a top-left origin rectangle to a bottom-left origin in a
// texture of the given height.
func flipY(r image.Rectangle, height int) image.Rectangle {
	return image.Rect(r.Min.X, height-r.Max.Y, r.Max.X, height-r.Min.Y)
}

// measureContent lays the document out at the minimum content size and
// returns the scrollable extent plus room for scrollbars. The frame size and
// dirty flag are restored afterwards.
func (i *instance) measureContent() image.Point {
	doc := i.eng.Document()
	if doc == nil {
		return image.Point{}
	}
	el := doc.Root()
	if doc.CompatMode() != engine.StandardsMode || el == nil {
		if body := doc.Body(); body != nil {
			el = body
		}
	}
	if el == nil {
		return image.Point{}
	}
	i.metaMu.Lock()
	minSize := i.minSize
	i.metaMu.Unlock()

	orig := i.eng.ClientSize()
	scroll := el.ScrollPos()
	dirty := i.dirty
	defer func() {
		if err := i.eng.Resize(orig.X, orig.Y); err != nil {
			i.log.WithError(err).Warn("restoring frame size")
		}
		if err := el.SetScrollPos(scroll); err != nil {
			i.log.WithError(err).Debug("restoring scroll position")
		}
		i.dirty = dirty
	}()
	if minSize.X > 0 && minSize.Y > 0 {
		if err := i.eng.Resize(minSize.X, minSize.Y); err != nil {
			i.log.WithError(err).Warn("resizing to minimum content size")
		}
	}
	t := i.eng.Metrics().ScrollbarThickness
	return el.ScrollSize().Add(image.Pt(t, t))
}

// Links returns the links of the latest capture.
func (b *Browser) Links() []LinkRecord {
	i := b.inst
	i.metaMu.Lock()
	defer i.metaMu.Unlock()
	out := make([]LinkRecord, len(i.links))
	copy(out, i.links)
	return out
}

// ContentSize returns the measured content size of the latest capture.
func (b *Browser) ContentSize() image.Point {
	i := b.inst
	i.metaMu.Lock()
	defer i.metaMu.Unlock()
	return i.contentSize
}

// ContentURL returns the URL of the displayed page. It reports false while
// the original in-memory content is shown.
func (b *Browser) ContentURL() (string, bool) {
	i := b.inst
	i.metaMu.Lock()
	defer i.metaMu.Unlock()
	return i.contentURL, i.hasURL
}

// Title returns the document title of the latest capture.
func (b *Browser) Title() string {
	i := b.inst
	i.metaMu.Lock()
	defer i.metaMu.Unlock()
	return i.title
}

// MinContentSize returns the layout size used for content measurement.
func (b *Browser) MinContentSize() image.Point {
	i := b.inst
	i.metaMu.Lock()
	defer i.metaMu.Unlock()
	return i.minSize
}
