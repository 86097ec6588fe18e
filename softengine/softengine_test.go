// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"
	"testing"
	"time"

	"github.com/YindSoft/webtexture/engine"
	"github.com/YindSoft/webtexture/urlscheme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

type recorder struct {
	completes []string
	changes   int
}

func (r *recorder) DocumentComplete(topLevel bool, url string) {
	if topLevel {
		r.completes = append(r.completes, url)
	}
}

func (r *recorder) ViewChanged() { r.changes++ }

func newTestEngine(t *testing.T, w, h int, schemes engine.SchemeHandler) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	e, err := New(engine.Config{Width: w, Height: h, Handler: rec, Schemes: schemes}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, rec
}

func load(t *testing.T, e *Engine, html, base string) {
	t.Helper()
	require.NoError(t, e.LoadStream(strings.NewReader(html), base))
	e.Pump()
}

// navigateAndWait navigates and pumps until the load completes.
func navigateAndWait(t *testing.T, e *Engine, rec *recorder, raw string) {
	t.Helper()
	n := len(rec.completes)
	require.NoError(t, e.Navigate(raw))
	require.Eventually(t, func() bool {
		e.Pump()
		return len(rec.completes) > n
	}, 2*time.Second, 5*time.Millisecond)
}

func dataURL(html string) string {
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

func TestAnchorLayout(t *testing.T) {
	e, rec := newTestEngine(t, 400, 300, nil)
	load(t, e, `<html><body><a href='next.html'>two words</a></body></html>`, "http://example.com/dir/page.html")
	assert.Equal(t, []string{"http://example.com/dir/page.html"}, rec.completes)

	doc := e.Document()
	require.NotNil(t, doc)
	anchors := doc.ElementsByTag("a")
	require.Len(t, anchors, 1)
	a := anchors[0]

	assert.Equal(t, "http://example.com/dir/next.html", a.Href())
	box := a.OffsetBox()
	assert.Equal(t, image.Rect(8, 8, 8+9*charWidth, 8+lineHeight), box)
	require.Len(t, a.ClientRects(), 1)
	assert.Equal(t, box, a.ClientRects()[0])
	assert.Equal(t, "inline", a.CurrentStyle("display"))
	assert.Equal(t, "inherit", a.CurrentStyle("visibility"))

	hit := doc.ElementAt(image.Pt(10, 10))
	require.NotNil(t, hit)
	assert.Equal(t, "a", hit.Tag())
	assert.Equal(t, "body", hit.Parent().Tag())
}

func TestAnchorWrapsIntoLines(t *testing.T) {
	e, _ := newTestEngine(t, 100, 300, nil)
	load(t, e, `<body style="margin:0"><a href="x">aaaa bbbb cccc dddd</a></body>`, "about:blank")
	a := e.Document().ElementsByTag("a")[0]
	rects := a.ClientRects()
	require.GreaterOrEqual(t, len(rects), 2)
	for _, r := range rects {
		assert.True(t, r.In(a.OffsetBox()))
	}
}

func TestStylesheetCascade(t *testing.T) {
	e, _ := newTestEngine(t, 400, 300, nil)
	load(t, e, `<html><head><style>
		p { color: #00ff00 }
		p.note { display: none }
		#big { width: 1000px }
	</style></head><body><p id="a">x</p><p class="note">y</p><div id="big">z</div></body></html>`, "about:blank")
	doc := e.Document()
	ps := doc.ElementsByTag("p")
	require.Len(t, ps, 2)
	assert.Equal(t, "#00ff00", ps[0].CurrentStyle("color"))
	assert.Equal(t, "none", ps[1].CurrentStyle("display"))
	assert.True(t, ps[1].OffsetBox().Empty())
	assert.Equal(t, 1000, doc.ElementsByTag("div")[0].OffsetBox().Dx())
	assert.Equal(t, 1008, doc.Root().ScrollSize().X)
}

func TestInlineStyleLastDeclaration(t *testing.T) {
	for in, want := range map[string]map[string]string{
		"visibility:hidden":          {"visibility": "hidden"},
		"display:none;":              {"display": "none"},
		"color: red; height:2000px ": {"color": "red", "height": "2000px"},
		"":                           {},
	} {
		assert.Equal(t, want, parseDeclarations(in), in)
	}

	e, _ := newTestEngine(t, 200, 100, nil)
	load(t, e, `<p style="display:none">x</p><div style="height:500px">y</div>`, "about:blank")
	doc := e.Document()
	assert.True(t, doc.ElementsByTag("p")[0].OffsetBox().Empty())
	assert.Equal(t, 500, doc.ElementsByTag("div")[0].OffsetBox().Dy())
}

func TestRenderBackground(t *testing.T) {
	e, rec := newTestEngine(t, 50, 40, nil)
	load(t, e, `<html><body>hi</body></html>`, "about:blank")
	body := e.Document().Body()
	require.NotNil(t, body)
	before := rec.changes
	require.NoError(t, body.SetStyle("background-color", "#ff0000"))
	assert.Greater(t, rec.changes, before)

	img := image.NewRGBA(image.Rect(0, 0, 50, 40))
	require.NoError(t, e.Render(img))
	c := img.RGBAAt(1, 1)
	assert.Equal(t, []uint8{0xff, 0, 0, 0xff}, []uint8{c.R, c.G, c.B, c.A})

	assert.Error(t, e.Render(image.NewRGBA(image.Rect(0, 0, 10, 10))))
}

func TestRenderText(t *testing.T) {
	e, _ := newTestEngine(t, 80, 30, nil)
	load(t, e, `<body style="color:#000000">MMMM</body>`, "about:blank")
	img := image.NewRGBA(image.Rect(0, 0, 80, 30))
	require.NoError(t, e.Render(img))
	dark := 0
	for y := 8; y < 8+lineHeight; y++ {
		for x := 8; x < 8+4*charWidth; x++ {
			if img.RGBAAt(x, y).R < 0x80 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 10)
}

func TestTravelLog(t *testing.T) {
	tl := &travelLog{index: -1}
	_, err := tl.back()
	assert.ErrorIs(t, err, engine.ErrNoEntry)

	tl.add(engine.Entry{URL: "a"})
	tl.add(engine.Entry{URL: "b"})
	tl.add(engine.Entry{URL: "c"})
	e, err := tl.back()
	require.NoError(t, err)
	assert.Equal(t, "b", e.URL)
	tl.add(engine.Entry{URL: "d"})
	assert.Equal(t, []engine.Entry{{URL: "a"}, {URL: "b"}, {URL: "d"}}, tl.Entries())
	_, err = tl.forward()
	assert.ErrorIs(t, err, engine.ErrNoEntry)

	require.NoError(t, tl.Clear())
	assert.Empty(t, tl.Entries())
	require.NoError(t, tl.InsertForward(engine.Entry{URL: "y"}))
	require.NoError(t, tl.InsertForward(engine.Entry{URL: "x"}))
	assert.Equal(t, []engine.Entry{{URL: "x"}, {URL: "y"}}, tl.Entries())
	e, err = tl.forward()
	require.NoError(t, err)
	assert.Equal(t, "x", e.URL)
	tl.retitle("X")
	assert.Equal(t, "X", tl.Entries()[0].Title)
}

func TestNavigationHistory(t *testing.T) {
	e, rec := newTestEngine(t, 200, 100, nil)
	p1 := dataURL("<title>One</title>1")
	p2 := dataURL("<title>Two</title>2")
	navigateAndWait(t, e, rec, p1)
	navigateAndWait(t, e, rec, p2)
	assert.Equal(t, "Two", e.LocationTitle())
	assert.Len(t, e.Travel().Entries(), 2)

	require.NoError(t, e.GoBack())
	require.Eventually(t, func() bool {
		e.Pump()
		return e.LocationTitle() == "One"
	}, 2*time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, e.GoBack(), engine.ErrNoEntry)
	assert.Len(t, e.Travel().Entries(), 2)
}

func TestStreamDoesNotAddTravelEntry(t *testing.T) {
	e, _ := newTestEngine(t, 200, 100, nil)
	load(t, e, "<p>x</p>", "about:blank")
	assert.Empty(t, e.Travel().Entries())
}

func TestStreamUTF16(t *testing.T) {
	e, _ := newTestEngine(t, 200, 100, nil)
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(`<html><head><meta charset="iso-8859-1"><title>Grüße</title></head></html>`))
	require.NoError(t, err)
	require.NoError(t, e.LoadStream(bytes.NewReader(data), "about:blank"))
	e.Pump()
	assert.Equal(t, "Grüße", e.LocationTitle())
}

func TestLoadStreamRejectsBase(t *testing.T) {
	e, _ := newTestEngine(t, 200, 100, nil)
	err := e.LoadStream(strings.NewReader("<p>x</p>"), "relative/path")
	assert.ErrorIs(t, err, engine.ErrBaseURLRejected)
}

func TestFailedLoadShowsErrorPage(t *testing.T) {
	e, rec := newTestEngine(t, 200, 100, nil)
	navigateAndWait(t, e, rec, "gopher://nowhere/")
	assert.Equal(t, "gopher://nowhere/", e.LocationURL())
	assert.NotNil(t, e.Document())
}

func TestReservedScheme(t *testing.T) {
	schemes := urlscheme.New("wt", func(id uint64) (urlscheme.Resolver, bool) {
		if id != 7 {
			return nil, false
		}
		return resolverFunc(func(path string) (string, bool) {
			return dataURL("<title>" + path + "</title>"), true
		}), true
	})
	e, rec := newTestEngine(t, 200, 100, schemes)
	navigateAndWait(t, e, rec, "wt://7/page.html")
	assert.Equal(t, "page.html", e.LocationTitle())
	assert.Equal(t, "wt://7/page.html", e.LocationURL())

	load(t, e, `<a href="sub/next.html">n</a>`, "wt://7/dir/index.html")
	a := e.Document().ElementsByTag("a")[0]
	assert.Equal(t, "wt://7/dir/sub/next.html", a.Href())
}

type resolverFunc func(string) (string, bool)

func (f resolverFunc) Resolve(p string) (string, bool) { return f(p) }

func tallPage(overflow string) string {
	style := ""
	if overflow != "" {
		style = ` style="overflow:` + overflow + `"`
	}
	return `<html` + style + `><body><div style="height:2000px">x</div></body></html>`
}

func TestOwnedScrollbarComponents(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	load(t, e, tallPage("scroll"), "about:blank")
	root := e.Document().Root()

	assert.Equal(t, image.Rect(0, 0, 283, 183), root.ClientArea())
	assert.Equal(t, 2016, root.ScrollSize().Y)

	x := 290
	assert.Equal(t, engine.ComponentVUp, root.ComponentAt(image.Pt(x, 5)))
	assert.Equal(t, engine.ComponentVThumb, root.ComponentAt(image.Pt(x, 20)))
	assert.Equal(t, engine.ComponentVPageDown, root.ComponentAt(image.Pt(x, 100)))
	assert.Equal(t, engine.ComponentVDown, root.ComponentAt(image.Pt(x, 175)))
	assert.Equal(t, engine.ComponentHLeft, root.ComponentAt(image.Pt(5, 190)))
	assert.Equal(t, engine.ComponentNone, root.ComponentAt(image.Pt(50, 50)))

	require.NoError(t, root.DoScroll(engine.ComponentVDown))
	assert.Equal(t, image.Pt(0, lineHeight), root.ScrollPos())
	require.NoError(t, root.DoScroll(engine.ComponentVPageDown))
	assert.Equal(t, image.Pt(0, lineHeight+183), root.ScrollPos())
	require.NoError(t, root.SetScrollPos(image.Pt(0, 1e6)))
	assert.Equal(t, image.Pt(0, 2016-183), root.ScrollPos())

	// Body delegates to the viewport.
	assert.Equal(t, root.ScrollPos(), e.Document().Body().ScrollPos())
}

func TestAutomaticScrollbarsAreEngineInternal(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	load(t, e, tallPage(""), "about:blank")
	root := e.Document().Root()
	assert.Equal(t, 283, root.ClientArea().Dx())
	assert.Equal(t, 200, root.ClientArea().Dy())
	assert.Equal(t, engine.ComponentOutside, root.ComponentAt(image.Pt(290, 100)))

	// An internal thumb drag runs through the aux window in screen coordinates.
	e.MoveTo(image.Pt(1000, 1000))
	down := engine.Message{ID: engine.MsgLButtonDown, LParam: engine.MakeLParam(image.Pt(290, 30))}
	require.NoError(t, e.Window().Post(down))
	aux := e.AuxWindow()
	move := engine.Message{ID: engine.MsgMouseMove, LParam: engine.MakeLParam(aux.ScreenToClient(image.Pt(1290, 1050)))}
	require.NoError(t, aux.Post(move))
	assert.Greater(t, root.ScrollPos().Y, 0)
	require.NoError(t, aux.Post(engine.Message{ID: engine.MsgLButtonUp}))
	assert.Nil(t, e.drag)
}

func TestHiddenOverflowHasNoScrollbars(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	load(t, e, tallPage("hidden"), "about:blank")
	root := e.Document().Root()
	assert.Equal(t, image.Rect(0, 0, 300, 200), root.ClientArea())
	assert.Equal(t, engine.ComponentNone, root.ComponentAt(image.Pt(290, 100)))
}

func TestWheelScrolls(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	load(t, e, tallPage(""), "about:blank")
	m := engine.Message{ID: engine.MsgInjectedWheel, WParam: engine.MakeWheelWParam(-120, 0)}
	require.NoError(t, e.Window().Post(m))
	assert.Equal(t, image.Pt(0, wheelLines*lineHeight), e.Document().Root().ScrollPos())
	assert.Equal(t, []engine.Message{m}, e.MainWindow().Messages())
}

func TestLinkClickNavigates(t *testing.T) {
	e, rec := newTestEngine(t, 300, 200, nil)
	target := dataURL("<title>Target</title>")
	load(t, e, `<body><a href="`+target+`">go</a></body>`, "about:blank")
	p := engine.MakeLParam(image.Pt(10, 10))
	require.NoError(t, e.Window().Post(engine.Message{ID: engine.MsgLButtonDown, LParam: p}))
	require.NoError(t, e.Window().Post(engine.Message{ID: engine.MsgLButtonUp, LParam: p}))
	require.Eventually(t, func() bool {
		e.Pump()
		return len(rec.completes) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "Target", e.LocationTitle())
}

func TestInputFocusAndCaret(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	load(t, e, `<body><input value="ab"></body>`, "about:blank")
	_, ok := e.Caret()
	assert.False(t, ok)

	click := engine.MakeLParam(image.Pt(12, 12))
	require.NoError(t, e.Window().Post(engine.Message{ID: engine.MsgLButtonDown, LParam: click}))
	e.Focus(true)
	caret, ok := e.Caret()
	require.True(t, ok)
	assert.Equal(t, 8+3+2*charWidth, caret.Min.X)
	assert.Equal(t, 1, caret.Dx())

	require.NoError(t, e.Window().Post(engine.Message{ID: engine.MsgChar, WParam: 'c'}))
	require.NoError(t, e.Window().Post(engine.Message{ID: engine.MsgKeyDown, WParam: vkBack}))
	require.NoError(t, e.Window().Post(engine.Message{ID: engine.MsgKeyDown, WParam: vkBack}))
	assert.Equal(t, "a", e.focus.value)

	e.Focus(false)
	_, ok = e.Caret()
	assert.False(t, ok)
}

func TestTabAccelerator(t *testing.T) {
	e, _ := newTestEngine(t, 400, 200, nil)
	load(t, e, `<body><input id="a"><input id="b"></body>`, "about:blank")
	tab := engine.Message{ID: engine.MsgKeyDown, WParam: vkTab, LParam: 1}
	assert.True(t, e.TranslateAccelerator(tab))
	assert.Equal(t, "a", e.focus.attrs["id"])
	assert.True(t, e.TranslateAccelerator(tab))
	assert.Equal(t, "b", e.focus.attrs["id"])
	assert.True(t, e.TranslateAccelerator(tab))
	assert.Equal(t, "a", e.focus.attrs["id"])

	assert.False(t, e.TranslateAccelerator(engine.Message{ID: engine.MsgKeyDown, WParam: 0x74}))
	assert.Len(t, e.Accelerators(), 4)
	assert.Empty(t, e.MainWindow().Messages())
}

func TestPluginChildWindows(t *testing.T) {
	e, _ := newTestEngine(t, 400, 300, nil)
	load(t, e, `<body><embed src="x.swf"></body>`, "about:blank")
	require.Len(t, e.Children(), 1)
	child := e.Children()[0]
	assert.Equal(t, image.Rect(8, 8, 308, 158), child.Rect())

	w, p := e.ChildAt(image.Pt(20, 30))
	assert.Same(t, child, w)
	assert.Equal(t, image.Pt(12, 22), p)

	w, p = e.ChildAt(image.Pt(350, 250))
	assert.Same(t, e.MainWindow(), w)
	assert.Equal(t, image.Pt(350, 250), p)

	e.MoveTo(image.Pt(100, 100))
	assert.Equal(t, image.Pt(120, 130), child.ClientToScreen(image.Pt(12, 22)))
}

func TestResize(t *testing.T) {
	e, rec := newTestEngine(t, 300, 200, nil)
	load(t, e, "<p>x</p>", "about:blank")
	before := rec.changes
	require.NoError(t, e.Resize(100, 50))
	assert.Equal(t, image.Pt(100, 50), e.ClientSize())
	assert.Greater(t, rec.changes, before)
	assert.Error(t, e.Resize(-1, 5))
}

func TestCompatMode(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	load(t, e, "<!DOCTYPE html><p>x</p>", "about:blank")
	assert.Equal(t, engine.StandardsMode, e.Document().CompatMode())
	load(t, e, "<p>x</p>", "about:blank")
	assert.Equal(t, engine.QuirksMode, e.Document().CompatMode())
}

func TestClosedEngine(t *testing.T) {
	e, _ := newTestEngine(t, 300, 200, nil)
	require.NoError(t, e.Close())
	assert.Nil(t, e.Document())
	assert.ErrorIs(t, e.Navigate("about:blank"), engine.ErrNoDocument)
	assert.Error(t, e.Window().Post(engine.Message{ID: engine.MsgMouseMove}))
	require.NoError(t, e.Close())
}
