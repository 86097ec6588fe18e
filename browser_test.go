// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"context"
	"encoding/base64"
	"image"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/YindSoft/webtexture/engine"
	"github.com/YindSoft/webtexture/keymap"
	"github.com/YindSoft/webtexture/softengine"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testOptions() *Options {
	return &Options{
		Engine:       softengine.Factory(nil),
		Logger:       quietLogger(),
		TickInterval: Duration(5 * time.Millisecond),
		FrameWidth:   320,
		FrameHeight:  240,
	}
}

// startPump runs a pump for the duration of the test.
func startPump(t *testing.T, opts *Options) *Pump {
	t.Helper()
	if opts == nil {
		opts = testOptions()
	}
	p, err := NewPump(opts)
	require.NoError(t, err)
	errc := make(chan error, 1)
	go func() { errc <- p.Run(context.Background()) }()
	t.Cleanup(func() {
		require.NoError(t, p.Shutdown())
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("pump did not stop")
		}
		p.Release()
	})
	return p
}

func newReadyBrowser(t *testing.T, p *Pump) *Browser {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	b, err := p.NewBrowser(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return b.State() == StateReady }, waitFor, time.Millisecond)
	return b
}

// onUI runs fn against the instance on the pump's UI thread and waits.
func onUI(t *testing.T, b *Browser, fn func(i *instance)) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, b.post(func(i *instance) {
		defer close(done)
		fn(i)
	}))
	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("UI thread did not respond")
	}
}

// uiCheck evaluates fn on the UI thread. It reports false when the pump does
// not answer in time.
func uiCheck(b *Browser, fn func(i *instance) bool) bool {
	res := make(chan bool, 1)
	if err := b.post(func(i *instance) { res <- fn(i) }); err != nil {
		return false
	}
	select {
	case ok := <-res:
		return ok
	case <-time.After(waitFor):
		return false
	}
}

// waitCaptured waits until the in-memory content is displayed and captured
// with no capture pending.
func waitCaptured(t *testing.T, b *Browser) {
	t.Helper()
	require.Eventually(t, func() bool {
		return uiCheck(b, func(i *instance) bool {
			i.frameMu.Lock()
			hasFrame := i.frame != nil
			i.frameMu.Unlock()
			return i.State() == StateReady && i.originalLoaded && !i.loadingOriginal &&
				!i.dirty && !i.captureQueued.Load() && hasFrame
		})
	}, waitFor, time.Millisecond)
}

func dataURL(html string) string {
	return "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

func TestLinksAfterFirstCapture(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML("<html><body><a href='x'>t</a></body></html>", "about:blank"))

	require.Eventually(t, func() bool { return len(b.Links()) == 1 }, waitFor, time.Millisecond)
	link := b.Links()[0]
	assert.Equal(t, "x", link.URL)
	assert.GreaterOrEqual(t, len(link.Rects), 1)
	assert.Positive(t, link.Bounds.Dx()*link.Bounds.Dy())

	// Bottom-left origin: the link sits near the top of the 240 pixel frame.
	assert.Equal(t, 240-8, link.Bounds.Max.Y)
	_, hasURL := b.ContentURL()
	assert.False(t, hasURL)
}

func TestHiddenLinksAreSkipped(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML(`<body>
		<a href="a">shown</a>
		<a href="b" style="visibility:hidden">hidden</a>
		<a href="c" style="display:none">gone</a>
		<span style="visibility:hidden"><a href="d">inherited</a></span>
		<a>no href</a>
	</body>`, ""))
	require.Eventually(t, func() bool { return len(b.Links()) > 0 }, waitFor, time.Millisecond)
	links := b.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "a", links[0].URL)
}

func TestLinkTargetAndType(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML(`<a href="next.html" target="_blank" type="text/html">n</a>`, "http://example.com/dir/"))
	require.Eventually(t, func() bool { return len(b.Links()) == 1 }, waitFor, time.Millisecond)
	link := b.Links()[0]
	assert.Equal(t, "http://example.com/dir/next.html", link.URL)
	assert.Equal(t, "_blank", link.Target)
	assert.Equal(t, "text/html", link.MIMEType)
}

func TestLinksThroughResolver(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	r := ResolverFunc(func(ref string) (string, bool) {
		if ref == "missing.html" {
			return "", false
		}
		return "file:/tmp/" + ref, true
	})
	require.NoError(t, b.SetHTMLWithResolver(`<a href="page.html">p</a> <a href="missing.html">m</a>`, r))
	require.Eventually(t, func() bool { return len(b.Links()) > 0 }, waitFor, time.Millisecond)
	links := b.Links()
	require.Len(t, links, 1)
	assert.Equal(t, "file:/tmp/page.html", links[0].URL)
}

func TestLinkRectsStayInViewport(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	page := `<a href="wrap">` + strings.Repeat("word ", 20) + `</a>` +
		`<div style="height:170px"></div><a href="clip">clipped</a><div style="height:500px"></div>`
	require.NoError(t, b.SetHTML(page, ""))
	require.Eventually(t, func() bool { return len(b.Links()) == 2 }, waitFor, time.Millisecond)

	// Root scrollbars are shown: the viewport is 303x223 of a 240 high frame.
	viewport := image.Rect(0, 240-223, 303, 240)
	byURL := map[string]LinkRecord{}
	for _, l := range b.Links() {
		byURL[l.URL] = l
		var union image.Rectangle
		for _, r := range l.Rects {
			assert.False(t, r.Empty(), l.URL)
			assert.True(t, r.In(viewport), "%s: %v outside %v", l.URL, r, viewport)
			union = union.Union(r)
		}
		assert.Equal(t, union, l.Bounds, l.URL)
	}
	assert.GreaterOrEqual(t, len(byURL["wrap"].Rects), 2)
	clip := byURL["clip"]
	require.Len(t, clip.Rects, 1)
	assert.Equal(t, viewport.Min.Y, clip.Rects[0].Min.Y)
	assert.Less(t, clip.Rects[0].Dy(), 13)
}

func TestBackgroundColorCapture(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML("<html><body><a href='x'>t</a></body></html>", "about:blank"))
	require.NoError(t, b.SetBackgroundColor("#FF0000"))

	require.Eventually(t, func() bool {
		f := b.Frame()
		if f == nil {
			return false
		}
		o := (1*f.Width + 1) * 3
		return f.Pix[o] == 0 && f.Pix[o+1] == 0 && f.Pix[o+2] == 255
	}, waitFor, time.Millisecond)

	f := b.Frame()
	assert.Equal(t, 320, f.Width)
	assert.Equal(t, 240, f.Height)
	assert.Len(t, f.Pix, 320*240*3)
	assert.Positive(t, b.UpdateTime())
}

func TestBackgroundSurvivesNavigation(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetBackgroundColor("#00ff00"))
	require.NoError(t, b.LoadURL(dataURL("<p>next</p>")))
	require.Eventually(t, func() bool {
		f := b.Frame()
		if f == nil {
			return false
		}
		u, ok := b.ContentURL()
		return ok && u != "about:blank" && f.Pix[4] == 255 && f.Pix[3] == 0
	}, waitFor, time.Millisecond)
}

func TestHistoryRollback(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	page := dataURL("<title>External</title><p>external</p>")
	r := ResolverFunc(func(ref string) (string, bool) {
		if ref == "page.html" {
			return page, true
		}
		return "", false
	})
	require.NoError(t, b.SetHTMLWithResolver("<p>original</p>", r))
	waitCaptured(t, b)

	// Nothing to go back to yet.
	require.NoError(t, b.GoBack())
	onUI(t, b, func(i *instance) {
		assert.Empty(t, i.saved)
		assert.True(t, i.originalLoaded)
		assert.Equal(t, StateReady, i.State())
	})

	external := schemeHandler.BaseURL(uint64(b.ID())) + "page.html"
	require.NoError(t, b.LoadURL(external))
	require.Eventually(t, func() bool {
		u, ok := b.ContentURL()
		return ok && u == external && b.Title() == "External"
	}, waitFor, time.Millisecond)

	require.NoError(t, b.GoBack())
	require.Eventually(t, func() bool {
		_, ok := b.ContentURL()
		return !ok && b.State() == StateReady
	}, waitFor, time.Millisecond)
	var saved []engine.Entry
	onUI(t, b, func(i *instance) {
		saved = append(saved, i.saved...)
		assert.True(t, i.mustClear)
	})
	require.GreaterOrEqual(t, len(saved), 1)
	assert.Equal(t, external, saved[0].URL)

	require.NoError(t, b.GoForward())
	require.Eventually(t, func() bool {
		u, ok := b.ContentURL()
		return ok && u == external
	}, waitFor, time.Millisecond)
	onUI(t, b, func(i *instance) {
		entries := i.eng.Travel().Entries()
		require.Len(t, entries, len(saved))
		for k := range saved {
			assert.Equal(t, saved[k].URL, entries[k].URL)
		}
		assert.False(t, i.mustClear)
	})
}

func TestKeyPressRelease(t *testing.T) {
	opts := testOptions()
	engines := make(chan *softengine.Engine, 1)
	opts.Engine = func(cfg engine.Config) (engine.Engine, error) {
		e, err := softengine.New(cfg, nil)
		if err != nil {
			return nil, err
		}
		engines <- e
		return e, nil
	}
	b := newReadyBrowser(t, startPump(t, opts))
	eng := <-engines

	require.NoError(t, b.SendEvent(KeyEvent{Action: KeyPress, Key: ebiten.KeyA}))
	require.NoError(t, b.SendEvent(KeyEvent{Action: KeyRelease, Key: ebiten.KeyA}))

	var keys []engine.Message
	onUI(t, b, func(*instance) {
		for _, m := range eng.MainWindow().Messages() {
			if m.ID == engine.MsgKeyDown || m.ID == engine.MsgKeyUp {
				keys = append(keys, m)
			}
		}
	})
	require.Len(t, keys, 2)

	down, up := keys[0], keys[1]
	assert.Equal(t, engine.MsgKeyDown, down.ID)
	assert.Equal(t, uint64('A'), down.WParam)
	assert.Equal(t, uint64(1), down.LParam&keymap.RepeatMask)
	assert.Zero(t, down.LParam&keymap.ExtendedBit)

	assert.Equal(t, engine.MsgKeyUp, up.ID)
	assert.Equal(t, uint64('A'), up.WParam)
	assert.NotZero(t, up.LParam&keymap.PreviousBit)
	assert.NotZero(t, up.LParam&keymap.TransitionBit)
}

func TestAcceleratorsBypassWindow(t *testing.T) {
	opts := testOptions()
	engines := make(chan *softengine.Engine, 1)
	opts.Engine = func(cfg engine.Config) (engine.Engine, error) {
		e, err := softengine.New(cfg, nil)
		if err != nil {
			return nil, err
		}
		engines <- e
		return e, nil
	}
	b := newReadyBrowser(t, startPump(t, opts))
	eng := <-engines

	require.NoError(t, b.SendEvent(KeyEvent{Action: KeyPress, Key: ebiten.KeyTab}))
	require.NoError(t, b.SendEvent(KeyEvent{Action: KeyPress, Key: ebiten.KeyC, Modifiers: keymap.ModControl}))
	require.NoError(t, b.SendEvent(KeyEvent{Action: KeyChar, Char: 'c'}))
	onUI(t, b, func(*instance) {
		accels := eng.Accelerators()
		require.Len(t, accels, 2)
		assert.Equal(t, uint64(keymap.VKTab), accels[0].WParam)
		var ids []uint32
		for _, m := range eng.MainWindow().Messages() {
			if m.ID != engine.MsgMouseMove {
				ids = append(ids, m.ID)
			}
		}
		assert.Equal(t, []uint32{engine.MsgChar}, ids)
	})
}

func TestMinContentSize(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML(`<div style="width:100px">x</div>`, ""))
	require.NoError(t, b.SetMinContentSize(400, 200))
	assert.Equal(t, image.Pt(400, 200), b.MinContentSize())
	require.Eventually(t, func() bool { return b.ContentSize().X >= 400+17 }, waitFor, time.Millisecond)

	// Measuring never leaves the frame at the minimum size.
	require.NoError(t, b.SetHTML(`<p>again</p>`, ""))
	require.Eventually(t, func() bool {
		f := b.Frame()
		return f != nil && f.Width == 320 && f.Height == 240
	}, waitFor, time.Millisecond)
}

func TestSetFrameSize(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML("<p>x</p>", ""))
	require.NoError(t, b.SetFrameSize(200, 100))
	require.Eventually(t, func() bool {
		f := b.Frame()
		return f != nil && f.Width == 200 && f.Height == 100 && len(f.Pix) == 200*100*3
	}, waitFor, time.Millisecond)
}

func TestOwnedScrollbarArrow(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML(`<div style="height:2000px">tall</div>`, ""))
	waitCaptured(t, b)

	// Vertical down arrow of the 320x240 frame with both bars shown.
	p := image.Pt(310, 215)
	require.NoError(t, b.SendEvent(MouseEvent{Action: MouseDown, Buttons: ButtonLeft, Point: p}))
	require.NoError(t, b.SendEvent(MouseEvent{Action: MouseUp, Point: p}))
	onUI(t, b, func(i *instance) {
		root := i.eng.Document().Root()
		assert.Equal(t, "scroll", root.CurrentStyle("overflow"))
		assert.GreaterOrEqual(t, root.ScrollPos().Y, 13)
		assert.False(t, i.scroll.active())
	})
}

func TestWheelScrollsDocument(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML(`<div style="height:2000px">tall</div>`, ""))
	waitCaptured(t, b)
	require.NoError(t, b.SendEvent(WheelEvent{Rotation: 1, Point: image.Pt(50, 50)}))
	onUI(t, b, func(i *instance) {
		assert.Equal(t, 39, i.eng.Document().Root().ScrollPos().Y)
	})
}

func TestChangeObserver(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	got := make(chan BrowserID, 16)
	obs, err := NewChangeNotifier(func(id BrowserID) {
		select {
		case got <- id:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, b.AddChangeObserver(obs))
	require.NoError(t, b.SetHTML("<p>x</p>", ""))

	select {
	case id := <-got:
		assert.Equal(t, b.ID(), id)
	case <-time.After(waitFor):
		t.Fatal("no change notification")
	}

	require.NoError(t, ReleaseChangeNotifier(obs))
	assert.ErrorIs(t, ReleaseChangeNotifier(obs), ErrNotFound)
	assert.ErrorIs(t, b.AddChangeObserver(obs), ErrNotFound)
}

type recordingTarget struct {
	uploads int
	width   int
	height  int
	bytes   int
}

func (r *recordingTarget) SubImage(w, h int, bgr []byte) error {
	r.uploads++
	r.width, r.height, r.bytes = w, h, len(bgr)
	return nil
}

func TestLoadDisplayIntoTexture(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML("<p>x</p>", ""))
	waitCaptured(t, b)

	// Frame hands out copies.
	f := b.Frame()
	require.NotNil(t, f)
	f.Pix[0] ^= 0xFF
	g := b.Frame()
	assert.NotSame(t, f, g)
	assert.NotEqual(t, f.Pix[0], g.Pix[0])

	target := &recordingTarget{}
	ok, err := b.LoadDisplayIntoTexture(target)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, target.uploads)
	assert.Equal(t, 320*240*3, target.bytes)

	ok, err = b.LoadDisplayIntoTexture(target)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, b.Frame())

	_, err = b.LoadDisplayIntoTexture(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestReleasedBrowser(t *testing.T) {
	p := startPump(t, nil)
	b := newReadyBrowser(t, p)
	require.NoError(t, b.Release())
	require.Eventually(t, func() bool { return b.State() == StateClosed }, waitFor, time.Millisecond)
	assert.ErrorIs(t, b.SetHTML("<p>x</p>", ""), ErrClosed)
	assert.NoError(t, b.Release())
	_, ok := lookupResolver(uint64(b.ID()))
	assert.False(t, ok)
}

func TestEmbedCapturesPeriodically(t *testing.T) {
	b := newReadyBrowser(t, startPump(t, nil))
	require.NoError(t, b.SetHTML(`<embed src="movie.swf">`, ""))
	waitCaptured(t, b)
	first := b.UpdateTime()
	require.Eventually(t, func() bool { return b.UpdateTime() > first }, waitFor, time.Millisecond)
}

// lateEngine delivers view changes on the next Pump, the way the native
// bridge reports them, and counts renders.
type lateEngine struct {
	engine.Engine
	h       *lateHandler
	renders atomic.Int32
}

type lateHandler struct {
	engine.Handler
	pending atomic.Bool
}

func (h *lateHandler) ViewChanged() { h.pending.Store(true) }

func (e *lateEngine) Pump() {
	e.Engine.Pump()
	if e.h.pending.Swap(false) {
		e.h.Handler.ViewChanged()
	}
}

func (e *lateEngine) Render(dst *image.RGBA) error {
	e.renders.Add(1)
	return e.Engine.Render(dst)
}

func lateFactory(created chan<- *lateEngine) engine.Factory {
	soft := softengine.Factory(nil)
	return func(cfg engine.Config) (engine.Engine, error) {
		h := &lateHandler{Handler: cfg.Handler}
		cfg.Handler = h
		eng, err := soft(cfg)
		if err != nil {
			return nil, err
		}
		le := &lateEngine{Engine: eng, h: h}
		created <- le
		return le, nil
	}
}

func TestStaticPageStopsCapturing(t *testing.T) {
	created := make(chan *lateEngine, 1)
	opts := testOptions()
	opts.Engine = lateFactory(created)
	b := newReadyBrowser(t, startPump(t, opts))
	eng := <-created

	require.NoError(t, b.SetHTML(`<p>static</p>`, ""))
	waitCaptured(t, b)
	require.Eventually(t, func() bool { return b.ContentSize().X > 0 }, waitFor, time.Millisecond)

	// Let the deferred changes from measuring settle, then expect silence.
	time.Sleep(50 * time.Millisecond)
	before := eng.renders.Load()
	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, eng.renders.Load()-before, int32(1))

	// A new minimum size measures again, once.
	require.NoError(t, b.SetMinContentSize(500, 0))
	require.Eventually(t, func() bool { return b.ContentSize().X >= 500 }, waitFor, time.Millisecond)
	assert.Equal(t, image.Pt(500, 100), b.MinContentSize())
	time.Sleep(50 * time.Millisecond)
	before = eng.renders.Load()
	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, eng.renders.Load()-before, int32(1))
}
