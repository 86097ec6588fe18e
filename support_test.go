// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/YindSoft/webtexture/engine"
	"github.com/YindSoft/webtexture/softengine"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentSource(t *testing.T) {
	src, err := NewContentSource("<p>é</p>")
	require.NoError(t, err)
	assert.Equal(t, 2+2*8, src.Len())

	first, err := io.ReadAll(src.Reader())
	require.NoError(t, err)
	second, err := io.ReadAll(src.Reader())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, []byte{0xFF, 0xFE, '<', 0}, first[:4])
	assert.Equal(t, []byte{0xE9, 0}, first[8:10])
}

func TestCallbackQueue(t *testing.T) {
	q := NewCallbackQueue()
	n := 0
	assert.True(t, q.Post(func() { n++ }))
	assert.True(t, q.Post(func() { n++ }))
	assert.Equal(t, 2, q.Drain())
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, q.Drain())

	err := q.call(10*time.Millisecond, func() {})
	assert.ErrorIs(t, err, ErrTransient)

	q.Close()
	assert.False(t, q.Post(func() {}))
	assert.ErrorIs(t, q.call(time.Second, func() {}), ErrClosed)
	assert.NoError(t, q.Run(context.Background()))
}

func TestCallbackQueueRun(t *testing.T) {
	q := NewCallbackQueue()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- q.Run(ctx) }()

	var got string
	require.NoError(t, q.call(waitFor, func() { got = "ran" }))
	assert.Equal(t, "ran", got)

	cancel()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
	}
}

func TestHostResolverTimeout(t *testing.T) {
	h := &hostResolver{
		r:       ResolverFunc(func(string) (string, bool) { return "file:/x", true }),
		queue:   NewCallbackQueue(),
		timeout: 10 * time.Millisecond,
		log:     quietLogger(),
	}
	u, ok := h.Resolve("x")
	assert.False(t, ok)
	assert.Empty(t, u)

	h.queue.Drain()
	go func() {
		for h.queue.Drain() == 0 {
			time.Sleep(time.Millisecond)
		}
	}()
	h.timeout = waitFor
	u, ok = h.Resolve("x")
	assert.True(t, ok)
	assert.Equal(t, "file:/x", u)
}

func TestFSResolver(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0}
	r := NewFSResolver(fstest.MapFS{
		"css/site.css": {Data: []byte("body{}")},
		"img/logo":     {Data: png},
		"raw.bin7":     {Data: []byte{1, 2, 3}},
	})

	u, ok := r.Resolve("css/site.css?v=2#top")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(u, "data:text/css;charset=utf-8;base64,"), u)
	payload := u[strings.Index(u, "base64,")+len("base64,"):]
	data, err := base64.StdEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))

	u, ok = r.Resolve("/img/./logo")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(u, "data:image/png;base64,"), u)

	u, ok = r.Resolve("raw.bin7")
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(u, "data:application/octet-stream;base64,"), u)

	_, ok = r.Resolve("missing.css")
	assert.False(t, ok)
	_, ok = r.Resolve("/")
	assert.False(t, ok)
}

func TestLoadOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webtexture.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug = true
scheme = "app"
tick_interval = "10ms"
resolve_timeout = "1s"
frame_width = 640
frame_height = 480
disable_embed_capture = true
`), 0o644))
	opts, err := LoadOptions(path)
	require.NoError(t, err)
	assert.True(t, opts.Debug)
	assert.Equal(t, "app", opts.Scheme)
	assert.Equal(t, 10*time.Millisecond, opts.TickInterval.Std())
	assert.Equal(t, time.Second, opts.ResolveTimeout.Std())
	assert.Equal(t, 640, opts.FrameWidth)
	assert.Equal(t, 480, opts.FrameHeight)
	assert.True(t, opts.DisableEmbedCapture)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`tick_interval = "soon"`), 0o644))
	_, err = LoadOptions(bad)
	assert.Error(t, err)

	_, err = LoadOptions(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestOptionDefaults(t *testing.T) {
	o := (&Options{Engine: softengine.Factory(nil), BaseDir: "."}).withDefaults()
	assert.Equal(t, "webtexture", o.Scheme)
	assert.Equal(t, 30*time.Millisecond, o.TickInterval.Std())
	assert.Equal(t, 100*time.Millisecond, o.ScrollRepeat.Std())
	assert.Equal(t, 2*time.Second, o.ResolveTimeout.Std())
	assert.Equal(t, 800, o.FrameWidth)
	assert.Equal(t, 600, o.FrameHeight)
	assert.Equal(t, 300, o.MinContentWidth)
	assert.Equal(t, 100, o.MinContentHeight)
	assert.NotNil(t, o.Logger)
}

func TestMissingBridgeFallsBackLoudly(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	factory := defaultEngine(t.TempDir(), false, log)
	require.NotNil(t, factory)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "soft engine")

	eng, err := factory(engine.Config{Width: 10, Height: 10})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })
	assert.IsType(t, &softengine.Engine{}, eng)
}

func TestSavedHistory(t *testing.T) {
	a, b := engine.Entry{URL: "a"}, engine.Entry{URL: "b"}
	assert.Equal(t, []engine.Entry{a, b, a}, savedHistory([]engine.Entry{a, a, b, a}, "", ""))
	assert.Equal(t, []engine.Entry{{URL: "cur", Title: "T"}}, savedHistory(nil, "cur", "T"))
	assert.Empty(t, savedHistory(nil, "", ""))
}

func TestFlipY(t *testing.T) {
	assert.Equal(t, image.Rect(8, 219, 15, 232), flipY(image.Rect(8, 8, 15, 21), 240))
}

func TestBGRAndCaretInversion(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetRGBA(1, 1, color.RGBA{R: 255, A: 255})

	bgr := toBGR(img)
	require.Len(t, bgr, 12)
	assert.Equal(t, []byte{30, 20, 10}, bgr[0:3])
	assert.Equal(t, []byte{0, 0, 255}, bgr[9:12])

	invert(img, image.Rect(1, 1, 5, 5))
	assert.Equal(t, color.RGBA{R: 0, G: 255, B: 255, A: 255}, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.RGBAAt(0, 0))
}

func TestUpdateTimeIncreases(t *testing.T) {
	prev := nextUpdateTime()
	for k := 0; k < 100; k++ {
		next := nextUpdateTime()
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestButtonMessage(t *testing.T) {
	assert.Equal(t, engine.MsgRButtonDown, buttonMessage(MouseDown, ButtonRight))
	assert.Equal(t, engine.MsgMButtonUp, buttonMessage(MouseUp, ButtonMiddle))
	assert.Equal(t, engine.MsgLButtonDbl, buttonMessage(MouseDoubleClick, 0))
	assert.Equal(t, engine.MsgMouseMove, buttonMessage(MouseDrag, ButtonLeft))
	assert.Equal(t, engine.MKLButton|engine.MKShift, nativeKeys(ButtonLeft|MaskShift))
}
