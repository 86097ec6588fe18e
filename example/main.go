// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/YindSoft/webtexture"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth  = 800
	screenHeight = 600
	mainWidth    = 600
	sidebarWidth = 200
)

const mainPage = `<!DOCTYPE html>
<html><head><title>webtexture demo</title>
<style>
body { background-color: #202830; color: #e0e0e0 }
h1 { color: #80c0ff }
.note { color: #a0a0a0 }
</style></head>
<body>
<h1>webtexture</h1>
<p>This page is rendered offscreen and uploaded into an ebiten image.</p>
<p><a href="https://example.com/">example.com</a> <a href="about:blank">blank page</a></p>
<p class="note">Ctrl+Backspace goes back, Ctrl+Shift+Backspace goes forward.</p>
<input value="type here">
</body></html>`

const sidebarPage = `<body style="background-color:#303840;color:#ffffff">
<p>Sidebar</p><p>Links are outlined by the host using the link metadata.</p>
</body>`

type Game struct {
	pump    *webtexture.Pump
	main    *webtexture.Browser
	sidebar *webtexture.Browser

	mainTex    *webtexture.EbitenTexture
	sidebarTex *webtexture.EbitenTexture
	mainInput  webtexture.InputPoller
	sideInput  webtexture.InputPoller
}

func newGame(ctx context.Context, opts *webtexture.Options) (*Game, error) {
	opts.FrameWidth, opts.FrameHeight = mainWidth, screenHeight
	pump, err := webtexture.NewPump(opts)
	if err != nil {
		return nil, fmt.Errorf("pump: %w", err)
	}
	go func() {
		if err := pump.Run(ctx); err != nil {
			log.Printf("pump stopped: %v", err)
		}
	}()

	g := &Game{
		pump:       pump,
		mainTex:    webtexture.NewEbitenTexture(mainWidth, screenHeight),
		sidebarTex: webtexture.NewEbitenTexture(sidebarWidth, screenHeight),
		mainInput:  webtexture.InputPoller{Bounds: image.Rect(0, 0, mainWidth, screenHeight)},
		sideInput:  webtexture.InputPoller{Bounds: image.Rect(mainWidth, 0, screenWidth, screenHeight)},
	}
	if g.main, err = pump.NewBrowser(ctx); err != nil {
		return nil, fmt.Errorf("main browser: %w", err)
	}
	if g.sidebar, err = pump.NewBrowser(ctx); err != nil {
		return nil, fmt.Errorf("sidebar browser: %w", err)
	}
	if err := g.sidebar.SetFrameSize(sidebarWidth, screenHeight); err != nil {
		return nil, err
	}
	if err := g.main.SetHTML(mainPage, ""); err != nil {
		return nil, err
	}
	if err := g.sidebar.SetHTML(sidebarPage, ""); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Update() error {
	if err := g.mainInput.Poll(g.main); err != nil {
		return err
	}
	if err := g.sideInput.Poll(g.sidebar); err != nil {
		return err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			return g.main.GoForward()
		}
		return g.main.GoBack()
	}
	if _, err := g.main.LoadDisplayIntoTexture(g.mainTex); err != nil {
		return err
	}
	if _, err := g.sidebar.LoadDisplayIntoTexture(g.sidebarTex); err != nil {
		return err
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{30, 30, 40, 255})
	screen.DrawImage(g.mainTex.Image, nil)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(mainWidth, 0)
	screen.DrawImage(g.sidebarTex.Image, op)

	// Link rectangles have a bottom-left origin.
	for _, l := range g.main.Links() {
		for _, r := range l.Rects {
			y := float32(screenHeight - r.Max.Y)
			vector.StrokeRect(screen, float32(r.Min.X), y, float32(r.Dx()), float32(r.Dy()), 1, color.RGBA{255, 200, 0, 255}, false)
		}
	}

	size := g.main.ContentSize()
	url, ok := g.main.ContentURL()
	if !ok {
		url = "(in-memory content)"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  content %dx%d  %s", ebiten.ActualFPS(), size.X, size.Y, url))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) Close() {
	_ = g.pump.Shutdown()
	<-g.pump.Done()
	g.pump.Release()
}

func main() {
	config := flag.String("config", "", "TOML options file")
	flag.Parse()

	logFile, err := os.Create("logs.log")
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	opts := &webtexture.Options{}
	if *config != "" {
		if opts, err = webtexture.LoadOptions(*config); err != nil {
			log.Fatalf("options: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	game, err := newGame(ctx, opts)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer game.Close()

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("webtexture - Ebiten demo")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("run: %v", err)
	}
}
