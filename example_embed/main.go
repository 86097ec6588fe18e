// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Example of SetHTMLWithResolver: the page and everything it references come
// from an embed.FS (no files on disk). Callbacks run on the game loop.
package main

import (
	"context"
	"embed"
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"

	"github.com/YindSoft/webtexture"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/sirupsen/logrus"
)

//go:embed ui
var uiFiles embed.FS

const (
	screenWidth  = 800
	screenHeight = 600
)

type Game struct {
	pump      *webtexture.Pump
	callbacks *webtexture.CallbackQueue
	browser   *webtexture.Browser
	observer  webtexture.ObserverID
	tex       *webtexture.EbitenTexture
	input     webtexture.InputPoller
	frames    int
}

func newGame(ctx context.Context) (*Game, error) {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	g := &Game{
		callbacks: webtexture.NewCallbackQueue(),
		tex:       webtexture.NewEbitenTexture(screenWidth, screenHeight),
		input:     webtexture.InputPoller{Bounds: image.Rect(0, 0, screenWidth, screenHeight)},
	}
	pump, err := webtexture.NewPump(&webtexture.Options{
		FrameWidth:  screenWidth,
		FrameHeight: screenHeight,
		Logger:      log,
		Callbacks:   g.callbacks,
	})
	if err != nil {
		return nil, fmt.Errorf("pump: %w", err)
	}
	g.pump = pump
	go func() {
		if err := pump.Run(ctx); err != nil {
			log.WithError(err).Warn("pump stopped")
		}
	}()

	if g.browser, err = pump.NewBrowser(ctx); err != nil {
		return nil, fmt.Errorf("browser: %w", err)
	}
	if g.observer, err = webtexture.NewChangeNotifier(func(webtexture.BrowserID) { g.frames++ }); err != nil {
		return nil, err
	}
	if err := g.browser.AddChangeObserver(g.observer); err != nil {
		return nil, err
	}

	sub, err := fs.Sub(uiFiles, "ui")
	if err != nil {
		return nil, err
	}
	page, err := fs.ReadFile(sub, "index.html")
	if err != nil {
		return nil, fmt.Errorf("reading index.html: %w", err)
	}
	if err := g.browser.SetHTMLWithResolver(string(page), webtexture.NewFSResolver(sub)); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) Update() error {
	g.callbacks.Drain()
	if err := g.input.Poll(g.browser); err != nil {
		return err
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		if err := g.browser.GoBack(); err != nil {
			return err
		}
	}
	_, err := g.browser.LoadDisplayIntoTexture(g.tex)
	return err
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.tex.Image, nil)
	ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  frames: %d  links: %d  %s",
		ebiten.ActualFPS(), g.frames, len(g.browser.Links()), g.browser.Title()))
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) Close() {
	_ = webtexture.ReleaseChangeNotifier(g.observer)
	_ = g.pump.Shutdown()
	<-g.pump.Done()
	g.pump.Release()
	g.callbacks.Close()
}

func main() {
	logFile, err := os.Create("logs.log")
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	game, err := newGame(ctx)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer game.Close()

	ebiten.SetVsyncEnabled(false)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("webtexture - embed.FS example")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("run: %v", err)
	}
}
