// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package webtexture runs offscreen HTML browser instances on a dedicated UI
// thread and exposes their rendering as texture uploads, plus the link and
// content-size metadata a host needs to overlay interaction on the texture.
//
// Basic usage:
//
//	pump, err := webtexture.NewPump(nil)
//	if err != nil { ... }
//	go pump.Run(ctx)
//	defer pump.Release()
//
//	b, err := pump.NewBrowser(ctx)
//	if err != nil { ... }
//	b.SetHTML("<html><body><a href='x'>t</a></body></html>", "about:blank")
//
//	// In the host frame loop:
//	tex := webtexture.NewEbitenTexture(800, 600)
//	if ok, _ := b.LoadDisplayIntoTexture(tex); ok { screen.DrawImage(tex.Image, nil) }
//	for _, l := range b.Links() { ... } // rectangles have a bottom-left origin
//
// Content loaded with SetHTMLWithResolver gets the base URL
// <scheme>://<browserID>/ so every relative reference in it is resolved by
// the supplied Resolver. Resolver calls and change notifications run on a
// host-side CallbackQueue, never on the browser UI thread.
//
// Every Browser method posts a message to the UI thread and returns
// immediately, except NewBrowser which waits for the instance to exist. The
// getters (Links, ContentSize, UpdateTime, LoadDisplayIntoTexture) read state
// under per-instance mutexes and never wait for the UI thread.
//
// The engine comes from Options.Engine. By default the native browser bridge
// (see package nativeengine) is used when its library is found in
// Options.BaseDir, otherwise the pure Go softengine.
//
// A handle-based API (NewMessagePump, NewBrowserHandle, SetHTML, ...) mirrors
// the object API for hosts that manage numeric identifiers.
package webtexture
