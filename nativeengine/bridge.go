// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package nativeengine

import (
	"fmt"
	"path/filepath"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Window indices understood by the bridge. Plug-in children follow from
// windowChild upwards.
const (
	windowMain  = 0
	windowAux   = 1
	windowChild = 2
)

// Bridge return codes.
const (
	rcOK           = 0
	rcNoEntry      = 1
	rcBaseRejected = 2
	rcNoDocument   = 3
)

// Event kinds returned by wt_view_poll_event.
const (
	eventDocumentComplete = 1
	eventViewChanged      = 2
)

var (
	wtInit             func(baseDir string, debug int32) int32
	wtRegisterScheme   func(scheme string, parse, combine uintptr) int32
	wtMetrics          func(out uintptr)
	wtTick             func()
	wtCreateView       func(width, height int32) int32
	wtDestroyView      func(view int32)
	wtViewNavigate     func(view int32, url string) int32
	wtViewLoadStream   func(view int32, data uintptr, size int64, base string) int32
	wtViewResize       func(view int32, width, height int32) int32
	wtViewMove         func(view int32, x, y int32)
	wtViewFocus        func(view int32, active int32)
	wtViewPost         func(view, window int32, msg uint32, wparam, lparam uint64) int32
	wtViewTranslateKey func(view int32, msg uint32, wparam, lparam uint64) int32
	wtViewChildAt      func(view, x, y int32, out uintptr) int32
	wtViewWindowOrigin func(view, window int32, out uintptr) int32
	wtViewGetPixels    func(view int32) uintptr
	wtViewUnlockPixels func(view int32)
	wtViewGetRowBytes  func(view int32) uint32
	wtViewCaret        func(view int32, out uintptr) int32
	wtViewSnapshot     func(view int32, buf uintptr, size int32) int32
	wtViewElementAt    func(view, x, y int32) int32
	wtViewComponentAt  func(view, node, x, y int32) int32
	wtViewSetStyle     func(view, node int32, prop, value string) int32
	wtViewSetScroll    func(view, node, x, y int32) int32
	wtViewDoScroll     func(view, node, component int32) int32
	wtViewLocation     func(view int32, buf uintptr, size int32) int32
	wtViewTitle        func(view int32, buf uintptr, size int32) int32
	wtViewTravel       func(view int32, buf uintptr, size int32) int32
	wtViewTravelClear  func(view int32) int32
	wtViewTravelInsert func(view int32, url, title string) int32
	wtViewGoBack       func(view int32) int32
	wtViewGoForward    func(view int32) int32
	wtViewPollEvent    func(view int32, buf uintptr, size int32) int32
	wtDestroy          func()
)

var (
	bridgeOnce sync.Once
	initErr    error

	viewMu      sync.Mutex
	viewCount   int32
	initialized bool
	initDir     string
	initDebug   int32
)

// Load opens the bridge library in baseDir and initialises the engine. The
// library is opened once per process; later calls reuse the first result.
func Load(baseDir string, debug bool) error {
	bridgeOnce.Do(func() {
		initErr = doInitBridge(baseDir)
	})
	if initErr != nil {
		return fmt.Errorf("bridge: %w", initErr)
	}
	viewMu.Lock()
	defer viewMu.Unlock()
	initDir = baseDir
	initDebug = 0
	if debug {
		initDebug = 1
	}
	return ensureInit()
}

// ensureInit runs wt_init unless the engine is live. viewMu must be held.
func ensureInit() error {
	if initialized {
		return nil
	}
	if rc := wtInit(initDir, initDebug); rc != 0 {
		return fmt.Errorf("wt_init failed with code %d", rc)
	}
	initialized = true
	return nil
}

func libPath(baseDir string) string {
	p := filepath.Join(baseDir, LibraryName())
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func resolveAllSymbols(handle uintptr) error {
	for _, reg := range []struct {
		fptr interface{}
		name string
	}{
		{&wtInit, "wt_init"},
		{&wtRegisterScheme, "wt_register_scheme"},
		{&wtMetrics, "wt_metrics"},
		{&wtTick, "wt_tick"},
		{&wtCreateView, "wt_create_view"},
		{&wtDestroyView, "wt_destroy_view"},
		{&wtViewNavigate, "wt_view_navigate"},
		{&wtViewLoadStream, "wt_view_load_stream"},
		{&wtViewResize, "wt_view_resize"},
		{&wtViewMove, "wt_view_move"},
		{&wtViewFocus, "wt_view_focus"},
		{&wtViewPost, "wt_view_post"},
		{&wtViewTranslateKey, "wt_view_translate_accelerator"},
		{&wtViewChildAt, "wt_view_child_at"},
		{&wtViewWindowOrigin, "wt_view_window_origin"},
		{&wtViewGetPixels, "wt_view_get_pixels"},
		{&wtViewUnlockPixels, "wt_view_unlock_pixels"},
		{&wtViewGetRowBytes, "wt_view_get_row_bytes"},
		{&wtViewCaret, "wt_view_caret"},
		{&wtViewSnapshot, "wt_view_snapshot"},
		{&wtViewElementAt, "wt_view_element_at"},
		{&wtViewComponentAt, "wt_view_component_at"},
		{&wtViewSetStyle, "wt_view_set_style"},
		{&wtViewSetScroll, "wt_view_set_scroll"},
		{&wtViewDoScroll, "wt_view_do_scroll"},
		{&wtViewLocation, "wt_view_location"},
		{&wtViewTitle, "wt_view_title"},
		{&wtViewTravel, "wt_view_travel"},
		{&wtViewTravelClear, "wt_view_travel_clear"},
		{&wtViewTravelInsert, "wt_view_travel_insert"},
		{&wtViewGoBack, "wt_view_go_back"},
		{&wtViewGoForward, "wt_view_go_forward"},
		{&wtViewPollEvent, "wt_view_poll_event"},
		{&wtDestroy, "wt_destroy"},
	} {
		sym, err := getSymbolAddr(handle, reg.name)
		if err != nil {
			return fmt.Errorf("%s: %w (rebuild %s)", reg.name, err, LibraryName())
		}
		purego.RegisterFunc(reg.fptr, sym)
	}
	return nil
}

func registerView() error {
	viewMu.Lock()
	defer viewMu.Unlock()
	if initErr != nil || wtInit == nil {
		return fmt.Errorf("bridge not loaded")
	}
	if err := ensureInit(); err != nil {
		return err
	}
	viewCount++
	return nil
}

// unregisterView tears the engine down with the last view.
func unregisterView() {
	viewMu.Lock()
	defer viewMu.Unlock()
	viewCount--
	if viewCount <= 0 {
		viewCount = 0
		wtDestroy()
		initialized = false
	}
}

// readString calls a bridge getter that fills buf and returns the length it
// needs, growing buf once when the first attempt is too short.
func readString(get func(buf uintptr, size int32) int32) string {
	var small [2048]byte
	n := get(uintptr(unsafe.Pointer(&small[0])), int32(len(small)))
	if n <= 0 {
		return ""
	}
	if int(n) <= len(small) {
		return string(small[:n])
	}
	big := make([]byte, n)
	m := get(uintptr(unsafe.Pointer(&big[0])), n)
	if m <= 0 || m > n {
		return ""
	}
	return string(big[:m])
}

// cString reads a NUL-terminated string owned by the bridge.
func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(unsafe.Pointer(p)), n))
}
