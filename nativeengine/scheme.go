// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package nativeengine

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf16"
	"unsafe"

	"github.com/YindSoft/webtexture/engine"
	"github.com/ebitengine/purego"
)

// Scheme callback results.
const (
	schemeOK          = 0
	schemeBufferSmall = 1
	schemeFailed      = 2
)

var (
	schemeOnce sync.Once
	schemeErr  error
	schemes    engine.SchemeHandler
)

// registerScheme installs the reserved scheme in the bridge once per
// process. The bridge calls back for every URL in that scheme.
func registerScheme(h engine.SchemeHandler) error {
	schemeOnce.Do(func() {
		schemes = h
		name, ok := schemeName(h)
		if !ok {
			schemeErr = fmt.Errorf("nativeengine: scheme handler has no name")
			return
		}
		parse := purego.NewCallback(parseCallback)
		combine := purego.NewCallback(combineCallback)
		if rc := wtRegisterScheme(name, parse, combine); rc != 0 {
			schemeErr = fmt.Errorf("nativeengine: wt_register_scheme failed with code %d", rc)
		}
	})
	return schemeErr
}

func schemeName(h engine.SchemeHandler) (string, bool) {
	if n, ok := h.(interface{ Scheme() string }); ok {
		return n.Scheme(), true
	}
	return "", false
}

// parseCallback maps a reserved URL for the bridge. need receives the
// buffer length in UTF-16 units including the terminator.
func parseCallback(rawURL, out uintptr, outLen int32, need uintptr) int32 {
	resolved, err := schemes.Parse(cString(rawURL))
	if err != nil {
		return schemeFailed
	}
	return writeUTF16(resolved, out, outLen, need)
}

func combineCallback(base, rel, out uintptr, outLen int32, need uintptr) int32 {
	combined, err := schemes.Combine(cString(base), cString(rel))
	if err != nil {
		return schemeFailed
	}
	return writeUTF16(combined, out, outLen, need)
}

func writeUTF16(s string, out uintptr, outLen int32, need uintptr) int32 {
	units, err := encodeUTF16(s, unsafe.Slice((*uint16)(unsafe.Pointer(out)), int(outLen)))
	if need != 0 {
		*(*int32)(unsafe.Pointer(need)) = int32(units)
	}
	if errors.Is(err, errBufferSmall) {
		return schemeBufferSmall
	}
	return schemeOK
}

var errBufferSmall = errors.New("nativeengine: buffer too small")

// encodeUTF16 writes s as NUL-terminated UTF-16 into dst and returns the
// units required.
func encodeUTF16(s string, dst []uint16) (int, error) {
	units := utf16.Encode([]rune(strings.ToValidUTF8(s, "\uFFFD")))
	need := len(units) + 1
	if len(dst) < need {
		return need, errBufferSmall
	}
	copy(dst, units)
	dst[len(units)] = 0
	return need, nil
}
