// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

//go:build linux || darwin

package nativeengine

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

func doInitBridge(baseDir string) error {
	absPath := libPath(baseDir)
	handle, err := purego.Dlopen(absPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("failed to load %s from %s: %w", LibraryName(), absPath, err)
	}
	return resolveAllSymbols(handle)
}

func getSymbolAddr(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

// LibraryName is the file name of the bridge library on this platform.
func LibraryName() string {
	if runtime.GOOS == "darwin" {
		return "libwt_bridge.dylib"
	}
	return "libwt_bridge.so"
}
