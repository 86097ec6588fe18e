// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"errors"

	"github.com/YindSoft/webtexture/engine"
)

var (
	ErrInvalidArgument = errors.New("webtexture: invalid argument")
	ErrOutOfMemory     = errors.New("webtexture: out of memory")
	ErrUnavailable     = errors.New("webtexture: resource unavailable")
	ErrFatal           = errors.New("webtexture: fatal message pump error")
	ErrTransient       = errors.New("webtexture: transient failure")
	ErrNotFound        = errors.New("webtexture: not found")
	ErrClosed          = errors.New("webtexture: closed")
)

// Status is the result code of a synchronous operation.
type Status int

const (
	StatusOK Status = iota
	StatusInvalidArgument
	StatusOutOfMemory
	StatusUnavailable
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidArgument:
		return "invalid argument"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusUnavailable:
		return "unavailable"
	case StatusFatal:
		return "fatal"
	}
	return "unknown"
}

// StatusOf maps an error returned by this package to a Status.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrInvalidArgument):
		return StatusInvalidArgument
	case errors.Is(err, ErrOutOfMemory):
		return StatusOutOfMemory
	case errors.Is(err, ErrFatal):
		return StatusFatal
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrClosed),
		errors.Is(err, ErrNotFound), errors.Is(err, ErrTransient),
		errors.Is(err, engine.ErrNoEntry), errors.Is(err, engine.ErrBaseURLRejected):
		return StatusUnavailable
	}
	return StatusFatal
}
