// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

// Package urlscheme implements the reserved URL scheme
// <scheme>://<instanceId>/<path> that funnels relative references of locally
// sourced HTML through the owning browser's resolver.
//
// Paths are opaque: "." and ".." segments are never collapsed, since a
// resolver may give them meaning.
package urlscheme

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
)

var (
	// ErrBufferTooSmall is returned by ParseInto when dst cannot hold the result.
	ErrBufferTooSmall = errors.New("urlscheme: buffer too small")
	// ErrNotHandled is returned for URLs of another scheme.
	ErrNotHandled = errors.New("urlscheme: not handled")
	// ErrDefault means the caller should fall back to default handling.
	ErrDefault = errors.New("urlscheme: use default handling")
	// ErrMalformed is returned when the authority is not a numeric instance id.
	ErrMalformed = errors.New("urlscheme: malformed URL")
)

// Resolver resolves an opaque path to a fully qualified URL.
type Resolver interface {
	Resolve(path string) (string, bool)
}

// Lookup returns the resolver of the instance with the given id. ok is false
// when no instance or no resolver exists.
type Lookup func(id uint64) (r Resolver, ok bool)

// Handler parses and combines URLs of one reserved scheme.
type Handler struct {
	scheme string
	prefix string
	lookup Lookup
}

// New returns a handler for scheme. lookup may be nil.
func New(scheme string, lookup Lookup) *Handler {
	scheme = strings.ToLower(scheme)
	return &Handler{scheme: scheme, prefix: scheme + "://", lookup: lookup}
}

// Scheme returns the scheme name.
func (h *Handler) Scheme() string { return h.scheme }

// BaseURL returns the synthetic base URL of instance id.
func (h *Handler) BaseURL(id uint64) string {
	return h.prefix + strconv.FormatUint(id, 10) + "/"
}

// Handles reports whether raw uses the reserved scheme.
func (h *Handler) Handles(raw string) bool {
	return len(raw) >= len(h.prefix) && strings.EqualFold(raw[:len(h.prefix)], h.prefix)
}

// Split extracts the instance id and opaque path.
func (h *Handler) Split(raw string) (uint64, string, error) {
	if !h.Handles(raw) {
		return 0, "", ErrNotHandled
	}
	rest := raw[len(h.prefix):]
	authority, path, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseUint(authority, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: authority %q", ErrMalformed, authority)
	}
	return id, path, nil
}

// Parse maps raw to the URL the engine should load: the resolver's answer,
// or about:<path> when there is none.
func (h *Handler) Parse(raw string) (string, error) {
	id, path, err := h.Split(raw)
	if err != nil {
		return "", err
	}
	if h.lookup != nil {
		if r, ok := h.lookup(id); ok && r != nil {
			if resolved, ok := r.Resolve(path); ok && resolved != "" {
				return resolved, nil
			}
		}
	}
	return "about:" + path, nil
}

// ParseInto writes the parsed URL into dst as a NUL-terminated UTF-16
// string. It returns the number of units required including the terminator;
// when dst is shorter, nothing is written and ErrBufferTooSmall is returned.
func (h *Handler) ParseInto(raw string, dst []uint16) (int, error) {
	s, err := h.Parse(raw)
	if err != nil {
		return 0, err
	}
	units := utf16.Encode([]rune(s))
	need := len(units) + 1
	if len(dst) < need {
		return need, ErrBufferTooSmall
	}
	copy(dst, units)
	dst[len(units)] = 0
	return need, nil
}

// Combine combines base and rel. References against the reserved scheme are
// joined without dot-segment removal or re-encoding; other bases use generic
// RFC 3986 resolution.
func (h *Handler) Combine(base, rel string) (string, error) {
	if r, err := url.Parse(rel); err == nil && r.IsAbs() {
		return rel, nil
	}
	if !h.Handles(base) {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("combine %q: %w", base, err)
		}
		r, err := url.Parse(rel)
		if err != nil {
			return "", fmt.Errorf("combine %q: %w", rel, err)
		}
		return b.ResolveReference(r).String(), nil
	}
	id, path, err := h.Split(base)
	if err != nil {
		return "", err
	}
	root := h.BaseURL(id)
	switch {
	case rel == "":
		return base, nil
	case strings.HasPrefix(rel, "/"):
		return root + strings.TrimPrefix(rel, "/"), nil
	case strings.HasPrefix(rel, "?"), strings.HasPrefix(rel, "#"):
		cut := strings.IndexAny(path, "?#")
		if cut >= 0 {
			path = path[:cut]
		}
		return root + path + rel, nil
	}
	dir := path
	if i := strings.LastIndex(dir, "/"); i >= 0 {
		dir = dir[:i+1]
	} else {
		dir = ""
	}
	return root + dir + rel, nil
}

// Compare defers to default handling.
func (h *Handler) Compare(a, b string) error { return ErrDefault }

// QueryInfo defers to default handling.
func (h *Handler) QueryInfo(raw string) error { return ErrDefault }
