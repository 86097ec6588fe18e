// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/net/html/charset"
)

const maxDocumentSize = 8 << 20

type fetchResult struct {
	url         string
	contentType string
	data        []byte
	err         error
}

// fetch loads raw. It runs off the UI thread.
func (e *Engine) fetch(raw string) fetchResult {
	if s := e.cfg.Schemes; s != nil && s.Handles(raw) {
		resolved, err := s.Parse(raw)
		if err != nil {
			return fetchResult{url: raw, err: err}
		}
		if s.Handles(resolved) {
			return fetchResult{url: raw, err: fmt.Errorf("softengine: %q resolves to itself", raw)}
		}
		res := e.fetchURL(resolved)
		res.url = raw
		return res
	}
	return e.fetchURL(raw)
}

func (e *Engine) fetchURL(raw string) fetchResult {
	res := fetchResult{url: raw}
	u, err := url.Parse(raw)
	if err != nil {
		res.err = fmt.Errorf("softengine: parse %q: %w", raw, err)
		return res
	}
	switch strings.ToLower(u.Scheme) {
	case "about":
		res.contentType = "text/html; charset=utf-8"
	case "data":
		res.contentType, res.data, res.err = decodeDataURL(raw)
	case "file":
		res.data, res.err = os.ReadFile(filePath(u))
	case "http", "https":
		resp, err := e.client.Get(raw)
		if err != nil {
			res.err = err
			return res
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 400 {
			res.err = fmt.Errorf("softengine: %s: %s", raw, resp.Status)
			return res
		}
		res.contentType = resp.Header.Get("Content-Type")
		res.data, res.err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	default:
		res.err = fmt.Errorf("softengine: unsupported scheme %q", u.Scheme)
	}
	return res
}

func filePath(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	if runtime.GOOS == "windows" && len(p) > 2 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

// decodeDataURL decodes data:[<mediatype>][;base64],<data>.
func decodeDataURL(raw string) (string, []byte, error) {
	body := raw[len("data:"):]
	meta, payload, ok := strings.Cut(body, ",")
	if !ok {
		return "", nil, fmt.Errorf("softengine: malformed data URL")
	}
	isBase64 := false
	if strings.HasSuffix(strings.ToLower(meta), ";base64") {
		isBase64 = true
		meta = meta[:len(meta)-len(";base64")]
	}
	if meta == "" {
		meta = "text/plain;charset=US-ASCII"
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("softengine: data URL: %w", err)
		}
		return meta, data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("softengine: data URL: %w", err)
	}
	return meta, []byte(s), nil
}

// decodeHTML converts raw bytes to UTF-8 text, detecting byte-order marks,
// <meta charset> declarations and the Content-Type parameter.
func decodeHTML(data []byte, contentType string) []byte {
	if len(data) == 0 {
		return nil
	}
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		out = data
	}
	return bytes.TrimPrefix(out, []byte("\ufeff"))
}
