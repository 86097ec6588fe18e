// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
)

// ContentSource holds an HTML document encoded as UTF-16 little-endian with a
// leading byte order mark. Every Reader call starts from the beginning.
type ContentSource struct {
	data []byte
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// NewContentSource encodes html for loading into an engine.
func NewContentSource(html string) (*ContentSource, error) {
	b, err := utf16LE.NewEncoder().Bytes([]byte(html))
	if err != nil {
		return nil, fmt.Errorf("%w: encoding content: %v", ErrInvalidArgument, err)
	}
	return &ContentSource{data: b}, nil
}

// Reader returns a fresh reader over the encoded bytes.
func (c *ContentSource) Reader() io.Reader {
	return bytes.NewReader(c.data)
}

// Len is the encoded length in bytes, including the byte order mark.
func (c *ContentSource) Len() int { return len(c.data) }
