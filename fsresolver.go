// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package webtexture

import (
	"encoding/base64"
	"io/fs"
	"mime"
	"path"
	"strings"

	"github.com/h2non/filetype"
)

// FSResolver is a Resolver serving files from an fs.FS as data URLs, so
// content set with SetHTMLWithResolver can reference stylesheets and images
// embedded in the host binary.
//
// Example with embed.FS:
//
//	//go:embed ui
//	var uiFiles embed.FS
//	sub, _ := fs.Sub(uiFiles, "ui")
//	b.SetHTMLWithResolver(page, webtexture.NewFSResolver(sub))
type FSResolver struct {
	fsys fs.FS
}

func NewFSResolver(fsys fs.FS) *FSResolver {
	return &FSResolver{fsys: fsys}
}

// Resolve returns a data URL for ref. Query strings and fragments are
// ignored. Missing files have no target.
func (r *FSResolver) Resolve(ref string) (string, bool) {
	name := ref
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	norm := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	norm = strings.TrimLeft(norm, "/")
	if norm == "" || norm == "." {
		return "", false
	}
	data, err := fs.ReadFile(r.fsys, norm)
	if err != nil {
		return "", false
	}
	return "data:" + contentType(norm, data) + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

func contentType(name string, data []byte) string {
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return strings.ReplaceAll(t, " ", "")
	}
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return "application/octet-stream"
}
