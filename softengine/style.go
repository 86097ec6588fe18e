// Copyright (c) 2026 Javier Podavini (YindSoft)
// Licensed under the MIT License. See LICENSE file in the project root.

package softengine

import (
	"image/color"
	"sort"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/lucasb-eyer/go-colorful"
)

type selector struct {
	tag, id, class string
}

func (s selector) specificity() int {
	n := 0
	if s.id != "" {
		n += 100
	}
	if s.class != "" {
		n += 10
	}
	if s.tag != "" {
		n++
	}
	return n
}

func (s selector) matches(el *element) bool {
	if s.tag != "" && s.tag != "*" && s.tag != el.tag {
		return false
	}
	if s.id != "" && el.attrs["id"] != s.id {
		return false
	}
	if s.class != "" {
		found := false
		for _, c := range strings.Fields(el.attrs["class"]) {
			if c == s.class {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type rule struct {
	sel   selector
	decls map[string]string
	order int
}

// parseSelector accepts compound selectors of the form tag#id.class.
// Combinators and pseudo-classes are not supported.
func parseSelector(s string) (selector, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || strings.ContainsAny(s, " >+~:[") {
		return selector{}, false
	}
	var sel selector
	cur := &sel.tag
	start := 0
	for i := 0; i <= len(s); i++ {
		if i < len(s) && s[i] != '#' && s[i] != '.' {
			continue
		}
		*cur = s[start:i]
		if i < len(s) {
			if s[i] == '#' {
				cur = &sel.id
			} else {
				cur = &sel.class
			}
		}
		start = i + 1
	}
	return sel, true
}

func parseStylesheets(sources []string) []rule {
	var rules []rule
	for _, src := range sources {
		sheet, err := parser.Parse(src)
		if err != nil {
			continue
		}
		for _, r := range sheet.Rules {
			if r.Kind != css.QualifiedRule {
				continue
			}
			decls := declarations(r.Declarations)
			for _, s := range r.Selectors {
				if sel, ok := parseSelector(s); ok {
					rules = append(rules, rule{sel: sel, decls: decls, order: len(rules)})
				}
			}
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].sel.specificity() < rules[j].sel.specificity()
	})
	return rules
}

// parseDeclarations parses an inline style. douceur drops the value of a
// final declaration without a terminating semicolon.
func parseDeclarations(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]string{}
	}
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	decls, err := parser.ParseDeclarations(s)
	if err != nil {
		return nil
	}
	return declarations(decls)
}

func declarations(decls []*css.Declaration) map[string]string {
	out := make(map[string]string, len(decls))
	for _, d := range decls {
		prop := strings.ToLower(strings.TrimSpace(d.Property))
		val := strings.TrimSpace(d.Value)
		if prop == "background" {
			if _, ok := parseColor(val); ok || strings.EqualFold(val, "transparent") {
				prop = "background-color"
			}
		}
		out[prop] = val
	}
	return out
}

func (d *document) match(el *element) map[string]string {
	var out map[string]string
	for _, r := range d.rules {
		if !r.sel.matches(el) {
			continue
		}
		if out == nil {
			out = map[string]string{}
		}
		for k, v := range r.decls {
			out[k] = v
		}
	}
	return out
}

var blockTags = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "ul": true, "ol": true,
	"li": true, "pre": true, "blockquote": true, "form": true, "table": true,
	"tr": true, "section": true, "article": true, "header": true, "footer": true,
	"nav": true, "main": true, "aside": true, "dl": true, "dt": true, "dd": true,
	"hr": true, "center": true, "address": true, "figure": true,
}

var hiddenTags = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
	"link": true, "template": true, "noscript": true, "param": true,
}

func (el *element) specified(prop string) (string, bool) {
	for _, m := range []map[string]string{el.runtime, el.inline, el.sheet} {
		if v, ok := m[prop]; ok {
			return v, true
		}
	}
	return "", false
}

// CurrentStyle returns the cascaded value of prop. Inherited properties
// without a declaration report "inherit".
func (el *element) CurrentStyle(prop string) string {
	prop = strings.ToLower(prop)
	if v, ok := el.specified(prop); ok {
		return strings.ToLower(v)
	}
	switch prop {
	case "display":
		switch {
		case el.tag == "#text":
			return "inline"
		case hiddenTags[el.tag]:
			return "none"
		case el.tag == "li":
			return "list-item"
		case blockTags[el.tag]:
			return "block"
		}
		return "inline"
	case "visibility", "color":
		if prop == "color" && el.tag == "a" {
			if _, ok := el.attrs["href"]; ok {
				return "#0000ee"
			}
		}
		return "inherit"
	case "overflow":
		return "visible"
	case "background-color":
		return "transparent"
	}
	return ""
}

func (el *element) display() string {
	switch d := el.CurrentStyle("display"); d {
	case "none", "inline", "inline-block":
		return d
	case "":
		return "inline"
	}
	return "block"
}

// visible resolves the visibility property through inheritance.
func (el *element) visible() bool {
	for n := el; n != nil; n = n.parent {
		switch n.CurrentStyle("visibility") {
		case "hidden", "collapse":
			return false
		case "visible":
			return true
		}
	}
	return true
}

func (el *element) textColor() color.RGBA {
	for n := el; n != nil; n = n.parent {
		if v := n.CurrentStyle("color"); v != "inherit" && v != "" {
			if c, ok := parseColor(v); ok {
				return c
			}
		}
	}
	return color.RGBA{A: 0xff}
}

func (el *element) background() (color.RGBA, bool) {
	v, ok := el.specified("background-color")
	if !ok {
		return color.RGBA{}, false
	}
	return parseColor(v)
}

func (el *element) px(prop string) (int, bool) {
	v, ok := el.specified(prop)
	if !ok {
		if a, ok := el.attrs[prop]; ok && (prop == "width" || prop == "height") {
			v = a
		} else {
			return 0, false
		}
	}
	return parsePx(v)
}

func parsePx(v string) (int, bool) {
	v = strings.TrimSuffix(strings.TrimSpace(strings.ToLower(v)), "px")
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return int(f + 0.5), true
}

// margins returns top, right, bottom, left margins.
func (el *element) margins() (int, int, int, int) {
	if m, ok := el.px("margin"); ok {
		return m, m, m, m
	}
	switch el.tag {
	case "body":
		return 8, 8, 8, 8
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre", "dl":
		return 6, 0, 6, 0
	case "ul", "ol":
		return 6, 0, 6, 40
	case "blockquote":
		return 6, 40, 6, 40
	}
	return 0, 0, 0, 0
}

var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"red":     {0xff, 0, 0, 0xff},
	"lime":    {0, 0xff, 0, 0xff},
	"green":   {0, 0x80, 0, 0xff},
	"blue":    {0, 0, 0xff, 0xff},
	"yellow":  {0xff, 0xff, 0, 0xff},
	"cyan":    {0, 0xff, 0xff, 0xff},
	"aqua":    {0, 0xff, 0xff, 0xff},
	"magenta": {0xff, 0, 0xff, 0xff},
	"fuchsia": {0xff, 0, 0xff, 0xff},
	"gray":    {0x80, 0x80, 0x80, 0xff},
	"grey":    {0x80, 0x80, 0x80, 0xff},
	"silver":  {0xc0, 0xc0, 0xc0, 0xff},
	"maroon":  {0x80, 0, 0, 0xff},
	"navy":    {0, 0, 0x80, 0xff},
	"olive":   {0x80, 0x80, 0, 0xff},
	"purple":  {0x80, 0, 0x80, 0xff},
	"teal":    {0, 0x80, 0x80, 0xff},
	"orange":  {0xff, 0xa5, 0, 0xff},
}

// parseColor parses a CSS colour: #rgb, #rrggbb, rgb(r,g,b) or a basic name.
func parseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, false
		}
		r, g, b := c.RGB255()
		return color.RGBA{r, g, b, 0xff}, true
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[4:len(s)-1], ",")
		if len(parts) != 3 {
			return color.RGBA{}, false
		}
		var v [3]uint8
		for i, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n < 0 || n > 255 {
				return color.RGBA{}, false
			}
			v[i] = uint8(n)
		}
		return color.RGBA{v[0], v[1], v[2], 0xff}, true
	}
	return color.RGBA{}, false
}
