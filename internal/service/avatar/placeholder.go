// Package avatar generates placeholder avatars and stores uploaded ones.
package avatar

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

var palette = [...]string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

const svgTemplate = `<svg width="120" height="120" xmlns="http://www.w3.org/2000/svg">` +
	`<circle cx="60" cy="60" r="60" fill="%s"/>` +
	`<text x="60" y="70" text-anchor="middle" fill="white" font-size="36" font-weight="bold" ` +
	`font-family="Arial, sans-serif">%s</text></svg>`

// Placeholder is a generated initials badge.
type Placeholder struct {
	Initials   string
	Background string
	SVG        []byte
}

// Generate builds the badge for name. It returns nil for an empty name and
// is deterministic: the same name always yields the same bytes.
func Generate(name string) *Placeholder {
	if name == "" {
		return nil
	}
	bg := palette[int(firstCodeUnit(name))%len(palette)]
	initials := Initials(name)
	return &Placeholder{
		Initials:   initials,
		Background: bg,
		SVG:        fmt.Appendf(nil, svgTemplate, bg, html.EscapeString(initials)),
	}
}

// firstCodeUnit returns the first UTF-16 code unit of s, the high surrogate
// for runes outside the Basic Multilingual Plane.
func firstCodeUnit(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	if hi, _ := utf16.EncodeRune(r); hi != utf8.RuneError {
		return hi
	}
	return r
}

// Initials returns the uppercased first letters of the first words of name,
// at most two characters.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	upper := strings.ToUpper(b.String())
	if utf8.RuneCountInString(upper) <= 2 {
		return upper
	}
	_, n1 := utf8.DecodeRuneInString(upper)
	_, n2 := utf8.DecodeRuneInString(upper[n1:])
	return upper[:n1+n2]
}

// DataURI returns the SVG as a base64 data URI usable in an <img src>.
func (p *Placeholder) DataURI() string {
	if p == nil {
		return ""
	}
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(p.SVG)
}
