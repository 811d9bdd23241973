// SPDX-License-Identifier: MIT

// Package slug converts human titles into URL-safe slugs.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes the input and drops combining marks, so that
// "Č" becomes "C" and "é" becomes "e".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a title into a lowercase, hyphen-separated slug containing
// only letters, digits and single hyphens, with no leading or trailing hyphen.
// Example: "Summer Campaign!" → "summer-campaign"
func Make(title string) string {
	s, _, err := transform.String(stripMarks, title)
	if err != nil {
		s = title
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastWasDash := true // swallow leading separators
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			b.WriteRune('-')
			lastWasDash = true
		}
	}

	return strings.Trim(b.String(), "-")
}

// Humanize reverses a technical name into a human title: camelCase humps and
// underscore runs become single spaces, the result is lowercased and the
// first letter capitalized. "pressReleases" → "Press releases".
func Humanize(text string) string {
	var b strings.Builder
	for _, r := range text {
		if unicode.IsUpper(r) {
			b.WriteRune('_')
		}
		b.WriteRune(r)
	}

	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	out := strings.ToLower(strings.Join(fields, " "))
	if out == "" {
		return out
	}

	return strings.ToUpper(out[:1]) + out[1:]
}

// Camelize turns an underscore-separated name into UpperCamelCase.
// "ws_asset" → "WsAsset".
func Camelize(text string) string {
	parts := strings.Split(text, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}

	return b.String()
}
