// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"folio/internal/models"
)

// MaxQueryRunes caps a normalized query term.
const MaxQueryRunes = 64

// NormalizeQuery applies NFKC normalization, collapses every run of
// characters other than letters, digits, '#', '.', '_' and '-' into a single
// space, trims, and caps the result at MaxQueryRunes.
func NormalizeQuery(raw string) string {
	s := norm.NFKC.String(raw)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if keepRune(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	out := b.String()
	if utf8.RuneCountInString(out) > MaxQueryRunes {
		out = strings.TrimSpace(string([]rune(out)[:MaxQueryRunes]))
	}
	return out
}

func keepRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '#' || r == '.' || r == '_' || r == '-'
}

// splitShorthand turns a "#tag" query into a tag filter merged with tags.
// A bare "#" is left as a free-text term.
func splitShorthand(q string, tags []string) (string, []string) {
	if utf8.RuneCountInString(q) > 1 && strings.HasPrefix(q, "#") {
		return "", models.NormalizeTags(append(append([]string{}, tags...), q))
	}
	return q, models.NormalizeTags(tags)
}
