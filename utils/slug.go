package utils

import (
	"sort"
	"strings"
)

const (
	maxSlugLen    = 50
	maxTagNameLen = 20
	maxTagsPerPost = 12
)

// slugCorrections maps known tag typos to their canonical slug. Historical
// posts keep whatever slug was stored; queries expand through SlugVariants so
// mis-tagged content still matches.
var slugCorrections = map[string]string{
	"mincraft": "minecraft",
	"minecrft": "minecraft",
	"robloks":  "roblox",
	"sciense":  "science",
	"drawring": "drawing",
}

// Slugify derives a URL-safe slug from a tag name: lowercase, runs of
// non-alphanumerics collapsed to a single hyphen, trimmed, at most 50 chars.
// It is pure and deterministic; tag upsert-by-slug relies on that.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			pendingHyphen = false
		} else {
			pendingHyphen = true
		}
	}
	s := b.String()
	if len(s) > maxSlugLen {
		s = strings.TrimRight(s[:maxSlugLen], "-")
	}
	return s
}

// NormalizeSlug slugifies input and resolves known typos to their canonical
// form. Empty input yields def.
func NormalizeSlug(input, def string) string {
	s := Slugify(input)
	if s == "" {
		return def
	}
	if canonical, ok := slugCorrections[s]; ok {
		return canonical
	}
	return s
}

// SlugVariants returns the canonical slug plus every known typo mapping to
// it, for "find posts tagged X" queries.
func SlugVariants(canonical string) []string {
	variants := []string{canonical}
	typos := make([]string, 0, 2)
	for typo, c := range slugCorrections {
		if c == canonical {
			typos = append(typos, typo)
		}
	}
	sort.Strings(typos)
	return append(variants, typos...)
}

// SanitizeTagNames dedupes tag names case-insensitively, drops empty or
// over-long entries, caps the list at 12 and preserves first-seen order.
func SanitizeTagNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		name := strings.TrimSpace(n)
		if name == "" || len([]rune(name)) > maxTagNameLen {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
		if len(out) == maxTagsPerPost {
			break
		}
	}
	return out
}
