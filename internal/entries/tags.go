package entries

import (
	"strings"
	"unicode"
)

// NormalizeTags lowercases, trims and de-duplicates while preserving first
// occurrence order. Empty strings are dropped.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ParseBulkTags turns pasted tag text into a normalized tag set. Input is one
// tag per line (commas also accepted as separators). Gallery listings paste
// with view counters attached ("185K", "160K big breasts"); count tokens are
// stripped, and lines that are nothing but a count are dropped entirely.
func ParseBulkTags(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}

	split := func(r rune) bool { return r == '\n' || r == ',' }

	var tags []string
	for _, line := range strings.FieldsFunc(text, split) {
		fields := strings.Fields(line)
		kept := fields[:0]
		for _, f := range fields {
			if isCountToken(f) {
				continue
			}
			kept = append(kept, f)
		}
		if len(kept) == 0 {
			continue
		}
		tags = append(tags, strings.Join(kept, " "))
	}
	return NormalizeTags(tags)
}

// isCountToken reports whether tok looks like a numeric counter: all digits,
// optionally with a trailing K or M multiplier ("185", "185K", "1.2M").
func isCountToken(tok string) bool {
	if tok == "" {
		return false
	}
	if last := tok[len(tok)-1]; last == 'K' || last == 'k' || last == 'M' || last == 'm' {
		tok = tok[:len(tok)-1]
		if tok == "" {
			return false
		}
	}
	sawDigit := false
	for _, r := range tok {
		if unicode.IsDigit(r) {
			sawDigit = true
			continue
		}
		if r == '.' || r == ',' {
			continue
		}
		return false
	}
	return sawDigit
}
