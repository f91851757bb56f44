package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// dfcSplitter matches the slash-style double-faced-card separator an OCR
// engine may render in several visually similar forms: a plain slash pair,
// the fullwidth slash pair some fonts substitute, or a double hyphen. Name
// runs dashQuoteReplacer first, so a single en or em dash has already
// become "-" by the time this runs and is not treated as a separator.
var dfcSplitter = regexp.MustCompile(`\s*(?://|／／|--|—|–)\s*`)

var whitespaceRun = regexp.MustCompile(`\s+`)

var dashQuoteReplacer = strings.NewReplacer(
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-", "―", "-",
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", "\"", "”", "\"", "„", "\"", "‟", "\"",
)

var stripDiacritics = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Name applies the five-step normalization to a single card-name string:
// NFKD-decompose and strip combining diacritics and recompose NFC, case-fold
// to lower, unify dashes and quotes to ASCII, collapse whitespace, and
// canonicalize double-faced-card separators to " // ". It is idempotent:
// Name(Name(x)) == Name(x) for all x.
func Name(raw string) string {
	s, _, err := transform.String(stripDiacritics, raw)
	if err != nil {
		s = raw
	}
	s = strings.ToLower(s)
	s = dashQuoteReplacer.Replace(s)
	if loc := dfcSplitter.FindStringIndex(s); loc != nil {
		front := strings.TrimSpace(s[:loc[0]])
		back := strings.TrimSpace(s[loc[1]:])
		s = front + " // " + back
	}
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Faces splits a normalized double-faced name "a // b" into its two faces.
// For a single-faced name it returns (name, "", false).
func Faces(normalized string) (front, back string, isDFC bool) {
	parts := strings.SplitN(normalized, " // ", 2)
	if len(parts) != 2 {
		return normalized, "", false
	}
	return parts[0], parts[1], true
}

// Both returns every normalized form a card name should be lookup-able
// under: the full name, and — for double-faced cards — the front face
// alone, per the corpus's "both A and A // B must be lookup-able"
// requirement.
func Both(raw string) []string {
	full := Name(raw)
	front, _, isDFC := Faces(full)
	if !isDFC {
		return []string{full}
	}
	return []string{full, front}
}
