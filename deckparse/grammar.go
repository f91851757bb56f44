package deckparse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/screen2deck/screen2deck/normalize"
)

// lineGrammar matches "<qty>[x]? <name>", qty 1-99, case-insensitive.
var lineGrammar = regexp.MustCompile(`(?i)^(\d{1,2})x?\s+(.+)$`)

// trailingAnnotation strips a trailing "(set) 123" or "[set] 123" style
// collector annotation before name capture.
var trailingAnnotation = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]\s*$`)

// sectionDivider matches a sideboard-section header line.
var sectionDivider = regexp.MustCompile(`(?i)^(side ?board|SB)\b`)

var sbPrefixed = regexp.MustCompile(`(?i)^SB:\s*(.+)$`)

// matchLine parses a single text line against the grammar, returning
// (quantity, name, ok).
func matchLine(line string) (int, string, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, "", false
	}
	m := lineGrammar.FindStringSubmatch(line)
	if m == nil {
		return 0, "", false
	}
	qty, err := strconv.Atoi(m[1])
	if err != nil || qty < 1 || qty > 99 {
		return 0, "", false
	}
	name := trailingAnnotation.ReplaceAllString(strings.TrimSpace(m[2]), "")
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, "", false
	}
	return qty, name, true
}

// CountQtyNameLines counts the lines in text that match the quantity/name
// grammar, independent of section or defect corrections. strategy.Strategy
// uses this to score candidate OCR runs without running the full parse
// pipeline on every variant.
func CountQtyNameLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if sb := sbPrefixed.FindStringSubmatch(line); sb != nil {
			line = sb[1]
		}
		if _, _, ok := matchLine(line); ok {
			count++
		}
	}
	return count
}

// Parse segments raw OCR text into main/side ParsedLines, applies the
// known defect corrections, and merges adjacent duplicate lines.
func Parse(text string) Result {
	var res Result
	res.FormatHint = detectFormatHint(text)

	section := SectionMain
	var raw []ParsedLine
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if sectionDivider.MatchString(trimmed) {
			section = SectionSide
			continue
		}
		lineSection := section
		if sb := sbPrefixed.FindStringSubmatch(trimmed); sb != nil {
			lineSection = SectionSide
			trimmed = sb[1]
		}
		qty, name, ok := matchLine(trimmed)
		if !ok {
			res.Unparsed++
			continue
		}
		raw = append(raw, ParsedLine{Quantity: qty, RawName: name, Section: lineSection})
	}

	// correctBasicLandGlitch needs to see the original 59/1 split before any
	// merging collapses it, so it runs first; mergeAdjacentDuplicates only
	// runs afterward when no glitch pattern was found at all, so that an
	// out-of-hint or uncorroborated 59/1 pair is left visible rather than
	// silently folded into a single 60-count line.
	raw, warning, glitchPattern := correctBasicLandGlitch(raw, res.FormatHint)
	if warning != "" {
		res.Warnings = append(res.Warnings, warning)
	}
	if !glitchPattern {
		raw = mergeAdjacentDuplicates(raw)
	}

	for _, l := range raw {
		if l.Section == SectionSide {
			res.Side = append(res.Side, l)
		} else {
			res.Main = append(res.Main, l)
		}
	}
	return res
}

// mergeAdjacentDuplicates merges (q1, name, sect) followed immediately by
// (q2, name, sect) into (q1+q2, name, sect).
func mergeAdjacentDuplicates(lines []ParsedLine) []ParsedLine {
	if len(lines) == 0 {
		return lines
	}
	merged := make([]ParsedLine, 0, len(lines))
	merged = append(merged, lines[0])
	for _, l := range lines[1:] {
		last := &merged[len(merged)-1]
		if sameName(last.RawName, l.RawName) && last.Section == l.Section {
			last.Quantity += l.Quantity
			continue
		}
		merged = append(merged, l)
	}
	return merged
}

func sameName(a, b string) bool {
	return normalize.Name(a) == normalize.Name(b)
}

// basicLandNames are the five basic land names the client_B glitch applies
// to.
var basicLandNames = map[string]bool{
	"plains": true, "island": true, "swamp": true, "mountain": true, "forest": true,
}

// correctBasicLandGlitch redistributes a (59, land) + (1, land) pair into a
// plausible split across two distinct basics only when the hint matches the
// client known to exhibit the glitch and corroborating evidence (another
// distinct basic land line in the same run) exists, per the defect-
// correction contract. The 60-card total of the glitched pair is preserved:
// it is split evenly between the glitched basic and the corroborating one.
// Absent corroboration, or outside the matching hint, the lines are left
// untouched. The bool return reports whether the 59/1 pattern was found at
// all, regardless of hint or corroboration, so Parse can avoid merging an
// untouched pair into a single misleading line.
func correctBasicLandGlitch(lines []ParsedLine, hint FormatHint) ([]ParsedLine, string, bool) {
	for i := 0; i < len(lines)-1; i++ {
		a, b := lines[i], lines[i+1]
		name := normalize.Name(a.RawName)
		if !basicLandNames[name] || a.Section != b.Section {
			continue
		}
		if normalize.Name(b.RawName) != name {
			continue
		}
		if !(a.Quantity == 59 && b.Quantity == 1) {
			continue
		}
		if hint != HintClientB {
			return lines, "", true
		}
		otherName, ok := corroboratingBasic(lines, i, i+1, name)
		if !ok {
			return lines, "basic_land_glitch_detected_without_corroboration", true
		}
		total := a.Quantity + b.Quantity
		first := total / 2
		second := total - first
		fixed := make([]ParsedLine, 0, len(lines))
		fixed = append(fixed, lines[:i]...)
		fixed = append(fixed, ParsedLine{Quantity: first, RawName: a.RawName, Section: a.Section})
		fixed = append(fixed, ParsedLine{Quantity: second, RawName: otherName, Section: b.Section})
		fixed = append(fixed, lines[i+2:]...)
		fixed = mergeAdjacentDuplicates(fixed)
		return fixed, "MTGO_LAND_FIX_APPLIED", true
	}
	return lines, "", false
}

// corroboratingBasic reports whether a basic land line distinct from the
// glitched pair exists elsewhere in the run, returning its raw name (so
// the redistribution can split into that same basic rather than an
// arbitrary one).
func corroboratingBasic(lines []ParsedLine, skipA, skipB int, glitchName string) (string, bool) {
	for i, l := range lines {
		if i == skipA || i == skipB {
			continue
		}
		name := normalize.Name(l.RawName)
		if basicLandNames[name] && name != glitchName {
			return l.RawName, true
		}
	}
	return "", false
}

// sentinelStrings maps substrings observed in screenshots to a format
// hint; detection is deliberately cheap text matching rather than layout
// analysis.
var sentinelStrings = []struct {
	substr string
	hint   FormatHint
}{
	{"moxfield.com", HintWebX},
	{"archidekt.com", HintWebY},
	{"tappedout.net", HintWebZ},
	{"magic: the gathering arena", HintClientA},
	{"mtgo", HintClientB},
}

func detectFormatHint(text string) FormatHint {
	lower := strings.ToLower(text)
	for _, s := range sentinelStrings {
		if strings.Contains(lower, s.substr) {
			return s.hint
		}
	}
	return HintUnknown
}
