package deckparse

import "testing"

func TestParseSegmentsMainAndSide(t *testing.T) {
	text := "4 Lightning Bolt\n2 Black Lotus (LEB) 232\nSideboard\n1 Pyroblast"
	res := Parse(text)
	if len(res.Main) != 2 {
		t.Fatalf("expected 2 main lines, got %d: %+v", len(res.Main), res.Main)
	}
	if len(res.Side) != 1 {
		t.Fatalf("expected 1 side line, got %d", len(res.Side))
	}
	if res.Main[1].RawName != "Black Lotus" {
		t.Fatalf("expected annotation stripped, got %q", res.Main[1].RawName)
	}
}

func TestParseRecognizesSBPrefix(t *testing.T) {
	text := "4 Lightning Bolt\nSB: 2 Pyroblast"
	res := Parse(text)
	if len(res.Side) != 1 || res.Side[0].Quantity != 2 {
		t.Fatalf("expected SB-prefixed line in side, got %+v", res.Side)
	}
}

func TestParseDiscardsUnparseableLines(t *testing.T) {
	text := "4 Lightning Bolt\nthis is not a decklist line\n2 Black Lotus"
	res := Parse(text)
	if res.Unparsed != 1 {
		t.Fatalf("expected 1 unparsed line, got %d", res.Unparsed)
	}
}

func TestParseMergesAdjacentDuplicates(t *testing.T) {
	text := "2 Lightning Bolt\n2 Lightning Bolt"
	res := Parse(text)
	if len(res.Main) != 1 || res.Main[0].Quantity != 4 {
		t.Fatalf("expected merged line with qty 4, got %+v", res.Main)
	}
}

func TestBasicLandGlitchSkippedOutsideClientB(t *testing.T) {
	text := "magic: the gathering arena\n59 Plains\n1 Plains\n4 Forest"
	res := Parse(text)
	var plainsLines []ParsedLine
	for _, l := range res.Main {
		if l.RawName == "Plains" {
			plainsLines = append(plainsLines, l)
		}
	}
	// client_A hint means the glitch correction does not apply; expect
	// the two Plains lines untouched: Parse skips the adjacent-duplicate
	// merge once a 59/1 pattern has been seen, so the pair stays visible.
	if len(plainsLines) != 2 {
		t.Fatalf("expected client_A hint to skip correction, got %+v", res.Main)
	}
}

func TestBasicLandGlitchCorrectedForClientB(t *testing.T) {
	text := "mtgo\n59 Plains\n1 Plains\n4 Forest"
	res := Parse(text)

	var plainsQty, forestQty int
	names := map[string]bool{}
	for _, l := range res.Main {
		names[l.RawName] = true
		switch l.RawName {
		case "Plains":
			plainsQty += l.Quantity
		case "Forest":
			forestQty += l.Quantity
		}
	}
	if plainsQty != 30 {
		t.Fatalf("expected the glitched pair split into 30 Plains, got %d", plainsQty)
	}
	// The corroborating "4 Forest" line survives and absorbs its share of
	// the redistributed 60-card total: 30 (the split) + 4 (original) = 34.
	if forestQty != 34 {
		t.Fatalf("expected Forest total to preserve the 60-card glitch total plus the original 4, got %d", forestQty)
	}
	if len(names) != 2 {
		t.Fatalf("expected the split to land on exactly two distinct basics, got %+v", res.Main)
	}

	found := false
	for _, w := range res.Warnings {
		if w == "MTGO_LAND_FIX_APPLIED" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MTGO_LAND_FIX_APPLIED warning, got %v", res.Warnings)
	}
}

func TestBasicLandGlitchNotCorrectedWithoutCorroboration(t *testing.T) {
	text := "mtgo\n59 Plains\n1 Plains"
	res := Parse(text)
	qtys := map[int]bool{}
	for _, l := range res.Main {
		if l.RawName == "Plains" {
			qtys[l.Quantity] = true
		}
	}
	if !qtys[59] || !qtys[1] {
		t.Fatalf("expected uncorrected 59/1 split, got %+v", res.Main)
	}
	found := false
	for _, w := range res.Warnings {
		if w == "basic_land_glitch_detected_without_corroboration" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected warning about missing corroboration, got %v", res.Warnings)
	}
}

func TestCountQtyNameLines(t *testing.T) {
	text := "4 Lightning Bolt\nnot a line\n2 Black Lotus\nSB: 1 Pyroblast"
	if got := CountQtyNameLines(text); got != 3 {
		t.Fatalf("CountQtyNameLines() = %d, want 3", got)
	}
}

func TestDetectFormatHintSentinelStrings(t *testing.T) {
	if got := detectFormatHint("exported from moxfield.com"); got != HintWebX {
		t.Fatalf("detectFormatHint() = %v, want %v", got, HintWebX)
	}
	if got := detectFormatHint("random screenshot text"); got != HintUnknown {
		t.Fatalf("detectFormatHint() = %v, want %v", got, HintUnknown)
	}
}
