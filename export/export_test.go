package export

import (
	"testing"

	"github.com/screen2deck/screen2deck/corpus"
	"github.com/screen2deck/screen2deck/job"
	"github.com/screen2deck/screen2deck/resolve"
)

type fakeLookup map[string]corpus.Card

func (f fakeLookup) Card(id string) (corpus.Card, bool) {
	c, ok := f[id]
	return c, ok
}

func sampleDeck() (job.NormalizedDeck, fakeLookup) {
	lookup := fakeLookup{
		"island": {ID: "island", Name: "Island"},
		"opt":    {ID: "opt", Name: "Opt"},
		"negate": {ID: "negate", Name: "Negate"},
	}
	deck := job.NormalizedDeck{
		Main: []resolve.ResolvedCard{
			{Quantity: 4, CardID: "island", Method: resolve.MethodExactOffline},
			{Quantity: 4, CardID: "opt", Method: resolve.MethodExactOffline},
		},
		Side: []resolve.ResolvedCard{
			{Quantity: 2, CardID: "negate", Method: resolve.MethodExactOffline},
		},
	}
	return deck, lookup
}

func TestRenderFormatMByteExact(t *testing.T) {
	deck, lookup := sampleDeck()
	got, err := Render(deck, FormatM, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Deck\n4 Island\n4 Opt\n\nSideboard\n2 Negate"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderFormatXByteExact(t *testing.T) {
	deck, lookup := sampleDeck()
	got, err := Render(deck, FormatX, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "4 Island\n4 Opt\nSB: 2 Negate"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderFormatKByteExact(t *testing.T) {
	deck, lookup := sampleDeck()
	got, err := Render(deck, FormatK, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "4x Island\n4x Opt\n\nSideboard:\n2x Negate"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderFormatTByteExact(t *testing.T) {
	deck, lookup := sampleDeck()
	got, err := Render(deck, FormatT, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "4 Island\n4 Opt\n\nSideboard\n2 Negate"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	deck, lookup := sampleDeck()
	if _, err := Render(deck, Format("Q"), lookup); err != ErrInvalidFormat {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestRenderRejectsUnresolvedCard(t *testing.T) {
	deck, lookup := sampleDeck()
	deck.Main = append(deck.Main, resolve.ResolvedCard{Quantity: 1, Method: resolve.MethodUnresolved})
	if _, err := Render(deck, FormatM, lookup); err == nil {
		t.Fatal("expected an error for an unresolved card in the deck")
	}
}

func TestRenderOrdersByQuantityThenName(t *testing.T) {
	lookup := fakeLookup{
		"bolt":   {ID: "bolt", Name: "Lightning Bolt"},
		"island": {ID: "island", Name: "Island"},
		"counterspell": {ID: "counterspell", Name: "Counterspell"},
	}
	deck := job.NormalizedDeck{
		Main: []resolve.ResolvedCard{
			{Quantity: 2, CardID: "bolt"},
			{Quantity: 4, CardID: "island"},
			{Quantity: 4, CardID: "counterspell"},
		},
	}
	got, err := Render(deck, FormatX, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "4 Counterspell\n4 Island\n2 Lightning Bolt"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRoundTripFormatX(t *testing.T) {
	deck, lookup := sampleDeck()
	text, err := Render(deck, FormatX, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	entries, err := ParseX(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[2].Name != "Negate" || !entries[2].Side {
		t.Fatalf("expected sideboard Negate entry, got %+v", entries[2])
	}

	rebuilt := job.NormalizedDeck{}
	for _, e := range entries {
		card := resolve.ResolvedCard{Quantity: e.Quantity, CardID: nameToID(e.Name)}
		if e.Side {
			rebuilt.Side = append(rebuilt.Side, card)
		} else {
			rebuilt.Main = append(rebuilt.Main, card)
		}
	}
	again, err := Render(rebuilt, FormatX, lookup)
	if err != nil {
		t.Fatalf("re-render: %v", err)
	}
	if again != text {
		t.Fatalf("round-trip mismatch: got %q, want %q", again, text)
	}
}

func TestRoundTripFormatT(t *testing.T) {
	deck, lookup := sampleDeck()
	text, err := Render(deck, FormatT, lookup)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	entries, err := ParseT(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	rebuilt := job.NormalizedDeck{}
	for _, e := range entries {
		card := resolve.ResolvedCard{Quantity: e.Quantity, CardID: nameToID(e.Name)}
		if e.Side {
			rebuilt.Side = append(rebuilt.Side, card)
		} else {
			rebuilt.Main = append(rebuilt.Main, card)
		}
	}
	again, err := Render(rebuilt, FormatT, lookup)
	if err != nil {
		t.Fatalf("re-render: %v", err)
	}
	if again != text {
		t.Fatalf("round-trip mismatch: got %q, want %q", again, text)
	}
}

func nameToID(name string) string {
	switch name {
	case "Island":
		return "island"
	case "Opt":
		return "opt"
	case "Negate":
		return "negate"
	}
	return ""
}
