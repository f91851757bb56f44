package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/screen2deck/screen2deck/corpus"
	"github.com/screen2deck/screen2deck/deckparse"
)

const dump = `[
	{"id":"c1","name":"Lightning Bolt"},
	{"id":"c2","name":"Black Lotus"}
]`

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	c := corpus.New()
	if err := c.Rebuild(strings.NewReader(dump)); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	return c
}

func TestResolveExactOffline(t *testing.T) {
	r := New(DefaultConfig(), testCorpus(t), nil)
	res := r.Resolve(context.Background(), deckparse.ParsedLine{Quantity: 4, RawName: "Lightning Bolt"})
	if res.Method != MethodExactOffline || res.CardID != "c1" {
		t.Fatalf("Resolve() = %+v", res)
	}
}

func TestResolveFuzzyOffline(t *testing.T) {
	cfg := DefaultConfig()
	r := New(cfg, testCorpus(t), nil)
	res := r.Resolve(context.Background(), deckparse.ParsedLine{Quantity: 1, RawName: "Lighming Bolt"})
	if res.Method != MethodFuzzyOffline || res.CardID != "c1" {
		t.Fatalf("Resolve() = %+v", res)
	}
}

func TestResolveUnresolvedEmitsAmbiguousWarning(t *testing.T) {
	cfg := DefaultConfig()
	r := New(cfg, testCorpus(t), nil)
	res := r.Resolve(context.Background(), deckparse.ParsedLine{Quantity: 1, RawName: "Completely Unrelated Gibberish Name"})
	if res.Method != MethodUnresolved {
		t.Fatalf("expected unresolved, got %+v", res)
	}
	found := false
	for _, w := range res.Warnings {
		if w == WarningAmbiguous {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected MATCH_AMBIGUOUS warning, got %v", res.Warnings)
	}
}

func TestResolveIsDeterministicWithoutOnline(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OnlineFallback = false
	c := testCorpus(t)
	r := New(cfg, c, nil)
	line := deckparse.ParsedLine{Quantity: 2, RawName: "Black Lotus"}
	first := r.Resolve(context.Background(), line)
	second := r.Resolve(context.Background(), line)
	if first.CardID != second.CardID || first.Method != second.Method {
		t.Fatalf("expected deterministic resolution, got %+v vs %+v", first, second)
	}
}

func TestResolveAllPreservesOrder(t *testing.T) {
	r := New(DefaultConfig(), testCorpus(t), nil)
	lines := []deckparse.ParsedLine{
		{Quantity: 4, RawName: "Lightning Bolt"},
		{Quantity: 1, RawName: "Black Lotus"},
	}
	resolved := r.ResolveAll(context.Background(), lines)
	if len(resolved) != 2 || resolved[0].CardID != "c1" || resolved[1].CardID != "c2" {
		t.Fatalf("ResolveAll() = %+v", resolved)
	}
}
