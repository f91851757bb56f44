package corpus

import (
	"fmt"
	"io"
	"sort"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/hbollon/go-edlib"

	"github.com/screen2deck/screen2deck/normalize"
)

// Candidate is a single fuzzy-match result from FuzzyCandidates.
type Candidate struct {
	CardID        string
	CanonicalName string
	Score         float64
}

// Corpus is the read-path entry point for card-name resolution. It holds an
// atomically-swappable snapshot so readers never observe a partially
// rebuilt catalogue.
type Corpus struct {
	current atomic.Pointer[snapshot]
}

// New constructs an empty, not-yet-ready Corpus.
func New() *Corpus {
	return &Corpus{}
}

// Ready reports whether Rebuild has completed at least once. Reads before
// the first successful rebuild must be refused.
func (c *Corpus) Ready() bool {
	return c.current.Load() != nil
}

// Rebuild decodes a bulk card-database dump and atomically replaces the
// corpus's snapshot. Decoding uses goccy/go-json for its faster throughput
// on the multi-hundred-megabyte bulk files a full card database dump can
// reach.
func (c *Corpus) Rebuild(r io.Reader) error {
	var cards []Card
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cards); err != nil {
		return fmt.Errorf("decode bulk card dump: %w", err)
	}
	snap := newSnapshot(cards, cardLookupForms)
	c.current.Store(snap)
	return nil
}

func cardLookupForms(c Card) []string {
	return normalize.Both(c.Name)
}

// LookupExact returns the card ID registered for an already-normalized
// name, or "" with ok=false if nothing matches.
func (c *Corpus) LookupExact(normalizedName string) (cardID string, ok bool) {
	snap := c.current.Load()
	if snap == nil {
		return "", false
	}
	id, found := snap.exact[normalizedName]
	return id, found
}

// Card returns the full Card record for a card ID.
func (c *Corpus) Card(cardID string) (Card, bool) {
	snap := c.current.Load()
	if snap == nil {
		return Card{}, false
	}
	card, ok := snap.cards[cardID]
	return card, ok
}

// FuzzyCandidates returns up to k ranked candidates for an already
// normalized name. Score combines a Jaro-Winkler string similarity with a
// small bonus for sharing a phonetic key, so "Lighming Bolt" still ranks
// "Lightning Bolt" above unrelated cards with a similar edit distance.
// Sorting is deterministic: score descending, then shorter canonical name,
// then lexicographic, so ties resolve the same way on every call.
func (c *Corpus) FuzzyCandidates(normalizedName string, k int) ([]Candidate, error) {
	snap := c.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("corpus: not ready")
	}
	if k <= 0 {
		return nil, nil
	}

	queryKey := phoneticKey(normalizedName)
	// snap.phonetic buckets entry indices by phonetic key at Rebuild time,
	// so the bonus check below is a set lookup rather than a recomputed
	// phoneticKey call per candidate.
	sharesPhoneticKey := make(map[int]bool, len(snap.phonetic[queryKey]))
	for _, idx := range snap.phonetic[queryKey] {
		sharesPhoneticKey[idx] = true
	}

	scored := make([]Candidate, 0, len(snap.entries))
	seen := make(map[string]bool, len(snap.entries))
	for i, e := range snap.entries {
		if seen[e.cardID] {
			continue
		}
		sim, err := edlib.StringsSimilarity(normalizedName, e.normalized, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		score := float64(sim)
		if sharesPhoneticKey[i] {
			score += 0.05
		}
		if score > 1 {
			score = 1
		}
		card := snap.cards[e.cardID]
		scored = append(scored, Candidate{CardID: e.cardID, CanonicalName: card.Name, Score: score})
		seen[e.cardID] = true
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if len(scored[i].CanonicalName) != len(scored[j].CanonicalName) {
			return len(scored[i].CanonicalName) < len(scored[j].CanonicalName)
		}
		return scored[i].CanonicalName < scored[j].CanonicalName
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
