package resolve

import (
	"context"

	"github.com/screen2deck/screen2deck/carddb"
	"github.com/screen2deck/screen2deck/corpus"
	"github.com/screen2deck/screen2deck/deckparse"
	"github.com/screen2deck/screen2deck/normalize"
)

// Method records which resolution step produced a match, for
// observability and for the determinism tests.
type Method string

const (
	MethodExactOffline Method = "exact_offline"
	MethodFuzzyOffline Method = "fuzzy_offline"
	MethodOnlineExact  Method = "online_exact"
	MethodAutocomplete Method = "autocomplete"
	MethodUnresolved   Method = "unresolved"
)

// WarningAmbiguous is attached when no step produces a confident match.
const WarningAmbiguous = "MATCH_AMBIGUOUS"

// ResolvedCard is a single resolved (or unresolved) decklist line.
type ResolvedCard struct {
	Quantity   int
	Section    deckparse.Section
	CardID     string
	Method     Method
	Candidates []corpus.Candidate
	Warnings   []string
}

// Config mirrors the resolution portion of the configuration surface.
type Config struct {
	FuzzyAcceptThreshold float64
	FuzzyTopK            int
	OnlineFallback       bool
}

// DefaultConfig matches the documented defaults: fuzzy acceptance at 0.85,
// top-5 candidate lists, online fallback enabled.
func DefaultConfig() Config {
	return Config{FuzzyAcceptThreshold: 0.85, FuzzyTopK: 5, OnlineFallback: true}
}

// Resolver drives the four-step resolution order over a CardCorpus and an
// optional online carddb.Client.
type Resolver struct {
	cfg    Config
	corpus *corpus.Corpus
	online *carddb.Client
}

// New constructs a Resolver. online may be nil, in which case steps 3-4 are
// always skipped regardless of configuration.
func New(cfg Config, c *corpus.Corpus, online *carddb.Client) *Resolver {
	return &Resolver{cfg: cfg, corpus: c, online: online}
}

// Resolve runs the resolution order for a single parsed line, stopping at
// first success. For a fixed corpus snapshot and OnlineFallback disabled,
// Resolve is deterministic.
func (r *Resolver) Resolve(ctx context.Context, line deckparse.ParsedLine) ResolvedCard {
	normalized := normalize.Name(line.RawName)

	if id, ok := r.corpus.LookupExact(normalized); ok {
		return ResolvedCard{Quantity: line.Quantity, Section: line.Section, CardID: id, Method: MethodExactOffline}
	}

	candidates, err := r.corpus.FuzzyCandidates(normalized, r.cfg.FuzzyTopK)
	if err == nil && len(candidates) > 0 && candidates[0].Score >= r.cfg.FuzzyAcceptThreshold {
		return ResolvedCard{Quantity: line.Quantity, Section: line.Section, CardID: candidates[0].CardID, Method: MethodFuzzyOffline}
	}

	if r.cfg.OnlineFallback && r.online != nil {
		if named, err := r.online.Named(ctx, line.RawName, true); err == nil && !named.Ambiguous && named.Card.ID != "" {
			return ResolvedCard{Quantity: line.Quantity, Section: line.Section, CardID: named.Card.ID, Method: MethodOnlineExact}
		}

		if suggestions, err := r.online.Autocomplete(ctx, line.RawName); err == nil && len(suggestions) == 1 {
			if id, ok := r.corpus.LookupExact(normalize.Name(suggestions[0])); ok {
				return ResolvedCard{Quantity: line.Quantity, Section: line.Section, CardID: id, Method: MethodAutocomplete}
			}
		}
	}

	return ResolvedCard{
		Quantity:   line.Quantity,
		Section:    line.Section,
		Method:     MethodUnresolved,
		Candidates: candidates,
		Warnings:   []string{WarningAmbiguous},
	}
}

// ResolveAll resolves every line in a deckparse.Result, preserving order.
func (r *Resolver) ResolveAll(ctx context.Context, lines []deckparse.ParsedLine) []ResolvedCard {
	out := make([]ResolvedCard, 0, len(lines))
	for _, l := range lines {
		out = append(out, r.Resolve(ctx, l))
	}
	return out
}
