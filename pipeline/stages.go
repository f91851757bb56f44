package pipeline

import (
	"context"
	"fmt"

	"github.com/screen2deck/screen2deck/deckparse"
	"github.com/screen2deck/screen2deck/preprocess"
	"github.com/screen2deck/screen2deck/resolve"
	"github.com/screen2deck/screen2deck/strategy"
	"github.com/screen2deck/screen2deck/structure"
)

// PreprocessStage expands the ingested image into the ordered variant
// list. It exists mainly so the preprocessing cost shows up in
// State.Timings[PhasePreprocess] even though strategy.Strategy recomputes
// variants internally.
type PreprocessStage struct {
	Preprocessor *preprocess.Preprocessor
}

func (s *PreprocessStage) Name() string      { return "preprocess.variants" }
func (s *PreprocessStage) Phase() Phase      { return PhasePreprocess }
func (s *PreprocessStage) Priority() int     { return 0 }
func (s *PreprocessStage) Execute(ctx context.Context, state *State) error {
	variants, err := s.Preprocessor.Variants(state.Image)
	if err != nil {
		return fmt.Errorf("preprocess: %w", err)
	}
	state.Variants = variants
	return nil
}

// RecognizeStage runs OCRStrategy over the prepared image.
type RecognizeStage struct {
	Strategy *strategy.Strategy
}

func (s *RecognizeStage) Name() string  { return "ocr.select" }
func (s *RecognizeStage) Phase() Phase  { return PhaseRecognize }
func (s *RecognizeStage) Priority() int { return 0 }
func (s *RecognizeStage) Execute(ctx context.Context, state *State) error {
	outcome, err := s.Strategy.Select(ctx, state.Image)
	if err != nil {
		return fmt.Errorf("ocr strategy: %w", err)
	}
	state.OCR = outcome
	if outcome.FallbackReason != strategy.FallbackNone {
		state.addWarning(fmt.Sprintf("ocr_fallback_reason:%s", outcome.FallbackReason))
	}
	return nil
}

// ParseStage segments the OCR plain text into main/side decklist lines.
type ParseStage struct{}

func (s *ParseStage) Name() string  { return "deckparse.parse" }
func (s *ParseStage) Phase() Phase  { return PhaseParse }
func (s *ParseStage) Priority() int { return 0 }
func (s *ParseStage) Execute(ctx context.Context, state *State) error {
	state.Parsed = deckparse.Parse(state.OCR.Run.PlainText)
	for _, w := range state.Parsed.Warnings {
		state.addWarning(w)
	}
	return nil
}

// ResolveStage resolves every parsed line to a card identity. When
// AlwaysVerify is set, a line that falls through every resolution step
// fails the job rather than completing it with an unresolved card_id, per
// the always_verify_carddb configuration option.
type ResolveStage struct {
	Resolver     *resolve.Resolver
	AlwaysVerify bool
}

func (s *ResolveStage) Name() string  { return "resolve.cards" }
func (s *ResolveStage) Phase() Phase  { return PhaseResolve }
func (s *ResolveStage) Priority() int { return 0 }
func (s *ResolveStage) Execute(ctx context.Context, state *State) error {
	state.Main = s.Resolver.ResolveAll(ctx, state.Parsed.Main)
	state.Side = s.Resolver.ResolveAll(ctx, state.Parsed.Side)
	unresolved := 0
	for _, c := range append(append([]resolve.ResolvedCard{}, state.Main...), state.Side...) {
		for _, w := range c.Warnings {
			state.addWarning(w)
		}
		switch c.Method {
		case resolve.MethodUnresolved:
			unresolved++
		case resolve.MethodOnlineExact, resolve.MethodAutocomplete:
			state.OnlineCalls++
		}
	}
	if s.AlwaysVerify && unresolved > 0 {
		return fmt.Errorf("resolve: %d line(s) did not resolve to a card identity", unresolved)
	}
	return nil
}

// StructureStage runs the advisory main=60/side=15 structural check.
type StructureStage struct {
	Validator structure.Validator
}

func (s *StructureStage) Name() string  { return "structure.validate" }
func (s *StructureStage) Phase() Phase  { return PhaseFinalize }
func (s *StructureStage) Priority() int { return 0 }
func (s *StructureStage) Execute(ctx context.Context, state *State) error {
	report, err := s.Validator.Validate(ctx, state.Main, state.Side)
	if err != nil {
		return fmt.Errorf("structure validate: %w", err)
	}
	state.Structure = report
	return nil
}

// NewDefaultHub wires the standard stage set: preprocess, recognize,
// parse, resolve, structure-validate. No stage checks CardCorpus
// readiness; before the first Rebuild the corpus refuses lookups, so
// lines fall through to the online steps or stay unresolved.
func NewDefaultHub(pre *preprocess.Preprocessor, strat *strategy.Strategy, resolver *resolve.Resolver, validator structure.Validator, alwaysVerify bool) *HubImpl {
	hub := NewHub()
	_ = hub.Register(&PreprocessStage{Preprocessor: pre})
	_ = hub.Register(&RecognizeStage{Strategy: strat})
	_ = hub.Register(&ParseStage{})
	_ = hub.Register(&ResolveStage{Resolver: resolver, AlwaysVerify: alwaysVerify})
	_ = hub.Register(&StructureStage{Validator: validator})
	return hub
}
