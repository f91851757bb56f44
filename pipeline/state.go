package pipeline

import (
	"time"

	"github.com/screen2deck/screen2deck/deckparse"
	"github.com/screen2deck/screen2deck/imaging"
	"github.com/screen2deck/screen2deck/preprocess"
	"github.com/screen2deck/screen2deck/resolve"
	"github.com/screen2deck/screen2deck/strategy"
	"github.com/screen2deck/screen2deck/structure"
)

// State is the shared working set every Stage reads from and writes to as
// a job moves through the pipeline.
type State struct {
	Image    imaging.Image
	Variants []preprocess.Variant

	OCR strategy.Outcome

	Parsed deckparse.Result

	Main        []resolve.ResolvedCard
	Side        []resolve.ResolvedCard
	OnlineCalls int

	Structure *structure.Report

	Warnings []string
	Timings  map[Phase]time.Duration
}

// NewState seeds a State with a sanitised source image.
func NewState(img imaging.Image) *State {
	return &State{Image: img, Timings: make(map[Phase]time.Duration)}
}

func (s *State) addWarning(w string) {
	if w == "" {
		return
	}
	s.Warnings = append(s.Warnings, w)
}
