package structure

import (
	"context"
	"fmt"

	"github.com/screen2deck/screen2deck/resolve"
)

// Violation is a single structural-hint miss.
type Violation struct {
	Code        string
	Description string
}

// Report details the structural-hint check result for a resolved deck. It
// is advisory: Compliant=false never blocks export or marks a Job failed.
type Report struct {
	Compliant  bool
	Standard   string
	Violations []Violation
}

// Validator checks a resolved deck against a named structural standard.
type Validator interface {
	Validate(ctx context.Context, main, side []resolve.ResolvedCard) (*Report, error)
}

// ConstructedValidator enforces the common constructed-format shape: a
// 60-card main deck and a sideboard of at most 15 cards.
type ConstructedValidator struct {
	MainDeckSize int
	MaxSideboard int
}

// NewConstructedValidator returns the default main=60/side=15 validator.
func NewConstructedValidator() *ConstructedValidator {
	return &ConstructedValidator{MainDeckSize: 60, MaxSideboard: 15}
}

func (v *ConstructedValidator) Validate(ctx context.Context, main, side []resolve.ResolvedCard) (*Report, error) {
	report := &Report{Compliant: true, Standard: "constructed-60-15"}

	mainCount := sumQuantity(main)
	if mainCount != v.MainDeckSize {
		report.Compliant = false
		report.Violations = append(report.Violations, Violation{
			Code:        "STRUCT001",
			Description: fmt.Sprintf("main deck has %d cards, expected %d", mainCount, v.MainDeckSize),
		})
	}

	sideCount := sumQuantity(side)
	if sideCount > v.MaxSideboard {
		report.Compliant = false
		report.Violations = append(report.Violations, Violation{
			Code:        "STRUCT002",
			Description: fmt.Sprintf("sideboard has %d cards, exceeds maximum %d", sideCount, v.MaxSideboard),
		})
	}

	for _, card := range append(append([]resolve.ResolvedCard{}, main...), side...) {
		if card.Method == resolve.MethodUnresolved {
			report.Compliant = false
			report.Violations = append(report.Violations, Violation{
				Code:        "STRUCT003",
				Description: "line with no resolved card identity",
			})
			break
		}
	}

	return report, nil
}

func sumQuantity(cards []resolve.ResolvedCard) int {
	total := 0
	for _, c := range cards {
		total += c.Quantity
	}
	return total
}
