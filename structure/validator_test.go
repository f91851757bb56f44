package structure

import (
	"context"
	"testing"

	"github.com/screen2deck/screen2deck/resolve"
)

func card(qty int, id string) resolve.ResolvedCard {
	return resolve.ResolvedCard{Quantity: qty, CardID: id, Method: resolve.MethodExactOffline}
}

func TestValidateCompliantDeck(t *testing.T) {
	v := NewConstructedValidator()
	main := []resolve.ResolvedCard{card(56, "c1"), card(4, "c2")}
	side := []resolve.ResolvedCard{card(15, "c3")}
	report, err := v.Validate(context.Background(), main, side)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !report.Compliant {
		t.Fatalf("expected compliant, got violations %+v", report.Violations)
	}
}

func TestValidateFlagsUndersizedMain(t *testing.T) {
	v := NewConstructedValidator()
	main := []resolve.ResolvedCard{card(40, "c1")}
	report, err := v.Validate(context.Background(), main, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if report.Compliant {
		t.Fatalf("expected non-compliant for undersized main deck")
	}
	if report.Violations[0].Code != "STRUCT001" {
		t.Fatalf("expected STRUCT001, got %+v", report.Violations)
	}
}

func TestValidateFlagsOversizedSideboard(t *testing.T) {
	v := NewConstructedValidator()
	main := []resolve.ResolvedCard{card(60, "c1")}
	side := []resolve.ResolvedCard{card(20, "c2")}
	report, err := v.Validate(context.Background(), main, side)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	found := false
	for _, viol := range report.Violations {
		if viol.Code == "STRUCT002" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected STRUCT002 violation, got %+v", report.Violations)
	}
}

func TestValidateFlagsUnresolvedCards(t *testing.T) {
	v := NewConstructedValidator()
	main := []resolve.ResolvedCard{card(59, "c1"), {Quantity: 1, Method: resolve.MethodUnresolved}}
	report, err := v.Validate(context.Background(), main, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	found := false
	for _, viol := range report.Violations {
		if viol.Code == "STRUCT003" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected STRUCT003 violation, got %+v", report.Violations)
	}
}
