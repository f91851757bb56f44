package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/screen2deck/screen2deck/corpus"
	"github.com/screen2deck/screen2deck/job"
	"github.com/screen2deck/screen2deck/resolve"
)

// Format names a target export grammar.
type Format string

const (
	FormatM Format = "M"
	FormatX Format = "X"
	FormatK Format = "K"
	FormatT Format = "T"
)

// ErrInvalidFormat is returned by Render for any Format other than M, X, K,
// or T.
var ErrInvalidFormat = fmt.Errorf("export: invalid format")

// ErrUnresolvedCard is returned when a NormalizedDeck still carries an
// unresolved line (empty CardID); an Exporter cannot name what it was never
// given an identity for.
var ErrUnresolvedCard = fmt.Errorf("export: unresolved card in deck")

// CardLookup resolves a CardID to its canonical display fields. *corpus.Corpus
// satisfies this.
type CardLookup interface {
	Card(cardID string) (corpus.Card, bool)
}

type line struct {
	quantity    int
	name        string
	setCode     string
	collectorNo string
}

// Render serialises a NormalizedDeck into the given target format. Cards
// within a section are ordered by descending quantity, then ascending
// canonical name, so the same deck always renders to the same bytes
// regardless of resolution order.
func Render(deck job.NormalizedDeck, format Format, cards CardLookup) (string, error) {
	main, err := toLines(deck.Main, cards)
	if err != nil {
		return "", err
	}
	side, err := toLines(deck.Side, cards)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatM:
		return renderM(main, side), nil
	case FormatX:
		return renderX(main, side), nil
	case FormatK:
		return renderK(main, side), nil
	case FormatT:
		return renderT(main, side), nil
	default:
		return "", ErrInvalidFormat
	}
}

func toLines(cards []resolve.ResolvedCard, lookup CardLookup) ([]line, error) {
	out := make([]line, 0, len(cards))
	for _, c := range cards {
		if c.CardID == "" {
			return nil, ErrUnresolvedCard
		}
		card, ok := lookup.Card(c.CardID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown card id %q", ErrUnresolvedCard, c.CardID)
		}
		out = append(out, line{quantity: c.Quantity, name: card.Name, setCode: card.SetCode, collectorNo: card.CollectorNo})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].quantity != out[j].quantity {
			return out[i].quantity > out[j].quantity
		}
		return out[i].name < out[j].name
	})
	return out, nil
}

func renderM(main, side []line) string {
	var b strings.Builder
	b.WriteString("Deck")
	for _, l := range main {
		b.WriteByte('\n')
		b.WriteString(formatMLine(l))
	}
	b.WriteString("\n\nSideboard")
	for _, l := range side {
		b.WriteByte('\n')
		b.WriteString(formatMLine(l))
	}
	return b.String()
}

func formatMLine(l line) string {
	if l.setCode != "" && l.collectorNo != "" {
		return fmt.Sprintf("%d %s (%s) %s", l.quantity, l.name, l.setCode, l.collectorNo)
	}
	return fmt.Sprintf("%d %s", l.quantity, l.name)
}

func renderX(main, side []line) string {
	var parts []string
	for _, l := range main {
		parts = append(parts, fmt.Sprintf("%d %s", l.quantity, l.name))
	}
	for _, l := range side {
		parts = append(parts, fmt.Sprintf("SB: %d %s", l.quantity, l.name))
	}
	return strings.Join(parts, "\n")
}

func renderK(main, side []line) string {
	var b strings.Builder
	for i, l := range main {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%dx %s", l.quantity, l.name)
	}
	b.WriteString("\n\nSideboard:")
	for _, l := range side {
		fmt.Fprintf(&b, "\n%dx %s", l.quantity, l.name)
	}
	return b.String()
}

func renderT(main, side []line) string {
	var b strings.Builder
	for i, l := range main {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %s", l.quantity, l.name)
	}
	b.WriteString("\n\nSideboard")
	for _, l := range side {
		fmt.Fprintf(&b, "\n%d %s", l.quantity, l.name)
	}
	return b.String()
}
