package deckparse

// Section identifies which half of a decklist a ParsedLine belongs to.
type Section string

const (
	SectionMain Section = "main"
	SectionSide Section = "side"
)

// FormatHint is the parser's best guess at which upstream renderer
// produced the screenshot, used to gate renderer-specific defect
// corrections.
type FormatHint string

const (
	HintClientA    FormatHint = "client_A"
	HintClientB    FormatHint = "client_B"
	HintWebX       FormatHint = "web_X"
	HintWebY       FormatHint = "web_Y"
	HintWebZ       FormatHint = "web_Z"
	HintPhotograph FormatHint = "photograph"
	HintUnknown    FormatHint = "unknown"
)

// ParsedLine is a single recognised "<qty> <name>" decklist entry.
type ParsedLine struct {
	Quantity int
	RawName  string
	Section  Section
}

// Result is DeckParser's output: the segmented lines, the format hint, any
// warnings raised during parsing, and the count of non-blank, non-divider
// lines that did not match the grammar and were discarded.
type Result struct {
	Main       []ParsedLine
	Side       []ParsedLine
	FormatHint FormatHint
	Warnings   []string
	Unparsed   int
}
