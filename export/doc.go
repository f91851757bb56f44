// Package export renders a resolved decklist into the four plaintext
// formats importable by the major deckbuilding tools, and parses the two
// formats whose grammar is unambiguous enough to round-trip.
package export
