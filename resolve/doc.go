// Package resolve turns a deckparse.ParsedLine into a concrete card
// identity, trying offline exact and fuzzy lookups before falling back to
// the online carddb collaborator.
package resolve
