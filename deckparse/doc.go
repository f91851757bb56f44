// Package deckparse turns an OCR run's recognised text into the ordered
// main/side lines a decklist is made of: section segmentation, the
// quantity/name line grammar, format-hint heuristics, and the defect
// corrections specific to a handful of known upstream renderers.
package deckparse
