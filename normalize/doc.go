// Package normalize applies pure, deterministic text transformations to
// card-name strings recognised from a decklist screenshot: diacritic
// stripping, case folding, punctuation unification, and double-faced-card
// splitting. Nothing here consults external state, and every function is
// idempotent.
package normalize
