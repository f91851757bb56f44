// Package imaging decodes, sanitises, and fingerprints the image bytes a
// caller submits for decklist recognition. It is the boundary layer: once an
// Image has been produced by Sanitize, downstream packages never touch the
// original upload bytes again.
package imaging
