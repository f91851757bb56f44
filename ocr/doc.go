// Package ocr defines the abstraction layer for plugging OCR engines into
// the decklist-recognition pipeline: a local Tesseract binding as the
// primary engine, and narrow room for a remote vision API as the optional
// secondary fallback. The interfaces are transport-agnostic so an engine can
// be backed by a native library, a subprocess pool, or a remote call without
// leaking provider-specific concerns into strategy.Strategy.
package ocr
