// Package strategy selects the best OCR run for a submitted image: it
// drives preprocess.Preprocessor and ocr.Engine across the variant list,
// early-stopping on a confident run, and decides whether the optional
// secondary OCR fallback is worth invoking.
package strategy
