// Package preprocess turns a sanitised imaging.Image into the ordered list
// of Variants that strategy.Strategy feeds to an OCR engine one at a time.
package preprocess
