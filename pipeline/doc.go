// Package pipeline drives a decklist-recognition job through its ordered
// phases: ingest, preprocess, recognize, parse, resolve, finalize. Each
// phase may host multiple Stages, executed in Priority order; the Hub
// records per-phase timings on the shared State as it goes.
package pipeline
