// Package structure validates a resolved deck's shape against the
// constructed-format structural hints named in the non-goals: a 60-card
// main deck and a 15-card sideboard. These are advisory warnings, not
// rejections — nothing here fails a job.
package structure
