// Package carddb is the external-card-database collaborator: it fetches the
// bulk catalogue dump that feeds corpus.Corpus, and offers online
// single-card and autocomplete lookups for resolve.Resolver's last-resort
// steps.
package carddb
