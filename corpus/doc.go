// Package corpus holds the canonical card catalogue used to resolve
// normalized OCR text into concrete card identities. It is rebuilt
// atomically from a bulk JSON dump of an external card database (see
// carddb) and refuses reads until the first rebuild completes.
package corpus
