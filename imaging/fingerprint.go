package imaging

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint is a 256-bit content hash of sanitised image bytes; it is the
// idempotency key the job manager's fingerprint index is built on.
type Fingerprint [32]byte

// String renders the fingerprint as lowercase hex.
func (f Fingerprint) String() string { return hex.EncodeToString(f[:]) }

// ComputeFingerprint hashes already-sanitised bytes with BLAKE2b-256. Hashing
// the sanitised form (not the raw upload) means two uploads that decode to
// the same pixels but differ in container metadata converge on one
// fingerprint, matching the "idempotency as the load-bearing construct"
// design note.
func ComputeFingerprint(sanitized []byte) Fingerprint {
	// blake2b.Sum256 is the unkeyed digest and returns no error.
	return blake2b.Sum256(sanitized)
}
