package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// DefaultAlgorithm is the hash algorithm used for newly ingested documents.
const DefaultAlgorithm = "sha256"

var (
	algoPattern   = regexp.MustCompile(`^[a-z0-9]{3,15}$`)
	digestPattern = regexp.MustCompile(`^[a-f0-9]{32,128}$`)
)

// DocID is a content-derived document identifier of the form
// "algorithm:hexdigest". It is the only key used to address on-disk
// state; user-supplied filenames never appear in storage paths.
type DocID struct {
	// Algo is the hash algorithm name (e.g. "sha256").
	Algo string

	// Digest is the lowercase hex digest.
	Digest string
}

// String returns the canonical "algo:digest" form.
func (id DocID) String() string {
	return id.Algo + ":" + id.Digest
}

// IsZero reports whether the id is unset.
func (id DocID) IsZero() bool {
	return id.Algo == "" && id.Digest == ""
}

// ParseDocID validates and parses an "algo:hexdigest" identifier.
// Any id that does not match the expected shape is rejected with
// ErrInvalidDocumentID before it can touch the filesystem.
func ParseDocID(s string) (DocID, error) {
	algo, digest, ok := strings.Cut(s, ":")
	if !ok {
		return DocID{}, fmt.Errorf("%w: missing separator in %q", ErrInvalidDocumentID, s)
	}
	if !algoPattern.MatchString(algo) {
		return DocID{}, fmt.Errorf("%w: bad algorithm %q", ErrInvalidDocumentID, algo)
	}
	if !digestPattern.MatchString(digest) {
		return DocID{}, fmt.Errorf("%w: bad digest in %q", ErrInvalidDocumentID, s)
	}
	return DocID{Algo: algo, Digest: digest}, nil
}

// ComputeDocID derives the content-addressed id for a document's raw bytes.
// Identical bytes always yield the same id, which is what makes
// re-ingestion idempotent.
func ComputeDocID(data []byte) DocID {
	sum := sha256.Sum256(data)
	return DocID{Algo: DefaultAlgorithm, Digest: hex.EncodeToString(sum[:])}
}
