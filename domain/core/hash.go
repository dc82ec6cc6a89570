package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// MatrixFingerprint identifies the exact contents of a PSI matrix.
// Two matrices with the same samples, events and cell values share a
// fingerprint; any content change produces a new one.
type MatrixFingerprint Hash

// NewMatrixFingerprint creates a fingerprint from serialized matrix content
func NewMatrixFingerprint(data []byte) MatrixFingerprint {
	return MatrixFingerprint(NewHash(data))
}

// String returns the string representation
func (f MatrixFingerprint) String() string { return Hash(f).String() }

// IsEmpty checks if the fingerprint is empty
func (f MatrixFingerprint) IsEmpty() bool { return Hash(f).IsEmpty() }
