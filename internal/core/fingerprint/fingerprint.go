// Package fingerprint mints stable canonical node identifiers.
package fingerprint

import (
	"strconv"
	"unicode/utf16"

	"github.com/agenthands/flowalign/internal/core/textnorm"
)

const (
	offsetBasis uint32 = 2166136261
	prime       uint32 = 16777619

	CanonicalPrefix = "canon_"
)

// Hash32 is FNV-1a over the UTF-16 code units of key, so ids match what
// browser-side tooling computes for the same label.
func Hash32(key string) uint32 {
	h := offsetBasis
	for _, unit := range utf16.Encode([]rune(key)) {
		h ^= uint32(unit)
		h *= prime
	}
	return h
}

// Encode returns Hash32(key) in lower-case base 36.
func Encode(key string) string {
	return strconv.FormatUint(uint64(Hash32(key)), 36)
}

// CanonicalKey is the string hashed into a canonical node id.
func CanonicalKey(nodeType, label string) string {
	return textnorm.Key(nodeType) + "|" + textnorm.Key(label)
}

// CanonicalNodeID derives the canonical id for a (type, label) pair.
func CanonicalNodeID(nodeType, label string) string {
	return CanonicalPrefix + Encode(CanonicalKey(nodeType, label))
}
