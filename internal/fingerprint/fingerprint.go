// Package fingerprint derives compact cache keys from text.
//
// A fingerprint is the first 64 bits of a SHA-256 digest rendered as 16
// uppercase hex characters. Truncation keeps keys short at the cost of a
// bounded collision probability: for n distinct inputs the chance of any
// collision is roughly n²/2⁶⁵, about 3e-8 for a million chunks. Callers
// that cannot tolerate that must not use these keys for identity.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"
)

const (
	// Width is the length of a fingerprint in hex characters (64 bits)
	Width = 16

	// NewlineToken replaces "\n" inside dataset entries so entries cannot
	// merge across the entry separator
	NewlineToken = "~~~~N~~~~"

	// EntrySeparator joins dataset entries
	EntrySeparator = "\n\n"
)

// Sum hashes text as-is and truncates the digest to Width hex characters
func Sum(text string) string {
	digest := sha256.Sum256([]byte(text))
	return strings.ToUpper(hex.EncodeToString(digest[:]))[:Width]
}

// Code fingerprints source code. All whitespace is removed first so that
// reformatting a chunk does not change its key.
func Code(text string) string {
	return Sum(StripWhitespace(text))
}

// Dataset fingerprints an ordered list of strings, such as a prompt
// transcript.
func Dataset(entries []string) string {
	return Sum(JoinDataset(entries))
}

// StripWhitespace removes every Unicode whitespace rune from text
func StripWhitespace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

// JoinDataset renders entries in the normalized form hashed by Dataset
func JoinDataset(entries []string) string {
	escaped := make([]string, len(entries))
	for i, entry := range entries {
		escaped[i] = strings.ReplaceAll(entry, "\n", NewlineToken)
	}
	return strings.Join(escaped, EntrySeparator)
}
