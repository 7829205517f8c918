// Package ident generates the opaque random identifiers used for tokens and
// checks.
package ident

import "crypto/rand"

// Length is the canonical id length for tokens and checks.
const Length = 20

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// New returns a random lowercase-alphanumeric string of n characters, each
// drawn uniformly from the alphabet.
func New(n int) string {
	// Bytes at or above the largest multiple of the alphabet size are
	// rejected; taking them mod 36 would skew the first few characters.
	const limit = 256 - 256%len(alphabet)
	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			// crypto/rand never fails on supported platforms
			panic(err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}
