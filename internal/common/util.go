package common

import "crypto/rand"

// GenerateRandByteArray returns size cryptographically random bytes, e.g. a
// fresh key-derivation salt. It panics if the system random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes b in place. Passwords, passphrases and derived keys
// go through it once they are no longer needed.
func WipeByteArray(b []byte) {
	clear(b)
}
