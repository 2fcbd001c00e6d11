// Package cryptox holds the primitives behind the encrypted secret store:
// argon2id key derivation, a key verifier, and AES-GCM sealing of values.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the length of keys returned by DeriveMasterKey (AES-256).
const KeySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// MakeVerifier returns a value that can be stored next to the salt and later
// compared to prove a passphrase derives the same key, without storing the key.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

// DeriveMasterKey stretches password with salt using argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// SealSecret encrypts plaintext with AES-GCM under key. The random nonce is
// prepended to the returned ciphertext.
func SealSecret(plaintext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aesgcm.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenSecret reverses SealSecret. It fails if the data was produced under a
// different key or has been tampered with.
func OpenSecret(sealed, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ns := aesgcm.NonceSize()
	if len(sealed) < ns {
		return nil, ErrCiphertextTooShort
	}

	return aesgcm.Open(nil, sealed[:ns], sealed[ns:], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
