package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used to stretch a passphrase into an AES-256 key.
const (
	kdfIterations  = 3
	kdfMemory      = 64 * 1024
	kdfParallelism = 2
	kdfKeyLength   = 32

	// SaltLength is the size of the random salt stored next to sealed data.
	SaltLength = 16
)

var ErrSealedTooShort = errors.New("cryptox: sealed data too short")

// Sealer encrypts small secrets with AES-256-GCM.
// Output format is: [12-byte nonce][ciphertext][16-byte auth tag]
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives the key from passphrase and salt with Argon2id.
func NewSealer(passphrase, salt []byte) (*Sealer, error) {
	if len(passphrase) == 0 {
		return nil, errors.New("cryptox: empty passphrase")
	}
	if len(salt) < SaltLength {
		return nil, fmt.Errorf("cryptox: salt must be at least %d bytes", SaltLength)
	}
	key := argon2.IDKey(passphrase, salt, kdfIterations, kdfMemory, kdfParallelism, kdfKeyLength)
	return NewSealerFromKey(key)
}

// NewSealerFromKey uses a raw 32-byte key as is.
func NewSealerFromKey(key []byte) (*Sealer, error) {
	if len(key) != kdfKeyLength {
		return nil, fmt.Errorf("cryptox: key must be %d bytes, got %d", kdfKeyLength, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// NewSalt returns SaltLength random bytes.
func NewSalt() ([]byte, error) {
	return randomBytes(SaltLength)
}

// Seal encrypts plaintext. additional is authenticated but not encrypted;
// callers bind the record key there so ciphertexts cannot be swapped.
func (s *Sealer) Seal(plaintext, additional []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, additional), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, additional []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrSealedTooShort
	}

	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], additional)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
