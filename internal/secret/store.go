// Package secret provides symmetric encryption, decryption, and display
// masking for stored API credentials. Secrets are sealed with AES-256-GCM
// under a single process-wide key configured at startup; ciphertext is
// base64(nonce || sealed) and only this process can open it.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"credshield/internal/domain/entity"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// envKey is the environment variable holding the base64-encoded encryption key.
const envKey = "CREDSHIELD_ENCRYPTION_KEY"

// Store encrypts and decrypts credential secrets with a process-wide key.
// Store is stateless apart from the key and safe for concurrent use.
type Store struct {
	aead cipher.AEAD
}

// NewStore creates a Store from a raw 32-byte key.
func NewStore(key []byte) (*Store, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	return &Store{aead: aead}, nil
}

// NewStoreFromEnv creates a Store from the CREDSHIELD_ENCRYPTION_KEY
// environment variable, which must hold a base64-encoded 32-byte key.
func NewStoreFromEnv() (*Store, error) {
	encoded := os.Getenv(envKey)
	if encoded == "" {
		return nil, fmt.Errorf("%s not set", envKey)
	}

	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%s is not valid base64: %w", envKey, err)
	}

	return NewStore(key)
}

// Encrypt seals a plaintext secret and returns base64(nonce || ciphertext).
// It fails with entity.ErrEmptySecret for empty input.
func (s *Store) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", entity.ErrEmptySecret
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Empty, malformed, or
// unauthenticated input fails with entity.ErrDecryptionFailed; the
// underlying cause is wrapped but must never reach logs or responses
// alongside secret material.
func (s *Store) Decrypt(ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", entity.ErrDecryptionFailed
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: base64 decode", entity.ErrDecryptionFailed)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", entity.ErrDecryptionFailed)
	}

	nonce, sealed := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication", entity.ErrDecryptionFailed)
	}

	return string(plaintext), nil
}
