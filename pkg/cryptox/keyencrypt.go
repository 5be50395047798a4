package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// ErrTamperedOrCorrupt is returned when a ciphertext fails authentication:
// wrong master key, flipped bits, truncation, or a blob bound to another device.
var ErrTamperedOrCorrupt = errors.New("cryptox: ciphertext tampered or corrupt")

// secretKeyInfo separates the device secret key from anything else that may
// be derived from the same master key in future.
const secretKeyInfo = "bluezscript/device-secret/v1"

// SecretCipher encrypts device secrets at rest with AES-256-GCM. It is safe
// for concurrent use and holds no mutable state after construction.
type SecretCipher struct {
	gcm cipher.AEAD
}

// NewSecretCipher derives the AES-256 key from the master key with HKDF-SHA256.
func NewSecretCipher(mk MasterKey) (*SecretCipher, error) {
	if len(mk.material) < MasterKeySize {
		return nil, ErrMasterKeyInvalid
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, mk.material, nil, []byte(secretKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive secret key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &SecretCipher{gcm: gcm}, nil
}

// Encrypt seals plaintext and binds it to aad (the owning device id).
// The output format is: [12-byte nonce][encrypted data][16-byte auth tag]
func (c *SecretCipher) Encrypt(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return c.gcm.Seal(nonce, nonce, plaintext, aad), nil
}

// Decrypt opens data produced by Encrypt with the same aad. Any failure is
// reported as ErrTamperedOrCorrupt and no plaintext is returned.
func (c *SecretCipher) Decrypt(blob, aad []byte) ([]byte, error) {
	nonceSize := c.gcm.NonceSize()
	if len(blob) < nonceSize+c.gcm.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrTamperedOrCorrupt)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := c.gcm.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrTamperedOrCorrupt
	}

	return plaintext, nil
}
