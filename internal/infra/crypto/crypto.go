// Package crypto seals snapshot blobs for the git store.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

const (
	// NonceSize is the size of the nonce for AES-GCM (12 bytes).
	NonceSize = 12
	// KeySize is the size of the AES-256 key (32 bytes).
	KeySize = 32
)

var (
	// ErrEmptySecret is returned when no key material is given.
	ErrEmptySecret = errors.New("encryption secret is empty")
	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed: invalid ciphertext or key")
	// ErrCiphertextTooShort is returned when the ciphertext is too short.
	ErrCiphertextTooShort = errors.New("ciphertext too short")
)

// Encryptor seals data with AES-256-GCM.
// Nonces are derived from the plaintext, so sealing the same snapshot twice
// yields the same blob and an unchanged store writes no new objects.
type Encryptor struct {
	gcm   cipher.AEAD
	nonce []byte // HMAC key for nonce derivation
}

// NewEncryptor creates an Encryptor from secret.
// A 64 character hex string is used as the raw key; anything else is
// treated as a passphrase and hashed into one.
func NewEncryptor(secret string) (*Encryptor, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	key, err := hex.DecodeString(secret)
	if err != nil || len(key) != KeySize {
		sum := sha256.Sum256([]byte(secret))
		key = sum[:]
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte("taskdeck nonce"))

	return &Encryptor{gcm: gcm, nonce: mac.Sum(nil)}, nil
}

// Encrypt seals plaintext.
// Returns: nonce (12 bytes) + ciphertext + auth tag
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	mac := hmac.New(sha256.New, e.nonce)
	mac.Write(plaintext)
	nonce := mac.Sum(nil)[:NonceSize]

	return e.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens data produced by Encrypt.
func (e *Encryptor) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce := ciphertext[:NonceSize]
	encrypted := ciphertext[NonceSize:]

	plaintext, err := e.gcm.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}
