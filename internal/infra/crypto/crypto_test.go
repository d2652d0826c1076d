package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func testKey() string {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return hex.EncodeToString(key)
}

func TestEncryptor_EncryptDecrypt(t *testing.T) {
	enc, err := NewEncryptor(testKey())
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}

	plaintext := []byte(`{"tasks":[],"projects":["Personal"]}`)

	ciphertext, err := enc.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(ciphertext, []byte("Personal")) {
		t.Error("ciphertext leaks plaintext")
	}
	if len(ciphertext) <= len(plaintext) {
		t.Error("ciphertext should be longer than plaintext")
	}

	decrypted, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("Decrypted text mismatch: got %q, want %q", decrypted, plaintext)
	}
}

func TestEncryptor_Deterministic(t *testing.T) {
	enc, err := NewEncryptor("correct horse battery staple")
	if err != nil {
		t.Fatalf("NewEncryptor failed: %v", err)
	}

	a, _ := enc.Encrypt([]byte("same"))
	b, _ := enc.Encrypt([]byte("same"))
	c, _ := enc.Encrypt([]byte("different"))

	if !bytes.Equal(a, b) {
		t.Error("same plaintext should seal to the same bytes")
	}
	if bytes.Equal(a[:NonceSize], c[:NonceSize]) {
		t.Error("different plaintexts should use different nonces")
	}
}

func TestEncryptor_WrongKey(t *testing.T) {
	enc1, _ := NewEncryptor("first")
	enc2, _ := NewEncryptor("second")

	ciphertext, _ := enc1.Encrypt([]byte("secret"))

	if _, err := enc2.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt with wrong key error = %v, want ErrDecryptionFailed", err)
	}
}

func TestEncryptor_ShortCiphertext(t *testing.T) {
	enc, _ := NewEncryptor(testKey())

	if _, err := enc.Decrypt([]byte{1, 2, 3}); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("Decrypt error = %v, want ErrCiphertextTooShort", err)
	}
}

func TestNewEncryptor_EmptySecret(t *testing.T) {
	if _, err := NewEncryptor(""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewEncryptor error = %v, want ErrEmptySecret", err)
	}
}
