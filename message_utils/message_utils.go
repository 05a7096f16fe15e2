// Package message_utils seals wheel keys for storage with AES-256-GCM.
package message_utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

// SealKey encrypts a wheel key under a 32-byte storage key. name is bound as
// additional data, so a sealed value only opens under the name it was saved
// with. The output is base64 of nonce followed by ciphertext.
func SealKey(wheelKey, name string, storageKey []byte) (string, error) {
	gcm, err := newGCM(storageKey)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(wheelKey), []byte(name))
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// OpenKey reverses SealKey.
func OpenKey(sealedB64, name string, storageKey []byte) (string, error) {
	gcm, err := newGCM(storageKey)
	if err != nil {
		return "", err
	}

	data, err := base64.StdEncoding.DecodeString(sealedB64)
	if err != nil {
		return "", fmt.Errorf("failed to decode sealed key: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("sealed key too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		// Wrong storage key, wrong name or a tampered row.
		return "", fmt.Errorf("failed to open sealed key: %w", err)
	}

	return string(plaintext), nil
}

func newGCM(storageKey []byte) (cipher.AEAD, error) {
	if len(storageKey) != 32 {
		return nil, fmt.Errorf("invalid key size: must be 32 bytes for AES-256")
	}
	block, err := aes.NewCipher(storageKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher block: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
