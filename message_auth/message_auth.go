package message_auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"
)

// ShortTagLength is the size of the tag written next to a hand-copied message.
const ShortTagLength = 8

// canonicalPlaintext keeps only what survives an encode/decode round trip:
// lowercase a..z. Encodings are random, so the MAC is taken over this form.
func canonicalPlaintext(plaintext string) string {
	return strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		if r < 'a' || r > 'z' {
			return -1
		}
		return r
	}, plaintext)
}

// GenerateMessageMAC returns a base64 HMAC-SHA256 of the canonical plaintext.
func GenerateMessageMAC(plaintext string, sharedSecret []byte) (string, error) {
	if len(sharedSecret) == 0 {
		return "", fmt.Errorf("shared secret cannot be empty")
	}

	h := hmac.New(sha256.New, sharedSecret)
	_, err := h.Write([]byte(canonicalPlaintext(plaintext)))
	if err != nil {
		return "", fmt.Errorf("failed to generate MAC: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// ShortTag truncates a MAC to ShortTagLength characters.
func ShortTag(mac string) string {
	if len(mac) <= ShortTagLength {
		return mac
	}
	return mac[:ShortTagLength]
}

// VerifyMessageMAC checks a decoded plaintext against a full MAC or a short tag.
// A mismatch usually means a code was miscopied.
func VerifyMessageMAC(plaintext string, providedMAC string, sharedSecret []byte) (bool, error) {
	if len(providedMAC) < ShortTagLength {
		return false, fmt.Errorf("tag must be at least %d characters", ShortTagLength)
	}

	expected, err := GenerateMessageMAC(plaintext, sharedSecret)
	if err != nil {
		return false, fmt.Errorf("failed to generate expected MAC: %w", err)
	}
	if len(providedMAC) > len(expected) {
		return false, nil
	}

	return subtle.ConstantTimeCompare([]byte(providedMAC), []byte(expected[:len(providedMAC)])) == 1, nil
}
