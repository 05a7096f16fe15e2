package cryptography

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/Hadidomena/inqwheel/wheelcipher"
	"golang.org/x/crypto/hkdf"
)

// keySalt is used by DeriveKey when the caller gives no salt of their own.
var keySalt = []byte("inqwheel-key-derivation-v1")

// SecureSource is a wheelcipher.RandomSource backed by crypto/rand.
type SecureSource struct{}

// IntN returns a uniform value in [0, n).
func (SecureSource) IntN(n int) int {
	v, err := secureInt(int64(n))
	if err != nil {
		panic(fmt.Sprintf("cryptography: reading random source: %v", err))
	}
	return int(v)
}

func secureInt(max int64) (int64, error) {
	if max <= 0 {
		return 0, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// GenerateKey picks a random wheel key and returns it in display form,
// e.g. "U 14 48 56 V2". A nil src uses SecureSource.
func GenerateKey(src wheelcipher.RandomSource) string {
	if src == nil {
		src = SecureSource{}
	}
	positions := make([]byte, 1+wheelcipher.CodeWheels)
	for i := range positions {
		positions[i] = byte(src.IntN(wheelcipher.WheelSize))
	}
	return keyFromPositions(positions)
}

// DeriveKey turns a shared passphrase into a wheel key with HKDF-SHA256, so
// both parties can rebuild the same wheels from a phrase. An empty salt uses
// the package default.
func DeriveKey(passphrase, salt string) (string, error) {
	if passphrase == "" {
		return "", fmt.Errorf("passphrase cannot be empty")
	}

	s := keySalt
	if salt != "" {
		s = []byte(salt)
	}
	reader := hkdf.New(sha256.New, []byte(passphrase), s, []byte("wheel-rotation"))

	positions, err := drawPositions(reader, 1+wheelcipher.CodeWheels)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}
	return keyFromPositions(positions), nil
}

// unbiasedLimit is the largest multiple of WheelSize that fits in a byte.
// Bytes at or above it are redrawn so that every position is equally likely.
const unbiasedLimit = 256 - 256%wheelcipher.WheelSize

// drawPositions reads n wheel positions from r by rejection sampling.
func drawPositions(r io.Reader, n int) ([]byte, error) {
	positions := make([]byte, 0, n)
	var b [1]byte
	for len(positions) < n {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		if int(b[0]) >= unbiasedLimit {
			continue
		}
		positions = append(positions, b[0]%wheelcipher.WheelSize)
	}
	return positions, nil
}

// keyFromPositions maps one rotation index per wheel to the key characters
// that select it.
func keyFromPositions(positions []byte) string {
	var sb strings.Builder
	sb.WriteString(wheelcipher.CanonicalAlphabet()[positions[0]])
	for n := 0; n < wheelcipher.CodeWheels; n++ {
		sb.WriteString(wheelcipher.CanonicalCodeWheel(n)[positions[n+1]])
	}
	return FormatKey(sb.String())
}

// FormatKey renders a key as letter and codes separated by spaces in upper
// case, the way keys are written on paper. Input is normalized first; a key
// shorter than nine characters is returned normalized but unformatted.
func FormatKey(key string) string {
	k := []rune(wheelcipher.NormalizeKey(key))
	if len(k) < wheelcipher.KeyLength {
		return string(k)
	}
	parts := []string{string(k[0])}
	for n := 0; n < wheelcipher.CodeWheels; n++ {
		parts = append(parts, string(k[1+2*n:3+2*n]))
	}
	return strings.ToUpper(strings.Join(parts, " "))
}

// StorageKey derives the 32-byte AES key that seals keybook rows from a
// configured secret.
func StorageKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("storage secret cannot be empty")
	}
	key := make([]byte, 32)
	reader := hkdf.New(sha256.New, []byte(secret), keySalt, []byte("keybook-seal"))
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}
	return key, nil
}
