package wheelcipher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is returned when a key cannot produce a WheelSet.
	ErrInvalidKey = errors.New("invalid wheel key")

	// ErrUnrecognizedToken marks a two-character code found on none of the code wheels.
	ErrUnrecognizedToken = errors.New("bad message code")

	// ErrUnsupportedCharacter marks a plaintext character missing from the alphabet wheel.
	ErrUnsupportedCharacter = errors.New("unsupported message character")

	// ErrTrailingCharacter marks a single leftover character at the end of a code message.
	ErrTrailingCharacter = errors.New("incomplete trailing code")

	// ErrEmptyMessage is only returned in strict mode.
	ErrEmptyMessage = errors.New("empty message")
)

// KeyError describes why a key was rejected. It unwraps to ErrInvalidKey.
// It names only the failing slice, never the whole key, so it is safe to log.
type KeyError struct {
	Slice  string
	Reason string
}

func (e *KeyError) Error() string {
	if e.Slice != "" {
		return fmt.Sprintf("%v: %s (%q)", ErrInvalidKey, e.Reason, e.Slice)
	}
	return fmt.Sprintf("%v: %s", ErrInvalidKey, e.Reason)
}

func (e *KeyError) Unwrap() error {
	return ErrInvalidKey
}

// Diagnostic records one token or character that contributed nothing to the output.
// Position is the rune offset in the normalized input.
type Diagnostic struct {
	Position int
	Token    string
	Kind     error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%v at %d: %q", d.Kind, d.Position, d.Token)
}

func (d Diagnostic) Unwrap() error {
	return d.Kind
}
