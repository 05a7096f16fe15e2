package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength caps the runes accepted in one encode or decode request.
	MaxMessageLength = 4096
	MaxKeyNameLength = 64
	MaxRecipients    = 10
)

var keyNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateKeyName checks a keybook name: lowercase letters, digits, '-' and '_'.
func ValidateKeyName(name string) error {
	if name == "" {
		return NewValidationError("key_name_missing")
	}
	if len(name) > MaxKeyNameLength || !keyNamePattern.MatchString(name) {
		return NewValidationError("key_name_invalid")
	}
	return nil
}

// ValidateMessage checks that a message has non-whitespace content and is
// within MaxMessageLength.
func ValidateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return NewValidationError("message_missing")
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return NewValidationError("message_too_long")
	}
	return nil
}

// ValidateEmail checks if the email format is valid
func ValidateEmail(email string) bool {
	if email == "" {
		return false
	}

	_, err := mail.ParseAddress(email)
	return err == nil
}

// ValidateRecipients checks every address and the recipient count.
func ValidateRecipients(recipients []string) error {
	if len(recipients) == 0 || len(recipients) > MaxRecipients {
		return NewValidationError("recipients_invalid")
	}
	for _, r := range recipients {
		if !ValidateEmail(r) {
			return &ValidationError{
				Type:    "recipients_invalid",
				Message: fmt.Sprintf("%s: %s", GetSanitizedError("recipients_invalid"), r),
			}
		}
	}
	return nil
}

// GetSanitizedError returns a generic error message to prevent information leakage.
func GetSanitizedError(errorType string) string {
	switch errorType {
	case "key_name_missing":
		return "A key name is required"
	case "key_name_invalid":
		return "Key names use lowercase letters, digits, '-' and '_' (max 64)"
	case "key_missing":
		return "Provide either a key or a key name"
	case "message_missing":
		return "A message is required"
	case "message_too_long":
		return "Message is too long"
	case "recipients_invalid":
		return "Invalid recipient list"
	case "validation_failed":
		return "Invalid input provided"
	default:
		return "An error occurred. Please try again"
	}
}

// ValidationError represents a validation error with limited information
type ValidationError struct {
	Type    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error with sanitized message
func NewValidationError(errorType string) *ValidationError {
	return &ValidationError{
		Type:    errorType,
		Message: GetSanitizedError(errorType),
	}
}
