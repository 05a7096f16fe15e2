package handlers

import "time"

// CodecRequest is the body of /api/encode, /api/decode and /api/wheels.
// Exactly one of Key and KeyName is used; Key wins when both are set.
type CodecRequest struct {
	Key     string `json:"key,omitempty"`
	KeyName string `json:"key_name,omitempty"`
	Message string `json:"message"`
	Strict  *bool  `json:"strict,omitempty"`
	MAC     string `json:"mac,omitempty"`
}

type SkippedToken struct {
	Position int    `json:"position"`
	Token    string `json:"token"`
	Reason   string `json:"reason"`
}

type CodecResponse struct {
	Text     string         `json:"text"`
	Skipped  []SkippedToken `json:"skipped"`
	MAC      string         `json:"mac,omitempty"`
	Tag      string         `json:"tag,omitempty"`
	Verified *bool          `json:"verified,omitempty"`
}

type WheelsResponse struct {
	Key      string     `json:"key,omitempty"`
	Alphabet []string   `json:"alphabet"`
	Wheels   [][]string `json:"wheels"`
	Table    string     `json:"table"`
}

type SaveKeyRequest struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

type KeyResponse struct {
	Name      string     `json:"name"`
	Key       string     `json:"key"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type SendRequest struct {
	CodecRequest
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
}

type SendResponse struct {
	Sent int    `json:"sent"`
	Tag  string `json:"tag,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Text    string `json:"text,omitempty"`
}
