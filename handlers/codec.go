package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Hadidomena/inqwheel/jwt_auth"
	"github.com/Hadidomena/inqwheel/keybook"
	"github.com/Hadidomena/inqwheel/message_auth"
	"github.com/Hadidomena/inqwheel/validation"
	"github.com/Hadidomena/inqwheel/wheelcipher"
)

var (
	errNoKeybook    = errors.New("keybook not configured")
	errUnauthorized = errors.New("stored keys need a bearer token")
	errForbidden    = errors.New("token does not grant the keys scope")
)

func (h *HandlerContext) EncodeHandler(w http.ResponseWriter, r *http.Request) {
	var req CodecRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ws, err := h.resolveWheels(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	if err := validation.ValidateMessage(req.Message); err != nil {
		h.writeError(w, err, "")
		return
	}

	res, err := ws.Encode(req.Message, h.codecOptions(req.Strict)...)
	if err != nil {
		h.writeError(w, err, res.Text)
		return
	}

	resp := CodecResponse{Text: res.Text, Skipped: skippedTokens(res.Skipped)}
	if len(h.SigningSecret) > 0 {
		mac, err := message_auth.GenerateMessageMAC(req.Message, h.SigningSecret)
		if err != nil {
			h.writeError(w, err, "")
			return
		}
		resp.MAC = mac
		resp.Tag = message_auth.ShortTag(mac)
	}

	h.logger().Debug("encoded message", "letters", len(res.Text)/3, "skipped", len(res.Skipped))
	writeJSON(w, http.StatusOK, resp)
}

func (h *HandlerContext) DecodeHandler(w http.ResponseWriter, r *http.Request) {
	var req CodecRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ws, err := h.resolveWheels(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	if err := validation.ValidateMessage(req.Message); err != nil {
		h.writeError(w, err, "")
		return
	}

	res, err := ws.Decode(req.Message, h.codecOptions(req.Strict)...)
	if err != nil {
		h.writeError(w, err, res.Text)
		return
	}

	resp := CodecResponse{Text: res.Text, Skipped: skippedTokens(res.Skipped)}
	if req.MAC != "" && len(h.SigningSecret) > 0 {
		ok, err := message_auth.VerifyMessageMAC(res.Text, req.MAC, h.SigningSecret)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: err.Error()})
			return
		}
		resp.Verified = &ok
	}

	h.logger().Debug("decoded message", "letters", len(res.Text), "skipped", len(res.Skipped))
	writeJSON(w, http.StatusOK, resp)
}

func (h *HandlerContext) WheelsHandler(w http.ResponseWriter, r *http.Request) {
	var req CodecRequest
	if !decodeBody(w, r, &req) {
		return
	}

	ws, err := h.resolveWheels(r.Context(), req)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	alphabet := ws.Alphabet()
	resp := WheelsResponse{
		Alphabet: alphabet[:],
		Table:    ws.Render(),
	}
	// Stored keys are only ever returned by GET /api/keys/{name}.
	if req.Key != "" {
		resp.Key = ws.Key()
	}
	for n := 1; n <= wheelcipher.CodeWheels; n++ {
		wheel := ws.CodeWheel(n)
		resp.Wheels = append(resp.Wheels, wheel[:])
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolveWheels builds the wheels from the inline key or the named keybook entry.
func (h *HandlerContext) resolveWheels(ctx context.Context, req CodecRequest) (*wheelcipher.WheelSet, error) {
	key := req.Key
	if key == "" {
		if req.KeyName == "" {
			return nil, validation.NewValidationError("key_missing")
		}
		if err := validation.ValidateKeyName(req.KeyName); err != nil {
			return nil, err
		}
		if h.Auth != nil {
			claims, ok := jwt_auth.ClaimsFromContext(ctx)
			if !ok {
				return nil, errUnauthorized
			}
			if !claims.HasScope(jwt_auth.ScopeKeys) {
				return nil, errForbidden
			}
		}
		if h.Keys == nil {
			return nil, errNoKeybook
		}

		ctx, cancel := context.WithTimeout(ctx, storeTimeout)
		defer cancel()
		stored, err := h.Keys.Lookup(ctx, req.KeyName)
		if err != nil {
			return nil, err
		}
		key = stored
	}
	return wheelcipher.Build(key)
}

func skippedTokens(diags []wheelcipher.Diagnostic) []SkippedToken {
	out := make([]SkippedToken, 0, len(diags))
	for _, d := range diags {
		out = append(out, SkippedToken{Position: d.Position, Token: d.Token, Reason: d.Kind.Error()})
	}
	return out
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: validation.GetSanitizedError("validation_failed")})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an error to a status code. partial is the text produced
// before a strict-mode failure.
func (h *HandlerContext) writeError(w http.ResponseWriter, err error, partial string) {
	var ve *validation.ValidationError
	var ke *wheelcipher.KeyError
	var diag wheelcipher.Diagnostic

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: ve.Message})
	case errors.As(err, &ke):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: ke.Error()})
	case errors.As(err, &diag):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Message: diag.Error(), Text: partial})
	case errors.Is(err, wheelcipher.ErrEmptyMessage):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
	case errors.Is(err, keybook.ErrKeyNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Message: "Key not found"})
	case errors.Is(err, keybook.ErrKeyExists):
		writeJSON(w, http.StatusConflict, ErrorResponse{Message: "A key with that name already exists"})
	case errors.Is(err, errUnauthorized):
		jwt_auth.WriteUnauthorized(w)
	case errors.Is(err, errForbidden):
		jwt_auth.WriteForbidden(w)
	case errors.Is(err, errNoKeybook):
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: "Key storage is not configured"})
	default:
		h.logger().Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: validation.GetSanitizedError("")})
	}
}
