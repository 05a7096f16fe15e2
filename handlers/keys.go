package handlers

import (
	"context"
	"net/http"

	"github.com/Hadidomena/inqwheel/jwt_auth"
	"github.com/Hadidomena/inqwheel/validation"
	"github.com/Hadidomena/inqwheel/wheelcipher"
)

func (h *HandlerContext) SaveKeyHandler(w http.ResponseWriter, r *http.Request) {
	if h.Keys == nil {
		h.writeError(w, errNoKeybook, "")
		return
	}

	var req SaveKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateKeyName(req.Name); err != nil {
		h.writeError(w, err, "")
		return
	}
	ws, err := wheelcipher.Build(req.Key)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := h.Keys.Save(ctx, req.Name, ws.Key()); err != nil {
		h.writeError(w, err, "")
		return
	}

	subject, _ := jwt_auth.SubjectFromContext(r.Context())
	h.logger().Info("key saved", "name", req.Name, "by", subject)
	writeJSON(w, http.StatusCreated, KeyResponse{Name: req.Name, Key: ws.Key()})
}

func (h *HandlerContext) ListKeysHandler(w http.ResponseWriter, r *http.Request) {
	if h.Keys == nil {
		h.writeError(w, errNoKeybook, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	entries, err := h.Keys.List(ctx)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	keys := make([]KeyResponse, 0, len(entries))
	for _, e := range entries {
		created := e.CreatedAt
		keys = append(keys, KeyResponse{Name: e.Name, Key: e.Key, CreatedAt: &created})
	}
	writeJSON(w, http.StatusOK, keys)
}

func (h *HandlerContext) GetKeyHandler(w http.ResponseWriter, r *http.Request) {
	if h.Keys == nil {
		h.writeError(w, errNoKeybook, "")
		return
	}

	name := r.PathValue("name")
	if err := validation.ValidateKeyName(name); err != nil {
		h.writeError(w, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	key, err := h.Keys.Lookup(ctx, name)
	if err != nil {
		h.writeError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, KeyResponse{Name: name, Key: key})
}

func (h *HandlerContext) DeleteKeyHandler(w http.ResponseWriter, r *http.Request) {
	if h.Keys == nil {
		h.writeError(w, errNoKeybook, "")
		return
	}

	name := r.PathValue("name")
	if err := validation.ValidateKeyName(name); err != nil {
		h.writeError(w, err, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()
	if err := h.Keys.Delete(ctx, name); err != nil {
		h.writeError(w, err, "")
		return
	}

	subject, _ := jwt_auth.SubjectFromContext(r.Context())
	h.logger().Info("key deleted", "name", name, "by", subject)
	w.WriteHeader(http.StatusNoContent)
}
