package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Hadidomena/inqwheel/jwt_auth"
	"github.com/Hadidomena/inqwheel/keybook"
	"github.com/Hadidomena/inqwheel/wheelcipher"
	"github.com/charmbracelet/log"
)

const (
	maxBodyBytes = 64 << 10
	storeTimeout = 5 * time.Second
)

// KeyStore is the subset of *keybook.Store the API needs.
type KeyStore interface {
	Save(ctx context.Context, name, key string) error
	Lookup(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]keybook.Entry, error)
	Delete(ctx context.Context, name string) error
}

// Mailer delivers an encoded message. *email.Mailer satisfies it.
type Mailer interface {
	SendEncoded(recipients []string, subject, encoded, tag string) error
}

// Authenticator wraps routes with bearer-token checks. *jwt_auth.Authority
// satisfies it.
type Authenticator interface {
	RequireScope(scope string, next http.Handler) http.Handler
	OptionalMiddleware(next http.Handler) http.Handler
}

// HandlerContext holds the dependencies shared by every handler. Nil Keys or
// Mailer disable the routes that need them; a nil Auth leaves every route open.
// With Auth set, encode, decode and wheels stay open for inline keys, but a
// key_name needs a token granting the keys scope.
type HandlerContext struct {
	Keys          KeyStore
	Mailer        Mailer
	Auth          Authenticator
	Random        wheelcipher.RandomSource
	SigningSecret []byte
	Strict        bool
	Logger        *log.Logger
}

// Routes returns the API mux.
func (h *HandlerContext) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/encode", h.identify(h.EncodeHandler))
	mux.Handle("POST /api/decode", h.identify(h.DecodeHandler))
	mux.Handle("POST /api/wheels", h.identify(h.WheelsHandler))

	mux.Handle("POST /api/keys", h.protect(jwt_auth.ScopeKeys, h.SaveKeyHandler))
	mux.Handle("GET /api/keys", h.protect(jwt_auth.ScopeKeys, h.ListKeysHandler))
	mux.Handle("GET /api/keys/{name}", h.protect(jwt_auth.ScopeKeys, h.GetKeyHandler))
	mux.Handle("DELETE /api/keys/{name}", h.protect(jwt_auth.ScopeKeys, h.DeleteKeyHandler))
	mux.Handle("POST /api/send", h.protect(jwt_auth.ScopeSend, h.SendHandler))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func (h *HandlerContext) protect(scope string, fn http.HandlerFunc) http.Handler {
	if h.Auth == nil {
		return fn
	}
	return h.Auth.RequireScope(scope, fn)
}

// identify reads a bearer token when one is sent, for routes that also serve
// anonymous callers.
func (h *HandlerContext) identify(fn http.HandlerFunc) http.Handler {
	if h.Auth == nil {
		return fn
	}
	return h.Auth.OptionalMiddleware(fn)
}

func (h *HandlerContext) logger() *log.Logger {
	if h.Logger == nil {
		return log.Default()
	}
	return h.Logger
}

func (h *HandlerContext) codecOptions(strict *bool) []wheelcipher.Option {
	var opts []wheelcipher.Option
	if h.Random != nil {
		opts = append(opts, wheelcipher.WithRandom(h.Random))
	}
	if (strict != nil && *strict) || (strict == nil && h.Strict) {
		opts = append(opts, wheelcipher.WithStrict())
	}
	return opts
}
