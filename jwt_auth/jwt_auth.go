package jwt_auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer          = "inqwheel"
	MinSecretLength = 32
	refreshWindow   = time.Hour
)

// Scopes granted by a token, space separated in the scope claim.
const (
	ScopeKeys = "keys" // read and manage the keybook, use stored keys by name
	ScopeSend = "send" // mail encoded messages
)

// DefaultScopes is what `inqwheel token` grants unless told otherwise.
const DefaultScopes = ScopeKeys + " " + ScopeSend

type claimsContextKey struct{}

// Claims represents the JWT claims
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// HasScope reports whether scope is one of the space-separated scopes granted.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// Authority signs and checks API bearer tokens with an HS256 secret.
type Authority struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthority returns an Authority for secret, which must be at least
// MinSecretLength characters. A zero ttl means one hour.
func NewAuthority(secret string, ttl time.Duration) (*Authority, error) {
	if secret == "" {
		return nil, errors.New("JWT secret not set")
	}
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("JWT secret must be at least %d characters long", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Authority{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TokenExpiration returns the lifetime of issued tokens.
func (a *Authority) TokenExpiration() time.Duration {
	return a.ttl
}

// GenerateToken issues a token for subject, typically a correspondent name.
func (a *Authority) GenerateToken(subject, scope string) (string, error) {
	if subject == "" {
		return "", errors.New("token subject cannot be empty")
	}

	now := a.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken validates a JWT token and returns the claims
func (a *Authority) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// RefreshToken issues a fresh token when the current one expires within the hour.
func (a *Authority) RefreshToken(tokenString string) (string, error) {
	claims, err := a.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	if claims.ExpiresAt.Time.Sub(a.now()) > refreshWindow {
		return "", errors.New("token does not need refresh yet")
	}

	return a.GenerateToken(claims.Subject, claims.Scope)
}

// Middleware rejects requests without a valid "Authorization: Bearer" token
// and stores the token claims in the request context.
func (a *Authority) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			WriteUnauthorized(w)
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			WriteUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalMiddleware lets requests without an Authorization header through
// anonymously. A header that is present must carry a valid token.
func (a *Authority) OptionalMiddleware(next http.Handler) http.Handler {
	authenticated := a.Middleware(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		authenticated.ServeHTTP(w, r)
	})
}

// RequireScope is Middleware plus a 403 for tokens that do not grant scope.
func (a *Authority) RequireScope(scope string, next http.Handler) http.Handler {
	return a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := ClaimsFromContext(r.Context())
		if !claims.HasScope(scope) {
			WriteForbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// ClaimsFromContext returns the claims stored by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*Claims)
	return claims, ok
}

// SubjectFromContext returns the token subject stored by Middleware.
func SubjectFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return claims.Subject, true
}

func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="inqwheel"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"message":"Unauthorized"}`))
}

func WriteForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	w.Write([]byte(`{"message":"Token does not grant access to this resource"}`))
}
