package auth

import (
	"context"
	"errors"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

var (
	ErrMissingCredential = errors.New("missing authorization token")
	ErrInvalidCredential = errors.New("invalid token")
)

// TokenVerifier is the part of the Firebase Auth client used here.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Identity is the verified caller
type Identity struct {
	UID   string
	Email string
}

// Verifier checks bearer credentials against the identity provider.
// Every call re-verifies; nothing is cached.
type Verifier struct {
	client TokenVerifier
}

// NewVerifier creates a Verifier. A nil client yields a verifier that
// rejects every credential with ErrInvalidCredential.
func NewVerifier(client TokenVerifier) *Verifier {
	return &Verifier{client: client}
}

// Verify validates a raw bearer token and returns the caller identity.
func (v *Verifier) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrMissingCredential
	}
	if v == nil || v.client == nil {
		return Identity{}, ErrInvalidCredential
	}

	decoded, err := v.client.VerifyIDToken(ctx, token)
	if err != nil || decoded == nil || decoded.UID == "" {
		return Identity{}, ErrInvalidCredential
	}

	id := Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. It returns "" when the header is absent or malformed.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
