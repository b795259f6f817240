// Package google validates Google ID tokens for the social login flow.
package google

import (
	"context"
	"fmt"

	"github.com/go-auth-api/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload holds the verified claims extracted from a Google ID token.
type Payload struct {
	Sub           string
	Email         string
	EmailVerified bool
	FirstName     string
	LastName      string
}

// Verifier checks Google ID tokens against a single OAuth client ID.
type Verifier struct {
	clientID string
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

// Verify validates token signature, expiry and audience, then extracts the
// profile claims. Any validation failure wraps domain.ErrUnauthorized.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	p, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	verified, _ := p.Claims["email_verified"].(bool)
	return &Payload{
		Sub:           p.Subject,
		Email:         claimStr(p.Claims, "email"),
		EmailVerified: verified,
		FirstName:     claimStr(p.Claims, "given_name"),
		LastName:      claimStr(p.Claims, "family_name"),
	}, nil
}

func claimStr(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}
