package identity

import (
	"time"

	"github.com/dmitrijs2005/liftfield/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
)

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// identityFromToken extracts subject and email from a provider-issued ID
// token. The token is not signature-checked client-side (the provider issued
// it over TLS moments ago); an expired or unparsable token yields nil.
func identityFromToken(token string, now time.Time) *models.Identity {
	if token == "" {
		return nil
	}

	claims := &idTokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return nil
	}

	return &models.Identity{
		Email:      claims.Email,
		SubjectID:  claims.Subject,
		CapturedAt: now,
	}
}
