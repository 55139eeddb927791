package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is what the client can read from an access token without the
// signing key. It is for display only and is never trusted.
type AccessClaims struct {
	UserID    string
	Email     string
	Role      string
	TokenType string
	ExpiresAt time.Time
}

func (c AccessClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// InspectAccessToken decodes the claims of a JWT access token without
// verifying its signature. Opaque tokens return an error.
func InspectAccessToken(access string) (*AccessClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return nil, fmt.Errorf("access token is not a readable JWT: %w", err)
	}

	out := &AccessClaims{
		UserID:    claimString(claims, "user_id"),
		Email:     claimString(claims, "email"),
		Role:      claimString(claims, "role"),
		TokenType: claimString(claims, "token_type"),
	}
	if out.UserID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			out.UserID = sub
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	switch v := claims[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
