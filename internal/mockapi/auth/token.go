package auth

import (
	"errors"
	"fmt"
	"hoteldesk/pkg/model"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken   = errors.New("token is invalid or expired")
	ErrWrongTokenType = errors.New("token has wrong type")
)

// Claims is the payload of both token kinds. token_type tells them apart.
type Claims struct {
	UserID    int64      `json:"user_id"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	TokenType string     `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access/refresh pairs.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and verifying.
func (ti *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	ti.now = now
	return ti
}

// IssuePair returns a fresh access and refresh token for the user.
func (ti *TokenIssuer) IssuePair(user model.User) (string, string, error) {
	access, err := ti.issue(user, TokenTypeAccess, ti.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := ti.issue(user, TokenTypeRefresh, ti.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated.
func (ti *TokenIssuer) Refresh(refresh string) (string, *Claims, error) {
	claims, err := ti.Parse(refresh, TokenTypeRefresh)
	if err != nil {
		return "", nil, err
	}
	user := model.User{ID: claims.UserID, Email: claims.Email, Role: claims.Role}
	access, err := ti.issue(user, TokenTypeAccess, ti.accessTTL)
	if err != nil {
		return "", nil, err
	}
	return access, claims, nil
}

// Parse verifies the signature, expiry and token type.
func (ti *TokenIssuer) Parse(token, tokenType string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (ti *TokenIssuer) issue(user model.User, tokenType string, ttl time.Duration) (string, error) {
	now := ti.now()
	claims := &Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
}
