// Package session persists the access/refresh token pair between runs.
package session

import (
	"context"
	"errors"
)

// Storage keys, shared by every backend.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

type Tokens struct {
	Access  string `json:"accessToken" bson:"accessToken"`
	Refresh string `json:"refreshToken" bson:"refreshToken"`
}

// LoggedIn is true only when both halves of the pair are present.
func (t Tokens) LoggedIn() bool {
	return t.Access != "" && t.Refresh != ""
}

// ErrNoSession is returned by SetAccess when no refresh token is stored.
var ErrNoSession = errors.New("no session to update")

// Store holds at most one token pair. Load returns zero Tokens when nothing
// is stored. SetAccess only replaces the access half of a stored pair and
// never creates one.
type Store interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	SetAccess(ctx context.Context, access string) error
	Clear(ctx context.Context) error
}
