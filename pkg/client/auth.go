package client

import (
	"context"
	"fmt"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/session"
	"net/http"
)

const (
	MePath       = "/auth/users/me/"
	RegisterPath = "/auth/users/register/"
)

func changePasswordPath(userID int64) string {
	return fmt.Sprintf("/auth/users/%d/change_password/", userID)
}

type AuthClient struct {
	gw  *Gateway
	log *logger.Logger
}

// Login exchanges credentials for a token pair and stores it.
func (c *AuthClient) Login(ctx context.Context, email, password string) (*model.LoginResult, error) {
	creds := model.Credentials{Email: email, Password: password}
	if err := model.Validate(creds); err != nil {
		return nil, err
	}

	resp, err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: TokenPath, Body: creds, SkipAuth: true})
	if err != nil {
		return nil, err
	}
	result, err := decodeObject[model.LoginResult](resp)
	if err != nil {
		return nil, apperrors.Internal("failed to decode login response", err)
	}
	if result.Access == "" || result.Refresh == "" {
		return nil, apperrors.New(apperrors.CodeServer, "login response is missing a token", resp.StatusCode)
	}

	if err := c.gw.Login(ctx, session.Tokens{Access: result.Access, Refresh: result.Refresh}, email); err != nil {
		return nil, err
	}

	if result.User == nil {
		if user, err := c.Me(ctx); err == nil {
			result.User = user
		} else {
			c.log.Debug("Logged in but profile lookup failed", "error", err)
		}
	}
	c.log.Info("Logged in", "email", email)
	return result, nil
}

// Refresh exchanges a refresh token for a new access token without touching
// the stored session.
func (c *AuthClient) Refresh(ctx context.Context, refresh string) (*model.RefreshResult, error) {
	body := model.RefreshRequest{Refresh: refresh}
	if err := model.Validate(body); err != nil {
		return nil, err
	}
	resp, err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: RefreshPath, Body: body, SkipAuth: true})
	if err != nil {
		return nil, err
	}
	result, err := decodeObject[model.RefreshResult](resp)
	if err != nil {
		return nil, apperrors.Internal("failed to decode refresh response", err)
	}
	return result, nil
}

func (c *AuthClient) Me(ctx context.Context) (*model.User, error) {
	resp, err := c.gw.GET(ctx, MePath, nil)
	if err != nil {
		return nil, err
	}
	user, err := decodeObject[model.User](resp)
	if err != nil {
		return nil, apperrors.Internal("failed to decode user profile", err)
	}
	return user, nil
}

// Register creates an account and, when the server returns tokens, logs it in.
func (c *AuthClient) Register(ctx context.Context, reg model.Registration) (*model.LoginResult, error) {
	reg = reg.Normalized()
	if err := model.Validate(reg); err != nil {
		return nil, err
	}

	resp, err := c.gw.Do(ctx, Request{Method: http.MethodPost, Path: RegisterPath, Body: reg, SkipAuth: true})
	if err != nil {
		return nil, err
	}
	result, err := decodeObject[model.LoginResult](resp)
	if err != nil {
		return nil, apperrors.Internal("failed to decode registration response", err)
	}

	if result.Access != "" && result.Refresh != "" {
		if err := c.gw.Login(ctx, session.Tokens{Access: result.Access, Refresh: result.Refresh}, reg.Email); err != nil {
			return nil, err
		}
	}
	c.log.Info("Registered account", "email", reg.Email, "role", reg.Role)
	return result, nil
}

// ChangePassword changes the password of the logged-in user. The endpoint is
// addressed by user id, which is looked up first.
func (c *AuthClient) ChangePassword(ctx context.Context, change model.PasswordChange) error {
	if err := model.Validate(change); err != nil {
		return err
	}
	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	if _, err := c.gw.POST(ctx, changePasswordPath(me.ID), change); err != nil {
		return err
	}
	c.log.Info("Password changed", "user_id", me.ID)
	return nil
}

func (c *AuthClient) Logout(ctx context.Context) error {
	return c.gw.Logout(ctx)
}

// CheckSession resolves the logged-in user. With no stored access token the
// caller is logged out. When the profile lookup fails for a reason other than
// an ended session, one explicit refresh is attempted before giving up.
func (c *AuthClient) CheckSession(ctx context.Context) (*model.User, error) {
	tokens, err := c.gw.Session(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to read session", err)
	}
	if tokens.Access == "" {
		return nil, apperrors.LoggedOut(nil)
	}

	user, err := c.Me(ctx)
	if err == nil {
		return user, nil
	}
	if apperrors.IsLoggedOut(err) || tokens.Refresh == "" {
		return nil, err
	}

	c.log.Debug("Profile lookup failed, trying an explicit refresh", "error", err)
	if _, err := c.gw.ForceRefresh(ctx); err != nil {
		return nil, err
	}
	return c.Me(ctx)
}
