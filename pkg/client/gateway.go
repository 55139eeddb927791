package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/events"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/session"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	TokenPath   = "/auth/token/"
	RefreshPath = "/auth/token/refresh/"

	HeaderRequestID = "X-Request-ID"
)

// Request describes one API call. SkipAuth sends the call without a bearer
// token and bypasses the refresh-and-retry handling; the auth endpoints use it.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     any
	SkipAuth bool
}

type Response struct {
	*http.Response
	Body      []byte
	RequestID string
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// Gateway sends API calls with the stored access token. A 401 on a call that
// has not been retried triggers one refresh and exactly one retry; when the
// refresh cannot happen the session is cleared and the caller gets a
// CodeLoggedOut error.
type Gateway struct {
	baseURL     string
	httpClient  *http.Client
	store       session.Store
	log         *logger.Logger
	publisher   events.Publisher
	profile     string
	onLoggedOut func(cause error)

	// generation changes whenever the session is replaced or ended through
	// this gateway. Writes hold refreshMu.
	refreshMu  sync.Mutex
	generation atomic.Uint64
}

func NewGateway(baseURL string, store session.Store, log *logger.Logger, opts ...Option) *Gateway {
	o := buildOptions(opts)
	return newGateway(baseURL, store, log, o)
}

func newGateway(baseURL string, store session.Store, log *logger.Logger, o *options) *Gateway {
	return &Gateway{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  o.httpClient,
		store:       store,
		log:         log.Component("gateway"),
		publisher:   o.publisher,
		profile:     o.profile,
		onLoggedOut: o.onLoggedOut,
	}
}

func (g *Gateway) BaseURL() string {
	return g.baseURL
}

func (g *Gateway) GET(ctx context.Context, path string, query url.Values) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

func (g *Gateway) POST(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

func (g *Gateway) PUT(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (g *Gateway) PATCH(ctx context.Context, path string, body any) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (g *Gateway) DELETE(ctx context.Context, path string) (*Response, error) {
	return g.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do sends req. Non-2xx responses come back as an AppError built from the
// response body, alongside the response itself.
func (g *Gateway) Do(ctx context.Context, req Request) (*Response, error) {
	var access string
	gen := g.generation.Load()
	if !req.SkipAuth {
		tokens, err := g.store.Load(ctx)
		if err != nil {
			return nil, apperrors.Internal("failed to read session", err)
		}
		access = tokens.Access
	}

	resp, err := g.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.SkipAuth {
		return g.check(resp)
	}

	g.log.Info("Access token rejected, refreshing",
		"method", req.Method,
		"path", req.Path,
		"request_id", resp.RequestID,
	)
	fresh, err := g.refresh(ctx, access, gen, false)
	if err != nil {
		return nil, err
	}

	// Retried once. A second 401 is returned as is.
	resp, err = g.send(ctx, req, fresh)
	if err != nil {
		return nil, err
	}
	return g.check(resp)
}

// ForceRefresh exchanges the stored refresh token even when the access token
// has not been rejected yet. Failure ends the session.
func (g *Gateway) ForceRefresh(ctx context.Context) (string, error) {
	return g.refresh(ctx, "", g.generation.Load(), true)
}

// refresh serialises refreshes. gen is the session generation the caller's
// token was read under; when the session has moved on since, the caller
// reuses the current token or learns the session is gone, without another
// exchange and without a second logged-out signal.
func (g *Gateway) refresh(ctx context.Context, stale string, gen uint64, force bool) (string, error) {
	g.refreshMu.Lock()
	access, ended, err := g.refreshLocked(ctx, stale, gen, force)
	g.refreshMu.Unlock()

	if ended != nil {
		g.notifyLoggedOut(ended)
	}
	return access, err
}

// refreshLocked runs with refreshMu held. A non-nil ended means this call
// ended the session and the logged-out handler is still owed.
func (g *Gateway) refreshLocked(ctx context.Context, stale string, gen uint64, force bool) (access string, ended, err error) {
	tokens, err := g.store.Load(ctx)
	if err != nil {
		return "", nil, apperrors.Internal("failed to read session", err)
	}
	if !force {
		if tokens.LoggedIn() && (tokens.Access != stale || g.generation.Load() != gen) {
			g.log.Debug("Access token already refreshed by another call")
			return tokens.Access, nil, nil
		}
		if !tokens.LoggedIn() && (g.generation.Load() != gen || (stale != "" && tokens == session.Tokens{})) {
			return "", nil, apperrors.LoggedOut(apperrors.Unauthorized("session already ended"))
		}
	}
	if tokens.Refresh == "" {
		cause := apperrors.Unauthorized("no refresh token available")
		return "", cause, g.endSession(ctx, cause)
	}

	result, err := g.exchange(ctx, tokens.Refresh)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", nil, err
		}
		return "", err, g.endSession(ctx, err)
	}

	// The store may be shared with other processes.
	current, err := g.store.Load(ctx)
	if err != nil {
		return "", nil, apperrors.Internal("failed to read session", err)
	}
	if current.Refresh != tokens.Refresh {
		if current.LoggedIn() {
			return current.Access, nil, nil
		}
		return "", nil, apperrors.LoggedOut(apperrors.Unauthorized("session ended during refresh"))
	}

	g.generation.Add(1)
	if result.Refresh != "" {
		err = g.store.Save(ctx, session.Tokens{Access: result.Access, Refresh: result.Refresh})
	} else {
		err = g.store.SetAccess(ctx, result.Access)
	}
	if errors.Is(err, session.ErrNoSession) {
		return "", nil, apperrors.LoggedOut(apperrors.Unauthorized("session ended during refresh"))
	}
	if err != nil {
		return "", nil, apperrors.Internal("failed to store refreshed token", err)
	}

	g.log.Info("Access token refreshed", "rotated", result.Refresh != "")
	g.publish(ctx, events.New(events.SessionRefreshed, g.profile))
	return result.Access, nil, nil
}

func (g *Gateway) exchange(ctx context.Context, refresh string) (*model.RefreshResult, error) {
	resp, err := g.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     RefreshPath,
		Body:     model.RefreshRequest{Refresh: refresh},
		SkipAuth: true,
	})
	if err != nil {
		return nil, err
	}

	var result model.RefreshResult
	if err := resp.DecodeJSON(&result); err != nil {
		return nil, apperrors.Internal("failed to decode refresh response", err)
	}
	if result.Access == "" {
		return nil, apperrors.New(apperrors.CodeServer, "refresh response carried no access token", resp.StatusCode)
	}
	return &result, nil
}

// endSession clears the store after an unrecoverable refresh failure and
// publishes the expiry. It runs with refreshMu held; the caller notifies the
// logged-out handler after unlocking.
func (g *Gateway) endSession(ctx context.Context, cause error) error {
	g.generation.Add(1)
	if err := g.store.Clear(context.WithoutCancel(ctx)); err != nil {
		g.log.Error("Failed to clear session", "error", err)
	}
	g.log.Warn("Session expired, login required", "reason", cause)

	ev := events.New(events.SessionExpired, g.profile)
	ev.Reason = cause.Error()
	g.publish(ctx, ev)
	return apperrors.LoggedOut(cause)
}

func (g *Gateway) notifyLoggedOut(cause error) {
	if g.onLoggedOut != nil {
		g.onLoggedOut(cause)
	}
}

// Login stores a freshly issued pair. It waits for any refresh in flight.
func (g *Gateway) Login(ctx context.Context, tokens session.Tokens, email string) error {
	g.refreshMu.Lock()
	g.generation.Add(1)
	err := g.store.Save(ctx, tokens)
	g.refreshMu.Unlock()
	if err != nil {
		return apperrors.Internal("failed to store session", err)
	}

	ev := events.New(events.SessionLogin, g.profile)
	ev.Email = email
	g.publish(ctx, ev)
	return nil
}

// Logout clears the session and notifies listeners. It waits for any refresh
// in flight, so a refreshed token is never written back after it.
func (g *Gateway) Logout(ctx context.Context) error {
	g.refreshMu.Lock()
	g.generation.Add(1)
	err := g.store.Clear(ctx)
	g.refreshMu.Unlock()
	if err != nil {
		return apperrors.Internal("failed to clear session", err)
	}

	g.log.Info("Logged out")
	g.publish(ctx, events.New(events.SessionLogout, g.profile))
	g.notifyLoggedOut(nil)
	return nil
}

func (g *Gateway) Session(ctx context.Context) (session.Tokens, error) {
	return g.store.Load(ctx)
}

func (g *Gateway) publish(ctx context.Context, ev events.Event) {
	if g.publisher == nil {
		return
	}
	if err := g.publisher.Publish(context.WithoutCancel(ctx), ev); err != nil {
		g.log.Warn("Failed to publish session event", "event_type", ev.Type, "error", err)
	}
}

func (g *Gateway) send(ctx context.Context, req Request, access string) (*Response, error) {
	target := g.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.Internal("failed to marshal request body", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, apperrors.Internal("failed to create request", err)
	}

	requestID := uuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if access != "" && !req.SkipAuth {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.log.Debug("Request failed", "method", req.Method, "path", req.Path, "request_id", requestID, "error", err)
		return nil, apperrors.Transport(req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Transport(req.Method, req.Path, fmt.Errorf("failed to read response body: %w", err))
	}

	g.log.Debug("Request completed",
		"method", req.Method,
		"path", req.Path,
		"request_id", requestID,
		"status", resp.StatusCode,
	)
	return &Response{Response: resp, Body: respBody, RequestID: requestID}, nil
}

func (g *Gateway) check(resp *Response) (*Response, error) {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	return resp, apperrors.FromResponse(resp.StatusCode, resp.Body)
}

// decodeList accepts a bare JSON array or a paginated {"results": [...]} or
// {"data": [...]} envelope.
func decodeList[T any](resp *Response) ([]T, error) {
	trimmed := bytes.TrimSpace(resp.Body)
	out := []T{}
	if len(trimmed) == 0 {
		return out, nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("failed to decode list: %w", err)
		}
		return out, nil
	}

	var envelope struct {
		Results *[]T `json:"results"`
		Data    *[]T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode list envelope: %w", err)
	}
	switch {
	case envelope.Results != nil:
		return *envelope.Results, nil
	case envelope.Data != nil:
		return *envelope.Data, nil
	default:
		return nil, errors.New("response is neither a list nor a paginated envelope")
	}
}

func decodeObject[T any](resp *Response) (*T, error) {
	var out T
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &out, nil
}
