package client

import (
	"context"
	"encoding/json"
	"errors"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/events"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/session"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, handler http.Handler, tokens session.Tokens, opts ...Option) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore(tokens)
	return New(srv.URL, store, logger.Discard(), opts...), store
}

// refreshingAPI serves /rooms/ only to the bearer token "fresh" and counts
// calls to each endpoint.
type refreshingAPI struct {
	roomHits    atomic.Int32
	refreshHits atomic.Int32
	refreshFunc func(w http.ResponseWriter, r *http.Request)
}

func (a *refreshingAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/", func(w http.ResponseWriter, r *http.Request) {
		a.roomHits.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type", "code": "token_not_valid"})
			return
		}
		writeJSON(w, http.StatusOK, []any{})
	})
	mux.HandleFunc("POST "+RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		a.refreshHits.Add(1)
		if a.refreshFunc != nil {
			a.refreshFunc(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	})
	return mux
}

func TestGateway_AttachesAccessToken(t *testing.T) {
	var gotAuth, gotRequestID string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/users/me/", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(HeaderRequestID)
		writeJSON(w, http.StatusOK, map[string]any{"id": 1})
	})

	c, _ := newTestClient(t, mux, session.Tokens{Access: "acc-1", Refresh: "ref-1"})
	if _, err := c.Gateway.GET(context.Background(), MePath, nil); err != nil {
		t.Fatalf("GET() error = %v", err)
	}
	if gotAuth != "Bearer acc-1" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer acc-1")
	}
	if gotRequestID == "" {
		t.Error("expected an X-Request-ID header")
	}
}

func TestGateway_NoTokenNoAuthorizationHeader(t *testing.T) {
	var hadAuth bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/", func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, []any{})
	})

	c, _ := newTestClient(t, mux, session.Tokens{})
	if _, err := c.Gateway.GET(context.Background(), RoomsPath, nil); err != nil {
		t.Fatalf("GET() error = %v", err)
	}
	if hadAuth {
		t.Error("request without a stored token must not carry Authorization")
	}
}

func TestGateway_RefreshesOnceAndRetries(t *testing.T) {
	api := &refreshingAPI{}
	pub := &recordingPublisher{}
	c, store := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref"}, WithPublisher(pub))

	if _, err := c.Gateway.GET(context.Background(), RoomsPath, nil); err != nil {
		t.Fatalf("GET() error = %v", err)
	}
	if got := api.refreshHits.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := api.roomHits.Load(); got != 2 {
		t.Errorf("room calls = %d, want 2", got)
	}

	tokens, _ := store.Load(context.Background())
	if tokens.Access != "fresh" || tokens.Refresh != "ref" {
		t.Errorf("stored tokens = %+v, want access fresh and refresh ref", tokens)
	}
	if types := pub.types(); len(types) != 1 || types[0] != events.SessionRefreshed {
		t.Errorf("published %v, want [session.refreshed]", types)
	}
}

func TestGateway_SendsRefreshTokenInBody(t *testing.T) {
	api := &refreshingAPI{}
	var body map[string]string
	var hadAuth bool
	api.refreshFunc = func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	}
	c, _ := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref-42"})

	if _, err := c.Gateway.GET(context.Background(), RoomsPath, nil); err != nil {
		t.Fatalf("GET() error = %v", err)
	}
	if body["refresh"] != "ref-42" {
		t.Errorf("refresh body = %v, want refresh ref-42", body)
	}
	if hadAuth {
		t.Error("refresh call must not carry a bearer token")
	}
}

func TestGateway_SecondUnauthorizedIsNotRefreshedAgain(t *testing.T) {
	mux := http.NewServeMux()
	var roomHits, refreshHits atomic.Int32
	mux.HandleFunc("GET /rooms/", func(w http.ResponseWriter, r *http.Request) {
		roomHits.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	})
	mux.HandleFunc("POST "+RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		refreshHits.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	})

	c, store := newTestClient(t, mux, session.Tokens{Access: "stale", Refresh: "ref"})
	_, err := c.Gateway.GET(context.Background(), RoomsPath, nil)
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("GET() error = %v, want unauthorized", err)
	}
	if apperrors.IsLoggedOut(err) {
		t.Error("a rejected retry is not a failed refresh and must not log out")
	}
	if got := refreshHits.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if got := roomHits.Load(); got != 2 {
		t.Errorf("room calls = %d, want 2", got)
	}
	if tokens, _ := store.Load(context.Background()); !tokens.LoggedIn() {
		t.Errorf("session should survive, got %+v", tokens)
	}
}

func TestGateway_RefreshFailureClearsSession(t *testing.T) {
	api := &refreshingAPI{refreshFunc: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
	}}
	pub := &recordingPublisher{}
	var loggedOut []error
	c, store := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "expired"},
		WithPublisher(pub),
		WithLoggedOutHandler(func(cause error) { loggedOut = append(loggedOut, cause) }),
	)

	_, err := c.Gateway.GET(context.Background(), RoomsPath, nil)
	if !apperrors.IsLoggedOut(err) {
		t.Fatalf("GET() error = %v, want logged out", err)
	}
	if !apperrors.IsUnauthorized(errors.Unwrap(err)) {
		t.Errorf("logged-out error should wrap the refresh rejection, got %v", errors.Unwrap(err))
	}

	tokens, _ := store.Load(context.Background())
	if tokens.Access != "" || tokens.Refresh != "" {
		t.Errorf("tokens after failed refresh = %+v, want both cleared", tokens)
	}
	if len(loggedOut) != 1 || loggedOut[0] == nil {
		t.Errorf("logged-out handler calls = %v, want one call with a cause", loggedOut)
	}
	if got := api.roomHits.Load(); got != 1 {
		t.Errorf("room calls = %d, want 1 (no retry after failed refresh)", got)
	}
	if types := pub.types(); len(types) != 1 || types[0] != events.SessionExpired {
		t.Errorf("published %v, want [session.expired]", types)
	}
}

func TestGateway_RefreshTransportFailureClearsSession(t *testing.T) {
	api := &refreshingAPI{refreshFunc: func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("response writer cannot be hijacked")
			return
		}
		conn, _, _ := hj.Hijack()
		conn.Close()
	}}
	c, store := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref"})

	_, err := c.Gateway.GET(context.Background(), RoomsPath, nil)
	if !apperrors.IsLoggedOut(err) {
		t.Fatalf("GET() error = %v, want logged out", err)
	}
	if tokens, _ := store.Load(context.Background()); tokens.LoggedIn() {
		t.Errorf("session should be cleared, got %+v", tokens)
	}
}

func TestGateway_MissingRefreshTokenLogsOutWithoutCallingRefresh(t *testing.T) {
	api := &refreshingAPI{}
	c, store := newTestClient(t, api.handler(), session.Tokens{Access: "stale"})

	_, err := c.Gateway.GET(context.Background(), RoomsPath, nil)
	if !apperrors.IsLoggedOut(err) {
		t.Fatalf("GET() error = %v, want logged out", err)
	}
	if got := api.refreshHits.Load(); got != 0 {
		t.Errorf("refresh calls = %d, want 0", got)
	}
	if tokens, _ := store.Load(context.Background()); tokens.Access != "" {
		t.Errorf("access token should be cleared, got %+v", tokens)
	}
}

func TestGateway_StoresRotatedRefreshToken(t *testing.T) {
	api := &refreshingAPI{refreshFunc: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh", "refresh": "ref-2"})
	}}
	c, store := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref-1"})

	if _, err := c.Gateway.GET(context.Background(), RoomsPath, nil); err != nil {
		t.Fatalf("GET() error = %v", err)
	}
	tokens, _ := store.Load(context.Background())
	if tokens.Refresh != "ref-2" {
		t.Errorf("refresh token = %q, want rotated ref-2", tokens.Refresh)
	}
}

func TestGateway_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	api := &refreshingAPI{refreshFunc: func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	}}
	c, _ := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref"})

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Gateway.GET(context.Background(), RoomsPath, nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("GET() error = %v", err)
	}
	if got := api.refreshHits.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestGateway_ConcurrentRefreshFailureEndsSessionOnce(t *testing.T) {
	const callers = 4
	var roomHits, refreshHits atomic.Int32
	allSent := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rooms/", func(w http.ResponseWriter, r *http.Request) {
		if roomHits.Add(1) == callers {
			close(allSent)
		}
		<-allSent
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Given token not valid for any token type", "code": "token_not_valid"})
	})
	mux.HandleFunc("POST "+RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		refreshHits.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired", "code": "token_not_valid"})
	})

	pub := &recordingPublisher{}
	var mu sync.Mutex
	var signals int
	c, store := newTestClient(t, mux, session.Tokens{Access: "stale", Refresh: "expired"},
		WithPublisher(pub),
		WithLoggedOutHandler(func(error) {
			mu.Lock()
			signals++
			mu.Unlock()
		}),
	)

	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Gateway.GET(context.Background(), RoomsPath, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if !apperrors.IsLoggedOut(err) {
			t.Errorf("GET() error = %v, want logged out", err)
		}
	}
	if got := refreshHits.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
	if signals != 1 {
		t.Errorf("logged-out handler calls = %d, want 1", signals)
	}
	if types := pub.types(); len(types) != 1 || types[0] != events.SessionExpired {
		t.Errorf("published %v, want one session.expired", types)
	}
	if tokens, _ := store.Load(context.Background()); tokens != (session.Tokens{}) {
		t.Errorf("tokens = %+v, want cleared", tokens)
	}
}

func TestGateway_LogoutWaitsForRefreshInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	api := &refreshingAPI{refreshFunc: func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(entered) })
		<-release
		writeJSON(w, http.StatusOK, map[string]string{"access": "fresh"})
	}}
	c, store := newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref"})
	ctx := context.Background()

	getDone := make(chan error, 1)
	go func() {
		_, err := c.Gateway.GET(ctx, RoomsPath, nil)
		getDone <- err
	}()
	<-entered

	logoutDone := make(chan error, 1)
	go func() { logoutDone <- c.Auth.Logout(ctx) }()
	select {
	case err := <-logoutDone:
		t.Fatalf("Logout() returned (%v) while a refresh was in flight", err)
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	if err := <-getDone; err != nil {
		t.Errorf("GET() error = %v", err)
	}
	if err := <-logoutDone; err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if tokens, _ := store.Load(ctx); tokens != (session.Tokens{}) {
		t.Fatalf("tokens after logout = %+v, want none", tokens)
	}

	// Nothing left to send or refresh with.
	if _, err := c.Gateway.GET(ctx, RoomsPath, nil); !apperrors.IsLoggedOut(err) {
		t.Errorf("GET() after logout error = %v, want logged out", err)
	}
	if got := api.refreshHits.Load(); got != 1 {
		t.Errorf("refresh calls = %d, want 1", got)
	}
}

func TestGateway_LoggedOutHandlerMayCallGateway(t *testing.T) {
	api := &refreshingAPI{refreshFunc: func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
	}}
	var c *Client
	c, _ = newTestClient(t, api.handler(), session.Tokens{Access: "stale", Refresh: "ref"},
		WithLoggedOutHandler(func(cause error) {
			if cause != nil {
				_ = c.Gateway.Logout(context.Background())
			}
		}),
	)

	done := make(chan error, 1)
	go func() {
		_, err := c.Gateway.GET(context.Background(), RoomsPath, nil)
		done <- err
	}()
	select {
	case err := <-done:
		if !apperrors.IsLoggedOut(err) {
			t.Errorf("GET() error = %v, want logged out", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("GET() did not return; the logged-out handler blocked on the gateway")
	}
}

func TestGateway_SkipAuthBypassesRefresh(t *testing.T) {
	mux := http.NewServeMux()
	var refreshHits atomic.Int32
	mux.HandleFunc("POST "+TokenPath, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
	})
	mux.HandleFunc("POST "+RefreshPath, func(w http.ResponseWriter, r *http.Request) {
		refreshHits.Add(1)
	})

	c, store := newTestClient(t, mux, session.Tokens{Access: "a", Refresh: "r"})
	_, err := c.Gateway.Do(context.Background(), Request{Method: http.MethodPost, Path: TokenPath, Body: map[string]string{}, SkipAuth: true})

	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeUnauthorized {
		t.Fatalf("Do() error = %v, want unauthorized", err)
	}
	if appErr.Message != "No active account found with the given credentials" {
		t.Errorf("Message = %q", appErr.Message)
	}
	if refreshHits.Load() != 0 {
		t.Error("auth endpoints must not trigger a refresh")
	}
	if tokens, _ := store.Load(context.Background()); !tokens.LoggedIn() {
		t.Error("session must be untouched")
	}
}

func TestGateway_ErrorMapping(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /broken/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
	})
	mux.HandleFunc("GET /missing/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	c, _ := newTestClient(t, mux, session.Tokens{})

	tests := []struct {
		path   string
		code   string
		status int
	}{
		{"/broken/", apperrors.CodeServer, http.StatusInternalServerError},
		{"/missing/", apperrors.CodeNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := c.Gateway.GET(context.Background(), tt.path, nil)
		appErr := apperrors.AsAppError(err)
		if appErr == nil {
			t.Fatalf("GET(%s) error = %v, want AppError", tt.path, err)
		}
		if appErr.Code != tt.code || appErr.StatusCode() != tt.status {
			t.Errorf("GET(%s) = %s/%d, want %s/%d", tt.path, appErr.Code, appErr.StatusCode(), tt.code, tt.status)
		}
		if resp == nil || resp.StatusCode != tt.status {
			t.Errorf("GET(%s) should still return the response", tt.path)
		}
	}
}

func TestGateway_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gw := NewGateway(url, session.NewMemoryStore(session.Tokens{}), logger.Discard())
	_, err := gw.GET(context.Background(), RoomsPath, nil)
	if !apperrors.HasCode(err, apperrors.CodeTransport) {
		t.Errorf("GET() error = %v, want transport error", err)
	}
}

func TestGateway_Logout(t *testing.T) {
	pub := &recordingPublisher{}
	var calls int
	var cause error = errors.New("sentinel")
	c, store := newTestClient(t, http.NotFoundHandler(), session.Tokens{Access: "a", Refresh: "r"},
		WithPublisher(pub),
		WithProfile("night-shift"),
		WithLoggedOutHandler(func(err error) { calls++; cause = err }),
	)

	if err := c.Auth.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if tokens, _ := store.Load(context.Background()); tokens != (session.Tokens{}) {
		t.Errorf("tokens after logout = %+v", tokens)
	}
	if calls != 1 || cause != nil {
		t.Errorf("logged-out handler: calls=%d cause=%v, want one call with nil", calls, cause)
	}
	if len(pub.events) != 1 || pub.events[0].Type != events.SessionLogout || pub.events[0].Profile != "night-shift" {
		t.Errorf("published %+v", pub.events)
	}
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"id":1},{"id":2}]`, 2, false},
		{"drf pagination", `{"count":3,"next":null,"results":[{"id":1},{"id":2},{"id":3}]}`, 3, false},
		{"data envelope", `{"data":[{"id":1}]}`, 1, false},
		{"empty body", ``, 0, false},
		{"object without list", `{"id":1}`, 0, true},
		{"garbage", `<html>`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[map[string]any](&Response{Body: []byte(tt.body)})
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.want {
				t.Errorf("decodeList() returned %d items, want %d", len(got), tt.want)
			}
		})
	}
}
