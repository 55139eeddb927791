package handler

import (
	"context"
	"encoding/json"
	"errors"
	"hoteldesk/internal/mockapi/auth"
	"hoteldesk/internal/mockapi/repository"
	"hoteldesk/pkg/app"
	"hoteldesk/pkg/client"
	"hoteldesk/pkg/config"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/session"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type standIn struct {
	server  *httptest.Server
	clock   *testClock
	tokens  *auth.TokenIssuer
	handler *Handler
}

func newStandIn(t *testing.T, mutate func(cfg *config.Config)) *standIn {
	t.Helper()

	clock := &testClock{t: time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC)}
	cfg := &config.Config{
		Port:              "0",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		HandlerTimeout:    5 * time.Second,
		IdempotencyTTL:    time.Hour,
		MaxRequestSize:    1 << 20,
		Log:               logger.Discard(),
	}
	if mutate != nil {
		mutate(cfg)
	}

	users, err := auth.NewMemoryUserRepository(bcrypt.MinCost, auth.DemoUsers()...)
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	tokens := auth.NewTokenIssuer("test-secret-0123456789", 5*time.Minute, 24*time.Hour).WithClock(clock.Now)
	h := NewHandler(users, tokens, repository.NewMemoryHotelRepository(clock.Now), cfg.Log).WithClock(clock.Now)

	application := app.NewApplication(cfg)
	application.SetApp(h, NewHealthHandler(cfg.Log, h.StoreChecks()...),
		APIPrefix+TokenPath, APIPrefix+TokenRefreshPath, APIPrefix+RegisterPath)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(func() {
		server.Close()
		application.Stop()
	})

	return &standIn{server: server, clock: clock, tokens: tokens, handler: h}
}

type fallbackRecorder struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (f *fallbackRecorder) observe(accessor string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, accessor)
	f.errs = append(f.errs, err)
}

func (f *fallbackRecorder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (s *standIn) client(store session.Store, fallbacks *fallbackRecorder, opts ...client.Option) *client.Client {
	opts = append(opts, client.WithClock(s.clock.Now), client.WithFallbackObserver(fallbacks.observe))
	return client.New(s.server.URL+APIPrefix, store, logger.Discard(), opts...)
}

func (s *standIn) accessToken(t *testing.T, user model.User) string {
	t.Helper()
	access, _, err := s.tokens.IssuePair(user)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	return access
}

func (s *standIn) do(t *testing.T, method, path, access string, body string, headers map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

var frontDesk = model.User{ID: 3, Email: "front@hoteldesk.test", Role: model.RoleReceptionist}

func TestStandIn_LoginAndFilterRooms(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{})
	fallbacks := &fallbackRecorder{}
	c := s.client(store, fallbacks)
	ctx := context.Background()

	result, err := c.Auth.Login(ctx, "front@hoteldesk.test", "front12345")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User == nil || result.User.Role != model.RoleReceptionist {
		t.Errorf("Login() user = %+v, want receptionist", result.User)
	}
	tokens, _ := store.Load(ctx)
	if !tokens.LoggedIn() {
		t.Fatal("expected the token pair to be stored")
	}

	rooms, err := c.Rooms.List(ctx, model.RoomFilter{Status: "available", RoomType: "all"})
	if err != nil {
		t.Fatalf("Rooms.List() error = %v", err)
	}
	if len(rooms) != 4 {
		t.Errorf("Rooms.List() returned %d rooms, want 4", len(rooms))
	}
	for _, room := range rooms {
		if room.Status != model.RoomAvailable {
			t.Errorf("room %s has status %s", room.Number, room.Status)
		}
	}
	if fallbacks.count() != 0 {
		t.Errorf("unexpected fallbacks: %v", fallbacks.calls)
	}
}

func TestStandIn_LoginRejected(t *testing.T) {
	s := newStandIn(t, nil)
	c := s.client(session.NewMemoryStore(session.Tokens{}), &fallbackRecorder{})

	_, err := c.Auth.Login(context.Background(), "front@hoteldesk.test", "wrong-password")
	if !apperrors.IsUnauthorized(err) {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}
	if msg := apperrors.AsAppError(err).Message; msg != "No active account found with the given credentials" {
		t.Errorf("message = %q", msg)
	}
}

func TestStandIn_RefreshesExpiredAccessToken(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{})
	fallbacks := &fallbackRecorder{}
	c := s.client(store, fallbacks)
	ctx := context.Background()

	if _, err := c.Auth.Login(ctx, "manager@hoteldesk.test", "manager12345"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	before, _ := store.Load(ctx)

	s.clock.Advance(10 * time.Minute)

	user, err := c.Auth.Me(ctx)
	if err != nil {
		t.Fatalf("Me() after expiry error = %v", err)
	}
	if user.Email != "manager@hoteldesk.test" {
		t.Errorf("Me() email = %q", user.Email)
	}

	after, _ := store.Load(ctx)
	if after.Access == before.Access {
		t.Error("expected a new access token after refresh")
	}
	if after.Refresh != before.Refresh {
		t.Error("refresh token should be kept when the server does not rotate it")
	}
}

func TestStandIn_ConcurrentReadsShareOneRefresh(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{})
	fallbacks := &fallbackRecorder{}
	c := s.client(store, fallbacks)
	ctx := context.Background()

	if _, err := c.Auth.Login(ctx, "admin@hoteldesk.test", "admin12345"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	s.clock.Advance(10 * time.Minute)

	stats, err := c.Dashboard.Stats(ctx)
	if err != nil {
		t.Fatalf("Dashboard.Stats() error = %v", err)
	}
	if fallbacks.count() != 0 {
		t.Fatalf("dashboard fell back: %v %v", fallbacks.calls, fallbacks.errs)
	}
	if stats.Reservations.Total != 5 {
		t.Errorf("reservations total = %d, want 5", stats.Reservations.Total)
	}
}

func TestStandIn_ExpiredRefreshEndsSession(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{})
	fallbacks := &fallbackRecorder{}
	var loggedOut []error
	c := s.client(store, fallbacks, client.WithLoggedOutHandler(func(cause error) {
		loggedOut = append(loggedOut, cause)
	}))
	ctx := context.Background()

	if _, err := c.Auth.Login(ctx, "front@hoteldesk.test", "front12345"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	s.clock.Advance(25 * time.Hour)

	rooms, err := c.Rooms.List(ctx, model.RoomFilter{})
	if err != nil {
		t.Fatalf("Rooms.List() error = %v", err)
	}
	if len(rooms) != 8 {
		t.Errorf("expected the 8 sample rooms, got %d", len(rooms))
	}
	if fallbacks.count() != 1 || !apperrors.IsLoggedOut(fallbacks.errs[0]) {
		t.Errorf("fallbacks = %v %v, want one logged-out fallback", fallbacks.calls, fallbacks.errs)
	}
	if len(loggedOut) != 1 {
		t.Errorf("logged-out handler called %d times, want 1", len(loggedOut))
	}
	tokens, _ := store.Load(ctx)
	if tokens.Access != "" || tokens.Refresh != "" {
		t.Errorf("session not cleared: %+v", tokens)
	}
}

func TestStandIn_UnauthenticatedResponses(t *testing.T) {
	s := newStandIn(t, nil)

	tests := []struct {
		name       string
		access     string
		wantDetail string
		wantCode   string
	}{
		{
			name:       "no credentials",
			wantDetail: "Authentication credentials were not provided.",
		},
		{
			name:       "garbage token",
			access:     "not-a-jwt",
			wantDetail: "Given token not valid for any token type",
			wantCode:   "token_not_valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodGet, APIPrefix+RoomsPath, tt.access, "", nil)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			if resp.Header.Get("WWW-Authenticate") == "" {
				t.Error("missing WWW-Authenticate header")
			}
			var body apperrors.DetailResponse
			decodeBody(t, resp, &body)
			if body.Detail != tt.wantDetail {
				t.Errorf("detail = %q, want %q", body.Detail, tt.wantDetail)
			}
			if tt.wantCode != "" && body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestStandIn_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	s := newStandIn(t, nil)
	_, refresh, err := s.tokens.IssuePair(frontDesk)
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	resp := s.do(t, http.MethodGet, APIPrefix+MePath, refresh, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}

	resp = s.do(t, http.MethodPost, APIPrefix+TokenRefreshPath, "", `{"refresh":"bogus"}`, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("refresh with bogus token status = %d, want 401", resp.StatusCode)
	}
	var body apperrors.DetailResponse
	decodeBody(t, resp, &body)
	if body.Code != "token_not_valid" {
		t.Errorf("code = %q, want token_not_valid", body.Code)
	}
}

func TestStandIn_UnknownRoute(t *testing.T) {
	s := newStandIn(t, nil)
	resp := s.do(t, http.MethodGet, APIPrefix+"/housekeeping/", "", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body apperrors.DetailResponse
	decodeBody(t, resp, &body)
	if body.Detail != "Not found." {
		t.Errorf("detail = %q", body.Detail)
	}
}

func TestStandIn_ReservationPagination(t *testing.T) {
	s := newStandIn(t, nil)
	access := s.accessToken(t, frontDesk)

	type page struct {
		Count    int                 `json:"count"`
		Next     *string             `json:"next"`
		Previous *string             `json:"previous"`
		Results  []model.Reservation `json:"results"`
	}

	tests := []struct {
		name         string
		query        string
		wantStatus   int
		wantResults  int
		wantNext     bool
		wantPrevious bool
	}{
		{name: "first page", query: "?page_size=2", wantStatus: http.StatusOK, wantResults: 2, wantNext: true},
		{name: "last page", query: "?page_size=2&page=3", wantStatus: http.StatusOK, wantResults: 1, wantPrevious: true},
		{name: "past the end", query: "?page_size=2&page=4", wantStatus: http.StatusNotFound},
		{name: "bad page", query: "?page=zero", wantStatus: http.StatusNotFound},
		{name: "unknown status", query: "?status=lost", wantStatus: http.StatusBadRequest},
		{name: "arrivals today", query: "?date_filter=today", wantStatus: http.StatusOK, wantResults: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.do(t, http.MethodGet, APIPrefix+ReservationsPath+tt.query, access, "", nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var body page
			decodeBody(t, resp, &body)
			if len(body.Results) != tt.wantResults {
				t.Errorf("results = %d, want %d", len(body.Results), tt.wantResults)
			}
			if (body.Next != nil) != tt.wantNext {
				t.Errorf("next = %v, want present=%v", body.Next, tt.wantNext)
			}
			if (body.Previous != nil) != tt.wantPrevious {
				t.Errorf("previous = %v, want present=%v", body.Previous, tt.wantPrevious)
			}
		})
	}
}

func TestStandIn_ReservationsThroughClient(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{Access: s.accessToken(t, frontDesk)})
	fallbacks := &fallbackRecorder{}
	c := s.client(store, fallbacks)
	ctx := context.Background()

	found, err := c.Reservations.List(ctx, model.ReservationFilter{Status: "all", Search: "smith"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(found) != 1 || found[0].GuestName != "John Smith" {
		t.Errorf("List() = %+v, want John Smith only", found)
	}

	arrivals, err := c.Reservations.TodayArrivals(ctx)
	if err != nil {
		t.Fatalf("TodayArrivals() error = %v", err)
	}
	if len(arrivals) != 2 {
		t.Errorf("TodayArrivals() = %d, want 2", len(arrivals))
	}

	recent, err := c.Reservations.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != repository.RecentLimit || recent[0].ID != 5 {
		t.Errorf("Recent() = %+v, want newest first", recent)
	}
	if fallbacks.count() != 0 {
		t.Errorf("unexpected fallbacks: %v %v", fallbacks.calls, fallbacks.errs)
	}
}

func TestStandIn_InvoiceLifecycle(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{Access: s.accessToken(t, frontDesk)})
	c := s.client(store, &fallbackRecorder{})
	ctx := context.Background()

	reservationID := int64(2)
	amount := 500.0
	created, err := c.Billing.CreateInvoice(ctx, model.InvoiceInput{
		GuestName:     "Jane Doe",
		ReservationID: &reservationID,
		IssueDate:     "2024-05-15",
		DueDate:       "2024-05-30",
		TotalAmount:   &amount,
	})
	if err != nil {
		t.Fatalf("CreateInvoice() error = %v", err)
	}
	if created.ID != 6 || created.InvoiceNumber != "INV-2024-006" || created.Status != model.InvoiceDraft {
		t.Errorf("CreateInvoice() = %+v", created)
	}

	updated, err := c.Billing.UpdateInvoice(ctx, created.ID, model.InvoiceInput{Status: model.InvoicePaid})
	if err != nil {
		t.Fatalf("UpdateInvoice() error = %v", err)
	}
	if updated.Status != model.InvoicePaid || updated.GuestName != "Jane Doe" {
		t.Errorf("UpdateInvoice() = %+v", updated)
	}

	fetched, err := c.Billing.Invoice(ctx, created.ID)
	if err != nil {
		t.Fatalf("Invoice() error = %v", err)
	}
	if fetched == nil || fetched.Status != model.InvoicePaid {
		t.Errorf("Invoice() = %+v", fetched)
	}

	missing := int64(999)
	_, err = c.Billing.CreateInvoice(ctx, model.InvoiceInput{
		GuestName:     "Jane Doe",
		ReservationID: &missing,
		IssueDate:     "2024-05-15",
		DueDate:       "2024-05-30",
		TotalAmount:   &amount,
	})
	appErr := apperrors.AsAppError(err)
	if appErr.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("CreateInvoice() with unknown reservation status = %d, want 400", appErr.HTTPStatus)
	}
	if _, ok := appErr.Details["reservation_id"]; !ok {
		t.Errorf("details = %v, want reservation_id", appErr.Details)
	}
}

func TestStandIn_IdempotentPaymentCreate(t *testing.T) {
	s := newStandIn(t, nil)
	access := s.accessToken(t, frontDesk)
	body := `{"guest_name":"Jane Doe","payment_method":"cash","amount":120}`
	headers := map[string]string{"Idempotency-Key": "pay-jane-1"}

	first := s.do(t, http.MethodPost, APIPrefix+PaymentsPath, access, body, headers)
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("first status = %d, want 201", first.StatusCode)
	}
	var p1 model.Payment
	decodeBody(t, first, &p1)

	second := s.do(t, http.MethodPost, APIPrefix+PaymentsPath, access, body, headers)
	if second.StatusCode != http.StatusCreated {
		t.Fatalf("replay status = %d, want 201", second.StatusCode)
	}
	if second.Header.Get("Idempotent-Replayed") != "true" {
		t.Error("expected the replay marker header")
	}
	var p2 model.Payment
	decodeBody(t, second, &p2)
	if p1.ID != p2.ID || p1.TransactionID != p2.TransactionID {
		t.Errorf("replay created a second payment: %d vs %d", p1.ID, p2.ID)
	}
	if !strings.HasPrefix(p1.TransactionID, "TXN-2024-") || p1.Status != model.PaymentCompleted {
		t.Errorf("payment = %+v", p1)
	}
}

func TestStandIn_RegisterAndChangePassword(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{})
	c := s.client(store, &fallbackRecorder{})
	ctx := context.Background()

	reg := model.Registration{
		Email:           "guest@example.com",
		Password:        "s3cretpass",
		PasswordConfirm: "s3cretpass",
		FirstName:       "Grace",
		LastName:        "Guest",
	}
	result, err := c.Auth.Register(ctx, reg)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User == nil || result.User.Role != model.RoleGuest || result.User.ID != 4 {
		t.Errorf("Register() user = %+v", result.User)
	}
	if tokens, _ := store.Load(ctx); !tokens.LoggedIn() {
		t.Fatal("Register() should log the new account in")
	}

	_, err = c.Auth.Register(ctx, reg)
	if _, ok := apperrors.AsAppError(err).Details["email"]; !ok {
		t.Errorf("duplicate Register() error = %v, want an email field error", err)
	}

	err = c.Auth.ChangePassword(ctx, model.PasswordChange{
		OldPassword: "wrong-old", NewPassword: "n3wpassword", NewPasswordConfirm: "n3wpassword",
	})
	if _, ok := apperrors.AsAppError(err).Details["old_password"]; !ok {
		t.Errorf("ChangePassword() with a wrong old password error = %v", err)
	}

	err = c.Auth.ChangePassword(ctx, model.PasswordChange{
		OldPassword: "s3cretpass", NewPassword: "n3wpassword", NewPasswordConfirm: "n3wpassword",
	})
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := c.Auth.Login(ctx, "guest@example.com", "s3cretpass"); !apperrors.IsUnauthorized(err) {
		t.Errorf("Login() with the old password error = %v, want unauthorized", err)
	}
	if _, err := c.Auth.Login(ctx, "guest@example.com", "n3wpassword"); err != nil {
		t.Errorf("Login() with the new password error = %v", err)
	}
}

func TestStandIn_RegisterNormalizesInput(t *testing.T) {
	s := newStandIn(t, nil)

	resp := s.do(t, http.MethodPost, APIPrefix+RegisterPath, "", `{
		"email": "  Nia.Guest@Example.com ",
		"password": "s3cretpass",
		"password_confirm": "s3cretpass",
		"first_name": " Nia ",
		"last_name": "Guest",
		"phone": "+1 (212) 555-1234"
	}`, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var result model.LoginResult
	decodeBody(t, resp, &result)
	if result.User == nil || result.User.Email != "nia.guest@example.com" || result.User.FirstName != "Nia" || result.User.Phone != "+12125551234" {
		t.Errorf("registered user = %+v", result.User)
	}

	bad := s.do(t, http.MethodPost, APIPrefix+RegisterPath, "", `{
		"email": "other@example.com",
		"password": "s3cretpass",
		"password_confirm": "s3cretpass",
		"first_name": "Other",
		"last_name": "Guest",
		"phone": "ask at the desk"
	}`, nil)
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid phone status = %d, want 400", bad.StatusCode)
	}
	var fields map[string][]string
	decodeBody(t, bad, &fields)
	if len(fields["phone"]) == 0 {
		t.Errorf("expected a phone field error, got %v", fields)
	}
}

func TestStandIn_RolePermissions(t *testing.T) {
	s := newStandIn(t, nil)

	tests := []struct {
		name       string
		user       model.User
		path       string
		body       string
		wantStatus int
	}{
		{name: "receptionist lists users", user: frontDesk, path: UsersPath, wantStatus: http.StatusForbidden},
		{name: "admin lists users", user: model.User{ID: 1, Role: model.RoleAdmin}, path: UsersPath, wantStatus: http.StatusOK},
		{
			name:       "receptionist changes another password",
			user:       frontDesk,
			path:       "/auth/users/1/change_password/",
			body:       `{"old_password":"x","new_password":"n3wpassword","new_password_confirm":"n3wpassword"}`,
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.body != "" {
				method = http.MethodPost
			}
			resp := s.do(t, method, APIPrefix+tt.path, s.accessToken(t, tt.user), tt.body, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestStandIn_RateLimitsTokenEndpoint(t *testing.T) {
	s := newStandIn(t, func(cfg *config.Config) { cfg.RateLimitRequests = 2 })
	body := `{"email":"front@hoteldesk.test","password":"nope"}`

	for i := 0; i < 2; i++ {
		if resp := s.do(t, http.MethodPost, APIPrefix+TokenPath, "", body, nil); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i+1, resp.StatusCode)
		}
	}

	resp := s.do(t, http.MethodPost, APIPrefix+TokenPath, "", body, nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}

	access := s.accessToken(t, frontDesk)
	if resp := s.do(t, http.MethodGet, APIPrefix+RoomsPath, access, "", nil); resp.StatusCode != http.StatusOK {
		t.Errorf("rooms status = %d, other paths should not be throttled", resp.StatusCode)
	}
}

func TestStandIn_AnalyticsRanges(t *testing.T) {
	s := newStandIn(t, nil)
	store := session.NewMemoryStore(session.Tokens{Access: s.accessToken(t, frontDesk)})
	fallbacks := &fallbackRecorder{}
	c := s.client(store, fallbacks)
	ctx := context.Background()

	week, err := c.Analytics.Revenue(ctx, model.AnalyticsRange{StartDate: "2024-05-09", EndDate: "2024-05-15"})
	if err != nil {
		t.Fatalf("Revenue() error = %v", err)
	}
	if len(week.TimeSeries) != 7 {
		t.Errorf("Revenue() returned %d points, want 7", len(week.TimeSeries))
	}
	var sum float64
	for _, p := range week.TimeSeries {
		sum += p.Revenue
	}
	if week.TotalRevenue != sum {
		t.Errorf("TotalRevenue = %v, want the ranged sum %v", week.TotalRevenue, sum)
	}

	monthly, err := c.Analytics.Occupancy(ctx, model.AnalyticsRange{GroupBy: "month"})
	if err != nil {
		t.Fatalf("Occupancy() error = %v", err)
	}
	if len(monthly.TimeSeries) != 2 || monthly.TimeSeries[0].Date != "2024-04" || monthly.TimeSeries[1].Date != "2024-05" {
		t.Errorf("Occupancy() by month = %+v", monthly.TimeSeries)
	}

	guests, err := c.Analytics.Guests(ctx, model.AnalyticsRange{StartDate: "2024-03-01"})
	if err != nil {
		t.Fatalf("Guests() error = %v", err)
	}
	if len(guests.TimeSeries) != 3 {
		t.Errorf("Guests() from March = %d months, want 3", len(guests.TimeSeries))
	}

	reports, err := c.Analytics.SavedReports(ctx)
	if err != nil || len(reports) != 2 {
		t.Errorf("SavedReports() = %v, %v", reports, err)
	}
	dashboard, err := c.Analytics.DefaultDashboard(ctx)
	if err != nil || dashboard["is_default"] != true {
		t.Errorf("DefaultDashboard() = %v, %v", dashboard, err)
	}
	if fallbacks.count() != 0 {
		t.Errorf("unexpected fallbacks: %v %v", fallbacks.calls, fallbacks.errs)
	}

	resp := s.do(t, http.MethodGet, APIPrefix+OccupancyStatsPath+"?group_by=year", s.accessToken(t, frontDesk), "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var fields map[string][]string
	decodeBody(t, resp, &fields)
	if len(fields["group_by"]) == 0 {
		t.Errorf("body = %v, want a group_by field error", fields)
	}
}

func TestStandIn_RejectsNonJSONBodies(t *testing.T) {
	s := newStandIn(t, nil)
	req, err := http.NewRequest(http.MethodPost, s.server.URL+APIPrefix+TokenPath, strings.NewReader("email=a"))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415", resp.StatusCode)
	}
}

func TestStandIn_Health(t *testing.T) {
	s := newStandIn(t, nil)

	tests := []struct {
		path       string
		wantStatus string
	}{
		{path: "/health", wantStatus: "ok"},
		{path: "/ready", wantStatus: "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := s.do(t, http.MethodGet, tt.path, "", "", nil)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			var body HealthResponse
			decodeBody(t, resp, &body)
			if body.Status != tt.wantStatus {
				t.Errorf("status field = %q, want %q", body.Status, tt.wantStatus)
			}
		})
	}
}

type offlineHotel struct {
	repository.HotelRepository
}

func (offlineHotel) RecentReservations(context.Context) ([]model.Reservation, error) {
	return nil, errors.New("store offline")
}

func TestHealthHandler_ReadyReportsFailingStore(t *testing.T) {
	users, err := auth.NewMemoryUserRepository(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	h := NewHandler(users, auth.NewTokenIssuer("test-secret-0123456789", time.Minute, time.Hour), offlineHotel{}, logger.Discard())
	health := NewHealthHandler(logger.Discard(), h.StoreChecks()...)

	rec := httptest.NewRecorder()
	health.Ready(rec, httptest.NewRequest(http.MethodGet, "/ready", nil), nil)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	var body HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Store != "error" {
		t.Errorf("store = %q, want error", body.Store)
	}
}
