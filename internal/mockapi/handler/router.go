package handler

import (
	"hoteldesk/internal/mockapi/auth"
	"hoteldesk/internal/mockapi/repository"
	apperrors "hoteldesk/pkg/errors"
	httputil "hoteldesk/pkg/http"
	"hoteldesk/pkg/logger"
	"hoteldesk/pkg/middleware"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// APIPrefix is where the hotel API is mounted, matching the client's
// default base URL.
const APIPrefix = "/api/v1"

const (
	TokenPath          = "/auth/token/"
	TokenRefreshPath   = "/auth/token/refresh/"
	UsersPath          = "/auth/users/"
	MePath             = "/auth/users/me/"
	UserPath           = "/auth/users/:id/"
	ChangePasswordPath = "/auth/users/:id/change_password/"
	RegisterPath       = "/auth/users/register/"

	ReservationsPath       = "/reservations/"
	RecentReservationsPath = "/reservations/recent/"
	RoomsPath              = "/rooms/"
	InvoicesPath           = "/billing/invoices/"
	InvoicePath            = "/billing/invoices/:id/"
	PaymentsPath           = "/billing/payments/"
	PaymentPath            = "/billing/payments/:id/"

	OccupancyStatsPath       = "/analytics/stats/occupancy/"
	RevenueStatsPath         = "/analytics/stats/revenue/"
	GuestStatsPath           = "/analytics/stats/guest/"
	SavedReportsPath         = "/analytics/reports/saved/"
	ReportConfigurationsPath = "/analytics/reports/configurations/"
	DashboardsPath           = "/analytics/dashboards/"
	DefaultDashboardPath     = "/analytics/dashboards/default/"
)

type Handler struct {
	users  auth.UserRepository
	tokens *auth.TokenIssuer
	hotel  repository.HotelRepository
	now    func() time.Time
	log    *logger.Logger
}

func NewHandler(users auth.UserRepository, tokens *auth.TokenIssuer, hotel repository.HotelRepository, log *logger.Logger) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		hotel:  hotel,
		now:    time.Now,
		log:    log,
	}
}

// WithClock sets the clock used for analytics series and date filters.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST(APIPrefix+TokenPath, h.ObtainToken)
	router.POST(APIPrefix+TokenRefreshPath, h.RefreshToken)
	router.GET(APIPrefix+UsersPath, h.authenticated(h.ListUsers))
	router.GET(APIPrefix+MePath, h.authenticated(h.Me))
	router.POST(APIPrefix+UserPath, h.userAction)
	router.POST(APIPrefix+ChangePasswordPath, h.authenticated(h.ChangePassword))

	router.GET(APIPrefix+ReservationsPath, h.authenticated(h.ListReservations))
	router.GET(APIPrefix+RecentReservationsPath, h.authenticated(h.RecentReservations))
	router.GET(APIPrefix+RoomsPath, h.authenticated(h.ListRooms))

	router.GET(APIPrefix+InvoicesPath, h.authenticated(h.ListInvoices))
	router.POST(APIPrefix+InvoicesPath, h.authenticated(h.CreateInvoice))
	router.GET(APIPrefix+InvoicePath, h.authenticated(h.GetInvoice))
	router.PUT(APIPrefix+InvoicePath, h.authenticated(h.UpdateInvoice))
	router.PATCH(APIPrefix+InvoicePath, h.authenticated(h.UpdateInvoice))
	router.GET(APIPrefix+PaymentsPath, h.authenticated(h.ListPayments))
	router.POST(APIPrefix+PaymentsPath, h.authenticated(h.CreatePayment))
	router.GET(APIPrefix+PaymentPath, h.authenticated(h.GetPayment))
	router.PUT(APIPrefix+PaymentPath, h.authenticated(h.UpdatePayment))
	router.PATCH(APIPrefix+PaymentPath, h.authenticated(h.UpdatePayment))

	router.GET(APIPrefix+OccupancyStatsPath, h.authenticated(h.OccupancyStats))
	router.GET(APIPrefix+RevenueStatsPath, h.authenticated(h.RevenueStats))
	router.GET(APIPrefix+GuestStatsPath, h.authenticated(h.GuestStats))
	router.GET(APIPrefix+SavedReportsPath, h.authenticated(h.SavedReports))
	router.GET(APIPrefix+ReportConfigurationsPath, h.authenticated(h.ReportConfigurations))
	router.GET(APIPrefix+DashboardsPath, h.authenticated(h.Dashboards))
	router.GET(APIPrefix+DefaultDashboardPath, h.authenticated(h.DefaultDashboard))

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, apperrors.New(apperrors.CodeNotFound, "Not found.", http.StatusNotFound))
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, r, apperrors.New(apperrors.CodeBadRequest,
			`Method "`+r.Method+`" not allowed.`, http.StatusMethodNotAllowed))
	})
}

// authenticatedHandle is a route that needs a verified access token.
type authenticatedHandle func(w http.ResponseWriter, r *http.Request, ps httprouter.Params, claims *auth.Claims)

func (h *Handler) authenticated(next authenticatedHandle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if header == "" || !ok || strings.TrimSpace(token) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			h.writeError(w, r, apperrors.Unauthorized("Authentication credentials were not provided."))
			return
		}

		claims, err := h.tokens.Parse(strings.TrimSpace(token), auth.TokenTypeAccess)
		if err != nil {
			h.log.Debug("Rejected access token",
				"request_id", middleware.RequestID(r.Context()),
				"error", err,
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			h.writeError(w, r, tokenNotValid("Given token not valid for any token type"))
			return
		}

		next(w, r, ps, claims)
	}
}

func tokenNotValid(message string) *apperrors.AppError {
	return apperrors.New("token_not_valid", message, http.StatusUnauthorized)
}

func permissionDenied() *apperrors.AppError {
	return apperrors.Forbidden("You do not have permission to perform this action.")
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperrors.AsAppError(err)
	if appErr.StatusCode() >= http.StatusInternalServerError {
		h.log.Error("Request failed",
			"request_id", middleware.RequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
	}
	if werr := httputil.WriteError(w, appErr); werr != nil {
		h.log.Error("failed to write JSON response", "operation", "WriteError", "error", werr)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	if err := httputil.WriteJSON(w, status, data); err != nil {
		h.log.Error("failed to write JSON response", "operation", "WriteJSON", "error", err)
	}
}
