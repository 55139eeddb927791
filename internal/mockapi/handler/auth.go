package handler

import (
	"errors"
	"hoteldesk/internal/mockapi/auth"
	apperrors "hoteldesk/pkg/errors"
	httputil "hoteldesk/pkg/http"
	"hoteldesk/pkg/middleware"
	"hoteldesk/pkg/model"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) ObtainToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds model.Credentials
	if err := httputil.DecodeJSON(r, &creds); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := model.Validate(creds); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrBadCredentials) {
			h.log.Info("Login rejected",
				"request_id", middleware.RequestID(r.Context()),
				"email", creds.Email,
			)
			h.writeError(w, r, apperrors.New("no_active_account", "No active account found with the given credentials", http.StatusUnauthorized))
			return
		}
		h.writeError(w, r, err)
		return
	}

	h.respondWithTokens(w, r, user, http.StatusOK)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RefreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := model.Validate(req); err != nil {
		h.writeError(w, r, err)
		return
	}

	access, claims, err := h.tokens.Refresh(req.Refresh)
	if err != nil {
		h.writeError(w, r, tokenNotValid("Token is invalid or expired"))
		return
	}

	h.log.Debug("Access token refreshed",
		"request_id", middleware.RequestID(r.Context()),
		"user_id", claims.UserID,
	)
	h.writeJSON(w, http.StatusOK, model.RefreshResult{Access: access})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	user, err := h.users.FindByID(r.Context(), claims.UserID)
	if err != nil {
		h.writeError(w, r, tokenNotValid("User not found"))
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// ListUsers is limited to admins and managers.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	if !isAdminOrManager(claims) {
		h.writeError(w, r, permissionDenied())
		return
	}
	users, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, users)
}

// userAction serves POST /auth/users/:id/, where the only action without a
// user id is registration.
func (h *Handler) userAction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") != "register" {
		h.writeError(w, r, apperrors.New(apperrors.CodeBadRequest, `Method "POST" not allowed.`, http.StatusMethodNotAllowed))
		return
	}
	h.Register(w, r, ps)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.Registration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		h.writeError(w, r, err)
		return
	}
	reg = reg.Normalized()
	if err := model.Validate(reg); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), reg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info("User registered",
		"request_id", middleware.RequestID(r.Context()),
		"user_id", user.ID,
		"role", user.Role,
	)
	h.respondWithTokens(w, r, user, http.StatusCreated)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request, ps httprouter.Params, claims *auth.Claims) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil {
		h.writeError(w, r, apperrors.NotFound("User"))
		return
	}
	if id != claims.UserID && !isAdminOrManager(claims) {
		h.writeError(w, r, permissionDenied())
		return
	}

	var change model.PasswordChange
	if err := httputil.DecodeJSON(r, &change); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := model.Validate(change); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.users.ChangePassword(r.Context(), id, change); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "password changed"})
}

func (h *Handler) respondWithTokens(w http.ResponseWriter, r *http.Request, user *model.User, status int) {
	access, refresh, err := h.tokens.IssuePair(*user)
	if err != nil {
		h.writeError(w, r, apperrors.Internal("failed to issue tokens", err))
		return
	}
	h.writeJSON(w, status, model.LoginResult{Access: access, Refresh: refresh, User: user})
}

func isAdminOrManager(claims *auth.Claims) bool {
	return claims.Role == model.RoleAdmin || claims.Role == model.RoleManager
}
