package handler

import (
	"hoteldesk/internal/mockapi/auth"
	httputil "hoteldesk/pkg/http"
	"hoteldesk/pkg/model"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// ListReservations serves the paginated reservation list.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	query := r.URL.Query()
	filter := model.ReservationFilter{
		Status:     query.Get("status"),
		DateFilter: query.Get("date_filter"),
		Search:     query.Get("search"),
	}.Normalized()
	if err := model.Validate(filter); err != nil {
		h.writeError(w, r, err)
		return
	}

	number, size, err := httputil.ExtractPage(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	reservations, err := h.hotel.Reservations(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	results, page, err := httputil.Paginate(r, reservations, number, size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := httputil.WritePage(w, page, results); err != nil {
		h.log.Error("failed to write JSON response", "operation", "WritePage", "error", err)
	}
}

func (h *Handler) RecentReservations(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	reservations, err := h.hotel.RecentReservations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, reservations)
}
