package handler

import (
	"hoteldesk/internal/mockapi/auth"
	"hoteldesk/pkg/model"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	query := r.URL.Query()
	filter := model.RoomFilter{
		Status:   query.Get("status"),
		RoomType: query.Get("room_type"),
		Search:   query.Get("search"),
	}.Normalized()
	if err := model.Validate(filter); err != nil {
		h.writeError(w, r, err)
		return
	}

	rooms, err := h.hotel.Rooms(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rooms)
}
