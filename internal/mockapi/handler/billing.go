package handler

import (
	"hoteldesk/internal/mockapi/auth"
	apperrors "hoteldesk/pkg/errors"
	httputil "hoteldesk/pkg/http"
	"hoteldesk/pkg/middleware"
	"hoteldesk/pkg/model"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	query := r.URL.Query()
	filter := model.InvoiceFilter{
		Status:     query.Get("status"),
		DateFilter: query.Get("date_filter"),
		Search:     query.Get("search"),
	}.Normalized()
	if err := model.Validate(filter); err != nil {
		h.writeError(w, r, err)
		return
	}

	invoices, err := h.hotel.Invoices(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoices)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ *auth.Claims) {
	id, err := pathID(ps)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	invoice, err := h.hotel.Invoice(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	var in model.InvoiceInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := in.ValidateForCreate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	invoice, err := h.hotel.CreateInvoice(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info("Invoice created",
		"request_id", middleware.RequestID(r.Context()),
		"invoice_id", invoice.ID,
		"invoice_number", invoice.InvoiceNumber,
		"user_id", claims.UserID,
	)
	h.writeJSON(w, http.StatusCreated, invoice)
}

// UpdateInvoice serves both PUT and PATCH; only the fields sent are changed.
func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ *auth.Claims) {
	id, err := pathID(ps)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in model.InvoiceInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := in.ValidateForUpdate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	invoice, err := h.hotel.UpdateInvoice(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, invoice)
}

func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request, _ httprouter.Params, _ *auth.Claims) {
	query := r.URL.Query()
	filter := model.PaymentFilter{
		Status:     query.Get("status"),
		DateFilter: query.Get("date_filter"),
		Search:     query.Get("search"),
	}.Normalized()
	if err := model.Validate(filter); err != nil {
		h.writeError(w, r, err)
		return
	}

	payments, err := h.hotel.Payments(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ *auth.Claims) {
	id, err := pathID(ps)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	payment, err := h.hotel.Payment(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payment)
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params, claims *auth.Claims) {
	var in model.PaymentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := in.ValidateForCreate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	payment, err := h.hotel.CreatePayment(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.Info("Payment recorded",
		"request_id", middleware.RequestID(r.Context()),
		"payment_id", payment.ID,
		"transaction_id", payment.TransactionID,
		"user_id", claims.UserID,
	)
	h.writeJSON(w, http.StatusCreated, payment)
}

func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request, ps httprouter.Params, _ *auth.Claims) {
	id, err := pathID(ps)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in model.PaymentInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := in.ValidateForUpdate(); err != nil {
		h.writeError(w, r, err)
		return
	}

	payment, err := h.hotel.UpdatePayment(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, payment)
}

func pathID(ps httprouter.Params) (int64, error) {
	id, err := strconv.ParseInt(ps.ByName("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.New(apperrors.CodeNotFound, "Not found.", http.StatusNotFound)
	}
	return id, nil
}
