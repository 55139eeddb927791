package repository

import (
	"context"
	"fmt"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
	"sort"
	"strings"
	"sync"
	"time"
)

const RecentLimit = 5

type HotelRepository interface {
	Reservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error)
	RecentReservations(ctx context.Context) ([]model.Reservation, error)
	Rooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error)

	Invoices(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error)
	Invoice(ctx context.Context, id int64) (*model.Invoice, error)
	CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error)

	Payments(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error)
	Payment(ctx context.Context, id int64) (*model.Payment, error)
	CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error)
	UpdatePayment(ctx context.Context, id int64, in model.PaymentInput) (*model.Payment, error)
}

type memoryHotelRepository struct {
	mu           sync.RWMutex
	now          func() time.Time
	reservations []model.Reservation
	rooms        []model.Room
	invoices     []model.Invoice
	payments     []model.Payment
}

// NewMemoryHotelRepository seeds the store with the sample records, dated
// relative to now().
func NewMemoryHotelRepository(now func() time.Time) HotelRepository {
	if now == nil {
		now = time.Now
	}
	return &memoryHotelRepository{
		now:          now,
		reservations: sample.Reservations(now()),
		rooms:        sample.Rooms(),
		invoices:     sample.Invoices(),
		payments:     sample.Payments(),
	}
}

func (r *memoryHotelRepository) Reservations(ctx context.Context, filter model.ReservationFilter) ([]model.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	bucket := model.DateBucket(filter.DateFilter)
	out := make([]model.Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		if filter.Status != "" && string(res.Status) != filter.Status {
			continue
		}
		if !inBucket(bucket, res.CheckInDate, now) {
			continue
		}
		if !matchesAny(filter.Search, res.GuestName, res.ReservationNumber, deref(res.RoomNumber)) {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *memoryHotelRepository) RecentReservations(ctx context.Context) ([]model.Reservation, error) {
	r.mu.RLock()
	out := append([]model.Reservation(nil), r.reservations...)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > RecentLimit {
		out = out[:RecentLimit]
	}
	return out, nil
}

func (r *memoryHotelRepository) Rooms(ctx context.Context, filter model.RoomFilter) ([]model.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return filter.Apply(r.rooms), nil
}

func (r *memoryHotelRepository) Invoices(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	bucket := model.DateBucket(filter.DateFilter)
	out := make([]model.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		if filter.Status != "" && string(inv.Status) != filter.Status {
			continue
		}
		if !inBucket(bucket, inv.IssueDate, now) {
			continue
		}
		if !matchesAny(filter.Search, inv.GuestName, inv.InvoiceNumber) {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *memoryHotelRepository) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.invoiceIndex(id)
	if i < 0 {
		return nil, apperrors.NotFound("Invoice")
	}
	inv := r.invoices[i]
	return &inv, nil
}

func (r *memoryHotelRepository) CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkReservation(in.ReservationID); err != nil {
		return nil, err
	}

	id := r.nextInvoiceID()
	inv := model.Invoice{
		ID:            id,
		InvoiceNumber: fmt.Sprintf("INV-%d-%03d", r.now().Year(), id),
		Status:        model.InvoiceDraft,
	}
	applyInvoice(&inv, in)
	r.invoices = append(r.invoices, inv)
	return &inv, nil
}

func (r *memoryHotelRepository) UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.invoiceIndex(id)
	if i < 0 {
		return nil, apperrors.NotFound("Invoice")
	}
	if err := r.checkReservation(in.ReservationID); err != nil {
		return nil, err
	}

	inv := r.invoices[i]
	applyInvoice(&inv, in)
	if inv.DueDate < inv.IssueDate {
		return nil, apperrors.Validation("invalid dates", map[string]any{
			"due_date": []string{"Due date must not be before issue date."},
		})
	}
	r.invoices[i] = inv
	return &inv, nil
}

func (r *memoryHotelRepository) Payments(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	bucket := model.DateBucket(filter.DateFilter)
	out := make([]model.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		if filter.Status != "" && string(p.Status) != filter.Status {
			continue
		}
		if !inBucket(bucket, paymentDay(p.PaymentDate), now) {
			continue
		}
		if !matchesAny(filter.Search, p.GuestName, p.TransactionID) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryHotelRepository) Payment(ctx context.Context, id int64) (*model.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.paymentIndex(id)
	if i < 0 {
		return nil, apperrors.NotFound("Payment")
	}
	p := r.payments[i]
	return &p, nil
}

func (r *memoryHotelRepository) CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkInvoice(in.InvoiceID); err != nil {
		return nil, err
	}

	id := r.nextPaymentID()
	now := r.now()
	p := model.Payment{
		ID:            id,
		TransactionID: fmt.Sprintf("TXN-%d-%03d", now.Year(), id),
		PaymentDate:   now.UTC().Format(time.RFC3339),
		Status:        model.PaymentCompleted,
	}
	applyPayment(&p, in)
	r.payments = append(r.payments, p)
	return &p, nil
}

func (r *memoryHotelRepository) UpdatePayment(ctx context.Context, id int64, in model.PaymentInput) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.paymentIndex(id)
	if i < 0 {
		return nil, apperrors.NotFound("Payment")
	}
	if err := r.checkInvoice(in.InvoiceID); err != nil {
		return nil, err
	}

	p := r.payments[i]
	applyPayment(&p, in)
	r.payments[i] = p
	return &p, nil
}

func (r *memoryHotelRepository) invoiceIndex(id int64) int {
	for i, inv := range r.invoices {
		if inv.ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryHotelRepository) paymentIndex(id int64) int {
	for i, p := range r.payments {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (r *memoryHotelRepository) nextInvoiceID() int64 {
	var highest int64
	for _, inv := range r.invoices {
		if inv.ID > highest {
			highest = inv.ID
		}
	}
	return highest + 1
}

func (r *memoryHotelRepository) nextPaymentID() int64 {
	var highest int64
	for _, p := range r.payments {
		if p.ID > highest {
			highest = p.ID
		}
	}
	return highest + 1
}

func (r *memoryHotelRepository) checkReservation(id *int64) error {
	if id == nil {
		return nil
	}
	for _, res := range r.reservations {
		if res.ID == *id {
			return nil
		}
	}
	return missingRelation("reservation_id", *id)
}

func (r *memoryHotelRepository) checkInvoice(id *int64) error {
	if id == nil {
		return nil
	}
	if r.invoiceIndex(*id) < 0 {
		return missingRelation("invoice_id", *id)
	}
	return nil
}

func missingRelation(field string, id int64) error {
	return apperrors.Validation("unknown "+field, map[string]any{
		field: []string{fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)},
	})
}

func applyInvoice(inv *model.Invoice, in model.InvoiceInput) {
	if in.GuestName != "" {
		inv.GuestName = in.GuestName
	}
	if in.ReservationID != nil {
		inv.ReservationID = *in.ReservationID
	}
	if in.IssueDate != "" {
		inv.IssueDate = in.IssueDate
	}
	if in.DueDate != "" {
		inv.DueDate = in.DueDate
	}
	if in.TotalAmount != nil {
		inv.TotalAmount = *in.TotalAmount
	}
	if in.Status != "" {
		inv.Status = in.Status
	}
}

func applyPayment(p *model.Payment, in model.PaymentInput) {
	if in.GuestName != "" {
		p.GuestName = in.GuestName
	}
	if in.InvoiceID != nil {
		id := *in.InvoiceID
		p.InvoiceID = &id
	}
	if in.PaymentMethod != "" {
		p.PaymentMethod = in.PaymentMethod
	}
	if in.PaymentDate != "" {
		p.PaymentDate = in.PaymentDate
	}
	if in.Amount != nil {
		p.Amount = *in.Amount
	}
	if in.Status != "" {
		p.Status = in.Status
	}
}

func inBucket(bucket model.DateBucket, day string, now time.Time) bool {
	if bucket == "" {
		return true
	}
	d, err := model.ParseDayIn(day, now)
	if err != nil {
		return false
	}
	return bucket.Contains(d, now)
}

// paymentDay reduces an RFC 3339 timestamp to its date.
func paymentDay(ts string) string {
	if t, err := time.Parse(time.RFC3339, ts); err == nil {
		return model.FormatDay(t)
	}
	return ts
}

func matchesAny(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
