package model

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentCompleted  PaymentStatus = "completed"
	PaymentProcessing PaymentStatus = "processing"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodCreditCard   PaymentMethod = "credit_card"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCash         PaymentMethod = "cash"
	MethodMobileMoney  PaymentMethod = "mobile_money"
)

type Invoice struct {
	ID            int64         `json:"id"`
	InvoiceNumber string        `json:"invoice_number"`
	GuestName     string        `json:"guest_name"`
	ReservationID int64         `json:"reservation_id"`
	IssueDate     string        `json:"issue_date"`
	DueDate       string        `json:"due_date"`
	TotalAmount   float64       `json:"total_amount"`
	Status        InvoiceStatus `json:"status"`
}

type Payment struct {
	ID            int64         `json:"id"`
	TransactionID string        `json:"transaction_id"`
	GuestName     string        `json:"guest_name"`
	InvoiceID     *int64        `json:"invoice_id"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentDate   string        `json:"payment_date"`
	Amount        float64       `json:"amount"`
	Status        PaymentStatus `json:"status"`
}

// InvoiceInput is a partial invoice used for create (POST) and update (PUT).
type InvoiceInput struct {
	GuestName     string        `json:"guest_name,omitempty" validate:"omitempty,min=2,max=100"`
	ReservationID *int64        `json:"reservation_id,omitempty" validate:"omitempty,gt=0"`
	IssueDate     string        `json:"issue_date,omitempty" validate:"omitempty,day"`
	DueDate       string        `json:"due_date,omitempty" validate:"omitempty,day"`
	TotalAmount   *float64      `json:"total_amount,omitempty" validate:"omitempty,gte=0"`
	Status        InvoiceStatus `json:"status,omitempty" validate:"omitempty,oneof=draft pending paid overdue cancelled"`
}

// PaymentInput is a partial payment used for create (POST) and update (PUT).
type PaymentInput struct {
	GuestName     string        `json:"guest_name,omitempty" validate:"omitempty,min=2,max=100"`
	InvoiceID     *int64        `json:"invoice_id,omitempty" validate:"omitempty,gt=0"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=credit_card bank_transfer cash mobile_money"`
	PaymentDate   string        `json:"payment_date,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Amount        *float64      `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Status        PaymentStatus `json:"status,omitempty" validate:"omitempty,oneof=completed processing failed refunded"`
}

// ValidateForCreate checks the fields a new invoice cannot do without, on top
// of the per-field rules.
func (in InvoiceInput) ValidateForCreate() error {
	if err := Validate(in); err != nil {
		return err
	}
	var missing []string
	if in.GuestName == "" {
		missing = append(missing, "guest_name")
	}
	if in.ReservationID == nil {
		missing = append(missing, "reservation_id")
	}
	if in.IssueDate == "" {
		missing = append(missing, "issue_date")
	}
	if in.DueDate == "" {
		missing = append(missing, "due_date")
	}
	if in.TotalAmount == nil {
		missing = append(missing, "total_amount")
	}
	if err := requireFields(missing); err != nil {
		return err
	}
	return in.checkDates()
}

// ValidateForUpdate checks only the fields that are present.
func (in InvoiceInput) ValidateForUpdate() error {
	if err := Validate(in); err != nil {
		return err
	}
	return in.checkDates()
}

func (in InvoiceInput) checkDates() error {
	if in.IssueDate != "" && in.DueDate != "" && in.DueDate < in.IssueDate {
		return fieldError("due_date", "must not be before issue_date")
	}
	return nil
}

func (in PaymentInput) ValidateForCreate() error {
	if err := Validate(in); err != nil {
		return err
	}
	var missing []string
	if in.GuestName == "" {
		missing = append(missing, "guest_name")
	}
	if in.PaymentMethod == "" {
		missing = append(missing, "payment_method")
	}
	if in.Amount == nil {
		missing = append(missing, "amount")
	}
	return requireFields(missing)
}

func (in PaymentInput) ValidateForUpdate() error {
	return Validate(in)
}
