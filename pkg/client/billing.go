package client

import (
	"context"
	"fmt"
	apperrors "hoteldesk/pkg/errors"
	"hoteldesk/pkg/model"
	"hoteldesk/pkg/sample"
)

const (
	InvoicesPath = "/billing/invoices/"
	PaymentsPath = "/billing/payments/"
)

func invoicePath(id int64) string { return fmt.Sprintf("%s%d/", InvoicesPath, id) }

func paymentPath(id int64) string { return fmt.Sprintf("%s%d/", PaymentsPath, id) }

// BillingClient reads fall back to sample data; writes report every error.
type BillingClient struct {
	accessor
}

func (c *BillingClient) Invoices(ctx context.Context, filter model.InvoiceFilter) ([]model.Invoice, error) {
	filter = filter.Normalized()
	if err := model.Validate(filter); err != nil {
		return nil, err
	}

	resp, err := c.gw.GET(ctx, InvoicesPath, filter.Query())
	if err == nil {
		var list []model.Invoice
		if list, err = decodeList[model.Invoice](resp); err == nil {
			return list, nil
		}
	}
	c.fallback("billing.invoices", err)
	return sample.Invoices(), nil
}

func (c *BillingClient) Payments(ctx context.Context, filter model.PaymentFilter) ([]model.Payment, error) {
	filter = filter.Normalized()
	if err := model.Validate(filter); err != nil {
		return nil, err
	}

	resp, err := c.gw.GET(ctx, PaymentsPath, filter.Query())
	if err == nil {
		var list []model.Payment
		if list, err = decodeList[model.Payment](resp); err == nil {
			return list, nil
		}
	}
	c.fallback("billing.payments", err)
	return sample.Payments(), nil
}

// Invoice returns nil with no error when the invoice cannot be read.
func (c *BillingClient) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	resp, err := c.gw.GET(ctx, invoicePath(id), nil)
	if err == nil {
		var inv *model.Invoice
		if inv, err = decodeObject[model.Invoice](resp); err == nil {
			return inv, nil
		}
	}
	c.fallback("billing.invoice", err)
	return nil, nil
}

// Payment returns nil with no error when the payment cannot be read.
func (c *BillingClient) Payment(ctx context.Context, id int64) (*model.Payment, error) {
	resp, err := c.gw.GET(ctx, paymentPath(id), nil)
	if err == nil {
		var p *model.Payment
		if p, err = decodeObject[model.Payment](resp); err == nil {
			return p, nil
		}
	}
	c.fallback("billing.payment", err)
	return nil, nil
}

func (c *BillingClient) CreateInvoice(ctx context.Context, in model.InvoiceInput) (*model.Invoice, error) {
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	resp, err := c.gw.POST(ctx, InvoicesPath, in)
	if err != nil {
		c.log.Error("Failed to create invoice", "error", err)
		return nil, err
	}
	return decodeWritten[model.Invoice](resp, "invoice")
}

func (c *BillingClient) UpdateInvoice(ctx context.Context, id int64, in model.InvoiceInput) (*model.Invoice, error) {
	if err := in.ValidateForUpdate(); err != nil {
		return nil, err
	}
	resp, err := c.gw.PUT(ctx, invoicePath(id), in)
	if err != nil {
		c.log.Error("Failed to update invoice", "id", id, "error", err)
		return nil, err
	}
	return decodeWritten[model.Invoice](resp, "invoice")
}

func (c *BillingClient) CreatePayment(ctx context.Context, in model.PaymentInput) (*model.Payment, error) {
	if err := in.ValidateForCreate(); err != nil {
		return nil, err
	}
	resp, err := c.gw.POST(ctx, PaymentsPath, in)
	if err != nil {
		c.log.Error("Failed to create payment", "error", err)
		return nil, err
	}
	return decodeWritten[model.Payment](resp, "payment")
}

func (c *BillingClient) UpdatePayment(ctx context.Context, id int64, in model.PaymentInput) (*model.Payment, error) {
	if err := in.ValidateForUpdate(); err != nil {
		return nil, err
	}
	resp, err := c.gw.PUT(ctx, paymentPath(id), in)
	if err != nil {
		c.log.Error("Failed to update payment", "id", id, "error", err)
		return nil, err
	}
	return decodeWritten[model.Payment](resp, "payment")
}

func decodeWritten[T any](resp *Response, what string) (*T, error) {
	out, err := decodeObject[T](resp)
	if err != nil {
		return nil, apperrors.Internal("failed to decode "+what, err)
	}
	return out, nil
}
