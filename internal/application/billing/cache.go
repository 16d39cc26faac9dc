package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutstandingInvoiceSummary is one outstanding invoice in the summary
type OutstandingInvoiceSummary struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TxnDate       time.Time       `json:"txn_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPending decimal.Decimal `json:"amount_pending"`
	Status        string          `json:"status"`
}

// OutstandingSummary is the per-customer outstanding read model served by
// GET /billing/customers/:name/outstanding
type OutstandingSummary struct {
	CustomerName string          `json:"customer_name"`
	TotalPending decimal.Decimal `json:"total_pending"`
	// TotalPendingDisplay is TotalPending rendered for humans, e.g. "₹ 700.00"
	TotalPendingDisplay string                      `json:"total_pending_display"`
	InvoiceCount        int                         `json:"invoice_count"`
	Invoices            []OutstandingInvoiceSummary `json:"invoices"`
	ComputedAt          time.Time                   `json:"computed_at"`
}

// OutstandingCache caches per-customer outstanding summaries. Allocations and
// overrides invalidate the customer's entry; reads fall through to the
// repository on a miss. A nil cache is valid and means caching is off.
type OutstandingCache interface {
	// Get returns the cached summary, or nil on a miss
	Get(ctx context.Context, accountID uuid.UUID, customerName string) (*OutstandingSummary, error)

	// Set stores the summary for the customer
	Set(ctx context.Context, accountID uuid.UUID, customerName string, summary *OutstandingSummary) error

	// Invalidate drops the customer's entry
	Invalidate(ctx context.Context, accountID uuid.UUID, customerName string) error
}
