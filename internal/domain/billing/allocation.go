package billing

import (
	"sort"

	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationLine represents the slice of a payment allocated to one invoice
type AllocationLine struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	NewStatus     InvoiceStatus   `json:"new_status"`
}

// AllocationBreakdown is the complete result of allocating one payment.
// The conservation relation holds exactly:
// TotalApplied + ExcessAmount == payment amount.
type AllocationBreakdown struct {
	Lines           []AllocationLine `json:"lines"`
	TotalApplied    decimal.Decimal  `json:"total_applied"`
	ExcessAmount    decimal.Decimal  `json:"excess_amount"`
	FullyAllocated  bool             `json:"fully_allocated"`
	InvoicesSettled []uuid.UUID      `json:"invoices_settled"`
}

// AllocationEngine computes how a customer payment spreads across the
// customer's outstanding invoices. The engine is pure: it never mutates the
// invoices it is given, so the same code path serves both preview and commit.
type AllocationEngine struct{}

// NewAllocationEngine creates a new allocation engine
func NewAllocationEngine() *AllocationEngine {
	return &AllocationEngine{}
}

// Allocate spreads the amount across the invoices oldest-first: transaction
// date ascending, ties broken by creation time. Each invoice absorbs
// min(remaining, pending); whatever is left after the last outstanding
// invoice is reported as excess and never attributed to any invoice.
func (e *AllocationEngine) Allocate(amount decimal.Decimal, invoices []*Invoice) (*AllocationBreakdown, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	sorted := make([]*Invoice, len(invoices))
	copy(sorted, invoices)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].TxnDate.Equal(sorted[j].TxnDate) {
			return sorted[i].TxnDate.Before(sorted[j].TxnDate)
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	lines := make([]AllocationLine, 0, len(sorted))
	settled := make([]uuid.UUID, 0)
	remaining := amount
	totalApplied := decimal.Zero

	for _, inv := range sorted {
		if remaining.IsZero() {
			break
		}
		if !inv.Status.IsOutstanding() || inv.AmountPending.LessThanOrEqual(decimal.Zero) {
			continue
		}

		applied := decimal.Min(remaining, inv.AmountPending)
		newStatus := ClassifyStatus(inv.AmountPaid.Add(applied), inv.TotalAmount)

		lines = append(lines, AllocationLine{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			AmountApplied: applied,
			NewStatus:     newStatus,
		})

		totalApplied = totalApplied.Add(applied)
		remaining = remaining.Sub(applied)

		if newStatus == InvoiceStatusReceived {
			settled = append(settled, inv.ID)
		}
	}

	return &AllocationBreakdown{
		Lines:           lines,
		TotalApplied:    totalApplied,
		ExcessAmount:    remaining,
		FullyAllocated:  remaining.IsZero(),
		InvoicesSettled: settled,
	}, nil
}
