package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/farmbook/backend/internal/domain/shared/valueobject"
	"github.com/farmbook/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService applies customer payments across outstanding invoices using
// FIFO allocation. Preview and commit share one code path: the engine computes
// the breakdown either way, and only a committing call persists it.
type PaymentService struct {
	txManager   billing.TxManager
	invoiceRepo billing.InvoiceRepository
	engine      *billing.AllocationEngine
	cache       OutstandingCache
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txManager billing.TxManager,
	invoiceRepo billing.InvoiceRepository,
	cache OutstandingCache,
) *PaymentService {
	return &PaymentService{
		txManager:   txManager,
		invoiceRepo: invoiceRepo,
		engine:      billing.NewAllocationEngine(),
		cache:       cache,
	}
}

// RecordPaymentRequest represents a payment received from a customer
type RecordPaymentRequest struct {
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Date         time.Time       `json:"date"`
	Method       string          `json:"method"`
	Remark       string          `json:"remark,omitempty"`
	Simulate     bool            `json:"simulate"` // Preview only, nothing persisted
}

// AllocationLineResponse is one invoice's share of the payment
type AllocationLineResponse struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	NewStatus     string          `json:"new_status"`
}

// PaymentResultResponse is the breakdown of one recorded (or previewed) payment
type PaymentResultResponse struct {
	CustomerName string                   `json:"customer_name"`
	Amount       decimal.Decimal          `json:"amount"`
	Method       string                   `json:"method"`
	Simulated    bool                     `json:"simulated"`
	Lines        []AllocationLineResponse `json:"lines"`
	TotalApplied decimal.Decimal          `json:"total_applied"`
	ExcessAmount decimal.Decimal          `json:"excess_amount"`
}

// RecordPayment allocates the payment FIFO across the customer's outstanding
// invoices and, unless Simulate is set, persists every touched invoice inside
// one transaction. The call is not idempotent: submitting the same payment
// twice applies it twice. Excess beyond the customer's total pending amount is
// reported back and never stored as a credit.
func (s *PaymentService) RecordPayment(ctx context.Context, accountID uuid.UUID, req RecordPaymentRequest) (*PaymentResultResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "record")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerName, req.CustomerName,
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrMethod, req.Method,
		telemetry.SpanAttrSimulate, req.Simulate,
	)

	if strings.TrimSpace(req.CustomerName) == "" {
		err := shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		err := shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
		telemetry.RecordError(span, err)
		return nil, err
	}
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		err := shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
		telemetry.RecordError(span, err)
		return nil, err
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	var breakdown *billing.AllocationBreakdown

	if req.Simulate {
		// Preview reads without locks; the breakdown is advisory
		invoices, err := s.invoiceRepo.FindOutstanding(ctx, accountID, req.CustomerName)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to load outstanding invoices: %w", err)
		}
		breakdown, err = s.allocate(req.Amount, invoices)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	} else {
		err := s.txManager.InTx(ctx, func(ctx context.Context, repos billing.TxRepositories) error {
			invoices, err := repos.Invoices().FindOutstandingForUpdate(ctx, accountID, req.CustomerName)
			if err != nil {
				return fmt.Errorf("failed to load outstanding invoices: %w", err)
			}

			breakdown, err = s.allocate(req.Amount, invoices)
			if err != nil {
				return err
			}

			byID := make(map[uuid.UUID]*billing.Invoice, len(invoices))
			for i := range invoices {
				byID[invoices[i].ID] = &invoices[i]
			}

			for _, line := range breakdown.Lines {
				inv := byID[line.InvoiceID]
				if inv == nil {
					return shared.NewDomainError("ALLOCATION_MISMATCH", "Allocation references an unknown invoice")
				}
				if err := inv.ApplyAllocation(line.AmountApplied, req.Date, method, req.Remark); err != nil {
					return err
				}
				if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}

		if s.cache != nil {
			_ = s.cache.Invalidate(ctx, accountID, req.CustomerName)
		}
	}

	telemetry.AddEvent(span, "payment_allocated",
		"total_applied", breakdown.TotalApplied.String(),
		"excess", breakdown.ExcessAmount.String(),
		"invoices_touched", len(breakdown.Lines),
	)

	return toPaymentResult(req, breakdown), nil
}

// allocate points the FIFO engine at the loaded invoices. The engine mutates
// them in place; the commit path saves exactly those mutations, and simulate
// reads load a throwaway slice.
func (s *PaymentService) allocate(amount decimal.Decimal, invoices []billing.Invoice) (*billing.AllocationBreakdown, error) {
	targets := make([]*billing.Invoice, 0, len(invoices))
	for i := range invoices {
		targets = append(targets, &invoices[i])
	}
	return s.engine.Allocate(amount, targets)
}

func toPaymentResult(req RecordPaymentRequest, breakdown *billing.AllocationBreakdown) *PaymentResultResponse {
	lines := make([]AllocationLineResponse, 0, len(breakdown.Lines))
	for _, l := range breakdown.Lines {
		lines = append(lines, AllocationLineResponse{
			InvoiceID:     l.InvoiceID,
			InvoiceNumber: l.InvoiceNumber,
			AmountApplied: l.AmountApplied,
			NewStatus:     string(l.NewStatus),
		})
	}

	return &PaymentResultResponse{
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Method:       req.Method,
		Simulated:    req.Simulate,
		Lines:        lines,
		TotalApplied: breakdown.TotalApplied,
		ExcessAmount: breakdown.ExcessAmount,
	}
}

// GetOutstanding returns the customer's outstanding summary, served from the
// cache when possible
func (s *PaymentService) GetOutstanding(ctx context.Context, accountID uuid.UUID, customerName string) (*OutstandingSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "get_outstanding")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerName, customerName)

	if strings.TrimSpace(customerName) == "" {
		err := shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
		telemetry.RecordError(span, err)
		return nil, err
	}

	if s.cache != nil {
		if summary, err := s.cache.Get(ctx, accountID, customerName); err == nil && summary != nil {
			telemetry.SetAttribute(span, "cache_hit", true)
			return summary, nil
		}
	}

	invoices, err := s.invoiceRepo.FindOutstanding(ctx, accountID, customerName)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load outstanding invoices: %w", err)
	}

	summary := &OutstandingSummary{
		CustomerName: customerName,
		TotalPending: decimal.Zero,
		Invoices:     make([]OutstandingInvoiceSummary, 0, len(invoices)),
		ComputedAt:   time.Now(),
	}
	for i := range invoices {
		inv := &invoices[i]
		summary.TotalPending = summary.TotalPending.Add(inv.AmountPending)
		summary.Invoices = append(summary.Invoices, OutstandingInvoiceSummary{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			TxnDate:       inv.TxnDate,
			TotalAmount:   inv.TotalAmount,
			AmountPending: inv.AmountPending,
			Status:        string(inv.Status),
		})
	}
	summary.InvoiceCount = len(summary.Invoices)
	summary.TotalPendingDisplay = valueobject.NewMoneyINR(summary.TotalPending).Display()

	if s.cache != nil {
		_ = s.cache.Set(ctx, accountID, customerName, summary)
	}

	return summary, nil
}
