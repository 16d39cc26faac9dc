package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/farmbook/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService handles invoice creation, status overrides and reporting reads
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	cache       OutstandingCache
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, cache OutstandingCache) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		cache:       cache,
	}
}

// CreateInvoiceRequest represents a request to record a sale invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	Channel       string          `json:"channel"`
	ContractID    *uuid.UUID      `json:"contract_id,omitempty"`
	TxnDate       time.Time       `json:"txn_date"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitRate      decimal.Decimal `json:"unit_rate"`
	Surcharge     decimal.Decimal `json:"surcharge"`
	InitialStatus *string         `json:"initial_status,omitempty"` // Optional manual status at creation
	Remark        string          `json:"remark,omitempty"`
}

// OverrideStatusRequest represents a manual status override
type OverrideStatusRequest struct {
	Status string `json:"status"`
}

// AllocationRecordResponse represents an allocation record in API responses
type AllocationRecordResponse struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	AppliedAt   time.Time       `json:"applied_at"`
	Remark      string          `json:"remark,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID                  `json:"id"`
	AccountID         uuid.UUID                  `json:"account_id"`
	InvoiceNumber     string                     `json:"invoice_number"`
	CustomerName      string                     `json:"customer_name"`
	Channel           string                     `json:"channel"`
	ContractID        *uuid.UUID                 `json:"contract_id,omitempty"`
	TxnDate           time.Time                  `json:"txn_date"`
	Quantity          decimal.Decimal            `json:"quantity"`
	UnitRate          decimal.Decimal            `json:"unit_rate"`
	Surcharge         decimal.Decimal            `json:"surcharge"`
	TotalAmount       decimal.Decimal            `json:"total_amount"`
	AmountPaid        decimal.Decimal            `json:"amount_paid"`
	AmountPending     decimal.Decimal            `json:"amount_pending"`
	Status            string                     `json:"status"`
	StatusOverridden  bool                       `json:"status_overridden"`
	OverriddenAt      *time.Time                 `json:"overridden_at,omitempty"`
	AllocationRecords []AllocationRecordResponse `json:"allocation_records,omitempty"`
	Remark            string                     `json:"remark,omitempty"`
	SettledAt         *time.Time                 `json:"settled_at,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
	UpdatedAt         time.Time                  `json:"updated_at"`
	Version           int                        `json:"version"`
}

// ToInvoiceResponse converts an invoice aggregate to a response DTO
func ToInvoiceResponse(inv *billing.Invoice) *InvoiceResponse {
	records := make([]AllocationRecordResponse, 0, len(inv.AllocationRecords))
	for _, r := range inv.AllocationRecords {
		records = append(records, AllocationRecordResponse{
			ID:          r.ID,
			Amount:      r.Amount,
			PaymentDate: r.PaymentDate,
			Method:      string(r.Method),
			AppliedAt:   r.AppliedAt,
			Remark:      r.Remark,
		})
	}

	return &InvoiceResponse{
		ID:                inv.ID,
		AccountID:         inv.AccountID,
		InvoiceNumber:     inv.InvoiceNumber,
		CustomerName:      inv.CustomerName,
		Channel:           string(inv.Channel),
		ContractID:        inv.ContractID,
		TxnDate:           inv.TxnDate,
		Quantity:          inv.Quantity,
		UnitRate:          inv.UnitRate,
		Surcharge:         inv.Surcharge,
		TotalAmount:       inv.TotalAmount,
		AmountPaid:        inv.AmountPaid,
		AmountPending:     inv.AmountPending,
		Status:            string(inv.Status),
		StatusOverridden:  inv.StatusOverridden,
		OverriddenAt:      inv.OverriddenAt,
		AllocationRecords: records,
		Remark:            inv.Remark,
		SettledAt:         inv.SettledAt,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
		Version:           inv.Version,
	}
}

// CreateInvoice records a new sale invoice. The total is computed from
// quantity, rate and surcharge; the status starts PENDING with nothing paid
// unless an explicit initial status override is requested.
func (s *InvoiceService) CreateInvoice(ctx context.Context, accountID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, req.InvoiceNumber,
		telemetry.SpanAttrCustomerName, req.CustomerName,
		telemetry.SpanAttrChannel, req.Channel,
	)

	existing, err := s.invoiceRepo.FindByInvoiceNumber(ctx, accountID, req.InvoiceNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to check invoice number: %w", err)
	}
	if existing != nil {
		err := shared.NewDomainError("DUPLICATE_INVOICE_NUMBER", "Invoice number already exists")
		telemetry.RecordError(span, err)
		return nil, err
	}

	inv, err := billing.NewInvoice(
		accountID,
		req.InvoiceNumber,
		req.CustomerName,
		billing.SaleChannel(req.Channel),
		req.ContractID,
		req.TxnDate,
		req.Quantity,
		req.UnitRate,
		req.Surcharge,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Remark != "" {
		inv.SetRemark(req.Remark)
	}

	if req.InitialStatus != nil {
		if err := inv.OverrideStatus(billing.InvoiceStatus(*req.InitialStatus)); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	s.invalidateOutstanding(ctx, accountID, inv.CustomerName)

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, inv.ID.String())

	return ToInvoiceResponse(inv), nil
}

// GetInvoice returns a single invoice for the account
func (s *InvoiceService) GetInvoice(ctx context.Context, accountID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForAccount(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.ErrNotFound
	}
	return ToInvoiceResponse(inv), nil
}

// OverrideStatus manually forces the status of an invoice. Amounts are never
// touched; the invoice is flagged as overridden. Uses optimistic locking so a
// concurrent allocation cannot be silently overwritten.
func (s *InvoiceService) OverrideStatus(ctx context.Context, accountID, invoiceID uuid.UUID, req OverrideStatusRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "override_status")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
		"new_status", req.Status,
	)

	inv, err := s.invoiceRepo.FindByIDForAccount(ctx, accountID, invoiceID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if inv == nil {
		err := shared.ErrNotFound
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := inv.OverrideStatus(billing.InvoiceStatus(req.Status)); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.invalidateOutstanding(ctx, accountID, inv.CustomerName)

	return ToInvoiceResponse(inv), nil
}

// InvoiceListResponse is a paginated list of invoices
type InvoiceListResponse struct {
	Items      []InvoiceResponse `json:"items"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// ListInvoices returns invoices for the account with filtering and pagination
func (s *InvoiceService) ListInvoices(ctx context.Context, accountID uuid.UUID, filter billing.InvoiceFilter) (*InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}

	invoices, err := s.invoiceRepo.FindAllForAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	total, err := s.invoiceRepo.CountForAccount(ctx, accountID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}

	items := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, *ToInvoiceResponse(&invoices[i]))
	}

	paginated := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &InvoiceListResponse{
		Items:      paginated.Items,
		Total:      paginated.Total,
		Page:       paginated.Page,
		PageSize:   paginated.PageSize,
		TotalPages: paginated.TotalPages,
	}, nil
}

func (s *InvoiceService) invalidateOutstanding(ctx context.Context, accountID uuid.UUID, customerName string) {
	if s.cache != nil {
		// Cache invalidation failures are not fatal; the entry expires anyway
		_ = s.cache.Invalidate(ctx, accountID, customerName)
	}
}
