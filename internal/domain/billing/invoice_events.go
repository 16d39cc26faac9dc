package billing

import (
	"time"

	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceCreatedEvent is raised when a new sale invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	Channel       SaleChannel     `json:"channel"`
	ContractID    *uuid.UUID      `json:"contract_id,omitempty"`
	TxnDate       time.Time       `json:"txn_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID, inv.AccountID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		Channel:         inv.Channel,
		ContractID:      inv.ContractID,
		TxnDate:         inv.TxnDate,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoicePaymentAppliedEvent is raised when a partial payment is allocated to an invoice
type InvoicePaymentAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	AmountPending decimal.Decimal `json:"amount_pending"`
}

// EventType returns the event type name
func (e *InvoicePaymentAppliedEvent) EventType() string {
	return "InvoicePaymentApplied"
}

// NewInvoicePaymentAppliedEvent creates a new InvoicePaymentAppliedEvent
func NewInvoicePaymentAppliedEvent(inv *Invoice, paymentAmount decimal.Decimal) *InvoicePaymentAppliedEvent {
	return &InvoicePaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoicePaymentApplied", "Invoice", inv.ID, inv.AccountID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		PaymentAmount:   paymentAmount,
		TotalAmount:     inv.TotalAmount,
		AmountPaid:      inv.AmountPaid,
		AmountPending:   inv.AmountPending,
	}
}

// InvoiceSettledEvent is raised when an invoice becomes fully settled
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	SettledAt     time.Time       `json:"settled_at"`
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return "InvoiceSettled"
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(inv *Invoice) *InvoiceSettledEvent {
	settledAt := time.Now()
	if inv.SettledAt != nil {
		settledAt = *inv.SettledAt
	}
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSettled", "Invoice", inv.ID, inv.AccountID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		TotalAmount:     inv.TotalAmount,
		AmountPaid:      inv.AmountPaid,
		SettledAt:       settledAt,
	}
}

// InvoiceStatusOverriddenEvent is raised when the status is manually forced
type InvoiceStatusOverriddenEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID     `json:"invoice_id"`
	InvoiceNumber  string        `json:"invoice_number"`
	CustomerName   string        `json:"customer_name"`
	PreviousStatus InvoiceStatus `json:"previous_status"`
	NewStatus      InvoiceStatus `json:"new_status"`
}

// EventType returns the event type name
func (e *InvoiceStatusOverriddenEvent) EventType() string {
	return "InvoiceStatusOverridden"
}

// NewInvoiceStatusOverriddenEvent creates a new InvoiceStatusOverriddenEvent
func NewInvoiceStatusOverriddenEvent(inv *Invoice, previous InvoiceStatus) *InvoiceStatusOverriddenEvent {
	return &InvoiceStatusOverriddenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceStatusOverridden", "Invoice", inv.ID, inv.AccountID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerName:    inv.CustomerName,
		PreviousStatus:  previous,
		NewStatus:       inv.Status,
	}
}
