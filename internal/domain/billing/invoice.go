package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of a sale invoice
type InvoiceStatus string

const (
	InvoiceStatusPending  InvoiceStatus = "PENDING"  // Nothing received yet
	InvoiceStatusPartial  InvoiceStatus = "PARTIAL"  // Some money received, some still due
	InvoiceStatusReceived InvoiceStatus = "RECEIVED" // Fully settled (or over-settled)
	InvoiceStatusReturned InvoiceStatus = "RETURNED" // Goods returned, invoice voided
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartial, InvoiceStatusReceived, InvoiceStatusReturned:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsOutstanding returns true if the invoice still takes part in settlement
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartial
}

// ClassifyStatus derives the invoice status from the paid and total amounts.
// Zero or negative paid means PENDING, paid at or above total means RECEIVED,
// anything in between is PARTIAL. Overpayment collapses to RECEIVED.
func ClassifyStatus(amountPaid, totalAmount decimal.Decimal) InvoiceStatus {
	if amountPaid.LessThanOrEqual(decimal.Zero) {
		return InvoiceStatusPending
	}
	if amountPaid.GreaterThanOrEqual(totalAmount) {
		return InvoiceStatusReceived
	}
	return InvoiceStatusPartial
}

// SaleChannel represents how the sale behind an invoice was made
type SaleChannel string

const (
	SaleChannelContract   SaleChannel = "CONTRACT"    // Sale against a vendor contract
	SaleChannelSpotMarket SaleChannel = "SPOT_MARKET" // Open market sale
	SaleChannelDirect     SaleChannel = "DIRECT"      // Direct sale to a known customer
)

// IsValid checks if the sale channel is valid
func (c SaleChannel) IsValid() bool {
	switch c {
	case SaleChannelContract, SaleChannelSpotMarket, SaleChannelDirect:
		return true
	}
	return false
}

// PaymentMethod represents how a payment was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodUPI,
		PaymentMethodCheque, PaymentMethodOther:
		return true
	}
	return false
}

// AllocationRecord represents one payment allocation applied to the invoice.
// This is a value object within the Invoice aggregate, stored as JSONB.
type AllocationRecord struct {
	ID          uuid.UUID       `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      PaymentMethod   `json:"method"`
	AppliedAt   time.Time       `json:"applied_at"`
	Remark      string          `json:"remark,omitempty"`
}

// AllocationRecords is a slice of AllocationRecord that implements GORM Scanner/Valuer for JSONB storage
type AllocationRecords []AllocationRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (a AllocationRecords) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (a *AllocationRecords) Scan(value interface{}) error {
	if value == nil {
		*a = AllocationRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan AllocationRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*a = AllocationRecords{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Invoice represents a sale invoice aggregate root. It tracks money owed by a
// customer for a recorded sale and carries the allocation history of payments
// applied against it.
type Invoice struct {
	shared.AccountAggregateRoot
	InvoiceNumber     string            `json:"invoice_number"`
	CustomerName      string            `json:"customer_name"` // Settlement key, unique per account
	ContractID        *uuid.UUID        `json:"contract_id,omitempty"`
	Channel           SaleChannel       `json:"channel"`
	TxnDate           time.Time         `json:"txn_date"`
	Quantity          decimal.Decimal   `json:"quantity"`
	UnitRate          decimal.Decimal   `json:"unit_rate"`
	Surcharge         decimal.Decimal   `json:"surcharge"`
	TotalAmount       decimal.Decimal   `json:"total_amount"` // Quantity * (UnitRate + Surcharge), fixed at creation
	AmountPaid        decimal.Decimal   `json:"amount_paid"`
	AmountPending     decimal.Decimal   `json:"amount_pending"`
	Status            InvoiceStatus     `json:"status"`
	StatusOverridden  bool              `json:"status_overridden"`
	OverriddenAt      *time.Time        `json:"overridden_at,omitempty"`
	AllocationRecords AllocationRecords `json:"allocation_records"`
	Remark            string            `json:"remark"`
	SettledAt         *time.Time        `json:"settled_at,omitempty"`
}

// NewInvoice creates a new sale invoice. The total amount is computed once
// from quantity, unit rate and the optional per-unit surcharge; later status
// changes never recompute it.
func NewInvoice(
	accountID uuid.UUID,
	invoiceNumber string,
	customerName string,
	channel SaleChannel,
	contractID *uuid.UUID,
	txnDate time.Time,
	quantity decimal.Decimal,
	unitRate decimal.Decimal,
	surcharge decimal.Decimal,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Sale channel is not valid")
	}
	if channel == SaleChannelContract && (contractID == nil || *contractID == uuid.Nil) {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract channel invoices require a contract ID")
	}
	if txnDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_TXN_DATE", "Transaction date is required")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitRate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Unit rate must be positive")
	}
	if surcharge.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SURCHARGE", "Surcharge cannot be negative")
	}

	total := quantity.Mul(unitRate.Add(surcharge))

	inv := &Invoice{
		AccountAggregateRoot: shared.NewAccountAggregateRoot(accountID),
		InvoiceNumber:        invoiceNumber,
		CustomerName:         customerName,
		ContractID:           contractID,
		Channel:              channel,
		TxnDate:              txnDate,
		Quantity:             quantity,
		UnitRate:             unitRate,
		Surcharge:            surcharge,
		TotalAmount:          total,
		AmountPaid:           decimal.Zero,
		AmountPending:        total,
		Status:               InvoiceStatusPending,
		AllocationRecords:    AllocationRecords{},
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// ApplyAllocation applies an allocated payment slice to the invoice. The
// amount must not exceed the pending amount; the allocator is responsible for
// capping it. Paid and pending amounts move together so that
// paid + pending == total on the derived path, and the status is re-derived
// from the amounts.
func (inv *Invoice) ApplyAllocation(amount decimal.Decimal, paymentDate time.Time, method PaymentMethod, remark string) error {
	if !inv.Status.IsOutstanding() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	if amount.GreaterThan(inv.AmountPending) {
		return shared.NewDomainError("EXCEEDS_PENDING", fmt.Sprintf("Allocation amount %s exceeds pending amount %s", amount.StringFixed(2), inv.AmountPending.StringFixed(2)))
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}

	inv.AllocationRecords = append(inv.AllocationRecords, AllocationRecord{
		ID:          uuid.New(),
		Amount:      amount,
		PaymentDate: paymentDate,
		Method:      method,
		AppliedAt:   time.Now(),
		Remark:      remark,
	})

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	inv.AmountPending = inv.TotalAmount.Sub(inv.AmountPaid)

	inv.Status = ClassifyStatus(inv.AmountPaid, inv.TotalAmount)
	if inv.Status == InvoiceStatusReceived {
		now := time.Now()
		inv.SettledAt = &now
		inv.AddDomainEvent(NewInvoiceSettledEvent(inv))
	} else {
		inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, amount))
	}

	inv.Touch()
	inv.IncrementVersion()

	return nil
}

// OverrideStatus manually forces the invoice into the given status. Amounts
// are left untouched, so an overridden invoice may violate the derived
// paid/pending relation; the override flag records that the status no longer
// reflects the allocation history.
func (inv *Invoice) OverrideStatus(newStatus InvoiceStatus) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Status is not valid")
	}

	previous := inv.Status
	now := time.Now()
	inv.Status = newStatus
	inv.StatusOverridden = true
	inv.OverriddenAt = &now
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceStatusOverriddenEvent(inv, previous))

	return nil
}

// SetRemark sets the remark
func (inv *Invoice) SetRemark(remark string) {
	inv.Remark = remark
	inv.Touch()
	inv.IncrementVersion()
}

// IsPending returns true if nothing has been received yet
func (inv *Invoice) IsPending() bool {
	return inv.Status == InvoiceStatusPending
}

// IsPartial returns true if the invoice is partially settled
func (inv *Invoice) IsPartial() bool {
	return inv.Status == InvoiceStatusPartial
}

// IsReceived returns true if the invoice is fully settled
func (inv *Invoice) IsReceived() bool {
	return inv.Status == InvoiceStatusReceived
}

// AllocationCount returns the number of allocations applied
func (inv *Invoice) AllocationCount() int {
	return len(inv.AllocationRecords)
}
