package billing

import (
	"time"

	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractCreatedEvent is raised when a new vendor contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	VendorName     string          `json:"vendor_name"`
	AdvanceAmount  decimal.Decimal `json:"advance_amount"`
	StartDate      time.Time       `json:"start_date"`
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string {
	return "ContractCreated"
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCreated", "Contract", c.ID, c.AccountID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		VendorName:      c.VendorName,
		AdvanceAmount:   c.AdvanceAmount,
		StartDate:       c.StartDate,
	}
}

// ContractAdvanceReturnedEvent is raised when the advance is returned and the contract completed
type ContractAdvanceReturnedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	VendorName     string          `json:"vendor_name"`
	AdvanceAmount  decimal.Decimal `json:"advance_amount"`
	ReturnedAt     time.Time       `json:"returned_at"`
}

// EventType returns the event type name
func (e *ContractAdvanceReturnedEvent) EventType() string {
	return "ContractAdvanceReturned"
}

// NewContractAdvanceReturnedEvent creates a new ContractAdvanceReturnedEvent
func NewContractAdvanceReturnedEvent(c *Contract) *ContractAdvanceReturnedEvent {
	returnedAt := time.Now()
	if c.AdvanceReturnedAt != nil {
		returnedAt = *c.AdvanceReturnedAt
	}
	return &ContractAdvanceReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractAdvanceReturned", "Contract", c.ID, c.AccountID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		VendorName:      c.VendorName,
		AdvanceAmount:   c.AdvanceAmount,
		ReturnedAt:      returnedAt,
	}
}

// ContractCancelledEvent is raised when a contract is cancelled
type ContractCancelledEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID     `json:"contract_id"`
	ContractNumber string        `json:"contract_number"`
	VendorName     string        `json:"vendor_name"`
	AdvanceStatus  AdvanceStatus `json:"advance_status"`
	CancelReason   string        `json:"cancel_reason"`
}

// EventType returns the event type name
func (e *ContractCancelledEvent) EventType() string {
	return "ContractCancelled"
}

// NewContractCancelledEvent creates a new ContractCancelledEvent
func NewContractCancelledEvent(c *Contract) *ContractCancelledEvent {
	return &ContractCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ContractCancelled", "Contract", c.ID, c.AccountID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		VendorName:      c.VendorName,
		AdvanceStatus:   c.AdvanceStatus,
		CancelReason:    c.CancelReason,
	}
}
