package billing

import (
	"fmt"
	"time"

	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdvanceStatus represents the state of a contract advance deposit
type AdvanceStatus string

const (
	AdvanceStatusHeld     AdvanceStatus = "HELD"     // Advance is held against the contract
	AdvanceStatusReturned AdvanceStatus = "RETURNED" // Advance has been returned to the vendor
)

// IsValid checks if the advance status is valid
func (s AdvanceStatus) IsValid() bool {
	return s == AdvanceStatusHeld || s == AdvanceStatusReturned
}

// ContractStatus represents the lifecycle state of a vendor contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// IsValid checks if the contract status is valid
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the contract has finished its lifecycle
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusCancelled
}

// Contract represents a vendor contract aggregate root. The vendor places an
// advance deposit when the contract is taken; returning the advance completes
// the contract in the same step.
type Contract struct {
	shared.AccountAggregateRoot
	ContractNumber    string          `json:"contract_number"`
	VendorName        string          `json:"vendor_name"`
	AdvanceAmount     decimal.Decimal `json:"advance_amount"`
	AdvanceStatus     AdvanceStatus   `json:"advance_status"`
	ContractStatus    ContractStatus  `json:"contract_status"`
	StartDate         time.Time       `json:"start_date"`
	Remark            string          `json:"remark"`
	AdvanceReturnedAt *time.Time      `json:"advance_returned_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason      string          `json:"cancel_reason,omitempty"`
}

// NewContract creates a new active contract with its advance held
func NewContract(
	accountID uuid.UUID,
	contractNumber string,
	vendorName string,
	advanceAmount decimal.Decimal,
	startDate time.Time,
) (*Contract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if len(contractNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot exceed 50 characters")
	}
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	if advanceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_ADVANCE", "Advance amount must be positive")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}

	c := &Contract{
		AccountAggregateRoot: shared.NewAccountAggregateRoot(accountID),
		ContractNumber:       contractNumber,
		VendorName:           vendorName,
		AdvanceAmount:        advanceAmount,
		AdvanceStatus:        AdvanceStatusHeld,
		ContractStatus:       ContractStatusActive,
		StartDate:            startDate,
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// ReturnAdvance returns the held advance to the vendor and completes the
// contract in the same transition. Allowed exactly once, and only while the
// contract is ACTIVE with the advance HELD; any other state leaves the
// contract unchanged.
func (c *Contract) ReturnAdvance() error {
	if c.ContractStatus != ContractStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot return advance on %s contract", c.ContractStatus))
	}
	if c.AdvanceStatus != AdvanceStatusHeld {
		return shared.NewDomainError("INVALID_STATE", "Advance has already been returned")
	}

	now := time.Now()
	c.AdvanceStatus = AdvanceStatusReturned
	c.ContractStatus = ContractStatusCompleted
	c.AdvanceReturnedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewContractAdvanceReturnedEvent(c))

	return nil
}

// Cancel cancels an active contract without touching the advance. What
// happens to a held advance on cancellation is settled outside the ledger.
func (c *Contract) Cancel(reason string) error {
	if c.ContractStatus.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel %s contract", c.ContractStatus))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	c.ContractStatus = ContractStatusCancelled
	c.CancelledAt = &now
	c.CancelReason = reason
	c.UpdatedAt = now
	c.IncrementVersion()

	c.AddDomainEvent(NewContractCancelledEvent(c))

	return nil
}

// SetRemark sets the remark
func (c *Contract) SetRemark(remark string) {
	c.Remark = remark
	c.Touch()
	c.IncrementVersion()
}

// IsActive returns true if the contract is still running
func (c *Contract) IsActive() bool {
	return c.ContractStatus == ContractStatusActive
}

// AdvanceHeld returns true if the advance is still held
func (c *Contract) AdvanceHeld() bool {
	return c.AdvanceStatus == AdvanceStatusHeld
}
