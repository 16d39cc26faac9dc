package models

import (
	"time"

	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate.
type InvoiceModel struct {
	AccountAggregateModel
	InvoiceNumber     string                    `gorm:"type:varchar(50);not null"`
	CustomerName      string                    `gorm:"type:varchar(200);not null;index"`
	ContractID        *uuid.UUID                `gorm:"type:uuid;index"`
	Channel           billing.SaleChannel       `gorm:"type:varchar(20);not null"`
	TxnDate           time.Time                 `gorm:"not null;index"`
	Quantity          decimal.Decimal           `gorm:"type:numeric(18,3);not null"`
	UnitRate          decimal.Decimal           `gorm:"type:numeric(18,2);not null"`
	Surcharge         decimal.Decimal           `gorm:"type:numeric(18,2);not null;default:0"`
	TotalAmount       decimal.Decimal           `gorm:"type:numeric(18,2);not null"`
	AmountPaid        decimal.Decimal           `gorm:"type:numeric(18,2);not null;default:0"`
	AmountPending     decimal.Decimal           `gorm:"type:numeric(18,2);not null"`
	Status            billing.InvoiceStatus     `gorm:"type:varchar(20);not null;index"`
	StatusOverridden  bool                      `gorm:"not null;default:false"`
	OverriddenAt      *time.Time                ``
	AllocationRecords billing.AllocationRecords `gorm:"type:jsonb;default:'[]'"`
	Remark            string                    `gorm:"type:text"`
	SettledAt         *time.Time                ``
	DeletedAt         *time.Time                `gorm:"index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber:     m.InvoiceNumber,
		CustomerName:      m.CustomerName,
		ContractID:        m.ContractID,
		Channel:           m.Channel,
		TxnDate:           m.TxnDate,
		Quantity:          m.Quantity,
		UnitRate:          m.UnitRate,
		Surcharge:         m.Surcharge,
		TotalAmount:       m.TotalAmount,
		AmountPaid:        m.AmountPaid,
		AmountPending:     m.AmountPending,
		Status:            m.Status,
		StatusOverridden:  m.StatusOverridden,
		OverriddenAt:      m.OverriddenAt,
		AllocationRecords: m.AllocationRecords,
		Remark:            m.Remark,
		SettledAt:         m.SettledAt,
	}
	m.PopulateAccountAggregateRoot(&inv.AccountAggregateRoot)
	if inv.AllocationRecords == nil {
		inv.AllocationRecords = billing.AllocationRecords{}
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAccountAggregateRoot(inv.AccountAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerName = inv.CustomerName
	m.ContractID = inv.ContractID
	m.Channel = inv.Channel
	m.TxnDate = inv.TxnDate
	m.Quantity = inv.Quantity
	m.UnitRate = inv.UnitRate
	m.Surcharge = inv.Surcharge
	m.TotalAmount = inv.TotalAmount
	m.AmountPaid = inv.AmountPaid
	m.AmountPending = inv.AmountPending
	m.Status = inv.Status
	m.StatusOverridden = inv.StatusOverridden
	m.OverriddenAt = inv.OverriddenAt
	m.AllocationRecords = inv.AllocationRecords
	m.Remark = inv.Remark
	m.SettledAt = inv.SettledAt
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ContractModel is the persistence model for the Contract aggregate.
type ContractModel struct {
	AccountAggregateModel
	ContractNumber    string                 `gorm:"type:varchar(50);not null"`
	VendorName        string                 `gorm:"type:varchar(200);not null;index"`
	AdvanceAmount     decimal.Decimal        `gorm:"type:numeric(18,2);not null"`
	AdvanceStatus     billing.AdvanceStatus  `gorm:"type:varchar(20);not null"`
	ContractStatus    billing.ContractStatus `gorm:"type:varchar(20);not null;index"`
	StartDate         time.Time              `gorm:"not null"`
	Remark            string                 `gorm:"type:text"`
	AdvanceReturnedAt *time.Time             ``
	CancelledAt       *time.Time             ``
	CancelReason      string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContractModel) TableName() string {
	return "contracts"
}

// ToDomain converts the persistence model to a domain Contract aggregate.
func (m *ContractModel) ToDomain() *billing.Contract {
	c := &billing.Contract{
		ContractNumber:    m.ContractNumber,
		VendorName:        m.VendorName,
		AdvanceAmount:     m.AdvanceAmount,
		AdvanceStatus:     m.AdvanceStatus,
		ContractStatus:    m.ContractStatus,
		StartDate:         m.StartDate,
		Remark:            m.Remark,
		AdvanceReturnedAt: m.AdvanceReturnedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
	m.PopulateAccountAggregateRoot(&c.AccountAggregateRoot)
	return c
}

// FromDomain populates the persistence model from a domain Contract aggregate.
func (m *ContractModel) FromDomain(c *billing.Contract) {
	m.FromDomainAccountAggregateRoot(c.AccountAggregateRoot)
	m.ContractNumber = c.ContractNumber
	m.VendorName = c.VendorName
	m.AdvanceAmount = c.AdvanceAmount
	m.AdvanceStatus = c.AdvanceStatus
	m.ContractStatus = c.ContractStatus
	m.StartDate = c.StartDate
	m.Remark = c.Remark
	m.AdvanceReturnedAt = c.AdvanceReturnedAt
	m.CancelledAt = c.CancelledAt
	m.CancelReason = c.CancelReason
}

// ContractModelFromDomain creates a new persistence model from a domain Contract aggregate.
func ContractModelFromDomain(c *billing.Contract) *ContractModel {
	m := &ContractModel{}
	m.FromDomain(c)
	return m
}
