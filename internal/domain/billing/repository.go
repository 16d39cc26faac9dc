package billing

import (
	"context"
	"time"

	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerName *string          // Filter by settlement key
	Status       *InvoiceStatus   // Filter by status
	Channel      *SaleChannel     // Filter by sale channel
	ContractID   *uuid.UUID       // Filter by contract
	FromDate     *time.Time       // Filter by transaction date range start
	ToDate       *time.Time       // Filter by transaction date range end
	MinAmount    *decimal.Decimal // Filter by minimum pending amount
	MaxAmount    *decimal.Decimal // Filter by maximum pending amount
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForAccount finds an invoice by ID for a specific account
	FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds by invoice number for an account
	FindByInvoiceNumber(ctx context.Context, accountID uuid.UUID, invoiceNumber string) (*Invoice, error)

	// FindAllForAccount finds all invoices for an account with filtering
	FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindOutstanding finds all outstanding (pending or partial) invoices for a
	// customer, ordered by transaction date ascending with ties broken by
	// creation time. This is the settlement order.
	FindOutstanding(ctx context.Context, accountID uuid.UUID, customerName string) ([]Invoice, error)

	// FindOutstandingForUpdate is FindOutstanding with row locks taken, for use
	// inside an allocation transaction
	FindOutstandingForUpdate(ctx context.Context, accountID uuid.UUID, customerName string) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Delete soft deletes an invoice for an account
	Delete(ctx context.Context, accountID, id uuid.UUID) error

	// CountForAccount counts invoices for an account with optional filters
	CountForAccount(ctx context.Context, accountID uuid.UUID, filter InvoiceFilter) (int64, error)

	// SumPendingByCustomer calculates the total pending amount for a customer
	SumPendingByCustomer(ctx context.Context, accountID uuid.UUID, customerName string) (decimal.Decimal, error)
}

// ContractFilter defines filtering options for contract queries
type ContractFilter struct {
	shared.Filter
	VendorName     *string         // Filter by vendor
	ContractStatus *ContractStatus // Filter by contract status
	AdvanceStatus  *AdvanceStatus  // Filter by advance status
}

// ContractRepository defines the interface for contract persistence
type ContractRepository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByIDForAccount finds a contract by ID for a specific account
	FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*Contract, error)

	// FindByIDForAccountForUpdate is FindByIDForAccount with a row lock taken,
	// for use inside the advance-return transaction
	FindByIDForAccountForUpdate(ctx context.Context, accountID, id uuid.UUID) (*Contract, error)

	// FindAllForAccount finds all contracts for an account with filtering
	FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter ContractFilter) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, contract *Contract) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, contract *Contract) error

	// CountForAccount counts contracts for an account with optional filters
	CountForAccount(ctx context.Context, accountID uuid.UUID, filter ContractFilter) (int64, error)
}

// TxRepositories bundles the repositories bound to one transaction
type TxRepositories interface {
	Invoices() InvoiceRepository
	Contracts() ContractRepository
}

// TxManager runs a function inside a database transaction. Repositories
// obtained from TxRepositories share the transaction; the function returning
// an error rolls everything back.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repos TxRepositories) error) error
}
