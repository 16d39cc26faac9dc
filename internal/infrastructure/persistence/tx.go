package persistence

import (
	"context"

	"github.com/farmbook/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormTxManager implements billing.TxManager on top of GORM transactions.
// Repositories handed to the callback are bound to the transaction; any error
// returned from the callback rolls the whole transaction back.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// InTx runs fn inside a database transaction
func (m *GormTxManager) InTx(ctx context.Context, fn func(ctx context.Context, repos billing.TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTxRepositories{tx: tx})
	})
}

// gormTxRepositories bundles repositories sharing one transaction
type gormTxRepositories struct {
	tx        *gorm.DB
	invoices  *GormInvoiceRepository
	contracts *GormContractRepository
}

func (r *gormTxRepositories) Invoices() billing.InvoiceRepository {
	if r.invoices == nil {
		r.invoices = NewGormInvoiceRepository(r.tx)
	}
	return r.invoices
}

func (r *gormTxRepositories) Contracts() billing.ContractRepository {
	if r.contracts == nil {
		r.contracts = NewGormContractRepository(r.tx)
	}
	return r.contracts
}

// Ensure GormTxManager implements TxManager
var _ billing.TxManager = (*GormTxManager)(nil)
