package persistence

import (
	"context"
	"errors"

	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/farmbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForAccount finds an invoice by ID within an account
func (r *GormInvoiceRepository) FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND id = ? AND deleted_at IS NULL", accountID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceNumber finds an invoice by its number within an account
func (r *GormInvoiceRepository) FindByInvoiceNumber(ctx context.Context, accountID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("account_id = ? AND invoice_number = ? AND deleted_at IS NULL", accountID, invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForAccount finds all invoices for an account with filtering
func (r *GormInvoiceRepository) FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("account_id = ? AND deleted_at IS NULL", accountID),
		filter,
	)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// FindOutstanding finds the customer's PENDING and PARTIAL invoices in
// settlement order: transaction date ascending, ties broken by creation time.
func (r *GormInvoiceRepository) FindOutstanding(ctx context.Context, accountID uuid.UUID, customerName string) ([]billing.Invoice, error) {
	return r.findOutstanding(ctx, r.db, accountID, customerName)
}

// FindOutstandingForUpdate is FindOutstanding with row locks taken. Must be
// called inside a transaction.
func (r *GormInvoiceRepository) FindOutstandingForUpdate(ctx context.Context, accountID uuid.UUID, customerName string) ([]billing.Invoice, error) {
	return r.findOutstanding(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), accountID, customerName)
}

func (r *GormInvoiceRepository) findOutstanding(ctx context.Context, db *gorm.DB, accountID uuid.UUID, customerName string) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	err := db.WithContext(ctx).
		Where("account_id = ? AND customer_name = ? AND status IN ? AND deleted_at IS NULL",
			accountID, customerName,
			[]billing.InvoiceStatus{billing.InvoiceStatusPending, billing.InvoiceStatusPartial}).
		Order("txn_date ASC, created_at ASC").
		Find(&invoiceModels).Error
	if err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves an invoice with optimistic locking (version check).
// Returns ErrConcurrencyConflict if the version has changed underneath us.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", invoice.ID, invoice.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete soft deletes an invoice within an account
func (r *GormInvoiceRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("account_id = ? AND id = ? AND deleted_at IS NULL", accountID, id).
		Update("deleted_at", gorm.Expr("NOW()"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForAccount counts invoices for an account matching the filter
func (r *GormInvoiceRepository) CountForAccount(ctx context.Context, accountID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("account_id = ? AND deleted_at IS NULL", accountID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPendingByCustomer calculates the total pending amount for a customer
func (r *GormInvoiceRepository) SumPendingByCustomer(ctx context.Context, accountID uuid.UUID, customerName string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("SUM(amount_pending)").
		Where("account_id = ? AND customer_name = ? AND status IN ? AND deleted_at IS NULL",
			accountID, customerName,
			[]billing.InvoiceStatus{billing.InvoiceStatusPending, billing.InvoiceStatusPartial}).
		Scan(&sum).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "txn_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir + ", created_at ASC")

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", searchPattern, searchPattern)
	}
	if filter.CustomerName != nil {
		query = query.Where("customer_name = ?", *filter.CustomerName)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}
	if filter.ContractID != nil {
		query = query.Where("contract_id = ?", *filter.ContractID)
	}
	if filter.FromDate != nil {
		query = query.Where("txn_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("txn_date <= ?", *filter.ToDate)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount_pending >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount_pending <= ?", *filter.MaxAmount)
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
