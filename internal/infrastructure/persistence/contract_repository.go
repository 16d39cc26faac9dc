package persistence

import (
	"context"
	"errors"

	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/farmbook/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContractRepository implements ContractRepository using GORM
type GormContractRepository struct {
	db *gorm.DB
}

// NewGormContractRepository creates a new GormContractRepository
func NewGormContractRepository(db *gorm.DB) *GormContractRepository {
	return &GormContractRepository{db: db}
}

// FindByID finds a contract by its ID
func (r *GormContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Contract, error) {
	var model models.ContractModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForAccount finds a contract by ID within an account
func (r *GormContractRepository) FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*billing.Contract, error) {
	return r.findByIDForAccount(ctx, r.db, accountID, id)
}

// FindByIDForAccountForUpdate is FindByIDForAccount with a row lock taken.
// Must be called inside a transaction.
func (r *GormContractRepository) FindByIDForAccountForUpdate(ctx context.Context, accountID, id uuid.UUID) (*billing.Contract, error) {
	return r.findByIDForAccount(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), accountID, id)
}

func (r *GormContractRepository) findByIDForAccount(ctx context.Context, db *gorm.DB, accountID, id uuid.UUID) (*billing.Contract, error) {
	var model models.ContractModel
	if err := db.WithContext(ctx).
		Where("account_id = ? AND id = ?", accountID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForAccount finds all contracts for an account with filtering
func (r *GormContractRepository) FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter billing.ContractFilter) ([]billing.Contract, error) {
	var contractModels []models.ContractModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).
			Where("account_id = ?", accountID),
		filter,
	)

	if err := query.Find(&contractModels).Error; err != nil {
		return nil, err
	}

	contracts := make([]billing.Contract, len(contractModels))
	for i, model := range contractModels {
		contracts[i] = *model.ToDomain()
	}
	return contracts, nil
}

// Save creates or updates a contract
func (r *GormContractRepository) Save(ctx context.Context, contract *billing.Contract) error {
	model := models.ContractModelFromDomain(contract)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a contract with optimistic locking (version check).
// Returns ErrConcurrencyConflict if the version has changed underneath us.
func (r *GormContractRepository) SaveWithLock(ctx context.Context, contract *billing.Contract) error {
	model := models.ContractModelFromDomain(contract)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", contract.ID, contract.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountForAccount counts contracts for an account matching the filter
func (r *GormContractRepository) CountForAccount(ctx context.Context, accountID uuid.UUID, filter billing.ContractFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.ContractModel{}).
			Where("account_id = ?", accountID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormContractRepository) applyFilter(query *gorm.DB, filter billing.ContractFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ContractSortFields, "start_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir + ", created_at ASC")

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.ContractFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("contract_number ILIKE ? OR vendor_name ILIKE ?", searchPattern, searchPattern)
	}
	if filter.VendorName != nil {
		query = query.Where("vendor_name = ?", *filter.VendorName)
	}
	if filter.ContractStatus != nil {
		query = query.Where("contract_status = ?", *filter.ContractStatus)
	}
	if filter.AdvanceStatus != nil {
		query = query.Where("advance_status = ?", *filter.AdvanceStatus)
	}

	return query
}

// Ensure GormContractRepository implements ContractRepository
var _ billing.ContractRepository = (*GormContractRepository)(nil)
