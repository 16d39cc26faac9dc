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

// ContractService manages vendor contracts and their advance deposits
type ContractService struct {
	txManager    billing.TxManager
	contractRepo billing.ContractRepository
}

// NewContractService creates a new ContractService
func NewContractService(txManager billing.TxManager, contractRepo billing.ContractRepository) *ContractService {
	return &ContractService{
		txManager:    txManager,
		contractRepo: contractRepo,
	}
}

// CreateContractRequest represents a request to open a vendor contract
type CreateContractRequest struct {
	ContractNumber string          `json:"contract_number"`
	VendorName     string          `json:"vendor_name"`
	AdvanceAmount  decimal.Decimal `json:"advance_amount"`
	StartDate      time.Time       `json:"start_date"`
	Remark         string          `json:"remark,omitempty"`
}

// CancelContractRequest carries the cancellation reason
type CancelContractRequest struct {
	Reason string `json:"reason"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID                uuid.UUID       `json:"id"`
	AccountID         uuid.UUID       `json:"account_id"`
	ContractNumber    string          `json:"contract_number"`
	VendorName        string          `json:"vendor_name"`
	AdvanceAmount     decimal.Decimal `json:"advance_amount"`
	AdvanceStatus     string          `json:"advance_status"`
	ContractStatus    string          `json:"contract_status"`
	StartDate         time.Time       `json:"start_date"`
	Remark            string          `json:"remark,omitempty"`
	AdvanceReturnedAt *time.Time      `json:"advance_returned_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason      string          `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToContractResponse converts a contract aggregate to a response DTO
func ToContractResponse(c *billing.Contract) *ContractResponse {
	return &ContractResponse{
		ID:                c.ID,
		AccountID:         c.AccountID,
		ContractNumber:    c.ContractNumber,
		VendorName:        c.VendorName,
		AdvanceAmount:     c.AdvanceAmount,
		AdvanceStatus:     string(c.AdvanceStatus),
		ContractStatus:    string(c.ContractStatus),
		StartDate:         c.StartDate,
		Remark:            c.Remark,
		AdvanceReturnedAt: c.AdvanceReturnedAt,
		CancelledAt:       c.CancelledAt,
		CancelReason:      c.CancelReason,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
		Version:           c.Version,
	}
}

// CreateContract opens a new vendor contract with the advance held
func (s *ContractService) CreateContract(ctx context.Context, accountID uuid.UUID, req CreateContractRequest) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "create")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrVendorName, req.VendorName,
		telemetry.SpanAttrAmount, req.AdvanceAmount.String(),
	)

	contract, err := billing.NewContract(
		accountID,
		req.ContractNumber,
		req.VendorName,
		req.AdvanceAmount,
		req.StartDate,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.Remark != "" {
		contract.SetRemark(req.Remark)
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, contract.ID.String())

	return ToContractResponse(contract), nil
}

// GetContract returns a single contract for the account
func (s *ContractService) GetContract(ctx context.Context, accountID, contractID uuid.UUID) (*ContractResponse, error) {
	contract, err := s.contractRepo.FindByIDForAccount(ctx, accountID, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, shared.ErrNotFound
	}
	return ToContractResponse(contract), nil
}

// ReturnAdvance marks the advance returned and the contract completed in one
// atomic step. The row is locked for the duration of the transaction and the
// save is version guarded, so concurrent return attempts serialize and only
// the first one succeeds.
func (s *ContractService) ReturnAdvance(ctx context.Context, accountID, contractID uuid.UUID) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "return_advance")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, contractID.String())

	var response *ContractResponse
	err := s.txManager.InTx(ctx, func(ctx context.Context, repos billing.TxRepositories) error {
		contract, err := repos.Contracts().FindByIDForAccountForUpdate(ctx, accountID, contractID)
		if err != nil {
			return err
		}
		if contract == nil {
			return shared.ErrNotFound
		}

		if err := contract.ReturnAdvance(); err != nil {
			return err
		}

		if err := repos.Contracts().SaveWithLock(ctx, contract); err != nil {
			return err
		}

		response = ToContractResponse(contract)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "advance_returned",
		telemetry.SpanAttrAmount, response.AdvanceAmount.String(),
	)

	return response, nil
}

// CancelContract cancels an active contract; the advance is left as is
func (s *ContractService) CancelContract(ctx context.Context, accountID, contractID uuid.UUID, req CancelContractRequest) (*ContractResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "contract", "cancel")
	defer span.End()

	telemetry.SetAttribute(span, telemetry.SpanAttrContractID, contractID.String())

	contract, err := s.contractRepo.FindByIDForAccount(ctx, accountID, contractID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, shared.ErrNotFound
	}

	if err := contract.Cancel(req.Reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, contract); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	return ToContractResponse(contract), nil
}

// ListContracts returns contracts for the account with filtering
func (s *ContractService) ListContracts(ctx context.Context, accountID uuid.UUID, filter billing.ContractFilter) ([]ContractResponse, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}

	contracts, err := s.contractRepo.FindAllForAccount(ctx, accountID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}

	total, err := s.contractRepo.CountForAccount(ctx, accountID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count contracts: %w", err)
	}

	items := make([]ContractResponse, 0, len(contracts))
	for i := range contracts {
		items = append(items, *ToContractResponse(&contracts[i]))
	}

	return items, total, nil
}
