package handler

import (
	"context"
	"testing"
	"time"

	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/farmbook/backend/internal/interfaces/http/middleware"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, accountID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, accountID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter billing.InvoiceFilter) ([]billing.Invoice, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstanding(ctx context.Context, accountID uuid.UUID, customerName string) ([]billing.Invoice, error) {
	args := m.Called(ctx, accountID, customerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstandingForUpdate(ctx context.Context, accountID uuid.UUID, customerName string) ([]billing.Invoice, error) {
	args := m.Called(ctx, accountID, customerName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	args := m.Called(ctx, accountID, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForAccount(ctx context.Context, accountID uuid.UUID, filter billing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SumPendingByCustomer(ctx context.Context, accountID uuid.UUID, customerName string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, customerName)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockContractRepository is a mock implementation of billing.ContractRepository
type MockContractRepository struct {
	mock.Mock
}

func (m *MockContractRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForAccount(ctx context.Context, accountID, id uuid.UUID) (*billing.Contract, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Contract), args.Error(1)
}

func (m *MockContractRepository) FindByIDForAccountForUpdate(ctx context.Context, accountID, id uuid.UUID) (*billing.Contract, error) {
	args := m.Called(ctx, accountID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Contract), args.Error(1)
}

func (m *MockContractRepository) FindAllForAccount(ctx context.Context, accountID uuid.UUID, filter billing.ContractFilter) ([]billing.Contract, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Contract), args.Error(1)
}

func (m *MockContractRepository) Save(ctx context.Context, contract *billing.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) SaveWithLock(ctx context.Context, contract *billing.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepository) CountForAccount(ctx context.Context, accountID uuid.UUID, filter billing.ContractFilter) (int64, error) {
	args := m.Called(ctx, accountID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// stubTxRepositories hands the test's mocks to code running inside a transaction
type stubTxRepositories struct {
	invoices  billing.InvoiceRepository
	contracts billing.ContractRepository
}

func (s stubTxRepositories) Invoices() billing.InvoiceRepository   { return s.invoices }
func (s stubTxRepositories) Contracts() billing.ContractRepository { return s.contracts }

// stubTxManager runs the transactional function directly against the stubs
type stubTxManager struct {
	repos stubTxRepositories
}

func (s stubTxManager) InTx(ctx context.Context, fn func(ctx context.Context, repos billing.TxRepositories) error) error {
	return fn(ctx, s.repos)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// authedAs is test middleware that injects the identity the JWT middleware
// would normally establish
func authedAs(accountID, userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.JWTAccountIDKey, accountID.String())
		c.Set(middleware.JWTUserIDKey, userID.String())
		c.Next()
	}
}

func newTestInvoice(t *testing.T, accountID uuid.UUID, number, customer string, txnDate time.Time, quantity, rate string) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(
		accountID,
		number,
		customer,
		billing.SaleChannelDirect,
		nil,
		txnDate,
		mustDecimal(quantity),
		mustDecimal(rate),
		decimal.Zero,
	)
	require.NoError(t, err)
	return inv
}

func newTestContract(t *testing.T, accountID uuid.UUID, number, vendor, advance string) *billing.Contract {
	t.Helper()
	contract, err := billing.NewContract(
		accountID,
		number,
		vendor,
		mustDecimal(advance),
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return contract
}
