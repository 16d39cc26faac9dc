package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/farmbook/backend/internal/domain/billing"
	"github.com/farmbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockInvoiceRepository creates a GormInvoiceRepository with a mocked SQL connection
func newMockInvoiceRepository(t *testing.T) (*GormInvoiceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormInvoiceRepository(gormDB), mock, mockDB
}

func invoiceRows(ids ...uuid.UUID) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "account_id",
		"invoice_number", "customer_name", "channel", "txn_date",
		"quantity", "unit_rate", "surcharge", "total_amount",
		"amount_paid", "amount_pending", "status", "status_overridden",
		"allocation_records", "remark",
	})
	now := time.Now()
	for i, id := range ids {
		rows.AddRow(
			id, now, now, 1, uuid.New(),
			"INV-00"+string(rune('1'+i)), "Sharma Traders", "DIRECT", now,
			decimal.NewFromInt(10), decimal.NewFromInt(50), decimal.Zero, decimal.NewFromInt(500),
			decimal.Zero, decimal.NewFromInt(500), "PENDING", false,
			"[]", "",
		)
	}
	return rows
}

func TestGormInvoiceRepository_FindByIDForAccount(t *testing.T) {
	t.Run("finds existing invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()
		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE account_id = \$1 AND id = \$2 AND deleted_at IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(accountID, invoiceID, 1).
			WillReturnRows(invoiceRows(invoiceID))

		inv, err := repo.FindByIDForAccount(context.Background(), accountID, invoiceID)

		assert.NoError(t, err)
		require.NotNil(t, inv)
		assert.Equal(t, invoiceID, inv.ID)
		assert.Equal(t, "INV-001", inv.InvoiceNumber)
		assert.True(t, inv.AmountPending.Equal(decimal.NewFromInt(500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()
		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE account_id = \$1 AND id = \$2 AND deleted_at IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(accountID, invoiceID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByIDForAccount(context.Background(), accountID, invoiceID)

		assert.Nil(t, inv)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindOutstanding(t *testing.T) {
	t.Run("orders by txn_date then created_at ascending", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		first := uuid.New()
		second := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE account_id = \$1 AND customer_name = \$2 AND status IN \(\$3,\$4\) AND deleted_at IS NULL ORDER BY txn_date ASC, created_at ASC`).
			WithArgs(accountID, "Sharma Traders", "PENDING", "PARTIAL").
			WillReturnRows(invoiceRows(first, second))

		invoices, err := repo.FindOutstanding(context.Background(), accountID, "Sharma Traders")

		assert.NoError(t, err)
		require.Len(t, invoices, 2)
		assert.Equal(t, first, invoices[0].ID)
		assert.Equal(t, second, invoices[1].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nothing outstanding", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE account_id = \$1 AND customer_name = \$2 AND status IN \(\$3,\$4\) AND deleted_at IS NULL ORDER BY txn_date ASC, created_at ASC`).
			WithArgs(accountID, "Patel Farms", "PENDING", "PARTIAL").
			WillReturnRows(invoiceRows())

		invoices, err := repo.FindOutstanding(context.Background(), accountID, "Patel Farms")

		assert.NoError(t, err)
		assert.Empty(t, invoices)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindOutstandingForUpdate(t *testing.T) {
	t.Run("takes row locks", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()
		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE .* ORDER BY txn_date ASC, created_at ASC FOR UPDATE`).
			WithArgs(accountID, "Sharma Traders", "PENDING", "PARTIAL").
			WillReturnRows(invoiceRows(invoiceID))

		invoices, err := repo.FindOutstandingForUpdate(context.Background(), accountID, "Sharma Traders")

		assert.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	newInvoice := func(t *testing.T) *billing.Invoice {
		t.Helper()
		inv, err := billing.NewInvoice(
			uuid.New(), "INV-001", "Sharma Traders",
			billing.SaleChannelDirect, nil, time.Now(),
			decimal.NewFromInt(10), decimal.NewFromInt(50), decimal.Zero,
		)
		require.NoError(t, err)
		return inv
	}

	t.Run("updates row guarded by previous version", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := newInvoice(t)
		require.NoError(t, inv.OverrideStatus(billing.InvoiceStatusReceived))
		require.Equal(t, 2, inv.Version)

		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE \(id = \$\d+ AND version = \$\d+\).*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), inv)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrConcurrencyConflict when version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		inv := newInvoice(t)
		require.NoError(t, inv.OverrideStatus(billing.InvoiceStatusReceived))

		mock.ExpectExec(`UPDATE "invoices" SET .* WHERE \(id = \$\d+ AND version = \$\d+\).*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), inv)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SumPendingByCustomer(t *testing.T) {
	t.Run("sums outstanding amounts", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT SUM\(amount_pending\) FROM "invoices" WHERE .*`).
			WithArgs(accountID, "Sharma Traders", "PENDING", "PARTIAL").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow("1800"))

		sum, err := repo.SumPendingByCustomer(context.Background(), accountID, "Sharma Traders")

		assert.NoError(t, err)
		assert.True(t, sum.Equal(decimal.NewFromInt(1800)), "sum was %s", sum)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero when customer has no outstanding invoices", func(t *testing.T) {
		repo, mock, mockDB := newMockInvoiceRepository(t)
		defer mockDB.Close()

		accountID := uuid.New()

		mock.ExpectQuery(`SELECT SUM\(amount_pending\) FROM "invoices" WHERE .*`).
			WithArgs(accountID, "Patel Farms", "PENDING", "PARTIAL").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

		sum, err := repo.SumPendingByCustomer(context.Background(), accountID, "Patel Farms")

		assert.NoError(t, err)
		assert.True(t, sum.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
