package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB builds a GORM connection backed by sqlmock
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
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

	return gormDB, mock, mockDB
}

func movementColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version",
		"company_id", "bank_account_id", "movement_date", "concept",
		"reference_number", "debit_amount", "credit_amount", "balance",
		"reconciled", "reconciliation_comment", "reconciled_at", "reconciliation_ref",
	}
}

func movementRow(rows *sqlmock.Rows, id uuid.UUID, date time.Time, ref string, credit float64) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		id, now, now, 1,
		uuid.New(), uuid.New(), date, "DEPOSITO",
		ref, decimal.Zero, decimal.NewFromFloat(credit), decimal.NewFromFloat(credit),
		false, "", nil, nil,
	)
}

func TestGormBankMovementRepository_FindByID(t *testing.T) {
	t.Run("finds existing movement", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		movementID := uuid.New()
		rows := movementRow(sqlmock.NewRows(movementColumns()), movementID, time.Now(), "REF001", 1500.00)

		mock.ExpectQuery(`SELECT \* FROM "bank_movements" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(movementID, 1).
			WillReturnRows(rows)

		movement, err := repo.FindByID(context.Background(), movementID)
		require.NoError(t, err)
		assert.Equal(t, movementID, movement.ID)
		assert.Equal(t, "REF001", movement.ReferenceNumber)
		assert.False(t, movement.Reconciled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown movement", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		movementID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "bank_movements" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(movementID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		movement, err := repo.FindByID(context.Background(), movementID)
		assert.Nil(t, movement)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBankMovementRepository_FindByIDs(t *testing.T) {
	t.Run("missing ids are absent from the result", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		presentID := uuid.New()
		missingID := uuid.New()
		rows := movementRow(sqlmock.NewRows(movementColumns()), presentID, time.Now(), "REF001", 600.00)

		mock.ExpectQuery(`SELECT \* FROM "bank_movements" WHERE id IN \(\$1,\$2\)`).
			WithArgs(presentID, missingID).
			WillReturnRows(rows)

		movements, err := repo.FindByIDs(context.Background(), []uuid.UUID{presentID, missingID})
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, presentID, movements[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty input short-circuits without querying", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		movements, err := repo.FindByIDs(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, movements)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBankMovementRepository_FindUnreconciledInWindow(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormBankMovementRepository(db)

	companyID := uuid.New()
	bankAccountID := uuid.New()
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 6, 1, 23, 59, 59, 0, time.Local)

	early := uuid.New()
	late := uuid.New()
	rows := sqlmock.NewRows(movementColumns())
	rows = movementRow(rows, early, from.Add(8*time.Hour), "REF001", 100)
	rows = movementRow(rows, late, from.Add(16*time.Hour), "REF002", 200)

	mock.ExpectQuery(`SELECT \* FROM "bank_movements" WHERE company_id = \$1 AND bank_account_id = \$2 AND reconciled = \$3 AND movement_date BETWEEN \$4 AND \$5 ORDER BY movement_date ASC`).
		WithArgs(companyID, bankAccountID, false, from, to).
		WillReturnRows(rows)

	movements, err := repo.FindUnreconciledInWindow(context.Background(), companyID, bankAccountID, from, to)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, early, movements[0].ID)
	assert.Equal(t, late, movements[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormBankMovementRepository_MarkReconciled(t *testing.T) {
	t.Run("updates unreconciled movement", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		mock.ExpectExec(`UPDATE "bank_movements" SET .* WHERE id = .* AND reconciled = .*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkReconciled(context.Background(), uuid.New(), uuid.New(), "Conciliación manual", time.Now())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows with existing row yields already reconciled", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		movementID := uuid.New()
		mock.ExpectExec(`UPDATE "bank_movements" SET .* WHERE id = .* AND reconciled = .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "bank_movements" WHERE id = \$1`).
			WithArgs(movementID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		err := repo.MarkReconciled(context.Background(), movementID, uuid.New(), "", time.Now())
		assert.Equal(t, shared.ErrAlreadyReconciled, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero rows with no row yields not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankMovementRepository(db)

		movementID := uuid.New()
		mock.ExpectExec(`UPDATE "bank_movements" SET .* WHERE id = .* AND reconciled = .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "bank_movements" WHERE id = \$1`).
			WithArgs(movementID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		err := repo.MarkReconciled(context.Background(), movementID, uuid.New(), "", time.Now())
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
