package reconciliation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMovement(t *testing.T, credit float64) *BankMovement {
	t.Helper()
	m, err := NewBankMovement(
		uuid.New(), uuid.New(),
		time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local),
		"TRANSFERENCIA SPEI", "REF001",
		decimal.Zero, decimal.NewFromFloat(credit), decimal.NewFromFloat(credit),
	)
	require.NoError(t, err)
	return m
}

func TestNewBankMovement(t *testing.T) {
	t.Run("creates unreconciled movement", func(t *testing.T) {
		m := newTestMovement(t, 1500.00)
		assert.False(t, m.Reconciled)
		assert.Nil(t, m.ReconciledAt)
		assert.Nil(t, m.ReconciliationRef)
	})

	t.Run("rejects empty company", func(t *testing.T) {
		_, err := NewBankMovement(uuid.Nil, uuid.New(), time.Now(), "", "",
			decimal.Zero, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects zero movement date", func(t *testing.T) {
		_, err := NewBankMovement(uuid.New(), uuid.New(), time.Time{}, "", "",
			decimal.Zero, decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		_, err := NewBankMovement(uuid.New(), uuid.New(), time.Now(), "", "",
			decimal.NewFromFloat(-1), decimal.Zero, decimal.Zero)
		assert.Error(t, err)
	})
}

func TestBankMovement_MarkReconciled(t *testing.T) {
	t.Run("flags movement with correlation id", func(t *testing.T) {
		m := newTestMovement(t, 1500.00)
		correlationID := uuid.New()
		at := time.Now()

		require.NoError(t, m.MarkReconciled(correlationID, "Conciliación manual", at))

		assert.True(t, m.Reconciled)
		assert.Equal(t, "Conciliación manual", m.ReconciliationComment)
		require.NotNil(t, m.ReconciliationRef)
		assert.Equal(t, correlationID, *m.ReconciliationRef)
		require.NotNil(t, m.ReconciledAt)
		assert.Len(t, m.GetDomainEvents(), 1)
	})

	t.Run("reconciled is terminal", func(t *testing.T) {
		m := newTestMovement(t, 1500.00)
		require.NoError(t, m.MarkReconciled(uuid.New(), "", time.Now()))

		err := m.MarkReconciled(uuid.New(), "", time.Now())
		assert.ErrorIs(t, err, shared.ErrAlreadyReconciled)
	})

	t.Run("rejects empty correlation id", func(t *testing.T) {
		m := newTestMovement(t, 1500.00)
		err := m.MarkReconciled(uuid.Nil, "", time.Now())
		assert.Error(t, err)
	})

	t.Run("does not change amounts", func(t *testing.T) {
		m := newTestMovement(t, 1500.00)
		require.NoError(t, m.MarkReconciled(uuid.New(), "", time.Now()))
		assert.True(t, m.CreditAmount.Equal(decimal.NewFromFloat(1500.00)))
		assert.True(t, m.DebitAmount.IsZero())
	})
}

func TestBankMovement_SameCalendarDay(t *testing.T) {
	m := newTestMovement(t, 100)

	assert.True(t, m.SameCalendarDay(time.Date(2024, 3, 15, 23, 59, 59, 0, time.Local)))
	assert.True(t, m.SameCalendarDay(time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local)))
	assert.False(t, m.SameCalendarDay(time.Date(2024, 3, 16, 0, 0, 0, 0, time.Local)))
	assert.False(t, m.SameCalendarDay(time.Date(2024, 3, 14, 23, 59, 59, 0, time.Local)))
}
