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

func newGeneratedPackage(t *testing.T) *InvoicePackage {
	t.Helper()
	pkg, err := NewInvoicePackage(1001, uuid.New(), "treasury", nil)
	require.NoError(t, err)
	require.NoError(t, pkg.MarkGenerated())
	return pkg
}

func lineItem(fiscalUUID, ref string, amount float64) InvoiceLineItem {
	return InvoiceLineItem{
		ID:              uuid.New(),
		FiscalUUID:      fiscalUUID,
		IssuerTaxID:     "AAA010101AAA",
		IssuerName:      "Proveedor Uno SA de CV",
		ReceiverTaxID:   "BBB020202BBB",
		ReceiverName:    "Compañía Receptora",
		IssuedAt:        time.Now(),
		AmountToPay:     decimal.NewFromFloat(amount),
		AmountPaid:      decimal.Zero,
		VoucherType:     "I",
		ReferenceNumber: ref,
	}
}

func TestNewInvoicePackage(t *testing.T) {
	t.Run("creates draft package", func(t *testing.T) {
		pkg, err := NewInvoicePackage(42, uuid.New(), "ops", nil)
		require.NoError(t, err)
		assert.Equal(t, PackageStatusDraft, pkg.Status)
		assert.Equal(t, int64(42), pkg.Folio)
		assert.True(t, pkg.TotalToPay.IsZero())
		assert.Len(t, pkg.GetDomainEvents(), 1)
	})

	t.Run("rejects non-positive folio", func(t *testing.T) {
		_, err := NewInvoicePackage(0, uuid.New(), "ops", nil)
		assert.Error(t, err)
	})

	t.Run("rejects empty user", func(t *testing.T) {
		_, err := NewInvoicePackage(1, uuid.Nil, "ops", nil)
		assert.Error(t, err)
	})
}

func TestInvoicePackage_AddInvoice(t *testing.T) {
	t.Run("adds line item and recalculates totals", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		require.NoError(t, pkg.AddInvoice(lineItem("uuid-1", "REF001", 1500.00)))
		require.NoError(t, pkg.AddInvoice(lineItem("uuid-2", "REF002", 500.00)))

		assert.Equal(t, 2, pkg.InvoiceCount)
		assert.True(t, pkg.TotalToPay.Equal(decimal.NewFromFloat(2000.00)))
		assert.True(t, pkg.TotalPaid.IsZero())
		assert.Equal(t, pkg.ID, pkg.Invoices[0].PackageID)
	})

	t.Run("rejects duplicate fiscal UUID", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		require.NoError(t, pkg.AddInvoice(lineItem("uuid-1", "REF001", 100)))

		err := pkg.AddInvoice(lineItem("uuid-1", "REF002", 200))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_FISCAL_UUID", domainErr.Code)
	})

	t.Run("rejects duplicate line item identity", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		item := lineItem("uuid-1", "REF001", 100)
		require.NoError(t, pkg.AddInvoice(item))

		item.FiscalUUID = "uuid-2"
		err := pkg.AddInvoice(item)
		assert.Error(t, err)
	})
}

func TestInvoicePackage_RecalculateTotals(t *testing.T) {
	t.Run("clamps total paid to total to pay", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		item := lineItem("uuid-1", "REF001", 100.00)
		item.AmountPaid = decimal.NewFromFloat(150.00)
		require.NoError(t, pkg.AddInvoice(item))

		assert.True(t, pkg.TotalToPay.Equal(decimal.NewFromFloat(100.00)))
		assert.True(t, pkg.TotalPaid.Equal(decimal.NewFromFloat(100.00)),
			"total paid must never exceed total to pay, got %s", pkg.TotalPaid)
	})
}

func TestInvoicePackage_MarkInvoiceReconciled(t *testing.T) {
	t.Run("flags item with correlation id and timestamp", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		item := lineItem("uuid-1", "REF001", 100)
		require.NoError(t, pkg.AddInvoice(item))

		correlationID := uuid.New()
		at := time.Now()
		require.NoError(t, pkg.MarkInvoiceReconciled(item.ID, correlationID, "Conciliación manual", at))

		got, err := pkg.FindInvoice(item.ID)
		require.NoError(t, err)
		assert.True(t, got.Reconciled)
		assert.Equal(t, "Conciliación manual", got.ReconciliationComment)
		require.NotNil(t, got.ReconciliationRef)
		assert.Equal(t, correlationID, *got.ReconciliationRef)
		require.NotNil(t, got.ReconciledAt)
	})

	t.Run("reconciled is terminal", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		item := lineItem("uuid-1", "REF001", 100)
		require.NoError(t, pkg.AddInvoice(item))
		require.NoError(t, pkg.MarkInvoiceReconciled(item.ID, uuid.New(), "", time.Now()))

		err := pkg.MarkInvoiceReconciled(item.ID, uuid.New(), "", time.Now())
		assert.ErrorIs(t, err, shared.ErrAlreadyReconciled)
	})

	t.Run("fails outside GENERATED status", func(t *testing.T) {
		pkg, err := NewInvoicePackage(1, uuid.New(), "ops", nil)
		require.NoError(t, err)
		item := lineItem("uuid-1", "REF001", 100)
		require.NoError(t, pkg.AddInvoice(item))

		err = pkg.MarkInvoiceReconciled(item.ID, uuid.New(), "", time.Now())
		assert.Error(t, err)
	})

	t.Run("unknown item yields not found", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		err := pkg.MarkInvoiceReconciled(uuid.New(), uuid.New(), "", time.Now())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not change amounts", func(t *testing.T) {
		pkg := newGeneratedPackage(t)
		item := lineItem("uuid-1", "REF001", 250.00)
		require.NoError(t, pkg.AddInvoice(item))
		before := pkg.TotalToPay

		require.NoError(t, pkg.MarkInvoiceReconciled(item.ID, uuid.New(), "", time.Now()))

		assert.True(t, pkg.TotalToPay.Equal(before))
		got, _ := pkg.FindInvoice(item.ID)
		assert.True(t, got.AmountToPay.Equal(decimal.NewFromFloat(250.00)))
	})
}

func TestInvoicePackage_UnreconciledInvoices(t *testing.T) {
	pkg := newGeneratedPackage(t)
	first := lineItem("uuid-1", "REF001", 100)
	second := lineItem("uuid-2", "REF002", 200)
	require.NoError(t, pkg.AddInvoice(first))
	require.NoError(t, pkg.AddInvoice(second))
	require.NoError(t, pkg.MarkInvoiceReconciled(first.ID, uuid.New(), "", time.Now()))

	remaining := pkg.UnreconciledInvoices()
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)
	assert.True(t, pkg.HasReconciledInvoices())
}
