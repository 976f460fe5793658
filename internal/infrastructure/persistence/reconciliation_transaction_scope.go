package persistence

import (
	"context"

	apprecon "github.com/payables/backoffice/internal/application/reconciliation"
	"github.com/payables/backoffice/internal/domain/reconciliation"
	"gorm.io/gorm"
)

// GormTransactionScope implements the reconciliation TransactionScope using
// GORM transactions. The commit entry points use it to flag the invoice side
// and the movement side atomically, with the precondition re-reads running
// against the same transactional snapshot.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apprecon.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories provides repositories bound to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

// Packages returns the invoice package repository scoped to the current transaction
func (r *gormTransactionalRepositories) Packages() reconciliation.InvoicePackageRepository {
	return NewGormInvoicePackageRepository(r.tx)
}

// Movements returns the bank movement repository scoped to the current transaction
func (r *gormTransactionalRepositories) Movements() reconciliation.BankMovementRepository {
	return NewGormBankMovementRepository(r.tx)
}

var _ apprecon.TransactionScope = (*GormTransactionScope)(nil)
var _ apprecon.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
