package reconciliation

import (
	"context"

	"github.com/payables/backoffice/internal/domain/reconciliation"
)

// TransactionScope provides transactional access to the reconciliation
// repositories. When a function is executed within a transaction scope, all
// repository operations are part of the same database transaction and are
// committed or rolled back atomically.
//
// The commit entry points (direct match, batch close) span two
// independently-owned aggregates — the invoice package with its embedded line
// items and the bank movement — so they must run inside one scope: either
// every flag on both sides is written, or none is.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the reconciliation
// repositories within a transaction. All repositories returned share the same
// underlying database transaction, so precondition re-reads and conditional
// updates observe one consistent snapshot.
type TransactionalRepositories interface {
	// Packages returns the invoice package repository scoped to the current transaction
	Packages() reconciliation.InvoicePackageRepository
	// Movements returns the bank movement repository scoped to the current transaction
	Movements() reconciliation.BankMovementRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is not
// required.
type NoOpTransactionScope struct {
	packageRepo  reconciliation.InvoicePackageRepository
	movementRepo reconciliation.BankMovementRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	packageRepo reconciliation.InvoicePackageRepository,
	movementRepo reconciliation.BankMovementRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		packageRepo:  packageRepo,
		movementRepo: movementRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Packages returns the invoice package repository.
func (s *NoOpTransactionScope) Packages() reconciliation.InvoicePackageRepository {
	return s.packageRepo
}

// Movements returns the bank movement repository.
func (s *NoOpTransactionScope) Movements() reconciliation.BankMovementRepository {
	return s.movementRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
