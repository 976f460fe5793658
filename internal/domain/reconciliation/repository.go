package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InvoicePackageRepository provides access to the invoice package store
type InvoicePackageRepository interface {
	// FindByID finds a package with its embedded line items
	FindByID(ctx context.Context, id uuid.UUID) (*InvoicePackage, error)

	// FindByIDsWithStatus finds the packages whose identity is in the given
	// set and whose status matches
	FindByIDsWithStatus(ctx context.Context, ids []uuid.UUID, status PackageStatus) ([]InvoicePackage, error)

	// FindByLineItemID locates the line item with the given identity across
	// all packages with the given status, returning the owning package and
	// the item itself
	FindByLineItemID(ctx context.Context, itemID uuid.UUID, status PackageStatus) (*InvoicePackage, *InvoiceLineItem, error)

	// Save creates or updates a package together with its line items
	Save(ctx context.Context, pkg *InvoicePackage) error

	// MarkLineItemReconciled flags a line item as reconciled. The update is
	// conditional on the item being unreconciled; an already-reconciled item
	// yields ErrAlreadyReconciled, an unknown one ErrNotFound.
	MarkLineItemReconciled(ctx context.Context, itemID, correlationID uuid.UUID, comment string, at time.Time) error
}

// BankMovementRepository provides access to the bank movement store
type BankMovementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BankMovement, error)

	// FindByIDs resolves the given movement ids; missing ids are simply
	// absent from the result (callers enforce count-match semantics)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]BankMovement, error)

	// FindUnreconciledInWindow finds the unreconciled movements of the
	// (company, bank account) pair whose movement date falls inside the
	// window, ordered by movement date ascending
	FindUnreconciledInWindow(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to time.Time) ([]BankMovement, error)

	Save(ctx context.Context, movement *BankMovement) error

	// MarkReconciled flags a movement as reconciled. Conditional on the
	// movement being unreconciled, mirroring the invoice side.
	MarkReconciled(ctx context.Context, movementID, correlationID uuid.UUID, comment string, at time.Time) error
}

// ScheduledPaymentRepository provides access to the scheduling index
type ScheduledPaymentRepository interface {
	// FindInWindow finds the scheduled payments of the (company, bank
	// account) pair whose scheduled date falls inside the window
	FindInWindow(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to time.Time) ([]ScheduledPayment, error)

	// FindByPackageID finds the (unique) schedule for a package, if any
	FindByPackageID(ctx context.Context, packageID uuid.UUID) (*ScheduledPayment, error)

	// Save creates or updates a scheduled payment, enforcing the at-most-one-
	// schedule-per-package uniqueness invariant
	Save(ctx context.Context, sp *ScheduledPayment) error
}
