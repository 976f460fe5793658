package reconciliation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/reconciliation"
	"github.com/payables/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// ScopeService resolves the eligible invoices and movements of one
// reconciliation scope. Resolution is read-only: staleness only matters if
// the output is later fed into a commit entry point, and those re-validate
// preconditions inside their transaction regardless.
type ScopeService struct {
	scheduleRepo reconciliation.ScheduledPaymentRepository
	packageRepo  reconciliation.InvoicePackageRepository
	movementRepo reconciliation.BankMovementRepository
	logger       *zap.Logger
}

// NewScopeService creates a new ScopeService
func NewScopeService(
	scheduleRepo reconciliation.ScheduledPaymentRepository,
	packageRepo reconciliation.InvoicePackageRepository,
	movementRepo reconciliation.BankMovementRepository,
	logger *zap.Logger,
) *ScopeService {
	return &ScopeService{
		scheduleRepo: scheduleRepo,
		packageRepo:  packageRepo,
		movementRepo: movementRepo,
		logger:       logger,
	}
}

// Resolve finds the eligible invoice line items and bank movements for the
// requested scope. Invoices come from packages scheduled on the scope day
// with GENERATED status, unreconciled, annotated with the package-level
// payable amount; movements are the unreconciled entries of the (company,
// bank account) pair dated on the same calendar day. Invoices are sorted by
// reference number ascending, movements by movement date ascending.
func (s *ScopeService) Resolve(ctx context.Context, req ScopeRequest) (*ScopeResult, error) {
	if req.CompanyID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Company ID is required")
	}
	if req.BankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Bank account ID is required")
	}

	from, to := dayWindow(req.Date)

	result := &ScopeResult{
		EligibleInvoices:  make([]reconciliation.EligibleInvoice, 0),
		EligibleMovements: make([]reconciliation.EligibleMovement, 0),
	}

	schedules, err := s.scheduleRepo.FindInWindow(ctx, req.CompanyID, req.BankAccountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to find scheduled payments: %w", err)
	}

	// No schedule on the scope day means no eligible invoices, but movements
	// are still listed so the caller can see the unmatched bank side.
	if len(schedules) > 0 {
		packageIDs := make([]uuid.UUID, 0, len(schedules))
		for _, sp := range schedules {
			packageIDs = append(packageIDs, sp.PackageID)
		}

		packages, err := s.packageRepo.FindByIDsWithStatus(ctx, packageIDs, reconciliation.PackageStatusGenerated)
		if err != nil {
			return nil, fmt.Errorf("failed to find invoice packages: %w", err)
		}

		for _, pkg := range packages {
			for _, item := range pkg.UnreconciledInvoices() {
				result.EligibleInvoices = append(result.EligibleInvoices, reconciliation.EligibleInvoice{
					InvoiceID:       item.ID,
					PackageID:       pkg.ID,
					Folio:           pkg.Folio,
					FiscalUUID:      item.FiscalUUID,
					IssuerName:      item.IssuerName,
					VoucherType:     item.VoucherType,
					ReferenceNumber: item.ReferenceNumber,
					// Listing and automatic matching compare against the
					// package aggregate payable amount, not the line item's
					// own amount.
					AmountToPay: pkg.TotalToPay,
				})
			}
		}

		sort.SliceStable(result.EligibleInvoices, func(i, j int) bool {
			return result.EligibleInvoices[i].ReferenceNumber < result.EligibleInvoices[j].ReferenceNumber
		})
	}

	movements, err := s.movementRepo.FindUnreconciledInWindow(ctx, req.CompanyID, req.BankAccountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to find bank movements: %w", err)
	}
	for _, m := range movements {
		result.EligibleMovements = append(result.EligibleMovements, reconciliation.EligibleMovement{
			MovementID:      m.ID,
			MovementDate:    m.MovementDate,
			Concept:         m.Concept,
			ReferenceNumber: m.ReferenceNumber,
			DebitAmount:     m.DebitAmount,
			CreditAmount:    m.CreditAmount,
			Balance:         m.Balance,
		})
	}
	sort.SliceStable(result.EligibleMovements, func(i, j int) bool {
		return result.EligibleMovements[i].MovementDate.Before(result.EligibleMovements[j].MovementDate)
	})

	s.logger.Debug("reconciliation scope resolved",
		zap.String("company_id", req.CompanyID.String()),
		zap.String("bank_account_id", req.BankAccountID.String()),
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("eligible_invoices", len(result.EligibleInvoices)),
		zap.Int("eligible_movements", len(result.EligibleMovements)),
	)

	return result, nil
}

// dayWindow expands the scope date into the local calendar-day window
// [00:00:00.000, 23:59:59.999]. A nil date means today.
func dayWindow(date *time.Time) (time.Time, time.Time) {
	d := time.Now()
	if date != nil {
		d = *date
	}
	d = d.In(time.Local)
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
	to := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), time.Local)
	return from, to
}

// withReference filters the scope down to records carrying a non-empty
// reference number. Automatic matching keys on the reference, so records
// without one can never pair and are excluded up front.
func withReference(scope *ScopeResult) ([]reconciliation.EligibleInvoice, []reconciliation.EligibleMovement) {
	invoices := make([]reconciliation.EligibleInvoice, 0, len(scope.EligibleInvoices))
	for _, inv := range scope.EligibleInvoices {
		if inv.ReferenceNumber != "" {
			invoices = append(invoices, inv)
		}
	}
	movements := make([]reconciliation.EligibleMovement, 0, len(scope.EligibleMovements))
	for _, m := range scope.EligibleMovements {
		if m.ReferenceNumber != "" {
			movements = append(movements, m)
		}
	}
	return invoices, movements
}
