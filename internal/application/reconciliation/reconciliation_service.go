package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/reconciliation"
	"github.com/payables/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// ReconciliationService exposes the four reconciliation entry points:
// read-only automatic matching, unpersisted manual proposals, atomic direct
// matching, and atomic batch close.
type ReconciliationService struct {
	scopeService *ScopeService
	packageRepo  reconciliation.InvoicePackageRepository
	movementRepo reconciliation.BankMovementRepository
	txScope      TransactionScope
	idempotency  shared.IdempotencyStore
	idemConfig   shared.IdempotencyConfig
	logger       *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService. The
// idempotency store may be nil, in which case idempotency keys are ignored.
func NewReconciliationService(
	scopeService *ScopeService,
	packageRepo reconciliation.InvoicePackageRepository,
	movementRepo reconciliation.BankMovementRepository,
	txScope TransactionScope,
	idempotency shared.IdempotencyStore,
	idemConfig shared.IdempotencyConfig,
	logger *zap.Logger,
) *ReconciliationService {
	return &ReconciliationService{
		scopeService: scopeService,
		packageRepo:  packageRepo,
		movementRepo: movementRepo,
		txScope:      txScope,
		idempotency:  idempotency,
		idemConfig:   idemConfig,
		logger:       logger,
	}
}

// RunAutomatic resolves the scope and runs the greedy matcher over the
// records that carry a reference number. The run is read-only: nothing is
// persisted, and zero matches is a successful empty result.
func (s *ReconciliationService) RunAutomatic(ctx context.Context, req ScopeRequest) (*AutomaticMatchResult, error) {
	scope, err := s.scopeService.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	invoices, movements := withReference(scope)
	match := reconciliation.Match(invoices, movements)

	s.logger.Info("automatic reconciliation run completed",
		zap.String("company_id", req.CompanyID.String()),
		zap.String("bank_account_id", req.BankAccountID.String()),
		zap.Int("pairs", len(match.Pairs)),
		zap.Int("unmatched_invoices", len(match.UnmatchedInvoices)),
		zap.Int("unmatched_movements", len(match.UnmatchedMovements)),
	)

	return &AutomaticMatchResult{
		Pairs:              match.Pairs,
		UnmatchedInvoices:  match.UnmatchedInvoices,
		UnmatchedMovements: match.UnmatchedMovements,
		TotalMatches:       len(match.Pairs),
	}, nil
}

// ProposeManualMatch validates both sides of a manual pair and returns a
// proposed reconciliation record. Nothing is persisted: the proposal is
// expected to be fed into CloseReconciliation. Preconditions short-circuit in
// order: the movement is checked first, then the invoice.
func (s *ReconciliationService) ProposeManualMatch(ctx context.Context, req ManualMatchRequest) (*ReconciliationProposal, error) {
	if req.InvoiceID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice ID is required")
	}
	if req.MovementID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Movement ID is required")
	}

	movement, err := s.movementRepo.FindByID(ctx, req.MovementID)
	if err != nil {
		return nil, err
	}
	if movement.Reconciled {
		return nil, shared.ErrAlreadyReconciled
	}

	pkg, item, err := s.packageRepo.FindByLineItemID(ctx, req.InvoiceID, reconciliation.PackageStatusGenerated)
	if err != nil {
		return nil, err
	}
	if item.Reconciled {
		return nil, shared.ErrAlreadyReconciled
	}

	comment := req.Comment
	if comment == "" {
		comment = DefaultManualComment
	}

	return &ReconciliationProposal{
		CorrelationID: uuid.New(),
		InvoiceID:     item.ID,
		PackageID:     pkg.ID,
		PackageFolio:  pkg.Folio,
		MovementID:    movement.ID,
		InvoiceAmount: item.AmountToPay,
		CreditAmount:  movement.CreditAmount,
		Comment:       comment,
		Type:          MatchTypeManual,
		ProposedAt:    time.Now(),
	}, nil
}

// DirectMatch settles one invoice line item against one or more bank
// movements under a single correlation id. Every requested movement must
// resolve to an existing, unreconciled record; otherwise the call fails
// before any write. All flags are written inside one transaction with the
// precondition checks re-run against the same snapshot.
func (s *ReconciliationService) DirectMatch(ctx context.Context, req DirectMatchRequest, idempotencyKey string) (*DirectMatchResult, error) {
	if req.InvoiceID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Invoice ID is required")
	}
	if len(req.MovementIDs) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one movement ID is required")
	}
	if err := s.checkIdempotency(ctx, idempotencyKey); err != nil {
		return nil, err
	}

	correlationID := uuid.New()
	at := time.Now()
	result := &DirectMatchResult{
		CorrelationID: correlationID,
		InvoiceID:     req.InvoiceID,
		MovementIDs:   req.MovementIDs,
		Comment:       req.Comment,
		ReconciledAt:  at,
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		movements, err := repos.Movements().FindByIDs(ctx, req.MovementIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve movements: %w", err)
		}
		if len(movements) != len(req.MovementIDs) {
			return shared.ErrCountMismatch
		}
		for _, m := range movements {
			if m.Reconciled {
				return shared.ErrAlreadyReconciled
			}
		}

		pkg, item, err := repos.Packages().FindByLineItemID(ctx, req.InvoiceID, reconciliation.PackageStatusGenerated)
		if err != nil {
			return err
		}
		if item.Reconciled {
			return shared.ErrAlreadyReconciled
		}
		result.PackageID = pkg.ID

		if err := repos.Packages().MarkLineItemReconciled(ctx, item.ID, correlationID, req.Comment, at); err != nil {
			return err
		}
		for _, m := range movements {
			if err := repos.Movements().MarkReconciled(ctx, m.ID, correlationID, req.Comment, at); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, asCommitError(err)
	}

	s.markIdempotent(ctx, idempotencyKey)

	s.logger.Info("direct match committed",
		zap.String("correlation_id", correlationID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.Int("movements", len(req.MovementIDs)),
	)

	return result, nil
}

// CloseReconciliation persists a heterogeneous batch of invoice/movement
// pairs — manual proposals and automatic matcher output alike — inside one
// transaction. Entries without a correlation id get a fresh one. Any entry
// failure aborts the whole batch; partial commit never occurs.
func (s *ReconciliationService) CloseReconciliation(ctx context.Context, entries []CloseEntry, idempotencyKey string) (*CloseResult, error) {
	if len(entries) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one entry is required")
	}
	for i, entry := range entries {
		if entry.InvoiceID == uuid.Nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Entry %d: invoice ID is required", i))
		}
		if entry.MovementID == uuid.Nil {
			return nil, shared.NewDomainError("VALIDATION_ERROR",
				fmt.Sprintf("Entry %d: movement ID is required", i))
		}
	}
	if err := s.checkIdempotency(ctx, idempotencyKey); err != nil {
		return nil, err
	}

	at := time.Now()
	result := &CloseResult{
		Processed:    make([]ProcessedEntry, 0, len(entries)),
		ReconciledAt: at,
	}

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		for _, entry := range entries {
			correlationID := uuid.New()
			if entry.CorrelationID != nil && *entry.CorrelationID != uuid.Nil {
				correlationID = *entry.CorrelationID
			}
			comment := entry.Comment
			if comment == "" {
				comment = DefaultManualComment
			}

			if err := repos.Movements().MarkReconciled(ctx, entry.MovementID, correlationID, comment, at); err != nil {
				return fmt.Errorf("movement %s: %w", entry.MovementID, err)
			}
			if err := repos.Packages().MarkLineItemReconciled(ctx, entry.InvoiceID, correlationID, comment, at); err != nil {
				return fmt.Errorf("invoice %s: %w", entry.InvoiceID, err)
			}

			result.Processed = append(result.Processed, ProcessedEntry{
				CorrelationID: correlationID,
				InvoiceID:     entry.InvoiceID,
				MovementID:    entry.MovementID,
				Type:          entry.Type,
			})
		}
		return nil
	})
	if err != nil {
		return nil, asCommitError(err)
	}

	result.TotalProcessed = len(result.Processed)

	s.markIdempotent(ctx, idempotencyKey)

	s.logger.Info("reconciliation batch closed",
		zap.Int("entries", result.TotalProcessed),
	)

	return result, nil
}

// checkIdempotency rejects a key that has already been committed. The check
// is advisory: the conditional reconciled-flag updates inside the transaction
// are what actually prevent double-spending a movement.
func (s *ReconciliationService) checkIdempotency(ctx context.Context, key string) error {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return nil
	}
	processed, err := s.idempotency.IsProcessed(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check idempotency key: %w", err)
	}
	if processed {
		return shared.NewDomainError("DUPLICATE_REQUEST", "Request with this idempotency key was already processed")
	}
	return nil
}

// markIdempotent records a committed key. Failures are logged, not returned:
// the commit already succeeded and must be reported as such.
func (s *ReconciliationService) markIdempotent(ctx context.Context, key string) {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, key, s.idemConfig.TTL); err != nil {
		s.logger.Warn("failed to mark idempotency key", zap.Error(err))
	}
}

// asCommitError keeps domain errors intact and folds everything else into
// the transaction-aborted taxonomy so callers never see a partially-applied
// commit reported as success.
func asCommitError(err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewDomainError("TRANSACTION_ABORTED",
		fmt.Sprintf("Transaction was aborted, no changes applied: %v", err))
}
