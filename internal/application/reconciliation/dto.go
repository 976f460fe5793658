package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/reconciliation"
	"github.com/shopspring/decimal"
)

// DefaultManualComment is the comment recorded on a manual match when the
// caller supplies none.
const DefaultManualComment = "Conciliación manual"

// Match types recorded on committed reconciliations
const (
	MatchTypeAutomatic = "automatic"
	MatchTypeManual    = "manual"
	MatchTypeDirect    = "direct"
)

// ScopeRequest bounds one reconciliation run to a (company, bank account,
// calendar day) triple. A nil date means the current local calendar day.
type ScopeRequest struct {
	CompanyID     uuid.UUID
	BankAccountID uuid.UUID
	Date          *time.Time
}

// ScopeResult holds the eligible records on both sides of the scope
type ScopeResult struct {
	EligibleInvoices  []reconciliation.EligibleInvoice  `json:"eligible_invoices"`
	EligibleMovements []reconciliation.EligibleMovement `json:"eligible_movements"`
}

// AutomaticMatchResult is the outcome of one read-only automatic run
type AutomaticMatchResult struct {
	Pairs              []reconciliation.MatchPair        `json:"pairs"`
	UnmatchedInvoices  []reconciliation.EligibleInvoice  `json:"unmatched_invoices"`
	UnmatchedMovements []reconciliation.EligibleMovement `json:"unmatched_movements"`
	TotalMatches       int                               `json:"total_matches"`
}

// ManualMatchRequest pairs one invoice line item with one bank movement
type ManualMatchRequest struct {
	InvoiceID  uuid.UUID
	MovementID uuid.UUID
	Comment    string
}

// ReconciliationProposal is the unpersisted record returned by a manual
// match. The caller is expected to feed it into the batch-close entry point.
type ReconciliationProposal struct {
	CorrelationID uuid.UUID       `json:"correlation_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	PackageID     uuid.UUID       `json:"package_id"`
	PackageFolio  int64           `json:"package_folio"`
	MovementID    uuid.UUID       `json:"movement_id"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	Comment       string          `json:"comment"`
	Type          string          `json:"type"`
	ProposedAt    time.Time       `json:"proposed_at"`
}

// DirectMatchRequest settles one invoice line item against one or more bank
// movements in a single atomic commit.
type DirectMatchRequest struct {
	InvoiceID   uuid.UUID
	MovementIDs []uuid.UUID
	Comment     string
}

// DirectMatchResult is the committed outcome of a direct match
type DirectMatchResult struct {
	CorrelationID uuid.UUID   `json:"correlation_id"`
	InvoiceID     uuid.UUID   `json:"invoice_id"`
	PackageID     uuid.UUID   `json:"package_id"`
	MovementIDs   []uuid.UUID `json:"movement_ids"`
	Comment       string      `json:"comment"`
	ReconciledAt  time.Time   `json:"reconciled_at"`
}

// CloseEntry is one invoice/movement pair inside a batch close. A nil
// correlation id means the committer generates one for the pair.
type CloseEntry struct {
	InvoiceID     uuid.UUID
	MovementID    uuid.UUID
	Comment       string
	Type          string
	CorrelationID *uuid.UUID
}

// ProcessedEntry reports one committed pair of a batch close
type ProcessedEntry struct {
	CorrelationID uuid.UUID `json:"correlation_id"`
	InvoiceID     uuid.UUID `json:"invoice_id"`
	MovementID    uuid.UUID `json:"movement_id"`
	Type          string    `json:"type"`
}

// CloseResult is the outcome of a batch close; the batch either commits as a
// whole or not at all, so TotalProcessed always equals the entry count on
// success.
type CloseResult struct {
	Processed      []ProcessedEntry `json:"processed"`
	TotalProcessed int              `json:"total_processed"`
	ReconciledAt   time.Time        `json:"reconciled_at"`
}
