package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BankMovement is one dated entry from an imported bank statement, owned by a
// (company, bank account) pair. Movements are created by the statement-import
// collaborator and mutated only by the reconciliation engine once matched.
type BankMovement struct {
	shared.BaseAggregateRoot
	CompanyID     uuid.UUID       `json:"company_id"`
	BankAccountID uuid.UUID       `json:"bank_account_id"`
	MovementDate  time.Time       `json:"movement_date"`
	Concept       string          `json:"concept"`
	ReferenceNumber string        `json:"reference_number"`
	DebitAmount   decimal.Decimal `json:"debit_amount"`
	CreditAmount  decimal.Decimal `json:"credit_amount"`
	Balance       decimal.Decimal `json:"balance"`

	Reconciled            bool       `json:"reconciled"`
	ReconciliationComment string     `json:"reconciliation_comment,omitempty"`
	ReconciledAt          *time.Time `json:"reconciled_at,omitempty"`
	ReconciliationRef     *uuid.UUID `json:"reconciliation_ref,omitempty"`
}

// NewBankMovement creates a new unreconciled bank movement
func NewBankMovement(
	companyID, bankAccountID uuid.UUID,
	movementDate time.Time,
	concept, referenceNumber string,
	debitAmount, creditAmount, balance decimal.Decimal,
) (*BankMovement, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account ID cannot be empty")
	}
	if movementDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Movement date is required")
	}
	if debitAmount.IsNegative() || creditAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Debit and credit amounts cannot be negative")
	}

	return &BankMovement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		BankAccountID:     bankAccountID,
		MovementDate:      movementDate,
		Concept:           concept,
		ReferenceNumber:   referenceNumber,
		DebitAmount:       debitAmount,
		CreditAmount:      creditAmount,
		Balance:           balance,
	}, nil
}

// MarkReconciled flags the movement as reconciled with the shared correlation
// id. Reconciled is terminal: there is no un-reconcile transition.
func (m *BankMovement) MarkReconciled(correlationID uuid.UUID, comment string, at time.Time) error {
	if m.Reconciled {
		return shared.ErrAlreadyReconciled
	}
	if correlationID == uuid.Nil {
		return shared.NewDomainError("INVALID_CORRELATION", "Correlation ID cannot be empty")
	}

	m.Reconciled = true
	m.ReconciliationComment = comment
	m.ReconciledAt = &at
	m.ReconciliationRef = &correlationID

	m.UpdatedAt = time.Now()
	m.IncrementVersion()
	m.AddDomainEvent(NewBankMovementReconciledEvent(m, correlationID))

	return nil
}

// SameCalendarDay reports whether the movement date falls on the same local
// calendar day as the given date, ignoring time-of-day.
func (m *BankMovement) SameCalendarDay(date time.Time) bool {
	y1, mo1, d1 := m.MovementDate.Date()
	y2, mo2, d2 := date.Date()
	return y1 == y2 && mo1 == mo2 && d1 == d2
}
