package reconciliation

import (
	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
)

// EventTypeBankMovementReconciled is raised when a movement is matched
const EventTypeBankMovementReconciled = "bank_movement.reconciled"

// BankMovementReconciledEvent is raised when a movement is flagged as
// reconciled against an invoice line item
type BankMovementReconciledEvent struct {
	shared.BaseDomainEvent
	CompanyID     uuid.UUID `json:"company_id"`
	BankAccountID uuid.UUID `json:"bank_account_id"`
	CorrelationID uuid.UUID `json:"correlation_id"`
}

// NewBankMovementReconciledEvent creates a new BankMovementReconciledEvent
func NewBankMovementReconciledEvent(m *BankMovement, correlationID uuid.UUID) *BankMovementReconciledEvent {
	return &BankMovementReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBankMovementReconciled, "BankMovement", m.ID),
		CompanyID:       m.CompanyID,
		BankAccountID:   m.BankAccountID,
		CorrelationID:   correlationID,
	}
}
