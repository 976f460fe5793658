package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
)

// ScheduleStatus represents the status of a scheduled payment
type ScheduleStatus string

const (
	ScheduleStatusScheduled  ScheduleStatus = "SCHEDULED"
	ScheduleStatusProcessing ScheduleStatus = "PROCESSING"
	ScheduleStatusCompleted  ScheduleStatus = "COMPLETED"
	ScheduleStatusCancelled  ScheduleStatus = "CANCELLED"
	ScheduleStatusError      ScheduleStatus = "ERROR"
)

// IsValid checks if the status is a valid ScheduleStatus
func (s ScheduleStatus) IsValid() bool {
	switch s {
	case ScheduleStatusScheduled, ScheduleStatusProcessing, ScheduleStatusCompleted,
		ScheduleStatusCancelled, ScheduleStatusError:
		return true
	}
	return false
}

// String returns the string representation of ScheduleStatus
func (s ScheduleStatus) String() string {
	return string(s)
}

// ScheduledPayment links one invoice package to exactly one (company, bank
// account) pair and a scheduling date. It is a pure scoping index for the
// reconciliation engine and is never mutated by it. At most one scheduled
// payment may exist per package (enforced at the store layer).
type ScheduledPayment struct {
	shared.BaseAggregateRoot
	CompanyID     uuid.UUID      `json:"company_id"`
	BankAccountID uuid.UUID      `json:"bank_account_id"`
	PackageID     uuid.UUID      `json:"package_id"`
	ScheduledDate time.Time      `json:"scheduled_date"`
	UserID        uuid.UUID      `json:"user_id"`
	Status        ScheduleStatus `json:"status"`
}

// NewScheduledPayment creates a new scheduled payment in SCHEDULED status
func NewScheduledPayment(companyID, bankAccountID, packageID, userID uuid.UUID, scheduledDate time.Time) (*ScheduledPayment, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BANK_ACCOUNT", "Bank account ID cannot be empty")
	}
	if packageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}
	if scheduledDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Scheduled date is required")
	}

	return &ScheduledPayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		BankAccountID:     bankAccountID,
		PackageID:         packageID,
		ScheduledDate:     scheduledDate,
		UserID:            userID,
		Status:            ScheduleStatusScheduled,
	}, nil
}
