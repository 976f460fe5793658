package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/reconciliation"
	"github.com/payables/backoffice/internal/domain/shared"
	"github.com/payables/backoffice/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormScheduledPaymentRepository implements ScheduledPaymentRepository using GORM
type GormScheduledPaymentRepository struct {
	db *gorm.DB
}

// NewGormScheduledPaymentRepository creates a new GormScheduledPaymentRepository
func NewGormScheduledPaymentRepository(db *gorm.DB) *GormScheduledPaymentRepository {
	return &GormScheduledPaymentRepository{db: db}
}

// FindInWindow finds the scheduled payments of the (company, bank account)
// pair whose scheduled date falls inside the window
func (r *GormScheduledPaymentRepository) FindInWindow(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to time.Time) ([]reconciliation.ScheduledPayment, error) {
	var rows []models.ScheduledPaymentModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND bank_account_id = ? AND scheduled_date BETWEEN ? AND ?",
			companyID, bankAccountID, from, to).
		Order("scheduled_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	schedules := make([]reconciliation.ScheduledPayment, 0, len(rows))
	for i := range rows {
		schedules = append(schedules, *rows[i].ToDomain())
	}
	return schedules, nil
}

// FindByPackageID finds the (unique) schedule for a package, if any
func (r *GormScheduledPaymentRepository) FindByPackageID(ctx context.Context, packageID uuid.UUID) (*reconciliation.ScheduledPayment, error) {
	var model models.ScheduledPaymentModel
	if err := r.db.WithContext(ctx).
		First(&model, "package_id = ?", packageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a scheduled payment. The unique index on
// package_id enforces the at-most-one-schedule-per-package invariant; a
// violation surfaces as AlreadyExists.
func (r *GormScheduledPaymentRepository) Save(ctx context.Context, sp *reconciliation.ScheduledPayment) error {
	var model models.ScheduledPaymentModel
	model.FromDomain(sp)

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to save scheduled payment: %w", err)
	}
	return nil
}

var _ reconciliation.ScheduledPaymentRepository = (*GormScheduledPaymentRepository)(nil)
