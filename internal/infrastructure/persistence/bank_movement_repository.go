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

// GormBankMovementRepository implements BankMovementRepository using GORM
type GormBankMovementRepository struct {
	db *gorm.DB
}

// NewGormBankMovementRepository creates a new GormBankMovementRepository
func NewGormBankMovementRepository(db *gorm.DB) *GormBankMovementRepository {
	return &GormBankMovementRepository{db: db}
}

// FindByID finds a bank movement by ID
func (r *GormBankMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.BankMovement, error) {
	var model models.BankMovementModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs resolves the given movement ids; missing ids are simply absent
// from the result, callers enforce count-match semantics
func (r *GormBankMovementRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]reconciliation.BankMovement, error) {
	if len(ids) == 0 {
		return []reconciliation.BankMovement{}, nil
	}

	var rows []models.BankMovementModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	movements := make([]reconciliation.BankMovement, 0, len(rows))
	for i := range rows {
		movements = append(movements, *rows[i].ToDomain())
	}
	return movements, nil
}

// FindUnreconciledInWindow finds the unreconciled movements of the
// (company, bank account) pair inside the window, ordered by date ascending
func (r *GormBankMovementRepository) FindUnreconciledInWindow(ctx context.Context, companyID, bankAccountID uuid.UUID, from, to time.Time) ([]reconciliation.BankMovement, error) {
	var rows []models.BankMovementModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND bank_account_id = ? AND reconciled = ? AND movement_date BETWEEN ? AND ?",
			companyID, bankAccountID, false, from, to).
		Order("movement_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	movements := make([]reconciliation.BankMovement, 0, len(rows))
	for i := range rows {
		movements = append(movements, *rows[i].ToDomain())
	}
	return movements, nil
}

// Save creates or updates a bank movement
func (r *GormBankMovementRepository) Save(ctx context.Context, movement *reconciliation.BankMovement) error {
	var model models.BankMovementModel
	model.FromDomain(movement)

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save bank movement: %w", err)
	}
	return nil
}

// MarkReconciled flags a movement as reconciled, conditional on the movement
// being unreconciled. The guard makes concurrent double-commits lose cleanly.
func (r *GormBankMovementRepository) MarkReconciled(ctx context.Context, movementID, correlationID uuid.UUID, comment string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.BankMovementModel{}).
		Where("id = ? AND reconciled = ?", movementID, false).
		Updates(map[string]any{
			"reconciled":             true,
			"reconciliation_comment": comment,
			"reconciled_at":          at,
			"reconciliation_ref":     correlationID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark movement reconciled: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.BankMovementModel{}).
			Where("id = ?", movementID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrAlreadyReconciled
	}
	return nil
}

var _ reconciliation.BankMovementRepository = (*GormBankMovementRepository)(nil)
