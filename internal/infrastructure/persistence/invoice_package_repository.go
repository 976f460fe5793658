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

// GormInvoicePackageRepository implements InvoicePackageRepository using GORM
type GormInvoicePackageRepository struct {
	db *gorm.DB
}

// NewGormInvoicePackageRepository creates a new GormInvoicePackageRepository
func NewGormInvoicePackageRepository(db *gorm.DB) *GormInvoicePackageRepository {
	return &GormInvoicePackageRepository{db: db}
}

// FindByID finds a package with its embedded line items
func (r *GormInvoicePackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*reconciliation.InvoicePackage, error) {
	var model models.InvoicePackageModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDsWithStatus finds the packages whose identity is in the given set
// and whose status matches
func (r *GormInvoicePackageRepository) FindByIDsWithStatus(ctx context.Context, ids []uuid.UUID, status reconciliation.PackageStatus) ([]reconciliation.InvoicePackage, error) {
	if len(ids) == 0 {
		return []reconciliation.InvoicePackage{}, nil
	}

	var rows []models.InvoicePackageModel
	if err := r.db.WithContext(ctx).
		Where("id IN ? AND status = ?", ids, status).
		Preload("Items").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	packages := make([]reconciliation.InvoicePackage, 0, len(rows))
	for i := range rows {
		packages = append(packages, *rows[i].ToDomain())
	}
	return packages, nil
}

// FindByLineItemID locates the line item with the given identity across all
// packages with the given status, returning the owning package and the item
func (r *GormInvoicePackageRepository) FindByLineItemID(ctx context.Context, itemID uuid.UUID, status reconciliation.PackageStatus) (*reconciliation.InvoicePackage, *reconciliation.InvoiceLineItem, error) {
	var itemModel models.InvoiceLineItemModel
	if err := r.db.WithContext(ctx).
		First(&itemModel, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, err
	}

	var pkgModel models.InvoicePackageModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&pkgModel, "id = ? AND status = ?", itemModel.PackageID, status).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Item exists but its package is not in the required status.
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, err
	}

	pkg := pkgModel.ToDomain()
	item, err := pkg.FindInvoice(itemID)
	if err != nil {
		return nil, nil, err
	}
	return pkg, item, nil
}

// Save creates or updates a package together with its line items
func (r *GormInvoicePackageRepository) Save(ctx context.Context, pkg *reconciliation.InvoicePackage) error {
	var model models.InvoicePackageModel
	model.FromDomain(pkg)

	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to save invoice package: %w", err)
	}
	return nil
}

// MarkLineItemReconciled flags a line item as reconciled. The update is
// conditional on the item being unreconciled so a lost race surfaces as
// AlreadyReconciled instead of a silent overwrite.
func (r *GormInvoicePackageRepository) MarkLineItemReconciled(ctx context.Context, itemID, correlationID uuid.UUID, comment string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceLineItemModel{}).
		Where("id = ? AND reconciled = ?", itemID, false).
		Updates(map[string]any{
			"reconciled":             true,
			"reconciliation_comment": comment,
			"reconciled_at":          at,
			"reconciliation_ref":     correlationID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark line item reconciled: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.classifyMissedUpdate(ctx, itemID)
	}
	return nil
}

// classifyMissedUpdate distinguishes a missing line item from an
// already-reconciled one after a zero-row conditional update.
func (r *GormInvoicePackageRepository) classifyMissedUpdate(ctx context.Context, itemID uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceLineItemModel{}).
		Where("id = ?", itemID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrAlreadyReconciled
}

var _ reconciliation.InvoicePackageRepository = (*GormInvoicePackageRepository)(nil)
