package reconciliation

import (
	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
)

// Event types for the InvoicePackage aggregate
const (
	EventTypeInvoicePackageCreated     = "invoice_package.created"
	EventTypeInvoiceLineItemReconciled = "invoice_package.line_item_reconciled"
)

// InvoicePackageCreatedEvent is raised when a package is assembled
type InvoicePackageCreatedEvent struct {
	shared.BaseDomainEvent
	Folio  int64     `json:"folio"`
	UserID uuid.UUID `json:"user_id"`
}

// NewInvoicePackageCreatedEvent creates a new InvoicePackageCreatedEvent
func NewInvoicePackageCreatedEvent(p *InvoicePackage) *InvoicePackageCreatedEvent {
	return &InvoicePackageCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePackageCreated, "InvoicePackage", p.ID),
		Folio:           p.Folio,
		UserID:          p.UserID,
	}
}

// InvoiceLineItemReconciledEvent is raised when a line item is flagged as
// reconciled against one or more bank movements
type InvoiceLineItemReconciledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	FiscalUUID    string    `json:"fiscal_uuid"`
	CorrelationID uuid.UUID `json:"correlation_id"`
}

// NewInvoiceLineItemReconciledEvent creates a new InvoiceLineItemReconciledEvent
func NewInvoiceLineItemReconciledEvent(p *InvoicePackage, item *InvoiceLineItem, correlationID uuid.UUID) *InvoiceLineItemReconciledEvent {
	return &InvoiceLineItemReconciledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceLineItemReconciled, "InvoicePackage", p.ID),
		InvoiceID:       item.ID,
		FiscalUUID:      item.FiscalUUID,
		CorrelationID:   correlationID,
	}
}
