package reconciliation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PackageStatus represents the lifecycle status of an invoice package
type PackageStatus string

const (
	PackageStatusDraft     PackageStatus = "DRAFT"
	PackageStatusSent      PackageStatus = "SENT"
	PackageStatusApproved  PackageStatus = "APPROVED"
	PackageStatusRejected  PackageStatus = "REJECTED"
	PackageStatusGenerated PackageStatus = "GENERATED" // Eligible for payment scheduling and reconciliation
	PackageStatusPaid      PackageStatus = "PAID"
	PackageStatusCancelled PackageStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PackageStatus
func (s PackageStatus) IsValid() bool {
	switch s {
	case PackageStatusDraft, PackageStatusSent, PackageStatusApproved,
		PackageStatusRejected, PackageStatusGenerated, PackageStatusPaid,
		PackageStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PackageStatus
func (s PackageStatus) String() string {
	return string(s)
}

// CanReconcile returns true if invoices inside the package may be reconciled
func (s PackageStatus) CanReconcile() bool {
	return s == PackageStatusGenerated
}

// InvoiceLineItem is one fiscal invoice embedded inside a package. Line items
// have no independent lifecycle: they are owned by exactly one package and
// addressed by (package id, item id) or, in manual flows, by item id alone.
type InvoiceLineItem struct {
	ID            uuid.UUID  `json:"id"`
	PackageID     uuid.UUID  `json:"package_id"`
	FiscalUUID    string     `json:"fiscal_uuid"`
	IssuerTaxID   string     `json:"issuer_tax_id"`
	IssuerName    string     `json:"issuer_name"`
	ReceiverTaxID string     `json:"receiver_tax_id"`
	ReceiverName  string     `json:"receiver_name"`
	CertifierID   string     `json:"certifier_id"`
	IssuedAt      time.Time  `json:"issued_at"`
	CertifiedAt   *time.Time `json:"certified_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`

	AmountToPay decimal.Decimal `json:"amount_to_pay"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	VoucherType string          `json:"voucher_type"`

	// ReferenceNumber is the free-text payment reference used as the
	// matching key against bank movements.
	ReferenceNumber string `json:"reference_number"`

	Reconciled            bool       `json:"reconciled"`
	ReconciliationComment string     `json:"reconciliation_comment,omitempty"`
	ReconciledAt          *time.Time `json:"reconciled_at,omitempty"`
	ReconciliationRef     *uuid.UUID `json:"reconciliation_ref,omitempty"`
}

// InvoicePackage is the aggregate root grouping invoices submitted together
// for payment. It exclusively owns its embedded line items and maintains
// package-level running totals over them.
type InvoicePackage struct {
	shared.BaseAggregateRoot
	Folio        int64             `json:"folio"`
	Status       PackageStatus     `json:"status"`
	UserID       uuid.UUID         `json:"user_id"`
	Department   string            `json:"department"`
	DueDate      *time.Time        `json:"due_date,omitempty"`
	TotalToPay   decimal.Decimal   `json:"total_to_pay"`
	TotalPaid    decimal.Decimal   `json:"total_paid"`
	InvoiceCount int               `json:"invoice_count"`
	Invoices     []InvoiceLineItem `json:"invoices"`
}

// NewInvoicePackage creates a new invoice package in DRAFT status
func NewInvoicePackage(folio int64, userID uuid.UUID, department string, dueDate *time.Time) (*InvoicePackage, error) {
	if folio <= 0 {
		return nil, shared.NewDomainError("INVALID_FOLIO", "Folio must be positive")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	p := &InvoicePackage{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Folio:             folio,
		Status:            PackageStatusDraft,
		UserID:            userID,
		Department:        department,
		DueDate:           dueDate,
		TotalToPay:        decimal.Zero,
		TotalPaid:         decimal.Zero,
		Invoices:          make([]InvoiceLineItem, 0),
	}

	p.AddDomainEvent(NewInvoicePackageCreatedEvent(p))

	return p, nil
}

// AddInvoice appends a line item to the package. No two line items in the
// same package may share a fiscal UUID or an identity.
func (p *InvoicePackage) AddInvoice(item InvoiceLineItem) error {
	if item.FiscalUUID == "" {
		return shared.NewDomainError("INVALID_FISCAL_UUID", "Fiscal UUID cannot be empty")
	}
	if item.AmountToPay.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount to pay cannot be negative")
	}
	for _, existing := range p.Invoices {
		if existing.FiscalUUID == item.FiscalUUID {
			return shared.NewDomainError("DUPLICATE_FISCAL_UUID",
				fmt.Sprintf("Invoice with fiscal UUID %s already exists in package %d", item.FiscalUUID, p.Folio))
		}
		if existing.ID == item.ID {
			return shared.NewDomainError("DUPLICATE_INVOICE", "Invoice line item already exists in package")
		}
	}

	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.PackageID = p.ID
	p.Invoices = append(p.Invoices, item)

	p.RecalculateTotals()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// FindInvoice returns the line item with the given identity
func (p *InvoicePackage) FindInvoice(itemID uuid.UUID) (*InvoiceLineItem, error) {
	for i := range p.Invoices {
		if p.Invoices[i].ID == itemID {
			return &p.Invoices[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

// RecalculateTotals recomputes the package running totals from the embedded
// line items. TotalPaid is clamped so it never exceeds TotalToPay.
func (p *InvoicePackage) RecalculateTotals() {
	totalToPay := decimal.Zero
	totalPaid := decimal.Zero
	for _, item := range p.Invoices {
		totalToPay = totalToPay.Add(item.AmountToPay)
		totalPaid = totalPaid.Add(item.AmountPaid)
	}
	if totalPaid.GreaterThan(totalToPay) {
		totalPaid = totalToPay
	}
	p.TotalToPay = totalToPay
	p.TotalPaid = totalPaid
	p.InvoiceCount = len(p.Invoices)
}

// MarkInvoiceReconciled flags the line item as reconciled with the shared
// correlation id. Reconciled is terminal: a second attempt fails.
// Reconciliation mutates flags only, never amounts, so totals are untouched.
func (p *InvoicePackage) MarkInvoiceReconciled(itemID, correlationID uuid.UUID, comment string, at time.Time) error {
	if !p.Status.CanReconcile() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reconcile invoices in a package with %s status", p.Status))
	}

	item, err := p.FindInvoice(itemID)
	if err != nil {
		return err
	}
	if item.Reconciled {
		return shared.ErrAlreadyReconciled
	}

	item.Reconciled = true
	item.ReconciliationComment = comment
	item.ReconciledAt = &at
	item.ReconciliationRef = &correlationID

	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewInvoiceLineItemReconciledEvent(p, item, correlationID))

	return nil
}

// MarkGenerated transitions the package into the GENERATED status
func (p *InvoicePackage) MarkGenerated() error {
	if p.Status == PackageStatusPaid || p.Status == PackageStatusCancelled {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot generate package in %s status", p.Status))
	}
	p.Status = PackageStatusGenerated
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasReconciledInvoices returns true if any line item carries a match
func (p *InvoicePackage) HasReconciledInvoices() bool {
	for _, item := range p.Invoices {
		if item.Reconciled {
			return true
		}
	}
	return false
}

// UnreconciledInvoices returns the line items that carry no match yet
func (p *InvoicePackage) UnreconciledInvoices() []InvoiceLineItem {
	items := make([]InvoiceLineItem, 0, len(p.Invoices))
	for _, item := range p.Invoices {
		if !item.Reconciled {
			items = append(items, item)
		}
	}
	return items
}
