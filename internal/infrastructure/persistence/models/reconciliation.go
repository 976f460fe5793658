package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/payables/backoffice/internal/domain/reconciliation"
	"github.com/shopspring/decimal"
)

// InvoicePackageModel is the persistence model for the InvoicePackage aggregate root.
type InvoicePackageModel struct {
	AggregateModel
	Folio        int64                        `gorm:"not null;index"`
	Status       reconciliation.PackageStatus `gorm:"type:varchar(20);not null;index"`
	UserID       uuid.UUID                    `gorm:"type:uuid;not null;index"`
	Department   string                       `gorm:"type:varchar(100)"`
	DueDate      *time.Time                   `gorm:"index"`
	TotalToPay   decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	TotalPaid    decimal.Decimal              `gorm:"type:decimal(18,4);not null"`
	InvoiceCount int                          `gorm:"not null;default:0"`
	Items        []InvoiceLineItemModel       `gorm:"foreignKey:PackageID"`
}

// TableName returns the table name for GORM
func (InvoicePackageModel) TableName() string {
	return "invoice_packages"
}

// InvoiceLineItemModel is the persistence model for one invoice embedded in a package.
type InvoiceLineItemModel struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	PackageID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_line_items_package_fiscal,priority:1"`
	FiscalUUID    string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_line_items_package_fiscal,priority:2"`
	IssuerTaxID   string     `gorm:"type:varchar(20)"`
	IssuerName    string     `gorm:"type:varchar(250)"`
	ReceiverTaxID string     `gorm:"type:varchar(20)"`
	ReceiverName  string     `gorm:"type:varchar(250)"`
	CertifierID   string     `gorm:"type:varchar(64)"`
	IssuedAt      time.Time  `gorm:"not null"`
	CertifiedAt   *time.Time ``
	CancelledAt   *time.Time ``

	AmountToPay decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	VoucherType string          `gorm:"type:varchar(10)"`

	ReferenceNumber string `gorm:"type:varchar(100);index"`

	Reconciled            bool       `gorm:"not null;default:false;index"`
	ReconciliationComment string     `gorm:"type:varchar(500)"`
	ReconciledAt          *time.Time ``
	ReconciliationRef     *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// ToDomain converts the persistence model to a domain InvoicePackage aggregate.
func (m *InvoicePackageModel) ToDomain() *reconciliation.InvoicePackage {
	invoices := make([]reconciliation.InvoiceLineItem, 0, len(m.Items))
	for i := range m.Items {
		invoices = append(invoices, m.Items[i].ToDomain())
	}
	return &reconciliation.InvoicePackage{
		BaseAggregateRoot: m.toBaseAggregateRoot(),
		Folio:             m.Folio,
		Status:            m.Status,
		UserID:            m.UserID,
		Department:        m.Department,
		DueDate:           m.DueDate,
		TotalToPay:        m.TotalToPay,
		TotalPaid:         m.TotalPaid,
		InvoiceCount:      m.InvoiceCount,
		Invoices:          invoices,
	}
}

// FromDomain populates the persistence model from a domain InvoicePackage aggregate.
func (m *InvoicePackageModel) FromDomain(p *reconciliation.InvoicePackage) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Folio = p.Folio
	m.Status = p.Status
	m.UserID = p.UserID
	m.Department = p.Department
	m.DueDate = p.DueDate
	m.TotalToPay = p.TotalToPay
	m.TotalPaid = p.TotalPaid
	m.InvoiceCount = p.InvoiceCount
	m.Items = make([]InvoiceLineItemModel, 0, len(p.Invoices))
	for i := range p.Invoices {
		var item InvoiceLineItemModel
		item.FromDomain(&p.Invoices[i])
		m.Items = append(m.Items, item)
	}
}

// ToDomain converts the persistence model to a domain InvoiceLineItem.
func (m *InvoiceLineItemModel) ToDomain() reconciliation.InvoiceLineItem {
	return reconciliation.InvoiceLineItem{
		ID:                    m.ID,
		PackageID:             m.PackageID,
		FiscalUUID:            m.FiscalUUID,
		IssuerTaxID:           m.IssuerTaxID,
		IssuerName:            m.IssuerName,
		ReceiverTaxID:         m.ReceiverTaxID,
		ReceiverName:          m.ReceiverName,
		CertifierID:           m.CertifierID,
		IssuedAt:              m.IssuedAt,
		CertifiedAt:           m.CertifiedAt,
		CancelledAt:           m.CancelledAt,
		AmountToPay:           m.AmountToPay,
		AmountPaid:            m.AmountPaid,
		VoucherType:           m.VoucherType,
		ReferenceNumber:       m.ReferenceNumber,
		Reconciled:            m.Reconciled,
		ReconciliationComment: m.ReconciliationComment,
		ReconciledAt:          m.ReconciledAt,
		ReconciliationRef:     m.ReconciliationRef,
	}
}

// FromDomain populates the persistence model from a domain InvoiceLineItem.
func (m *InvoiceLineItemModel) FromDomain(item *reconciliation.InvoiceLineItem) {
	m.ID = item.ID
	m.PackageID = item.PackageID
	m.FiscalUUID = item.FiscalUUID
	m.IssuerTaxID = item.IssuerTaxID
	m.IssuerName = item.IssuerName
	m.ReceiverTaxID = item.ReceiverTaxID
	m.ReceiverName = item.ReceiverName
	m.CertifierID = item.CertifierID
	m.IssuedAt = item.IssuedAt
	m.CertifiedAt = item.CertifiedAt
	m.CancelledAt = item.CancelledAt
	m.AmountToPay = item.AmountToPay
	m.AmountPaid = item.AmountPaid
	m.VoucherType = item.VoucherType
	m.ReferenceNumber = item.ReferenceNumber
	m.Reconciled = item.Reconciled
	m.ReconciliationComment = item.ReconciliationComment
	m.ReconciledAt = item.ReconciledAt
	m.ReconciliationRef = item.ReconciliationRef
}

// BankMovementModel is the persistence model for the BankMovement aggregate root.
type BankMovementModel struct {
	AggregateModel
	CompanyID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_scope,priority:1"`
	BankAccountID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_movements_scope,priority:2"`
	MovementDate    time.Time       `gorm:"not null;index:idx_movements_scope,priority:3"`
	Concept         string          `gorm:"type:varchar(500)"`
	ReferenceNumber string          `gorm:"type:varchar(100);index"`
	DebitAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreditAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Balance         decimal.Decimal `gorm:"type:decimal(18,4);not null"`

	Reconciled            bool       `gorm:"not null;default:false;index"`
	ReconciliationComment string     `gorm:"type:varchar(500)"`
	ReconciledAt          *time.Time ``
	ReconciliationRef     *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (BankMovementModel) TableName() string {
	return "bank_movements"
}

// ToDomain converts the persistence model to a domain BankMovement aggregate.
func (m *BankMovementModel) ToDomain() *reconciliation.BankMovement {
	return &reconciliation.BankMovement{
		BaseAggregateRoot:     m.toBaseAggregateRoot(),
		CompanyID:             m.CompanyID,
		BankAccountID:         m.BankAccountID,
		MovementDate:          m.MovementDate,
		Concept:               m.Concept,
		ReferenceNumber:       m.ReferenceNumber,
		DebitAmount:           m.DebitAmount,
		CreditAmount:          m.CreditAmount,
		Balance:               m.Balance,
		Reconciled:            m.Reconciled,
		ReconciliationComment: m.ReconciliationComment,
		ReconciledAt:          m.ReconciledAt,
		ReconciliationRef:     m.ReconciliationRef,
	}
}

// FromDomain populates the persistence model from a domain BankMovement aggregate.
func (m *BankMovementModel) FromDomain(b *reconciliation.BankMovement) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.CompanyID = b.CompanyID
	m.BankAccountID = b.BankAccountID
	m.MovementDate = b.MovementDate
	m.Concept = b.Concept
	m.ReferenceNumber = b.ReferenceNumber
	m.DebitAmount = b.DebitAmount
	m.CreditAmount = b.CreditAmount
	m.Balance = b.Balance
	m.Reconciled = b.Reconciled
	m.ReconciliationComment = b.ReconciliationComment
	m.ReconciledAt = b.ReconciledAt
	m.ReconciliationRef = b.ReconciliationRef
}

// ScheduledPaymentModel is the persistence model for the ScheduledPayment aggregate root.
// The unique index on PackageID enforces at most one schedule per package at
// the store layer.
type ScheduledPaymentModel struct {
	AggregateModel
	CompanyID     uuid.UUID                     `gorm:"type:uuid;not null;index:idx_schedules_scope,priority:1"`
	BankAccountID uuid.UUID                     `gorm:"type:uuid;not null;index:idx_schedules_scope,priority:2"`
	PackageID     uuid.UUID                     `gorm:"type:uuid;not null;uniqueIndex"`
	ScheduledDate time.Time                     `gorm:"not null;index:idx_schedules_scope,priority:3"`
	UserID        uuid.UUID                     `gorm:"type:uuid;not null"`
	Status        reconciliation.ScheduleStatus `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (ScheduledPaymentModel) TableName() string {
	return "scheduled_payments"
}

// ToDomain converts the persistence model to a domain ScheduledPayment aggregate.
func (m *ScheduledPaymentModel) ToDomain() *reconciliation.ScheduledPayment {
	return &reconciliation.ScheduledPayment{
		BaseAggregateRoot: m.toBaseAggregateRoot(),
		CompanyID:         m.CompanyID,
		BankAccountID:     m.BankAccountID,
		PackageID:         m.PackageID,
		ScheduledDate:     m.ScheduledDate,
		UserID:            m.UserID,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain ScheduledPayment aggregate.
func (m *ScheduledPaymentModel) FromDomain(sp *reconciliation.ScheduledPayment) {
	m.FromDomainAggregateRoot(sp.BaseAggregateRoot)
	m.CompanyID = sp.CompanyID
	m.BankAccountID = sp.BankAccountID
	m.PackageID = sp.PackageID
	m.ScheduledDate = sp.ScheduledDate
	m.UserID = sp.UserID
	m.Status = sp.Status
}
