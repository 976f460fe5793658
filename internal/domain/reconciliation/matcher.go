package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchTolerance is the absolute currency-unit tolerance for amount
// comparison. The comparison is strict: a difference of exactly 0.01 does
// not match.
var MatchTolerance = decimal.NewFromFloat(0.01)

// EligibleInvoice is an unreconciled invoice line item annotated with its
// parent package, as produced by the scope resolver. AmountToPay here is the
// package-level aggregate payable amount, not the line item's own amount:
// listing and automatic matching compare against the package total, while
// manual and direct commits key off the per-item amount.
type EligibleInvoice struct {
	InvoiceID       uuid.UUID       `json:"invoice_id"`
	PackageID       uuid.UUID       `json:"package_id"`
	Folio           int64           `json:"folio"`
	FiscalUUID      string          `json:"fiscal_uuid"`
	IssuerName      string          `json:"issuer_name"`
	VoucherType     string          `json:"voucher_type"`
	ReferenceNumber string          `json:"reference_number"`
	AmountToPay     decimal.Decimal `json:"amount_to_pay"`
}

// EligibleMovement is an unreconciled bank movement inside the scope window
type EligibleMovement struct {
	MovementID      uuid.UUID       `json:"movement_id"`
	MovementDate    time.Time       `json:"movement_date"`
	Concept         string          `json:"concept"`
	ReferenceNumber string          `json:"reference_number"`
	DebitAmount     decimal.Decimal `json:"debit_amount"`
	CreditAmount    decimal.Decimal `json:"credit_amount"`
	Balance         decimal.Decimal `json:"balance"`
}

// MatchPair is one proposed invoice/movement reconciliation with a freshly
// generated correlation id
type MatchPair struct {
	Invoice       EligibleInvoice  `json:"invoice"`
	Movement      EligibleMovement `json:"movement"`
	CorrelationID uuid.UUID        `json:"correlation_id"`
}

// MatchResult holds the matched pairs plus the leftovers on both sides
type MatchResult struct {
	Pairs              []MatchPair        `json:"pairs"`
	UnmatchedInvoices  []EligibleInvoice  `json:"unmatched_invoices"`
	UnmatchedMovements []EligibleMovement `json:"unmatched_movements"`
}

// Match pairs invoices with movements using greedy one-pass first-fit
// consumption: for each invoice in input order, the first movement in the
// remaining working set with an identical reference number and a credit
// amount within MatchTolerance of the invoice amount is consumed. Invoice
// input order is the tie-break when several movements qualify; callers that
// need deterministic output must pass sorted inputs.
//
// The function is pure: no I/O, and the inputs are not mutated.
func Match(invoices []EligibleInvoice, movements []EligibleMovement) MatchResult {
	result := MatchResult{
		Pairs:             make([]MatchPair, 0),
		UnmatchedInvoices: make([]EligibleInvoice, 0),
	}

	working := make([]EligibleMovement, len(movements))
	copy(working, movements)

	for _, invoice := range invoices {
		matched := false
		for i, movement := range working {
			if movement.ReferenceNumber != invoice.ReferenceNumber {
				continue
			}
			if !amountsMatch(movement.CreditAmount, invoice.AmountToPay) {
				continue
			}
			result.Pairs = append(result.Pairs, MatchPair{
				Invoice:       invoice,
				Movement:      movement,
				CorrelationID: uuid.New(),
			})
			working = append(working[:i], working[i+1:]...)
			matched = true
			break
		}
		if !matched {
			result.UnmatchedInvoices = append(result.UnmatchedInvoices, invoice)
		}
	}

	result.UnmatchedMovements = working

	return result
}

// amountsMatch reports whether two amounts differ by strictly less than
// MatchTolerance. The tolerance is absolute, not relative.
func amountsMatch(credit, amountToPay decimal.Decimal) bool {
	return credit.Sub(amountToPay).Abs().LessThan(MatchTolerance)
}
