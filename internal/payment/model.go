package payment

import (
	"github.com/shopspring/decimal"
)

// ChargeInput is what the merchant collects from the payer before
// handing off to CrossPay. Payer contact fields are display-only and
// carry no trust.
type ChargeInput struct {
	PayerName  string
	PayerEmail string
	PayerPhone string
	Currency   string
	Amount     decimal.Decimal
	Items      []LineItem
	Info       []InfoRow
}

type LineItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// InfoRow is a free-form label/value line shown on the hosted payment
// page, e.g. "Order" / "#1042".
type InfoRow struct {
	Label string
	Value string
}

// Redirect is the result of building a payment request: the invoice the
// merchant now holds and the processor URL to send the payer to.
type Redirect struct {
	InvoiceID string
	URL       string
}

// Callback is the asynchronous result notification CrossPay delivers to
// the return URL. It is an input event consumed once, never persisted
// as an entity.
type Callback struct {
	InvoiceID         string
	IsPaid            bool
	Amount            decimal.Decimal
	Currency          string
	Hash              string
	ExternalReference string
}

type RejectReason string

const (
	ReasonUnknownInvoice RejectReason = "UNKNOWN_INVOICE"
	ReasonHashMismatch   RejectReason = "HASH_MISMATCH"
	ReasonDataMismatch   RejectReason = "DATA_MISMATCH"

	// ReasonStateConflict marks a paid notice arriving for an invoice
	// that already failed: the payer may have been charged for an
	// invoice the merchant wrote off, so it needs manual review rather
	// than a silent 200.
	ReasonStateConflict RejectReason = "STATE_CONFLICT"
)

// Outcome is the verifier's verdict on a callback. A rejected callback
// never mutates invoice state.
type Outcome struct {
	Accepted bool
	Reason   RejectReason
}

func Accept() Outcome {
	return Outcome{Accepted: true}
}

func Reject(reason RejectReason) Outcome {
	return Outcome{Reason: reason}
}
