package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCreated Status = "CREATED"
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Invoice is the record of one payment attempt. Amount and Currency are
// fixed at creation and are the source of truth when reconciling the
// processor callback; callback values are compared against them, never
// written over them.
type Invoice struct {
	ID         string
	Amount     decimal.Decimal
	Currency   string
	PayerName  string
	PayerEmail string
	PayerPhone string
	Status     Status

	// ExternalReference is the processor's own invoice id, set only on a
	// successful callback.
	ExternalReference *string
	CreatedAt         time.Time
	PaidAt            *time.Time
}
