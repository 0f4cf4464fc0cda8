// Package audit keeps an append-only trail of payment events. Rejected
// callbacks are recorded too, so forged or mismatched deliveries can be
// reviewed after the fact.
package audit

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

type Event struct {
	InvoiceID string
	Amount    decimal.Decimal
	Currency  string
	Status    string
	Outcome   string
	Reason    string
}

// Log appends events. Append is fire-and-forget from the caller's point
// of view: a failed append must never roll back an invoice transition.
type Log interface {
	Append(ctx context.Context, e Event) error
}

type pgLog struct {
	db *sql.DB
}

func NewLog(db *sql.DB) Log {
	return &pgLog{db: db}
}

func (l *pgLog) Append(ctx context.Context, e Event) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_events (invoice_id, amount, currency, status, outcome, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.InvoiceID, e.Amount, e.Currency, e.Status, e.Outcome, e.Reason)
	return err
}
