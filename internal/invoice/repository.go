package invoice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
)

// Repository is the durable invoice store. It exclusively owns the
// invoice lifecycle: status, paid_at and external_reference are written
// nowhere else. MarkPaid and MarkFailed are conditional updates gated on
// the current status, so concurrent duplicate callbacks racing on the
// same invoice serialize here rather than in the application.
type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)

	// MarkPaid moves the invoice from CREATED or PENDING to PAID, setting
	// paid_at and the processor reference in the same statement. Returns
	// ErrConflict if the invoice was not in a payable state.
	MarkPaid(ctx context.Context, id, externalRef string, paidAt time.Time) error

	// MarkFailed moves the invoice from CREATED or PENDING to FAILED.
	// A PAID invoice is left untouched (ErrConflict).
	MarkFailed(ctx context.Context, id string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invoices (invoice_id, amount, currency, payer_name, payer_email, payer_phone, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		inv.ID, inv.Amount, inv.Currency,
		inv.PayerName, inv.PayerEmail, inv.PayerPhone,
		string(inv.Status), inv.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT invoice_id, amount, currency, payer_name, payer_email, payer_phone, status, external_reference, created_at, paid_at
		FROM invoices WHERE invoice_id = $1
	`, id)

	var inv Invoice
	var status string
	var extRef sql.NullString
	var paidAt sql.NullTime

	err := row.Scan(
		&inv.ID, &inv.Amount, &inv.Currency,
		&inv.PayerName, &inv.PayerEmail, &inv.PayerPhone,
		&status, &extRef, &inv.CreatedAt, &paidAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	inv.Status = Status(status)
	if extRef.Valid {
		inv.ExternalReference = &extRef.String
	}
	if paidAt.Valid {
		inv.PaidAt = &paidAt.Time
	}
	return &inv, nil
}

func (r *repository) MarkPaid(ctx context.Context, id, externalRef string, paidAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = 'PAID', paid_at = $2, external_reference = $3
		WHERE invoice_id = $1 AND status IN ('CREATED', 'PENDING')
	`, id, paidAt, externalRef)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *repository) MarkFailed(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = 'FAILED'
		WHERE invoice_id = $1 AND status IN ('CREATED', 'PENDING')
	`, id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}
