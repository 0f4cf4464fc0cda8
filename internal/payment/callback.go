package payment

import (
	"context"
	"errors"
	"time"

	"paylink-be/internal/audit"
	"paylink-be/internal/config"
	"paylink-be/internal/invoice"
	"paylink-be/internal/logger"

	"go.uber.org/zap"
)

// Verifier validates an inbound CrossPay callback and drives the
// invoice state transition. The callback hash binds only the invoice
// id (it proves origin), so amount and currency are always reconciled
// against the stored invoice, never taken from the callback.
//
// For any invoice, no matter how many times Handle sees a valid
// successful callback, the terminal state is PAID exactly once and
// paid_at is set exactly once; the conditional update in the store is
// what serializes concurrent duplicates.
type Verifier struct {
	apiKey   string
	invoices invoice.Repository
	audits   audit.Log
	now      func() time.Time
}

func NewVerifier(cfg *config.Config, invoices invoice.Repository, audits audit.Log) *Verifier {
	return &Verifier{
		apiKey:   cfg.APIKey,
		invoices: invoices,
		audits:   audits,
		now:      time.Now,
	}
}

// Handle implements the verification sequence: lookup, hash check,
// stored-value reconciliation, then the conditional transition. The
// error return is reserved for store failures; protocol-level verdicts
// come back in the Outcome. Every verdict, rejections included, is
// appended to the audit trail.
func (v *Verifier) Handle(ctx context.Context, cb Callback) (Outcome, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("invoice_id", cb.InvoiceID),
		zap.Bool("is_paid", cb.IsPaid),
	)

	inv, err := v.invoices.GetByID(ctx, cb.InvoiceID)
	if errors.Is(err, invoice.ErrNotFound) {
		log.Warn("callback for unknown invoice")
		return v.reject(ctx, cb, "", ReasonUnknownInvoice), nil
	}
	if err != nil {
		log.Error("invoice lookup failed", zap.Error(err))
		return Outcome{}, err
	}

	// Origin check: hex HMAC over the invoice id, keyed by the API key.
	// A separate scheme from the outbound verification token.
	if !Verify(v.apiKey, cb.Hash, cb.InvoiceID) {
		log.Warn("callback hash mismatch")
		return v.reject(ctx, cb, string(inv.Status), ReasonHashMismatch), nil
	}

	// The stored amount and currency are the source of truth. A mismatch
	// means a forged callback or a real divergence with the processor;
	// either way it is rejected and kept for manual review.
	if !cb.Amount.Equal(inv.Amount) || cb.Currency != inv.Currency {
		log.Warn("callback data mismatch",
			zap.String("stored_amount", inv.Amount.StringFixed(2)),
			zap.String("callback_amount", cb.Amount.StringFixed(2)),
			zap.String("stored_currency", inv.Currency),
			zap.String("callback_currency", cb.Currency),
		)
		return v.reject(ctx, cb, string(inv.Status), ReasonDataMismatch), nil
	}

	if inv.Status == invoice.StatusPaid {
		// Idempotent replay: no re-credit, paid_at stays as it was.
		log.Info("duplicate callback for paid invoice, no-op")
		v.append(ctx, cb, string(invoice.StatusPaid), "ACCEPTED", "IDEMPOTENT_REPLAY")
		return Accept(), nil
	}

	if inv.Status == invoice.StatusFailed {
		if cb.IsPaid {
			// A paid notice for an invoice the merchant already wrote
			// off: the payer may have been charged. Never acknowledge
			// this silently.
			log.Warn("paid callback for failed invoice")
			return v.reject(ctx, cb, string(invoice.StatusFailed), ReasonStateConflict), nil
		}
		log.Info("duplicate failure callback, no-op")
		v.append(ctx, cb, string(invoice.StatusFailed), "ACCEPTED", "IDEMPOTENT_REPLAY")
		return Accept(), nil
	}

	if cb.IsPaid {
		return v.markPaid(ctx, cb, log)
	}
	return v.markFailed(ctx, cb, log)
}

func (v *Verifier) markPaid(ctx context.Context, cb Callback, log *zap.Logger) (Outcome, error) {
	err := v.invoices.MarkPaid(ctx, cb.InvoiceID, cb.ExternalReference, v.now().UTC())
	if errors.Is(err, invoice.ErrConflict) {
		// Lost the race to a concurrent delivery. Re-read to learn what
		// actually won: a paid duplicate collapses to a replay, but a
		// failure transition means the states diverged.
		cur, rerr := v.invoices.GetByID(ctx, cb.InvoiceID)
		if rerr != nil {
			log.Error("invoice re-read after conflict failed", zap.Error(rerr))
			return Outcome{}, rerr
		}
		if cur.Status == invoice.StatusPaid {
			log.Info("invoice already paid, treating as replay")
			v.append(ctx, cb, string(cur.Status), "ACCEPTED", "IDEMPOTENT_REPLAY")
			return Accept(), nil
		}
		log.Warn("paid callback lost race to failure transition",
			zap.String("status", string(cur.Status)))
		return v.reject(ctx, cb, string(cur.Status), ReasonStateConflict), nil
	}
	if err != nil {
		log.Error("failed to mark invoice paid", zap.Error(err))
		return Outcome{}, err
	}

	log.Info("invoice marked paid", zap.String("external_reference", cb.ExternalReference))
	v.append(ctx, cb, string(invoice.StatusPaid), "ACCEPTED", "")
	return Accept(), nil
}

func (v *Verifier) markFailed(ctx context.Context, cb Callback, log *zap.Logger) (Outcome, error) {
	err := v.invoices.MarkFailed(ctx, cb.InvoiceID)
	if errors.Is(err, invoice.ErrConflict) {
		// A late failure notice never downgrades a completed payment.
		// Re-read so the audit trail records the real resulting status.
		cur, rerr := v.invoices.GetByID(ctx, cb.InvoiceID)
		if rerr != nil {
			log.Error("invoice re-read after conflict failed", zap.Error(rerr))
			return Outcome{}, rerr
		}
		if cur.Status == invoice.StatusPaid {
			log.Info("failure notice for paid invoice ignored")
			v.append(ctx, cb, string(cur.Status), "ACCEPTED", "LATE_FAILURE_IGNORED")
		} else {
			log.Info("invoice already transitioned, failure notice is a replay")
			v.append(ctx, cb, string(cur.Status), "ACCEPTED", "IDEMPOTENT_REPLAY")
		}
		return Accept(), nil
	}
	if err != nil {
		log.Error("failed to mark invoice failed", zap.Error(err))
		return Outcome{}, err
	}

	log.Info("invoice marked failed")
	v.append(ctx, cb, string(invoice.StatusFailed), "ACCEPTED", "")
	return Accept(), nil
}

func (v *Verifier) reject(ctx context.Context, cb Callback, status string, reason RejectReason) Outcome {
	v.append(ctx, cb, status, "REJECTED", string(reason))
	return Reject(reason)
}

// append records the event; audit failures are logged and swallowed so
// they never roll back or mask an invoice transition.
func (v *Verifier) append(ctx context.Context, cb Callback, status, outcome, reason string) {
	err := v.audits.Append(ctx, audit.Event{
		InvoiceID: cb.InvoiceID,
		Amount:    cb.Amount,
		Currency:  cb.Currency,
		Status:    status,
		Outcome:   outcome,
		Reason:    reason,
	})
	if err != nil {
		logger.FromCtx(ctx).Error("audit append failed",
			zap.String("invoice_id", cb.InvoiceID),
			zap.Error(err),
		)
	}
}
