package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewLog(db)

	e := Event{
		InvoiceID: "INV-1",
		Amount:    decimal.RequireFromString("10.00"),
		Currency:  "USD",
		Status:    "PAID",
		Outcome:   "ACCEPTED",
		Reason:    "",
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO audit_events`).
			WithArgs(e.InvoiceID, e.Amount, e.Currency, e.Status, e.Outcome, e.Reason).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := l.Append(context.Background(), e)
		assert.NoError(t, err)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO audit_events`).
			WillReturnError(errors.New("database error"))

		err := l.Append(context.Background(), e)
		assert.Error(t, err)
	})
}
