package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"paylink-be/internal/payment"
	"paylink-be/internal/utils"

	"github.com/shopspring/decimal"
)

// CallbackService is the verification half of the payment flow.
type CallbackService interface {
	Handle(ctx context.Context, cb payment.Callback) (payment.Outcome, error)
}

// Handler exposes the two HTTP edges of the flow: starting a payment
// and receiving the processor's result callback.
type Handler struct {
	Gateway   payment.Gateway
	Callbacks CallbackService
}

func NewHandler(gateway payment.Gateway, callbacks CallbackService) *Handler {
	return &Handler{
		Gateway:   gateway,
		Callbacks: callbacks,
	}
}

// CheckoutHandler starts a payment: it creates the invoice, signs the
// request and sends the payer off to the hosted CrossPay page.
func (h *Handler) CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, "invalid form", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		utils.WriteJSONError(w, "invalid amount", http.StatusBadRequest)
		return
	}

	items, err := parseItems(r.FormValue("items"))
	if err != nil {
		utils.WriteJSONError(w, "invalid items", http.StatusBadRequest)
		return
	}

	info, err := parseInfo(r.FormValue("info"))
	if err != nil {
		utils.WriteJSONError(w, "invalid info", http.StatusBadRequest)
		return
	}

	in := payment.ChargeInput{
		PayerName:  r.FormValue("name"),
		PayerEmail: r.FormValue("email"),
		PayerPhone: r.FormValue("mobile"),
		Currency:   r.FormValue("currency"),
		Amount:     amount,
		Items:      items,
		Info:       info,
	}

	redirect, err := h.Gateway.CreateRedirect(r.Context(), in)
	if errors.Is(err, payment.ErrValidation) {
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		// No invoice leaked: a failed build aborts before any redirect.
		utils.WriteJSONError(w, "failed to start payment", http.StatusBadGateway)
		return
	}

	http.Redirect(w, r, redirect.URL, http.StatusSeeOther)
}

// CallbackHandler receives the asynchronous result at the return URL.
// Anything other than 200 tells the processor the delivery did not land.
func (h *Handler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		utils.WriteJSONError(w, "invalid form", http.StatusBadRequest)
		return
	}

	invoiceID := r.FormValue("invoice_id")
	if invoiceID == "" {
		utils.WriteJSONError(w, "missing invoice_id", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(r.FormValue("amount"))
	if err != nil {
		utils.WriteJSONError(w, "invalid amount", http.StatusBadRequest)
		return
	}

	cb := payment.Callback{
		InvoiceID:         invoiceID,
		IsPaid:            r.FormValue("is_paid") == "1",
		Amount:            amount,
		Currency:          r.FormValue("currency"),
		Hash:              r.FormValue("hash"),
		ExternalReference: r.FormValue("crosspay_invoice_id"),
	}

	outcome, err := h.Callbacks.Handle(r.Context(), cb)
	if err != nil {
		utils.WriteJSONError(w, "failed to process callback", http.StatusInternalServerError)
		return
	}

	if !outcome.Accepted {
		switch outcome.Reason {
		case payment.ReasonUnknownInvoice:
			utils.WriteJSONError(w, "unknown invoice", http.StatusNotFound)
		case payment.ReasonHashMismatch:
			utils.WriteJSONError(w, "invalid hash", http.StatusUnauthorized)
		case payment.ReasonStateConflict:
			utils.WriteJSONError(w, "invoice state conflict", http.StatusConflict)
		default:
			utils.WriteJSONError(w, "data mismatch", http.StatusConflict)
		}
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// Line items and info rows arrive as JSON-encoded form fields; both are
// optional, the gateway renders a single default line without them.

type checkoutItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type checkoutInfo struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func parseItems(raw string) ([]payment.LineItem, error) {
	if raw == "" {
		return nil, nil
	}

	var decoded []checkoutItem
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	items := make([]payment.LineItem, 0, len(decoded))
	for _, it := range decoded {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, payment.LineItem{
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: price,
		})
	}
	return items, nil
}

func parseInfo(raw string) ([]payment.InfoRow, error) {
	if raw == "" {
		return nil, nil
	}

	var decoded []checkoutInfo
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	rows := make([]payment.InfoRow, 0, len(decoded))
	for _, row := range decoded {
		rows = append(rows, payment.InfoRow{Label: row.Label, Value: row.Value})
	}
	return rows, nil
}
