package payment

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// inv_details payload shown on the hosted CrossPay page. Display-only:
// nothing in it is trusted during reconciliation.
type invoiceDetails struct {
	Items     []detailsItem `json:"items"`
	Info      []detailsInfo `json:"info"`
	PayerName string        `json:"payer_name"`
}

type detailsItem struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	TotalPrice string `json:"totalPrice"`
	Currency   string `json:"currency"`
}

type detailsInfo struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func buildInvoiceDetails(in ChargeInput) (string, error) {
	items := in.Items
	if len(items) == 0 {
		// The page always needs at least one line to render.
		items = []LineItem{{Name: "Payment", Quantity: 1, UnitPrice: in.Amount}}
	}

	d := invoiceDetails{
		Items:     make([]detailsItem, 0, len(items)),
		Info:      make([]detailsInfo, 0, len(in.Info)),
		PayerName: in.PayerName,
	}

	for _, it := range items {
		total := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		d.Items = append(d.Items, detailsItem{
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			TotalPrice: total.StringFixed(2),
			Currency:   in.Currency,
		})
	}

	for _, row := range in.Info {
		d.Info = append(d.Info, detailsInfo{Label: row.Label, Value: row.Value})
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
