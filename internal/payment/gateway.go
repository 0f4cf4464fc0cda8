package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"paylink-be/internal/config"
	"paylink-be/internal/invoice"
	"paylink-be/internal/logger"
	"paylink-be/internal/utils"

	"go.uber.org/zap"
)

// maxIDAttempts bounds retries when the store rejects a generated
// invoice id as a duplicate.
const maxIDAttempts = 5

var (
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Gateway builds the signed redirect that hands the payer off to the
// hosted CrossPay page. The invoice record is guaranteed to exist in
// the store before a URL is returned, so no externally reachable
// invoice id exists without a local record.
type Gateway interface {
	CreateRedirect(ctx context.Context, in ChargeInput) (*Redirect, error)
}

type crosspayGateway struct {
	merchantID string
	apiKey     string
	secret     string
	baseURL    string
	returnURL  string
	invoices   invoice.Repository
	now        func() time.Time
}

// ----------------- Constructor -----------------

func NewCrossPayGateway(cfg *config.Config, invoices invoice.Repository) Gateway {
	if cfg.APIKey == "" || cfg.SigningSecret == "" {
		logger.L().Warn("CrossPay credentials are empty")
	}

	return &crosspayGateway{
		merchantID: cfg.MerchantID,
		apiKey:     cfg.APIKey,
		secret:     cfg.SigningSecret,
		baseURL:    cfg.BaseURL,
		returnURL:  cfg.ReturnURL,
		invoices:   invoices,
		now:        time.Now,
	}
}

// ----------------- CreateRedirect -----------------

func (x *crosspayGateway) CreateRedirect(ctx context.Context, in ChargeInput) (*Redirect, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("payer", in.PayerEmail),
		zap.String("amount", in.Amount.StringFixed(2)),
		zap.String("currency", in.Currency),
	)

	if err := validateChargeInput(in); err != nil {
		log.Warn("charge input rejected", zap.Error(err))
		return nil, err
	}

	base, err := url.Parse(x.baseURL)
	if err != nil {
		log.Error("invalid processor base URL", zap.Error(err))
		return nil, fmt.Errorf("invalid processor base URL: %w", err)
	}

	inv, err := x.createInvoice(ctx, in, log)
	if err != nil {
		return nil, err
	}

	total := in.Amount.StringFixed(2)

	// verification_token binds invoice id, amount and currency, so the
	// amount cannot be tampered with on the way to the processor. Field
	// order is fixed by the protocol.
	token := Sign(x.secret, inv.ID, total, in.Currency)

	details, err := buildInvoiceDetails(in)
	if err != nil {
		log.Error("failed to build invoice details", zap.Error(err))
		return nil, err
	}

	q := base.Query()
	q.Set("account_id", x.merchantID)
	q.Set("invoice_id", inv.ID)
	q.Set("api_key", x.apiKey)
	q.Set("total", total)
	q.Set("currency", in.Currency)
	q.Set("inv_details", details)
	q.Set("return_url", x.returnURL)
	q.Set("email", in.PayerEmail)
	q.Set("mobile", utils.NormalizePhone(in.PayerPhone))
	q.Set("name", in.PayerName)
	q.Set("verification_token", token)
	base.RawQuery = q.Encode()

	log.Info("payment redirect created", zap.String("invoice_id", inv.ID))

	return &Redirect{InvoiceID: inv.ID, URL: base.String()}, nil
}

func (x *crosspayGateway) createInvoice(ctx context.Context, in ChargeInput, log *zap.Logger) (*invoice.Invoice, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		inv := &invoice.Invoice{
			ID:         invoice.NewID(),
			Amount:     in.Amount,
			Currency:   in.Currency,
			PayerName:  in.PayerName,
			PayerEmail: in.PayerEmail,
			PayerPhone: in.PayerPhone,
			Status:     invoice.StatusCreated,
			CreatedAt:  x.now().UTC(),
		}

		err := x.invoices.Create(ctx, inv)
		if errors.Is(err, invoice.ErrDuplicateID) {
			log.Warn("invoice id collision, retrying", zap.String("invoice_id", inv.ID))
			continue
		}
		if err != nil {
			log.Error("failed to persist invoice", zap.Error(err))
			return nil, fmt.Errorf("persist invoice: %w", err)
		}
		return inv, nil
	}

	log.Error("invoice id generation exhausted")
	return nil, invoice.ErrGenerationExhausted
}

func validateChargeInput(in ChargeInput) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !currencyRegex.MatchString(in.Currency) {
		return fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}
	if !emailRegex.MatchString(in.PayerEmail) {
		return fmt.Errorf("%w: payer email is malformed", ErrValidation)
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("%w: item quantity must be greater than zero", ErrValidation)
		}
	}
	return nil
}
