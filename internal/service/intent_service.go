package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"churpay/internal/cache"
	"churpay/internal/config"
	errs "churpay/internal/errors"
	"churpay/internal/model"
	"churpay/internal/payfast"
	"churpay/internal/repository"
)

const (
	expectedAmountKeyPrefix = "expected_amount:"
	expectedAmountTTL       = 48 * time.Hour
)

// IntentService records payment intents before the payer is redirected and
// answers "what amount did we expect for this reference" during
// reconciliation.
type IntentService interface {
	// Initiate creates an intent and returns the gateway redirect URL plus
	// the generated merchant reference.
	Initiate(ctx context.Context, amount string) (redirectURL, reference string, err error)
	// LookupExpectedAmount returns the most recently recorded amount for a
	// reference. found is false when no expectation exists.
	LookupExpectedAmount(ctx context.Context, reference string) (amount decimal.Decimal, found bool)
}

type intentService struct {
	paymentRepo repository.PaymentRepository
	cache       *cache.Client
	cfg         *config.Config
}

// NewIntentService creates a new intent service.
func NewIntentService(paymentRepo repository.PaymentRepository, cacheClient *cache.Client, cfg *config.Config) IntentService {
	return &intentService{
		paymentRepo: paymentRepo,
		cache:       cacheClient,
		cfg:         cfg,
	}
}

// Initiate validates the amount, records the intent and builds the signed
// redirect URL. Intent bookkeeping is best effort: a database hiccup is
// logged but never fails the checkout redirect.
func (s *intentService) Initiate(ctx context.Context, amount string) (string, string, error) {
	if !s.cfg.PayFast.IsConfigured() {
		return "", "", errs.ErrNotConfigured
	}

	value, err := decimal.NewFromString(amount)
	if err != nil || value.LessThanOrEqual(decimal.Zero) {
		return "", "", errs.ErrInvalidAmount
	}
	value = value.Round(2)

	reference := uuid.New().String()
	s.createIntent(ctx, value, reference)

	pf := s.cfg.PayFast
	params := map[string]string{
		"merchant_id":          pf.MerchantID,
		"merchant_key":         pf.MerchantKey,
		payfast.FieldReference: reference,
		"amount":               value.StringFixed(2),
		payfast.FieldItemName:  pf.ItemName,
		"return_url":           s.cfg.FrontendURL + "/payfast/return",
		"cancel_url":           s.cfg.FrontendURL + "/payfast/cancel",
		"notify_url":           s.cfg.BackendURL + "/api/payfast/ipn",
	}
	signature := payfast.Sign(params, payfast.PassphraseFor(pf.MerchantID, pf.Passphrase))

	params[payfast.FieldSignature] = signature
	redirectURL := payfast.ProcessURL(pf.IsLive()) + "?" + payfast.SignatureString(params, "")

	log.Printf("[payfast] initiate mode=%s merchant_id=%s ref=%s amount=%s", pf.Mode, pf.MerchantID, reference, value.StringFixed(2))
	return redirectURL, reference, nil
}

// createIntent writes the INITIATED row and mirrors the expected amount into
// the fail-safe cache. Neither write may block initiation.
func (s *intentService) createIntent(ctx context.Context, amount decimal.Decimal, reference string) {
	payment := &model.Payment{
		MerchantReference: reference,
		Amount:            amount,
		Status:            model.PaymentStatusInitiated,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		log.Printf("[payfast] intent record failed for ref=%s (initiation continues): %v", reference, err)
	}
	_ = s.cache.Set(ctx, expectedAmountKeyPrefix+reference, []byte(amount.StringFixed(2)), expectedAmountTTL)
}

// LookupExpectedAmount consults the cache first, then the payment table.
// The database is authoritative; the cache only covers the window where the
// intent write was degraded or the row is hot.
func (s *intentService) LookupExpectedAmount(ctx context.Context, reference string) (decimal.Decimal, bool) {
	if data, _ := s.cache.Get(ctx, expectedAmountKeyPrefix+reference); data != nil {
		if amount, err := decimal.NewFromString(string(data)); err == nil {
			return amount, true
		}
	}

	payment, err := s.paymentRepo.FindByReference(ctx, reference)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[payfast] expected amount lookup failed for ref=%s: %v", reference, err)
		}
		return decimal.Zero, false
	}
	if payment.Amount.IsZero() {
		// A zero amount means the expectation was never recorded.
		return decimal.Zero, false
	}
	return payment.Amount, true
}
