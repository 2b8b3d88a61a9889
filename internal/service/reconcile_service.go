package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"churpay/internal/config"
	errs "churpay/internal/errors"
	"churpay/internal/mailer"
	"churpay/internal/model"
	"churpay/internal/payfast"
	"churpay/internal/repository"
)

// GateResults records the outcome of each verification gate. All four must
// pass for a notification to be trusted; individual outcomes are kept for
// operator diagnostics.
type GateResults struct {
	Signature   bool `json:"signature"`
	MerchantID  bool `json:"merchant_id"`
	RemoteValid bool `json:"remote_valid"`
	AmountMatch bool `json:"amount_match"`
}

// AllPassed reports whether every gate passed.
func (g GateResults) AllPassed() bool {
	return g.Signature && g.MerchantID && g.RemoteValid && g.AmountMatch
}

// ReconcileResult is the structured outcome of processing one notification.
type ReconcileResult struct {
	Gates   GateResults    `json:"gates"`
	Payment *model.Payment `json:"payment,omitempty"`
}

// ReconcileService turns untrusted gateway notifications into trusted payment
// state, and re-runs that decision on stored notifications for recovery.
type ReconcileService interface {
	// ProcessNotification logs the raw payload, runs the four gates and
	// upserts the payment row. It only errors on internal failures the
	// transport adapter must swallow; gate failures are data, not errors.
	ProcessNotification(ctx context.Context, params map[string]string) (*ReconcileResult, error)
	// Revalidate re-runs the gates against the most recent stored event for
	// a reference, using current configuration.
	Revalidate(ctx context.Context, reference string) (*ReconcileResult, error)
	// BackfillFromEvent constructs or refreshes a payment row from a stored
	// event by ID, through the same gate/upsert path.
	BackfillFromEvent(ctx context.Context, eventID uuid.UUID) (*ReconcileResult, error)
}

type reconcileService struct {
	paymentRepo repository.PaymentRepository
	eventRepo   repository.IpnEventRepository
	intents     IntentService
	validator   payfast.RemoteValidator
	mail        mailer.Mailer
	pf          config.PayFastConfig
}

// NewReconcileService creates the reconciliation engine.
func NewReconcileService(
	paymentRepo repository.PaymentRepository,
	eventRepo repository.IpnEventRepository,
	intents IntentService,
	validator payfast.RemoteValidator,
	mail mailer.Mailer,
	pf config.PayFastConfig,
) ReconcileService {
	return &reconcileService{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		intents:     intents,
		validator:   validator,
		mail:        mail,
		pf:          pf,
	}
}

// ProcessNotification is the live IPN path. The raw event is appended before
// any verification so malicious and malformed payloads are audited too; an
// event-log failure is logged and processing continues.
func (s *reconcileService) ProcessNotification(ctx context.Context, params map[string]string) (*ReconcileResult, error) {
	event := &model.IpnEvent{Raw: toJSONMap(params)}
	if pfID := strings.TrimSpace(params[payfast.FieldPfPaymentID]); pfID != "" {
		event.PfPaymentID = &pfID
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		log.Printf("[payfast] ipn event log failed (processing continues): %v", err)
	}

	return s.reconcile(ctx, params)
}

// Revalidate replays the newest stored event for reference through the gates.
func (s *reconcileService) Revalidate(ctx context.Context, reference string) (*ReconcileResult, error) {
	event, err := s.eventRepo.FindLatestByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrEventNotFound
		}
		return nil, err
	}
	return s.reconcile(ctx, event.RawParams())
}

// BackfillFromEvent replays a specific stored event through the gates.
func (s *reconcileService) BackfillFromEvent(ctx context.Context, eventID uuid.UUID) (*ReconcileResult, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrEventNotFound
		}
		return nil, err
	}
	return s.reconcile(ctx, event.RawParams())
}

// reconcile runs the four gates and performs the idempotent upsert. Shared by
// the live IPN path (after event logging) and the revalidate/backfill tools.
func (s *reconcileService) reconcile(ctx context.Context, params map[string]string) (*ReconcileResult, error) {
	gates := s.runGates(ctx, params)
	result := &ReconcileResult{Gates: gates}

	reference := strings.TrimSpace(params[payfast.FieldReference])
	if reference == "" {
		// Nothing to key an upsert on; the event log is the only record.
		log.Printf("[payfast] notification without %s, gates=%+v", payfast.FieldReference, gates)
		return result, nil
	}

	status := model.PaymentStatusInvalid
	if gates.AllPassed() {
		status = NormalizeStatus(params[payfast.FieldPaymentStatus])
	}

	desired := &model.Payment{
		MerchantReference: reference,
		Status:            status,
	}
	// The claimed amount is only persisted once every gate passed. Writing it
	// on the rejected branch would let a rejected notification for a reference
	// without an intent row seed the very expectation the amount gate checks
	// on the gateway's retry.
	if gates.AllPassed() {
		if claimed, err := decimal.NewFromString(strings.TrimSpace(params[payfast.FieldAmountGross])); err == nil {
			desired.Amount = claimed.Round(2)
		}
	}
	if pfID := strings.TrimSpace(params[payfast.FieldPfPaymentID]); pfID != "" {
		desired.PfPaymentID = &pfID
	}
	if email := strings.TrimSpace(params[payfast.FieldEmailAddress]); email != "" {
		desired.PayerEmail = &email
	}
	if name := payerName(params); name != "" {
		desired.PayerName = &name
	}

	payment, err := s.paymentRepo.UpsertByReference(ctx, desired)
	if err != nil {
		log.Printf("[payfast] payment upsert failed ref=%s pf_payment_id=%s gates=%+v: %v",
			reference, params[payfast.FieldPfPaymentID], gates, err)
		return result, err
	}
	result.Payment = payment

	if gates.AllPassed() && status == model.PaymentStatusPaid && payment.PayerEmail != nil {
		s.sendReceipt(ctx, payment)
	}
	return result, nil
}

// runGates evaluates the gates in order, short-circuiting once one fails but
// recording each outcome.
func (s *reconcileService) runGates(ctx context.Context, params map[string]string) GateResults {
	var gates GateResults

	claimedID := strings.TrimSpace(params[payfast.FieldMerchantID])
	passphrase := payfast.PassphraseFor(claimedID, s.pf.Passphrase)

	gates.Signature = payfast.VerifySignature(params, passphrase)
	if !gates.Signature {
		log.Printf("[payfast] signature gate failed ref=%s", params[payfast.FieldReference])
		return gates
	}

	gates.MerchantID = claimedID != "" && claimedID == strings.TrimSpace(s.pf.MerchantID)
	if !gates.MerchantID {
		log.Printf("[payfast] merchant gate failed ref=%s claimed=%s", params[payfast.FieldReference], claimedID)
		return gates
	}

	gates.RemoteValid = s.validator.Validate(ctx, params)
	if !gates.RemoteValid {
		log.Printf("[payfast] remote validation gate failed ref=%s", params[payfast.FieldReference])
		return gates
	}

	gates.AmountMatch = s.amountGate(ctx, params)
	if !gates.AmountMatch {
		log.Printf("[payfast] amount gate failed ref=%s claimed=%s", params[payfast.FieldReference], params[payfast.FieldAmountGross])
	}
	return gates
}

// amountGate compares the claimed gross amount against the recorded
// expectation, both rounded to 2 decimals (half away from zero). No recorded
// expectation fails the gate.
func (s *reconcileService) amountGate(ctx context.Context, params map[string]string) bool {
	reference := strings.TrimSpace(params[payfast.FieldReference])
	if reference == "" {
		return false
	}
	expected, found := s.intents.LookupExpectedAmount(ctx, reference)
	if !found {
		return false
	}
	claimed, err := decimal.NewFromString(strings.TrimSpace(params[payfast.FieldAmountGross]))
	if err != nil {
		return false
	}
	return claimed.Round(2).Equal(expected.Round(2))
}

func (s *reconcileService) sendReceipt(ctx context.Context, payment *model.Payment) {
	name := ""
	if payment.PayerName != nil {
		name = *payment.PayerName
	}
	err := s.mail.SendReceipt(ctx, *payment.PayerEmail, name, payment.MerchantReference, payment.Amount, string(payment.Status))
	if err != nil {
		log.Printf("[payfast] receipt send failed ref=%s: %v", payment.MerchantReference, err)
	}
}

// NormalizeStatus maps the gateway's payment_status values onto the local
// status enum. Unrecognized values become UNKNOWN rather than being stored
// verbatim.
func NormalizeStatus(raw string) model.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETE", "PAID":
		return model.PaymentStatusPaid
	case "PENDING":
		return model.PaymentStatusPending
	case "FAILED", "CANCELLED", "CANCELED":
		return model.PaymentStatusFailed
	default:
		return model.PaymentStatusUnknown
	}
}

func payerName(params map[string]string) string {
	first := strings.TrimSpace(params[payfast.FieldNameFirst])
	last := strings.TrimSpace(params[payfast.FieldNameLast])
	return strings.TrimSpace(first + " " + last)
}

func toJSONMap(params map[string]string) datatypes.JSONMap {
	raw := make(datatypes.JSONMap, len(params))
	for k, v := range params {
		raw[k] = v
	}
	return raw
}
