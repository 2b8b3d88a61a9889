package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"churpay/internal/config"
	errs "churpay/internal/errors"
	"churpay/internal/model"
	"churpay/internal/payfast"
)

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) UpsertByReference(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, reference string) (*model.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, reference string, status model.PaymentStatus, limit int) ([]model.Payment, error) {
	args := m.Called(ctx, reference, status, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Payment), args.Error(1)
}

func (m *MockPaymentRepository) UpdateMeta(ctx context.Context, reference string, note, tags *string, status *model.PaymentStatus) (*model.Payment, error) {
	args := m.Called(ctx, reference, note, tags, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

// MockIpnEventRepository is a mock implementation of IpnEventRepository.
type MockIpnEventRepository struct {
	mock.Mock
}

func (m *MockIpnEventRepository) Create(ctx context.Context, event *model.IpnEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockIpnEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.IpnEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IpnEvent), args.Error(1)
}

func (m *MockIpnEventRepository) FindLatestByReference(ctx context.Context, reference string) (*model.IpnEvent, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IpnEvent), args.Error(1)
}

func (m *MockIpnEventRepository) List(ctx context.Context, reference string, limit int) ([]model.IpnEvent, error) {
	args := m.Called(ctx, reference, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.IpnEvent), args.Error(1)
}

// MockMailer is a mock implementation of mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendReceipt(ctx context.Context, to, name, reference string, amount decimal.Decimal, status string) error {
	args := m.Called(ctx, to, name, reference, amount, status)
	return args.Error(0)
}

// stubValidator is a controllable remote validator.
type stubValidator struct {
	result bool
	calls  int
}

func (v *stubValidator) Validate(ctx context.Context, params map[string]string) bool {
	v.calls++
	return v.result
}

// stubIntents answers expected-amount lookups from a fixed table.
type stubIntents struct {
	amounts map[string]decimal.Decimal
}

func (s *stubIntents) Initiate(ctx context.Context, amount string) (string, string, error) {
	panic("not used")
}

func (s *stubIntents) LookupExpectedAmount(ctx context.Context, reference string) (decimal.Decimal, bool) {
	amount, ok := s.amounts[reference]
	return amount, ok
}

const (
	testMerchantID = "10012345"
	testPassphrase = "test-passphrase"
)

func testPayFastConfig() config.PayFastConfig {
	return config.PayFastConfig{
		Mode:        "sandbox",
		MerchantID:  testMerchantID,
		MerchantKey: "key",
		Passphrase:  testPassphrase,
	}
}

// signedNotification builds a fully valid notification for ref-1/25.00 and
// lets the test corrupt it afterwards.
func signedNotification(mutate func(map[string]string)) map[string]string {
	params := map[string]string{
		payfast.FieldMerchantID:    testMerchantID,
		payfast.FieldReference:     "ref-1",
		payfast.FieldPfPaymentID:   "pf-1001",
		payfast.FieldPaymentStatus: "COMPLETE",
		payfast.FieldAmountGross:   "25.00",
		payfast.FieldEmailAddress:  "payer@example.com",
		payfast.FieldNameFirst:     "Thandi",
		payfast.FieldNameLast:      "Mokoena",
	}
	params[payfast.FieldSignature] = payfast.Sign(params, testPassphrase)
	if mutate != nil {
		mutate(params)
	}
	return params
}

type reconcileFixture struct {
	paymentRepo *MockPaymentRepository
	eventRepo   *MockIpnEventRepository
	validator   *stubValidator
	mailer      *MockMailer
	service     ReconcileService
}

func newReconcileFixture(remoteValid bool, amounts map[string]decimal.Decimal) *reconcileFixture {
	f := &reconcileFixture{
		paymentRepo: new(MockPaymentRepository),
		eventRepo:   new(MockIpnEventRepository),
		validator:   &stubValidator{result: remoteValid},
		mailer:      new(MockMailer),
	}
	f.service = NewReconcileService(
		f.paymentRepo,
		f.eventRepo,
		&stubIntents{amounts: amounts},
		f.validator,
		f.mailer,
		testPayFastConfig(),
	)
	return f
}

func expectedAmounts() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{"ref-1": decimal.RequireFromString("25.00")}
}

// expectEchoUpsert wires UpsertByReference to hand back a copy of its
// argument, the way the real repository returns the stored row.
func expectEchoUpsert(repo *MockPaymentRepository) {
	stored := &model.Payment{}
	repo.On("UpsertByReference", mock.Anything, mock.AnythingOfType("*model.Payment")).
		Run(func(args mock.Arguments) { *stored = *(args.Get(1).(*model.Payment)) }).
		Return(stored, nil)
}

func TestProcessNotificationAllGatesPass(t *testing.T) {
	f := newReconcileFixture(true, expectedAmounts())

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
	expectEchoUpsert(f.paymentRepo)
	f.mailer.On("SendReceipt", mock.Anything, "payer@example.com", "Thandi Mokoena", "ref-1", mock.Anything, "PAID").Return(nil)

	result, err := f.service.ProcessNotification(context.Background(), signedNotification(nil))

	require.NoError(t, err)
	assert.Equal(t, GateResults{Signature: true, MerchantID: true, RemoteValid: true, AmountMatch: true}, result.Gates)
	assert.True(t, result.Gates.AllPassed())
	require.NotNil(t, result.Payment)
	assert.Equal(t, model.PaymentStatusPaid, result.Payment.Status)
	assert.Equal(t, "ref-1", result.Payment.MerchantReference)
	assert.True(t, result.Payment.Amount.Equal(decimal.RequireFromString("25.00")))
	require.NotNil(t, result.Payment.PfPaymentID)
	assert.Equal(t, "pf-1001", *result.Payment.PfPaymentID)

	f.eventRepo.AssertExpectations(t)
	f.paymentRepo.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestProcessNotificationGateFailures(t *testing.T) {
	tests := []struct {
		name        string
		params      map[string]string
		remoteValid bool
		amounts     map[string]decimal.Decimal
		wantGates   GateResults
		wantRemote  int // expected validator calls
	}{
		{
			name: "corrupted signature short-circuits",
			params: signedNotification(func(p map[string]string) {
				p[payfast.FieldSignature] = "00000000000000000000000000000000"
			}),
			remoteValid: true,
			amounts:     expectedAmounts(),
			wantGates:   GateResults{},
			wantRemote:  0,
		},
		{
			name: "missing signature fails closed",
			params: signedNotification(func(p map[string]string) {
				delete(p, payfast.FieldSignature)
			}),
			remoteValid: true,
			amounts:     expectedAmounts(),
			wantGates:   GateResults{},
			wantRemote:  0,
		},
		{
			name: "foreign merchant identity",
			params: signedNotification(func(p map[string]string) {
				p[payfast.FieldMerchantID] = "99999999"
				delete(p, payfast.FieldSignature)
				p[payfast.FieldSignature] = payfast.Sign(p, testPassphrase)
			}),
			remoteValid: true,
			amounts:     expectedAmounts(),
			wantGates:   GateResults{Signature: true},
			wantRemote:  0,
		},
		{
			name:        "remote validation failure",
			params:      signedNotification(nil),
			remoteValid: false,
			amounts:     expectedAmounts(),
			wantGates:   GateResults{Signature: true, MerchantID: true},
			wantRemote:  1,
		},
		{
			name: "claimed amount does not match expectation",
			params: signedNotification(func(p map[string]string) {
				p[payfast.FieldAmountGross] = "30.00"
				delete(p, payfast.FieldSignature)
				p[payfast.FieldSignature] = payfast.Sign(p, testPassphrase)
			}),
			remoteValid: true,
			amounts:     expectedAmounts(),
			wantGates:   GateResults{Signature: true, MerchantID: true, RemoteValid: true},
			wantRemote:  1,
		},
		{
			name:        "no recorded expectation",
			params:      signedNotification(nil),
			remoteValid: true,
			amounts:     map[string]decimal.Decimal{},
			wantGates:   GateResults{Signature: true, MerchantID: true, RemoteValid: true},
			wantRemote:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReconcileFixture(tt.remoteValid, tt.amounts)

			f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
			var upserted model.Payment
			stored := &model.Payment{}
			f.paymentRepo.On("UpsertByReference", mock.Anything, mock.AnythingOfType("*model.Payment")).
				Run(func(args mock.Arguments) {
					upserted = *(args.Get(1).(*model.Payment))
					*stored = upserted
				}).
				Return(stored, nil)

			result, err := f.service.ProcessNotification(context.Background(), tt.params)

			require.NoError(t, err)
			assert.Equal(t, tt.wantGates, result.Gates)
			assert.False(t, result.Gates.AllPassed())
			assert.Equal(t, tt.wantRemote, f.validator.calls)

			// Rejected notifications are still recorded, forced to INVALID.
			assert.Equal(t, model.PaymentStatusInvalid, upserted.Status)
			assert.Equal(t, "ref-1", upserted.MerchantReference)

			// No receipt for rejected notifications.
			f.mailer.AssertNotCalled(t, "SendReceipt")
			f.eventRepo.AssertExpectations(t)
		})
	}
}

func TestProcessNotificationAlwaysLogsEvent(t *testing.T) {
	// 50 valid and 50 corrupted notifications: every one of the 100 is
	// appended to the event log, only the 50 valid ones yield a trusted row.
	f := newReconcileFixture(true, expectedAmounts())

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
	var statuses []model.PaymentStatus
	stored := &model.Payment{}
	f.paymentRepo.On("UpsertByReference", mock.Anything, mock.AnythingOfType("*model.Payment")).
		Run(func(args mock.Arguments) {
			*stored = *(args.Get(1).(*model.Payment))
			statuses = append(statuses, stored.Status)
		}).
		Return(stored, nil)
	f.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 50; i++ {
		_, err := f.service.ProcessNotification(context.Background(), signedNotification(nil))
		require.NoError(t, err)
	}
	for i := 0; i < 50; i++ {
		corrupted := signedNotification(func(p map[string]string) {
			p[payfast.FieldSignature] = "ffffffffffffffffffffffffffffffff"
		})
		_, err := f.service.ProcessNotification(context.Background(), corrupted)
		require.NoError(t, err)
	}

	f.eventRepo.AssertNumberOfCalls(t, "Create", 100)
	good := 0
	for _, s := range statuses {
		if s != model.PaymentStatusInvalid {
			good++
		}
	}
	assert.Equal(t, 50, good)
}

func TestProcessNotificationEventLogFailureDoesNotAbort(t *testing.T) {
	f := newReconcileFixture(true, expectedAmounts())

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(gorm.ErrInvalidDB)
	expectEchoUpsert(f.paymentRepo)
	f.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	result, err := f.service.ProcessNotification(context.Background(), signedNotification(nil))

	require.NoError(t, err)
	assert.True(t, result.Gates.AllPassed())
	require.NotNil(t, result.Payment)
	assert.Equal(t, model.PaymentStatusPaid, result.Payment.Status)
}

func TestProcessNotificationWithoutReferenceOnlyLogs(t *testing.T) {
	f := newReconcileFixture(true, expectedAmounts())

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)

	params := signedNotification(func(p map[string]string) {
		delete(p, payfast.FieldReference)
		delete(p, payfast.FieldSignature)
		p[payfast.FieldSignature] = payfast.Sign(p, testPassphrase)
	})
	result, err := f.service.ProcessNotification(context.Background(), params)

	require.NoError(t, err)
	assert.Nil(t, result.Payment)
	f.eventRepo.AssertNumberOfCalls(t, "Create", 1)
	f.paymentRepo.AssertNotCalled(t, "UpsertByReference", mock.Anything, mock.Anything)
}

func TestProcessNotificationTrimsClaimedAmount(t *testing.T) {
	f := newReconcileFixture(true, expectedAmounts())

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
	expectEchoUpsert(f.paymentRepo)
	f.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	params := signedNotification(func(p map[string]string) {
		p[payfast.FieldAmountGross] = " 25.00 "
		delete(p, payfast.FieldSignature)
		p[payfast.FieldSignature] = payfast.Sign(p, testPassphrase)
	})
	result, err := f.service.ProcessNotification(context.Background(), params)

	require.NoError(t, err)
	assert.True(t, result.Gates.AllPassed())
	assert.Equal(t, model.PaymentStatusPaid, result.Payment.Status)
	assert.True(t, result.Payment.Amount.Equal(decimal.RequireFromString("25.00")))
}

func TestRejectedNotificationDoesNotSeedExpectation(t *testing.T) {
	// A genuine-looking notification for a reference that never had an intent
	// row fails only the amount gate. Its claimed amount must not be persisted:
	// if it were, the gateway's retry would find it through
	// LookupExpectedAmount and the gate would confirm itself. Wired with the
	// real intent service so the retry reads what the first pass stored.
	paymentRepo := new(MockPaymentRepository)
	eventRepo := new(MockIpnEventRepository)
	mail := new(MockMailer)
	cfg := testConfig()

	eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
	stored := &model.Payment{}
	paymentRepo.On("UpsertByReference", mock.Anything, mock.AnythingOfType("*model.Payment")).
		Run(func(args mock.Arguments) { *stored = *(args.Get(1).(*model.Payment)) }).
		Return(stored, nil)
	paymentRepo.On("FindByReference", mock.Anything, "ref-1").Return(nil, gorm.ErrRecordNotFound).Once()
	paymentRepo.On("FindByReference", mock.Anything, "ref-1").Return(stored, nil)

	svc := NewReconcileService(
		paymentRepo, eventRepo,
		NewIntentService(paymentRepo, nil, cfg),
		&stubValidator{result: true},
		mail, cfg.PayFast,
	)

	params := signedNotification(nil)
	for i := 0; i < 2; i++ {
		result, err := svc.ProcessNotification(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, GateResults{Signature: true, MerchantID: true, RemoteValid: true}, result.Gates)
		assert.Equal(t, model.PaymentStatusInvalid, result.Payment.Status)
		assert.True(t, result.Payment.Amount.IsZero())
	}
	mail.AssertNotCalled(t, "SendReceipt")
}

func TestProcessNotificationIdempotent(t *testing.T) {
	// The same payload processed twice performs two upserts on the same
	// reference and the second one does not regress the status.
	f := newReconcileFixture(true, expectedAmounts())

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
	expectEchoUpsert(f.paymentRepo)
	f.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	params := signedNotification(nil)
	first, err := f.service.ProcessNotification(context.Background(), params)
	require.NoError(t, err)
	second, err := f.service.ProcessNotification(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, model.PaymentStatusPaid, first.Payment.Status)
	assert.Equal(t, model.PaymentStatusPaid, second.Payment.Status)
	assert.Equal(t, first.Payment.MerchantReference, second.Payment.MerchantReference)
	f.paymentRepo.AssertNumberOfCalls(t, "UpsertByReference", 2)
}

func TestProcessNotificationSandboxIdentityNeedsNoPassphrase(t *testing.T) {
	f := &reconcileFixture{
		paymentRepo: new(MockPaymentRepository),
		eventRepo:   new(MockIpnEventRepository),
		validator:   &stubValidator{result: true},
		mailer:      new(MockMailer),
	}
	cfg := config.PayFastConfig{
		Mode:        "sandbox",
		MerchantID:  payfast.SandboxTestMerchantID,
		MerchantKey: "key",
		Passphrase:  "locally-configured-but-ignored",
	}
	f.service = NewReconcileService(
		f.paymentRepo, f.eventRepo,
		&stubIntents{amounts: expectedAmounts()},
		f.validator, f.mailer, cfg,
	)

	params := map[string]string{
		payfast.FieldMerchantID:    payfast.SandboxTestMerchantID,
		payfast.FieldReference:     "ref-1",
		payfast.FieldPaymentStatus: "COMPLETE",
		payfast.FieldAmountGross:   "25.00",
	}
	// Sandbox test account signs without a passphrase.
	params[payfast.FieldSignature] = payfast.Sign(params, "")

	f.eventRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.IpnEvent")).Return(nil)
	expectEchoUpsert(f.paymentRepo)

	result, err := f.service.ProcessNotification(context.Background(), params)

	require.NoError(t, err)
	assert.True(t, result.Gates.AllPassed())
	assert.Equal(t, model.PaymentStatusPaid, result.Payment.Status)
}

func TestAmountGateRounding(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		claimed  string
		match    bool
	}{
		{name: "exact match", expected: "10.00", claimed: "10.00", match: true},
		{name: "claimed rounds down into match", expected: "10.00", claimed: "10.004999", match: true},
		{name: "expected rounds half away from zero", expected: "10.005", claimed: "10.01", match: true},
		{name: "one cent off fails", expected: "10.00", claimed: "10.01", match: false},
		{name: "unparseable claim fails", expected: "10.00", claimed: "ten", match: false},
		{name: "empty claim fails", expected: "10.00", claimed: "", match: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := map[string]decimal.Decimal{"ref-1": decimal.RequireFromString(tt.expected)}
			f := newReconcileFixture(true, amounts)
			svc := f.service.(*reconcileService)

			params := map[string]string{
				payfast.FieldReference:   "ref-1",
				payfast.FieldAmountGross: tt.claimed,
			}
			assert.Equal(t, tt.match, svc.amountGate(context.Background(), params))
		})
	}
}

func TestRevalidate(t *testing.T) {
	storedEvent := func() *model.IpnEvent {
		params := signedNotification(nil)
		raw := make(map[string]interface{}, len(params))
		for k, v := range params {
			raw[k] = v
		}
		return &model.IpnEvent{ID: uuid.New(), Raw: raw}
	}

	t.Run("no stored event", func(t *testing.T) {
		f := newReconcileFixture(true, expectedAmounts())
		f.eventRepo.On("FindLatestByReference", mock.Anything, "ref-1").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.Revalidate(context.Background(), "ref-1")
		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})

	t.Run("remote gate recovery flips the outcome", func(t *testing.T) {
		event := storedEvent()

		// First pass: remote validator down, payment scored INVALID.
		down := newReconcileFixture(false, expectedAmounts())
		down.eventRepo.On("FindLatestByReference", mock.Anything, "ref-1").Return(event, nil)
		expectEchoUpsert(down.paymentRepo)

		result, err := down.service.Revalidate(context.Background(), "ref-1")
		require.NoError(t, err)
		assert.False(t, result.Gates.RemoteValid)
		assert.Equal(t, model.PaymentStatusInvalid, result.Payment.Status)

		// Operator retries once the validator answers again.
		up := newReconcileFixture(true, expectedAmounts())
		up.eventRepo.On("FindLatestByReference", mock.Anything, "ref-1").Return(event, nil)
		expectEchoUpsert(up.paymentRepo)
		up.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err = up.service.Revalidate(context.Background(), "ref-1")
		require.NoError(t, err)
		assert.Equal(t, GateResults{Signature: true, MerchantID: true, RemoteValid: true, AmountMatch: true}, result.Gates)
		assert.Equal(t, model.PaymentStatusPaid, result.Payment.Status)
	})

	t.Run("does not append a new event", func(t *testing.T) {
		f := newReconcileFixture(true, expectedAmounts())
		f.eventRepo.On("FindLatestByReference", mock.Anything, "ref-1").Return(storedEvent(), nil)
		expectEchoUpsert(f.paymentRepo)
		f.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.Revalidate(context.Background(), "ref-1")
		require.NoError(t, err)
		f.eventRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestBackfillFromEvent(t *testing.T) {
	t.Run("unknown event id", func(t *testing.T) {
		f := newReconcileFixture(true, expectedAmounts())
		id := uuid.New()
		f.eventRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.BackfillFromEvent(context.Background(), id)
		assert.ErrorIs(t, err, errs.ErrEventNotFound)
	})

	t.Run("creates payment through the gate path", func(t *testing.T) {
		params := signedNotification(nil)
		raw := make(map[string]interface{}, len(params))
		for k, v := range params {
			raw[k] = v
		}
		event := &model.IpnEvent{ID: uuid.New(), Raw: raw}

		f := newReconcileFixture(true, expectedAmounts())
		f.eventRepo.On("FindByID", mock.Anything, event.ID).Return(event, nil)
		expectEchoUpsert(f.paymentRepo)
		f.mailer.On("SendReceipt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

		result, err := f.service.BackfillFromEvent(context.Background(), event.ID)
		require.NoError(t, err)
		assert.True(t, result.Gates.AllPassed())
		assert.Equal(t, "ref-1", result.Payment.MerchantReference)
	})
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected model.PaymentStatus
	}{
		{"COMPLETE", model.PaymentStatusPaid},
		{"complete", model.PaymentStatusPaid},
		{" Complete ", model.PaymentStatusPaid},
		{"PAID", model.PaymentStatusPaid},
		{"PENDING", model.PaymentStatusPending},
		{"FAILED", model.PaymentStatusFailed},
		{"CANCELLED", model.PaymentStatusFailed},
		{"CANCELED", model.PaymentStatusFailed},
		{"", model.PaymentStatusUnknown},
		{"SOMETHING_ELSE", model.PaymentStatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeStatus(tt.raw), "raw=%q", tt.raw)
	}
}
