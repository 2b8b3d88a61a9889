package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"churpay/internal/model"
)

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	// UpsertByReference creates or updates the row for payment.MerchantReference.
	// Mutable fields are last-write-wins except amount, which is only written
	// when the stored value is zero (first-write-wins, backfill only). Operator
	// fields (note, tags) are never touched. Returns the resulting row.
	UpsertByReference(ctx context.Context, payment *model.Payment) (*model.Payment, error)
	FindByReference(ctx context.Context, reference string) (*model.Payment, error)
	List(ctx context.Context, reference string, status model.PaymentStatus, limit int) ([]model.Payment, error)
	UpdateMeta(ctx context.Context, reference string, note, tags *string, status *model.PaymentStatus) (*model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create inserts a new payment record.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByReference returns the most recent payment for a reference.
func (r *paymentRepository) FindByReference(ctx context.Context, reference string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("merchant_reference = ?", reference).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpsertByReference converges concurrent reconciliations of the same
// reference through the unique index: a lost create race degrades into an
// update of the winner's row.
func (r *paymentRepository) UpsertByReference(ctx context.Context, payment *model.Payment) (*model.Payment, error) {
	existing, err := r.FindByReference(ctx, payment.MerchantReference)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created := *payment
		err = r.db.WithContext(ctx).Create(&created).Error
		if err == nil {
			return &created, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		// A concurrent create won the race; fall through to update its row.
		existing, err = r.FindByReference(ctx, payment.MerchantReference)
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status": payment.Status,
	}
	if payment.PfPaymentID != nil && *payment.PfPaymentID != "" {
		updates["pf_payment_id"] = *payment.PfPaymentID
	}
	if payment.PayerEmail != nil && *payment.PayerEmail != "" {
		updates["payer_email"] = *payment.PayerEmail
	}
	if payment.PayerName != nil && *payment.PayerName != "" {
		updates["payer_name"] = *payment.PayerName
	}
	if existing.Amount.IsZero() && !payment.Amount.IsZero() {
		updates["amount"] = payment.Amount
	}

	err = r.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("id = ?", existing.ID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.FindByReference(ctx, payment.MerchantReference)
}

// List returns payments, newest first, optionally filtered by reference
// and/or status.
func (r *paymentRepository) List(ctx context.Context, reference string, status model.PaymentStatus, limit int) ([]model.Payment, error) {
	q := r.db.WithContext(ctx).Model(&model.Payment{}).Order("created_at DESC")
	if reference != "" {
		q = q.Where("merchant_reference = ?", reference)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var payments []model.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateMeta applies an operator override of note, tags and/or status,
// bypassing reconciliation. Amount is deliberately not touchable here.
func (r *paymentRepository) UpdateMeta(ctx context.Context, reference string, note, tags *string, status *model.PaymentStatus) (*model.Payment, error) {
	updates := map[string]interface{}{}
	if note != nil {
		updates["note"] = *note
	}
	if tags != nil {
		updates["tags"] = *tags
	}
	if status != nil {
		updates["status"] = *status
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).
			Model(&model.Payment{}).
			Where("merchant_reference = ?", reference).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByReference(ctx, reference)
}
