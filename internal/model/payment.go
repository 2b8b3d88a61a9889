package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the reconciled state of a payment.
type PaymentStatus string

const (
	// PaymentStatusInitiated is the creation state, set before the payer is
	// redirected to the gateway.
	PaymentStatusInitiated PaymentStatus = "INITIATED"
	// PaymentStatusPaid means a fully verified COMPLETE notification was received.
	PaymentStatusPaid PaymentStatus = "PAID"
	// PaymentStatusPending means the gateway reported the payment as in flight.
	PaymentStatusPending PaymentStatus = "PENDING"
	// PaymentStatusFailed means the gateway reported failure or cancellation.
	PaymentStatusFailed PaymentStatus = "FAILED"
	// PaymentStatusInvalid means a notification arrived but was rejected by
	// at least one verification gate.
	PaymentStatusInvalid PaymentStatus = "INVALID"
	// PaymentStatusUnknown means a verified notification carried a status this
	// service does not recognize.
	PaymentStatusUnknown PaymentStatus = "UNKNOWN"
)

// ValidStatus reports whether s is one of the known payment statuses.
func ValidStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusInitiated, PaymentStatusPaid, PaymentStatusPending,
		PaymentStatusFailed, PaymentStatusInvalid, PaymentStatusUnknown:
		return true
	}
	return false
}

// Payment is the single evolving payment entity, keyed by the merchant
// reference generated at intent creation. The unique constraints on
// merchant_reference and pf_payment_id are the serialization point for
// concurrent reconciliations of the same notification.
type Payment struct {
	ID                uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	MerchantReference string          `json:"merchant_reference" gorm:"type:varchar(64);not null;uniqueIndex"`
	PfPaymentID       *string         `json:"pf_payment_id" gorm:"type:varchar(64);uniqueIndex"`
	Amount            decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Status            PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'INITIATED';index"`
	PayerEmail        *string         `json:"payer_email" gorm:"type:varchar(255)"`
	PayerName         *string         `json:"payer_name" gorm:"type:varchar(255)"`
	Note              string          `json:"note" gorm:"type:text"`
	Tags              string          `json:"tags" gorm:"type:varchar(512)"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
