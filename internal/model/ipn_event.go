package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// IpnEvent is the append-only log of raw gateway notifications. Every inbound
// IPN is recorded verbatim before any verification runs, so rejected and
// malformed payloads remain auditable and replayable. Rows are never updated
// or deleted.
type IpnEvent struct {
	ID          uuid.UUID         `json:"id" gorm:"type:char(36);primaryKey"`
	PfPaymentID *string           `json:"pf_payment_id" gorm:"type:varchar(64);index"`
	Raw         datatypes.JSONMap `json:"raw" gorm:"not null"`
	CreatedAt   time.Time         `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (e *IpnEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// RawString returns the string value stored under key in the raw payload,
// or "" when absent or not a string.
func (e *IpnEvent) RawString(key string) string {
	if e.Raw == nil {
		return ""
	}
	if v, ok := e.Raw[key].(string); ok {
		return v
	}
	return ""
}

// RawParams converts the stored payload back into the flat string map the
// verification gates operate on. Non-string values are skipped; PayFast IPNs
// are form-encoded so every value is a string in practice.
func (e *IpnEvent) RawParams() map[string]string {
	params := make(map[string]string, len(e.Raw))
	for k, v := range e.Raw {
		if s, ok := v.(string); ok {
			params[k] = s
		}
	}
	return params
}
