package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"churpay/internal/model"
	"churpay/internal/payfast"
)

// IpnEventRepository defines the append-only IPN event log. There are no
// update or delete operations on purpose: the full notification history is
// retained regardless of verification outcome.
type IpnEventRepository interface {
	Create(ctx context.Context, event *model.IpnEvent) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.IpnEvent, error)
	// FindLatestByReference returns the newest event whose raw payload's
	// m_payment_id matches the reference.
	FindLatestByReference(ctx context.Context, reference string) (*model.IpnEvent, error)
	List(ctx context.Context, reference string, limit int) ([]model.IpnEvent, error)
}

type ipnEventRepository struct {
	db *gorm.DB
}

// NewIpnEventRepository creates a new IPN event repository.
func NewIpnEventRepository(db *gorm.DB) IpnEventRepository {
	return &ipnEventRepository{db: db}
}

// Create appends a new event.
func (r *ipnEventRepository) Create(ctx context.Context, event *model.IpnEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// FindByID finds an event by ID.
func (r *ipnEventRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.IpnEvent, error) {
	var event model.IpnEvent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// FindLatestByReference queries the JSON payload column for the reference.
func (r *ipnEventRepository) FindLatestByReference(ctx context.Context, reference string) (*model.IpnEvent, error) {
	var event model.IpnEvent
	err := r.db.WithContext(ctx).
		Where(datatypes.JSONQuery("raw").Equals(reference, payfast.FieldReference)).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// List returns events newest first, optionally filtered by reference.
func (r *ipnEventRepository) List(ctx context.Context, reference string, limit int) ([]model.IpnEvent, error) {
	q := r.db.WithContext(ctx).Model(&model.IpnEvent{}).Order("created_at DESC")
	if reference != "" {
		q = q.Where(datatypes.JSONQuery("raw").Equals(reference, payfast.FieldReference))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var events []model.IpnEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
