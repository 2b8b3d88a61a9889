package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gorm.io/gorm"

	errs "churpay/internal/errors"
	"churpay/internal/model"
	"churpay/internal/repository"
)

const defaultListLimit = 200

// PaymentService is the read model consumed by the dashboard, plus the
// operator mutations (note/tags/status override) that bypass reconciliation.
type PaymentService interface {
	List(ctx context.Context, reference, status string, limit int) ([]model.Payment, error)
	GetByReference(ctx context.Context, reference string) (*model.Payment, error)
	UpdateMeta(ctx context.Context, reference string, note, tags, status *string) (*model.Payment, error)
	ListEvents(ctx context.Context, reference string, limit int) ([]model.IpnEvent, error)
	WriteCSV(ctx context.Context, w io.Writer) error
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	eventRepo   repository.IpnEventRepository
}

// NewPaymentService creates a new payment read/admin service.
func NewPaymentService(paymentRepo repository.PaymentRepository, eventRepo repository.IpnEventRepository) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
	}
}

// List returns payments newest first, optionally filtered.
func (s *paymentService) List(ctx context.Context, reference, status string, limit int) ([]model.Payment, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	var st model.PaymentStatus
	if status != "" {
		st = model.PaymentStatus(strings.ToUpper(status))
		if !model.ValidStatus(st) {
			return nil, errs.ErrInvalidStatus
		}
	}
	return s.paymentRepo.List(ctx, reference, st, limit)
}

// GetByReference returns the payment for a reference.
func (s *paymentService) GetByReference(ctx context.Context, reference string) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// UpdateMeta applies an operator override. Status values are validated
// against the known enum; note and tags are free-form.
func (s *paymentService) UpdateMeta(ctx context.Context, reference string, note, tags, status *string) (*model.Payment, error) {
	var st *model.PaymentStatus
	if status != nil {
		candidate := model.PaymentStatus(strings.ToUpper(strings.TrimSpace(*status)))
		if !model.ValidStatus(candidate) {
			return nil, errs.ErrInvalidStatus
		}
		st = &candidate
	}
	payment, err := s.paymentRepo.UpdateMeta(ctx, reference, note, tags, st)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListEvents returns stored IPN events, newest first.
func (s *paymentService) ListEvents(ctx context.Context, reference string, limit int) ([]model.IpnEvent, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	return s.eventRepo.List(ctx, reference, limit)
}

// WriteCSV streams all payments as CSV, newest first. Used by the export
// endpoint and the export CLI.
func (s *paymentService) WriteCSV(ctx context.Context, w io.Writer) error {
	payments, err := s.paymentRepo.List(ctx, "", "", 0)
	if err != nil {
		return fmt.Errorf("list payments: %w", err)
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "merchant_reference", "pf_payment_id", "amount", "status", "payer_email", "payer_name", "note", "tags", "created_at"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range payments {
		row := []string{
			p.ID.String(),
			p.MerchantReference,
			strOrEmpty(p.PfPaymentID),
			p.Amount.StringFixed(2),
			string(p.Status),
			strOrEmpty(p.PayerEmail),
			strOrEmpty(p.PayerName),
			p.Note,
			p.Tags,
			p.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
