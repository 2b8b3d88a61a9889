package mailer

import (
	"context"
	"fmt"
	"log"
	"net/smtp"

	"github.com/shopspring/decimal"

	"churpay/internal/config"
)

// Mailer sends payment receipts. Delivery is fire-and-forget: reconciliation
// logs failures but never propagates them.
type Mailer interface {
	SendReceipt(ctx context.Context, to, name, reference string, amount decimal.Decimal, status string) error
}

// SMTPMailer delivers receipts through a configured SMTP relay.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer creates an SMTP-backed mailer.
func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendReceipt composes and sends a plain-text receipt.
func (m *SMTPMailer) SendReceipt(ctx context.Context, to, name, reference string, amount decimal.Decimal, status string) error {
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Churpay payment receipt (%s)\r\n\r\n"+
			"%s,\r\n\r\nWe received your payment of R%s.\r\n\r\nReference: %s\r\nStatus: %s\r\n\r\nThank you!\r\n",
		m.cfg.From, to, reference, greeting, amount.StringFixed(2), reference, status,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	return nil
}

// LogMailer is used when SMTP is not configured; it records the receipt in
// the process log instead of delivering it.
type LogMailer struct{}

// NewLogMailer creates a log-only mailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

// SendReceipt logs the receipt instead of sending it.
func (m *LogMailer) SendReceipt(ctx context.Context, to, name, reference string, amount decimal.Decimal, status string) error {
	log.Printf("[mailer] receipt (log only) to=%s ref=%s amount=%s status=%s", to, reference, amount.StringFixed(2), status)
	return nil
}

// FromConfig selects the SMTP mailer when a host is configured, the log
// mailer otherwise.
func FromConfig(cfg config.SMTPConfig) Mailer {
	if cfg.Host != "" {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer()
}
