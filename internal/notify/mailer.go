package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/qna-service/internal/config"
)

// Notifier is the outbound notification sink. Delivery is a single
// best-effort attempt; callers must not treat a send failure as fatal.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPNotifier sends plain-text mail over SMTP.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logger *zap.Logger
}

// NewSMTPNotifier builds an SMTP-backed notifier.
func NewSMTPNotifier(cfg config.SMTPConfig, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, logger: logger}
}

// Send submits one message. No retry queue; the caller decides how to surface
// a failure.
func (n *SMTPNotifier) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(n.cfg.Host) == "" {
		return fmt.Errorf("smtp host not configured")
	}

	addr := n.cfg.Host + ":" + n.cfg.Port
	msg := buildMessage(n.cfg.From, to, subject, body)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, n.cfg.From, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	n.logger.Debug("notification sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// NoopNotifier discards notifications. Used when SMTP is not configured.
type NoopNotifier struct{}

// Send does nothing.
func (NoopNotifier) Send(ctx context.Context, to, subject, body string) error {
	return nil
}
