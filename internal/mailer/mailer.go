// Package mailer delivers the rendered report over SMTP. Delivery failure
// is fatal for a run: the orchestrator must not commit state for a report
// nobody received.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

const (
	retryAttempts = 3
	retryDelay    = 2 * time.Second
)

// Config carries the SMTP settings, usually from the environment.
type Config struct {
	Host string
	Port int
	User string
	Pass string
	From string
	To   string
}

// Mailer sends one report email per run.
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// New creates a mailer.
func New(cfg Config, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Dispatch sends the report with a plain body and an optional HTML
// alternative, retrying transient failures a few times before giving up.
func (m *Mailer) Dispatch(ctx context.Context, subject, plain, html string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(m.cfg.To); err != nil {
		return fmt.Errorf("set recipient %q: %w", m.cfg.To, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, plain)
	if html != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, html)
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.User),
		mail.WithPassword(m.cfg.Pass),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("build smtp client: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			m.logger.Warn("retrying report delivery",
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		err := client.DialAndSendWithContext(ctx, msg)
		if err == nil {
			m.logger.Info("report delivered", zap.String("to", m.cfg.To), zap.String("subject", subject))
			return nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}

	return fmt.Errorf("send report: %w", lastErr)
}

// isRetryable filters out failures a retry cannot fix, like auth rejects.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, fatal := range []string{"authentication", "credentials", "invalid address", "recipient rejected"} {
		if strings.Contains(msg, fatal) {
			return false
		}
	}
	return true
}
