// Package email delivers threshold alert notifications over SMTP.
package email

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"

	"hardhat/internal/domain/alerting"
	"hardhat/internal/shared/logger"
	"hardhat/internal/shared/utils"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
	// AlertTo receives every threshold alert in addition to the account
	// owner lookup the product layer may add later.
	AlertTo string
}

// SMTPAlertNotifier implements alert delivery over SMTP. Delivery runs on the
// usage recording path, so callers invoke it best-effort only.
type SMTPAlertNotifier struct {
	config  SMTPConfig
	dialer  *gomail.Dialer
	printer *message.Printer
	logger  logger.Interface
}

func NewSMTPAlertNotifier(config SMTPConfig, logger logger.Interface) *SMTPAlertNotifier {
	return &SMTPAlertNotifier{
		config:  config,
		dialer:  gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		printer: message.NewPrinter(language.English),
		logger:  logger,
	}
}

func (s *SMTPAlertNotifier) Notify(ctx context.Context, alert alerting.Alert) error {
	if s.config.AlertTo == "" {
		s.logger.Debugw("alert recipient not configured, dropping alert",
			"account_id", alert.AccountID,
			"feature", alert.Feature,
		)
		return nil
	}

	subject := fmt.Sprintf("Usage %s: %s at %.0f%%", alert.Level, alert.Feature, alert.Percentage)

	htmlBody := s.printer.Sprintf(`
		<html>
		<body>
			<h2>Usage threshold crossed</h2>
			<p>Account <strong>%s</strong> has used %d of %d for <strong>%s</strong> (%.0f%%) this billing period.</p>
			<p>Severity: <strong>%s</strong></p>
			<p>Suggested action: %s</p>
		</body>
		</html>
	`, alert.AccountID, alert.Used, alert.Limit, alert.Feature, alert.Percentage, alert.Level, alert.SuggestedAction)

	plainBody := s.printer.Sprintf(`
Usage threshold crossed

Account %s has used %d of %d for %s (%.0f%%) this billing period.
Severity: %s
Suggested action: %s
	`, alert.AccountID, alert.Used, alert.Limit, alert.Feature, alert.Percentage, alert.Level, alert.SuggestedAction)

	if err := s.sendEmail(s.config.AlertTo, subject, htmlBody, plainBody); err != nil {
		return err
	}

	s.logger.Infow("threshold alert delivered",
		"to", utils.MaskEmail(s.config.AlertTo),
		"account_id", alert.AccountID,
		"feature", alert.Feature,
		"level", alert.Level,
	)
	return nil
}

func (s *SMTPAlertNotifier) sendEmail(to, subject, htmlBody, plainBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", plainBody)
	m.AddAlternative("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
