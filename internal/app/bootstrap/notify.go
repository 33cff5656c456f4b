package bootstrap

import (
	appconfig "github.com/wolfman30/mindfulu-platform/internal/config"
	"github.com/wolfman30/mindfulu-platform/internal/notify"
	"github.com/wolfman30/mindfulu-platform/pkg/logging"
)

// BuildEmailSender returns SendGrid when configured, otherwise a stub that
// only logs.
func BuildEmailSender(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg != nil && cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail != "" {
		return notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
			ReplyTo:   cfg.SendGridReplyTo,
		}, logger)
	}
	if logger != nil {
		logger.Info("sendgrid not configured; booking confirmations are logged only")
	}
	return notify.NewStubEmailSender(logger)
}
