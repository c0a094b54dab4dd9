package mail

import (
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/echosuccess/participium-sub000/internal/config"
)

// Sender delivers transactional email.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPSender builds a sender from config. When no host is configured the
// sender logs and drops messages, which keeps signup working in development.
func NewSMTPSender(cfg config.MailConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// Send delivers a single message.
func (s *SMTPSender) Send(to, subject, body string) error {
	if s.cfg.Host == "" {
		s.logger.Info("smtp not configured; dropping mail",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body)

	addr := s.cfg.Host + ":" + s.cfg.Port
	var auth smtp.Auth
	if s.cfg.User != "" {
		auth = smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	}
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}
