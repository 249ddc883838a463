package email

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"storefront-api/models"
)

var ErrNoRecipient = errors.New("order has no customer email")

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Configured() bool {
	return c.Host != ""
}

type SMTPService struct {
	config SMTPConfig
}

func NewSMTPService(config SMTPConfig) *SMTPService {
	return &SMTPService{
		config: config,
	}
}

func (s *SMTPService) SendEmail(to, subject, body string) error {
	conn, err := net.Dial("tcp", net.JoinHostPort(s.config.Host, s.config.Port))
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: s.config.Host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to create email body writer: %w", err)
	}

	if _, err = w.Write([]byte(buildMessage(s.config.From, to, subject, body))); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close email body writer: %w", err)
	}

	return client.Quit()
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return b.String()
}

func (s *SMTPService) SendOrderConfirmation(summary models.OrderSummary) error {
	return sendOrderConfirmation(s, summary)
}

func sendOrderConfirmation(sender EmailSender, summary models.OrderSummary) error {
	to := strings.TrimSpace(summary.Customer.Email)
	if to == "" {
		return ErrNoRecipient
	}

	body, err := RenderOrderConfirmation(summary)
	if err != nil {
		return err
	}
	return sender.SendEmail(to, OrderConfirmationSubject(summary), body)
}

// LogSender writes emails to the log instead of delivering them. Used when SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSender{logger: logger}
}

func (l *LogSender) SendEmail(to, subject, body string) error {
	l.logger.Info("email not delivered, SMTP disabled",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}

func (l *LogSender) SendOrderConfirmation(summary models.OrderSummary) error {
	return sendOrderConfirmation(l, summary)
}
