package notify

import (
	"context"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/NasaVasa/pricewatch/internal/domain"
	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type EmailNotifier struct {
	cfg      SMTPConfig
	sendMail sendMailFunc
	logger   *zap.Logger
}

func NewEmailNotifier(cfg SMTPConfig, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, sendMail: smtp.SendMail, logger: logger}
}

func (n *EmailNotifier) Send(ctx context.Context, recipient string, drop domain.PriceDrop) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, err := mail.ParseAddress(recipient)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRecipient, err)
	}

	body, err := HTMLBody(drop)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	msg := buildMessage(n.cfg.From, to.Address, Subject(drop), body)

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))

	n.logger.Info("email notify send", zap.String("recipient", to.Address), zap.Uint("alert_id", drop.AlertID))
	if err := n.sendMail(addr, auth, n.cfg.From, []string{to.Address}, msg); err != nil {
		n.logger.Warn("failed to send email", zap.String("recipient", to.Address), zap.Error(err))
		return err
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mimeHeader(subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

func mimeHeader(s string) string {
	s = strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
	return mime.QEncoding.Encode("UTF-8", s)
}
