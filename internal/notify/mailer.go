package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"
	log "github.com/sirupsen/logrus"

	"github.com/krishanu7/geoduel-backend/internal/auth"
)

const verifyPath = "/api/v1/auth/verify"

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer delivers through an SMTP relay using PLAIN auth when a username
// is configured.
type SMTPMailer struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

// NewMailer returns an SMTPMailer, or a LogMailer when no host is configured.
func NewMailer(cfg SMTPConfig) Mailer {
	if cfg.Host == "" {
		log.Warn("SMTP host not set; verification emails will only be logged")
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return oops.Code("MAIL_HEADER_INVALID").Errorf("header values must not contain line breaks")
	}

	var a smtp.Auth
	if m.cfg.Username != "" {
		a = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	if err := m.send(addr, a, m.cfg.From, []string{to}, buildMessage(m.cfg.From, to, subject, body)); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("smtp_host", m.cfg.Host).Wrap(err)
	}
	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(b.String())
}

// LogMailer records that a message would have been sent. Only the recipient
// is logged; the body carries the verification link.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, to, subject, _ string) error {
	log.WithField("to", to).Infof("Mail delivery disabled, dropping %q", subject)
	return nil
}

// VerificationMessage renders the subject and body of a verification email.
func VerificationMessage(baseURL string, msg auth.VerificationEmail) (subject, body string) {
	link := strings.TrimRight(baseURL, "/") + verifyPath + "?token=" + url.QueryEscape(msg.Token)
	subject = "Verify your GeoDuel account"
	body = fmt.Sprintf("Welcome to GeoDuel!\n\n"+
		"Confirm your email address by opening the link below:\n\n%s\n\n"+
		"The link expires at %s.\n",
		link, msg.ExpiresAt.UTC().Format(time.RFC1123))
	return subject, body
}

// deliver sends one verification email. Errors never carry the token.
func deliver(ctx context.Context, mailer Mailer, baseURL string, msg auth.VerificationEmail) error {
	subject, body := VerificationMessage(baseURL, msg)
	if err := mailer.Send(ctx, msg.Email, subject, body); err != nil {
		return oops.Code("VERIFICATION_DELIVERY_FAILED").With("user_id", msg.UserID).Wrap(err)
	}
	return nil
}
