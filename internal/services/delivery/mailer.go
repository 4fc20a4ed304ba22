package delivery

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/notifyhub/herald/internal/domain/notification"
)

type SMTPConfig struct {
	Addr     string
	User     string
	Password string
	UseTLS   bool
	Timeout  time.Duration
}

// Mailer delivers plain-text mail over SMTP. The sender identity comes
// from each job's config, not from the mailer: the record created at
// intake and the delivery attempt always agree on it.
type Mailer struct {
	addr    string
	auth    smtp.Auth
	useTLS  bool
	timeout time.Duration

	log *zap.Logger
}

func NewMailer(cfg SMTPConfig) *Mailer {
	var auth smtp.Auth
	if cfg.User != "" || cfg.Password != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, host(cfg.Addr))
	}
	return &Mailer{
		addr:    cfg.Addr,
		auth:    auth,
		useTLS:  cfg.UseTLS,
		timeout: cfg.Timeout,
		log:     zap.L().With(zap.String("component", "delivery.mailer")),
	}
}

func (m *Mailer) WithLogger(l *zap.Logger) *Mailer {
	if l == nil {
		return m
	}
	cp := *m
	cp.log = l.With(zap.String("component", "delivery.mailer"))
	return &cp
}

var _ notification.EmailSender = (*Mailer)(nil)

func (m *Mailer) Send(ctx context.Context, cfg notification.EmailConfig) (notification.Receipt, error) {
	messageID := uuid.NewString() + "@" + host(m.addr)

	var b strings.Builder
	b.WriteString("From: " + cfg.Sender + "\r\n")
	b.WriteString("To: " + cfg.Email + "\r\n")
	if cfg.Subject != "" {
		b.WriteString("Subject: " + cfg.Subject + "\r\n")
	}
	b.WriteString("Message-ID: <" + messageID + ">\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n" + cfg.Content + "\r\n")
	msg := []byte(b.String())

	start := time.Now()
	log := m.log.With(
		zap.String("smtp_addr", m.addr),
		zap.Bool("tls", m.useTLS),
		zap.String("from", cfg.Sender),
		zap.String("to", cfg.Email),
	)

	if m.useTLS {
		if err := m.sendTLS(cfg, msg, log); err != nil {
			return notification.Receipt{}, err
		}
		log.Info("email sent (TLS)", zap.Duration("elapsed", time.Since(start)))
		return notification.Receipt{MessageID: messageID}, nil
	}

	log.Debug("sending email (PLAIN)...")
	if err := smtp.SendMail(m.addr, m.auth, cfg.Sender, []string{cfg.Email}, msg); err != nil {
		log.Error("sendmail failed", zap.Error(err))
		return notification.Receipt{}, err
	}
	log.Info("email sent (PLAIN)", zap.Duration("elapsed", time.Since(start)))
	return notification.Receipt{MessageID: messageID}, nil
}

func (m *Mailer) sendTLS(cfg notification.EmailConfig, msg []byte, log *zap.Logger) error {
	log.Debug("sending email (TLS)...")
	dialer := net.Dialer{Timeout: m.timeout}
	conn, err := tls.DialWithDialer(&dialer, "tcp", m.addr, &tls.Config{InsecureSkipVerify: true})
	if err != nil {
		log.Error("tls dial failed", zap.Error(err))
		return err
	}
	c, err := smtp.NewClient(conn, host(m.addr))
	if err != nil {
		log.Error("smtp client failed", zap.Error(err))
		return err
	}
	defer func() { _ = c.Close() }()

	if m.auth != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(m.auth); err != nil {
				log.Error("smtp auth failed", zap.Error(err))
				return err
			}
		}
	}
	if err := c.Mail(cfg.Sender); err != nil {
		log.Error("smtp MAIL FROM failed", zap.Error(err))
		return err
	}
	if err := c.Rcpt(cfg.Email); err != nil {
		log.Error("smtp RCPT TO failed", zap.Error(err))
		return err
	}
	w, err := c.Data()
	if err != nil {
		log.Error("smtp DATA failed", zap.Error(err))
		return err
	}
	if _, err = w.Write(msg); err != nil {
		log.Error("smtp write failed", zap.Error(err))
		return err
	}
	if err := w.Close(); err != nil {
		log.Error("smtp close failed", zap.Error(err))
		return err
	}
	return nil
}

func host(addr string) string {
	if i := strings.Index(addr, ":"); i >= 0 {
		return addr[:i]
	}
	return addr
}
