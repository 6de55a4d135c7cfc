package notify

import (
	"context"
	"errors"
	"fmt"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"portfolio-backend/app/server/config"
)

type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// NewMailer 在邮件未配置时返回只记录日志的 NoopMailer
func NewMailer(cfg *config.Mail, l *zap.Logger) (Mailer, error) {
	if !cfg.Enabled() {
		l.Warn("mail credentials not configured, contact notifications will be skipped")
		return &NoopMailer{l: l}, nil
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	client *mail.Client
	from   string
}

func NewSMTPMailer(cfg *config.Mail) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &SMTPMailer{client: client, from: from}, nil
}

func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// ErrSkipped 表示邮件未配置，通知被跳过
var ErrSkipped = errors.New("mail not configured")

type NoopMailer struct {
	l *zap.Logger
}

func (n *NoopMailer) Send(_ context.Context, msg *Message) error {
	n.l.Info("skipping email notification", zap.String("subject", msg.Subject))
	return ErrSkipped
}
