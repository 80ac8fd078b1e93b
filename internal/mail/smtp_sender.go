package mail

import (
	"context"
	"fmt"
	"time"

	"notification-dispatch/internal/models"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	SSL      bool // implicit TLS (465); otherwise STARTTLS is required
	Timeout  time.Duration
}

// deliverFunc is swapped in tests so no connection is made.
type deliverFunc func(ctx context.Context, client *gomail.Client, msg *gomail.Msg) error

func dialAndSend(ctx context.Context, client *gomail.Client, msg *gomail.Msg) error {
	return client.DialAndSendWithContext(ctx, msg)
}

// SMTPSender sends through an SMTP relay. A client is built per Send, so concurrent
// requests share no connection state.
type SMTPSender struct {
	cfg     SMTPConfig
	logger  *zap.Logger
	deliver deliverFunc
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if cfg.Host == "" || cfg.Port <= 0 {
		return nil, &models.ConfigurationError{Key: "SMTP_HOST", Reason: "host and port are required"}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	s := &SMTPSender{
		cfg:     cfg,
		logger:  logger.Named("smtp_sender"),
		deliver: dialAndSend,
	}
	// Build a client once so bad options surface at startup.
	if _, err := s.newClient(); err != nil {
		return nil, &models.ConfigurationError{Key: "SMTP_HOST", Reason: err.Error()}
	}
	s.logger.Info("SMTP sender initialised", zap.String("host", cfg.Host), zap.Int("port", cfg.Port), zap.Bool("ssl", cfg.SSL))
	return s, nil
}

func (s *SMTPSender) newClient() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.cfg.Port),
		gomail.WithTimeout(s.cfg.Timeout),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password),
		)
	}
	if s.cfg.SSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	return gomail.NewClient(s.cfg.Host, opts...)
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m, err := buildMsg(msg)
	if err != nil {
		return err
	}

	client, err := s.newClient()
	if err != nil {
		return models.NewDeliveryError("smtp", fmt.Errorf("creating smtp client: %w", err))
	}

	start := time.Now()
	if err := s.deliver(ctx, client, m); err != nil {
		s.logger.Error("SMTP delivery failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return models.NewDeliveryError("smtp", err)
	}
	s.logger.Info("Email relayed", zap.String("subject", msg.Subject), zap.Duration("duration", time.Since(start)))
	return nil
}

// buildMsg converts Message into a MIME message. Plain text is the primary part when
// present; HTML is attached as the alternative.
func buildMsg(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.From); err != nil {
		return nil, &models.ValidationError{Fields: []string{"from"}, Err: err}
	}
	if err := m.To(msg.To); err != nil {
		return nil, &models.ValidationError{Fields: []string{"to"}, Err: err}
	}
	m.Subject(msg.Subject)

	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	case msg.Text != "":
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	default:
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
