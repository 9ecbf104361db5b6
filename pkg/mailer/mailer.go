package mailer

import (
	"crypto/tls"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/littlefish-solutions/mailalert/pkg/metrics"
)

// Mailer sends email through a single SMTP server. The zero value is not
// usable; construct with New or configure the package-wide instance via
// Init.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
	log    *zap.SugaredLogger
}

// New creates a Mailer for the given configuration. A nil logger is
// replaced with a no-op logger.
func New(cfg Config, logger *zap.SugaredLogger) *Mailer {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	log := logger.Named("mailer")

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	// Port 465 is implicit TLS; any other port negotiates STARTTLS when the
	// server offers it.
	d.SSL = cfg.UseTLS && cfg.Port == 465
	if cfg.InsecureSkipVerify {
		log.Warn("InsecureSkipVerify is enabled for mail TLS connection")
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	log.Infow("Mailer configured",
		"host", cfg.Host,
		"port", cfg.Port,
		"user", cfg.Username,
		"tls", cfg.UseTLS)

	return &Mailer{cfg: cfg, dialer: d, log: log}
}

// Send delivers one email synchronously. An empty from falls back to the
// configured default From address. When a recipient override is configured,
// the mail goes to the override address instead and the original recipient
// list is prepended to the subject.
func (m *Mailer) Send(recipients []string, subject, body string, html bool, from string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("mailer: no recipients")
	}
	if from == "" {
		from = m.cfg.DefaultFrom
	}

	contentType := "text/plain"
	if html {
		contentType = "text/html"
	}

	m.log.Debugw("Sending mail",
		"type", contentType,
		"recipients", strings.Join(recipients, ", "),
		"subject", subject)
	if m.cfg.DumpBody {
		m.log.Info(body)
	}

	recipients, subject = m.applyOverride(recipients, subject)

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", subject)
	msg.SetBody(contentType, body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		metrics.MailSendFailure.WithLabelValues(m.cfg.Host).Inc()
		return fmt.Errorf("sending mail to %s: %w", strings.Join(recipients, ", "), err)
	}
	metrics.MailSendSuccess.WithLabelValues(m.cfg.Host).Inc()
	return nil
}

// applyOverride redirects the mail to the configured override address, if
// any, prepending the original recipients to the subject so the mail stays
// traceable.
func (m *Mailer) applyOverride(recipients []string, subject string) ([]string, string) {
	if m.cfg.ToOverride == "" {
		return recipients, subject
	}
	subject = fmt.Sprintf("[to %s] %s", strings.Join(recipients, ", "), subject)
	m.log.Infow("Using recipient override", "to", m.cfg.ToOverride)
	return []string{m.cfg.ToOverride}, subject
}

// SendText sends a plain-text email to a list of recipients.
func (m *Mailer) SendText(recipients []string, subject, body, from string) error {
	return m.Send(recipients, subject, body, false, from)
}

// SendHTML sends an HTML email to a list of recipients.
func (m *Mailer) SendHTML(recipients []string, subject, body, from string) error {
	return m.Send(recipients, subject, body, true, from)
}

// SendTextTo sends a plain-text email to a single recipient with an
// optional display name.
func (m *Mailer) SendTextTo(address, name, subject, body, from string) error {
	return m.SendText([]string{FormatAddress(address, name)}, subject, body, from)
}

// SendHTMLTo sends an HTML email to a single recipient with an optional
// display name.
func (m *Mailer) SendHTMLTo(address, name, subject, body, from string) error {
	return m.SendHTML([]string{FormatAddress(address, name)}, subject, body, from)
}

// Config returns a copy of the mailer's configuration.
func (m *Mailer) Config() Config {
	return m.cfg
}

// Send delivers one email through the process-wide mailer.
func Send(recipients []string, subject, body string, html bool, from string) error {
	m, err := Default()
	if err != nil {
		return err
	}
	return m.Send(recipients, subject, body, html, from)
}

// SendText sends a plain-text email through the process-wide mailer.
func SendText(recipients []string, subject, body, from string) error {
	return Send(recipients, subject, body, false, from)
}

// SendHTML sends an HTML email through the process-wide mailer.
func SendHTML(recipients []string, subject, body, from string) error {
	return Send(recipients, subject, body, true, from)
}

// SendTextTo sends a plain-text email to a single recipient through the
// process-wide mailer.
func SendTextTo(address, name, subject, body, from string) error {
	return SendText([]string{FormatAddress(address, name)}, subject, body, from)
}

// SendHTMLTo sends an HTML email to a single recipient through the
// process-wide mailer.
func SendHTMLTo(address, name, subject, body, from string) error {
	return SendHTML([]string{FormatAddress(address, name)}, subject, body, from)
}
