package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/littlefish-solutions/mailalert/pkg/metrics"
)

// Sender delivers one alert email synchronously. pkg/mailer's SendText
// satisfies it via SenderFunc.
type Sender interface {
	Send(recipients []string, subject, body, from string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(recipients []string, subject, body, from string) error

func (f SenderFunc) Send(recipients []string, subject, body, from string) error {
	return f(recipients, subject, body, from)
}

// HandlerConfig configures a Handler. It is set at construction and never
// mutated.
type HandlerConfig struct {
	// From is the sender address of every alert email.
	From string
	// To lists the alert recipients. At least one is required.
	To []string
	// Subject is the subject prefix; an extracted message tag is appended
	// as " (tag)".
	Subject string
	// MaxPerMinute bounds alert emails per trailing 60s window (default 15).
	MaxPerMinute int
	// MinLevel is the minimum record severity that triggers an alert.
	MinLevel zapcore.Level

	// Sender dispatches the email. Required.
	Sender Sender
	// Request and Session optionally supply contextual enrichment; either
	// may be nil.
	Request RequestProvider
	Session SessionProvider
	// Obscured masks form field values in request enrichment. Nil means
	// the default set ({"password"}).
	Obscured ObscuredFields

	// Logger receives suppression warnings and internal errors. Nil means
	// a no-op logger.
	Logger *zap.SugaredLogger
}

// Handler is a zapcore.Core that emails log records. Errors during
// formatting, enrichment or delivery never propagate to the logging caller;
// they are routed to the handler's own logger. The sole exception is
// context cancellation from the sender, which is returned to zap unchanged.
type Handler struct {
	zapcore.LevelEnabler
	cfg     HandlerConfig
	limiter *Limiter
	log     *zap.SugaredLogger
	fields  []zapcore.Field
}

// NewHandler creates a Handler for the given configuration.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("alerts: at least one recipient is required")
	}
	if cfg.Sender == nil {
		return nil, fmt.Errorf("alerts: a sender is required")
	}
	if cfg.Obscured == nil {
		cfg.Obscured = DefaultObscuredFields()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Handler{
		LevelEnabler: cfg.MinLevel,
		cfg:          cfg,
		limiter:      NewLimiter(cfg.MaxPerMinute),
		log:          logger.Named("alerts"),
	}, nil
}

// With implements zapcore.Core. Accumulated fields are rendered into the
// body of every subsequent alert.
func (h *Handler) With(fields []zapcore.Field) zapcore.Core {
	clone := *h
	clone.fields = append(clone.fields[:len(clone.fields):len(clone.fields)], fields...)
	return &clone
}

// Check implements zapcore.Core.
func (h *Handler) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(ent.Level) {
		return ce.AddCore(ent, h)
	}
	return ce
}

// Write implements zapcore.Core. It evaluates the rate limit, builds the
// alert body and subject, and either dispatches the email or records the
// suppression locally.
func (h *Handler) Write(ent zapcore.Entry, fields []zapcore.Field) (err error) {
	defer func() {
		if r := recover(); r != nil {
			metrics.AlertErrors.WithLabelValues(h.cfg.Subject).Inc()
			h.log.Errorw("Recovered from panic while emailing alert",
				"panic", r,
				"message", ent.Message)
			err = nil
		}
	}()

	allowed := h.limiter.Allow(time.Now())

	all := make([]zapcore.Field, 0, len(h.fields)+len(fields))
	all = append(all, h.fields...)
	all = append(all, fields...)
	body := h.buildBody(ent, all)

	subject := h.cfg.Subject
	if tag, ok := ExtractTag(ent.Message); ok {
		subject = fmt.Sprintf("%s (%s)", subject, tag)
	}

	if !allowed {
		metrics.AlertsSuppressed.WithLabelValues(h.cfg.Subject).Inc()
		h.log.Warn("Not sending alert email: too many alerts sent in the past minute")
		h.log.Info(body)
		return nil
	}

	if sendErr := h.cfg.Sender.Send(h.cfg.To, subject, body, h.cfg.From); sendErr != nil {
		if errors.Is(sendErr, context.Canceled) || errors.Is(sendErr, context.DeadlineExceeded) {
			return sendErr
		}
		metrics.AlertErrors.WithLabelValues(h.cfg.Subject).Inc()
		h.log.Errorw("Failed to send alert email",
			"subject", subject,
			"recipients", strings.Join(h.cfg.To, ", "),
			"error", sendErr)
		return nil
	}

	metrics.AlertsSent.WithLabelValues(h.cfg.Subject).Inc()
	return nil
}

// Sync implements zapcore.Core. Dispatch is synchronous, so there is
// nothing to flush.
func (h *Handler) Sync() error { return nil }

// buildBody formats the record and appends whichever enrichment sections
// the providers can supply. Each provider is independently best-effort: a
// failure in one is logged locally and does not block the other or the
// send.
func (h *Handler) buildBody(ent zapcore.Entry, fields []zapcore.Field) string {
	var b strings.Builder
	b.WriteString(formatEntry(ent, fields))

	if h.cfg.Request != nil {
		h.appendEnrichment(&b, "request", func() (string, error) {
			info, ok := h.cfg.Request.TryGet()
			if !ok || info == nil {
				return "", nil
			}
			return requestSection(info, h.cfg.Obscured), nil
		})
	}
	if h.cfg.Session != nil {
		h.appendEnrichment(&b, "session", func() (string, error) {
			data, ok := h.cfg.Session.TryGet()
			if !ok {
				return "", nil
			}
			return sessionSection(data)
		})
	}
	return b.String()
}

func (h *Handler) appendEnrichment(b *strings.Builder, name string, build func() (string, error)) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Errorw("Alert enrichment panicked", "provider", name, "panic", r)
		}
	}()

	section, err := build()
	if err != nil {
		h.log.Errorw("Alert enrichment failed", "provider", name, "error", err)
		return
	}
	b.WriteString(section)
}
