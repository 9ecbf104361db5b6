package alerts

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/littlefish-solutions/mailalert/pkg/mailer"
)

// Setup configures AttachErrorEmails.
type Setup struct {
	// SendErrors attaches the handler with an ERROR threshold.
	// SendWarnings lowers the threshold to WARNING. If neither is set, no
	// handler is attached.
	SendErrors   bool
	SendWarnings bool

	From    string
	To      []string
	Subject string

	// MaxPerMinute bounds alert emails per trailing 60s window (default 15).
	MaxPerMinute int

	// Obscured lists form field names to mask in request enrichment
	// (default: "password").
	Obscured []string

	Request RequestProvider
	Session SessionProvider

	// Sender dispatches alert emails. Nil means the process-wide mailer's
	// plain-text send.
	Sender Sender

	// Logger receives setup messages, suppression warnings and internal
	// errors. Nil means a no-op logger.
	Logger *zap.SugaredLogger
}

// AttachErrorEmails tees an email alert Handler onto the given logger when
// either Setup flag is set, and returns the resulting logger. With both
// flags unset the logger is returned unchanged.
func AttachErrorEmails(base *zap.Logger, cfg Setup) (*zap.Logger, error) {
	if !cfg.SendErrors && !cfg.SendWarnings {
		return base, nil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Info("Setting up error / warning emails")

	minLevel := zapcore.ErrorLevel
	if cfg.SendWarnings {
		logger.Info("Sending WARNING emails as well as ERRORs")
		minLevel = zapcore.WarnLevel
	} else {
		logger.Info("Only sending ERROR emails")
	}

	obscured := DefaultObscuredFields()
	if len(cfg.Obscured) > 0 {
		obscured = NewObscuredFields(cfg.Obscured...)
	}

	sender := cfg.Sender
	if sender == nil {
		sender = SenderFunc(mailer.SendText)
	}

	handler, err := NewHandler(HandlerConfig{
		From:         cfg.From,
		To:           cfg.To,
		Subject:      cfg.Subject,
		MaxPerMinute: cfg.MaxPerMinute,
		MinLevel:     minLevel,
		Sender:       sender,
		Request:      cfg.Request,
		Session:      cfg.Session,
		Obscured:     obscured,
		Logger:       cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, handler)
	})), nil
}
