package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAttachErrorEmails(t *testing.T) {
	t.Run("no flags leaves logger unchanged", func(t *testing.T) {
		base := zap.NewNop()

		logger, err := AttachErrorEmails(base, Setup{
			To:      []string{"ops@example.com"},
			Subject: "App Errors",
			Sender:  &fakeSender{},
		})
		require.NoError(t, err)
		assert.Same(t, base, logger)
	})

	t.Run("errors only", func(t *testing.T) {
		sender := &fakeSender{}
		core, _ := observer.New(zapcore.DebugLevel)

		logger, err := AttachErrorEmails(zap.New(core), Setup{
			SendErrors: true,
			From:       "errors@example.com",
			To:         []string{"ops@example.com"},
			Subject:    "App Errors",
			Sender:     sender,
		})
		require.NoError(t, err)

		logger.Warn("only a warning")
		assert.Empty(t, sender.sent())

		logger.Error("a real error")
		require.Len(t, sender.sent(), 1)
		assert.Equal(t, "App Errors", sender.sent()[0].subject)
	})

	t.Run("warnings lower the threshold", func(t *testing.T) {
		sender := &fakeSender{}

		logger, err := AttachErrorEmails(zap.NewNop(), Setup{
			SendWarnings: true,
			To:           []string{"ops@example.com"},
			Subject:      "App Errors",
			Sender:       sender,
		})
		require.NoError(t, err)

		logger.Warn("a warning worth emailing")
		require.Len(t, sender.sent(), 1)
	})

	t.Run("host logger still receives the record", func(t *testing.T) {
		sender := &fakeSender{}
		core, logs := observer.New(zapcore.DebugLevel)

		logger, err := AttachErrorEmails(zap.New(core), Setup{
			SendErrors: true,
			To:         []string{"ops@example.com"},
			Subject:    "App Errors",
			Sender:     sender,
		})
		require.NoError(t, err)

		logger.Error("shared with both cores")
		assert.Equal(t, 1, logs.FilterMessage("shared with both cores").Len())
		assert.Len(t, sender.sent(), 1)
	})

	t.Run("custom obscured fields reach enrichment", func(t *testing.T) {
		sender := &fakeSender{}

		logger, err := AttachErrorEmails(zap.NewNop(), Setup{
			SendErrors: true,
			To:         []string{"ops@example.com"},
			Subject:    "App Errors",
			Obscured:   []string{"credit_card"},
			Sender:     sender,
			Request: RequestProviderFunc(func() (*RequestInfo, bool) {
				return &RequestInfo{
					URL:    "https://example.com/pay",
					Method: "POST",
					Form:   map[string][]string{"credit_card": {"4111111111111111"}},
				}, true
			}),
		})
		require.NoError(t, err)

		logger.Error("payment failed")
		require.Len(t, sender.sent(), 1)
		assert.Contains(t, sender.sent()[0].body, "credit_card: ******")
		assert.NotContains(t, sender.sent()[0].body, "4111111111111111")
	})

	t.Run("missing recipients fail setup", func(t *testing.T) {
		_, err := AttachErrorEmails(zap.NewNop(), Setup{
			SendErrors: true,
			Subject:    "App Errors",
			Sender:     &fakeSender{},
		})
		require.Error(t, err)
	})
}
