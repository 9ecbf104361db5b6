package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestExtractTag(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantTag string
		wantOK  bool
	}{
		{
			name:    "leading bracketed tag",
			message: "(Health Check) backend unreachable",
			wantTag: "Health Check",
			wantOK:  true,
		},
		{
			name:    "exception prefix",
			message: "Exception caught: (DB timeout) details",
			wantTag: "DB timeout",
			wantOK:  true,
		},
		{
			name:    "plain message",
			message: "plain message",
		},
		{
			name:    "tag not at start",
			message: "something (not a tag)",
		},
		{
			name:    "empty message",
			message: "",
		},
		{
			name:    "unclosed parenthesis",
			message: "(unclosed tag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, ok := ExtractTag(tt.message)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}

func TestFormatEntry(t *testing.T) {
	ts := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)

	t.Run("renders record header", func(t *testing.T) {
		ent := zapcore.Entry{
			Level:      zapcore.ErrorLevel,
			Time:       ts,
			LoggerName: "payments",
			Message:    "charge failed",
			Caller: zapcore.EntryCaller{
				Defined:  true,
				File:     "/src/app/pkg/payments/charge.go",
				Line:     42,
				Function: "github.com/acme/app/pkg/payments.(*Processor).Charge",
			},
		}

		body := formatEntry(ent, nil)
		assert.Contains(t, body, "Message type:       ERROR")
		assert.Contains(t, body, "Location:           /src/app/pkg/payments/charge.go:42")
		assert.Contains(t, body, "Module:             payments")
		assert.Contains(t, body, "Function:           github.com/acme/app/pkg/payments.(*Processor).Charge")
		assert.Contains(t, body, "Time:               2026-08-29 10:30:00")
		assert.Contains(t, body, "Message:\n\ncharge failed")
		assert.NotContains(t, body, "Fields:")
	})

	t.Run("derives module from caller when logger is unnamed", func(t *testing.T) {
		ent := zapcore.Entry{
			Level:   zapcore.WarnLevel,
			Time:    ts,
			Message: "slow query",
			Caller: zapcore.EntryCaller{
				Defined:  true,
				File:     "/src/app/pkg/db/query.go",
				Line:     7,
				Function: "github.com/acme/app/pkg/db.Run",
			},
		}

		body := formatEntry(ent, nil)
		assert.Contains(t, body, "Module:             db")
	})

	t.Run("missing caller", func(t *testing.T) {
		ent := zapcore.Entry{Level: zapcore.ErrorLevel, Time: ts, Message: "boom"}

		body := formatEntry(ent, nil)
		assert.Contains(t, body, "Location:           unknown")
		assert.Contains(t, body, "Function:           unknown")
		assert.Contains(t, body, "Module:             root")
	})

	t.Run("structured fields render sorted", func(t *testing.T) {
		ent := zapcore.Entry{Level: zapcore.ErrorLevel, Time: ts, Message: "boom"}
		fields := []zapcore.Field{
			zap.String("user", "steve"),
			zap.Int("attempt", 3),
		}

		body := formatEntry(ent, fields)
		require.Contains(t, body, "Fields:")
		assert.Contains(t, body, "attempt: 3\nuser: steve")
	})
}

func TestCallerPackage(t *testing.T) {
	tests := []struct {
		function string
		want     string
	}{
		{"github.com/acme/app/pkg/payments.(*Processor).Charge", "payments"},
		{"github.com/acme/app/pkg/db.Run", "db"},
		{"main.main", "main"},
		{"standalone", "standalone"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, callerPackage(tt.function))
	}
}
