// Package alerts routes log records to email recipients with sliding-window
// rate limiting. The Handler is a zapcore.Core that can be tee'd onto any
// zap logger; each record that clears the severity threshold is formatted,
// enriched with best-effort request/session context, and dispatched through
// a mail sender unless the per-minute send budget is exhausted.
package alerts
