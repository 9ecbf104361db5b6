// Package session provides versioned session data over a pluggable store,
// with a Redis-backed implementation. Session contents can feed the alert
// enrichment in pkg/alerts.
package session
