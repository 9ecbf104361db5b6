package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/littlefish-solutions/mailalert/pkg/alerts"
)

// versionKey is the reserved session key holding the schema version.
const versionKey = "_v"

// Store persists session contents by session id.
type Store interface {
	// Get returns the stored contents for id, or an empty map when the
	// session does not exist.
	Get(ctx context.Context, id string) (map[string]any, error)
	Put(ctx context.Context, id string, data map[string]any) error
	Delete(ctx context.Context, id string) error
}

// Data is a versioned view over raw session contents. When the stored
// schema version is older than the expected one, the contents are cleared
// and restamped, so stale session layouts never leak into application code.
type Data struct {
	version int
	raw     map[string]any
	log     *zap.SugaredLogger
}

// NewData wraps raw session contents, clearing them if their stored version
// is older than version. A nil map is treated as a fresh session.
func NewData(raw map[string]any, version int, logger *zap.SugaredLogger) *Data {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if raw == nil {
		raw = make(map[string]any)
	}

	d := &Data{version: version, raw: raw, log: logger.Named("session")}

	stored := storedVersion(raw)
	if stored < version {
		if stored > -1 {
			d.log.Infow("Clearing old session",
				"storedVersion", stored,
				"latestVersion", version)
		}
		d.Clear()
	}
	return d
}

// storedVersion reads the version stamp, tolerating the numeric types JSON
// decoding produces. Returns -1 when absent.
func storedVersion(raw map[string]any) int {
	switch v := raw[versionKey].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return -1
	}
}

// Clear empties the session and stamps the current version.
func (d *Data) Clear() {
	for k := range d.raw {
		delete(d.raw, k)
	}
	d.raw[versionKey] = d.version
}

// Get returns the value stored under key.
func (d *Data) Get(key string) (any, bool) {
	v, ok := d.raw[key]
	return v, ok
}

// Set stores a value under key. Values must be JSON-compatible for the
// Redis store; time and UUID values are accepted and rendered canonically
// by the alert enrichment.
func (d *Data) Set(key string, value any) {
	d.raw[key] = value
}

// Delete removes a key from the session.
func (d *Data) Delete(key string) {
	delete(d.raw, key)
}

// Raw returns the underlying map, e.g. for persisting via a Store.
func (d *Data) Raw() map[string]any {
	return d.raw
}

// Provider adapts the session to the alert enrichment interface.
func (d *Data) Provider() alerts.SessionProvider {
	return alerts.SessionProviderFunc(func() (map[string]any, bool) {
		return d.raw, true
	})
}
