package alerts

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// obscuredMask replaces the value of any obscured form field in alert
// bodies.
const obscuredMask = "******"

// ObscuredFields is a set of case-insensitive form field names whose values
// are masked before inclusion in an alert body. Built once at setup and not
// mutated afterwards.
type ObscuredFields map[string]struct{}

// NewObscuredFields builds an ObscuredFields set from the given names.
func NewObscuredFields(names ...string) ObscuredFields {
	o := make(ObscuredFields, len(names))
	for _, n := range names {
		o[strings.ToLower(n)] = struct{}{}
	}
	return o
}

// DefaultObscuredFields returns the default set, containing "password".
func DefaultObscuredFields() ObscuredFields {
	return NewObscuredFields("password")
}

// Contains reports whether the given field name is obscured, ignoring case.
func (o ObscuredFields) Contains(name string) bool {
	_, ok := o[strings.ToLower(name)]
	return ok
}

// RequestInfo describes the web request in flight when a log record was
// emitted.
type RequestInfo struct {
	URL      string
	Method   string
	Endpoint string
	Form     url.Values
}

// RequestProvider supplies the active web request, if any. Absence of a
// request is an expected outcome, not an error.
type RequestProvider interface {
	TryGet() (*RequestInfo, bool)
}

// RequestProviderFunc adapts a function to the RequestProvider interface.
type RequestProviderFunc func() (*RequestInfo, bool)

func (f RequestProviderFunc) TryGet() (*RequestInfo, bool) { return f() }

// SessionProvider supplies the active session contents, if any.
type SessionProvider interface {
	TryGet() (map[string]any, bool)
}

// SessionProviderFunc adapts a function to the SessionProvider interface.
type SessionProviderFunc func() (map[string]any, bool)

func (f SessionProviderFunc) TryGet() (map[string]any, bool) { return f() }

// requestSection renders a labelled request block for an alert body.
// Obscured form fields are masked and single-valued fields flatten to a
// scalar for readability.
func requestSection(info *RequestInfo, obscured ObscuredFields) string {
	return fmt.Sprintf("\nRequest:\n\nurl:      %s\nmethod:   %s\nendpoint: %s\nform:     %s\n",
		info.URL, info.Method, info.Endpoint, renderForm(info.Form, obscured))
}

// renderForm pretty-prints submitted form fields, one per line, with
// continuation lines indented to align under the "form:" label.
func renderForm(form url.Values, obscured ObscuredFields) string {
	if len(form) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		vals := form[k]
		var rendered string
		switch {
		case obscured.Contains(k):
			rendered = obscuredMask
		case len(vals) == 1:
			rendered = vals[0]
		default:
			rendered = fmt.Sprintf("%v", vals)
		}
		lines = append(lines, fmt.Sprintf("%s: %s", k, rendered))
	}
	return strings.Join(lines, "\n          ")
}

// sessionSection renders a labelled session block for an alert body as
// indented JSON.
func sessionSection(data map[string]any) (string, error) {
	encoded, err := json.MarshalIndent(normalizeSessionValue(data), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding session data: %w", err)
	}
	return fmt.Sprintf("\nSession:\n\n%s\n", encoded), nil
}

// normalizeSessionValue converts session values into JSON-friendly forms:
// times render as ISO-8601 strings and UUIDs as their canonical string
// form. Maps and slices are normalized recursively.
func normalizeSessionValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)
	case uuid.UUID:
		return val.String()
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = normalizeSessionValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = normalizeSessionValue(inner)
		}
		return out
	default:
		return v
	}
}
