package alerts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"
)

// tagRegex matches a leading parenthesised tag like "(Health Check)",
// optionally preceded by "Exception caught: ".
var tagRegex = regexp.MustCompile(`^(Exception caught: )?\(([^)]+)\)`)

// ExtractTag returns the bracketed category tag at the start of a raw log
// message, e.g. "DB timeout" from "Exception caught: (DB timeout) details".
// The second return value reports whether a tag was found.
func ExtractTag(message string) (string, bool) {
	match := tagRegex.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	return match[2], true
}

// formatEntry renders a log record into the alert body header: level,
// source location, module, function, time and the message itself, followed
// by any structured fields the record carries.
func formatEntry(ent zapcore.Entry, fields []zapcore.Field) string {
	location := "unknown"
	function := "unknown"
	module := ent.LoggerName
	if ent.Caller.Defined {
		location = fmt.Sprintf("%s:%d", ent.Caller.File, ent.Caller.Line)
		function = ent.Caller.Function
		if module == "" {
			module = callerPackage(ent.Caller.Function)
		}
	}
	if module == "" {
		module = "root"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `
Message type:       %s
Location:           %s
Module:             %s
Function:           %s
Time:               %s

Message:

%s
`,
		ent.Level.CapitalString(),
		location,
		module,
		function,
		ent.Time.Format("2006-01-02 15:04:05"),
		ent.Message)

	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		fmt.Fprintf(&b, "\nFields:\n\n%s\n", renderFields(enc.Fields))
	}
	return b.String()
}

// renderFields prints structured log fields one per line in key order.
func renderFields(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, m[k]))
	}
	return strings.Join(lines, "\n")
}

// callerPackage extracts the package name from a fully qualified function
// name like "github.com/acme/app/pkg/server.(*Server).Start".
func callerPackage(function string) string {
	if i := strings.LastIndex(function, "/"); i >= 0 {
		function = function[i+1:]
	}
	if i := strings.Index(function, "."); i >= 0 {
		return function[:i]
	}
	return function
}
