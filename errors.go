package oasguard

import (
	"fmt"
	"strings"
)

// ConfigError reports a misconfiguration. These are raised once, when a
// Validator is constructed, and are fatal: no validation runs until the
// configuration is corrected.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports a mismatch between a payload and its documented
// schema. Path points at the offending value, e.g.
// "response.data.results[2].owner".
type ValidationError struct {
	Path     string
	Reason   string
	Expected string
	Actual   any
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Reason)
	if e.Expected != "" {
		fmt.Fprintf(&b, " (expected %s", e.Expected)
		if e.Actual != nil {
			fmt.Fprintf(&b, ", got %v", e.Actual)
		}
		b.WriteString(")")
	} else if e.Actual != nil {
		fmt.Fprintf(&b, " (got %v)", e.Actual)
	}
	return b.String()
}

// ResolutionError is returned when a concrete request path cannot be matched
// against any templated path in the schema document. Suggestions holds
// near-miss templates, best match first, and may be empty.
type ResolutionError struct {
	Path        string
	Suggestions []string
}

func (e *ResolutionError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("Could not resolve path `%s`", e.Path)
	}
	return fmt.Sprintf("Could not resolve path `%s`. Did you mean one of these: %s?",
		e.Path, strings.Join(e.Suggestions, ", "))
}
