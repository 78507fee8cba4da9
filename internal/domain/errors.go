package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// maxSnippet is how much of a response body ends up in user-facing messages.
const maxSnippet = 300

// ConfigurationError reports missing or invalid credentials, URLs or flags.
// It is fatal: no request is sent.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// InputParseError reports a JUnit XML or bundle file that cannot be read or parsed.
// It aborts the run before any upload.
type InputParseError struct {
	Path string
	Err  error
}

func (e *InputParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %v", e.Path, e.Err)
}

func (e *InputParseError) Unwrap() error { return e.Err }

// ValidationError reports a record value rejected locally, before any request.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// APIError reports a non-2xx response or a transport failure.
// StatusCode is 0 when no response was received.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Operation, e.StatusCode, e.Summary())
}

func (e *APIError) Unwrap() error { return e.Err }

// Summary returns a short human-readable message from the response body.
// Zephyr Scale Cloud answers with {"errorCode":..,"message":".."}, Server with
// {"errorMessages":[..]} or {"errors":{field:msg}}; anything else is truncated raw.
func (e *APIError) Summary() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return "(empty response body)"
	}

	if gjson.Valid(body) {
		if msg := gjson.Get(body, "message"); msg.Exists() && msg.String() != "" {
			return snippet(msg.String())
		}

		var parts []string
		gjson.Get(body, "errorMessages").ForEach(func(_, value gjson.Result) bool {
			parts = append(parts, value.String())
			return true
		})
		gjson.Get(body, "errors").ForEach(func(key, value gjson.Result) bool {
			parts = append(parts, key.String()+": "+value.String())
			return true
		})
		if len(parts) > 0 {
			return snippet(strings.Join(parts, "; "))
		}
	}

	return snippet(body)
}

func snippet(s string) string {
	if len(s) <= maxSnippet {
		return s
	}
	cut := maxSnippet
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
