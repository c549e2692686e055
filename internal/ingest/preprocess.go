// Package ingest normalizes raw log lines before they reach the
// matcher: unwrapping JSON-formatted container logs and trimming
// surrounding whitespace so semantically identical lines compare equal
// regardless of logging agent formatting. Case is preserved throughout.
package ingest

import (
	"encoding/json"
	"strings"
)

// messageFields are checked in priority order when unwrapping a
// JSON-formatted log line.
var messageFields = []string{
	"message", // standard field name
	"msg",     // common shorthand
	"log",     // kubernetes container logs
	"text",    // alternative name
	"_raw",    // fluentd convention
	"event",   // event-based logging
}

// ExtractMessage pulls the semantic message out of a JSON-formatted log
// line. Non-JSON lines, or JSON objects without any recognised message
// field, are returned unchanged.
func ExtractMessage(rawLine string) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(rawLine), &parsed); err != nil {
		return rawLine
	}

	for _, field := range messageFields {
		value, ok := parsed[field]
		if !ok {
			continue
		}
		if msg, ok := value.(string); ok && msg != "" {
			return msg
		}
	}

	return rawLine
}

// Normalize extracts the semantic message and trims surrounding
// whitespace. Case is preserved: fragment matching (§4.1) is a literal
// substring match, so folding case here would silently break any
// template whose fragments were derived from mixed-case log lines.
func Normalize(rawLine string) string {
	return strings.TrimSpace(ExtractMessage(rawLine))
}
