package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedResponse is returned when a 2xx response body cannot be
// decoded. Views treat it as "no data".
var ErrMalformedResponse = errors.New("api: malformed response body")

// HTTPError is a non-2xx response. Callers can use errors.As to extract it:
//
//	var httpErr *api.HTTPError
//	if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound { ... }
type HTTPError struct {
	// Status is the HTTP status code.
	Status int
	// Detail is the server's human-readable message, empty when the body
	// carried none.
	Detail string
	// Body is the raw response body.
	Body []byte
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// NetworkError means no response was received at all.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("api: network error on %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a transport-level failure.
func IsNetwork(err error) bool {
	var networkErr *NetworkError
	return errors.As(err, &networkErr)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status
	}
	return 0
}

// Message turns err into the text shown next to the control that failed.
// Server details are shown verbatim; everything else gets fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.Detail != "" {
		return httpErr.Detail
	}
	if IsNetwork(err) {
		return "Network error: could not reach the server."
	}
	return fallback
}

// extractDetail pulls a message out of an error body. It understands
// {"detail": ...}, {"error": ...}, {"message": ...} and field-error maps
// such as {"username": ["already taken"]}.
func extractDetail(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if raw, ok := fields[key]; ok {
			if text := asText(raw); text != "" {
				return text
			}
		}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var parts []string
	for _, key := range keys {
		if text := asText(fields[key]); text != "" {
			if key == "non_field_errors" {
				parts = append(parts, text)
			} else {
				parts = append(parts, key+": "+text)
			}
		}
	}
	return strings.Join(parts, "; ")
}

func asText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, " "))
	}
	return ""
}
