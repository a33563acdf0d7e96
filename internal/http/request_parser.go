// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request bodies and query
// strings into the optional fields the activity service expects.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"petcare/internal/core"
)

// maxBodyBytes bounds request bodies; activity payloads are a few hundred bytes.
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned when a body is neither a JSON object nor a form.
var ErrInvalidBody = errors.New("request body must be a JSON object or form data")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	body := bytes.TrimSpace(p.body)
	if len(body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.looksLikeJSON(body) {
		var data map[string]any
		if err := json.Unmarshal(body, &data); err != nil || data == nil {
			p.err = ErrInvalidBody
			return p.err
		}
		p.jsonData = data
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(body))
	if p.err != nil {
		p.err = ErrInvalidBody
	}
	return p.err
}

func (p *RequestBodyParser) looksLikeJSON(body []byte) bool {
	if mt, _, err := mime.ParseMediaType(p.contentType); err == nil && mt == "application/json" {
		return true
	}
	return body[0] == '{' || body[0] == '['
}

// Lookup returns the value for key, or nil when the caller did not send it.
// A JSON null counts as absent. Numbers and booleans are rendered as text.
func (p *RequestBodyParser) Lookup(key string) *string {
	if p.jsonData != nil {
		val, ok := p.jsonData[key]
		if !ok || val == nil {
			return nil
		}
		s := sanitizeInput(stringValue(val))
		return &s
	}
	if p.formData != nil {
		if _, ok := p.formData[key]; !ok {
			return nil
		}
		s := sanitizeInput(p.formData.Get(key))
		return &s
	}
	return nil
}

// Get returns the value for key, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if v := p.Lookup(key); v != nil {
		return *v
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// ActivityRequest maps the parsed body onto a creation request.
func (p *RequestBodyParser) ActivityRequest() core.ActivityRequest {
	return core.ActivityRequest{
		PetName:  p.Lookup("petName"),
		Type:     p.Lookup("type"),
		Amount:   p.Lookup("amount"),
		DateTime: p.Lookup("dateTime"),
	}
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// queryString returns the query parameter key, or nil when it is absent.
func queryString(q url.Values, key string) *string {
	if !q.Has(key) {
		return nil
	}
	v := sanitizeInput(q.Get(key))
	return &v
}

// queryBool parses an optional boolean query parameter. Absent or blank
// means false.
func queryBool(q url.Values, key string) (bool, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &core.ValidationError{Field: key, Reason: "must be true or false"}
	}
	return b, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(q url.Values, key string) (*int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, &core.ValidationError{Field: key, Reason: "must be an integer"}
	}
	return &n, nil
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *JSONResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequireGET is a convenience function for read-only handlers.
func RequireGET(r *http.Request) *JSONResponseBuilder {
	return RequireMethod(r, http.MethodGet, http.MethodHead)
}
