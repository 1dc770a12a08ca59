package apiclient

import (
	"encoding/json"
	"fmt"
	"sort"
)

// HTTPError is a non-2xx answer of the upstream API.
type HTTPError struct {
	StatusCode int
	Message    string
	// Errors holds field-level validation messages keyed by field name.
	Errors map[string][]string
	Body   []byte
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// FieldMessages returns validation messages ordered by field name.
func (e *HTTPError) FieldMessages() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		msgs = append(msgs, e.Errors[field]...)
	}
	return msgs
}

func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: status, Body: body}

	var payload struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		httpErr.Message = payload.Message
		if httpErr.Message == "" {
			httpErr.Message = payload.Error
		}
		httpErr.Errors = payload.Errors
	}

	return httpErr
}
