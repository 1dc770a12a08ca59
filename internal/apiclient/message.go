package apiclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/sony/gobreaker/v2"
)

const DefaultMessage = "An error occurred while processing your order. Please try again."

// UserMessage turns an error of the upstream API into one sentence for the
// user: server message, then field errors, then network hints, then the
// HTTP status, then fallback (DefaultMessage when empty).
func UserMessage(err error, fallback string) string {
	if fallback == "" {
		fallback = DefaultMessage
	}
	if err == nil {
		return fallback
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := strings.TrimSpace(httpErr.Message); msg != "" && !looksLikeJSON(msg) {
			return msg
		}
		if fieldMsgs := httpErr.FieldMessages(); len(fieldMsgs) > 0 {
			return sentence(fieldMsgs)
		}
		if msg := statusMessage(httpErr.StatusCode); msg != "" {
			return msg
		}
		return fallback
	}

	if msg := networkMessage(err); msg != "" {
		return msg
	}

	return fallback
}

func networkMessage(err error) string {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "The payment service is temporarily unavailable. Please try again in a moment."
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "The request timed out. Please try again."
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timeout"):
		return "The request timed out. Please try again."
	case strings.Contains(lower, "connection"):
		return "Connection error. Check your internet connection and try again."
	}

	return ""
}

func statusMessage(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return "The request was invalid. Please review your details and try again."
	case status == http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case status == http.StatusForbidden:
		return "You are not allowed to perform this action."
	case status == http.StatusNotFound:
		return "The requested resource was not found."
	case status == http.StatusConflict:
		return "This order was already processed."
	case status == http.StatusUnprocessableEntity:
		return "Some of the submitted data is invalid."
	case status == http.StatusTooManyRequests:
		return "Too many attempts. Please wait a moment and try again."
	case status >= http.StatusInternalServerError:
		return "The server had a problem processing your order. Please try again later."
	}
	return ""
}

func sentence(parts []string) string {
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(p), "."))
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return ""
	}
	return strings.Join(cleaned, ". ") + "."
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}
