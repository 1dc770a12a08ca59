package apiclient_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{
			name: "nil error uses default",
			want: apiclient.DefaultMessage,
		},
		{
			name: "server message",
			err:  &apiclient.HTTPError{StatusCode: http.StatusBadRequest, Message: "Seller is not active"},
			want: "Seller is not active",
		},
		{
			name: "json message is not shown",
			err:  &apiclient.HTTPError{StatusCode: http.StatusConflict, Message: `{"raw": true}`},
			want: "This order was already processed.",
		},
		{
			name: "field errors",
			err: &apiclient.HTTPError{
				StatusCode: http.StatusUnprocessableEntity,
				Errors:     map[string][]string{"zip": {"Zip is invalid."}, "city": {"City is required"}},
			},
			want: "City is required. Zip is invalid.",
		},
		{
			name: "status",
			err:  fmt.Errorf("c.get: %w", &apiclient.HTTPError{StatusCode: http.StatusBadGateway}),
			want: "The server had a problem processing your order. Please try again later.",
		},
		{
			name: "unauthorized",
			err:  &apiclient.HTTPError{StatusCode: http.StatusUnauthorized},
			want: "Your session has expired. Please sign in again.",
		},
		{
			name: "deadline",
			err:  context.DeadlineExceeded,
			want: "The request timed out. Please try again.",
		},
		{
			name: "connection",
			err:  errors.New("dial tcp 10.0.0.1:443: connection refused"),
			want: "Connection error. Check your internet connection and try again.",
		},
		{
			name:     "unknown with fallback",
			err:      errors.New("boom"),
			fallback: "Payment failed.",
			want:     "Payment failed.",
		},
		{
			name:     "unmapped status with fallback",
			err:      &apiclient.HTTPError{StatusCode: http.StatusTeapot},
			fallback: "Payment failed.",
			want:     "Payment failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apiclient.UserMessage(tt.err, tt.fallback))
		})
	}
}
