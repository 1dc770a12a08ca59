package verification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	paid := &domain.VerifiedPayment{OrderID: "55", OrderNumber: "ORD-55", PaymentStatus: "completed"}

	tests := []struct {
		name        string
		api         *fakePaymentAPI
		wantClass   verification.Class
		wantOrderID string
		wantMessage string
		wantStatus  int
	}{
		{
			name: "paid: success",
			api: &fakePaymentAPI{
				verifyResp: domain.VerifyResponse{Success: true, Data: paid},
			},
			wantClass:   verification.ClassSuccess,
			wantOrderID: "55",
		},
		{
			name: "success without settled payment: failure",
			api: &fakePaymentAPI{
				verifyResp: domain.VerifyResponse{
					Success: true,
					Data:    &domain.VerifiedPayment{PaymentStatus: "pending"},
					Message: "Payment pending",
				},
			},
			wantClass:   verification.ClassFailure,
			wantMessage: "Payment pending",
		},
		{
			name: "sandbox code: sandbox",
			api: &fakePaymentAPI{
				verifyResp: domain.VerifyResponse{ResultCode: verification.DefaultSandboxCode},
			},
			wantClass: verification.ClassSandbox,
		},
		{
			name: "declined: failure",
			api: &fakePaymentAPI{
				verifyResp: domain.VerifyResponse{ResultCode: "800.100.151", Message: "Card declined"},
			},
			wantClass:   verification.ClassFailure,
			wantMessage: "Card declined",
		},
		{
			name: "consumed and already paid: success",
			api: &fakePaymentAPI{
				verifyResp: domain.VerifyResponse{ResultCode: verification.DefaultConsumedCode},
				statusResp: domain.PaymentStatusResponse{Success: true, Paid: true, Data: paid},
			},
			wantClass:   verification.ClassSuccess,
			wantOrderID: "55",
			wantStatus:  1,
		},
		{
			name: "consumed and not paid: failure",
			api: &fakePaymentAPI{
				verifyResp: domain.VerifyResponse{ResultCode: verification.DefaultConsumedCode, Message: "already used"},
				statusResp: domain.PaymentStatusResponse{Success: true},
			},
			wantClass:   verification.ClassFailure,
			wantMessage: "already used",
			wantStatus:  1,
		},
		{
			name: "transport error: failure",
			api: &fakePaymentAPI{
				verifyErr: errors.New("dial tcp: connection refused"),
			},
			wantClass:   verification.ClassFailure,
			wantMessage: "Connection error. Check your internet connection and try again.",
		},
		{
			name: "http error with server message: failure",
			api: &fakePaymentAPI{
				verifyErr: &apiclient.HTTPError{StatusCode: 422, Message: "Amount mismatch"},
			},
			wantClass:   verification.ClassFailure,
			wantMessage: "Amount mismatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := verification.NewVerifier(tt.api, verification.VerifierOptions{}, nil)
			require.NoError(t, err)

			res := v.Verify(t.Context(), domain.VerifyRequest{
				ResourcePath: verification.ResourcePathFor("chk-1"),
				CheckoutID:   "chk-1",
			})

			assert.Equal(t, tt.wantClass, res.Class)
			assert.Equal(t, tt.wantOrderID, res.OrderID())
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, res.Message)
			}
			assert.Len(t, tt.api.verifyCalls, 1)
			assert.Len(t, tt.api.statusCalls, tt.wantStatus)
		})
	}
}

func TestVerifyCustomCodes(t *testing.T) {
	api := &fakePaymentAPI{verifyResp: domain.VerifyResponse{ResultCode: "SANDBOX"}}

	v, err := verification.NewVerifier(api, verification.VerifierOptions{
		SandboxCodes:  []string{" SANDBOX "},
		ConsumedCodes: []string{"USED"},
	}, nil)
	require.NoError(t, err)

	res := v.Verify(context.Background(), domain.VerifyRequest{CheckoutID: "chk-1"})
	assert.Equal(t, verification.ClassSandbox, res.Class)

	api.verifyResp = domain.VerifyResponse{ResultCode: verification.DefaultSandboxCode}
	res = v.Verify(context.Background(), domain.VerifyRequest{CheckoutID: "chk-1"})
	assert.Equal(t, verification.ClassFailure, res.Class)
	assert.False(t, res.Consumed)
}

func TestNewVerifierRequiresAPI(t *testing.T) {
	_, err := verification.NewVerifier(nil, verification.VerifierOptions{}, nil)
	assert.Error(t, err)
}
