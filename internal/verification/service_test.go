package verification_test

import (
	"context"
	"testing"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/kvstore"
	"github.com/kevinvillajim/bcommerce-checkout/internal/notify"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type serviceSuite struct {
	suite.Suite

	api      *fakePaymentAPI
	carts    *fakeCarts
	inbox    *notify.Inbox
	sessions *verification.SessionStore
	owner    domain.Owner
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(serviceSuite))
}

func (suite *serviceSuite) SetupTest() {
	suite.api = &fakePaymentAPI{
		verifyResp: domain.VerifyResponse{
			Success: true,
			Data:    &domain.VerifiedPayment{OrderID: "77", OrderNumber: "ORD-77"},
		},
	}
	suite.carts = &fakeCarts{}
	suite.inbox = notify.NewInbox(0, nil)
	suite.owner = domain.Owner{UserID: 42}

	var err error
	suite.sessions, err = verification.NewSessionStore(kvstore.NewMemory(), "datafast")
	suite.Require().NoError(err)
}

func (suite *serviceSuite) TearDownTest() {
	goleak.VerifyNone(suite.T())
}

func (suite *serviceSuite) newService(simulate bool) *verification.Service {
	v, err := verification.NewVerifier(suite.api, verification.VerifierOptions{}, nil)
	suite.Require().NoError(err)

	r, err := verification.NewReconciler(suite.carts, suite.inbox, suite.inbox, verification.ReconcilerOptions{
		SuccessRedirectDelay: time.Millisecond,
		FailureRedirectDelay: time.Millisecond,
	}, nil)
	suite.Require().NoError(err)

	s, err := verification.NewService(v, r, suite.sessions, simulate, nil)
	suite.Require().NoError(err)
	return s
}

func (suite *serviceSuite) TestResumeStored() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.sessions.Save(ctx, suite.owner, domain.PaymentSession{
		CheckoutID:      "chk-1",
		ResourcePath:    "/v1/checkouts/chk-1/payment",
		TransactionID:   "tx-1",
		CalculatedTotal: decimal.RequireFromString("57.50"),
	}))

	res, nav, err := suite.newService(false).ResumeStored(ctx, suite.owner)
	require.NoError(t, err)
	require.NoError(t, nav.Wait(context.Background()))

	assert.Equal(t, verification.ClassSuccess, res.Class)
	require.Len(t, suite.api.verifyCalls, 1)
	assert.Equal(t, "tx-1", suite.api.verifyCalls[0].TransactionID)
	assert.Equal(t, 1, suite.carts.clearedCount())

	_, err = suite.sessions.Load(ctx, suite.owner)
	assert.ErrorIs(t, err, verification.ErrNoSession)
}

func (suite *serviceSuite) TestResumeStoredWithoutSession() {
	t := suite.T()

	_, nav, err := suite.newService(false).ResumeStored(t.Context(), suite.owner)
	require.ErrorIs(t, err, verification.ErrNoSession)
	assert.Nil(t, nav)
	assert.Empty(t, suite.api.verifyCalls)
}

func (suite *serviceSuite) TestFailureKeepsSession() {
	t := suite.T()
	ctx := t.Context()

	suite.api.verifyResp = domain.VerifyResponse{Message: "Card declined"}
	require.NoError(t, suite.sessions.Save(ctx, suite.owner, domain.PaymentSession{CheckoutID: "chk-1"}))

	res, nav, err := suite.newService(false).ResumeStored(ctx, suite.owner)
	require.NoError(t, err)
	require.NoError(t, nav.Wait(context.Background()))

	assert.Equal(t, verification.ClassFailure, res.Class)
	assert.Zero(t, suite.carts.clearedCount())

	_, err = suite.sessions.Load(ctx, suite.owner)
	assert.NoError(t, err)
}

func (suite *serviceSuite) TestSimulateSuccess() {
	t := suite.T()
	ctx := t.Context()

	require.NoError(t, suite.sessions.Save(ctx, suite.owner, domain.PaymentSession{
		CheckoutID:      "chk-1",
		TransactionID:   "tx-1",
		CalculatedTotal: decimal.RequireFromString("10.00"),
	}))

	res, nav, err := suite.newService(true).SimulateSuccess(ctx, suite.owner, "")
	require.NoError(t, err)
	require.NoError(t, nav.Wait(context.Background()))

	assert.Equal(t, verification.ClassSuccess, res.Class)
	require.Len(t, suite.api.verifyCalls, 1)

	req := suite.api.verifyCalls[0]
	assert.True(t, req.Simulate)
	assert.Equal(t, "chk-1", req.CheckoutID)
	assert.Equal(t, verification.ResourcePathFor("chk-1"), req.ResourcePath)
	assert.Equal(t, "tx-1", req.TransactionID)
}

func (suite *serviceSuite) TestSimulateSuccessDisabled() {
	t := suite.T()

	_, _, err := suite.newService(false).SimulateSuccess(t.Context(), suite.owner, "chk-1")
	require.ErrorIs(t, err, verification.ErrSimulationDisabled)
	assert.Empty(t, suite.api.verifyCalls)
}

func (suite *serviceSuite) TestSimulateSuccessWithoutCheckout() {
	t := suite.T()

	_, _, err := suite.newService(true).SimulateSuccess(t.Context(), suite.owner, "")
	require.Error(t, err)
	assert.Empty(t, suite.api.verifyCalls)
}
