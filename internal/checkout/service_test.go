package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shoplivehq/shoplive-backend/internal/cart"
	"github.com/shoplivehq/shoplive-backend/internal/payments"
	"github.com/shoplivehq/shoplive-backend/pkg/enums"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
)

type stubGateway struct {
	createErr     error
	confirmErr    error
	confirmStatus enums.PaymentIntentStatus

	createCalls  []payments.CreateIntentInput
	confirmCalls []payments.ConfirmIntentInput
}

func (g *stubGateway) CreateIntent(_ context.Context, input payments.CreateIntentInput) (*payments.Intent, error) {
	g.createCalls = append(g.createCalls, input)
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &payments.Intent{
		ID:       "pi_test",
		Amount:   input.AmountCents,
		Currency: input.Currency,
		Status:   enums.PaymentIntentStatusRequiresConfirmation,
	}, nil
}

func (g *stubGateway) ConfirmIntent(_ context.Context, input payments.ConfirmIntentInput) (*payments.Intent, error) {
	g.confirmCalls = append(g.confirmCalls, input)
	if g.confirmErr != nil {
		return nil, g.confirmErr
	}
	status := g.confirmStatus
	if status == "" {
		status = enums.PaymentIntentStatusSucceeded
	}
	return &payments.Intent{ID: input.IntentID, Status: status}, nil
}

type stubRecorder struct {
	outcomes []string
}

func (r *stubRecorder) ObserveSubmit(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

type fixture struct {
	svc      Service
	carts    cart.Service
	gateway  *stubGateway
	recorder *stubRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	carts := cart.NewService(nil)
	gateway := &stubGateway{}
	recorder := &stubRecorder{}

	svc, err := NewService(ServiceParams{
		Config:  testCheckoutConfig(),
		Carts:   carts,
		Gateway: gateway,
		Metrics: recorder,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, carts: carts, gateway: gateway, recorder: recorder}
}

func (f *fixture) fillCart(sessionID string) {
	store := f.carts.Store(sessionID)
	store.AddItem(cart.Item{ID: "hoodie", Name: "Hoodie", UnitPriceCents: 2000}, 2)
	store.AddItem(cart.Item{ID: "cap", Name: "Cap", UnitPriceCents: 1500}, 1)
}

func (f *fixture) toPaymentStep(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Start(ctx, sessionID)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, sessionID)
	require.NoError(t, err)
	_, err = f.svc.SelectMethod(ctx, sessionID, "pm_1")
	require.NoError(t, err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	t.Parallel()

	_, err := NewService(ServiceParams{Gateway: &stubGateway{}})
	require.Error(t, err)
	_, err = NewService(ServiceParams{Carts: cart.NewService(nil)})
	require.Error(t, err)
}

func TestStartIsIdempotentPerSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Start(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepReview, first.Step)

	again, err := f.svc.Start(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, first.CreatedAt, again.CreatedAt)

	_, err = f.svc.Start(ctx, "  ")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestConfirmRequiresNonEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "sess-1")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	f.fillCart("sess-1")
	sess, err := f.svc.Confirm(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepPayment, sess.Step)
	require.NotEmpty(t, sess.IdempotencyKey)
}

func TestBackReturnsToReview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")

	sess, err := f.svc.Back(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepReview, sess.Step)

	// back from review is not a sanctioned transition
	_, err = f.svc.Back(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestSubmitRequiresSelectedMethod(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")

	_, err := f.svc.Start(ctx, "sess-1")
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, "sess-1")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestSubmitSuccessClearsCartAndGeneratesOrderNumber(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")

	sess, err := f.svc.Submit(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepSuccess, sess.Step)
	require.True(t, strings.HasPrefix(sess.OrderNumber, "SL-"))

	require.Equal(t, 0, f.carts.Store("sess-1").TotalItems())

	// subtotal 55.00 -> tax 4.40, free shipping, total 59.40
	require.Len(t, f.gateway.createCalls, 1)
	require.Equal(t, int64(5940), f.gateway.createCalls[0].AmountCents)
	require.Equal(t, "usd", f.gateway.createCalls[0].Currency)

	require.Len(t, f.gateway.confirmCalls, 1)
	require.Equal(t, "pi_test", f.gateway.confirmCalls[0].IntentID)
	require.Equal(t, "pm_1", f.gateway.confirmCalls[0].PaymentMethodID)

	require.Equal(t, []string{"succeeded"}, f.recorder.outcomes)
}

func TestSubmitDeclinedKeepsCartAndReturnsToPayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")
	f.gateway.confirmStatus = enums.PaymentIntentStatusRequiresPaymentMethod

	_, err := f.svc.Submit(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodePaymentDeclined, pkgerrors.As(err).Code())

	sess, _, err := f.svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepPayment, sess.Step)
	require.Empty(t, sess.OrderNumber)

	require.Equal(t, 3, f.carts.Store("sess-1").TotalItems())
	require.Equal(t, []string{"declined"}, f.recorder.outcomes)
}

func TestSubmitRetryReusesIdempotencyKey(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")

	f.gateway.confirmErr = pkgerrors.New(pkgerrors.CodePaymentTimeout, "payment backend timed out")
	_, err := f.svc.Submit(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodePaymentTimeout, pkgerrors.As(err).Code())

	f.gateway.confirmErr = nil
	_, err = f.svc.Submit(ctx, "sess-1")
	require.NoError(t, err)

	require.Len(t, f.gateway.createCalls, 2)
	require.NotEmpty(t, f.gateway.createCalls[0].IdempotencyKey)
	require.Equal(t, f.gateway.createCalls[0].IdempotencyKey, f.gateway.createCalls[1].IdempotencyKey)
	require.Equal(t, f.gateway.createCalls[1].IdempotencyKey, f.gateway.confirmCalls[1].IdempotencyKey)

	require.Equal(t, []string{"timeout", "succeeded"}, f.recorder.outcomes)
}

func TestSubmitAuthExpiredPreservesCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")
	f.gateway.createErr = pkgerrors.New(pkgerrors.CodeAuthExpired, "payment backend rejected credentials")

	_, err := f.svc.Submit(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodeAuthExpired, pkgerrors.As(err).Code())

	sess, _, err := f.svc.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepPayment, sess.Step)
	require.Equal(t, 3, f.carts.Store("sess-1").TotalItems())
	require.Equal(t, []string{"auth_expired"}, f.recorder.outcomes)
}

func TestSubmitChargesLiveCartTotal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")

	// the quote must follow cart edits made after the review step
	f.carts.Store("sess-1").UpdateQuantity("hoodie", 1)

	_, err := f.svc.Submit(ctx, "sess-1")
	require.NoError(t, err)

	// subtotal 35.00 -> tax 2.80, shipping 9.99, total 47.79
	require.Equal(t, int64(4779), f.gateway.createCalls[0].AmountCents)
}

func TestCloseBlockedWhileProcessing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")
	f.toPaymentStep(t, "sess-1")

	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.createErr = nil
	slowGateway := &blockingGateway{inner: f.gateway, entered: entered, release: release}

	svc, err := NewService(ServiceParams{
		Config:  testCheckoutConfig(),
		Carts:   f.carts,
		Gateway: slowGateway,
		Metrics: f.recorder,
	})
	require.NoError(t, err)

	_, err = svc.Start(ctx, "sess-2")
	require.NoError(t, err)
	f.fillCart("sess-2")
	_, err = svc.Confirm(ctx, "sess-2")
	require.NoError(t, err)
	_, err = svc.SelectMethod(ctx, "sess-2", "pm_1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, submitErr := svc.Submit(ctx, "sess-2")
		done <- submitErr
	}()

	<-entered
	closeErr := svc.Close(ctx, "sess-2")
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(closeErr).Code())

	sess, _, err := svc.Get(ctx, "sess-2")
	require.NoError(t, err)
	require.Equal(t, enums.CheckoutStepProcessing, sess.Step)

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, svc.Close(ctx, "sess-2"))
}

func TestCloseOutsideProcessingRemovesSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.fillCart("sess-1")

	_, err := f.svc.Start(ctx, "sess-1")
	require.NoError(t, err)
	require.NoError(t, f.svc.Close(ctx, "sess-1"))

	_, _, err = f.svc.Get(ctx, "sess-1")
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	// closing from review keeps the cart for later
	require.Equal(t, 3, f.carts.Store("sess-1").TotalItems())

	// closing an unknown session is a no-op
	require.NoError(t, f.svc.Close(ctx, "sess-404"))
}

type blockingGateway struct {
	inner   *stubGateway
	entered chan struct{}
	release chan struct{}
	once    bool
}

func (g *blockingGateway) CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error) {
	if !g.once {
		g.once = true
		close(g.entered)
		<-g.release
	}
	return g.inner.CreateIntent(ctx, input)
}

func (g *blockingGateway) ConfirmIntent(ctx context.Context, input payments.ConfirmIntentInput) (*payments.Intent, error) {
	return g.inner.ConfirmIntent(ctx, input)
}
