package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shoplivehq/shoplive-backend/internal/cart"
	"github.com/shoplivehq/shoplive-backend/internal/payments"
	"github.com/shoplivehq/shoplive-backend/pkg/config"
	"github.com/shoplivehq/shoplive-backend/pkg/enums"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
)

type cartProvider interface {
	Store(sessionID string) *cart.Store
	Drop(sessionID string)
}

type paymentGateway interface {
	CreateIntent(ctx context.Context, input payments.CreateIntentInput) (*payments.Intent, error)
	ConfirmIntent(ctx context.Context, input payments.ConfirmIntentInput) (*payments.Intent, error)
}

type submitRecorder interface {
	ObserveSubmit(outcome string, duration time.Duration)
}

// Service drives checkout sessions through their step transitions.
type Service interface {
	Start(ctx context.Context, sessionID string) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, Quote, error)
	Confirm(ctx context.Context, sessionID string) (*Session, error)
	Back(ctx context.Context, sessionID string) (*Session, error)
	SelectMethod(ctx context.Context, sessionID, paymentMethodID string) (*Session, error)
	Submit(ctx context.Context, sessionID string) (*Session, error)
	Close(ctx context.Context, sessionID string) error
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Config  config.CheckoutConfig
	Carts   cartProvider
	Gateway paymentGateway
	Metrics submitRecorder
}

type service struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cfg     config.CheckoutConfig
	carts   cartProvider
	gateway paymentGateway
	metrics submitRecorder
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Carts == nil {
		return nil, fmt.Errorf("cart provider required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	return &service{
		sessions: make(map[string]*Session),
		cfg:      params.Config,
		carts:    params.Carts,
		gateway:  params.Gateway,
		metrics:  params.Metrics,
	}, nil
}

// Start creates the session in the review step, or returns the existing one.
func (s *service) Start(_ context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[sessionID]; ok {
		return copySession(sess), nil
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:        sessionID,
		Step:      enums.CheckoutStepReview,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sessionID] = sess
	return copySession(sess), nil
}

// Get returns the session together with a quote freshly derived from the cart.
func (s *service) Get(_ context.Context, sessionID string) (*Session, Quote, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil, Quote{}, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	snapshot := copySession(sess)
	s.mu.Unlock()

	return snapshot, s.quoteFor(sessionID), nil
}

// Confirm moves review -> payment. The cart must contain at least one item.
func (s *service) Confirm(_ context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != enums.CheckoutStepReview {
		return nil, stepConflict(sess.Step, enums.CheckoutStepPayment)
	}
	if s.carts.Store(sessionID).TotalItems() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	if sess.IdempotencyKey == "" {
		sess.IdempotencyKey = uuid.NewString()
	}
	sess.Step = enums.CheckoutStepPayment
	sess.UpdatedAt = time.Now().UTC()
	return copySession(sess), nil
}

// Back moves payment -> review.
func (s *service) Back(_ context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != enums.CheckoutStepPayment {
		return nil, stepConflict(sess.Step, enums.CheckoutStepReview)
	}
	sess.Step = enums.CheckoutStepReview
	sess.UpdatedAt = time.Now().UTC()
	return copySession(sess), nil
}

// SelectMethod records the payment method to charge on submission.
func (s *service) SelectMethod(_ context.Context, sessionID, paymentMethodID string) (*Session, error) {
	paymentMethodID = strings.TrimSpace(paymentMethodID)
	if paymentMethodID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessionLocked(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Step != enums.CheckoutStepPayment {
		return nil, stepConflict(sess.Step, enums.CheckoutStepPayment)
	}
	sess.SelectedPaymentMethodID = paymentMethodID
	sess.UpdatedAt = time.Now().UTC()
	return copySession(sess), nil
}

// Submit charges the live cart total. The session sits in processing for the
// duration of the two gateway calls; any failure sends it back to payment
// with the cart untouched, and only a confirmed success clears the cart.
func (s *service) Submit(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	sess, err := s.sessionLocked(sessionID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if sess.Step != enums.CheckoutStepPayment {
		s.mu.Unlock()
		return nil, stepConflict(sess.Step, enums.CheckoutStepProcessing)
	}
	if sess.SelectedPaymentMethodID == "" {
		s.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "select a payment method first")
	}

	sess.Step = enums.CheckoutStepProcessing
	sess.UpdatedAt = time.Now().UTC()
	methodID := sess.SelectedPaymentMethodID
	idempotencyKey := sess.IdempotencyKey
	s.mu.Unlock()

	store := s.carts.Store(sessionID)
	quote := computeQuote(s.cfg, store.TotalItems(), store.SubtotalCents())
	if quote.TotalItems == 0 {
		return nil, s.failSubmit(sessionID, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items"), time.Now())
	}

	started := time.Now()

	intent, err := s.gateway.CreateIntent(ctx, payments.CreateIntentInput{
		AmountCents:    quote.TotalCents,
		Currency:       s.cfg.Currency,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, s.failSubmit(sessionID, err, started)
	}

	confirmed, err := s.gateway.ConfirmIntent(ctx, payments.ConfirmIntentInput{
		IntentID:        intent.ID,
		PaymentMethodID: methodID,
		IdempotencyKey:  idempotencyKey,
	})
	if err != nil {
		return nil, s.failSubmit(sessionID, err, started)
	}
	if confirmed.Status != enums.PaymentIntentStatusSucceeded {
		declined := pkgerrors.New(pkgerrors.CodePaymentDeclined, "payment was not completed").
			WithDetails(map[string]any{"status": confirmed.Status.String()})
		return nil, s.failSubmit(sessionID, declined, started)
	}

	store.Clear()

	s.mu.Lock()
	sess, lookupErr := s.sessionLocked(sessionID)
	if lookupErr != nil {
		s.mu.Unlock()
		return nil, lookupErr
	}
	sess.Step = enums.CheckoutStepSuccess
	sess.OrderNumber = fmt.Sprintf("%s-%d", s.cfg.OrderNumberPrefix, time.Now().UnixMilli())
	sess.UpdatedAt = time.Now().UTC()
	snapshot := copySession(sess)
	s.mu.Unlock()

	s.observe("succeeded", started)
	return snapshot, nil
}

// Close dismisses the session. Dismissal is blocked while a payment is in
// flight so the buyer never loses sight of a charge in progress.
func (s *service) Close(_ context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	if sess.Step == enums.CheckoutStepProcessing {
		s.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout cannot be closed while payment is processing")
	}
	finished := sess.Step == enums.CheckoutStepSuccess
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if finished {
		s.carts.Drop(sessionID)
	}
	return nil
}

func (s *service) quoteFor(sessionID string) Quote {
	store := s.carts.Store(sessionID)
	return computeQuote(s.cfg, store.TotalItems(), store.SubtotalCents())
}

// failSubmit returns the session to the payment step, leaving cart contents
// and the idempotency key intact for a manual retry.
func (s *service) failSubmit(sessionID string, cause error, started time.Time) error {
	s.mu.Lock()
	if sess, ok := s.sessions[sessionID]; ok && sess.Step == enums.CheckoutStepProcessing {
		sess.Step = enums.CheckoutStepPayment
		sess.UpdatedAt = time.Now().UTC()
	}
	s.mu.Unlock()

	s.observe(outcomeFor(cause), started)
	return cause
}

func (s *service) observe(outcome string, started time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSubmit(outcome, time.Since(started))
}

func (s *service) sessionLocked(sessionID string) (*Session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	}
	return sess, nil
}

func stepConflict(current, attempted enums.CheckoutStep) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "checkout step transition disallowed").
		WithDetails(map[string]any{
			"current":   current.String(),
			"attempted": attempted.String(),
		})
}

func outcomeFor(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "error"
	}
	switch typed.Code() {
	case pkgerrors.CodePaymentDeclined:
		return "declined"
	case pkgerrors.CodePaymentTimeout:
		return "timeout"
	case pkgerrors.CodeAuthExpired:
		return "auth_expired"
	default:
		return "error"
	}
}

func copySession(sess *Session) *Session {
	if sess == nil {
		return nil
	}
	out := *sess
	return &out
}
