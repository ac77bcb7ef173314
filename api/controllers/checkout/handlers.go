package checkout

import (
	"context"
	"net/http"

	"github.com/shoplivehq/shoplive-backend/api/middleware"
	"github.com/shoplivehq/shoplive-backend/api/responses"
	"github.com/shoplivehq/shoplive-backend/api/validators"
	checkoutsvc "github.com/shoplivehq/shoplive-backend/internal/checkout"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
	"github.com/shoplivehq/shoplive-backend/pkg/logger"
)

// CheckoutStart opens (or resumes) the session's checkout in the review step.
func CheckoutStart(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.Start(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(sess))
	}
}

// CheckoutFetch returns the session and a quote freshly derived from the cart.
func CheckoutFetch(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, quote, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionWithQuote(sess, quote))
	}
}

// CheckoutConfirm advances the review step into payment.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, svc.Confirm)
}

// CheckoutBack returns the payment step to review.
func CheckoutBack(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, svc.Back)
}

// CheckoutSelectMethod records which stored payment method to charge.
func CheckoutSelectMethod(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload selectMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := svc.SelectMethod(r.Context(), sessionID, payload.PaymentMethodID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionResponse(sess))
	}
}

// CheckoutSubmit charges the live cart total through the payment backend.
func CheckoutSubmit(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, svc.Submit)
}

// CheckoutClose dismisses the session unless a payment is in flight.
func CheckoutClose(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Close(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "closed"})
	}
}

func transitionHandler(
	svc checkoutsvc.Service,
	logg *logger.Logger,
	transition func(ctx context.Context, sessionID string) (*checkoutsvc.Session, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sess, err := transition(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionResponse(sess))
	}
}

type selectMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,max=128"`
}

func sessionIDFromContext(r *http.Request) (string, error) {
	if r == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session context missing")
	}
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "session context missing")
	}
	return sessionID, nil
}
