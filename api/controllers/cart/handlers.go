package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shoplivehq/shoplive-backend/api/middleware"
	"github.com/shoplivehq/shoplive-backend/api/responses"
	"github.com/shoplivehq/shoplive-backend/api/validators"
	cartsvc "github.com/shoplivehq/shoplive-backend/internal/cart"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
	"github.com/shoplivehq/shoplive-backend/pkg/logger"
)

// CartFetch exposes the session's cart contents and running totals.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(svc.Store(sessionID)))
	}
}

// CartAddItem adds a product to the cart, merging quantities on repeat adds.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := svc.Store(sessionID)
		store.AddItem(toCartItem(payload), payload.Quantity)

		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(store))
	}
}

// CartUpdateItem sets an item's quantity; zero or less removes it.
func CartUpdateItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := validators.SanitizeString(chi.URLParam(r, "itemId"), 128)
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := svc.Store(sessionID)
		store.UpdateQuantity(itemID, *payload.Quantity)

		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartRemoveItem drops one item from the cart.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID := validators.SanitizeString(chi.URLParam(r, "itemId"), 128)
		if itemID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item id is required"))
			return
		}

		store := svc.Store(sessionID)
		store.RemoveItem(itemID)

		responses.WriteSuccess(w, newCartResponse(store))
	}
}

// CartClear empties the cart in one call.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		sessionID, err := sessionIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store := svc.Store(sessionID)
		store.Clear()

		responses.WriteSuccess(w, newCartResponse(store))
	}
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
