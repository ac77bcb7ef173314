package payments

import (
	"context"
	"net/http"

	"github.com/shoplivehq/shoplive-backend/api/responses"
	paymentsvc "github.com/shoplivehq/shoplive-backend/internal/payments"
	pkgerrors "github.com/shoplivehq/shoplive-backend/pkg/errors"
	"github.com/shoplivehq/shoplive-backend/pkg/logger"
)

type methodLister interface {
	ListMethods(ctx context.Context) ([]paymentsvc.Method, error)
}

// PaymentMethods proxies the stored method descriptors from the payment
// backend so the storefront never holds the API key.
func PaymentMethods(client methodLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments client unavailable"))
			return
		}

		methods, err := client.ListMethods(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMethodsResponse(methods))
	}
}

type methodResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	CardBrand   string `json:"card_brand,omitempty"`
	CardLast4   string `json:"card_last4,omitempty"`
	BillingName string `json:"billing_name,omitempty"`
}

type methodsResponse struct {
	Methods []methodResponse `json:"methods"`
}

func newMethodsResponse(methods []paymentsvc.Method) methodsResponse {
	out := make([]methodResponse, 0, len(methods))
	for _, method := range methods {
		out = append(out, methodResponse{
			ID:          method.ID,
			Type:        method.Type.String(),
			CardBrand:   method.CardBrand,
			CardLast4:   method.CardLast4,
			BillingName: method.BillingName,
		})
	}
	return methodsResponse{Methods: out}
}
