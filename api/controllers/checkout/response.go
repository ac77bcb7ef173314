package checkout

import (
	"time"

	checkoutsvc "github.com/shoplivehq/shoplive-backend/internal/checkout"
)

type sessionResponse struct {
	SessionID               string    `json:"session_id"`
	Step                    string    `json:"step"`
	SelectedPaymentMethodID string    `json:"selected_payment_method_id,omitempty"`
	OrderNumber             string    `json:"order_number,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type quoteResponse struct {
	TotalItems    int    `json:"total_items"`
	SubtotalCents int64  `json:"subtotal_cents"`
	Subtotal      string `json:"subtotal"`
	TaxCents      int64  `json:"tax_cents"`
	Tax           string `json:"tax"`
	ShippingCents int64  `json:"shipping_cents"`
	Shipping      string `json:"shipping"`
	TotalCents    int64  `json:"total_cents"`
	Total         string `json:"total"`
}

type sessionWithQuote struct {
	sessionResponse
	Quote quoteResponse `json:"quote"`
}

func newSessionResponse(sess *checkoutsvc.Session) sessionResponse {
	if sess == nil {
		return sessionResponse{}
	}
	return sessionResponse{
		SessionID:               sess.ID,
		Step:                    sess.Step.String(),
		SelectedPaymentMethodID: sess.SelectedPaymentMethodID,
		OrderNumber:             sess.OrderNumber,
		CreatedAt:               sess.CreatedAt,
		UpdatedAt:               sess.UpdatedAt,
	}
}

func newSessionWithQuote(sess *checkoutsvc.Session, quote checkoutsvc.Quote) sessionWithQuote {
	return sessionWithQuote{
		sessionResponse: newSessionResponse(sess),
		Quote: quoteResponse{
			TotalItems:    quote.TotalItems,
			SubtotalCents: quote.SubtotalCents,
			Subtotal:      quote.Subtotal(),
			TaxCents:      quote.TaxCents,
			Tax:           quote.Tax(),
			ShippingCents: quote.ShippingCents,
			Shipping:      quote.Shipping(),
			TotalCents:    quote.TotalCents,
			Total:         quote.Total(),
		},
	}
}
