package checkout

import (
	"time"

	"github.com/shoplivehq/shoplive-backend/pkg/config"
	"github.com/shoplivehq/shoplive-backend/pkg/enums"
	"github.com/shoplivehq/shoplive-backend/pkg/money"
)

// Session is one buyer's checkout in progress. Steps move strictly forward
// (review -> payment -> processing -> success) except for the two sanctioned
// reversals: payment -> review on back navigation and processing -> payment
// when a submission fails.
type Session struct {
	ID                      string
	Step                    enums.CheckoutStep
	SelectedPaymentMethodID string

	// IdempotencyKey is minted when the session first reaches the payment
	// step and survives failed submissions, so a manual retry cannot
	// double-charge. It is never reused after a success.
	IdempotencyKey string

	OrderNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Quote is the invoice derived from the live cart. It is recomputed on every
// read and never cached across step transitions.
type Quote struct {
	TotalItems    int
	SubtotalCents int64
	TaxCents      int64
	ShippingCents int64
	TotalCents    int64
}

// Subtotal returns the display form of the subtotal.
func (q Quote) Subtotal() string { return money.FormatUSD(q.SubtotalCents) }

// Tax returns the display form of the tax amount.
func (q Quote) Tax() string { return money.FormatUSD(q.TaxCents) }

// Shipping returns the display form of the shipping fee.
func (q Quote) Shipping() string { return money.FormatUSD(q.ShippingCents) }

// Total returns the display form of the grand total.
func (q Quote) Total() string { return money.FormatUSD(q.TotalCents) }

// computeQuote derives tax and shipping from the subtotal. Shipping is free
// strictly above the threshold; tax is rounded to cents exactly once.
func computeQuote(cfg config.CheckoutConfig, totalItems int, subtotalCents int64) Quote {
	tax := money.Tax(subtotalCents, cfg.TaxRateBps)
	shipping := cfg.FlatShippingCents
	if subtotalCents > cfg.FreeShippingThresholdCents {
		shipping = 0
	}
	return Quote{
		TotalItems:    totalItems,
		SubtotalCents: subtotalCents,
		TaxCents:      tax,
		ShippingCents: shipping,
		TotalCents:    subtotalCents + tax + shipping,
	}
}
