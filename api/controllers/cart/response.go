package cart

import (
	cartsvc "github.com/shoplivehq/shoplive-backend/internal/cart"
	"github.com/shoplivehq/shoplive-backend/pkg/money"
)

type cartItem struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	Image          string `json:"image,omitempty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	UnitPrice      string `json:"unit_price"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type cartResponse struct {
	Items         []cartItem `json:"items"`
	TotalItems    int        `json:"total_items"`
	SubtotalCents int64      `json:"subtotal_cents"`
	Subtotal      string     `json:"subtotal"`
}

func newCartResponse(store *cartsvc.Store) cartResponse {
	items := store.Items()
	out := make([]cartItem, 0, len(items))
	for _, item := range items {
		out = append(out, cartItem{
			ItemID:         item.ID,
			Name:           item.Name,
			Image:          item.Image,
			UnitPriceCents: item.UnitPriceCents,
			UnitPrice:      money.FormatUSD(item.UnitPriceCents),
			Quantity:       item.Quantity,
			LineTotalCents: item.UnitPriceCents * int64(item.Quantity),
		})
	}
	return cartResponse{
		Items:         out,
		TotalItems:    store.TotalItems(),
		SubtotalCents: store.SubtotalCents(),
		Subtotal:      money.FormatUSD(store.SubtotalCents()),
	}
}
