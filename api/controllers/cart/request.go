package cart

import cartsvc "github.com/shoplivehq/shoplive-backend/internal/cart"

type addItemRequest struct {
	ItemID         string `json:"item_id" validate:"required,max=128"`
	Name           string `json:"name" validate:"required,max=256"`
	Image          string `json:"image" validate:"omitempty,max=1024"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"gte=0"`
	Quantity       int    `json:"quantity" validate:"omitempty,max=999"`
}

// Quantity is a pointer so an explicit zero reaches the store, which treats
// it as removal.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=999"`
}

func toCartItem(payload addItemRequest) cartsvc.Item {
	return cartsvc.Item{
		ID:             payload.ItemID,
		Name:           payload.Name,
		Image:          payload.Image,
		UnitPriceCents: payload.UnitPriceCents,
	}
}
