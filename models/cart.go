package models

import (
	"encoding/gob"
	"encoding/json"
)

func init() {
	gob.Register(StandardCustomization{})
	gob.Register(CustomHatCustomization{})
}

// CartItem is one line of the cart. Price is frozen when the item is first added.
type CartItem struct {
	ID            string
	ProductID     string
	Name          string
	Price         float64
	Quantity      int
	Image         string
	Customization Customization
}

func (i CartItem) LineTotal() float64 {
	return float64(i.Quantity) * i.Price
}

type cartItemJSON struct {
	ID            string               `json:"id"`
	ProductID     string               `json:"productId"`
	Name          string               `json:"name"`
	Price         float64              `json:"price"`
	Quantity      int                  `json:"quantity"`
	Image         string               `json:"image"`
	Customization CustomizationPayload `json:"customization"`
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartItemJSON{
		ID:            i.ID,
		ProductID:     i.ProductID,
		Name:          i.Name,
		Price:         i.Price,
		Quantity:      i.Quantity,
		Image:         i.Image,
		Customization: NewCustomizationPayload(i.Customization),
	})
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var raw cartItemJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = CartItem{
		ID:            raw.ID,
		ProductID:     raw.ProductID,
		Name:          raw.Name,
		Price:         raw.Price,
		Quantity:      raw.Quantity,
		Image:         raw.Image,
		Customization: raw.Customization.Customization(),
	}
	return nil
}

// CartTotals is derived from the line items and never stored on its own.
type CartTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type AddToCartRequest struct {
	ProductID     string               `json:"productId"`
	Quantity      int                  `json:"quantity"`
	Customization CustomizationPayload `json:"customization"`
}

type UpdateCartRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// CustomHatRequest adds a custom hat line. ProductID defaults to CustomHatProductID.
type CustomHatRequest struct {
	ProductID  string `json:"productId"`
	Font       string `json:"font"`
	Color      string `json:"color"`
	CustomText string `json:"customText"`
	Quantity   int    `json:"quantity"`
}

const CustomHatProductID = "custom-hat"

type CartResponse struct {
	Items     []CartItem `json:"items"`
	ItemCount int        `json:"itemCount"`
	Totals    CartTotals `json:"totals"`
}
