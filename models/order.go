package models

import "time"

type CustomerInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ShippingInfo struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// PaymentInfo is captured for shape validation only. It is never sent to a processor.
type PaymentInfo struct {
	CardHolder string `json:"cardHolder"`
	CardNumber string `json:"cardNumber"`
	ExpiryDate string `json:"expiryDate"`
	CVV        string `json:"cvv"`
}

// OrderData is the checkout form payload.
type OrderData struct {
	Customer CustomerInfo `json:"customerInfo"`
	Shipping ShippingInfo `json:"shippingInfo"`
	Payment  PaymentInfo  `json:"paymentInfo"`
}

// OrderSummary is what remains of a completed order. Card details are masked.
type OrderSummary struct {
	OrderNumber string       `json:"orderNumber"`
	PlacedAt    time.Time    `json:"placedAt"`
	Customer    CustomerInfo `json:"customerInfo"`
	Shipping    ShippingInfo `json:"shippingInfo"`
	CardHolder  string       `json:"cardHolder"`
	MaskedCard  string       `json:"maskedCard"`
	Items       []CartItem   `json:"items"`
	Totals      CartTotals   `json:"totals"`
}
