package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storefront-api/middleware"
)

// Routes bundles the handlers mounted by NewRouter. Nil handlers leave their routes out.
type Routes struct {
	Cart          *CartHandler
	Checkout      *CheckoutHandler
	Orders        *OrderHandler
	Products      *ProductHandler
	Auth          *AuthHandler
	AdminProducts *AdminProductHandler
	Health        *HealthHandler
	AdminQueue    *AdminQueueHandler

	Tokens        middleware.TokenValidator
	RateLimit     func(http.Handler) http.Handler
	AllowedOrigin string
	Logger        *zap.Logger
}

func NewRouter(rt Routes) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.CORSMiddleware(rt.AllowedOrigin))
	router.Use(middleware.LoggingMiddleware(rt.Logger))
	router.Use(middleware.SecurityHeadersMiddleware)

	api := router.PathPrefix("/api").Subrouter()
	if rt.RateLimit != nil {
		api.Use(rt.RateLimit)
	}

	if rt.Health != nil {
		api.HandleFunc("/health", rt.Health.Health).Methods(http.MethodGet)
	}

	if rt.Products != nil {
		api.HandleFunc("/products", rt.Products.GetProducts).Methods(http.MethodGet, http.MethodOptions)
		api.HandleFunc("/products/{id}", rt.Products.GetProduct).Methods(http.MethodGet, http.MethodOptions)
	}

	if rt.Cart != nil {
		api.HandleFunc("/cart", rt.Cart.GetCart).Methods(http.MethodGet, http.MethodOptions)
		api.HandleFunc("/cart", rt.Cart.AddToCart).Methods(http.MethodPost, http.MethodOptions)
		api.HandleFunc("/cart", rt.Cart.UpdateCart).Methods(http.MethodPut, http.MethodOptions)
		api.HandleFunc("/cart/custom-hat", rt.Cart.AddCustomHat).Methods(http.MethodPost, http.MethodOptions)
		api.HandleFunc("/cart/{itemId}", rt.Cart.RemoveFromCart).Methods(http.MethodDelete, http.MethodOptions)
		api.HandleFunc("/customizer/check", rt.Cart.CheckCustomText).Methods(http.MethodPost, http.MethodOptions)
	}

	if rt.Checkout != nil {
		api.HandleFunc("/checkout", rt.Checkout.GetCheckout).Methods(http.MethodGet, http.MethodOptions)
		api.HandleFunc("/checkout/field", rt.Checkout.UpdateField).Methods(http.MethodPost, http.MethodOptions)
		api.HandleFunc("/checkout/next", rt.Checkout.NextStep).Methods(http.MethodPost, http.MethodOptions)
		api.HandleFunc("/checkout/back", rt.Checkout.PrevStep).Methods(http.MethodPost, http.MethodOptions)
		api.HandleFunc("/checkout/submit", rt.Checkout.Submit).Methods(http.MethodPost, http.MethodOptions)
	}

	if rt.Orders != nil {
		api.HandleFunc("/orders/last", rt.Orders.GetLastOrder).Methods(http.MethodGet, http.MethodOptions)
	}

	if rt.Auth != nil {
		api.HandleFunc("/admin/login", rt.Auth.Login).Methods(http.MethodPost, http.MethodOptions)
	}

	if rt.Tokens != nil {
		admin := api.PathPrefix("/admin").Subrouter()
		admin.Use(middleware.AuthMiddleware(rt.Tokens, rt.Logger))
		admin.Use(middleware.RequireAdmin())

		if rt.Auth != nil {
			admin.HandleFunc("/me", rt.Auth.Me).Methods(http.MethodGet, http.MethodOptions)
		}
		if rt.AdminProducts != nil {
			admin.HandleFunc("/products", rt.AdminProducts.ListProducts).Methods(http.MethodGet, http.MethodOptions)
			admin.HandleFunc("/products", rt.AdminProducts.SaveProduct).Methods(http.MethodPost, http.MethodOptions)
			admin.HandleFunc("/products/{id}", rt.AdminProducts.SaveProduct).Methods(http.MethodPut, http.MethodOptions)
			admin.HandleFunc("/products/{id}", rt.AdminProducts.DeleteProduct).Methods(http.MethodDelete, http.MethodOptions)
		}
		if rt.AdminQueue != nil {
			admin.HandleFunc("/queue/stats", rt.AdminQueue.Stats).Methods(http.MethodGet, http.MethodOptions)
			admin.HandleFunc("/queue/failed/{id}/retry", rt.AdminQueue.RetryFailed).Methods(http.MethodPost, http.MethodOptions)
		}
	}

	return router
}
