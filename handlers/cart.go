package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/cart"
	"storefront-api/services/catalog"
	"storefront-api/services/customizer"
	"storefront-api/utils"
)

type CartHandler struct {
	visitors *Visitors
	rules    customizer.Rules
	logger   *zap.Logger
}

func NewCartHandler(visitors *Visitors, rules customizer.Rules, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{visitors: visitors, rules: rules, logger: logger}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	vis := h.visitors.load(r)
	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   cartResponse(vis.store.Cart),
	})
}

func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		utils.SendErrorResponse(w, http.StatusBadRequest, "productId is required")
		return
	}

	customization := req.Customization.Customization()
	if hat, ok := customization.(models.CustomHatCustomization); ok {
		if err := h.rules.Validate(hat.CustomText, req.Quantity); err != nil {
			sendCustomizerErrors(w, err)
			return
		}
	}

	h.add(w, r, req.ProductID, req.Quantity, customization)
}

// add runs AddToCart against the visitor's cart and answers 201 with the updated cart.
func (h *CartHandler) add(w http.ResponseWriter, r *http.Request, productID string, quantity int, c models.Customization) {
	vis := h.visitors.load(r)

	item, err := vis.store.Cart.AddToCart(r.Context(), productID, quantity, c)
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, cart.ErrInvalidQuantity):
			utils.SendErrorResponse(w, http.StatusBadRequest, "Quantity must be at least 1")
		default:
			h.logger.Error("error adding to cart", zap.String("product_id", productID), zap.Error(err))
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not add the item to your cart")
		}
		return
	}

	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}

	h.logger.Debug("item added to cart",
		zap.String("product_id", productID), zap.String("item_id", item.ID), zap.Int("quantity", item.Quantity))

	utils.SendJSON(w, http.StatusCreated, models.APIResponse{
		Status:  "success",
		Message: "Item added to cart",
		Data:    cartResponse(vis.store.Cart),
	})
}

// UpdateCart sets a line's quantity. Zero or less removes the line; unknown ids change nothing.
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vis := h.visitors.load(r)
	vis.store.Cart.UpdateCartQuantity(req.ItemID, req.Quantity)
	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   cartResponse(vis.store.Cart),
	})
}

func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	itemID := mux.Vars(r)["itemId"]

	vis := h.visitors.load(r)
	vis.store.Cart.RemoveFromCart(itemID)
	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{
		Status: "success",
		Data:   cartResponse(vis.store.Cart),
	})
}

func sendCustomizerErrors(w http.ResponseWriter, err error) {
	var violations customizer.ValidationErrors
	if errors.As(err, &violations) {
		utils.SendErrorResponseWithData(w, http.StatusUnprocessableEntity, violations[0].Message, violations)
		return
	}
	utils.SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
}
