package handlers

import (
	"net/http"

	"storefront-api/models"
	"storefront-api/utils"
)

type OrderHandler struct {
	visitors *Visitors
}

func NewOrderHandler(visitors *Visitors) *OrderHandler {
	return &OrderHandler{visitors: visitors}
}

// GetLastOrder returns the summary of the visitor's most recent completed order.
func (h *OrderHandler) GetLastOrder(w http.ResponseWriter, r *http.Request) {
	last := h.visitors.load(r).store.LastOrder()
	if last == nil {
		utils.SendErrorResponse(w, http.StatusNotFound, "No order has been placed yet")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: last})
}
