package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/checkout"
	"storefront-api/utils"
)

type CheckoutHandler struct {
	visitors *Visitors
	logger   *zap.Logger
}

func NewCheckoutHandler(visitors *Visitors, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{visitors: visitors, logger: logger}
}

type fieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Blur  bool   `json:"blur"`
}

type submitRequest struct {
	PaymentInfo models.PaymentInfo `json:"paymentInfo"`
}

// checkoutState never carries payment values back to the client.
type checkoutState struct {
	Step           int                 `json:"step"`
	StepName       string              `json:"stepName"`
	Fields         []string            `json:"fields"`
	Unlocked       []int               `json:"unlockedSteps"`
	Status         string              `json:"status"`
	Customer       models.CustomerInfo `json:"customerInfo"`
	Shipping       models.ShippingInfo `json:"shippingInfo"`
	Errors         map[string]string   `json:"errors"`
	RedirectToCart bool                `json:"redirectToCart"`
	Totals         models.CartTotals   `json:"totals"`
}

type submitResult struct {
	Order models.OrderSummary `json:"order"`
}

func stateOf(vis *visitor) checkoutState {
	form := vis.flow.Form()

	var unlocked []int
	for step := checkout.StepCustomer; step <= checkout.StepPayment; step++ {
		if vis.flow.CanEnter(step) {
			unlocked = append(unlocked, int(step))
		}
	}

	return checkoutState{
		Step:           int(vis.flow.Step()),
		StepName:       vis.flow.Step().String(),
		Fields:         vis.flow.Step().Fields(),
		Unlocked:       unlocked,
		Status:         vis.flow.Status().String(),
		Customer:       form.Customer,
		Shipping:       form.Shipping,
		Errors:         vis.flow.Errors(),
		RedirectToCart: vis.flow.ShouldRedirectToCart(vis.store.Cart.IsEmpty()),
		Totals:         vis.store.Cart.GetCartTotals(),
	}
}

func (h *CheckoutHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	vis := h.visitors.load(r)
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: stateOf(vis)})
}

// UpdateField records an on-change value. With blur set, the field is validated too.
func (h *CheckoutHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vis := h.visitors.load(r)
	if err := vis.flow.SetField(req.Field, req.Value); err != nil {
		h.sendFlowError(w, err)
		return
	}
	if req.Blur {
		if _, err := vis.flow.BlurField(req.Field); err != nil {
			h.sendFlowError(w, err)
			return
		}
	}

	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: stateOf(vis)})
}

func (h *CheckoutHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	vis := h.visitors.load(r)
	err := vis.flow.NextStep()

	// Inline errors produced by a failed step are part of the visitor's state.
	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}
	if err != nil {
		h.sendFlowError(w, err)
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: stateOf(vis)})
}

func (h *CheckoutHandler) PrevStep(w http.ResponseWriter, r *http.Request) {
	vis := h.visitors.load(r)
	vis.flow.PrevStep()
	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: stateOf(vis)})
}

// Submit validates the payment step, waits out the processing delay and completes the
// order. Card details are used for the masked summary only and are never stored.
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	vis := h.visitors.load(r)
	if vis.store.Cart.IsEmpty() {
		utils.SendErrorResponseWithData(w, http.StatusConflict, "Your cart is empty",
			map[string]bool{"redirectToCart": true})
		return
	}

	payment := map[string]string{
		"cardHolder": req.PaymentInfo.CardHolder,
		"cardNumber": req.PaymentInfo.CardNumber,
		"expiryDate": req.PaymentInfo.ExpiryDate,
		"cvv":        req.PaymentInfo.CVV,
	}
	for field, value := range payment {
		if err := vis.flow.SetField(field, value); err != nil {
			h.sendFlowError(w, err)
			return
		}
	}

	var summary models.OrderSummary
	err := vis.flow.Submit(r.Context(), func(ctx context.Context, order models.OrderData) error {
		summary = vis.store.HandleOrderComplete(ctx, order)
		return nil
	})
	if err != nil {
		var stepErr *checkout.StepError
		if errors.As(err, &stepErr) {
			if !h.visitors.saveOrFail(w, r, vis) {
				return
			}
		}
		h.sendFlowError(w, err)
		return
	}

	if !h.visitors.saveOrFail(w, r, vis) {
		return
	}

	utils.SendJSON(w, http.StatusCreated, models.APIResponse{
		Status:  "success",
		Message: "Order placed successfully",
		Data:    submitResult{Order: summary},
	})
}

func (h *CheckoutHandler) sendFlowError(w http.ResponseWriter, err error) {
	var stepErr *checkout.StepError
	switch {
	case errors.As(err, &stepErr):
		utils.SendErrorResponseWithData(w, http.StatusUnprocessableEntity, stepErr.Error(), stepErr.Fields)
	case errors.Is(err, checkout.ErrUnknownField):
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrLastStep), errors.Is(err, checkout.ErrNotOnPaymentStep):
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrNotEditing):
		utils.SendErrorResponse(w, http.StatusConflict, "This order has already been submitted")
	default:
		h.logger.Error("checkout failed", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not process your order")
	}
}
