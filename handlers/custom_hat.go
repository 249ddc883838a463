package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"storefront-api/models"
	"storefront-api/services/customizer"
	"storefront-api/utils"
)

type customizerCheckRequest struct {
	CustomText string `json:"customText"`
	Quantity   int    `json:"quantity"`
}

type customizerCheckResponse struct {
	Accepted    bool                   `json:"accepted"`
	Valid       bool                   `json:"valid"`
	CharCount   int                    `json:"charCount"`
	WordCount   int                    `json:"wordCount"`
	MaxChars    int                    `json:"maxChars"`
	MaxWords    int                    `json:"maxWords"`
	MinQuantity int                    `json:"minQuantity"`
	Violations  []customizer.Violation `json:"violations"`
}

// CheckCustomText is the live configurator check. accepted=false means the keystroke
// that produced customText should be rejected; valid reports the full submit-time rules.
func (h *CartHandler) CheckCustomText(w http.ResponseWriter, r *http.Request) {
	var req customizerCheckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp := customizerCheckResponse{
		Accepted:    h.rules.AcceptText(req.CustomText),
		Valid:       true,
		CharCount:   utf8.RuneCountInString(req.CustomText),
		WordCount:   customizer.WordCount(req.CustomText),
		MaxChars:    h.rules.MaxChars,
		MaxWords:    h.rules.MaxWords,
		MinQuantity: h.rules.MinQuantity,
		Violations:  []customizer.Violation{},
	}

	var violations customizer.ValidationErrors
	if err := h.rules.Validate(req.CustomText, req.Quantity); errors.As(err, &violations) {
		resp.Valid = false
		resp.Violations = violations
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: resp})
}

// AddCustomHat validates the configurator rules and adds a custom hat line.
func (h *CartHandler) AddCustomHat(w http.ResponseWriter, r *http.Request) {
	var req models.CustomHatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.rules.Validate(req.CustomText, req.Quantity); err != nil {
		sendCustomizerErrors(w, err)
		return
	}

	productID := strings.TrimSpace(req.ProductID)
	if productID == "" {
		productID = models.CustomHatProductID
	}

	h.add(w, r, productID, req.Quantity, models.CustomHatCustomization{
		Font:       strings.TrimSpace(req.Font),
		Color:      strings.TrimSpace(req.Color),
		CustomText: strings.TrimSpace(req.CustomText),
	})
}
