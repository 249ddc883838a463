package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/catalog"
	"storefront-api/utils"
)

type ProductHandler struct {
	catalog catalog.Catalog
	logger  *zap.Logger
}

func NewProductHandler(c catalog.Catalog, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{catalog: c, logger: logger}
}

func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	products, err := h.catalog.GetProducts(r.Context(), category)
	if err != nil {
		h.logger.Error("error listing products", zap.String("category", category), zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not load products")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: products})
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.catalog.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("error getting product", zap.String("product_id", id), zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not load product")
		return
	}

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: product})
}
