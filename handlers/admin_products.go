package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"storefront-api/middleware"
	"storefront-api/models"
	"storefront-api/services/catalog"
	"storefront-api/utils"
)

// ProductAdmin is the writable side of the catalog.
type ProductAdmin interface {
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
	SaveProduct(ctx context.Context, p models.Product) error
	SoftDeleteProduct(ctx context.Context, id string) error
}

type AdminProductHandler struct {
	products ProductAdmin
	logger   *zap.Logger
}

func NewAdminProductHandler(products ProductAdmin, logger *zap.Logger) *AdminProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminProductHandler{products: products, logger: logger}
}

func (h *AdminProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.GetProducts(r.Context(), strings.TrimSpace(r.URL.Query().Get("category")))
	if err != nil {
		h.logger.Error("error listing products", zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not load products")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: products})
}

// SaveProduct creates or replaces a product. The path id wins over the body id.
func (h *AdminProductHandler) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req models.ProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if id, ok := mux.Vars(r)["id"]; ok {
		req.ID = id
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)

	if req.ID == models.CustomHatProductID {
		utils.SendErrorResponse(w, http.StatusBadRequest, "The custom hat product is managed by configuration")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.SendErrorResponseWithData(w, http.StatusBadRequest, "Invalid product", validationMessages(err))
		return
	}

	product := req.Product()
	if err := h.products.SaveProduct(r.Context(), product); err != nil {
		h.logger.Error("error saving product", zap.String("product_id", product.ID), zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not save product")
		return
	}

	h.logger.Info("product saved", zap.String("product_id", product.ID), zap.String("by", adminName(r)))

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Product saved",
		Data:    product,
	})
}

func (h *AdminProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.products.SoftDeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			utils.SendErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("error deleting product", zap.String("product_id", id), zap.Error(err))
		utils.SendErrorResponse(w, http.StatusInternalServerError, "Could not delete product")
		return
	}

	h.logger.Info("product deleted", zap.String("product_id", id), zap.String("by", adminName(r)))

	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Message: "Product deleted"})
}

func adminName(r *http.Request) string {
	if user := middleware.GetUserFromContext(r.Context()); user != nil {
		return user.Username
	}
	return ""
}

// validationMessages maps each failing field to the tag it failed.
func validationMessages(err error) map[string]string {
	out := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}
