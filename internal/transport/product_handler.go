package transport

import (
	"errors"
	"net/http"
	"strconv"

	"coffee-catalog/internal/domain"
	"coffee-catalog/internal/middleware"
	"coffee-catalog/internal/repository"
	"coffee-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PackageRequest represents a nested package in a product create request
type PackageRequest struct {
	Weight int      `json:"weight" validate:"required,gt=0"`
	Price  *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description" validate:"max=255"`
	Origin      string           `json:"origin" validate:"max=255"`
	Variety     string           `json:"variety" validate:"max=255"`
	Process     string           `json:"process" validate:"max=255"`
	RoastLevel  string           `json:"roastLevel" validate:"max=255"`
	Category    string           `json:"category" validate:"max=255"`
	SaleType    string           `json:"saleType" validate:"required,oneof=unit packaged"`
	Stock       int              `json:"stock" validate:"gte=0"`
	PricePerKg  float64          `json:"pricePerKg" validate:"required,gt=0"`
	Packages    []PackageRequest `json:"packages" validate:"dive"`
}

// UpdateProductRequest represents the product update payload; omitted fields
// keep their current value
type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=255"`
	Origin      *string  `json:"origin,omitempty" validate:"omitempty,max=255"`
	Variety     *string  `json:"variety,omitempty" validate:"omitempty,max=255"`
	Process     *string  `json:"process,omitempty" validate:"omitempty,max=255"`
	RoastLevel  *string  `json:"roastLevel,omitempty" validate:"omitempty,max=255"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,max=255"`
	SaleType    *string  `json:"saleType,omitempty" validate:"omitempty,oneof=unit packaged"`
	Stock       *int     `json:"stock,omitempty" validate:"omitempty,gte=0"`
	PricePerKg  *float64 `json:"pricePerKg,omitempty" validate:"omitempty,gt=0"`
}

// ListProductsResponse represents a paginated product listing
type ListProductsResponse struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Reads require authentication;
// mutations additionally require the admin role.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondValidationFailure(w, err)
		return
	}

	input := service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Origin:      req.Origin,
		Variety:     req.Variety,
		Process:     req.Process,
		RoastLevel:  req.RoastLevel,
		Category:    req.Category,
		SaleType:    domain.SaleType(req.SaleType),
		Stock:       req.Stock,
		PricePerKg:  req.PricePerKg,
	}
	for _, pkg := range req.Packages {
		input.Packages = append(input.Packages, service.ProductPackageInput{
			Weight: pkg.Weight,
			Price:  pkg.Price,
		})
	}

	product, err := h.productService.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, err, "Failed to create product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// List handles GET /api/products with page/limit query parameters
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	products, total, err := h.productService.List(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ListProductsResponse{
		Products: products,
		Total:    total,
		Page:     page,
		Limit:    limit,
	})
}

// Get handles GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondValidationFailure(w, err)
		return
	}

	input := service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Origin:      req.Origin,
		Variety:     req.Variety,
		Process:     req.Process,
		RoastLevel:  req.RoastLevel,
		Category:    req.Category,
		Stock:       req.Stock,
		PricePerKg:  req.PricePerKg,
	}
	if req.SaleType != nil {
		saleType := domain.SaleType(*req.SaleType)
		input.SaleType = &saleType
	}

	product, err := h.productService.Update(r.Context(), id, input)
	if err != nil {
		h.respondServiceError(w, err, "Failed to update product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "Failed to delete product")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) respondValidationFailure(w http.ResponseWriter, err error) {
	validationErrors := middleware.FormatValidationErrors(err)
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func (h *ProductHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInvalidSaleType),
		errors.Is(err, service.ErrNegativeStock),
		errors.Is(err, service.ErrInvalidPackageWeight):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// pathID parses the {id} path parameter, writing a 400 response on failure
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryInt parses a positive integer query parameter, falling back to def
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return def
	}
	return value
}
