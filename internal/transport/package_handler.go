package transport

import (
	"errors"
	"net/http"

	"coffee-catalog/internal/middleware"
	"coffee-catalog/internal/repository"
	"coffee-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreatePackageRequest represents the package creation payload. Price is
// optional; when omitted it is derived from the product's price per kilogram.
type CreatePackageRequest struct {
	ProductID int64    `json:"productId" validate:"required,gt=0"`
	Weight    int      `json:"weight" validate:"required,gt=0"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// UpdatePackageRequest represents the package update payload; omitted fields
// keep their current value
type UpdatePackageRequest struct {
	ProductID *int64   `json:"productId,omitempty" validate:"omitempty,gt=0"`
	Weight    *int     `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Price     *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// WeightsResponse lists the distinct package weights in ascending order
type WeightsResponse struct {
	Weights []int `json:"weights"`
}

// PackageHandler handles HTTP requests for product package operations
type PackageHandler struct {
	packageService service.PackageService
	logger         *zap.Logger
}

// NewPackageHandler creates a new PackageHandler
func NewPackageHandler(packageService service.PackageService, logger *zap.Logger) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
		logger:         logger,
	}
}

// RegisterRoutes registers all package routes. Reads require authentication;
// mutations additionally require the admin role.
func (h *PackageHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/packages", func(r chi.Router) {
		r.Use(authMiddleware)

		r.Get("/", h.List)
		r.Get("/weights", h.Weights)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(adminMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// Create handles POST /api/packages
func (h *PackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePackageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondValidationFailure(w, err)
		return
	}

	pkg, err := h.packageService.Create(r.Context(), service.PackageInput{
		ProductID: req.ProductID,
		Weight:    req.Weight,
		Price:     req.Price,
	})
	if err != nil {
		h.respondServiceError(w, err, "Failed to create package")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, pkg)
}

// List handles GET /api/packages
func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	packages, err := h.packageService.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list packages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list packages")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, packages)
}

// Weights handles GET /api/packages/weights
func (h *PackageHandler) Weights(w http.ResponseWriter, r *http.Request) {
	weights, err := h.packageService.DistinctWeights(r.Context())
	if err != nil {
		h.logger.Error("Failed to list package weights", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list package weights")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, WeightsResponse{Weights: weights})
}

// Get handles GET /api/packages/{id}
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	pkg, err := h.packageService.Get(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "Failed to get package")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pkg)
}

// Update handles PUT /api/packages/{id}
func (h *PackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdatePackageRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.respondValidationFailure(w, err)
		return
	}

	pkg, err := h.packageService.Update(r.Context(), id, service.UpdatePackageInput{
		ProductID: req.ProductID,
		Weight:    req.Weight,
		Price:     req.Price,
	})
	if err != nil {
		h.respondServiceError(w, err, "Failed to update package")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, pkg)
}

// Delete handles DELETE /api/packages/{id}
func (h *PackageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.packageService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "Failed to delete package")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PackageHandler) respondValidationFailure(w http.ResponseWriter, err error) {
	validationErrors := middleware.FormatValidationErrors(err)
	if len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}
	middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
}

func (h *PackageHandler) respondServiceError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, repository.ErrPackageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product package not found")
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInvalidPackageWeight):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
