package service

import (
	"context"
	"errors"
	"fmt"

	"coffee-catalog/internal/domain"
	"coffee-catalog/internal/repository"
)

var (
	ErrInvalidPackageWeight = errors.New("package weight must be positive")
)

// PackageInput carries the fields for creating a product package. A nil
// Price requests derivation from the product's price per kilogram.
type PackageInput struct {
	ProductID int64
	Weight    int
	Price     *float64
}

// UpdatePackageInput carries the fields for a partial package update; nil
// fields keep their current value.
type UpdatePackageInput struct {
	ProductID *int64
	Weight    *int
	Price     *float64
}

// PackageService defines the interface for product package business logic
type PackageService interface {
	Create(ctx context.Context, input PackageInput) (*domain.ProductPackage, error)
	Get(ctx context.Context, id int64) (*domain.ProductPackage, error)
	List(ctx context.Context) ([]*domain.ProductPackage, error)
	Update(ctx context.Context, id int64, input UpdatePackageInput) (*domain.ProductPackage, error)
	Delete(ctx context.Context, id int64) error
	DistinctWeights(ctx context.Context) ([]int, error)
}

type packageService struct {
	packages repository.PackageRepository
	products repository.ProductRepository
}

// NewPackageService creates a new instance of PackageService
func NewPackageService(packages repository.PackageRepository, products repository.ProductRepository) PackageService {
	return &packageService{
		packages: packages,
		products: products,
	}
}

// Create stores a new package. When no explicit price is supplied the price
// is derived from the referenced product; a missing product surfaces as
// repository.ErrProductNotFound to the caller.
func (s *packageService) Create(ctx context.Context, input PackageInput) (*domain.ProductPackage, error) {
	if input.Weight <= 0 {
		return nil, ErrInvalidPackageWeight
	}

	price := 0.0
	if input.Price != nil {
		price = *input.Price
	} else {
		derived, err := s.derivePrice(ctx, input.Weight, input.ProductID)
		if err != nil {
			return nil, err
		}
		price = derived
	}

	pkg := &domain.ProductPackage{
		ProductID: input.ProductID,
		Weight:    input.Weight,
		Price:     price,
	}

	if err := s.packages.Create(ctx, pkg); err != nil {
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	return pkg, nil
}

// Get retrieves a package by ID
func (s *packageService) Get(ctx context.Context, id int64) (*domain.ProductPackage, error) {
	return s.packages.FindByID(ctx, id)
}

// List retrieves all packages
func (s *packageService) List(ctx context.Context) ([]*domain.ProductPackage, error) {
	return s.packages.List(ctx)
}

// Update applies the provided fields to an existing package. An explicitly
// stored price is never re-derived.
func (s *packageService) Update(ctx context.Context, id int64, input UpdatePackageInput) (*domain.ProductPackage, error) {
	pkg, err := s.packages.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ProductID != nil {
		pkg.ProductID = *input.ProductID
	}
	if input.Weight != nil {
		if *input.Weight <= 0 {
			return nil, ErrInvalidPackageWeight
		}
		pkg.Weight = *input.Weight
	}
	if input.Price != nil {
		pkg.Price = *input.Price
	}

	if err := s.packages.Update(ctx, pkg); err != nil {
		return nil, err
	}

	return pkg, nil
}

// Delete removes a package by ID
func (s *packageService) Delete(ctx context.Context, id int64) error {
	return s.packages.Delete(ctx, id)
}

// DistinctWeights returns all distinct package weights in ascending order
func (s *packageService) DistinctWeights(ctx context.Context) ([]int, error) {
	return s.packages.DistinctWeights(ctx)
}

// derivePrice computes a package price from the referenced product's price
// per kilogram: weight (grams) x pricePerKg / 1000. The product must exist.
func (s *packageService) derivePrice(ctx context.Context, weight int, productID int64) (float64, error) {
	product, err := s.products.FindByID(ctx, productID, false)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return 0, fmt.Errorf("cannot derive package price: %w", err)
		}
		return 0, fmt.Errorf("failed to load product for price derivation: %w", err)
	}

	return float64(weight) * product.PricePerKg / 1000, nil
}
