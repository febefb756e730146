package service

import (
	"context"
	"errors"
	"fmt"

	"coffee-catalog/internal/domain"
	"coffee-catalog/internal/repository"
)

var (
	ErrInvalidSaleType = errors.New("sale type must be 'unit' or 'packaged'")
	ErrNegativeStock   = errors.New("stock cannot be negative")
)

// ProductPackageInput is a nested package definition on product creation.
// A nil Price requests derivation from the product's price per kilogram.
type ProductPackageInput struct {
	Weight int
	Price  *float64
}

// CreateProductInput carries the fields for creating a product
type CreateProductInput struct {
	Name        string
	Description string
	Origin      string
	Variety     string
	Process     string
	RoastLevel  string
	Category    string
	SaleType    domain.SaleType
	Stock       int
	PricePerKg  float64
	Packages    []ProductPackageInput
}

// UpdateProductInput carries the fields for a partial product update; nil
// fields keep their current value.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Origin      *string
	Variety     *string
	Process     *string
	RoastLevel  *string
	Category    *string
	SaleType    *domain.SaleType
	Stock       *int
	PricePerKg  *float64
}

// ProductService defines the interface for product business logic
type ProductService interface {
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	products repository.ProductRepository
	packages PackageService
}

// NewProductService creates a new instance of ProductService
func NewProductService(products repository.ProductRepository, packages PackageService) ProductService {
	return &productService{
		products: products,
		packages: packages,
	}
}

// Create stores a new product. For packaged products the nested packages are
// created as well, deriving prices where none was supplied. Returns the
// product with its packages loaded.
func (s *productService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	if !input.SaleType.Valid() {
		return nil, ErrInvalidSaleType
	}
	if input.Stock < 0 {
		return nil, ErrNegativeStock
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Origin:      input.Origin,
		Variety:     input.Variety,
		Process:     input.Process,
		RoastLevel:  input.RoastLevel,
		Category:    input.Category,
		SaleType:    input.SaleType,
		Stock:       input.Stock,
		PricePerKg:  input.PricePerKg,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	if product.SaleType == domain.SaleTypePackaged {
		for _, pkgInput := range input.Packages {
			_, err := s.packages.Create(ctx, PackageInput{
				ProductID: product.ID,
				Weight:    pkgInput.Weight,
				Price:     pkgInput.Price,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to create nested package: %w", err)
			}
		}
	}

	return s.products.FindByID(ctx, product.ID, true)
}

// Get retrieves a product with its packages
func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id, true)
}

// List retrieves products with pagination, packages included
func (s *productService) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return s.products.List(ctx, page, pageSize)
}

// Update applies the provided fields to an existing product
func (s *productService) Update(ctx context.Context, id int64, input UpdateProductInput) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Origin != nil {
		product.Origin = *input.Origin
	}
	if input.Variety != nil {
		product.Variety = *input.Variety
	}
	if input.Process != nil {
		product.Process = *input.Process
	}
	if input.RoastLevel != nil {
		product.RoastLevel = *input.RoastLevel
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.SaleType != nil {
		if !input.SaleType.Valid() {
			return nil, ErrInvalidSaleType
		}
		product.SaleType = *input.SaleType
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, ErrNegativeStock
		}
		product.Stock = *input.Stock
	}
	if input.PricePerKg != nil {
		product.PricePerKg = *input.PricePerKg
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	return s.products.FindByID(ctx, id, true)
}

// Delete removes a product and its packages
func (s *productService) Delete(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}
