package domain

import (
	"time"
)

// SaleType determines how a product's stock is counted: discrete units
// or grams consumed by fixed-weight packages.
type SaleType string

const (
	SaleTypeUnit     SaleType = "unit"
	SaleTypePackaged SaleType = "packaged"
)

// Valid reports whether the sale type is one of the known values
func (s SaleType) Valid() bool {
	return s == SaleTypeUnit || s == SaleTypePackaged
}

// Product represents a product in the catalog. Stock is expressed in units
// for unit sales and in grams for packaged sales.
type Product struct {
	ID          int64            `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	Description string           `json:"description" db:"description"`
	Origin      string           `json:"origin" db:"origin"`
	Variety     string           `json:"variety" db:"variety"`
	Process     string           `json:"process" db:"process"`
	RoastLevel  string           `json:"roastLevel" db:"roast_level"`
	Category    string           `json:"category" db:"category"`
	SaleType    SaleType         `json:"saleType" db:"sale_type"`
	Stock       int              `json:"stock" db:"stock"`
	PricePerKg  float64          `json:"pricePerKg" db:"price_per_kg"`
	Packages    []ProductPackage `json:"packages,omitempty"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time        `json:"updatedAt" db:"updated_at"`
}

// FindPackage returns the package with the given id, or nil if the product
// owns no such package.
func (p *Product) FindPackage(packageID int64) *ProductPackage {
	for i := range p.Packages {
		if p.Packages[i].ID == packageID {
			return &p.Packages[i]
		}
	}
	return nil
}

// ProductPackage is a fixed-weight package a packaged product is sold in.
type ProductPackage struct {
	ID        int64   `json:"id" db:"id"`
	ProductID int64   `json:"productId" db:"product_id"`
	Weight    int     `json:"weight" db:"weight"`
	Price     float64 `json:"price" db:"price"`
}
