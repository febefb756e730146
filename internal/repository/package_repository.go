package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coffee-catalog/internal/domain"
)

var (
	ErrPackageNotFound = errors.New("product package not found")
)

// PackageRepository defines the interface for product package data access
type PackageRepository interface {
	Create(ctx context.Context, pkg *domain.ProductPackage) error
	Update(ctx context.Context, pkg *domain.ProductPackage) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*domain.ProductPackage, error)
	FindByProductAndID(ctx context.Context, productID, packageID int64) (*domain.ProductPackage, error)
	List(ctx context.Context) ([]*domain.ProductPackage, error)
	DistinctWeights(ctx context.Context) ([]int, error)
}

type packageRepository struct {
	db *sql.DB
}

// NewPackageRepository creates a new instance of PackageRepository
func NewPackageRepository(db *sql.DB) PackageRepository {
	return &packageRepository{db: db}
}

// Create inserts a new product package using parameterized queries. The
// generated id is written back to the package.
func (r *packageRepository) Create(ctx context.Context, pkg *domain.ProductPackage) error {
	query := `
		INSERT INTO product_packages (product_id, weight, price)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		pkg.ProductID,
		pkg.Weight,
		pkg.Price,
	).Scan(&pkg.ID)

	if err != nil {
		return fmt.Errorf("failed to create product package: %w", err)
	}

	return nil
}

// Update updates an existing product package using parameterized queries
func (r *packageRepository) Update(ctx context.Context, pkg *domain.ProductPackage) error {
	query := `
		UPDATE product_packages
		SET product_id = $2, weight = $3, price = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, pkg.ID, pkg.ProductID, pkg.Weight, pkg.Price)
	if err != nil {
		return fmt.Errorf("failed to update product package: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPackageNotFound
	}

	return nil
}

// Delete removes a product package from the database
func (r *packageRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM product_packages WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product package: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrPackageNotFound
	}

	return nil
}

// FindByID retrieves a product package by ID using parameterized queries
func (r *packageRepository) FindByID(ctx context.Context, id int64) (*domain.ProductPackage, error) {
	query := `
		SELECT id, product_id, weight, price
		FROM product_packages
		WHERE id = $1
	`

	pkg := &domain.ProductPackage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&pkg.ID,
		&pkg.ProductID,
		&pkg.Weight,
		&pkg.Price,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to find product package by ID: %w", err)
	}

	return pkg, nil
}

// FindByProductAndID retrieves a package that belongs to the given product
func (r *packageRepository) FindByProductAndID(ctx context.Context, productID, packageID int64) (*domain.ProductPackage, error) {
	query := `
		SELECT id, product_id, weight, price
		FROM product_packages
		WHERE id = $1 AND product_id = $2
	`

	pkg := &domain.ProductPackage{}
	err := r.db.QueryRowContext(ctx, query, packageID, productID).Scan(
		&pkg.ID,
		&pkg.ProductID,
		&pkg.Weight,
		&pkg.Price,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrPackageNotFound
		}
		return nil, fmt.Errorf("failed to find package by product and ID: %w", err)
	}

	return pkg, nil
}

// List retrieves all product packages
func (r *packageRepository) List(ctx context.Context) ([]*domain.ProductPackage, error) {
	query := `
		SELECT id, product_id, weight, price
		FROM product_packages
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list product packages: %w", err)
	}
	defer rows.Close()

	packages := []*domain.ProductPackage{}
	for rows.Next() {
		pkg := &domain.ProductPackage{}
		err := rows.Scan(&pkg.ID, &pkg.ProductID, &pkg.Weight, &pkg.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product package: %w", err)
		}
		packages = append(packages, pkg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product packages: %w", err)
	}

	return packages, nil
}

// DistinctWeights returns the distinct package weights in ascending order
func (r *packageRepository) DistinctWeights(ctx context.Context) ([]int, error) {
	query := `
		SELECT DISTINCT weight
		FROM product_packages
		ORDER BY weight ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct weights: %w", err)
	}
	defer rows.Close()

	weights := []int{}
	for rows.Next() {
		var weight int
		if err := rows.Scan(&weight); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		weights = append(weights, weight)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weights: %w", err)
	}

	return weights, nil
}
