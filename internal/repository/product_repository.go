package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coffee-catalog/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64, includePackages bool) (*domain.Product, error)
	List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error)
	Save(ctx context.Context, product *domain.Product) error
	DecrementStock(ctx context.Context, id int64, amount int) (bool, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create inserts a new product into the database using parameterized queries.
// The generated id and timestamps are written back to the product.
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, origin, variety, process, roast_level, category, sale_type, stock, price_per_kg)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Origin,
		product.Variety,
		product.Process,
		product.RoastLevel,
		product.Category,
		product.SaleType,
		product.Stock,
		product.PricePerKg,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update updates an existing product in the database using parameterized queries
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, origin = $4, variety = $5, process = $6,
		    roast_level = $7, category = $8, sale_type = $9, stock = $10,
		    price_per_kg = $11, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Origin,
		product.Variety,
		product.Process,
		product.RoastLevel,
		product.Category,
		product.SaleType,
		product.Stock,
		product.PricePerKg,
	)

	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product from the database. Owned packages are removed by
// the cascade on product_packages.
func (r *productRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID, optionally loading its packages
func (r *productRepository) FindByID(ctx context.Context, id int64, includePackages bool) (*domain.Product, error) {
	query := `
		SELECT id, name, description, origin, variety, process, roast_level, category, sale_type, stock, price_per_kg, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &domain.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Origin,
		&product.Variety,
		&product.Process,
		&product.RoastLevel,
		&product.Category,
		&product.SaleType,
		&product.Stock,
		&product.PricePerKg,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if includePackages {
		packages, err := r.loadPackages(ctx, product.ID)
		if err != nil {
			return nil, err
		}
		product.Packages = packages
	}

	return product, nil
}

// List retrieves products with pagination, packages included
func (r *productRepository) List(ctx context.Context, page, pageSize int) ([]*domain.Product, int, error) {
	countQuery := `SELECT COUNT(*) FROM products`
	var total int
	err := r.db.QueryRowContext(ctx, countQuery).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * pageSize

	query := `
		SELECT id, name, description, origin, variety, process, roast_level, category, sale_type, stock, price_per_kg, created_at, updated_at
		FROM products
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Description,
			&product.Origin,
			&product.Variety,
			&product.Process,
			&product.RoastLevel,
			&product.Category,
			&product.SaleType,
			&product.Stock,
			&product.PricePerKg,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	for _, product := range products {
		packages, err := r.loadPackages(ctx, product.ID)
		if err != nil {
			return nil, 0, err
		}
		product.Packages = packages
	}

	return products, total, nil
}

// Save persists the product's current in-memory state, including stock
func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.Update(ctx, product)
}

// DecrementStock atomically decrements a product's stock by amount, but only
// when the remaining stock suffices. It returns false when stock was
// insufficient or the product does not exist. The sufficiency check and the
// write happen in a single statement, so concurrent reservations against the
// same product cannot both consume the same stock or drive it negative.
func (r *productRepository) DecrementStock(ctx context.Context, id int64, amount int) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return false, fmt.Errorf("failed to decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// loadPackages fetches the packages owned by a product, ordered by id
func (r *productRepository) loadPackages(ctx context.Context, productID int64) ([]domain.ProductPackage, error) {
	query := `
		SELECT id, product_id, weight, price
		FROM product_packages
		WHERE product_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	defer rows.Close()

	packages := []domain.ProductPackage{}
	for rows.Next() {
		pkg := domain.ProductPackage{}
		if err := rows.Scan(&pkg.ID, &pkg.ProductID, &pkg.Weight, &pkg.Price); err != nil {
			return nil, fmt.Errorf("failed to scan package: %w", err)
		}
		packages = append(packages, pkg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating packages: %w", err)
	}

	return packages, nil
}
