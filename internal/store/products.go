package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
)

const productColumns = `id, name, sku, mrp, wholesale_rate, stock, status, category_id, image, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.SKU,
		&product.MRP,
		&product.WholesaleRate,
		&product.Stock,
		&product.Status,
		&product.CategoryID,
		&product.Image,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

type CreateProductParams struct {
	Name          string
	SKU           string
	MRP           decimal.Decimal
	WholesaleRate decimal.Decimal
	Stock         int
	CategoryID    *int64
	Image         string
}

func CreateProduct(ctx context.Context, db *sql.DB, p CreateProductParams) (*models.Product, error) {
	query := `
		INSERT INTO products (name, sku, mrp, wholesale_rate, stock, status, category_id, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING ` + productColumns

	product, err := scanProduct(db.QueryRowContext(ctx, query,
		p.Name, p.SKU, p.MRP, p.WholesaleRate, p.Stock,
		models.ProductStatusActive, p.CategoryID, p.Image))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateSKU
		}
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

// GetProduct fetches by id regardless of status. Inactive products stay
// fetchable so historical order lines keep resolving.
func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

type ProductFilter struct {
	Query      string
	Status     string
	CategoryID *int64
}

func ListProducts(ctx context.Context, db *sql.DB, filter ProductFilter, page, limit int) (*OffsetPage, error) {
	page, limit = NormalizePage(page, limit)

	where := []string{"TRUE"}
	args := []interface{}{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", len(args), len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, cond, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(products, total, page, limit), nil
}

type UpdateProductParams struct {
	Name          *string
	SKU           *string
	MRP           *decimal.Decimal
	WholesaleRate *decimal.Decimal
	Stock         *int
	Status        *string
	CategoryID    *int64
	Image         *string
}

func UpdateProduct(ctx context.Context, db *sql.DB, id int64, p UpdateProductParams) (*models.Product, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.SKU != nil {
		add("sku", *p.SKU)
	}
	if p.MRP != nil {
		add("mrp", *p.MRP)
	}
	if p.WholesaleRate != nil {
		add("wholesale_rate", *p.WholesaleRate)
	}
	if p.Stock != nil {
		add("stock", *p.Stock)
	}
	if p.Status != nil {
		add("status", *p.Status)
	}
	if p.CategoryID != nil {
		add("category_id", *p.CategoryID)
	}
	if p.Image != nil {
		add("image", *p.Image)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), productColumns)

	product, err := scanProduct(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateSKU
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeactivateProduct is the soft delete: the row survives with
// status=inactive so existing order lines and carts keep their joins.
func DeactivateProduct(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE products SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.ProductStatusInactive, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

// DecrementStock reduces stock inside the caller's transaction; the
// WHERE clause keeps stock from going negative.
func DecrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET stock = stock - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND stock >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrInsufficientStock
	}

	return nil
}
