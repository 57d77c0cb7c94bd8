package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/models"
)

type TopProduct struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	UnitsOrdered int64           `json:"units_ordered"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// RecentCustomers returns the n most recently registered customers.
func RecentCustomers(ctx context.Context, db *sql.DB, n int) ([]models.Customer, error) {
	if n < 1 || n > 100 {
		n = 10
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("recent customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return customers, nil
}

// TopProducts ranks products by total ordered units across all order
// lines. Inactive products still show up — history is history.
func TopProducts(ctx context.Context, db *sql.DB, n int) ([]TopProduct, error) {
	if n < 1 || n > 100 {
		n = 10
	}

	rows, err := db.QueryContext(ctx,
		`SELECT p.id, p.name, p.sku,
		        COALESCE(SUM(ol.quantity), 0) AS units,
		        COALESCE(SUM(ol.price * ol.quantity), 0) AS revenue
		 FROM order_lines ol
		 JOIN products p ON p.id = ol.product_id
		 GROUP BY p.id, p.name, p.sku
		 ORDER BY units DESC, p.id
		 LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var top []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.SKU, &tp.UnitsOrdered, &tp.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		top = append(top, tp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return top, nil
}
