package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
)

const customerColumns = `id, name, email, phone, firm, address, status, created_at, updated_at`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*models.Customer, error) {
	customer := &models.Customer{}
	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&customer.Email,
		&customer.Phone,
		&customer.Firm,
		&customer.Address,
		&customer.Status,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return customer, nil
}

type CustomerParams struct {
	Name    string
	Email   string
	Phone   string
	Firm    string
	Address string
}

func CreateCustomer(ctx context.Context, db *sql.DB, p CustomerParams) (*models.Customer, error) {
	query := `
		INSERT INTO customers (name, email, phone, firm, address, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'active', NOW(), NOW())
		RETURNING ` + customerColumns

	customer, err := scanCustomer(db.QueryRowContext(ctx, query,
		p.Name, p.Email, p.Phone, p.Firm, p.Address))
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	return customer, nil
}

func GetCustomer(ctx context.Context, db *sql.DB, id int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`

	customer, err := scanCustomer(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}

	return customer, nil
}

func ListCustomers(ctx context.Context, db *sql.DB, search string, page, limit int) (*OffsetPage, error) {
	page, limit = NormalizePage(page, limit)

	pattern := "%" + search + "%"
	cond := `(name ILIKE $1 OR email ILIKE $1 OR phone ILIKE $1 OR firm ILIKE $1)`

	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE `+cond, pattern).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}

	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE ` + cond + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, query, pattern, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
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

	return newOffsetPage(customers, total, page, limit), nil
}

type UpdateCustomerParams struct {
	Name    *string
	Email   *string
	Phone   *string
	Firm    *string
	Address *string
	Status  *string
}

func UpdateCustomer(ctx context.Context, db *sql.DB, id int64, p UpdateCustomerParams) (*models.Customer, error) {
	current, err := GetCustomer(ctx, db, id)
	if err != nil {
		return nil, err
	}

	pick := func(field *string, fallback string) string {
		if field != nil {
			return *field
		}
		return fallback
	}

	query := `
		UPDATE customers
		SET name = $1, email = $2, phone = $3, firm = $4, address = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING ` + customerColumns

	customer, err := scanCustomer(db.QueryRowContext(ctx, query,
		pick(p.Name, current.Name),
		pick(p.Email, current.Email),
		pick(p.Phone, current.Phone),
		pick(p.Firm, current.Firm),
		pick(p.Address, current.Address),
		pick(p.Status, current.Status),
		id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}

	return customer, nil
}

// DeactivateCustomer flips the status flag; the row is kept so order
// history referencing the customer stays resolvable.
func DeactivateCustomer(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE customers SET status = 'inactive', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate customer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCustomerNotFound
	}

	return nil
}
