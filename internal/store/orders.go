package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
)

const orderColumns = `id, customer_id, customer_name, total_amount, currency, payment, status, address, order_date, delivery_date, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.CustomerName,
		&order.TotalAmount,
		&order.Currency,
		&order.Payment,
		&order.Status,
		&order.Address,
		&order.OrderDate,
		&order.DeliveryDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

type OrderLineParams struct {
	ProductID  int64
	CategoryID *int64
	Quantity   int
	Price      decimal.Decimal
}

type CreateOrderParams struct {
	CustomerID   int64
	TotalAmount  *decimal.Decimal
	Currency     string
	Status       string
	Address      string
	OrderDate    *time.Time
	DeliveryDate *time.Time
	Items        []OrderLineParams
}

type CreateOrderResult struct {
	Order      *models.Order
	ItemsSaved int
}

// CreateOrder persists the header and every valid line in one
// transaction. Lines with product_id <= 0 are dropped before the
// transaction starts; a failure on any remaining line aborts the whole
// order. The customer need not exist — its name snapshot defaults to ""
// — but the id must be positive.
func CreateOrder(ctx context.Context, db *sql.DB, p CreateOrderParams) (*CreateOrderResult, error) {
	if p.CustomerID <= 0 {
		return nil, database.ErrInvalidCustomer
	}

	valid := make([]OrderLineParams, 0, len(p.Items))
	for _, item := range p.Items {
		if item.ProductID > 0 {
			valid = append(valid, item)
		}
	}

	status := p.Status
	if !models.ValidOrderStatus(status) {
		status = models.OrderStatusPending
	}

	currency := p.Currency
	if currency == "" {
		currency = "INR"
	}

	var total decimal.Decimal
	if p.TotalAmount != nil {
		// Caller-supplied totals are stored as-is, not reconciled against
		// the lines.
		total = *p.TotalAmount
	} else {
		for _, item := range valid {
			total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var customerName string
		err := tx.QueryRowContext(ctx,
			`SELECT name FROM customers WHERE id = $1`, p.CustomerID).Scan(&customerName)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("lookup customer: %w", err)
		}

		order, err = scanOrder(tx.QueryRowContext(ctx,
			`INSERT INTO orders (customer_id, customer_name, total_amount, currency, payment, status, address, order_date, delivery_date, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
			 RETURNING `+orderColumns,
			p.CustomerID, customerName, total, currency, models.PaymentPending,
			status, p.Address, p.OrderDate, p.DeliveryDate))
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if err := insertOrderLines(ctx, tx, order.ID, valid); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateOrderResult{Order: order, ItemsSaved: len(valid)}, nil
}

func insertOrderLines(ctx context.Context, tx *sql.Tx, orderID int64, items []OrderLineParams) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO order_lines (order_id, product_id, category_id, quantity, price, created_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())`,
			orderID, item.ProductID, item.CategoryID, item.Quantity, item.Price)
		if err != nil {
			return fmt.Errorf("create order line (product %d): %w", item.ProductID, err)
		}

		if err := DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return fmt.Errorf("product %d: %w", item.ProductID, err)
		}
	}
	return nil
}

// restoreOrderLineStock gives back the stock held by the order's current
// lines before a wholesale item replacement.
func restoreOrderLineStock(ctx context.Context, tx *sql.Tx, orderID int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE products p
		 SET stock = p.stock + ol.quantity,
		     updated_at = NOW()
		 FROM order_lines ol
		 WHERE ol.order_id = $1 AND ol.product_id = p.id`,
		orderID)
	if err != nil {
		return fmt.Errorf("restore stock: %w", err)
	}
	return nil
}

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order, err := scanOrder(db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := getOrderLines(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func getOrderLines(ctx context.Context, db *sql.DB, orderID int64) ([]models.OrderLine, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, order_id, product_id, category_id, quantity, price, created_at
		 FROM order_lines
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID)
	if err != nil {
		return nil, fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var items []models.OrderLine
	for rows.Next() {
		var item models.OrderLine
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.CategoryID,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		item.DeriveSubtotal()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

type OrderFilter struct {
	Query  string
	Status string
}

func ListOrders(ctx context.Context, db *sql.DB, filter OrderFilter, page, limit int) (*OffsetPage, error) {
	page, limit = NormalizePage(page, limit)

	where := []string{"TRUE"}
	args := []interface{}{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf("customer_name ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	cond := strings.Join(where, " AND ")

	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE `+cond, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	args = append(args, limit, (page-1)*limit)
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, cond, len(args)-1, len(args))

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(orders, total, page, limit), nil
}

// ListOrdersByCustomerCursor pages a customer's order history by keyset,
// newest first. Used by the storefront "my orders" view.
func ListOrdersByCustomerCursor(ctx context.Context, db *sql.DB, customerID int64, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	if limit < 1 || limit > 200 {
		limit = 20
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, customerID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &CursorPage{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

type UpdateOrderParams struct {
	Payment      *string
	Status       *string
	TotalAmount  *decimal.Decimal
	Currency     *string
	Address      *string
	OrderDate    *time.Time
	DeliveryDate *time.Time
	Items        *[]OrderLineParams
}

// UpdateOrder applies a partial update. A Status value that names a
// payment state (paid/pending/failed) is routed to the payment column and
// leaves the order status untouched; the admin console has always relied
// on that overload. Items, when present, replace the line set wholesale.
func UpdateOrder(ctx context.Context, db *sql.DB, id int64, p UpdateOrderParams) (*models.Order, error) {
	set := []string{"updated_at = NOW()"}
	args := []interface{}{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if p.Payment != nil && models.ValidPaymentState(*p.Payment) {
		add("payment", *p.Payment)
	}
	if p.Status != nil {
		switch {
		case models.ValidPaymentState(*p.Status):
			add("payment", *p.Status)
		case models.ValidOrderStatus(*p.Status):
			add("status", *p.Status)
		}
	}
	if p.TotalAmount != nil {
		add("total_amount", *p.TotalAmount)
	}
	if p.Currency != nil {
		add("currency", *p.Currency)
	}
	if p.Address != nil {
		add("address", *p.Address)
	}
	if p.OrderDate != nil {
		add("order_date", *p.OrderDate)
	}
	if p.DeliveryDate != nil {
		add("delivery_date", *p.DeliveryDate)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), orderColumns)

	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var err error
		order, err = scanOrder(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("update order: %w", err)
		}

		if p.Items == nil {
			return nil
		}

		valid := make([]OrderLineParams, 0, len(*p.Items))
		for _, item := range *p.Items {
			if item.ProductID > 0 {
				valid = append(valid, item)
			}
		}

		if err := restoreOrderLineStock(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM order_lines WHERE order_id = $1`, id); err != nil {
			return fmt.Errorf("delete order lines: %w", err)
		}
		if err := insertOrderLines(ctx, tx, id, valid); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Items, err = getOrderLines(ctx, db, id)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CancelOrder is the DELETE semantics for orders: never a row removal,
// only a status flip.
func CancelOrder(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.OrderStatusCancelled, id)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrOrderNotFound
	}

	return nil
}

// AllOrders streams every order header, oldest first, for CSV export.
func AllOrders(ctx context.Context, db *sql.DB) ([]models.Order, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("export orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}
