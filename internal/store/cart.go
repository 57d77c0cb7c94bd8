package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
)

type OwnerKind string

const (
	OwnerCustomer OwnerKind = "customer"
	OwnerSession  OwnerKind = "session"
)

// OwnerRef identifies who a cart belongs to: a signed-in customer or an
// anonymous session. Exactly one of the two; callers resolving both
// prefer the customer.
type OwnerRef struct {
	Kind OwnerKind
	Key  string
}

func CustomerOwner(id int64) OwnerRef {
	return OwnerRef{Kind: OwnerCustomer, Key: strconv.FormatInt(id, 10)}
}

func SessionOwner(token string) OwnerRef {
	return OwnerRef{Kind: OwnerSession, Key: token}
}

// AddCartLine merges quantity into the (owner, product) line, creating it
// with a price snapshot of the product's current wholesale rate. A merge
// never renegotiates the snapshot.
func AddCartLine(ctx context.Context, db *sql.DB, owner OwnerRef, productID int64, quantity int) (*models.CartLine, error) {
	if quantity < 1 {
		return nil, database.ErrInvalidQuantity
	}

	line := &models.CartLine{ProductID: productID}

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var price string
		err := tx.QueryRowContext(ctx,
			`SELECT wholesale_rate FROM products WHERE id = $1`,
			productID).Scan(&price)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrProductNotFound
			}
			return fmt.Errorf("snapshot price: %w", err)
		}

		err = tx.QueryRowContext(ctx,
			`INSERT INTO cart_lines (owner_kind, owner_key, product_id, quantity, price, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			 ON CONFLICT (owner_kind, owner_key, product_id)
			 DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity,
			               updated_at = NOW()
			 RETURNING id, quantity, price, created_at, updated_at`,
			owner.Kind, owner.Key, productID, quantity, price).Scan(
			&line.ID,
			&line.Quantity,
			&line.Price,
			&line.CreatedAt,
			&line.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert cart line: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return line, nil
}

// SetCartQuantity overwrites the line's quantity. Zero deletes the line,
// negative is rejected.
func SetCartQuantity(ctx context.Context, db *sql.DB, owner OwnerRef, productID int64, quantity int) error {
	if quantity < 0 {
		return database.ErrInvalidQuantity
	}

	if quantity == 0 {
		return RemoveCartLine(ctx, db, owner, productID)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE cart_lines
		 SET quantity = $1, updated_at = NOW()
		 WHERE owner_kind = $2 AND owner_key = $3 AND product_id = $4`,
		quantity, owner.Kind, owner.Key, productID)
	if err != nil {
		return fmt.Errorf("set cart quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCartLineNotFound
	}

	return nil
}

func RemoveCartLine(ctx context.Context, db *sql.DB, owner OwnerRef, productID int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM cart_lines
		 WHERE owner_kind = $1 AND owner_key = $2 AND product_id = $3`,
		owner.Kind, owner.Key, productID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCartLineNotFound
	}

	return nil
}

func ClearCart(ctx context.Context, db *sql.DB, owner OwnerRef) error {
	_, err := db.ExecContext(ctx,
		`DELETE FROM cart_lines WHERE owner_kind = $1 AND owner_key = $2`,
		owner.Kind, owner.Key)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// ListCart joins each line with the product's live columns. Lines whose
// product has since gone inactive or out of stock are returned as-is;
// filtering them is a display concern.
func ListCart(ctx context.Context, db *sql.DB, owner OwnerRef) ([]models.CartLine, error) {
	query := `
		SELECT cl.id, cl.product_id, cl.quantity, cl.price, cl.created_at, cl.updated_at,
		       p.name, p.sku, p.stock, p.status, p.category_id
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.owner_kind = $1 AND cl.owner_key = $2
		ORDER BY cl.created_at`

	rows, err := db.QueryContext(ctx, query, owner.Kind, owner.Key)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	defer rows.Close()

	var lines []models.CartLine
	for rows.Next() {
		var line models.CartLine
		err := rows.Scan(
			&line.ID,
			&line.ProductID,
			&line.Quantity,
			&line.Price,
			&line.CreatedAt,
			&line.UpdatedAt,
			&line.ProductName,
			&line.ProductSKU,
			&line.ProductStock,
			&line.ProductStatus,
			&line.CategoryID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return lines, nil
}

// MergeSessionIntoCustomer folds an anonymous session cart into the
// customer cart on sign-in, summing quantities on overlap. The session
// lines are gone afterwards either way.
func MergeSessionIntoCustomer(ctx context.Context, db *sql.DB, sessionToken string, customerID int64) error {
	customerKey := strconv.FormatInt(customerID, 10)

	return database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cart_lines (owner_kind, owner_key, product_id, quantity, price, created_at, updated_at)
			 SELECT $1, $2, product_id, quantity, price, NOW(), NOW()
			 FROM cart_lines
			 WHERE owner_kind = $3 AND owner_key = $4
			 ON CONFLICT (owner_kind, owner_key, product_id)
			 DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity,
			               updated_at = NOW()`,
			OwnerCustomer, customerKey, OwnerSession, sessionToken)
		if err != nil {
			return fmt.Errorf("merge session cart: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`DELETE FROM cart_lines WHERE owner_kind = $1 AND owner_key = $2`,
			OwnerSession, sessionToken)
		if err != nil {
			return fmt.Errorf("drop session cart: %w", err)
		}

		return nil
	})
}
