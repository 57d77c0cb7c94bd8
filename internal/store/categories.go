package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
)

const categoryColumns = `id, name, slug, created_at, updated_at`

func scanCategory(row interface{ Scan(...interface{}) error }) (*models.Category, error) {
	category := &models.Category{}
	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return category, nil
}

// uniqueSlug finds the first free slug among base, base-1, base-2, ...
// excludeID skips the record's own row during updates.
func uniqueSlug(ctx context.Context, db *sql.DB, base string, excludeID int64) (string, error) {
	if base == "" {
		base = "category"
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		var exists bool
		err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND id <> $2)`,
			candidate, excludeID).Scan(&exists)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

func CreateCategory(ctx context.Context, db *sql.DB, name, slug string) (*models.Category, error) {
	if slug == "" {
		var err error
		slug, err = uniqueSlug(ctx, db, Slugify(name), 0)
		if err != nil {
			return nil, err
		}
	}

	query := `
		INSERT INTO categories (name, slug, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING ` + categoryColumns

	category, err := scanCategory(db.QueryRowContext(ctx, query, name, slug))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func GetCategory(ctx context.Context, db *sql.DB, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	category, err := scanCategory(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return category, nil
}

func ListCategories(ctx context.Context, db *sql.DB, search string, page, limit int) (*OffsetPage, error) {
	page, limit = NormalizePage(page, limit)

	pattern := "%" + search + "%"

	var total int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE name ILIKE $1`, pattern).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE name ILIKE $1
		ORDER BY name
		LIMIT $2 OFFSET $3`

	rows, err := db.QueryContext(ctx, query, pattern, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(categories, total, page, limit), nil
}

func UpdateCategory(ctx context.Context, db *sql.DB, id int64, name, slug *string) (*models.Category, error) {
	current, err := GetCategory(ctx, db, id)
	if err != nil {
		return nil, err
	}

	newName := current.Name
	if name != nil {
		newName = *name
	}

	newSlug := current.Slug
	switch {
	case slug != nil && *slug != "":
		newSlug = *slug
	case name != nil:
		// Renamed without an explicit slug: re-derive, skipping our own row
		// when probing for collisions.
		newSlug, err = uniqueSlug(ctx, db, Slugify(newName), id)
		if err != nil {
			return nil, err
		}
	}

	query := `
		UPDATE categories
		SET name = $1, slug = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + categoryColumns

	category, err := scanCategory(db.QueryRowContext(ctx, query, newName, newSlug, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrCategoryNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, database.ErrDuplicateSlug
		}
		return nil, fmt.Errorf("update category: %w", err)
	}

	return category, nil
}

func DeleteCategory(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrCategoryNotFound
	}

	return nil
}
