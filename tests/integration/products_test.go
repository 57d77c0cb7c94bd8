package integration

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
	"github.com/anvarov/backoffice/internal/store"
)

func TestProductCreateThenGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	created := seedProduct(t, db, "Notebook", "NB-001", 50, 40, 10)
	if created.ID == 0 {
		t.Fatal("expected a usable id")
	}

	got, err := store.GetProduct(ctx, db, created.ID)
	if err != nil {
		t.Fatalf("Get product right after create: %v", err)
	}
	if got.Name != "Notebook" || got.SKU != "NB-001" {
		t.Errorf("unexpected product: %+v", got)
	}
	if !got.WholesaleRate.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected wholesale rate 40, got %s", got.WholesaleRate)
	}
	if got.Status != models.ProductStatusActive {
		t.Errorf("expected active status, got %s", got.Status)
	}
}

func TestProductSoftDelete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	product := seedProduct(t, db, "Stapler", "ST-001", 120, 95, 30)
	customer := seedCustomer(t, db, "Asha Traders")

	result, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: product.ID, Quantity: 1, Price: decimal.NewFromInt(95)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if err := store.DeactivateProduct(ctx, db, product.ID); err != nil {
		t.Fatalf("Deactivate product: %v", err)
	}

	got, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Inactive product must stay fetchable by id: %v", err)
	}
	if got.Status != models.ProductStatusInactive {
		t.Errorf("expected inactive, got %s", got.Status)
	}

	// The historical order line still joins to the product.
	order, err := store.GetOrder(ctx, db, result.Order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != product.ID {
		t.Errorf("expected order line to keep referencing product %d: %+v", product.ID, order.Items)
	}

	// Storefront-style active listing hides it, plain get does not.
	page, err := store.ListProducts(ctx, db, store.ProductFilter{Status: models.ProductStatusActive}, 1, 20)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected no active products, got %d", page.Total)
	}
}

func TestProductDuplicateSKU(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	seedProduct(t, db, "Marker", "MK-001", 30, 22, 100)

	_, err := store.CreateProduct(context.Background(), db, store.CreateProductParams{
		Name:          "Marker Blue",
		SKU:           "MK-001",
		MRP:           decimal.NewFromInt(30),
		WholesaleRate: decimal.NewFromInt(22),
	})
	if !errors.Is(err, database.ErrDuplicateSKU) {
		t.Errorf("expected ErrDuplicateSKU, got %v", err)
	}
}

func TestProductSearchAndPaging(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	seedProduct(t, db, "Blue Pen", "PEN-B", 10, 7, 500)
	seedProduct(t, db, "Red Pen", "PEN-R", 10, 7, 500)
	seedProduct(t, db, "Eraser", "ER-1", 5, 3, 200)

	page, err := store.ListProducts(ctx, db, store.ProductFilter{Query: "pen"}, 1, 20)
	if err != nil {
		t.Fatalf("Search products: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("expected 2 pens, got %d", page.Total)
	}

	page, err = store.ListProducts(ctx, db, store.ProductFilter{}, 1, 2)
	if err != nil {
		t.Fatalf("List products: %v", err)
	}
	if page.Total != 3 || page.TotalPages != 2 || len(page.Items.([]models.Product)) != 2 {
		t.Errorf("unexpected page shape: total=%d pages=%d", page.Total, page.TotalPages)
	}
}

func TestDecrementStockGuard(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := seedProduct(t, db, "Ledger Book", "LB-1", 90, 70, 3)

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		return store.DecrementStock(ctx, tx, product.ID, 5)
	})
	if !errors.Is(err, database.ErrInsufficientStock) {
		t.Errorf("expected ErrInsufficientStock, got %v", err)
	}

	got, err := store.GetProduct(ctx, db, product.ID)
	if err != nil {
		t.Fatalf("Get product: %v", err)
	}
	if got.Stock != 3 {
		t.Errorf("stock must be untouched after failed decrement, got %d", got.Stock)
	}
}
