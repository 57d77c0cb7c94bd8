package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/anvarov/backoffice/internal/database"
	"github.com/anvarov/backoffice/internal/models"
	"github.com/anvarov/backoffice/internal/store"
)

func TestCreateOrderRejectsNonPositiveCustomer(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	for _, id := range []int64{0, -1} {
		_, err := store.CreateOrder(ctx, db, store.CreateOrderParams{CustomerID: id})
		if !errors.Is(err, database.ErrInvalidCustomer) {
			t.Errorf("customer_id=%d: expected ErrInvalidCustomer, got %v", id, err)
		}
	}

	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("no header row may persist after rejection, found %d", n)
	}
}

func TestCreateOrderSkipsNonPositiveProducts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	a := seedProduct(t, db, "Notebook", "NB-1", 50, 40, 100)
	b := seedProduct(t, db, "Pencil", "PC-1", 10, 6, 100)
	customer := seedCustomer(t, db, "Meera Traders")

	result, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: a.ID, Quantity: 1, Price: decimal.NewFromInt(40)},
			{ProductID: b.ID, Quantity: 2, Price: decimal.NewFromInt(6)},
			{ProductID: 0, Quantity: 1, Price: decimal.NewFromInt(99)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if result.ItemsSaved != 2 {
		t.Errorf("expected items_saved=2, got %d", result.ItemsSaved)
	}

	order, err := store.GetOrder(ctx, db, result.Order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}
	if len(order.Items) != 2 {
		t.Errorf("expected exactly 2 persisted lines, got %d", len(order.Items))
	}
}

func TestOrderEndToEnd(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := seedProduct(t, db, "Notebook", "NB-E2E", 50, 40, 10)
	customer := seedCustomer(t, db, "Kiran Mart")

	result, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: product.ID, Quantity: 2, Price: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if result.ItemsSaved != 1 {
		t.Errorf("expected items_saved=1, got %d", result.ItemsSaved)
	}

	order, err := store.GetOrder(ctx, db, result.Order.ID)
	if err != nil {
		t.Fatalf("Get order: %v", err)
	}

	if order.CustomerName != "Kiran Mart" {
		t.Errorf("customer name snapshot missing: %q", order.CustomerName)
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected computed total 80, got %s", order.TotalAmount)
	}
	if order.Currency != "INR" {
		t.Errorf("expected default currency INR, got %s", order.Currency)
	}
	if order.Status != models.OrderStatusPending || order.Payment != models.PaymentPending {
		t.Errorf("expected pending/pending defaults, got %s/%s", order.Status, order.Payment)
	}
	if len(order.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(order.Items))
	}
	if !order.Items[0].Subtotal.Equal(decimal.NewFromInt(80)) {
		t.Errorf("expected derived subtotal 80, got %s", order.Items[0].Subtotal)
	}

	// Placing the order held stock.
	got, _ := store.GetProduct(ctx, db, product.ID)
	if got.Stock != 8 {
		t.Errorf("expected stock 8 after ordering 2, got %d", got.Stock)
	}
}

func TestOrderCustomerNameDefaultsEmpty(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	result, err := store.CreateOrder(context.Background(), db, store.CreateOrderParams{CustomerID: 424242})
	if err != nil {
		t.Fatalf("Create order for unknown customer: %v", err)
	}
	if result.Order.CustomerName != "" {
		t.Errorf("expected empty snapshot, got %q", result.Order.CustomerName)
	}
}

func TestOrderStatusCoercion(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := seedCustomer(t, db, "Dev Stores")

	bogus, err := store.CreateOrder(ctx, db, store.CreateOrderParams{CustomerID: customer.ID, Status: "exploded"})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if bogus.Order.Status != models.OrderStatusPending {
		t.Errorf("invalid status must coerce to pending, got %s", bogus.Order.Status)
	}

	confirmed, err := store.CreateOrder(ctx, db, store.CreateOrderParams{CustomerID: customer.ID, Status: models.OrderStatusConfirmed})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if confirmed.Order.Status != models.OrderStatusConfirmed {
		t.Errorf("valid status dropped, got %s", confirmed.Order.Status)
	}
}

func TestOrderStatusPaymentOverload(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := seedCustomer(t, db, "Vikas Agencies")

	created, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Status:     models.OrderStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	// "paid" through the status field lands on payment, status untouched.
	paid := "paid"
	updated, err := store.UpdateOrder(ctx, db, created.Order.ID, store.UpdateOrderParams{Status: &paid})
	if err != nil {
		t.Fatalf("Update order: %v", err)
	}
	if updated.Payment != models.PaymentPaid {
		t.Errorf("expected payment=paid, got %s", updated.Payment)
	}
	if updated.Status != models.OrderStatusConfirmed {
		t.Errorf("status must stay confirmed, got %s", updated.Status)
	}

	// A real status value still routes to status.
	shipped := "shipped"
	updated, err = store.UpdateOrder(ctx, db, created.Order.ID, store.UpdateOrderParams{Status: &shipped})
	if err != nil {
		t.Fatalf("Update order: %v", err)
	}
	if updated.Status != models.OrderStatusShipped || updated.Payment != models.PaymentPaid {
		t.Errorf("expected shipped/paid, got %s/%s", updated.Status, updated.Payment)
	}
}

func TestOrderItemsReplaceWholesale(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	a := seedProduct(t, db, "Notebook", "NB-R", 50, 40, 10)
	b := seedProduct(t, db, "Pencil", "PC-R", 10, 6, 10)
	customer := seedCustomer(t, db, "Replace Mart")

	created, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: a.ID, Quantity: 4, Price: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	items := []store.OrderLineParams{
		{ProductID: b.ID, Quantity: 3, Price: decimal.NewFromInt(6)},
	}
	updated, err := store.UpdateOrder(ctx, db, created.Order.ID, store.UpdateOrderParams{Items: &items})
	if err != nil {
		t.Fatalf("Replace items: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].ProductID != b.ID {
		t.Fatalf("expected the new line only, got %+v", updated.Items)
	}

	// Stock flows back to the replaced product and out of the new one.
	gotA, _ := store.GetProduct(ctx, db, a.ID)
	gotB, _ := store.GetProduct(ctx, db, b.ID)
	if gotA.Stock != 10 {
		t.Errorf("expected product A stock restored to 10, got %d", gotA.Stock)
	}
	if gotB.Stock != 7 {
		t.Errorf("expected product B stock 7, got %d", gotB.Stock)
	}
}

func TestOrderUpdatePreservesItemsWhenAbsent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := seedProduct(t, db, "Notebook", "NB-P", 50, 40, 10)
	customer := seedCustomer(t, db, "Keep Mart")

	created, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: product.ID, Quantity: 1, Price: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	address := "14 MG Road, Pune"
	updated, err := store.UpdateOrder(ctx, db, created.Order.ID, store.UpdateOrderParams{Address: &address})
	if err != nil {
		t.Fatalf("Update order: %v", err)
	}
	if updated.Address != address {
		t.Errorf("address not updated: %q", updated.Address)
	}
	if len(updated.Items) != 1 {
		t.Errorf("items must survive an update without an items field, got %d", len(updated.Items))
	}
}

func TestOrderCreateIsAtomic(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := seedProduct(t, db, "Notebook", "NB-A", 50, 40, 10)
	customer := seedCustomer(t, db, "Atomic Mart")

	// Second line references a product that does not exist; the FK
	// violation must take the whole order down, header included.
	_, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: product.ID, Quantity: 1, Price: decimal.NewFromInt(40)},
			{ProductID: 999999, Quantity: 1, Price: decimal.NewFromInt(5)},
		},
	})
	if err == nil {
		t.Fatal("expected order creation to fail")
	}

	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("header leaked from aborted order, found %d rows", n)
	}
	if n := countRows(t, db, "order_lines"); n != 0 {
		t.Errorf("lines leaked from aborted order, found %d rows", n)
	}

	got, _ := store.GetProduct(ctx, db, product.ID)
	if got.Stock != 10 {
		t.Errorf("stock leaked from aborted order, got %d", got.Stock)
	}
}

func TestOrderInsufficientStockAborts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := seedProduct(t, db, "Notebook", "NB-S", 50, 40, 1)
	customer := seedCustomer(t, db, "Stock Mart")

	_, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: product.ID, Quantity: 5, Price: decimal.NewFromInt(40)},
		},
	})
	if !errors.Is(err, database.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if n := countRows(t, db, "orders"); n != 0 {
		t.Errorf("header leaked, found %d rows", n)
	}
}

func TestOrderCancelIsSoft(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := seedCustomer(t, db, "Cancel Mart")

	created, err := store.CreateOrder(ctx, db, store.CreateOrderParams{CustomerID: customer.ID})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	if err := store.CancelOrder(ctx, db, created.Order.ID); err != nil {
		t.Fatalf("Cancel order: %v", err)
	}

	order, err := store.GetOrder(ctx, db, created.Order.ID)
	if err != nil {
		t.Fatalf("Cancelled order must stay fetchable: %v", err)
	}
	if order.Status != models.OrderStatusCancelled {
		t.Errorf("expected cancelled, got %s", order.Status)
	}
}

func TestOrderCallerSuppliedTotalStoredAsIs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	product := seedProduct(t, db, "Notebook", "NB-T", 50, 40, 10)
	customer := seedCustomer(t, db, "Total Mart")

	total := decimal.NewFromInt(500)
	result, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID:  customer.ID,
		TotalAmount: &total,
		Items: []store.OrderLineParams{
			{ProductID: product.ID, Quantity: 1, Price: decimal.NewFromInt(40)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	if !result.Order.TotalAmount.Equal(total) {
		t.Errorf("caller total must be stored unreconciled, got %s", result.Order.TotalAmount)
	}
}

func TestOrderHistoryCursor(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	customer := seedCustomer(t, db, "History Mart")

	for i := 0; i < 5; i++ {
		if _, err := store.CreateOrder(ctx, db, store.CreateOrderParams{CustomerID: customer.ID}); err != nil {
			t.Fatalf("Create order %d: %v", i, err)
		}
	}

	page, err := store.ListOrdersByCustomerCursor(ctx, db, customer.ID, "", 2)
	if err != nil {
		t.Fatalf("First page: %v", err)
	}
	if !page.HasMore || len(page.Items.([]models.Order)) != 2 {
		t.Fatalf("unexpected first page: has_more=%v", page.HasMore)
	}

	seen := len(page.Items.([]models.Order))
	cursor := page.NextCursor
	for cursor != "" {
		page, err = store.ListOrdersByCustomerCursor(ctx, db, customer.ID, cursor, 2)
		if err != nil {
			t.Fatalf("Next page: %v", err)
		}
		seen += len(page.Items.([]models.Order))
		cursor = page.NextCursor
	}
	if seen != 5 {
		t.Errorf("expected to walk 5 orders, saw %d", seen)
	}
}

func TestDashboardRollups(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	hot := seedProduct(t, db, "Notebook", "NB-D", 50, 40, 100)
	cold := seedProduct(t, db, "Pencil", "PC-D", 10, 6, 100)
	customer := seedCustomer(t, db, "Dash Mart")
	seedCustomer(t, db, "Later Mart")

	_, err := store.CreateOrder(ctx, db, store.CreateOrderParams{
		CustomerID: customer.ID,
		Items: []store.OrderLineParams{
			{ProductID: hot.ID, Quantity: 7, Price: decimal.NewFromInt(40)},
			{ProductID: cold.ID, Quantity: 1, Price: decimal.NewFromInt(6)},
		},
	})
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}

	top, err := store.TopProducts(ctx, db, 5)
	if err != nil {
		t.Fatalf("Top products: %v", err)
	}
	if len(top) != 2 || top[0].ProductID != hot.ID || top[0].UnitsOrdered != 7 {
		t.Errorf("unexpected top products: %+v", top)
	}
	if !top[0].Revenue.Equal(decimal.NewFromInt(280)) {
		t.Errorf("expected revenue 280, got %s", top[0].Revenue)
	}

	recent, err := store.RecentCustomers(ctx, db, 5)
	if err != nil {
		t.Fatalf("Recent customers: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("expected 2 recent customers, got %d", len(recent))
	}
}
