package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	MRP           decimal.Decimal `json:"mrp"`
	WholesaleRate decimal.Decimal `json:"wholesale_rate"`
	Stock         int             `json:"stock"`
	Status        string          `json:"status"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	Image         string          `json:"image,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Firm      string    `json:"firm,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CartLine is one (owner, product) entry. Price is snapshotted from the
// product's wholesale rate when the line is first added and never
// renegotiated by later merges.
type CartLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Live product columns joined at list time. The product referenced by
	// an old line may have gone inactive or out of stock since; listing
	// does not filter those out.
	ProductName   string `json:"product_name"`
	ProductSKU    string `json:"product_sku"`
	ProductStock  int    `json:"product_stock"`
	ProductStatus string `json:"product_status"`
	CategoryID    *int64 `json:"category_id,omitempty"`
}

type Order struct {
	ID           int64           `json:"id"`
	CustomerID   int64           `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
	Payment      string          `json:"payment"`
	Status       string          `json:"status"`
	Address      string          `json:"address,omitempty"`
	OrderDate    *time.Time      `json:"order_date,omitempty"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Items        []OrderLine     `json:"items,omitempty"`
}

type OrderLine struct {
	ID         int64           `json:"id"`
	OrderID    int64           `json:"order_id"`
	ProductID  int64           `json:"product_id"`
	CategoryID *int64          `json:"category_id,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	CreatedAt  time.Time       `json:"created_at"`
}

// DeriveSubtotal fills Subtotal from price and quantity. There is no
// stored subtotal column.
func (l *OrderLine) DeriveSubtotal() {
	l.Subtotal = l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusProceed    = "proceed"
)

func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusProceed:
		return true
	}
	return false
}

func ValidPaymentState(s string) bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentFailed:
		return true
	}
	return false
}
