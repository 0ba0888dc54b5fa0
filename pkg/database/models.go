package database

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
)

// Product is a catalog row. Read-only from the assistant's perspective
// except for stock, which order placement decrements.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          int64   `bun:"id,pk,autoincrement" json:"product_id"`
	Name        string  `bun:"name,notnull" json:"name"`
	Category    string  `bun:"category,notnull" json:"category"`
	Description string  `bun:"description" json:"description,omitempty"`
	Price       float64 `bun:"price,notnull" json:"price"`
	Stock       int     `bun:"stock,notnull" json:"stock"`
}

type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID         int64     `bun:"id,pk,autoincrement" json:"order_id"`
	CustomerID string    `bun:"customer_id,notnull" json:"customer_id"`
	Status     string    `bun:"status,notnull" json:"status"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"created_at"`
}

type OrderItem struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID        int64   `bun:"id,pk,autoincrement" json:"-"`
	OrderID   int64   `bun:"order_id,notnull" json:"order_id"`
	ProductID int64   `bun:"product_id,notnull" json:"product_id"`
	Quantity  int     `bun:"quantity,notnull" json:"quantity"`
	UnitPrice float64 `bun:"unit_price,notnull" json:"unit_price"`
}
