package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no lines")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
)

// SearchFilter narrows a product search. Zero values mean "no filter".
type SearchFilter struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

type CategoryCount struct {
	Name  string `bun:"name" json:"name"`
	Count int    `bun:"product_count" json:"product_count"`
}

type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// SearchResult carries matching in-stock products plus catalog metadata
// the assistant can use to steer the conversation.
type SearchResult struct {
	Products   []Product       `json:"products"`
	Total      int             `json:"total_results"`
	Categories []CategoryCount `json:"categories"`
	PriceRange PriceRange      `json:"price_range"`
}

// SearchProducts returns in-stock products matching the filter.
func (d *DB) SearchProducts(ctx context.Context, filter SearchFilter) (*SearchResult, error) {
	var products []Product
	q := d.bun.NewSelect().
		Model(&products).
		Where("p.stock > 0")

	if term := strings.TrimSpace(filter.Query); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		q = q.Where("(lower(p.name) LIKE ? OR lower(p.description) LIKE ?)", pattern, pattern)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		q = q.Where("lower(p.category) = lower(?)", category)
	}
	if filter.MinPrice != nil {
		q = q.Where("p.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("p.price <= ?", *filter.MaxPrice)
	}

	if err := q.Order("p.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	var categories []CategoryCount
	if err := d.bun.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("p.category AS name").
		ColumnExpr("count(*) AS product_count").
		Where("p.stock > 0").
		GroupExpr("p.category").
		OrderExpr("p.category ASC").
		Scan(ctx, &categories); err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}

	var priceRange PriceRange
	if err := d.bun.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("coalesce(min(p.price), 0)").
		ColumnExpr("coalesce(max(p.price), 0)").
		ColumnExpr("coalesce(avg(p.price), 0)").
		Where("p.stock > 0").
		Scan(ctx, &priceRange.Min, &priceRange.Max, &priceRange.Average); err != nil {
		return nil, fmt.Errorf("aggregate price range: %w", err)
	}

	return &SearchResult{
		Products:   products,
		Total:      len(products),
		Categories: categories,
		PriceRange: priceRange,
	}, nil
}

// Categories lists distinct categories that still have stock.
func (d *DB) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	if err := d.bun.NewSelect().
		Model((*Product)(nil)).
		ColumnExpr("DISTINCT p.category").
		Where("p.stock > 0").
		OrderExpr("p.category ASC").
		Scan(ctx, &categories); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// OrderLine is one requested line item, keyed by product name as the
// model refers to products.
type OrderLine struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

type OrderedItem struct {
	Name      string  `bun:"name" json:"name"`
	Quantity  int     `bun:"quantity" json:"quantity"`
	UnitPrice float64 `bun:"unit_price" json:"unit_price"`
}

type OrderConfirmation struct {
	OrderID    int64         `json:"order_id"`
	CustomerID string        `json:"customer_id"`
	Status     string        `json:"status"`
	Total      float64       `json:"total_amount"`
	Items      []OrderedItem `json:"items"`
}

// CreateOrder places an order in a single transaction: every line's
// product must exist with sufficient stock, stock is decremented, and the
// order plus its items are inserted. Any failure rolls the whole order
// back, so stock is never partially mutated.
func (d *DB) CreateOrder(ctx context.Context, customerID string, lines []OrderLine) (*OrderConfirmation, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, errors.New("customer id is required")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product=%s quantity=%d", ErrInvalidQuantity, line.ProductName, line.Quantity)
		}
	}

	var conf *OrderConfirmation
	err := d.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		order := &Order{
			CustomerID: customerID,
			Status:     OrderStatusPending,
			CreatedAt:  time.Now().UTC(),
		}
		res, err := tx.NewInsert().Model(order).Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		orderID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("order id: %w", err)
		}

		var total float64
		items := make([]OrderedItem, 0, len(lines))
		for _, line := range lines {
			var product Product
			err := tx.NewSelect().
				Model(&product).
				Where("lower(p.name) = lower(?)", strings.TrimSpace(line.ProductName)).
				Limit(1).
				Scan(ctx)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductName)
			}
			if err != nil {
				return fmt.Errorf("lookup product %q: %w", line.ProductName, err)
			}

			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: product=%s available=%d requested=%d",
					ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
			}

			if _, err := tx.NewUpdate().
				Model((*Product)(nil)).
				Set("stock = stock - ?", line.Quantity).
				Where("id = ?", product.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("decrement stock for %q: %w", product.Name, err)
			}

			if _, err := tx.NewInsert().Model(&OrderItem{
				OrderID:   orderID,
				ProductID: product.ID,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			}).Exec(ctx); err != nil {
				return fmt.Errorf("insert order item for %q: %w", product.Name, err)
			}

			total += product.Price * float64(line.Quantity)
			items = append(items, OrderedItem{
				Name:      product.Name,
				Quantity:  line.Quantity,
				UnitPrice: product.Price,
			})
		}

		conf = &OrderConfirmation{
			OrderID:    orderID,
			CustomerID: customerID,
			Status:     OrderStatusPending,
			Total:      total,
			Items:      items,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

type OrderSummary struct {
	OrderID   int64         `json:"order_id"`
	Status    string        `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Items     []OrderedItem `json:"items"`
	Total     float64       `json:"total_amount"`
}

// OrderStatus returns one order's summary, scoped to the customer so a
// session cannot read another customer's orders.
func (d *DB) OrderStatus(ctx context.Context, customerID string, orderID int64) (*OrderSummary, error) {
	var order Order
	err := d.bun.NewSelect().
		Model(&order).
		Where("o.id = ?", orderID).
		Where("o.customer_id = ?", customerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id=%d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup order: %w", err)
	}

	var items []OrderedItem
	if err := d.bun.NewSelect().
		Model((*OrderItem)(nil)).
		ColumnExpr("pr.name AS name").
		ColumnExpr("oi.quantity AS quantity").
		ColumnExpr("oi.unit_price AS unit_price").
		Join("JOIN products AS pr ON pr.id = oi.product_id").
		Where("oi.order_id = ?", order.ID).
		Scan(ctx, &items); err != nil {
		return nil, fmt.Errorf("lookup order items: %w", err)
	}

	var total float64
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}

	return &OrderSummary{
		OrderID:   order.ID,
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
		Items:     items,
		Total:     total,
	}, nil
}

type OrderDigest struct {
	OrderID   int64     `bun:"order_id" json:"order_id"`
	Status    string    `bun:"status" json:"status"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	ItemCount int       `bun:"item_count" json:"item_count"`
	Total     float64   `bun:"total" json:"total_amount"`
}

// CustomerOrders lists all of a customer's orders, newest first.
func (d *DB) CustomerOrders(ctx context.Context, customerID string) ([]OrderDigest, error) {
	var digests []OrderDigest
	if err := d.bun.NewSelect().
		Model((*Order)(nil)).
		ColumnExpr("o.id AS order_id").
		ColumnExpr("o.status AS status").
		ColumnExpr("o.created_at AS created_at").
		ColumnExpr("count(oi.id) AS item_count").
		ColumnExpr("coalesce(sum(oi.quantity * oi.unit_price), 0) AS total").
		Join("JOIN order_items AS oi ON oi.order_id = o.id").
		Where("o.customer_id = ?", customerID).
		GroupExpr("o.id").
		OrderExpr("o.created_at DESC").
		Scan(ctx, &digests); err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return digests, nil
}

// Recommendations suggests in-stock products from the categories the
// customer bought from most recently. Customers without history get a
// random selection of in-stock products instead.
func (d *DB) Recommendations(ctx context.Context, customerID string, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = 5
	}

	var categories []string
	if err := d.bun.NewSelect().
		ColumnExpr("pr.category").
		TableExpr("orders AS o").
		Join("JOIN order_items AS oi ON oi.order_id = o.id").
		Join("JOIN products AS pr ON pr.id = oi.product_id").
		Where("o.customer_id = ?", customerID).
		GroupExpr("pr.category").
		OrderExpr("max(o.created_at) DESC").
		Limit(3).
		Scan(ctx, &categories); err != nil {
		return nil, fmt.Errorf("favorite categories: %w", err)
	}

	var products []Product
	q := d.bun.NewSelect().
		Model(&products).
		Where("p.stock > 0").
		OrderExpr("random()").
		Limit(limit)
	if len(categories) > 0 {
		q = q.Where("p.category IN (?)", bun.In(categories))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("recommend products: %w", err)
	}
	return products, nil
}
