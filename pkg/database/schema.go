package database

import (
	"context"
	"fmt"
)

func (d *DB) createSchema(ctx context.Context) error {
	if _, err := d.bun.NewCreateTable().
		Model((*Product)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}

	if _, err := d.bun.NewCreateTable().
		Model((*Order)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}

	if _, err := d.bun.NewCreateTable().
		Model((*OrderItem)(nil)).
		IfNotExists().
		ForeignKey(`("order_id") REFERENCES "orders" ("id")`).
		ForeignKey(`("product_id") REFERENCES "products" ("id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("create order_items table: %w", err)
	}

	return nil
}

// seedCatalog inserts the demo catalog into an empty products table.
func (d *DB) seedCatalog(ctx context.Context) error {
	count, err := d.bun.NewSelect().Model((*Product)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	products := seedProducts()
	if _, err := d.bun.NewInsert().Model(&products).Exec(ctx); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	return nil
}

func seedProducts() []Product {
	return []Product{
		{Name: "Banana", Category: "fruits", Description: "Fresh Cavendish bananas, sold per bunch", Price: 1.99, Stock: 120},
		{Name: "Apple", Category: "fruits", Description: "Crisp Fuji apples", Price: 2.49, Stock: 80},
		{Name: "Orange", Category: "fruits", Description: "Juicy Valencia oranges", Price: 3.25, Stock: 64},
		{Name: "Strawberries", Category: "fruits", Description: "Sweet strawberries, 250g punnet", Price: 4.5, Stock: 30},
		{Name: "Carrot", Category: "vegetables", Description: "Organic carrots, 1kg bag", Price: 1.75, Stock: 90},
		{Name: "Broccoli", Category: "vegetables", Description: "Fresh broccoli crowns", Price: 2.1, Stock: 45},
		{Name: "Spinach", Category: "vegetables", Description: "Baby spinach, 200g bag", Price: 2.95, Stock: 38},
		{Name: "Whole Milk", Category: "dairy", Description: "Whole milk, 1 liter", Price: 1.45, Stock: 150},
		{Name: "Cheddar Cheese", Category: "dairy", Description: "Mature cheddar, 400g block", Price: 5.8, Stock: 25},
		{Name: "Greek Yogurt", Category: "dairy", Description: "Plain Greek yogurt, 500g tub", Price: 3.6, Stock: 42},
		{Name: "Sourdough Bread", Category: "bakery", Description: "Stone-baked sourdough loaf", Price: 4.2, Stock: 18},
		{Name: "Croissant", Category: "bakery", Description: "All-butter croissants, pack of 4", Price: 3.9, Stock: 22},
	}
}
