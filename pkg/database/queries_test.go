package database

import (
	"context"
	"errors"
	"testing"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(Config{Path: ":memory:", Seed: true})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("init database: %v", err)
	}
	return db
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("second init: %v", err)
	}

	result, err := db.SearchProducts(context.Background(), SearchFilter{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 12 {
		t.Fatalf("seed must not run twice, got %d products", result.Total)
	}
}

func TestSearchProductsFilters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	t.Run("query matches name and description", func(t *testing.T) {
		t.Parallel()
		result, err := db.SearchProducts(ctx, SearchFilter{Query: "sourdough"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if result.Total != 1 || result.Products[0].Name != "Sourdough Bread" {
			t.Fatalf("unexpected result: %+v", result.Products)
		}
	})

	t.Run("query is case insensitive", func(t *testing.T) {
		t.Parallel()
		result, err := db.SearchProducts(ctx, SearchFilter{Query: "BANANA"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if result.Total != 1 {
			t.Fatalf("expected 1 match, got %d", result.Total)
		}
	})

	t.Run("price bounds", func(t *testing.T) {
		t.Parallel()
		min, max := 2.0, 3.0
		result, err := db.SearchProducts(ctx, SearchFilter{MinPrice: &min, MaxPrice: &max})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		for _, p := range result.Products {
			if p.Price < min || p.Price > max {
				t.Fatalf("product %q price %.2f out of bounds", p.Name, p.Price)
			}
		}
		if result.Total == 0 {
			t.Fatal("expected matches in the 2..3 price band")
		}
	})

	t.Run("metadata always present", func(t *testing.T) {
		t.Parallel()
		result, err := db.SearchProducts(ctx, SearchFilter{Query: "no-such-product"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if result.Total != 0 {
			t.Fatalf("expected no matches, got %d", result.Total)
		}
		if len(result.Categories) == 0 {
			t.Fatal("category counts must reflect the whole catalog")
		}
		if result.PriceRange.Min <= 0 || result.PriceRange.Max < result.PriceRange.Min {
			t.Fatalf("unexpected price range: %+v", result.PriceRange)
		}
	})
}

func TestCategories(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	categories, err := db.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}

	want := []string{"bakery", "dairy", "fruits", "vegetables"}
	if len(categories) != len(want) {
		t.Fatalf("got %v, want %v", categories, want)
	}
	for i := range want {
		if categories[i] != want[i] {
			t.Fatalf("got %v, want %v", categories, want)
		}
	}
}

func TestCreateOrderDecrementsStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	conf, err := db.CreateOrder(ctx, "cust-1", []OrderLine{
		{ProductName: "Apple", Quantity: 10},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if conf.OrderID <= 0 || conf.Status != OrderStatusPending {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}

	result, err := db.SearchProducts(ctx, SearchFilter{Query: "apple"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Products[0].Stock != 70 {
		t.Fatalf("stock not decremented, got %d", result.Products[0].Stock)
	}
}

func TestCreateOrderUnknownProductRollsBack(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.CreateOrder(ctx, "cust-1", []OrderLine{
		{ProductName: "Orange", Quantity: 2},
		{ProductName: "Durian", Quantity: 1},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	result, _ := db.SearchProducts(ctx, SearchFilter{Query: "orange"})
	if result.Products[0].Stock != 64 {
		t.Fatalf("failed order must not touch stock, got %d", result.Products[0].Stock)
	}
	if orders, _ := db.CustomerOrders(ctx, "cust-1"); len(orders) != 0 {
		t.Fatalf("failed order must not persist, got %+v", orders)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	_, err := db.CreateOrder(context.Background(), "cust-1", []OrderLine{
		{ProductName: "Croissant", Quantity: 1000},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateOrder(ctx, "cust-1", nil); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	_, err := db.CreateOrder(ctx, "cust-1", []OrderLine{{ProductName: "Apple", Quantity: 0}})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestOrderStatusScopedToCustomer(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	conf, err := db.CreateOrder(ctx, "cust-1", []OrderLine{
		{ProductName: "Carrot", Quantity: 2},
		{ProductName: "Spinach", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	summary, err := db.OrderStatus(ctx, "cust-1", conf.OrderID)
	if err != nil {
		t.Fatalf("order status: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(summary.Items))
	}
	wantTotal := 2*1.75 + 2.95
	if diff := summary.Total - wantTotal; diff > 0.001 || diff < -0.001 {
		t.Fatalf("unexpected total: got %.2f want %.2f", summary.Total, wantTotal)
	}

	// Another customer must not be able to read it.
	if _, err := db.OrderStatus(ctx, "cust-2", conf.OrderID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for foreign customer, got %v", err)
	}
}

func TestCustomerOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Banana", "Apple", "Orange"} {
		if _, err := db.CreateOrder(ctx, "cust-1", []OrderLine{{ProductName: name, Quantity: 1}}); err != nil {
			t.Fatalf("create order for %s: %v", name, err)
		}
	}

	digests, err := db.CustomerOrders(ctx, "cust-1")
	if err != nil {
		t.Fatalf("customer orders: %v", err)
	}
	if len(digests) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(digests))
	}
	for i := 1; i < len(digests); i++ {
		if digests[i].CreatedAt.After(digests[i-1].CreatedAt) {
			t.Fatal("orders must be sorted newest first")
		}
	}
	if digests[0].ItemCount != 1 || digests[0].Total <= 0 {
		t.Fatalf("unexpected digest: %+v", digests[0])
	}
}

func TestRecommendationsUseHistoryThenFallback(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	// No history: random in-stock selection.
	products, err := db.Recommendations(ctx, "new-customer", 4)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(products) != 4 {
		t.Fatalf("expected 4 fallback picks, got %d", len(products))
	}

	// With history: only categories the customer bought from.
	if _, err := db.CreateOrder(ctx, "cust-1", []OrderLine{{ProductName: "Whole Milk", Quantity: 1}}); err != nil {
		t.Fatalf("create order: %v", err)
	}
	products, err = db.Recommendations(ctx, "cust-1", 10)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	if len(products) == 0 {
		t.Fatal("expected history-based recommendations")
	}
	for _, p := range products {
		if p.Category != "dairy" {
			t.Fatalf("expected dairy only, got %q in %q", p.Name, p.Category)
		}
	}
}

func TestNewDBRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := NewDB(Config{Path: "  "}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
