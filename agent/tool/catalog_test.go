package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/virtualstore/salesagent/agent/contract"
	"github.com/virtualstore/salesagent/pkg/database"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()

	db, err := database.NewDB(database.Config{Path: ":memory:", Seed: true})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Init(context.Background()); err != nil {
		t.Fatalf("init database: %v", err)
	}

	gw, err := NewGateway(db)
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	return gw
}

func TestInfosCoverCatalog(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != 5 {
		t.Fatalf("expected 5 tool infos, got %d", len(infos))
	}

	names := make(map[string]bool, len(infos))
	for _, info := range infos {
		names[info.Name] = true
	}
	for _, want := range []string{
		ToolProductsSearch,
		ToolProductsCategories,
		ToolProductsRecommend,
		ToolOrdersCreate,
		ToolOrdersStatus,
	} {
		if !names[want] {
			t.Fatalf("missing tool info: %s", want)
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	results, err := gw.Execute(context.Background(), "cust-1", []contractx.ToolRequest{
		{ID: "call-1", Tool: "warehouse.teleport"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == "" || !strings.Contains(results[0].Error, "unknown tool") {
		t.Fatalf("expected unknown tool error, got %q", results[0].Error)
	}
	if results[0].ID != "call-1" {
		t.Fatalf("result must carry the request id, got %q", results[0].ID)
	}
}

func TestSearchProductsByCategory(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	results, err := gw.Execute(context.Background(), "cust-1", []contractx.ToolRequest{
		{ID: "call-1", Tool: ToolProductsSearch, Args: map[string]any{"category": "dairy"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}

	search, ok := results[0].Result.(*database.SearchResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", results[0].Result)
	}
	if search.Total == 0 {
		t.Fatal("expected dairy products in the seed catalog")
	}
	for _, p := range search.Products {
		if p.Category != "dairy" {
			t.Fatalf("category filter leaked product %q from %q", p.Name, p.Category)
		}
	}
	if len(search.Categories) == 0 || search.PriceRange.Max <= 0 {
		t.Fatal("search result must include catalog metadata")
	}
}

func TestSearchProductsRejectsBadArgType(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	results, err := gw.Execute(context.Background(), "cust-1", []contractx.ToolRequest{
		{ID: "call-1", Tool: ToolProductsSearch, Args: map[string]any{"min_price": "cheap"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(results[0].Error, "min_price must be a number") {
		t.Fatalf("expected argument rejection, got %q", results[0].Error)
	}
}

func TestCreateOrderAndStatus(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	ctx := context.Background()

	results, err := gw.Execute(ctx, "cust-1", []contractx.ToolRequest{
		{ID: "call-1", Tool: ToolOrdersCreate, Args: map[string]any{
			"items": []any{
				map[string]any{"product_name": "Banana", "quantity": float64(2)},
				map[string]any{"product_name": "Whole Milk", "quantity": float64(1)},
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}

	conf, ok := results[0].Result.(*database.OrderConfirmation)
	if !ok {
		t.Fatalf("unexpected result type: %T", results[0].Result)
	}
	if conf.Status != database.OrderStatusPending {
		t.Fatalf("unexpected status: %s", conf.Status)
	}
	wantTotal := 2*1.99 + 1.45
	if diff := conf.Total - wantTotal; diff > 0.001 || diff < -0.001 {
		t.Fatalf("unexpected total: got %.2f want %.2f", conf.Total, wantTotal)
	}

	results, err = gw.Execute(ctx, "cust-1", []contractx.ToolRequest{
		{ID: "call-2", Tool: ToolOrdersStatus, Args: map[string]any{"order_id": float64(conf.OrderID)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}
	summary, ok := results[0].Result.(*database.OrderSummary)
	if !ok {
		t.Fatalf("unexpected result type: %T", results[0].Result)
	}
	if summary.OrderID != conf.OrderID || len(summary.Items) != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCreateOrderInsufficientStockLeavesStockUntouched(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	ctx := context.Background()

	// Croissant seeds with 22 units; Banana is plentiful. The order must
	// fail as a whole and leave Banana stock unchanged.
	results, err := gw.Execute(ctx, "cust-1", []contractx.ToolRequest{
		{ID: "call-1", Tool: ToolOrdersCreate, Args: map[string]any{
			"items": []any{
				map[string]any{"product_name": "Banana", "quantity": float64(5)},
				map[string]any{"product_name": "Croissant", "quantity": float64(500)},
			},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(results[0].Error, "insufficient stock") {
		t.Fatalf("expected insufficient stock error, got %q", results[0].Error)
	}

	results, err = gw.Execute(ctx, "cust-1", []contractx.ToolRequest{
		{ID: "call-2", Tool: ToolProductsSearch, Args: map[string]any{"query": "banana"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	search := results[0].Result.(*database.SearchResult)
	if len(search.Products) != 1 || search.Products[0].Stock != 120 {
		t.Fatalf("rollback failed, banana stock mutated: %+v", search.Products)
	}
}

func TestOrderStatusUnknownOrder(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	results, err := gw.Execute(context.Background(), "cust-1", []contractx.ToolRequest{
		{ID: "call-1", Tool: ToolOrdersStatus, Args: map[string]any{"order_id": float64(9999)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(results[0].Error, "order not found") {
		t.Fatalf("expected order not found, got %q", results[0].Error)
	}
}

func TestOrderStatusListsAllWithoutID(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	ctx := context.Background()

	for _, name := range []string{"Apple", "Carrot"} {
		results, err := gw.Execute(ctx, "cust-7", []contractx.ToolRequest{
			{Tool: ToolOrdersCreate, Args: map[string]any{
				"items": []any{map[string]any{"product_name": name, "quantity": float64(1)}},
			}},
		})
		if err != nil || results[0].Error != "" {
			t.Fatalf("seed order for %s failed: %v %s", name, err, results[0].Error)
		}
	}

	results, err := gw.Execute(ctx, "cust-7", []contractx.ToolRequest{
		{Tool: ToolOrdersStatus},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}
	payload, ok := results[0].Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type: %T", results[0].Result)
	}
	digests, ok := payload["orders"].([]database.OrderDigest)
	if !ok {
		t.Fatalf("unexpected orders type: %T", payload["orders"])
	}
	if len(digests) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(digests))
	}
	if !digests[0].CreatedAt.After(digests[1].CreatedAt) && !digests[0].CreatedAt.Equal(digests[1].CreatedAt) {
		t.Fatal("orders must be newest first")
	}
}

func TestRecommendationsFallbackWithoutHistory(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	results, err := gw.Execute(context.Background(), "fresh-customer", []contractx.ToolRequest{
		{Tool: ToolProductsRecommend, Args: map[string]any{"limit": float64(3)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("unexpected tool error: %s", results[0].Error)
	}
	payload := results[0].Result.(map[string]any)
	products, ok := payload["recommendations"].([]database.Product)
	if !ok {
		t.Fatalf("unexpected recommendations type: %T", payload["recommendations"])
	}
	if len(products) == 0 || len(products) > 3 {
		t.Fatalf("expected 1..3 fallback recommendations, got %d", len(products))
	}
	for _, p := range products {
		if p.Stock <= 0 {
			t.Fatalf("recommended out-of-stock product: %+v", p)
		}
	}
}

func TestRecommendationsFollowPurchaseHistory(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	ctx := context.Background()

	results, err := gw.Execute(ctx, "cust-9", []contractx.ToolRequest{
		{Tool: ToolOrdersCreate, Args: map[string]any{
			"items": []any{map[string]any{"product_name": "Greek Yogurt", "quantity": float64(1)}},
		}},
	})
	if err != nil || results[0].Error != "" {
		t.Fatalf("seed order failed: %v %s", err, results[0].Error)
	}

	results, err = gw.Execute(ctx, "cust-9", []contractx.ToolRequest{
		{Tool: ToolProductsRecommend, Args: map[string]any{"limit": float64(5)}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := results[0].Result.(map[string]any)
	products := payload["recommendations"].([]database.Product)
	if len(products) == 0 {
		t.Fatal("expected recommendations")
	}
	for _, p := range products {
		if p.Category != "dairy" {
			t.Fatalf("expected only dairy recommendations, got %q in %q", p.Name, p.Category)
		}
	}
}

func TestCreateOrderRejectsMalformedItems(t *testing.T) {
	t.Parallel()

	gw := newTestGateway(t)
	cases := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing items", map[string]any{}, "items is required"},
		{"items not array", map[string]any{"items": "banana"}, "items must be an array"},
		{"empty items", map[string]any{"items": []any{}}, "items must not be empty"},
		{"missing quantity", map[string]any{"items": []any{
			map[string]any{"product_name": "Banana"},
		}}, "quantity is required"},
		{"zero quantity", map[string]any{"items": []any{
			map[string]any{"product_name": "Banana", "quantity": float64(0)},
		}}, "quantity must be positive"},
		{"fractional quantity", map[string]any{"items": []any{
			map[string]any{"product_name": "Banana", "quantity": 1.5},
		}}, "quantity must be an integer"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			results, err := gw.Execute(context.Background(), "cust-1", []contractx.ToolRequest{
				{Tool: ToolOrdersCreate, Args: tc.args},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(results[0].Error, tc.want) {
				t.Fatalf("expected %q in error, got %q", tc.want, results[0].Error)
			}
		})
	}
}
