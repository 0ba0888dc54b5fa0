// Package tool is the validated boundary between the model and the data
// store. Every tool call is checked against the catalog and its arguments
// are type-checked before any query runs; rejected calls come back as
// error results the model can read, never as Go errors.
package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/virtualstore/salesagent/agent/contract"
	"github.com/virtualstore/salesagent/pkg/database"
)

const (
	ToolProductsSearch     = "products.search"
	ToolProductsCategories = "products.categories"
	ToolProductsRecommend  = "products.recommend"
	ToolOrdersCreate       = "orders.create"
	ToolOrdersStatus       = "orders.status"
)

// Infos describes the full tool catalog for model binding.
func Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{
		{
			Name: ToolProductsSearch,
			Desc: "Search in-stock products by name or description, optionally narrowed by category and price range. Returns matches plus category counts and catalog price statistics.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"query":     {Type: schema.String, Desc: "Search term matched against product name and description", Required: false},
				"category":  {Type: schema.String, Desc: "Exact category to filter by", Required: false},
				"min_price": {Type: schema.Number, Desc: "Minimum price, inclusive", Required: false},
				"max_price": {Type: schema.Number, Desc: "Maximum price, inclusive", Required: false},
			}),
		},
		{
			Name:        ToolProductsCategories,
			Desc:        "List every product category that currently has stock.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		{
			Name: ToolProductsRecommend,
			Desc: "Recommend in-stock products based on the customer's purchase history. Falls back to a general selection for customers without orders.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"limit": {Type: schema.Integer, Desc: "Maximum number of recommendations, default 5", Required: false},
			}),
		},
		{
			Name: ToolOrdersCreate,
			Desc: "Place an order for one or more products by name. The whole order succeeds or fails together; stock is checked and reserved atomically.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"items": {
					Type:     schema.Array,
					Desc:     "Order lines",
					Required: true,
					ElemInfo: &schema.ParameterInfo{
						Type: schema.Object,
						SubParams: map[string]*schema.ParameterInfo{
							"product_name": {Type: schema.String, Desc: "Product name exactly as listed in the catalog", Required: true},
							"quantity":     {Type: schema.Integer, Desc: "Units to order, must be positive", Required: true},
						},
					},
				},
			}),
		},
		{
			Name: ToolOrdersStatus,
			Desc: "Check order status. With order_id returns that order's details; without it lists all of the customer's orders, newest first.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"order_id": {Type: schema.Integer, Desc: "Order id to look up; omit to list all orders", Required: false},
			}),
		},
	}
}

// Gateway executes validated tool requests against the store.
type Gateway struct {
	db *database.DB
}

func NewGateway(db *database.DB) (*Gateway, error) {
	if db == nil {
		return nil, fmt.Errorf("tool gateway: nil database")
	}
	return &Gateway{db: db}, nil
}

// Execute runs each request in order and returns one result per request.
// Unknown tools and bad arguments are reported inside the result; only a
// canceled context aborts the batch.
func (g *Gateway) Execute(ctx context.Context, customerID string, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, g.execute(ctx, customerID, req))
	}
	return results, nil
}

func (g *Gateway) execute(ctx context.Context, customerID string, req contractx.ToolRequest) contractx.ToolResult {
	switch req.Tool {
	case ToolProductsSearch:
		return g.searchProducts(ctx, req)
	case ToolProductsCategories:
		return g.listCategories(ctx, req)
	case ToolProductsRecommend:
		return g.recommendProducts(ctx, customerID, req)
	case ToolOrdersCreate:
		return g.createOrder(ctx, customerID, req)
	case ToolOrdersStatus:
		return g.orderStatus(ctx, customerID, req)
	default:
		return contractx.ToolResult{
			ID:    req.ID,
			Tool:  req.Tool,
			Error: fmt.Sprintf("unknown tool: %s", req.Tool),
		}
	}
}

func errorResult(req contractx.ToolRequest, err error) contractx.ToolResult {
	return contractx.ToolResult{ID: req.ID, Tool: req.Tool, Error: err.Error()}
}

func okResult(req contractx.ToolRequest, payload any) contractx.ToolResult {
	return contractx.ToolResult{ID: req.ID, Tool: req.Tool, Result: payload}
}
