package tool

import (
	"context"

	contractx "github.com/virtualstore/salesagent/agent/contract"
	"github.com/virtualstore/salesagent/pkg/database"
)

func (g *Gateway) searchProducts(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	query, err := optionalString(req.Args, "query")
	if err != nil {
		return errorResult(req, err)
	}
	category, err := optionalString(req.Args, "category")
	if err != nil {
		return errorResult(req, err)
	}
	minPrice, err := optionalFloat(req.Args, "min_price")
	if err != nil {
		return errorResult(req, err)
	}
	maxPrice, err := optionalFloat(req.Args, "max_price")
	if err != nil {
		return errorResult(req, err)
	}

	result, err := g.db.SearchProducts(ctx, database.SearchFilter{
		Query:    query,
		Category: category,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
	})
	if err != nil {
		return errorResult(req, err)
	}
	return okResult(req, result)
}

func (g *Gateway) listCategories(ctx context.Context, req contractx.ToolRequest) contractx.ToolResult {
	categories, err := g.db.Categories(ctx)
	if err != nil {
		return errorResult(req, err)
	}
	return okResult(req, map[string]any{"categories": categories})
}
