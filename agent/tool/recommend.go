package tool

import (
	"context"

	contractx "github.com/virtualstore/salesagent/agent/contract"
)

const defaultRecommendLimit = 5

func (g *Gateway) recommendProducts(ctx context.Context, customerID string, req contractx.ToolRequest) contractx.ToolResult {
	limit, set, err := optionalInt(req.Args, "limit")
	if err != nil {
		return errorResult(req, err)
	}
	if !set || limit <= 0 {
		limit = defaultRecommendLimit
	}

	products, err := g.db.Recommendations(ctx, customerID, limit)
	if err != nil {
		return errorResult(req, err)
	}
	return okResult(req, map[string]any{"recommendations": products})
}
