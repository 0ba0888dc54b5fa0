package tool

import (
	"context"

	contractx "github.com/virtualstore/salesagent/agent/contract"
)

func (g *Gateway) createOrder(ctx context.Context, customerID string, req contractx.ToolRequest) contractx.ToolResult {
	lines, err := orderLines(req.Args)
	if err != nil {
		return errorResult(req, err)
	}

	conf, err := g.db.CreateOrder(ctx, customerID, lines)
	if err != nil {
		return errorResult(req, err)
	}
	return okResult(req, conf)
}

func (g *Gateway) orderStatus(ctx context.Context, customerID string, req contractx.ToolRequest) contractx.ToolResult {
	orderID, set, err := optionalInt(req.Args, "order_id")
	if err != nil {
		return errorResult(req, err)
	}

	if set {
		summary, err := g.db.OrderStatus(ctx, customerID, int64(orderID))
		if err != nil {
			return errorResult(req, err)
		}
		return okResult(req, summary)
	}

	digests, err := g.db.CustomerOrders(ctx, customerID)
	if err != nil {
		return errorResult(req, err)
	}
	return okResult(req, map[string]any{"orders": digests})
}
