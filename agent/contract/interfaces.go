package contract

import "context"

// Assistant makes one model decision: answer directly or request tools.
type Assistant interface {
	Respond(ctx context.Context, req AssistantRequest) (AssistantResponse, error)
}

// ToolGateway validates and executes tool requests against the data store.
type ToolGateway interface {
	Execute(ctx context.Context, customerID string, reqs []ToolRequest) ([]ToolResult, error)
}
