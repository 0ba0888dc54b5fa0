package contract

import (
	sessionx "github.com/virtualstore/salesagent/agent/session"
)

// ToolRequest is a tool invocation the model asked for. ID carries the
// provider tool-call id so results can be correlated in the transcript.
type ToolRequest struct {
	ID   string         `json:"id"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is the outcome of one tool execution. Business failures and
// rejected arguments populate Error instead of raising a Go error, so the
// model sees them and can recover.
type ToolResult struct {
	ID     string `json:"id,omitempty"`
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AssistantRequest is one decision step: the full transcript so far plus
// the customer the session belongs to.
type AssistantRequest struct {
	CustomerID string
	Transcript []sessionx.Message
}

// AssistantResponse is either a final reply (Message set, no tool requests)
// or a batch of validated tool requests to execute before asking again.
type AssistantResponse struct {
	Message      string
	ToolRequests []ToolRequest
}
