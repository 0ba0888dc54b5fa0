// Package assistant wraps the tool-bound chat model behind the Assistant
// contract. One Respond call is one model decision: either a final reply
// or a batch of validated tool requests.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/virtualstore/salesagent/agent/contract"
	sessionx "github.com/virtualstore/salesagent/agent/session"
)

type Assistant struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
	allowedTools map[string]struct{}
	now          func() time.Time
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	tools []*schema.ToolInfo,
) (*Assistant, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is nil", contractx.ErrModelInvoke)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	if systemPrompt == "" {
		return nil, contractx.ErrPromptMissing
	}

	toolModel, err := chatModel.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileDecisionGraph(ctx, toolModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	allowed := make(map[string]struct{}, len(tools))
	for _, t := range tools {
		if t == nil || strings.TrimSpace(t.Name) == "" {
			continue
		}
		allowed[t.Name] = struct{}{}
	}

	return &Assistant{
		runner:       runner,
		systemPrompt: systemPrompt,
		allowedTools: allowed,
		now:          time.Now,
	}, nil
}

func (a *Assistant) Respond(ctx context.Context, req contractx.AssistantRequest) (contractx.AssistantResponse, error) {
	messages, err := a.buildMessages(req)
	if err != nil {
		return contractx.AssistantResponse{}, err
	}

	msg, err := a.runner.Invoke(ctx, messages)
	if err != nil {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: nil model response", contractx.ErrSchemaViolation)
	}

	if len(msg.ToolCalls) > 0 {
		reqs, err := a.toToolRequests(msg.ToolCalls)
		if err != nil {
			return contractx.AssistantResponse{}, err
		}
		return contractx.AssistantResponse{ToolRequests: reqs}, nil
	}

	reply := strings.TrimSpace(msg.Content)
	if reply == "" {
		return contractx.AssistantResponse{}, fmt.Errorf("%w: empty reply without tool calls", contractx.ErrSchemaViolation)
	}
	return contractx.AssistantResponse{Message: reply}, nil
}

func (a *Assistant) buildMessages(req contractx.AssistantRequest) ([]*schema.Message, error) {
	if len(req.Transcript) == 0 {
		return nil, fmt.Errorf("%w: transcript is empty", contractx.ErrValidation)
	}

	header := fmt.Sprintf("%s\n\nCustomer ID: %s\nCurrent time: %s",
		a.systemPrompt,
		strings.TrimSpace(req.CustomerID),
		a.now().UTC().Format(time.RFC3339),
	)

	messages := make([]*schema.Message, 0, len(req.Transcript)+1)
	messages = append(messages, schema.SystemMessage(header))

	for i, msg := range req.Transcript {
		converted, err := toSchemaMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: transcript index=%d: %v", contractx.ErrValidation, i, err)
		}
		messages = append(messages, converted)
	}
	return messages, nil
}

func toSchemaMessage(msg sessionx.Message) (*schema.Message, error) {
	switch msg.Role {
	case sessionx.RoleUser:
		return schema.UserMessage(msg.Content), nil
	case sessionx.RoleAssistant:
		out := &schema.Message{Role: schema.Assistant, Content: msg.Content}
		for _, call := range msg.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, schema.ToolCall{
				ID: call.ID,
				Function: schema.FunctionCall{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			})
		}
		return out, nil
	case sessionx.RoleTool:
		if strings.TrimSpace(msg.ToolCallID) == "" {
			return nil, fmt.Errorf("tool message without tool_call_id")
		}
		return &schema.Message{
			Role:       schema.Tool,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported role %q", msg.Role)
	}
}

func (a *Assistant) toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call without a name", contractx.ErrSchemaViolation)
		}
		if _, ok := a.allowedTools[name]; !ok {
			return nil, fmt.Errorf("%w: tool %q is not in the catalog", contractx.ErrSchemaViolation, name)
		}

		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: tool %q arguments are not a JSON object: %v", contractx.ErrSchemaViolation, name, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			ID:   call.ID,
			Tool: name,
			Args: args,
		})
	}
	return reqs, nil
}
