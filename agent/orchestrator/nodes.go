package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/virtualstore/salesagent/agent/contract"
	sessionx "github.com/virtualstore/salesagent/agent/session"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply     string
	ToolsUsed []string
}

// GraphState is threaded through the turn pipeline. Session is the
// transcript being extended this turn; Reply is set once the assistant
// answers without requesting more tools.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session   *sessionx.State
	Reply     string
	ToolsUsed []string
}

func validateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}

func loadOrCreateSession(
	ctx context.Context,
	in *GraphState,
	store sessionx.Store,
	customerID string,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if errors.Is(err, sessionx.ErrStateNotFound) {
		st = sessionx.NewState(in.SessionID, customerID, in.Now)
		err = nil
	}
	if err != nil {
		return nil, err
	}

	in.Session = st
	return in, nil
}

func appendUserMessage(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}
	in.Session.Append(sessionx.UserMessage(in.Text, in.Now))
	return in, nil
}

// runAssistant drives the decision loop: ask the model, execute any tool
// requests, feed the results back, and repeat until the model answers in
// prose. The round cap bounds a model that keeps requesting tools.
func runAssistant(
	ctx context.Context,
	in *GraphState,
	assistant contractx.Assistant,
	tools contractx.ToolGateway,
	maxRounds int,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}

	for round := 0; round < maxRounds; round++ {
		resp, err := assistant.Respond(ctx, contractx.AssistantRequest{
			CustomerID: in.Session.CustomerID,
			Transcript: in.Session.Messages,
		})
		if err != nil {
			return nil, err
		}

		if len(resp.ToolRequests) == 0 {
			in.Reply = resp.Message
			return in, nil
		}

		calls := make([]sessionx.ToolCall, 0, len(resp.ToolRequests))
		for _, req := range resp.ToolRequests {
			rawArgs, err := json.Marshal(req.Args)
			if err != nil {
				return nil, fmt.Errorf("%w: marshal tool args for %s: %v", contractx.ErrValidation, req.Tool, err)
			}
			calls = append(calls, sessionx.ToolCall{
				ID:        req.ID,
				Name:      req.Tool,
				Arguments: string(rawArgs),
			})
		}
		in.Session.Append(sessionx.AssistantToolCalls(calls, in.Now))

		results, err := tools.Execute(ctx, in.Session.CustomerID, resp.ToolRequests)
		if err != nil {
			return nil, err
		}

		for _, res := range results {
			payload, err := json.Marshal(res)
			if err != nil {
				return nil, fmt.Errorf("%w: marshal tool result for %s: %v", contractx.ErrValidation, res.Tool, err)
			}
			in.Session.Append(sessionx.ToolMessage(res.ID, string(payload), in.Now))
			in.ToolsUsed = append(in.ToolsUsed, res.Tool)
		}
	}

	return nil, fmt.Errorf("%w: gave up after %d rounds", contractx.ErrToolRoundsExhausted, maxRounds)
}

func appendAssistantReply(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Reply) == "" {
		return nil, fmt.Errorf("%w: assistant returned empty reply", contractx.ErrValidation)
	}
	in.Session.Append(sessionx.AssistantMessage(in.Reply, in.Now))
	return in, nil
}

func saveSession(ctx context.Context, in *GraphState, store sessionx.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: session is not loaded", contractx.ErrValidation)
	}
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrValidation, err)
	}
	in.Session.Touch(in.Now)
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", in.SessionID, err)
	}
	return in, nil
}

func finalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	reply := strings.TrimSpace(in.Reply)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: assistant returned empty reply", contractx.ErrValidation)
	}
	return GraphOutput{Reply: reply, ToolsUsed: in.ToolsUsed}, nil
}
