// Package orchestrator owns one chat turn end to end: validate the
// request, extend the session transcript, drive the assistant's decision
// loop with tool execution, and persist the result.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/virtualstore/salesagent/agent/contract"
	sessionx "github.com/virtualstore/salesagent/agent/session"
)

const defaultMaxToolRounds = 8

type Config struct {
	CustomerID    string
	MaxToolRounds int
}

// TurnResult is what a completed turn hands back to the front end.
type TurnResult struct {
	Reply     string
	ToolsUsed []string
}

type Orchestrator struct {
	store     sessionx.Store
	assistant contractx.Assistant
	tools     contractx.ToolGateway

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	customerID    string
	maxToolRounds int

	now func() time.Time
}

func New(
	store sessionx.Store,
	assistant contractx.Assistant,
	tools contractx.ToolGateway,
	cfg Config,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	if assistant == nil {
		return nil, errors.New("assistant is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}

	customerID := strings.TrimSpace(cfg.CustomerID)
	if customerID == "" {
		customerID = "default-customer"
	}
	maxToolRounds := cfg.MaxToolRounds
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}

	o := &Orchestrator{
		store:         store,
		assistant:     assistant,
		tools:         tools,
		customerID:    customerID,
		maxToolRounds: maxToolRounds,
		now:           time.Now,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID string, text string) (TurnResult, error) {
	out, err := o.graphRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return TurnResult{}, err
	}
	return TurnResult{Reply: out.Reply, ToolsUsed: out.ToolsUsed}, nil
}
