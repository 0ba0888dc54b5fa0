package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
)

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[GraphInput, GraphOutput], error) {
	graph := compose.NewGraph[GraphInput, GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in GraphInput) (*GraphState, error) {
			return validateRequest(in, o.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("load_or_create_session",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return loadOrCreateSession(ctx, in, o.store, o.customerID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node load_or_create_session: %w", err)
	}

	if err := graph.AddLambdaNode("append_user_message",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return appendUserMessage(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_user_message: %w", err)
	}

	if err := graph.AddLambdaNode("run_assistant",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return runAssistant(ctx, in, o.assistant, o.tools, o.maxToolRounds)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_assistant: %w", err)
	}

	if err := graph.AddLambdaNode("append_assistant_reply",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return appendAssistantReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node append_assistant_reply: %w", err)
	}

	if err := graph.AddLambdaNode("save_session",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (*GraphState, error) {
			return saveSession(ctx, in, o.store)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node save_session: %w", err)
	}

	if err := graph.AddLambdaNode("finalize_reply",
		compose.InvokableLambda(func(ctx context.Context, in *GraphState) (GraphOutput, error) {
			return finalizeReply(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_reply: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "load_or_create_session"},
		{"load_or_create_session", "append_user_message"},
		{"append_user_message", "run_assistant"},
		{"run_assistant", "append_assistant_reply"},
		{"append_assistant_reply", "save_session"},
		{"save_session", "finalize_reply"},
		{"finalize_reply", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
