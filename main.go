package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	assistantx "github.com/virtualstore/salesagent/agent/assistant"
	llmx "github.com/virtualstore/salesagent/agent/llm"
	orchestratorx "github.com/virtualstore/salesagent/agent/orchestrator"
	promptx "github.com/virtualstore/salesagent/agent/prompt"
	sessionx "github.com/virtualstore/salesagent/agent/session"
	toolx "github.com/virtualstore/salesagent/agent/tool"
	"github.com/virtualstore/salesagent/chatui"
	configx "github.com/virtualstore/salesagent/pkg/config"
	databasex "github.com/virtualstore/salesagent/pkg/database"
	_ "github.com/virtualstore/salesagent/pkg/logger/autoload"
	openrouterx "github.com/virtualstore/salesagent/pkg/openrouter"
)

type AppConfig struct {
	CustomerID    string `envconfig:"CUSTOMER_ID" split_words:"true" default:"3442-587242"`
	SessionStore  string `envconfig:"SESSION_STORE" split_words:"true" default:"memory"`
	MaxToolRounds int    `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"8"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	dbCfg := configx.MustNew[databasex.Config]("DATABASE")
	db := databasex.MustNew(*dbCfg)
	defer db.Close()
	if err := db.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("initialize database")
	}

	openRouterCfg := llmCfg.OpenRouter()
	if client := openrouterx.NewClient(openRouterCfg); client != nil {
		if err := openrouterx.Ping(ctx, client); err != nil {
			log.Warn().Err(err).Msg("openrouter ping failed; chat turns may error")
		}
	}

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	assistant, err := assistantx.New(ctx, chatModel, promptx.Assistant(), toolx.Infos())
	if err != nil {
		log.Fatal().Err(err).Msg("create assistant")
	}

	gateway, err := toolx.NewGateway(db)
	if err != nil {
		log.Fatal().Err(err).Msg("create tool gateway")
	}

	store, err := newSessionStore(appCfg.SessionStore)
	if err != nil {
		log.Fatal().Err(err).Msg("create session store")
	}

	orch, err := orchestratorx.New(store, assistant, gateway, orchestratorx.Config{
		CustomerID:    appCfg.CustomerID,
		MaxToolRounds: appCfg.MaxToolRounds,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create orchestrator")
	}

	sessionID := fmt.Sprintf("chat_%d", time.Now().UnixNano())
	turn := func(ctx context.Context, text string) (string, []string, error) {
		out, err := orch.HandleMessage(ctx, sessionID, text)
		if err != nil {
			return "", nil, err
		}
		return out.Reply, out.ToolsUsed, nil
	}

	program := tea.NewProgram(chatui.New(turn), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("chat ui exited")
		os.Exit(1)
	}
}

func newSessionStore(kind string) (sessionx.Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "memory":
		return sessionx.NewMemoryStore(), nil
	case "redis":
		redisCfg := configx.MustNew[sessionx.UpstashRedisConfig]("UPSTASH_REDIS")
		return sessionx.NewUpstashRedisStore(*redisCfg)
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}
