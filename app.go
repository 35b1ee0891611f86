package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/neobank-assistant/agent/agents/orchestrator"
	"github.com/tanpawarit/neobank-assistant/agent/agents/specialist"
	llmx "github.com/tanpawarit/neobank-assistant/agent/llm"
	storex "github.com/tanpawarit/neobank-assistant/agent/store"
	toolx "github.com/tanpawarit/neobank-assistant/agent/tool"
	configx "github.com/tanpawarit/neobank-assistant/pkg/config"
	qstashx "github.com/tanpawarit/neobank-assistant/pkg/qstash"
)

type AppConfig struct {
	// UserID is the customer every tool call acts for.
	UserID int64 `envconfig:"BANK_USER_ID" default:"1"`
	// SeedOnStart mirrors the demo bootstrap: seed an empty database on serve.
	SeedOnStart bool `envconfig:"BANK_SEED_ON_START" default:"true"`
	// NotifyTimeout caps the back-office publish inside a chat turn.
	NotifyTimeout time.Duration `envconfig:"BANK_NOTIFY_TIMEOUT" default:"2s"`
}

// openStore opens the configured database and brings the schema up to date.
func openStore(ctx context.Context) (*storex.Store, error) {
	dbCfg, err := configx.New[storex.Config]("DB")
	if err != nil {
		return nil, fmt.Errorf("load db config: %w", err)
	}

	st, err := storex.Open(ctx, *dbCfg)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func seedStore(ctx context.Context, st *storex.Store) (*storex.SeedResult, error) {
	res, err := st.Seed(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().
		Int64("user_id", res.UserID).
		Int64("account_id", res.AccountID).
		Bool("user_created", res.UserCreated).
		Bool("account_created", res.AccountCreated).
		Int("transactions_created", res.TransactionsCreated).
		Msg("database seeded")
	return res, nil
}

// buildNotifier returns nil when QStash is not configured.
func buildNotifier() (toolx.Notifier, error) {
	qCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		return nil, fmt.Errorf("load qstash config: %w", err)
	}

	client, err := qstashx.NewClient(*qCfg)
	if errors.Is(err, qstashx.ErrNotConfigured) {
		log.Debug().Msg("qstash not configured, service request notifications disabled")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("qstash client: %w", err)
	}
	log.Info().Str("destination", qCfg.Destination).Msg("service request notifications enabled")
	return toolx.NewPublishNotifier(client), nil
}

func buildOrchestrator(ctx context.Context, st *storex.Store) (*orchestrator.Orchestrator, error) {
	appCfg, err := configx.New[AppConfig]("")
	if err != nil {
		return nil, fmt.Errorf("load app config: %w", err)
	}
	llmCfg, err := configx.New[llmx.Config]("LLM")
	if err != nil {
		return nil, fmt.Errorf("load llm config: %w", err)
	}
	notifier, err := buildNotifier()
	if err != nil {
		return nil, err
	}

	deps := toolx.Deps{
		UserID:        appCfg.UserID,
		Accounts:      st,
		Requests:      st,
		Notifier:      notifier,
		NotifyTimeout: appCfg.NotifyTimeout,
	}

	registry, err := specialist.NewRegistry(ctx, *llmCfg, deps)
	if err != nil {
		return nil, fmt.Errorf("build agents: %w", err)
	}
	return orchestrator.New(registry)
}
