package orchestratornode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
)

func DispatchAgent(ctx context.Context, in *GraphState, models contractx.Registry) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	agent, agentType, err := pickAgent(in.Category, models)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	reply, err := agent.Process(ctx, in.Message, in.History)
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("category", string(in.Category)).
		Str("agent", string(agentType)).
		Int("history_turns", len(in.History)).
		Dur("elapsed", time.Since(started)).
		Msg("orchestrator: agent replied")

	in.Agent = agentType
	in.Reply = reply
	return in, nil
}

func pickAgent(category contractx.Category, models contractx.Registry) (contractx.Agent, contractx.AgentType, error) {
	switch category {
	case contractx.CategoryCustomerSupport:
		return models.Support(), contractx.AgentTypeSupport, nil
	case contractx.CategoryAccounts:
		return models.Accounts(), contractx.AgentTypeAccounts, nil
	case contractx.CategoryLoansServices:
		return models.Loans(), contractx.AgentTypeLoans, nil
	case "":
		return nil, "", ErrNoCategory
	default:
		return nil, "", fmt.Errorf("%w: unsupported category=%q", contractx.ErrValidation, category)
	}
}
