package specialist

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	llmx "github.com/tanpawarit/neobank-assistant/agent/llm"
	promptx "github.com/tanpawarit/neobank-assistant/agent/prompt"
	toolx "github.com/tanpawarit/neobank-assistant/agent/tool"
)

// Models holds one chat model per agent. Models may be shared.
type Models struct {
	Router   einomodel.ToolCallingChatModel
	Support  einomodel.ToolCallingChatModel
	Accounts einomodel.ToolCallingChatModel
	Loans    einomodel.ToolCallingChatModel
}

type Option func(*options)

type options struct {
	prompts     promptx.PromptSet
	callTimeout time.Duration
}

func WithPrompts(prompts promptx.PromptSet) Option {
	return func(o *options) {
		o.prompts = prompts
	}
}

// WithCallTimeout bounds every model round-trip of the router and the agents.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) {
		o.callTimeout = d
	}
}

type registryImpl struct {
	router   *routerImpl
	support  *SupportAgent
	accounts *AccountsAgent
	loans    *LoansAgent
}

var _ contractx.Registry = (*registryImpl)(nil)

func (r *registryImpl) Router() contractx.Router {
	return r.router
}

func (r *registryImpl) Support() contractx.Agent {
	return r.support
}

func (r *registryImpl) Accounts() contractx.Agent {
	return r.accounts
}

func (r *registryImpl) Loans() contractx.Agent {
	return r.loans
}

// NewRegistry builds one provider model per agent from cfg and binds the
// tool agents to deps.
func NewRegistry(ctx context.Context, cfg llmx.Config, deps toolx.Deps) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var models Models
	for _, item := range []struct {
		agent contractx.AgentType
		dst   *einomodel.ToolCallingChatModel
	}{
		{agent: contractx.AgentTypeRouter, dst: &models.Router},
		{agent: contractx.AgentTypeSupport, dst: &models.Support},
		{agent: contractx.AgentTypeAccounts, dst: &models.Accounts},
		{agent: contractx.AgentTypeLoans, dst: &models.Loans},
	} {
		providerCfg := cfg.ProviderFor(item.agent)
		m, err := providerCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, item.agent, err)
		}
		*item.dst = m
	}

	return NewRegistryWithModels(ctx, models, deps, WithCallTimeout(cfg.CallTimeout))
}

func NewRegistryWithModels(ctx context.Context, models Models, deps toolx.Deps, opts ...Option) (contractx.Registry, error) {
	o := &options{prompts: promptx.LoadPromptSet()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.prompts.Validate(); err != nil {
		return nil, err
	}

	router, err := newRouter(ctx, models.Router, o.prompts.Router, o.callTimeout)
	if err != nil {
		return nil, err
	}
	support, err := newSupportAgent(ctx, models.Support, o.prompts.Support, o.callTimeout)
	if err != nil {
		return nil, err
	}
	accounts, err := newAccountsAgent(ctx, models.Accounts, o.prompts.Accounts, deps, o.callTimeout)
	if err != nil {
		return nil, err
	}
	loans, err := newLoansAgent(ctx, models.Loans, o.prompts.Loans, deps, o.callTimeout)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		router:   router,
		support:  support,
		accounts: accounts,
		loans:    loans,
	}, nil
}
