package specialist

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
	toolx "github.com/tanpawarit/neobank-assistant/agent/tool"
)

// DomainAgent is the closed set of conversational agents: SupportAgent,
// AccountsAgent and LoansAgent. Other packages cannot add variants.
type DomainAgent interface {
	contractx.Agent
	AgentType() contractx.AgentType
	domainAgent()
}

var (
	_ DomainAgent = (*SupportAgent)(nil)
	_ DomainAgent = (*AccountsAgent)(nil)
	_ DomainAgent = (*LoansAgent)(nil)
)

// SupportAgent answers general questions in one model call and has no tools.
type SupportAgent struct{ *agentCore }

// AccountsAgent reads the bound identity's balance and transactions.
type AccountsAgent struct{ *agentCore }

// LoansAgent files loan applications and service requests.
type LoansAgent struct{ *agentCore }

func (*SupportAgent) domainAgent()  {}
func (*AccountsAgent) domainAgent() {}
func (*LoansAgent) domainAgent()    {}

// agentCore holds what a variant needs for one turn. It is immutable after
// construction, so one agent serves concurrent requests.
type agentCore struct {
	agentType   contractx.AgentType
	chatModel   einomodel.BaseChatModel
	toolModel   einomodel.BaseChatModel
	executor    toolx.Executor
	callTimeout time.Duration
	runner      compose.Runnable[turnInput, string]
}

func newAgentCore(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	deps toolx.Deps,
	callTimeout time.Duration,
) (*agentCore, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model for agent=%s is nil", contractx.ErrValidation, agentType)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, agentType)
	}

	core := &agentCore{
		agentType:   agentType,
		chatModel:   chatModel,
		callTimeout: callTimeout,
	}

	tools, executor := toolx.BuildForAgent(agentType, deps)
	if len(tools) > 0 {
		toolModel, err := chatModel.WithTools(tools)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for agent=%s: %v", contractx.ErrModelInvoke, agentType, err)
		}
		core.toolModel = toolModel
		core.executor = executor
	}

	runner, err := compileTurnGraph(ctx, string(agentType)+".turn_graph", systemPrompt, core.firstCompletion, core.executeTools, core.finalCompletion)
	if err != nil {
		return nil, fmt.Errorf("%w: compile turn graph for agent=%s: %v", contractx.ErrModelInvoke, agentType, err)
	}
	core.runner = runner

	return core, nil
}

func newSupportAgent(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string, callTimeout time.Duration) (*SupportAgent, error) {
	core, err := newAgentCore(ctx, contractx.AgentTypeSupport, chatModel, systemPrompt, toolx.Deps{}, callTimeout)
	if err != nil {
		return nil, err
	}
	return &SupportAgent{agentCore: core}, nil
}

func newAccountsAgent(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string, deps toolx.Deps, callTimeout time.Duration) (*AccountsAgent, error) {
	core, err := newAgentCore(ctx, contractx.AgentTypeAccounts, chatModel, systemPrompt, deps, callTimeout)
	if err != nil {
		return nil, err
	}
	return &AccountsAgent{agentCore: core}, nil
}

func newLoansAgent(ctx context.Context, chatModel einomodel.ToolCallingChatModel, systemPrompt string, deps toolx.Deps, callTimeout time.Duration) (*LoansAgent, error) {
	core, err := newAgentCore(ctx, contractx.AgentTypeLoans, chatModel, systemPrompt, deps, callTimeout)
	if err != nil {
		return nil, err
	}
	return &LoansAgent{agentCore: core}, nil
}

func (a *agentCore) AgentType() contractx.AgentType {
	return a.agentType
}

// Process runs one turn: system instruction, normalised history and the user
// message go to the model, and at most one round of tool calls is executed
// before the final answer.
func (a *agentCore) Process(ctx context.Context, message string, history []historyx.Turn) (string, error) {
	return a.runner.Invoke(ctx, turnInput{Message: message, History: history})
}

func (a *agentCore) firstCompletion(ctx context.Context, messages []*schema.Message) (*turnState, error) {
	st := &turnState{Phase: PhaseAwaitingFirstCompletion, Messages: messages}

	if a.toolModel == nil {
		msg, err := a.generate(ctx, a.chatModel, st)
		if err != nil {
			return nil, err
		}
		st.Reply = msg.Content
		st.Phase = PhaseDone
		return st, nil
	}

	msg, err := a.generate(ctx, a.toolModel, st, einomodel.WithToolChoice(schema.ToolChoiceAllowed))
	if err != nil {
		return nil, err
	}

	if len(msg.ToolCalls) == 0 {
		st.Reply = msg.Content
		st.Phase = PhaseDone
		return st, nil
	}

	assistant := *msg
	if assistant.Role == "" {
		assistant.Role = schema.Assistant
	}
	st.Messages = append(st.Messages, &assistant)
	st.Pending = msg.ToolCalls
	st.Phase = PhaseAwaitingToolResults
	return st, nil
}

// executeTools runs every pending call in request order and appends one tool
// message per call.
func (a *agentCore) executeTools(ctx context.Context, st *turnState) (*turnState, error) {
	if st == nil || st.Phase != PhaseAwaitingToolResults {
		return nil, fmt.Errorf("%w: execute tools outside awaiting_tool_results", contractx.ErrValidation)
	}

	for _, call := range st.Pending {
		name := strings.TrimSpace(call.Function.Name)

		args, err := toolx.ParseArguments(call.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("%w: agent=%s tool=%s call=%s", err, a.agentType, name, call.ID)
		}

		res, err := a.executor(ctx, name, args)
		if err != nil {
			return nil, err
		}
		res.CallID = call.ID
		st.ToolResults = append(st.ToolResults, res)

		st.Messages = append(st.Messages, &schema.Message{
			Role:       schema.Tool,
			Content:    res.Content,
			ToolCallID: call.ID,
			ToolName:   name,
		})
	}

	st.Pending = nil
	st.Phase = PhaseAwaitingFinalCompletion
	return st, nil
}

func (a *agentCore) finalCompletion(ctx context.Context, st *turnState) (*turnState, error) {
	if st == nil || st.Phase != PhaseAwaitingFinalCompletion {
		return nil, fmt.Errorf("%w: final completion outside awaiting_final_completion", contractx.ErrValidation)
	}

	msg, err := a.generate(ctx, a.chatModel, st)
	if err != nil {
		return nil, err
	}
	st.Reply = msg.Content
	st.Phase = PhaseDone
	return st, nil
}

func (a *agentCore) generate(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	st *turnState,
	opts ...einomodel.Option,
) (*schema.Message, error) {
	callCtx, cancel := withCallTimeout(ctx, a.callTimeout)
	defer cancel()

	started := time.Now()
	msg, err := chatModel.Generate(callCtx, st.Messages, opts...)
	logger := log.Ctx(ctx).With().
		Str("agent", string(a.agentType)).
		Str("phase", string(st.Phase)).
		Dur("elapsed", time.Since(started)).
		Logger()
	if err != nil {
		logger.Error().Err(err).Msg("agent: model call failed")
		return nil, fmt.Errorf("%w: agent=%s phase=%s: %v", contractx.ErrModelInvoke, a.agentType, st.Phase, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: agent=%s phase=%s: empty model response", contractx.ErrSchemaViolation, a.agentType, st.Phase)
	}

	logger.Debug().Int("tool_calls", len(msg.ToolCalls)).Msg("agent: model call completed")
	return msg, nil
}

func withCallTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
