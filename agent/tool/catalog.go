package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

const (
	ToolGetBalance            = "get_balance"
	ToolGetRecentTransactions = "get_recent_transactions"
	ToolApplyForLoan          = "apply_for_loan"
	ToolRequestService        = "request_service"

	// UnknownFunction is returned as tool content for names no handler is bound to.
	UnknownFunction = "Error: Unknown function"
	// AccountNotFound is returned when the bound identity owns no account.
	AccountNotFound = "Account not found."
)

type AccountStore interface {
	GetAccountByUser(ctx context.Context, userID int64) (*storex.Account, error)
	ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]storex.Transaction, error)
}

type ServiceRequestStore interface {
	CreateServiceRequest(ctx context.Context, req *storex.ServiceRequest) error
}

// Notifier is told about every service request a tool creates.
type Notifier interface {
	ServiceRequestCreated(ctx context.Context, req storex.ServiceRequest) error
}

// Deps binds the tool handlers to one identity and its stores.
type Deps struct {
	UserID   int64
	Accounts AccountStore
	Requests ServiceRequestStore
	Notifier Notifier
	// NotifyTimeout caps each notification; zero uses DefaultNotifyTimeout.
	NotifyTimeout time.Duration
}

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

type handler func(ctx context.Context, args map[string]any) (string, error)

func BuildForAgent(agentType contractx.AgentType, deps Deps) ([]*schema.ToolInfo, Executor) {
	return infosForAgent(agentType), NewExecutor(agentType, deps)
}

// NewExecutor binds the agent's tool names to handlers. Names without a
// handler produce UnknownFunction instead of an error.
func NewExecutor(agentType contractx.AgentType, deps Deps) Executor {
	handlers := handlersForAgent(agentType, deps)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		logger := log.Ctx(ctx).With().
			Str("agent", string(agentType)).
			Str("tool", tool).
			Logger()

		h, ok := handlers[tool]
		if !ok {
			logger.Warn().Msg("tool: unknown function requested")
			return contractx.ToolResult{Tool: tool, Content: UnknownFunction}, nil
		}

		content, err := h(ctx, args)
		if err != nil {
			logger.Error().Err(err).Msg("tool: execution failed")
			return contractx.ToolResult{Tool: tool}, fmt.Errorf("tool %s: %w", tool, err)
		}

		logger.Info().Int("content_len", len(content)).Msg("tool: executed")
		return contractx.ToolResult{Tool: tool, Content: content}, nil
	}
}

func handlersForAgent(agentType contractx.AgentType, deps Deps) map[string]handler {
	switch agentType {
	case contractx.AgentTypeAccounts:
		a := accountTools{userID: deps.UserID, store: deps.Accounts}
		return map[string]handler{
			ToolGetBalance:            a.getBalance,
			ToolGetRecentTransactions: a.getRecentTransactions,
		}
	case contractx.AgentTypeLoans:
		l := loanTools{
			userID:        deps.UserID,
			store:         deps.Requests,
			notifier:      deps.Notifier,
			notifyTimeout: deps.NotifyTimeout,
		}
		return map[string]handler{
			ToolApplyForLoan:   l.applyForLoan,
			ToolRequestService: l.requestService,
		}
	default:
		return map[string]handler{}
	}
}

func infosForAgent(agentType contractx.AgentType) []*schema.ToolInfo {
	switch agentType {
	case contractx.AgentTypeAccounts:
		return []*schema.ToolInfo{
			{
				Name:        ToolGetBalance,
				Desc:        "Get the current balance of the user's account",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
			},
			{
				Name:        ToolGetRecentTransactions,
				Desc:        "Get the most recent transactions for the account",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
			},
		}
	case contractx.AgentTypeLoans:
		return []*schema.ToolInfo{
			{
				Name: ToolApplyForLoan,
				Desc: "Apply for a new loan",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"amount":    {Type: schema.Number, Desc: "The amount of money requested", Required: true},
					"loan_type": {Type: schema.String, Desc: "The type of loan (e.g. Personal, Home, Auto)", Required: true},
				}),
			},
			{
				Name: ToolRequestService,
				Desc: "Request a bank service like checkbook or credit card",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"service_type": {Type: schema.String, Desc: "Type of service (e.g. Credit Card, Checkbook)", Required: true},
					"details":      {Type: schema.String, Desc: "Additional details"},
				}),
			},
		}
	default:
		return nil
	}
}

// ParseArguments decodes a tool call's JSON arguments. Blank input is an
// empty object. Numbers keep their literal text as json.Number.
func ParseArguments(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()

	var args map[string]any
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("%w: tool arguments: %v", contractx.ErrSchemaViolation, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: tool arguments: trailing data", contractx.ErrSchemaViolation)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
