package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
)

var (
	//go:embed template/router.txt
	routerRaw string

	//go:embed template/support.txt
	supportRaw string

	//go:embed template/accounts.txt
	accountsRaw string

	//go:embed template/loans.txt
	loansRaw string
)

// PromptSet holds the system instruction of every agent.
type PromptSet struct {
	Router   string
	Support  string
	Accounts string
	Loans    string
}

// LoadPromptSet returns the embedded prompts, trimmed.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Router:   strings.TrimSpace(routerRaw),
		Support:  strings.TrimSpace(supportRaw),
		Accounts: strings.TrimSpace(accountsRaw),
		Loans:    strings.TrimSpace(loansRaw),
	}
}

// For returns the system instruction of one agent.
func (p PromptSet) For(agentType contractx.AgentType) (string, error) {
	var text string
	switch agentType {
	case contractx.AgentTypeRouter:
		text = p.Router
	case contractx.AgentTypeSupport:
		text = p.Support
	case contractx.AgentTypeAccounts:
		text = p.Accounts
	case contractx.AgentTypeLoans:
		text = p.Loans
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s", contractx.ErrPromptMissing, agentType)
	}
	return text, nil
}

// Validate reports the first agent without a system instruction.
func (p PromptSet) Validate() error {
	for _, agentType := range []contractx.AgentType{
		contractx.AgentTypeRouter,
		contractx.AgentTypeSupport,
		contractx.AgentTypeAccounts,
		contractx.AgentTypeLoans,
	} {
		if _, err := p.For(agentType); err != nil {
			return err
		}
	}
	return nil
}
