package contract

import "strings"

type AgentType string

const (
	AgentTypeRouter   AgentType = "router"
	AgentTypeSupport  AgentType = "support"
	AgentTypeAccounts AgentType = "accounts"
	AgentTypeLoans    AgentType = "loans"
)

// Category is the routing label the router assigns to a user message.
type Category string

const (
	CategoryCustomerSupport Category = "CUSTOMER_SUPPORT"
	CategoryAccounts        Category = "ACCOUNTS"
	CategoryLoansServices   Category = "LOANS_SERVICES"
)

// CategoryFromLabel maps raw classifier output onto a category.
// Anything it cannot recognise falls back to CategoryCustomerSupport.
func CategoryFromLabel(raw string) Category {
	label := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(label, "ACCOUNT"):
		return CategoryAccounts
	case strings.Contains(label, "LOAN"), strings.Contains(label, "SERVICE"):
		return CategoryLoansServices
	default:
		return CategoryCustomerSupport
	}
}

// ToolResult records one executed tool call of an agent turn.
type ToolResult struct {
	CallID  string `json:"call_id"`
	Tool    string `json:"tool"`
	Content string `json:"content"`
}
