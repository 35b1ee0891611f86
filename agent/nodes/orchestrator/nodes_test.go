package orchestratornode

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
)

type fakeAgent struct {
	reply string
	calls int
}

func (f *fakeAgent) Process(ctx context.Context, message string, history []historyx.Turn) (string, error) {
	f.calls++
	return f.reply, nil
}

type fakeRegistry struct {
	support, accounts, loans *fakeAgent
}

func (f *fakeRegistry) Router() contractx.Router  { return nil }
func (f *fakeRegistry) Support() contractx.Agent  { return f.support }
func (f *fakeRegistry) Accounts() contractx.Agent { return f.accounts }
func (f *fakeRegistry) Loans() contractx.Agent    { return f.loans }

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	if _, err := ValidateRequest(GraphInput{Message: " \n\t"}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
	if !errors.Is(ErrInvalidMessage, contractx.ErrValidation) {
		t.Fatal("ErrInvalidMessage must be a validation error")
	}

	st, err := ValidateRequest(GraphInput{Message: "  hi  "})
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if st.Message != "  hi  " {
		t.Fatalf("message must be kept as sent, got %q", st.Message)
	}
}

func TestDispatchAgentPicksByCategory(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{
		support:  &fakeAgent{reply: "support"},
		accounts: &fakeAgent{reply: "accounts"},
		loans:    &fakeAgent{reply: "loans"},
	}

	cases := []struct {
		category contractx.Category
		reply    string
		agent    contractx.AgentType
	}{
		{category: contractx.CategoryCustomerSupport, reply: "support", agent: contractx.AgentTypeSupport},
		{category: contractx.CategoryAccounts, reply: "accounts", agent: contractx.AgentTypeAccounts},
		{category: contractx.CategoryLoansServices, reply: "loans", agent: contractx.AgentTypeLoans},
	}

	for _, tc := range cases {
		st, err := DispatchAgent(context.Background(), &GraphState{Message: "x", Category: tc.category}, reg)
		if err != nil {
			t.Fatalf("DispatchAgent(%s) error = %v", tc.category, err)
		}
		if st.Reply != tc.reply || st.Agent != tc.agent {
			t.Fatalf("DispatchAgent(%s) = (%q, %s)", tc.category, st.Reply, st.Agent)
		}
	}

	if _, err := DispatchAgent(context.Background(), &GraphState{Message: "x"}, reg); !errors.Is(err, ErrNoCategory) {
		t.Fatalf("expected ErrNoCategory, got %v", err)
	}
	if _, err := DispatchAgent(context.Background(), &GraphState{Message: "x", Category: "TRAVEL"}, reg); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFinalizeReplyIsVerbatim(t *testing.T) {
	t.Parallel()

	for _, reply := range []string{"", "  padded  "} {
		out, err := FinalizeReply(&GraphState{Reply: reply})
		if err != nil {
			t.Fatalf("FinalizeReply() error = %v", err)
		}
		if out.Reply != reply {
			t.Fatalf("reply = %q, want %q", out.Reply, reply)
		}
	}
}
