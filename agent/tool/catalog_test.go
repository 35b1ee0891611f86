package tool

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

type fakeAccounts struct {
	accounts map[int64]*storex.Account
	txs      map[int64][]storex.Transaction
	err      error
	calls    []int64
}

func (f *fakeAccounts) GetAccountByUser(_ context.Context, userID int64) (*storex.Account, error) {
	f.calls = append(f.calls, userID)
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.accounts[userID]
	if !ok {
		return nil, storex.ErrNotFound
	}
	return a, nil
}

func (f *fakeAccounts) ListRecentTransactions(_ context.Context, accountID int64, limit int) ([]storex.Transaction, error) {
	txs := f.txs[accountID]
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

type fakeRequests struct {
	created []storex.ServiceRequest
	nextID  int64
	err     error
}

func (f *fakeRequests) CreateServiceRequest(_ context.Context, req *storex.ServiceRequest) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	req.ID = f.nextID
	f.created = append(f.created, *req)
	return nil
}

type fakeNotifier struct {
	got []storex.ServiceRequest
	err error
}

func (f *fakeNotifier) ServiceRequestCreated(_ context.Context, req storex.ServiceRequest) error {
	f.got = append(f.got, req)
	return f.err
}

// blockingNotifier waits for its context and reports how it ended.
type blockingNotifier struct {
	ended chan error
}

func (f *blockingNotifier) ServiceRequestCreated(ctx context.Context, _ storex.ServiceRequest) error {
	<-ctx.Done()
	f.ended <- ctx.Err()
	return ctx.Err()
}

type fakePublisher struct {
	bodies [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, body []byte) (string, error) {
	f.bodies = append(f.bodies, body)
	return "msg_1", nil
}

func TestBuildForAgentDeclarations(t *testing.T) {
	t.Parallel()

	cases := []struct {
		agent contractx.AgentType
		names []string
	}{
		{agent: contractx.AgentTypeAccounts, names: []string{ToolGetBalance, ToolGetRecentTransactions}},
		{agent: contractx.AgentTypeLoans, names: []string{ToolApplyForLoan, ToolRequestService}},
		{agent: contractx.AgentTypeSupport},
	}

	for _, tc := range cases {
		infos, executor := BuildForAgent(tc.agent, Deps{})
		if executor == nil {
			t.Fatalf("%s: executor must not be nil", tc.agent)
		}
		if len(infos) != len(tc.names) {
			t.Fatalf("%s: expected %d tools, got %d", tc.agent, len(tc.names), len(infos))
		}
		for i, name := range tc.names {
			if infos[i].Name != name {
				t.Fatalf("%s: tool %d = %s, want %s", tc.agent, i, infos[i].Name, name)
			}
		}
	}
}

func TestLoanToolsDeclareRequiredParameters(t *testing.T) {
	t.Parallel()

	infos, _ := BuildForAgent(contractx.AgentTypeLoans, Deps{})
	js, err := infos[0].ParamsOneOf.ToOpenAPIV3()
	if err != nil {
		t.Fatalf("ToOpenAPIV3() error = %v", err)
	}
	raw, err := json.Marshal(js)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	for _, want := range []string{`"amount"`, `"loan_type"`, `"number"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("loan schema misses %s: %s", want, raw)
		}
	}
}

func TestGetBalanceBoundIdentity(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{accounts: map[int64]*storex.Account{
		1: {ID: 10, UserID: 1, Balance: 5000},
		2: {ID: 20, UserID: 2, Balance: 12.25},
	}}
	exec := NewExecutor(contractx.AgentTypeAccounts, Deps{UserID: 2, Accounts: accounts})

	out, err := exec(context.Background(), ToolGetBalance, map[string]any{"user_id": 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Content != "12.25 USD" {
		t.Fatalf("content = %q, want 12.25 USD", out.Content)
	}
	if len(accounts.calls) != 1 || accounts.calls[0] != 2 {
		t.Fatalf("store queried for %v, want only user 2", accounts.calls)
	}
}

func TestGetBalanceFormatsWholeAmounts(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{accounts: map[int64]*storex.Account{1: {ID: 1, UserID: 1, Balance: 5000}}}
	exec := NewExecutor(contractx.AgentTypeAccounts, Deps{UserID: 1, Accounts: accounts})

	out, err := exec(context.Background(), ToolGetBalance, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Content != "5000.0 USD" {
		t.Fatalf("content = %q, want 5000.0 USD", out.Content)
	}
}

func TestAccountToolsAccountNotFound(t *testing.T) {
	t.Parallel()

	exec := NewExecutor(contractx.AgentTypeAccounts, Deps{UserID: 7, Accounts: &fakeAccounts{}})
	for _, name := range []string{ToolGetBalance, ToolGetRecentTransactions} {
		out, err := exec(context.Background(), name, map[string]any{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if out.Content != AccountNotFound {
			t.Fatalf("%s: content = %q, want %q", name, out.Content, AccountNotFound)
		}
	}
}

func TestAccountToolsStoreErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("database is locked")
	exec := NewExecutor(contractx.AgentTypeAccounts, Deps{UserID: 1, Accounts: &fakeAccounts{err: boom}})
	if _, err := exec(context.Background(), ToolGetBalance, nil); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestGetRecentTransactionsFormat(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 13, 9, 30, 0, 0, time.UTC)
	accounts := &fakeAccounts{
		accounts: map[int64]*storex.Account{1: {ID: 3, UserID: 1}},
		txs: map[int64][]storex.Transaction{3: {
			{TransactionType: "Debit", Amount: 5.5, Description: "Starbucks Coffee", Status: "Success", Timestamp: day},
			{TransactionType: "Credit", Amount: 3000, Description: "Salary Update", Status: "Success", Timestamp: day.AddDate(0, 0, -9)},
		}},
	}
	exec := NewExecutor(contractx.AgentTypeAccounts, Deps{UserID: 1, Accounts: accounts})

	out, err := exec(context.Background(), ToolGetRecentTransactions, map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "2026-03-13: Debit $5.5 (Starbucks Coffee) - Success\n2026-03-04: Credit $3000.0 (Salary Update) - Success"
	if out.Content != want {
		t.Fatalf("content = %q\nwant %q", out.Content, want)
	}
}

func TestGetRecentTransactionsEmpty(t *testing.T) {
	t.Parallel()

	accounts := &fakeAccounts{accounts: map[int64]*storex.Account{1: {ID: 3, UserID: 1}}}
	exec := NewExecutor(contractx.AgentTypeAccounts, Deps{UserID: 1, Accounts: accounts})

	out, err := exec(context.Background(), ToolGetRecentTransactions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Content != "" {
		t.Fatalf("expected empty content, got %q", out.Content)
	}
}

func TestApplyForLoan(t *testing.T) {
	t.Parallel()

	requests := &fakeRequests{nextID: 41}
	notifier := &fakeNotifier{}
	exec := NewExecutor(contractx.AgentTypeLoans, Deps{UserID: 1, Requests: requests, Notifier: notifier})

	args, err := ParseArguments(`{"amount": 500, "loan_type": "Home"}`)
	if err != nil {
		t.Fatalf("ParseArguments() error = %v", err)
	}
	out, err := exec(context.Background(), ToolApplyForLoan, args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Loan application for 500 (Home) submitted successfully. Reference ID: 42"
	if out.Content != want {
		t.Fatalf("content = %q, want %q", out.Content, want)
	}
	if len(requests.created) != 1 {
		t.Fatalf("expected 1 created request, got %d", len(requests.created))
	}
	got := requests.created[0]
	if got.UserID != 1 || got.ServiceType != "Loan Application - Home" || got.Details != "Amount: 500" || got.Status != storex.StatusUnderReview {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(notifier.got) != 1 || notifier.got[0].ID != 42 {
		t.Fatalf("expected notification for request 42, got %+v", notifier.got)
	}
}

func TestApplyForLoanMissingArgument(t *testing.T) {
	t.Parallel()

	requests := &fakeRequests{}
	exec := NewExecutor(contractx.AgentTypeLoans, Deps{UserID: 1, Requests: requests})

	out, err := exec(context.Background(), ToolApplyForLoan, map[string]any{"loan_type": "Auto"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Content != "Error: missing required argument 'amount'" {
		t.Fatalf("content = %q", out.Content)
	}
	if len(requests.created) != 0 {
		t.Fatal("no request should be created")
	}
}

func TestApplyForLoanInvalidAmount(t *testing.T) {
	t.Parallel()

	requests := &fakeRequests{}
	exec := NewExecutor(contractx.AgentTypeLoans, Deps{UserID: 1, Requests: requests})

	for _, amount := range []any{"abc", "", true, map[string]any{"value": 5}} {
		out, err := exec(context.Background(), ToolApplyForLoan, map[string]any{"amount": amount, "loan_type": "Auto"})
		if err != nil {
			t.Fatalf("amount %#v: unexpected error: %v", amount, err)
		}
		if out.Content != "Error: invalid argument 'amount'" {
			t.Fatalf("amount %#v: content = %q", amount, out.Content)
		}
	}
	if len(requests.created) != 0 {
		t.Fatal("no request should be created")
	}
}

func TestServiceRequestNotificationIsBounded(t *testing.T) {
	t.Parallel()

	requests := &fakeRequests{}
	notifier := &blockingNotifier{ended: make(chan error, 1)}
	exec := NewExecutor(contractx.AgentTypeLoans, Deps{
		UserID:        3,
		Requests:      requests,
		Notifier:      notifier,
		NotifyTimeout: 20 * time.Millisecond,
	})

	started := time.Now()
	out, err := exec(context.Background(), ToolRequestService, map[string]any{"service_type": "New Card"})
	if err != nil {
		t.Fatalf("a slow notifier must not fail the tool: %v", err)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("tool call took %s, notification was not bounded", elapsed)
	}
	if out.Content != "Service request 'New Card' collected. Reference ID: 1" {
		t.Fatalf("content = %q", out.Content)
	}
	if got := <-notifier.ended; !errors.Is(got, context.DeadlineExceeded) {
		t.Fatalf("notifier context ended with %v, want deadline exceeded", got)
	}
}

func TestRequestService(t *testing.T) {
	t.Parallel()

	requests := &fakeRequests{}
	notifier := &fakeNotifier{err: errors.New("qstash down")}
	exec := NewExecutor(contractx.AgentTypeLoans, Deps{UserID: 5, Requests: requests, Notifier: notifier})

	out, err := exec(context.Background(), ToolRequestService, map[string]any{"service_type": "Checkbook"})
	if err != nil {
		t.Fatalf("notification failure must not fail the tool: %v", err)
	}
	if out.Content != "Service request 'Checkbook' collected. Reference ID: 1" {
		t.Fatalf("content = %q", out.Content)
	}
	got := requests.created[0]
	if got.UserID != 5 || got.Status != storex.StatusRequested || got.Details != "" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestUnknownFunction(t *testing.T) {
	t.Parallel()

	for _, agent := range []contractx.AgentType{contractx.AgentTypeAccounts, contractx.AgentTypeLoans, contractx.AgentTypeSupport} {
		exec := NewExecutor(agent, Deps{})
		out, err := exec(context.Background(), "transfer_money", map[string]any{})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", agent, err)
		}
		if out.Content != UnknownFunction {
			t.Fatalf("%s: content = %q", agent, out.Content)
		}
	}
}

func TestParseArguments(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "  ", "{}", "null"} {
		args, err := ParseArguments(raw)
		if err != nil {
			t.Fatalf("ParseArguments(%q) error = %v", raw, err)
		}
		if args == nil || len(args) != 0 {
			t.Fatalf("ParseArguments(%q) = %v, want empty map", raw, args)
		}
	}

	args, err := ParseArguments(`{"amount": 1500.50}`)
	if err != nil {
		t.Fatalf("ParseArguments() error = %v", err)
	}
	if n, ok := args["amount"].(json.Number); !ok || n.String() != "1500.50" {
		t.Fatalf("amount = %#v", args["amount"])
	}

	for _, raw := range []string{`{"amount":`, `[1,2]`, `{"a":1} {"b":2}`} {
		if _, err := ParseArguments(raw); !errors.Is(err, contractx.ErrSchemaViolation) {
			t.Fatalf("ParseArguments(%q): expected ErrSchemaViolation, got %v", raw, err)
		}
	}
}

func TestPublishNotifier(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	n := NewPublishNotifier(pub)
	n.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	err := n.ServiceRequestCreated(context.Background(), storex.ServiceRequest{ID: 9, ServiceType: "Credit Card"})
	if err != nil {
		t.Fatalf("ServiceRequestCreated() error = %v", err)
	}
	if len(pub.bodies) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.bodies))
	}

	var decoded map[string]any
	if err := json.Unmarshal(pub.bodies[0], &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded["event"] != EventServiceRequestCreated {
		t.Fatalf("event = %v", decoded["event"])
	}
	req, _ := decoded["request"].(map[string]any)
	if req["service_type"] != "Credit Card" {
		t.Fatalf("unexpected request payload: %v", decoded["request"])
	}
}

func TestLoanToolsAgainstSQLiteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := storex.Open(ctx, storex.Config{DSN: filepath.Join(t.TempDir(), "bank.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	seeded, err := s.Seed(ctx, time.Now())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	exec := NewExecutor(contractx.AgentTypeLoans, Deps{UserID: seeded.UserID, Requests: s})
	out, err := exec(ctx, ToolApplyForLoan, map[string]any{"amount": json.Number("500"), "loan_type": "Personal"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(out.Content, "Reference ID: 1") {
		t.Fatalf("content = %q", out.Content)
	}

	overview, err := s.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error = %v", err)
	}
	if overview.PendingApprovals != 1 {
		t.Fatalf("pending approvals = %d, want 1", overview.PendingApprovals)
	}
}
