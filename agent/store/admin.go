package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

const (
	transactionSearchLimit = 100
	processedRequestsLimit = 50
)

// PendingStatuses are the service request states still awaiting a decision.
var PendingStatuses = []string{StatusRequested, StatusUnderReview, StatusPending}

// ProcessedStatuses are the terminal service request states.
var ProcessedStatuses = []string{StatusApproved, StatusRejected}

type TransactionFilter struct {
	// Search matches the description case-insensitively.
	Search string
	// Type is Credit, Debit or Transfer. Empty or "All" disables the filter.
	Type string
}

func (s *Store) Overview(ctx context.Context) (*Overview, error) {
	var out Overview

	customers, err := s.db.NewSelect().Model((*User)(nil)).Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	out.TotalCustomers = customers

	if err := s.db.NewSelect().
		Model((*Account)(nil)).
		ColumnExpr("COALESCE(SUM(a.balance), 0)").
		Scan(ctx, &out.TotalDeposits); err != nil {
		return nil, fmt.Errorf("sum deposits: %w", err)
	}

	pending, err := s.db.NewSelect().
		Model((*ServiceRequest)(nil)).
		Where("sr.status = ?", StatusUnderReview).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending approvals: %w", err)
	}
	out.PendingApprovals = pending

	return &out, nil
}

// SearchTransactions lists transactions with their owner, newest first.
func (s *Store) SearchTransactions(ctx context.Context, filter TransactionFilter) ([]TransactionView, error) {
	q := s.db.NewSelect().
		TableExpr("transactions AS t").
		ColumnExpr("t.id, t.timestamp, t.description, t.amount, t.transaction_type, t.status").
		ColumnExpr("u.name AS customer_name").
		Join("JOIN accounts AS a ON a.id = t.account_id").
		Join("JOIN users AS u ON u.id = a.user_id")

	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		q = q.Where("LOWER(t.description) LIKE ?", "%"+term+"%")
	}
	if typ := strings.TrimSpace(filter.Type); typ != "" && !strings.EqualFold(typ, "all") {
		q = q.Where("t.transaction_type = ?", typ)
	}

	views := make([]TransactionView, 0)
	if err := q.OrderExpr("t.timestamp DESC").
		OrderExpr("t.id DESC").
		Limit(transactionSearchLimit).
		Scan(ctx, &views); err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("search transactions: %w", err)
	}
	return views, nil
}

func (s *Store) PendingServiceRequests(ctx context.Context) ([]ServiceRequest, error) {
	reqs := make([]ServiceRequest, 0)
	if err := s.db.NewSelect().
		Model(&reqs).
		Where("sr.status IN (?)", bun.In(PendingStatuses)).
		OrderExpr("sr.timestamp ASC").
		OrderExpr("sr.id ASC").
		Scan(ctx); err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("list pending service requests: %w", err)
	}
	return reqs, nil
}

func (s *Store) ProcessedServiceRequests(ctx context.Context, limit int) ([]ServiceRequest, error) {
	if limit <= 0 {
		limit = processedRequestsLimit
	}

	reqs := make([]ServiceRequest, 0)
	if err := s.db.NewSelect().
		Model(&reqs).
		Where("sr.status IN (?)", bun.In(ProcessedStatuses)).
		OrderExpr("sr.timestamp DESC").
		OrderExpr("sr.id DESC").
		Limit(limit).
		Scan(ctx); err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("list processed service requests: %w", err)
	}
	return reqs, nil
}

// SetServiceRequestStatus moves one request to status. It returns
// ErrNotFound when no request has the id.
func (s *Store) SetServiceRequestStatus(ctx context.Context, id int64, status string) error {
	res, err := s.db.NewUpdate().
		Model((*ServiceRequest)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update service request %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (s *Store) DeleteServiceRequest(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Model((*ServiceRequest)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete service request %d: %w", id, err)
	}
	return expectOneRow(res, id)
}

// ClearServiceRequests deletes every service request and returns how many
// were removed.
func (s *Store) ClearServiceRequests(ctx context.Context) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*ServiceRequest)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear service requests: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear service requests: %w", err)
	}
	return n, nil
}

func (s *Store) Counts(ctx context.Context) (*Counts, error) {
	var out Counts
	var err error

	if out.Users, err = s.db.NewSelect().Model((*User)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if out.Accounts, err = s.db.NewSelect().Model((*Account)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	if out.Transactions, err = s.db.NewSelect().Model((*Transaction)(nil)).Count(ctx); err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}
	return &out, nil
}

func expectOneRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for service request %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: service request %d", ErrNotFound, id)
	}
	return nil
}
