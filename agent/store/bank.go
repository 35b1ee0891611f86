package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultRecentTransactions = 10

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// GetAccountByUser returns the first account owned by the user.
func (s *Store) GetAccountByUser(ctx context.Context, userID int64) (*Account, error) {
	var account Account
	err := s.db.NewSelect().
		Model(&account).
		Where("a.user_id = ?", userID).
		OrderExpr("a.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get account for user %d: %w", userID, err)
	}
	return &account, nil
}

// ListRecentTransactions returns up to limit transactions of the account,
// newest first.
func (s *Store) ListRecentTransactions(ctx context.Context, accountID int64, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentTransactions
	}

	var txs []Transaction
	err := s.db.NewSelect().
		Model(&txs).
		Where("t.account_id = ?", accountID).
		OrderExpr("t.timestamp DESC").
		OrderExpr("t.id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil && !isNoRows(err) {
		return nil, fmt.Errorf("list transactions for account %d: %w", accountID, err)
	}
	return txs, nil
}

// CreateServiceRequest inserts req and fills in its ID. Status defaults to
// Requested and the timestamp to now.
func (s *Store) CreateServiceRequest(ctx context.Context, req *ServiceRequest) error {
	if req == nil {
		return errors.New("service request is nil")
	}
	if strings.TrimSpace(req.Status) == "" {
		req.Status = StatusRequested
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now().UTC()
	}

	if _, err := s.db.NewInsert().Model(req).Exec(ctx); err != nil {
		return fmt.Errorf("create service request: %w", err)
	}
	return nil
}
