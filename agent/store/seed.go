package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedFixture []byte

type seedFile struct {
	User struct {
		Name  string `yaml:"name"`
		Email string `yaml:"email"`
	} `yaml:"user"`
	Account struct {
		Type    string  `yaml:"type"`
		Balance float64 `yaml:"balance"`
	} `yaml:"account"`
	Transactions []struct {
		Description string  `yaml:"description"`
		Type        string  `yaml:"type"`
		Amount      float64 `yaml:"amount"`
		Status      string  `yaml:"status"`
		DaysAgo     int     `yaml:"days_ago"`
	} `yaml:"transactions"`
}

// SeedResult reports what Seed created.
type SeedResult struct {
	UserID              int64 `json:"user_id"`
	AccountID           int64 `json:"account_id"`
	UserCreated         bool  `json:"user_created"`
	AccountCreated      bool  `json:"account_created"`
	TransactionsCreated int   `json:"transactions_created"`
}

// Seed installs the demo customer. Each step only runs when its data is
// missing: the user when there is no user at all, the account when the user
// has none, transactions when the table is empty. Timestamps are relative to now.
func (s *Store) Seed(ctx context.Context, now time.Time) (*SeedResult, error) {
	var fixture seedFile
	if err := yaml.Unmarshal(seedFixture, &fixture); err != nil {
		return nil, fmt.Errorf("decode seed fixture: %w", err)
	}

	now = now.UTC()
	res := &SeedResult{}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var user User
		err := tx.NewSelect().Model(&user).OrderExpr("u.id ASC").Limit(1).Scan(ctx)
		switch {
		case isNoRows(err):
			user = User{Name: fixture.User.Name, Email: fixture.User.Email}
			if _, err := tx.NewInsert().Model(&user).Exec(ctx); err != nil {
				return fmt.Errorf("insert user: %w", err)
			}
			res.UserCreated = true
		case err != nil:
			return fmt.Errorf("load user: %w", err)
		}
		res.UserID = user.ID

		var account Account
		err = tx.NewSelect().Model(&account).Where("a.user_id = ?", user.ID).OrderExpr("a.id ASC").Limit(1).Scan(ctx)
		switch {
		case isNoRows(err):
			account = Account{UserID: user.ID, AccountType: fixture.Account.Type, Balance: fixture.Account.Balance}
			if _, err := tx.NewInsert().Model(&account).Exec(ctx); err != nil {
				return fmt.Errorf("insert account: %w", err)
			}
			res.AccountCreated = true
		case err != nil:
			return fmt.Errorf("load account: %w", err)
		}
		res.AccountID = account.ID

		count, err := tx.NewSelect().Model((*Transaction)(nil)).Count(ctx)
		if err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		if count > 0 || len(fixture.Transactions) == 0 {
			return nil
		}

		txs := make([]Transaction, 0, len(fixture.Transactions))
		for _, t := range fixture.Transactions {
			txs = append(txs, Transaction{
				AccountID:       account.ID,
				TransactionType: t.Type,
				Amount:          t.Amount,
				Status:          t.Status,
				Description:     t.Description,
				Timestamp:       now.AddDate(0, 0, -t.DaysAgo),
			})
		}
		if _, err := tx.NewInsert().Model(&txs).Exec(ctx); err != nil {
			return fmt.Errorf("insert transactions: %w", err)
		}
		res.TransactionsCreated = len(txs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}
