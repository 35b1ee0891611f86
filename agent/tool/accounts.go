package tool

import (
	"context"
	"errors"
	"strings"

	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

type accountTools struct {
	userID int64
	store  AccountStore
}

func (a accountTools) account(ctx context.Context) (*storex.Account, error) {
	if a.store == nil {
		return nil, errors.New("account store is not configured")
	}
	return a.store.GetAccountByUser(ctx, a.userID)
}

func (a accountTools) getBalance(ctx context.Context, _ map[string]any) (string, error) {
	account, err := a.account(ctx)
	if errors.Is(err, storex.ErrNotFound) {
		return AccountNotFound, nil
	}
	if err != nil {
		return "", err
	}
	return formatAmount(account.Balance) + " USD", nil
}

func (a accountTools) getRecentTransactions(ctx context.Context, _ map[string]any) (string, error) {
	account, err := a.account(ctx)
	if errors.Is(err, storex.ErrNotFound) {
		return AccountNotFound, nil
	}
	if err != nil {
		return "", err
	}

	txs, err := a.store.ListRecentTransactions(ctx, account.ID, storex.DefaultRecentTransactions)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		lines = append(lines, formatTransaction(t))
	}
	return strings.Join(lines, "\n"), nil
}
