package contract

import (
	"context"

	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
)

type Router interface {
	Classify(ctx context.Context, message string) (Category, error)
}

type Agent interface {
	Process(ctx context.Context, message string, history []historyx.Turn) (string, error)
}

type Registry interface {
	Router() Router
	Support() Agent
	Accounts() Agent
	Loans() Agent
}
