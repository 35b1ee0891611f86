package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
)

func Classify(ctx context.Context, in *GraphState, router contractx.Router) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	category, err := router.Classify(ctx, in.Message)
	if err != nil {
		return nil, err
	}
	in.Category = category
	return in, nil
}
