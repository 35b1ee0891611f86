package specialist

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
)

type routerImpl struct {
	runner      compose.Runnable[map[string]any, contractx.Category]
	callTimeout time.Duration
}

var _ contractx.Router = (*routerImpl)(nil)

func newRouter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string, callTimeout time.Duration) (*routerImpl, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: router chat model is nil", contractx.ErrValidation)
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: agent=%s", contractx.ErrPromptMissing, contractx.AgentTypeRouter)
	}

	runner, err := compileRouterGraph(ctx, chatModel, systemPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: compile router graph: %v", contractx.ErrModelInvoke, err)
	}
	return &routerImpl{runner: runner, callTimeout: callTimeout}, nil
}

// Classify labels the message alone, without history. Unrecognised model
// output falls back to CUSTOMER_SUPPORT; only a failed model call is an error.
func (r *routerImpl) Classify(ctx context.Context, message string) (contractx.Category, error) {
	callCtx, cancel := withCallTimeout(ctx, r.callTimeout)
	defer cancel()

	category, err := r.runner.Invoke(callCtx, map[string]any{
		"message": message,
	}, compose.WithChatModelOption(einomodel.WithTemperature(0)))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("router: classify failed")
		return "", fmt.Errorf("%w: router classify: %v", contractx.ErrModelInvoke, err)
	}

	log.Ctx(ctx).Info().Str("category", string(category)).Msg("router: classified")
	return category, nil
}
