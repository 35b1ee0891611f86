package orchestrator

import (
	"context"
	"errors"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
	nodex "github.com/tanpawarit/neobank-assistant/agent/nodes/orchestrator"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrNoCategory     = nodex.ErrNoCategory
)

// Result is one handled message with the routing decision that produced it.
type Result struct {
	Reply    string
	Category contractx.Category
	Agent    contractx.AgentType
}

// Orchestrator is the dispatcher: it classifies a message, hands it to the
// matching domain agent and returns that agent's text.
type Orchestrator struct {
	models contractx.Registry

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
}

func New(models contractx.Registry) (*Orchestrator, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if models.Router() == nil {
		return nil, errors.New("router is required")
	}

	o := &Orchestrator{
		models: models,
	}

	graphRunner, err := o.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

func (o *Orchestrator) HandleMessage(ctx context.Context, message string, history []historyx.Turn) (string, error) {
	res, err := o.Handle(ctx, message, history)
	if err != nil {
		return "", err
	}
	return res.Reply, nil
}

func (o *Orchestrator) Handle(ctx context.Context, message string, history []historyx.Turn) (Result, error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		Message: message,
		History: history,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Reply: out.Reply, Category: out.Category, Agent: out.Agent}, nil
}
