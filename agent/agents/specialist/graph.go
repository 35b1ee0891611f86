package specialist

import (
	"context"
	"fmt"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
)

// Phase is the position of one agent turn in the tool-call protocol.
type Phase string

const (
	PhaseAwaitingFirstCompletion Phase = "awaiting_first_completion"
	PhaseAwaitingToolResults     Phase = "awaiting_tool_results"
	PhaseAwaitingFinalCompletion Phase = "awaiting_final_completion"
	PhaseDone                    Phase = "done"
)

const (
	nodePrepare         = "prepare"
	nodePrompt          = "prompt"
	nodeFirstCompletion = "first_completion"
	nodeExecuteTools    = "execute_tools"
	nodeFinalCompletion = "final_completion"
	nodeFinalize        = "finalize"
)

type turnInput struct {
	Message string
	History []historyx.Turn
}

// turnState is carried between the protocol nodes of one Process call.
type turnState struct {
	Phase       Phase
	Messages    []*schema.Message
	Pending     []schema.ToolCall
	ToolResults []contractx.ToolResult
	Reply       string
}

func newTurnTemplate(systemPrompt string) einoprompt.ChatTemplate {
	return einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{message}"),
	)
}

// compileTurnGraph wires the protocol:
//
//	prepare -> prompt -> first_completion -> (finalize | execute_tools -> final_completion -> finalize)
func compileTurnGraph(
	ctx context.Context,
	graphName string,
	systemPrompt string,
	firstFlow func(context.Context, []*schema.Message) (*turnState, error),
	toolFlow func(context.Context, *turnState) (*turnState, error),
	finalFlow func(context.Context, *turnState) (*turnState, error),
) (compose.Runnable[turnInput, string], error) {
	graph := compose.NewGraph[turnInput, string]()

	if err := graph.AddLambdaNode(nodePrepare,
		compose.InvokableLambda(func(ctx context.Context, in turnInput) (map[string]any, error) {
			return map[string]any{
				"history": historyx.Normalize(in.History),
				"message": in.Message,
			}, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add turn prepare node: %w", err)
	}

	if err := graph.AddChatTemplateNode(nodePrompt, newTurnTemplate(systemPrompt)); err != nil {
		return nil, fmt.Errorf("add turn prompt node: %w", err)
	}

	if err := graph.AddLambdaNode(nodeFirstCompletion, compose.InvokableLambda(firstFlow)); err != nil {
		return nil, fmt.Errorf("add turn first completion node: %w", err)
	}
	if err := graph.AddLambdaNode(nodeExecuteTools, compose.InvokableLambda(toolFlow)); err != nil {
		return nil, fmt.Errorf("add turn execute tools node: %w", err)
	}
	if err := graph.AddLambdaNode(nodeFinalCompletion, compose.InvokableLambda(finalFlow)); err != nil {
		return nil, fmt.Errorf("add turn final completion node: %w", err)
	}

	if err := graph.AddLambdaNode(nodeFinalize,
		compose.InvokableLambda(func(ctx context.Context, st *turnState) (string, error) {
			if st == nil || st.Phase != PhaseDone {
				return "", fmt.Errorf("%w: turn finished outside done phase", contractx.ErrValidation)
			}
			return st.Reply, nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add turn finalize node: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, st *turnState) (string, error) {
			if st == nil {
				return "", fmt.Errorf("%w: turn state is nil", contractx.ErrValidation)
			}
			switch st.Phase {
			case PhaseAwaitingToolResults:
				return nodeExecuteTools, nil
			case PhaseDone:
				return nodeFinalize, nil
			default:
				return "", fmt.Errorf("%w: unexpected phase %s after first completion", contractx.ErrValidation, st.Phase)
			}
		},
		map[string]bool{
			nodeExecuteTools: true,
			nodeFinalize:     true,
		},
	)

	if err := graph.AddEdge(compose.START, nodePrepare); err != nil {
		return nil, fmt.Errorf("add turn edge start->prepare: %w", err)
	}
	if err := graph.AddEdge(nodePrepare, nodePrompt); err != nil {
		return nil, fmt.Errorf("add turn edge prepare->prompt: %w", err)
	}
	if err := graph.AddEdge(nodePrompt, nodeFirstCompletion); err != nil {
		return nil, fmt.Errorf("add turn edge prompt->first_completion: %w", err)
	}
	if err := graph.AddBranch(nodeFirstCompletion, branch); err != nil {
		return nil, fmt.Errorf("add turn branch: %w", err)
	}
	if err := graph.AddEdge(nodeExecuteTools, nodeFinalCompletion); err != nil {
		return nil, fmt.Errorf("add turn edge execute_tools->final_completion: %w", err)
	}
	if err := graph.AddEdge(nodeFinalCompletion, nodeFinalize); err != nil {
		return nil, fmt.Errorf("add turn edge final_completion->finalize: %w", err)
	}
	if err := graph.AddEdge(nodeFinalize, compose.END); err != nil {
		return nil, fmt.Errorf("add turn edge finalize->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

// compileRouterGraph is a single classification call: prompt -> model -> classify.
func compileRouterGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, contractx.Category], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{message}"),
	)

	graph := compose.NewGraph[map[string]any, contractx.Category]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add router prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add router model node: %w", err)
	}
	if err := graph.AddLambdaNode("classify",
		compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (contractx.Category, error) {
			if msg == nil {
				return contractx.CategoryCustomerSupport, nil
			}
			return contractx.CategoryFromLabel(msg.Content), nil
		}),
	); err != nil {
		return nil, fmt.Errorf("add router classify node: %w", err)
	}

	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add router edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add router edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", "classify"); err != nil {
		return nil, fmt.Errorf("add router edge model->classify: %w", err)
	}
	if err := graph.AddEdge("classify", compose.END); err != nil {
		return nil, fmt.Errorf("add router edge classify->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("router.classify_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile router graph: %w", err)
	}
	return runner, nil
}
