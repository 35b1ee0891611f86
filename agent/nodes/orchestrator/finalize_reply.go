package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
)

// FinalizeReply returns the agent's text unchanged.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	return GraphOutput{
		Reply:    in.Reply,
		Category: in.Category,
		Agent:    in.Agent,
	}, nil
}
