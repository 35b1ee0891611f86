package orchestratornode

import (
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
)

var ErrInvalidMessage = fmt.Errorf("%w: message is empty", contractx.ErrValidation)

var ErrNoCategory = errors.New("message has not been classified")

type GraphInput struct {
	Message string
	History []historyx.Turn
}

type GraphOutput struct {
	Reply    string
	Category contractx.Category
	Agent    contractx.AgentType
}

type GraphState struct {
	Message string
	History []historyx.Turn

	Category contractx.Category
	Agent    contractx.AgentType
	Reply    string
}

// ValidateRequest rejects blank messages. The message itself is kept as sent.
func ValidateRequest(in GraphInput) (*GraphState, error) {
	// Unlike the legacy endpoint, which forwarded even blank text to the
	// model, a blank message is a validation error and costs no model call.
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		Message: in.Message,
		History: in.History,
	}, nil
}
