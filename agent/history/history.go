// Package history converts caller-supplied conversation turns into the
// canonical role/content messages the chat models consume.
package history

import "github.com/cloudwego/eino/schema"

// WireVersion names the external turn shape accepted by Normalize.
const WireVersion = "parts/v1"

const roleModel = "model"

// Turn is one conversation turn as the chat client sends it:
// {"role": "user", "parts": ["..."]}.
type Turn struct {
	Role  string   `json:"role"`
	Parts []string `json:"parts,omitempty"`
}

// Normalize rewrites role "model" to "assistant" and keeps only the first
// fragment of each turn as its content. Every other role passes through as is.
// Output has exactly one message per input turn, in the same order.
func Normalize(turns []Turn) []*schema.Message {
	out := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		role := t.Role
		if role == roleModel {
			role = string(schema.Assistant)
		}

		content := ""
		if len(t.Parts) > 0 {
			content = t.Parts[0]
		}

		out = append(out, &schema.Message{
			Role:    schema.RoleType(role),
			Content: content,
		})
	}
	return out
}
