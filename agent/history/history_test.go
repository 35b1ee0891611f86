package history

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
)

func TestNormalizeRewritesModelRole(t *testing.T) {
	t.Parallel()

	out := Normalize([]Turn{
		{Role: "user", Parts: []string{"hi"}},
		{Role: "model", Parts: []string{"hello, how can I help?"}},
	})

	if len(out) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(out))
	}
	if out[0].Role != schema.User || out[0].Content != "hi" {
		t.Fatalf("unexpected first message: %#v", out[0])
	}
	if out[1].Role != schema.Assistant {
		t.Fatalf("expected assistant role, got %q", out[1].Role)
	}
	if out[1].Content != "hello, how can I help?" {
		t.Fatalf("unexpected content: %q", out[1].Content)
	}
}

func TestNormalizePassesOtherRolesThrough(t *testing.T) {
	t.Parallel()

	roles := []string{"user", "system", "tool", "assistant", "narrator", ""}
	turns := make([]Turn, 0, len(roles))
	for _, r := range roles {
		turns = append(turns, Turn{Role: r, Parts: []string{"x"}})
	}

	out := Normalize(turns)
	if len(out) != len(roles) {
		t.Fatalf("expected %d messages, got %d", len(roles), len(out))
	}
	for i, r := range roles {
		if string(out[i].Role) != r {
			t.Fatalf("message %d: role = %q, want %q", i, out[i].Role, r)
		}
	}
}

func TestNormalizeContentFragments(t *testing.T) {
	t.Parallel()

	out := Normalize([]Turn{
		{Role: "user"},
		{Role: "user", Parts: []string{}},
		{Role: "user", Parts: []string{"first", "second", "third"}},
	})

	want := []string{"", "", "first"}
	for i, w := range want {
		if out[i].Content != w {
			t.Fatalf("message %d: content = %q, want %q", i, out[i].Content, w)
		}
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	t.Parallel()

	turns := make([]Turn, 0, 50)
	for i := 0; i < 50; i++ {
		role := "user"
		if i%2 == 1 {
			role = "model"
		}
		turns = append(turns, Turn{Role: role, Parts: []string{string(rune('a' + i%26))}})
	}

	out := Normalize(turns)
	if len(out) != len(turns) {
		t.Fatalf("expected %d messages, got %d", len(turns), len(out))
	}
	for i := range turns {
		if out[i].Content != turns[i].Parts[0] {
			t.Fatalf("message %d out of order: %q", i, out[i].Content)
		}
	}
}

func TestNormalizeEmptyHistory(t *testing.T) {
	t.Parallel()

	if out := Normalize(nil); len(out) != 0 {
		t.Fatalf("expected no messages, got %d", len(out))
	}
}

func TestTurnDecodesClientShape(t *testing.T) {
	t.Parallel()

	raw := `[{"role":"user","parts":["What's my balance?"]},{"role":"model","parts":["5000.0 USD"]},{"role":"user"}]`
	var turns []Turn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		t.Fatalf("unmarshal turns: %v", err)
	}

	out := Normalize(turns)
	if out[1].Role != schema.Assistant || out[1].Content != "5000.0 USD" {
		t.Fatalf("unexpected model turn: %#v", out[1])
	}
	if out[2].Content != "" {
		t.Fatalf("expected empty content for turn without parts, got %q", out[2].Content)
	}
}
