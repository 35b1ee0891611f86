package tool

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

// formatAmount renders a float the way account statements show it:
// shortest form, always with a fractional part (5000.0, 5.5).
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func formatTransaction(t storex.Transaction) string {
	return fmt.Sprintf("%s: %s $%s (%s) - %s",
		t.Timestamp.UTC().Format("2006-01-02"),
		t.TransactionType,
		formatAmount(t.Amount),
		t.Description,
		t.Status,
	)
}

func missingArgument(name string) string {
	return fmt.Sprintf("Error: missing required argument '%s'", name)
}

func invalidArgument(name string) string {
	return fmt.Sprintf("Error: invalid argument '%s'", name)
}

func hasArg(args map[string]any, key string) bool {
	v, ok := args[key]
	return ok && v != nil
}

// stringArg reads a text argument. ok is false when the key is absent or blank.
func stringArg(args map[string]any, key string) (string, bool) {
	raw, exists := args[key]
	if !exists || raw == nil {
		return "", false
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	s = strings.TrimSpace(s)
	return s, s != ""
}

// amountArg reads a number argument and returns its display text and value.
// Numbers sent as strings are accepted when they parse.
func amountArg(args map[string]any, key string) (string, float64, bool) {
	raw, exists := args[key]
	if !exists || raw == nil {
		return "", 0, false
	}

	switch v := raw.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return "", 0, false
		}
		return v.String(), f, true
	case float64:
		return formatAmount(v), v, true
	case int:
		return strconv.Itoa(v), float64(v), true
	case string:
		text := strings.TrimSpace(v)
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return "", 0, false
		}
		return text, f, true
	default:
		return "", 0, false
	}
}
