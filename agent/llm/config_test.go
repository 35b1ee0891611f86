package llm

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
)

func baseConfig() Config {
	return Config{
		APIKey:              " key ",
		Model:               "base-model",
		Temperature:         0.5,
		MaxCompletionToken:  512,
		SupportTemperature:  0.7,
		AccountsTemperature: -1,
		LoansTemperature:    -1,
	}
}

func TestProviderForOverrides(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.RouterModel = "router-model"
	cfg.LoansModel = "loans-model"
	cfg.LoansTemperature = 0.2

	cases := []struct {
		agent contractx.AgentType
		model string
		temp  float32
	}{
		{agent: contractx.AgentTypeRouter, model: "router-model", temp: 0},
		{agent: contractx.AgentTypeSupport, model: "base-model", temp: 0.7},
		{agent: contractx.AgentTypeAccounts, model: "base-model", temp: 0.5},
		{agent: contractx.AgentTypeLoans, model: "loans-model", temp: 0.2},
	}

	for _, tc := range cases {
		got := cfg.ProviderFor(tc.agent)
		if got.Model != tc.model {
			t.Fatalf("%s: model = %q, want %q", tc.agent, got.Model, tc.model)
		}
		if got.Temperature != tc.temp {
			t.Fatalf("%s: temperature = %v, want %v", tc.agent, got.Temperature, tc.temp)
		}
		if got.APIKey != "key" {
			t.Fatalf("%s: api key not trimmed: %q", tc.agent, got.APIKey)
		}
		if got.MaxCompletionToken == nil || *got.MaxCompletionToken != 512 {
			t.Fatalf("%s: unexpected max tokens %v", tc.agent, got.MaxCompletionToken)
		}
	}
}

func TestProviderForRouterIgnoresBaseTemperature(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Temperature = 1.2
	if got := cfg.ProviderFor(contractx.AgentTypeRouter).Temperature; got != 0 {
		t.Fatalf("router temperature = %v, want 0", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := baseConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	cfg := baseConfig()
	cfg.APIKey = ""
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	cfg = baseConfig()
	cfg.Model = " "
	if err := cfg.Validate(); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
