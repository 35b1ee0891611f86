package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	openaicompatx "github.com/tanpawarit/neobank-assistant/pkg/openaicompat"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.groq.com/openai/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" default:"llama-3.3-70b-versatile"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"1024"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	// CallTimeout bounds a single model round-trip.
	CallTimeout time.Duration `envconfig:"CALL_TIMEOUT" split_words:"true" default:"30s"`

	RouterModel         string  `envconfig:"ROUTER_MODEL" split_words:"true"`
	SupportModel        string  `envconfig:"SUPPORT_MODEL" split_words:"true"`
	AccountsModel       string  `envconfig:"ACCOUNTS_MODEL" split_words:"true"`
	LoansModel          string  `envconfig:"LOANS_MODEL" split_words:"true"`
	SupportTemperature  float32 `envconfig:"SUPPORT_TEMPERATURE" split_words:"true" default:"0.7"`
	AccountsTemperature float32 `envconfig:"ACCOUNTS_TEMPERATURE" split_words:"true" default:"-1"`
	LoansTemperature    float32 `envconfig:"LOANS_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("%w: call timeout must not be negative", contractx.ErrValidation)
	}
	return nil
}

// ProviderFor resolves the model and temperature one agent runs with.
// The router always classifies at temperature 0.
func (c Config) ProviderFor(agentType contractx.AgentType) openaicompatx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	override := func(name string, t float32) {
		if v := strings.TrimSpace(name); v != "" {
			modelName = v
		}
		if t >= 0 {
			temp = t
		}
	}

	switch agentType {
	case contractx.AgentTypeRouter:
		override(c.RouterModel, 0)
	case contractx.AgentTypeSupport:
		override(c.SupportModel, c.SupportTemperature)
	case contractx.AgentTypeAccounts:
		override(c.AccountsModel, c.AccountsTemperature)
	case contractx.AgentTypeLoans:
		override(c.LoansModel, c.LoansTemperature)
	}

	var maxCompletionToken *int
	if c.MaxCompletionToken > 0 {
		v := c.MaxCompletionToken
		maxCompletionToken = &v
	}

	return openaicompatx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
