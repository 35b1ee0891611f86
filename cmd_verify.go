package main

import (
	"fmt"

	"github.com/spf13/cobra"

	contractx "github.com/tanpawarit/neobank-assistant/agent/contract"
	llmx "github.com/tanpawarit/neobank-assistant/agent/llm"
	configx "github.com/tanpawarit/neobank-assistant/pkg/config"
	openaicompatx "github.com/tanpawarit/neobank-assistant/pkg/openaicompat"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the configured key and models answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			llmCfg, err := configx.New[llmx.Config]("LLM")
			if err != nil {
				return fmt.Errorf("load llm config: %w", err)
			}
			if err := llmCfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			seen := map[string]bool{}
			for _, agentType := range []contractx.AgentType{
				contractx.AgentTypeRouter,
				contractx.AgentTypeSupport,
				contractx.AgentTypeAccounts,
				contractx.AgentTypeLoans,
			} {
				provider := llmCfg.ProviderFor(agentType)
				if seen[provider.Model] {
					continue
				}
				seen[provider.Model] = true

				reply, err := openaicompatx.Verify(ctx, provider)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%s): %s\n", provider.Model, agentType, reply)
			}
			return nil
		},
	}
}
