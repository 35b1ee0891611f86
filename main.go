package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	configx "github.com/tanpawarit/neobank-assistant/pkg/config"
	logx "github.com/tanpawarit/neobank-assistant/pkg/logger"
)

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "neobank",
		Short:         "NeoBank assistant",
		Long:          "Routes banking questions to support, accounts and loans agents over HTTP or the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)
			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return fmt.Errorf("load log config: %w", err)
			}
			logx.Init(*logCfg)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "env file to load (default ./.env when present)")

	rootCmd.AddCommand(
		newServeCmd(),
		newChatCmd(),
		newSeedCmd(),
		newVerifyCmd(),
		newAdminCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
