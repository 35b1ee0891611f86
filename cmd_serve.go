package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	serverx "github.com/tanpawarit/neobank-assistant/agent/server"
	configx "github.com/tanpawarit/neobank-assistant/pkg/config"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat and admin HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg, err := configx.New[AppConfig]("")
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}
	httpCfg, err := configx.New[serverx.Config]("HTTP")
	if err != nil {
		return fmt.Errorf("load http config: %w", err)
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	if appCfg.SeedOnStart {
		if _, err := seedStore(ctx, st); err != nil {
			return err
		}
	}

	orch, err := buildOrchestrator(ctx, st)
	if err != nil {
		return err
	}

	srv, err := serverx.New(*httpCfg, orch, st)
	if err != nil {
		return err
	}
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
