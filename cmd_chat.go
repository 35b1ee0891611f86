package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	historyx "github.com/tanpawarit/neobank-assistant/agent/history"
)

const (
	roleUser  = "user"
	roleModel = "model"
)

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to the assistant from the terminal",
		Long:  "With a message, answers it once. Without one, starts an interactive session that keeps history until EOF or \"exit\".",
		RunE:  runChat,
	}
	cmd.Flags().Bool("route", false, "print the category and agent that answered")
	return cmd
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	showRoute, _ := cmd.Flags().GetBool("route")

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	orch, err := buildOrchestrator(ctx, st)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		res, err := orch.Handle(ctx, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		if showRoute {
			fmt.Fprintf(out, "[%s -> %s]\n", res.Category, res.Agent)
		}
		fmt.Fprintln(out, res.Reply)
		return nil
	}

	return chatLoop(cmd.InOrStdin(), out, func(message string, history []historyx.Turn) (string, error) {
		res, err := orch.Handle(ctx, message, history)
		if err != nil {
			return "", err
		}
		if showRoute {
			fmt.Fprintf(out, "[%s -> %s]\n", res.Category, res.Agent)
		}
		return res.Reply, nil
	})
}

// chatLoop reads one message per line. Failed turns are reported and left
// out of the history.
func chatLoop(in io.Reader, out io.Writer, handle func(string, []historyx.Turn) (string, error)) error {
	var history []historyx.Turn
	scanner := bufio.NewScanner(in)

	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "exit" || line == "quit":
			return nil
		default:
			reply, err := handle(line, history)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				break
			}
			fmt.Fprintln(out, reply)
			history = append(history,
				historyx.Turn{Role: roleUser, Parts: []string{line}},
				historyx.Turn{Role: roleModel, Parts: []string{reply}},
			)
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}
