package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kiku/internal/cli"
	"github.com/hyperjump/kiku/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat <file>",
	Short: "Chat about a transcript file locally",
	Long: `Process <file> locally and answer questions read from stdin, one per line.

Commands:
  /history   show the conversation
  /reset     clear the conversation
  /quit      exit (also Ctrl-D)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		cfg, _, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		logger, debug, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, debug, false)
		if err != nil {
			return err
		}
		defer components.Close()

		v, err := processFile(cmd.Context(), components.Assistant, args[0], "", "", "")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded %s. Ask a question, or /quit.\n", v.Title)
		return chatLoop(cmd.Context(), components.Assistant, cmd.InOrStdin(), out, f)
	},
}

func chatLoop(ctx context.Context, a *session.Assistant, in io.Reader, out io.Writer, f cli.OutputFormat) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			if err := cli.WriteHistory(out, a.History(), f); err != nil {
				return err
			}
			continue
		case "/reset":
			if err := a.ResetHistory(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}
		ans, err := a.Ask(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if err := cli.WriteAnswer(out, ans, f, false); err != nil {
			return err
		}
	}
}
