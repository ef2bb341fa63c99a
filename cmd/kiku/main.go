// Package main is the kiku CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/hyperjump/kiku/internal/cli"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath   string
	envPath      string
	serverURL    string
	outputFormat string
	debugFlag    bool
)

var rootCmd = &cobra.Command{
	Use:   "kiku",
	Short: "Ask questions about video transcripts",
	Long: `kiku indexes a video transcript and answers questions about it.

A server keeps one video and its conversation in memory; the process, ask,
history, search and status commands talk to it over HTTP. ask --transcript
and chat run the whole pipeline locally instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnv(envPath)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", defaultConfigPath, "config file path")
	pf.StringVar(&envPath, "env", "", "env file with API keys (default .env when present)")
	pf.StringVar(&serverURL, "server", "http://localhost:8080", "server URL")
	pf.StringVarP(&outputFormat, "output", "o", "text", "output format: text or json")
	pf.BoolVar(&debugFlag, "debug", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kiku version %s\n", version)
	},
}

// loadEnv loads path, or .env in the working directory when path is empty.
// A missing default .env is not an error.
func loadEnv(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func format() (cli.OutputFormat, error) {
	return cli.ParseFormat(outputFormat)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
