package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hyperjump/kiku/internal/cli"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/spf13/cobra"
)

var (
	processID    string
	processURL   string
	processTitle string

	askTranscript string
	askSources    bool

	historyClear bool

	searchLimit    int
	searchKeyword  bool
	searchSemantic bool
	searchFuzzy    bool
	searchMinScore float64
)

func init() {
	processCmd.Flags().StringVar(&processID, "id", "", "video ID (default: derived from --url or the file path)")
	processCmd.Flags().StringVar(&processURL, "url", "", "video URL")
	processCmd.Flags().StringVar(&processTitle, "title", "", "video title (default: file name)")

	askCmd.Flags().StringVar(&askTranscript, "transcript", "", "answer locally from this transcript file instead of the server")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "list the transcript chunks used")

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "clear the conversation")

	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum results")
	searchCmd.Flags().BoolVar(&searchKeyword, "keyword", true, "enable keyword search")
	searchCmd.Flags().BoolVar(&searchSemantic, "semantic", true, "enable semantic search")
	searchCmd.Flags().BoolVar(&searchFuzzy, "fuzzy", false, "tolerate typos in keyword search")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop hits scoring below this")

	rootCmd.AddCommand(processCmd, loadCmd, askCmd, historyCmd, searchCmd, statusCmd)
}

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Send a transcript file to the server",
	Long: `Extract the transcript in <file> (.txt, .md, .srt, .vtt, .pdf, .docx, .rtf, .odt)
and make it the server's current video. The conversation is cleared.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		in, err := inputFromFile(args[0], processID, processURL, processTitle)
		if err != nil {
			return err
		}
		var v models.Video
		if err := newAPIClient(serverURL).do(cmd.Context(), http.MethodPost, "/api/v1/videos", in, &v, http.StatusCreated); err != nil {
			return err
		}
		return cli.WriteVideo(cmd.OutOrStdout(), &v, f)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Make a stored video current again",
	Long: `Make a previously processed video the server's current video, with its
stored conversation. Stored vectors are reused, so nothing is re-embedded unless
the embedding model changed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		var v models.Video
		path := "/api/v1/videos/" + url.PathEscape(args[0]) + "/load"
		if err := newAPIClient(serverURL).do(cmd.Context(), http.MethodPost, path, nil, &v, http.StatusOK); err != nil {
			return err
		}
		if f == cli.OutputJSON {
			return cli.WriteVideo(cmd.OutOrStdout(), &v, f)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s\n", v.ID)
		return nil
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the current video",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		question := strings.Join(args, " ")
		if askTranscript != "" {
			return askLocal(cmd, askTranscript, question, f)
		}
		var ans models.Answer
		req := models.AskRequest{Question: question}
		if err := newAPIClient(serverURL).do(cmd.Context(), http.MethodPost, "/api/v1/ask", req, &ans, http.StatusOK); err != nil {
			return err
		}
		return cli.WriteAnswer(cmd.OutOrStdout(), &ans, f, askSources)
	},
}

func askLocal(cmd *cobra.Command, path, question string, f cli.OutputFormat) error {
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

	if _, err := processFile(cmd.Context(), components.Assistant, path, "", "", ""); err != nil {
		return err
	}
	ans, err := components.Assistant.Ask(cmd.Context(), question)
	if err != nil {
		return err
	}
	return cli.WriteAnswer(cmd.OutOrStdout(), ans, f, askSources)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the conversation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		c := newAPIClient(serverURL)
		if historyClear {
			if err := c.do(cmd.Context(), http.MethodDelete, "/api/v1/history", nil, nil, http.StatusOK); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Conversation cleared.")
			return nil
		}
		var out struct {
			Turns []models.Turn `json:"turns"`
		}
		if err := c.do(cmd.Context(), http.MethodGet, "/api/v1/history", nil, &out, http.StatusOK); err != nil {
			return err
		}
		return cli.WriteHistory(cmd.OutOrStdout(), out.Turns, f)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the current transcript's chunks",
	Long: `Search the current transcript's chunks with keyword and semantic scores fused.

Examples:
  kiku search gradient descent
  kiku search --semantic=false "learning rate"
  kiku search --fuzzy gradiant`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		q := buildSearchQuery(args)
		var resp models.SearchResponse
		if err := newAPIClient(serverURL).do(cmd.Context(), http.MethodPost, "/api/v1/search", q, &resp, http.StatusOK); err != nil {
			return err
		}
		return cli.WriteSearchResults(cmd.OutOrStdout(), &resp, f)
	},
}

// buildSearchQuery joins args into one query with the search flags applied.
func buildSearchQuery(args []string) *models.SearchQuery {
	return &models.SearchQuery{
		Query:           strings.TrimSpace(strings.Join(args, " ")),
		Limit:           searchLimit,
		KeywordEnabled:  searchKeyword,
		SemanticEnabled: searchSemantic,
		FuzzyEnabled:    searchFuzzy,
		MinScore:        searchMinScore,
	}
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current video and index status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := format()
		if err != nil {
			return err
		}
		var st models.Status
		if err := newAPIClient(serverURL).do(cmd.Context(), http.MethodGet, "/api/v1/status", nil, &st, http.StatusOK); err != nil {
			return err
		}
		return cli.WriteStatus(cmd.OutOrStdout(), &st, f)
	},
}
