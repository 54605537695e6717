package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/newsgate/internal/model"
	"github.com/ppiankov/newsgate/internal/pipeline"
)

var (
	checkURL     string
	checkFetch   bool
	checkStage   string
	checkJSON    string
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Verify one news article",
	Long: `Check runs the two-stage analysis on one article.

The article text comes from a file argument, from stdin when the argument
is "-" or omitted, or is downloaded from --url with --fetch. The first line
of the text is treated as the headline.

Example:
  newsgate check article.txt --url https://www.bbc.com/news/world-123
  cat article.txt | newsgate check --stage 1
  newsgate check --fetch --url https://www.theguardian.com/world/2026/... --json report.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkURL, "url", "", "source URL of the article")
	checkCmd.Flags().BoolVar(&checkFetch, "fetch", false, "download and extract the article from --url")
	checkCmd.Flags().StringVar(&checkStage, "stage", "all", "stage to run: 1, 2 or all")
	checkCmd.Flags().StringVar(&checkJSON, "json", "", "write the JSON result to this path (\"-\" for stdout)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	p, logger, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	ctx = logger.WithContext(ctx)

	content, sourceURL, err := checkInput(ctx, p, cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var result any
	switch checkStage {
	case "1":
		d, err := p.RunStage1(ctx, content, sourceURL)
		if err != nil {
			return fmt.Errorf("stage 1: %w", err)
		}
		result = d
		if checkJSON == "" {
			printStage1(cmd.OutOrStdout(), d)
		}
	case "2":
		r, err := p.RunStage2(ctx, content, sourceURL)
		if err != nil {
			return fmt.Errorf("stage 2: %w", err)
		}
		result = r
		if checkJSON == "" {
			printStage2(cmd.OutOrStdout(), r)
		}
	case "all", "":
		report, err := p.Analyze(ctx, content, sourceURL)
		if err != nil {
			return fmt.Errorf("analysis: %w", err)
		}
		result = report
		if checkJSON == "" {
			printReport(cmd.OutOrStdout(), report)
		}
	default:
		return fmt.Errorf("unknown stage %q (use 1, 2 or all)", checkStage)
	}

	if checkJSON != "" {
		return writeJSON(cmd.OutOrStdout(), checkJSON, result)
	}
	return nil
}

// checkInput resolves the article text from --fetch, a file, or stdin
func checkInput(ctx context.Context, p *pipeline.Pipeline, stdin io.Reader, args []string) (string, string, error) {
	if checkFetch {
		if checkURL == "" {
			return "", "", fmt.Errorf("--fetch requires --url")
		}
		res, err := p.FetchArticle(ctx, checkURL)
		if err != nil {
			return "", "", fmt.Errorf("fetch article: %w", err)
		}
		zerolog.Ctx(ctx).Debug().
			Str("url", res.FinalURL).
			Str("adapter", res.Article.Adapter).
			Int("paragraphs", len(res.Article.Paragraphs)).
			Msg("article extracted")
		return res.Article.Content(), res.FinalURL, nil
	}

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return "", "", fmt.Errorf("read article: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", "", fmt.Errorf("article is empty: %w", model.ErrValidation)
	}
	return content, checkURL, nil
}

// writeJSON writes v indented to path, or to out when path is "-"
func writeJSON(out io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
