package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/newsgate/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many articles from a file in parallel",
	Long: `Batch analyzes many articles concurrently and writes one JSON report
per article.

The input is either JSON lines ({"id": ..., "content": ..., "sourceUrl": ...})
or plain-text articles separated by lines containing only "---".

Example:
  newsgate batch articles.jsonl
  newsgate batch articles.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./newsgate-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	p, logger, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer p.Close()
	ctx = logger.WithContext(ctx)

	workers := concurrency
	if workers <= 0 {
		workers = p.Config().Concurrency.Workers
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger.Info().
		Str("file", file).
		Int("workers", workers).
		Str("output", outputDir).
		Msg("batch started")

	processor := worker.NewBatchProcessor(p, workers)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	out := cmd.OutOrStdout()
	var failed int
	verdicts := make(map[string]int)
	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", result.Item.ID, result.Error)
			continue
		}

		path := filepath.Join(outputDir, sanitizeFilename(result.Item.ID)+".json")
		if err := writeJSON(out, path, result.Report); err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n", result.Item.ID, err)
			continue
		}

		label := string(result.Report.Stage1.Decision)
		if v := result.Report.Verdict(); v != "" {
			label = string(v)
		}
		verdicts[label]++
		fmt.Fprintf(out, "✓ %s: %s\n", result.Item.ID, label)
	}

	fmt.Fprintf(out, "\nTotal: %d  Failed: %d", len(results), failed)
	for _, label := range []string{"BLOCK", "VERIFIED", "SUSPICIOUS", "NEEDS_REVIEW", "FAKE", "PASS"} {
		if n := verdicts[label]; n > 0 {
			fmt.Fprintf(out, "  %s: %d", label, n)
		}
	}
	fmt.Fprintf(out, "\nOutput: %s\n", outputDir)

	if failed > 0 && failed == len(results) {
		return fmt.Errorf("all %d items failed", failed)
	}
	return nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename turns an item ID into a safe file name
func sanitizeFilename(s string) string {
	s = strings.Trim(unsafeFilename.ReplaceAllString(s, "_"), "._")
	if s == "" {
		s = "item"
	}
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
