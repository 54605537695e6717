package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// doctorCmd represents the doctor command
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the configured collaborators are reachable",
	Long: `Doctor reports which collaborators are configured and checks them:
the LLM gateway gets a one-token completion and the wire feeds are
refreshed once. The news-search API is only checked for a key, since
every query counts against its quota.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		p, logger, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()
		ctx = logger.WithContext(ctx)

		out := cmd.OutOrStdout()
		problems := 0

		switch name, ok := p.CheckLLM(ctx); {
		case name == "":
			fmt.Fprintln(out, "- LLM gateway:  not configured (heuristic fallbacks in use)")
		case ok:
			fmt.Fprintf(out, "✓ LLM gateway:  %s reachable\n", name)
		default:
			problems++
			fmt.Fprintf(out, "✗ LLM gateway:  %s unreachable\n", name)
		}

		if p.SearchEnabled() {
			fmt.Fprintln(out, "✓ News search:  API key set")
		} else {
			problems++
			fmt.Fprintln(out, "✗ News search:  no API key (Stage 2 unavailable)")
		}

		if store := p.FeedStore(); store == nil {
			fmt.Fprintln(out, "- Wire feeds:   disabled")
		} else if err := store.Refresh(ctx); err != nil {
			problems++
			fmt.Fprintf(out, "✗ Wire feeds:   %v\n", err)
		} else {
			items, _ := store.Items(ctx)
			fmt.Fprintf(out, "✓ Wire feeds:   %d items\n", len(items))
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
