package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/newsgate/internal/model"
)

func printReport(w io.Writer, r *model.AnalysisReport) {
	printStage1(w, r.Stage1)
	if r.Stage2 != nil {
		fmt.Fprintln(w)
		printStage2(w, r.Stage2)
	}
}

func printStage1(w io.Writer, d *model.Stage1Decision) {
	fmt.Fprintf(w, "Stage 1: %s\n", d.Decision)
	fmt.Fprintf(w, "  Reason:   %s\n", d.Reason)
	if d.DomainScore != nil {
		fmt.Fprintf(w, "  Domain:   %.2f (%s)\n", *d.DomainScore, d.DomainStatus)
	}
	if d.OverallAuthenticityScore != nil {
		fmt.Fprintf(w, "  Authenticity: %.2f\n", *d.OverallAuthenticityScore)
	}
	if a := d.Assessment; a != nil {
		fmt.Fprintf(w, "  Viral-worthy: %v (confidence %.2f) %s\n", a.IsViralWorthy, a.Confidence, a.Reason)
	}
}

func printStage2(w io.Writer, r *model.NewsVerificationResult) {
	fmt.Fprintf(w, "Stage 2: %s (%d/100)\n", r.OverallVerdict, r.OverallScore)
	fmt.Fprintf(w, "  Relatability:    %d\n", r.Relatability.OverallScore)
	fmt.Fprintf(w, "  Legitimacy:      %d\n", r.Legitimacy.OverallScore)
	for _, o := range r.Legitimacy.Outlets() {
		mark := "✗"
		if o.Found {
			mark = "✓"
		}
		fmt.Fprintf(w, "    %s %-12s %d%%\n", mark, o.Outlet.Name(), o.Similarity)
	}
	fmt.Fprintf(w, "  Trustworthiness: %d\n", r.Trustworthiness.OverallScore)
	if feeds := r.Relatability.RSSVerification.MatchingFeeds; len(feeds) > 0 {
		fmt.Fprintf(w, "  Wire feeds:\n")
		for _, f := range feeds {
			fmt.Fprintf(w, "    %s: %s (%d%%)\n", f.Source, f.Title, f.Similarity)
		}
	}
	if len(r.Topics) > 0 {
		fmt.Fprintf(w, "  Topics: %s\n", strings.Join(r.Topics, ", "))
	}
	if r.Assessment != "" {
		fmt.Fprintf(w, "  %s\n", r.Assessment)
	}
}
