package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/claimcheck/internal/logger"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/pipeline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	checkFlags   runFlags
	checkText    string
	jsonOut      string
	mdOut        string
	checkTimeout time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [post-url]",
	Short: "Fact-check a single post",
	Long: `Check fetches a post and fact-checks it:
- Score sentiment and decide whether the post makes a checkable claim
- Extract the most check-worthy claims
- Search the web for each claim and read the top results
- Judge every result with natural language inference
- Aggregate the evidence into a verdict with confidence

Example:
  claimcheck check https://x.com/someone/status/1946989125441605826
  claimcheck check --text "The Eiffel Tower is in Berlin."
  claimcheck check https://x.com/someone/status/1946989125441605826 --json report.json --md report.md`,
	Args: func(cmd *cobra.Command, args []string) error {
		if checkText != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkFlags.register(checkCmd)
	checkCmd.Flags().StringVar(&checkText, "text", "", "check this text instead of fetching a post")
	checkCmd.Flags().StringVar(&jsonOut, "json", "", "write JSON report to file")
	checkCmd.Flags().StringVar(&mdOut, "md", "", "write Markdown report to file")
	checkCmd.Flags().DurationVar(&checkTimeout, "check-timeout", 5*time.Minute, "total timeout for the check")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd, &checkFlags)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()
	log := logger.FromContext(ctx)

	p, cleanup, err := buildPipeline(ctx, cfg, checkText == "")
	if err != nil {
		return err
	}
	defer cleanup()

	var report *model.Report
	if checkText != "" {
		fmt.Fprintf(os.Stderr, "⚙️  Checking text (%d chars)...\n", len(checkText))
		report, err = p.CheckText(ctx, checkText)
	} else {
		fmt.Fprintf(os.Stderr, "⚙️  Checking %s...\n", args[0])
		report, err = p.Check(ctx, strings.TrimSpace(args[0]))
	}
	if err != nil {
		log.Error("check failed", zap.Error(err))
		return fmt.Errorf("check failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	if jsonOut != "" {
		if err := renderer.RenderJSON(report, jsonOut); err != nil {
			return fmt.Errorf("write JSON: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", jsonOut)
	}

	if mdOut != "" {
		if err := renderer.RenderMarkdown(report, mdOut); err != nil {
			return fmt.Errorf("write Markdown: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", mdOut)
	}

	if jsonOut == "" && mdOut == "" && cfg.Output.Verbose {
		data, err := renderer.JSON(report)
		if err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	renderer.RenderSummary(os.Stdout, report)
	return nil
}
