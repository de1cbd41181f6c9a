package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/claimcheck/internal/cache"
	"github.com/ppiankov/claimcheck/internal/extract"
	"github.com/ppiankov/claimcheck/internal/llm"
	"github.com/ppiankov/claimcheck/internal/model"
	"github.com/ppiankov/claimcheck/internal/nlp"
	"github.com/ppiankov/claimcheck/internal/util"
	"github.com/spf13/cobra"
)

var (
	extractFlags runFlags
	noGate       bool
	extractJSON  bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Extract check-worthy claims from text",
	Long: `Extract ranks the sentences of a text by keyphrase weight and prints the
claims that would be searched by 'check'. Reads stdin when no text is given.

Example:
  claimcheck extract "NASA confirmed the mission launched in 2023. What a day!"
  echo "..." | claimcheck extract --no-gate --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractFlags.register(extractCmd)
	extractCmd.Flags().BoolVar(&noGate, "no-gate", false, "skip the LLM claim gate (no API key needed)")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print claims as JSON")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := commandConfig(cmd, &extractFlags)
	if err != nil {
		return err
	}

	text, err := readInput(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var detector extract.ClaimDetector
	if !noGate {
		c, cleanup, err := cache.New(cfg.Cache)
		if err != nil {
			return fmt.Errorf("create cache: %w", err)
		}
		defer cleanup()

		provider, err := llm.NewProvider(cmd.Context(), llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
		if err != nil {
			return fmt.Errorf("create LLM provider: %w (use --no-gate to extract without one)", err)
		}
		if closer, ok := provider.(io.Closer); ok {
			defer closer.Close()
		}
		detector = llm.NewClaimClassifier(provider, cfg.LLM.ClaimThreshold, c)
	}

	extractor := extract.NewClaimExtractor(nlp.NewProseAnalyzer(), detector)
	claims, err := extractor.Extract(cmd.Context(), util.CleanText(text), extract.OptionsFromConfig(cfg.Extraction))
	if err != nil {
		return fmt.Errorf("extract claims: %w", err)
	}

	return printClaims(cmd.OutOrStdout(), claims, extractJSON)
}

// readInput returns the single argument, or all of r when there is none
func readInput(args []string, r io.Reader) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("no text given")
	}
	return text, nil
}

func printClaims(w io.Writer, claims []model.Claim, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(claims)
	}

	if len(claims) == 0 {
		fmt.Fprintln(w, "No check-worthy claims found.")
		return nil
	}
	for i, c := range claims {
		fmt.Fprintf(w, "%d. %s  (score %.3f)\n", i+1, c.Text, c.NormScore)
	}
	return nil
}
