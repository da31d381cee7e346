package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

var (
	outJSON          string
	verifyTimeout    time.Duration
	contentThreshold float64
	speakerThreshold float64
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <clip>",
	Short: "Verify a clip against the reference corpus",
	Long: `Verify transcribes a clip, finds the best-matching span in every
reference recording, runs the speaker-identity check on the best match,
and prints the classified result.

Example:
  clipverify verify clip.mp4
  clipverify verify clip.mp4 --json result.json
  clipverify verify clip.mp4 --content-threshold 0.9`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&outJSON, "json", "", "write result JSON to this path instead of stdout")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 10*time.Minute, "overall verification timeout")
	verifyCmd.Flags().Float64Var(&contentThreshold, "content-threshold", 0, "minimum text similarity for a content match (0 = configured default)")
	verifyCmd.Flags().Float64Var(&speakerThreshold, "speaker-threshold", 0, "minimum voice similarity for full verification (0 = configured default)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	clipPath := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if contentThreshold > 0 {
		cfg.Thresholds.Content = contentThreshold
	}
	if speakerThreshold > 0 {
		cfg.Thresholds.Speaker = speakerThreshold
	}

	logger := newCLILogger(cfg)
	eng, _, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", clipPath)
		fmt.Fprintf(os.Stderr, "References: %s\n", cfg.Reference.Dir)
		fmt.Fprintln(os.Stderr)
	}

	result, err := eng.VerifyClip(ctx, clipPath, filepath.Base(clipPath))
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)
		}
	} else {
		fmt.Println(string(data))
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Outcome: %s\n", result.Type)
		if result.BestMatch != nil {
			fmt.Fprintf(os.Stderr, "✓ Best match: %s at %.2fs (similarity %.3f)\n",
				result.BestMatch.SourceName, result.BestMatch.StartTime, result.BestMatch.Similarity)
		}
	}
	return nil
}
