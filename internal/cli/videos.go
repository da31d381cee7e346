package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// videosCmd represents the videos command
var videosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Manage the reference corpus",
}

var videosListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reference recordings and their cache state",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, _, err := buildEngine(cfg, newCLILogger(cfg))
		if err != nil {
			return err
		}

		refs, err := eng.ListReferences(context.Background())
		if err != nil {
			return err
		}
		if len(refs) == 0 {
			fmt.Printf("No reference recordings in %s\n", cfg.Reference.Dir)
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSOURCE ID\tCACHED\tDURATION\tWORDS")
		for _, ref := range refs {
			fmt.Fprintf(tw, "%s\t%.12s\t%t\t%.1fs\t%d\n",
				ref.Name, ref.SourceID, ref.Cached, ref.Duration, ref.WordCount)
		}
		return tw.Flush()
	},
}

var preprocessTimeout time.Duration

var videosPreprocessCmd = &cobra.Command{
	Use:   "preprocess [source-id]",
	Short: "Transcribe references ahead of verification traffic",
	Long: `Preprocess transcribes reference recordings and fills the transcript
cache so the first verification request does not pay the transcription
cost. With no argument every uncached reference is processed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, _, err := buildEngine(cfg, newCLILogger(cfg))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), preprocessTimeout)
		defer cancel()

		if len(args) == 1 {
			return eng.Preprocess(ctx, args[0])
		}
		return eng.PreprocessAll(ctx)
	},
}

var videosEvictCmd = &cobra.Command{
	Use:   "evict <source-id>",
	Short: "Evict a cached transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, _, err := buildEngine(cfg, newCLILogger(cfg))
		if err != nil {
			return err
		}
		return eng.Invalidate(args[0])
	},
}

var videosClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the entire transcript cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng, _, err := buildEngine(cfg, newCLILogger(cfg))
		if err != nil {
			return err
		}
		return eng.ClearCache()
	},
}

func init() {
	rootCmd.AddCommand(videosCmd)
	videosCmd.AddCommand(videosListCmd)
	videosCmd.AddCommand(videosPreprocessCmd)
	videosCmd.AddCommand(videosEvictCmd)
	videosCmd.AddCommand(videosClearCmd)

	videosPreprocessCmd.Flags().DurationVar(&preprocessTimeout, "timeout", 30*time.Minute, "overall preprocessing timeout")
}
