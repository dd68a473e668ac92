package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/truelens/truelens/internal/worker"
)

var (
	batchConcurrency int
	batchTimeout     time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Evaluate multiple session files in parallel",
	Long: `Batch processes every *.json session file in a directory:
- Sessions run concurrently with a configurable worker count
- Each session gets its own stage snapshots and final result
- Results land in the configured results directory

Example:
  truelens batch ./sessions
  truelens batch ./sessions --concurrency 8 --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "number of concurrent workers (default: config value)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	workers := batchConcurrency
	if workers <= 0 {
		workers = app.cfg.Concurrency.Workers
	}

	processor := worker.NewBatchProcessor(app.pipeline, workers)
	results, err := processor.ProcessDir(ctx, dir)
	if err != nil {
		return err
	}

	successCount := 0
	failureCount := 0
	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%s, %d claims)\n",
			result.SessionID, result.Result.Status, result.Result.TotalClaims)
	}

	fmt.Fprintf(os.Stderr, "\nProcessed %d sessions: %d succeeded, %d failed\n",
		len(results), successCount, failureCount)
	fmt.Fprintf(os.Stderr, "Results: %s\n", app.cfg.Results.Dir)

	return nil
}
