package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/truelens/truelens/internal/model"
	"github.com/truelens/truelens/internal/worker"
)

var (
	scanClaim   string
	scanOut     string
	scanTimeout time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [session.json]",
	Short: "Evaluate a captured session (or a single claim) for misinformation",
	Long: `Scan runs one session through the full evaluation pipeline:
- Extract factual claims from the captured entries
- Score each claim against suspicion rules
- Match claims against known, debunked misinformation
- Verify surviving claims against trusted sources
- Compose a per-claim explanation and verdict

Example:
  truelens scan session.json
  truelens scan session.json --out result.json
  truelens scan --claim "Drinking hot water kills the virus"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanClaim, "claim", "", "evaluate a single claim instead of a session file")
	scanCmd.Flags().StringVar(&scanOut, "out", "", "write the final result JSON to this path (default: stdout)")
	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 5*time.Minute, "overall scan timeout")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanClaim == "" && len(args) == 0 {
		return fmt.Errorf("either a session file or --claim is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	session, err := scanSession(args)
	if err != nil {
		return err
	}

	result := app.pipeline.Process(ctx, session)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if scanOut != "" {
		if err := os.WriteFile(scanOut, data, 0o644); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Result written to %s\n", scanOut)
		return nil
	}

	fmt.Println(string(data))
	return nil
}

// scanSession builds the session to process, either from a file or from the
// --claim flag wrapped as a one-entry session.
func scanSession(args []string) (*model.Session, error) {
	if scanClaim != "" {
		return &model.Session{
			ID: "cli-" + uuid.NewString(),
			Entries: []model.Entry{
				{ID: "e1", Text: scanClaim, Source: "text"},
			},
		}, nil
	}
	return worker.LoadSession(args[0])
}
