package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/truelens/truelens/internal/corpus"
	"github.com/truelens/truelens/internal/llm"
)

var (
	corpusCategory   string
	corpusDebunkedBy string
)

// corpusCmd represents the corpus command
var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the known-misinformation corpus",
	Long: `Manage the corpus of known, debunked misinformation claims that
Stage 3 matches new claims against.

The corpus lives in a local SQLite database and is seeded with a small
set of widely debunked claims on first use.`,
}

var corpusAddCmd = &cobra.Command{
	Use:   "add <claim>",
	Short: "Add a debunked claim to the corpus",
	Long: `Add a known-false claim so future sessions can match against it.

Example:
  truelens corpus add "Drinking bleach cures COVID-19" --category medical --debunked-by who.int,cdc.gov`,
	Args: cobra.ExactArgs(1),
	RunE: runCorpusAdd,
}

var corpusBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate embeddings for corpus records that lack one",
	Long: `Backfill embeddings for corpus records added without one. This also
runs automatically at startup; the command exists to pre-warm the corpus
or retry after an embedding outage.`,
	RunE: runCorpusBackfill,
}

func init() {
	rootCmd.AddCommand(corpusCmd)
	corpusCmd.AddCommand(corpusAddCmd)
	corpusCmd.AddCommand(corpusBackfillCmd)

	corpusAddCmd.Flags().StringVar(&corpusCategory, "category", "general", "claim category (medical, political, scientific, climate, general)")
	corpusAddCmd.Flags().StringVar(&corpusDebunkedBy, "debunked-by", "", "comma-separated list of debunking sources")
}

func runCorpusAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg.Log)
	if err != nil {
		return err
	}

	store, err := corpus.Open(cfg.Corpus.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	var debunkedBy []string
	for _, src := range strings.Split(corpusDebunkedBy, ",") {
		if src = strings.TrimSpace(src); src != "" {
			debunkedBy = append(debunkedBy, src)
		}
	}

	if err := store.Add(ctx, args[0], corpusCategory, debunkedBy); err != nil {
		return err
	}

	// Embed immediately when a backend is available; otherwise the next
	// backfill picks it up.
	if backend, berr := llm.NewClient(cfg.LLM); berr == nil {
		if err := store.EnsureEmbeddings(ctx, backend); err != nil {
			fmt.Printf("Claim added; embedding deferred: %v\n", err)
			return nil
		}
	}

	fmt.Printf("Added to corpus (%d records total)\n", store.Len())
	return nil
}

func runCorpusBackfill(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initLogger(cfg.Log)
	if err != nil {
		return err
	}

	backend, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return err
	}

	store, err := corpus.Open(cfg.Corpus.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.EnsureEmbeddings(ctx, backend); err != nil {
		return err
	}

	fmt.Printf("Corpus ready: %d records embedded\n", store.Len())
	return nil
}
