package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type fakeEmbedder struct {
	calls int
	fn    func(text string) []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.fn != nil {
		return f.fn(text), nil
	}
	return []float32{1, 0}, nil
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.db")
	store, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open corpus: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestOpen_SeedsFreshDatabase(t *testing.T) {
	store, _ := openTestStore(t)

	if store.Len() != len(seedRecords) {
		t.Errorf("expected %d seeded records, got %d", len(seedRecords), store.Len())
	}
}

func TestOpen_SeedsOnlyOnce(t *testing.T) {
	store, path := openTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen corpus: %v", err)
	}
	defer reopened.Close()

	if reopened.Len() != len(seedRecords) {
		t.Errorf("expected %d records after reopen, got %d", len(seedRecords), reopened.Len())
	}
}

func TestStore_EnsureEmbeddings_Idempotent(t *testing.T) {
	store, path := openTestStore(t)
	embedder := &fakeEmbedder{}
	ctx := context.Background()

	if err := store.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if embedder.calls != len(seedRecords) {
		t.Errorf("expected %d embed calls, got %d", len(seedRecords), embedder.calls)
	}

	// Second run must not re-embed anything.
	if err := store.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("second backfill: %v", err)
	}
	if embedder.calls != len(seedRecords) {
		t.Errorf("second backfill re-embedded records: %d calls", embedder.calls)
	}

	// Embeddings persist across reopen.
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened, err := Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if err := reopened.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("backfill after reopen: %v", err)
	}
	if embedder.calls != len(seedRecords) {
		t.Errorf("persisted embeddings were recomputed: %d calls", embedder.calls)
	}
}

func TestStore_Add_ThenBackfill(t *testing.T) {
	store, _ := openTestStore(t)
	embedder := &fakeEmbedder{}
	ctx := context.Background()

	if err := store.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	if err := store.Add(ctx, "Drinking bleach cures COVID-19", "medical", []string{"who.int"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if store.Len() != len(seedRecords)+1 {
		t.Errorf("expected %d records, got %d", len(seedRecords)+1, store.Len())
	}

	before := embedder.calls
	if err := store.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("backfill after add: %v", err)
	}
	if embedder.calls != before+1 {
		t.Errorf("expected exactly 1 new embed call, got %d", embedder.calls-before)
	}
}

func TestStore_BestMatch(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	// Give each record a distinct direction so similarity is controllable.
	i := 0
	embedder := &fakeEmbedder{fn: func(text string) []float32 {
		vec := make([]float32, len(seedRecords))
		vec[i%len(seedRecords)] = 1
		i++
		return vec
	}}
	if err := store.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	// Query aligned with the third record.
	query := make([]float32, len(seedRecords))
	query[2] = 1

	rec, sim, ok := store.BestMatch(query, 0.85)
	if !ok {
		t.Fatalf("expected a match")
	}
	if sim < 0.999 {
		t.Errorf("expected similarity ~1.0, got %f", sim)
	}
	if rec.Claim != seedRecords[2].Claim {
		t.Errorf("expected %q, got %q", seedRecords[2].Claim, rec.Claim)
	}

	// A query aligned with nothing stays below the threshold.
	far := make([]float32, len(seedRecords))
	for j := range far {
		far[j] = 1
	}
	if _, sim, ok := store.BestMatch(far, 0.85); ok {
		t.Errorf("expected no match, got similarity %f", sim)
	}
}

func TestStore_BestMatch_TieBreaksByCorpusOrder(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	// All records share the same embedding, so every similarity ties.
	embedder := &fakeEmbedder{}
	if err := store.EnsureEmbeddings(ctx, embedder); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	rec, _, ok := store.BestMatch([]float32{1, 0}, 0.85)
	if !ok {
		t.Fatalf("expected a match")
	}
	if rec.Claim != seedRecords[0].Claim {
		t.Errorf("tie should resolve to the earliest record, got %q", rec.Claim)
	}
}

func TestStore_SkipsRecordsWithoutEmbedding(t *testing.T) {
	store, _ := openTestStore(t)

	// No backfill has run; nothing can match.
	if _, _, ok := store.BestMatch([]float32{1, 0}, 0.0); ok {
		t.Errorf("records without embeddings must not match")
	}
}
