// Package corpus manages the known-misinformation records the semantic
// duplication stage matches claims against. Records live in SQLite; derived
// embeddings are backfilled once at startup and persisted, never recomputed.
// After initialization the store is read-mostly and safe for concurrent use.
package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Record is one previously debunked claim with its derived embedding.
type Record struct {
	ID         int64
	Claim      string
	Category   string
	DebunkedBy []string
	Embedding  []float32
}

// Embedder produces an embedding vector for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Store is the SQLite-backed corpus with an in-memory snapshot for matching.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	mu      sync.RWMutex
	records []Record
}

const migration = `
CREATE TABLE IF NOT EXISTS known_misinformation (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	claim       TEXT NOT NULL UNIQUE,
	category    TEXT NOT NULL,
	debunked_by TEXT NOT NULL,
	embedding   TEXT
);
`

// Open opens (or creates) the corpus database, seeds it on first use, and
// loads all records into memory.
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("corpus: exec %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(migration); err != nil {
		db.Close()
		return nil, fmt.Errorf("corpus: migrate: %w", err)
	}

	s := &Store{db: db, log: logger}
	if err := s.seedIfEmpty(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("corpus opened", zap.String("path", path), zap.Int("records", len(s.records)))
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Len returns the number of corpus records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Add inserts a new debunked claim without an embedding; the next
// EnsureEmbeddings run backfills it.
func (s *Store) Add(ctx context.Context, claim, category string, debunkedBy []string) error {
	sources, err := json.Marshal(debunkedBy)
	if err != nil {
		return fmt.Errorf("corpus: marshal sources: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO known_misinformation (claim, category, debunked_by) VALUES (?, ?, ?)`,
		claim, category, string(sources))
	if err != nil {
		return fmt.Errorf("corpus: insert: %w", err)
	}
	id, _ := res.LastInsertId()

	s.mu.Lock()
	s.records = append(s.records, Record{ID: id, Claim: claim, Category: category, DebunkedBy: debunkedBy})
	s.mu.Unlock()
	return nil
}

// EnsureEmbeddings backfills missing embeddings and persists them. The
// operation is idempotent: records with an embedding are never touched, so
// repeated runs (and concurrent startups against the same file) converge.
func (s *Store) EnsureEmbeddings(ctx context.Context, embedder Embedder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backfilled := 0
	for i := range s.records {
		rec := &s.records[i]
		if rec.Embedding != nil {
			continue
		}

		s.log.Info("generating embedding", zap.String("claim", rec.Claim))
		vec, err := embedder.Embed(ctx, rec.Claim)
		if err != nil {
			return fmt.Errorf("corpus: embed %q: %w", rec.Claim, err)
		}

		data, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("corpus: marshal embedding: %w", err)
		}
		if _, err := s.db.ExecContext(ctx,
			`UPDATE known_misinformation SET embedding = ? WHERE id = ?`,
			string(data), rec.ID); err != nil {
			return fmt.Errorf("corpus: persist embedding: %w", err)
		}

		rec.Embedding = vec
		backfilled++
	}

	if backfilled > 0 {
		s.log.Info("embedding backfill complete", zap.Int("backfilled", backfilled))
	}
	return nil
}

// BestMatch returns the record most similar to the query embedding, provided
// its similarity meets the threshold. Ties are broken by corpus order: the
// earlier record wins.
func (s *Store) BestMatch(embedding []float32, threshold float64) (Record, float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		best     Record
		bestSim  float64
		anyMatch bool
	)
	for _, rec := range s.records {
		if rec.Embedding == nil {
			continue
		}
		sim := Cosine(embedding, rec.Embedding)
		if sim < threshold {
			continue
		}
		if !anyMatch || sim > bestSim {
			best = rec
			bestSim = sim
			anyMatch = true
		}
	}

	return best, bestSim, anyMatch
}

func (s *Store) seedIfEmpty() error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM known_misinformation`).Scan(&count); err != nil {
		return fmt.Errorf("corpus: count: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, rec := range seedRecords {
		sources, err := json.Marshal(rec.DebunkedBy)
		if err != nil {
			return fmt.Errorf("corpus: marshal seed sources: %w", err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO known_misinformation (claim, category, debunked_by) VALUES (?, ?, ?)`,
			rec.Claim, rec.Category, string(sources)); err != nil {
			return fmt.Errorf("corpus: seed %q: %w", rec.Claim, err)
		}
	}

	s.log.Info("corpus seeded", zap.Int("records", len(seedRecords)))
	return nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT id, claim, category, debunked_by, embedding FROM known_misinformation ORDER BY id`)
	if err != nil {
		return fmt.Errorf("corpus: load: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec       Record
			sources   string
			embedding sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Claim, &rec.Category, &sources, &embedding); err != nil {
			return fmt.Errorf("corpus: scan: %w", err)
		}
		if err := json.Unmarshal([]byte(sources), &rec.DebunkedBy); err != nil {
			return fmt.Errorf("corpus: unmarshal sources for %q: %w", rec.Claim, err)
		}
		if embedding.Valid && embedding.String != "" {
			if err := json.Unmarshal([]byte(embedding.String), &rec.Embedding); err != nil {
				return fmt.Errorf("corpus: unmarshal embedding for %q: %w", rec.Claim, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("corpus: iterate: %w", err)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}
