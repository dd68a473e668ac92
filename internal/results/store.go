// Package results implements the persistence collaborator: best-effort JSON
// snapshots of each stage's output plus the final result, keyed by session
// id. Writes are fire-and-forget; a failed write is logged and never blocks
// or aborts the pipeline.
package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/truelens/truelens/internal/model"
)

// Store writes snapshots under a results directory.
type Store struct {
	dir string
	log *zap.Logger
}

// NewStore creates a snapshot store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{dir: dir, log: logger}
}

type snapshot struct {
	SessionID string    `json:"session_id"`
	Stage     int       `json:"stage"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// SaveStage persists one stage's output. Errors are swallowed after logging.
func (s *Store) SaveStage(sessionID string, stage int, payload any) {
	name := fmt.Sprintf("stage_%d_%s.json", stage, sessionID)
	s.write(name, snapshot{
		SessionID: sessionID,
		Stage:     stage,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

// SaveFinal persists the terminal result under the final-result key.
func (s *Store) SaveFinal(result *model.FinalResult) {
	name := fmt.Sprintf("final_result_%s.json", result.SessionID)
	s.write(name, result)
}

// LoadFinal reads a previously saved final result; callers poll this until
// the pipeline finishes.
func (s *Store) LoadFinal(sessionID string) (*model.FinalResult, error) {
	path := filepath.Join(s.dir, fmt.Sprintf("final_result_%s.json", sessionID))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("results: read final: %w", err)
	}

	var result model.FinalResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("results: unmarshal final: %w", err)
	}
	return &result, nil
}

func (s *Store) write(name string, payload any) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.log.Error("results dir unavailable", zap.String("dir", s.dir), zap.Error(err))
		return
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		s.log.Error("snapshot marshal failed", zap.String("file", name), zap.Error(err))
		return
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.log.Error("snapshot write failed", zap.String("file", name), zap.Error(err))
		return
	}

	s.log.Debug("snapshot saved", zap.String("file", path))
}
