package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/truelens/truelens/internal/model"
)

// Processor runs one session through the pipeline.
type Processor interface {
	Process(ctx context.Context, session *model.Session) *model.FinalResult
}

// SessionJob processes a single session file.
type SessionJob struct {
	Path      string
	Processor Processor
}

// Execute runs the session job.
func (j *SessionJob) Execute(ctx context.Context) Result {
	session, err := LoadSession(j.Path)
	if err != nil {
		return &SessionResult{Path: j.Path, Error: err}
	}
	return &SessionResult{
		Path:      j.Path,
		SessionID: session.ID,
		Result:    j.Processor.Process(ctx, session),
	}
}

// SessionResult is the outcome of one session job.
type SessionResult struct {
	Path      string
	SessionID string
	Result    *model.FinalResult
	Error     error
}

// GetError returns the job-level error, if any.
func (r *SessionResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many session files through the pipeline concurrently.
// Sessions are independent: the only shared state is read-mostly (corpus,
// flag definitions, source lists).
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessDir processes every *.json session file in a directory.
func (b *BatchProcessor) ProcessDir(ctx context.Context, dir string) ([]*SessionResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list session files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no session files found in %s", dir)
	}
	sort.Strings(paths)
	return b.ProcessFiles(ctx, paths), nil
}

// ProcessFiles processes the given session files concurrently.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*SessionResult {
	if len(paths) == 0 {
		return []*SessionResult{}
	}

	pool := NewPoolWithCapacity(b.concurrency, len(paths))
	pool.Start()

	for _, path := range paths {
		pool.Submit(&SessionJob{Path: path, Processor: b.processor})
	}

	results := pool.Wait()

	sessionResults := make([]*SessionResult, len(results))
	for i, result := range results {
		sessionResults[i] = result.(*SessionResult)
	}
	return sessionResults
}

// LoadSession reads a session JSON file.
func LoadSession(path string) (*model.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", path, err)
	}
	if session.ID == "" {
		session.ID = filepath.Base(path)
	}
	return &session, nil
}
