package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// CaseRunner defines the interface for processing a single case directory
type CaseRunner interface {
	RunCase(ctx context.Context, caseDir string) (string, error)
}

// CaseJob represents a single case directory job
type CaseJob struct {
	CaseDir string
	Runner  CaseRunner
}

// Execute executes the case job
func (j *CaseJob) Execute(ctx context.Context) Result {
	summary, err := j.Runner.RunCase(ctx, j.CaseDir)
	return &CaseResult{
		CaseDir: j.CaseDir,
		Summary: summary,
		Error:   err,
	}
}

// CaseResult represents the result of a case job
type CaseResult struct {
	CaseDir string
	Summary string
	Error   error
}

// GetError returns the error from the case result
func (r *CaseResult) GetError() error {
	return r.Error
}

// BatchProcessor processes multiple case directories concurrently
type BatchProcessor struct {
	runner      CaseRunner
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(runner CaseRunner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
	}
}

// ProcessDirs processes multiple case directories concurrently. Results
// come back in input order; cases the pool never executed (cancellation,
// deadline) are reported as failures rather than dropped.
func (b *BatchProcessor) ProcessDirs(ctx context.Context, caseDirs []string) []*CaseResult {
	if len(caseDirs) == 0 {
		return []*CaseResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, dir := range caseDirs {
		pool.Submit(&CaseJob{
			CaseDir: dir,
			Runner:  b.runner,
		})
	}

	results := pool.Wait()

	byDir := make(map[string][]*CaseResult, len(results))
	for _, result := range results {
		cr := result.(*CaseResult)
		byDir[cr.CaseDir] = append(byDir[cr.CaseDir], cr)
	}

	ordered := make([]*CaseResult, 0, len(caseDirs))
	for _, dir := range caseDirs {
		if pending := byDir[dir]; len(pending) > 0 {
			ordered = append(ordered, pending[0])
			byDir[dir] = pending[1:]
			continue
		}
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		ordered = append(ordered, &CaseResult{
			CaseDir: dir,
			Error:   fmt.Errorf("case not processed: %w", cause),
		})
	}

	return ordered
}

// ProcessFile reads case directories from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CaseResult, error) {
	dirs, err := ReadCaseDirsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read case list: %w", err)
	}

	return b.ProcessDirs(ctx, dirs), nil
}

// ReadCaseDirsFromFile reads case directory paths from a file (one per line)
func ReadCaseDirsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var dirs []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			dirs = append(dirs, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return dirs, nil
}
