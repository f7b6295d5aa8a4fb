package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"
)

// mockRunner implements CaseRunner
type mockRunner struct {
	ShouldError bool
}

func (m *mockRunner) RunCase(ctx context.Context, caseDir string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(10 * time.Millisecond): // Simulate work
	}
	if m.ShouldError {
		return "", errors.New("case error")
	}
	return "7 fields, 5 autofilled", nil
}

func TestBatchProcessor_ProcessDirs(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	dirs := []string{"cases/1001", "cases/1002", "cases/1003"}
	ctx := context.Background()

	results := processor.ProcessDirs(ctx, dirs)

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	successCount := 0
	for _, res := range results {
		if res.Error == nil {
			successCount++
			if res.Summary == "" {
				t.Error("expected summary for successful case")
			}
		} else {
			t.Errorf("unexpected error for %s: %v", res.CaseDir, res.Error)
		}
	}

	if successCount != 3 {
		t.Errorf("expected 3 successes, got %d", successCount)
	}
}

func TestBatchProcessor_ProcessDirs_Error(t *testing.T) {
	runner := &mockRunner{ShouldError: true}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessDirs(context.Background(), []string{"cases/1001"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Summary != "" {
		t.Error("expected empty summary on error")
	}
}

func TestBatchProcessor_LargeBatchSingleWorker(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 1)

	dirs := make([]string, 30)
	for i := range dirs {
		dirs[i] = fmt.Sprintf("cases/%d", 1000+i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results := processor.ProcessDirs(ctx, dirs)

	if len(results) != len(dirs) {
		t.Fatalf("expected %d results, got %d", len(dirs), len(results))
	}
	for i, res := range results {
		if res.CaseDir != dirs[i] {
			t.Errorf("result %d: expected %s, got %s", i, dirs[i], res.CaseDir)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.CaseDir, res.Error)
		}
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dirs := []string{"cases/1001", "cases/1002", "cases/1003"}
	results := processor.ProcessDirs(ctx, dirs)

	if len(results) != len(dirs) {
		t.Fatalf("expected %d results, got %d", len(dirs), len(results))
	}
	for _, res := range results {
		if res.Error == nil {
			t.Errorf("expected error for unprocessed case %s", res.CaseDir)
		}
	}
}

func TestBatchProcessor_ProcessDirs_Empty(t *testing.T) {
	runner := &mockRunner{}
	processor := NewBatchProcessor(runner, 2)

	results := processor.ProcessDirs(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadCaseDirsFromFile(t *testing.T) {
	content := `cases/1001
# comment
cases/1002
   
cases/1001
cases/1003   `

	tmpfile, err := os.CreateTemp("", "cases")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	dirs, err := ReadCaseDirsFromFile(tmpfile.Name())
	if err != nil {
		t.Fatalf("ReadCaseDirsFromFile failed: %v", err)
	}

	expected := []string{"cases/1001", "cases/1002", "cases/1003"}
	if len(dirs) != len(expected) {
		t.Fatalf("expected %d dirs, got %d", len(expected), len(dirs))
	}
	for i, want := range expected {
		if dirs[i] != want {
			t.Errorf("dir %d: expected %s, got %s", i, want, dirs[i])
		}
	}
}

func TestReadCaseDirsFromFile_NotFound(t *testing.T) {
	_, err := ReadCaseDirsFromFile("/nonexistent/cases.txt")
	if err == nil {
		t.Error("expected error for missing file")
	}
}
