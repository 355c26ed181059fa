package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/config"
	"github.com/ludo-technologies/ktscan/internal/testutil"
)

// mapContent serves file contents from memory
type mapContent map[string]string

func (m mapContent) ReadContent(path string) (string, error) {
	if c, ok := m[path]; ok {
		return c, nil
	}
	return "", domain.NewReadError(path, errors.New("unreadable"))
}

// stubAnalyzer reports one finding per file unless told to fail
type stubAnalyzer struct {
	id             string
	failOn         string
	panicOn        string
	appliesPanicOn string
	calls          atomic.Int32
	delay          time.Duration
}

func (a *stubAnalyzer) ID() string                { return a.id }
func (a *stubAnalyzer) Category() domain.Category { return domain.CategoryCodeSmell }

func (a *stubAnalyzer) AppliesTo(file domain.FileDescriptor) bool {
	if file.RelativePath == a.appliesPanicOn {
		panic("boom")
	}
	return true
}

func (a *stubAnalyzer) Analyze(file domain.FileDescriptor, _ string) ([]domain.Finding, error) {
	a.calls.Add(1)
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	switch file.RelativePath {
	case a.failOn:
		return nil, errors.New("boom")
	case a.panicOn:
		panic("unexpected node")
	}
	return []domain.Finding{
		testutil.NewFinding(a.id, file.RelativePath, 1, domain.CategoryCodeSmell, domain.PriorityMedium, a.id+" finding"),
	}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestExecutor(goroutines int) *FileExecutor {
	return NewFileExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: goroutines}, nil, quietLogger())
}

func fixtureFiles(n int) ([]domain.FileDescriptor, mapContent) {
	files := make([]domain.FileDescriptor, 0, n)
	content := mapContent{}
	for i := 0; i < n; i++ {
		f := testutil.Descriptor(fmt.Sprintf("src/F%d.kt", i), domain.LayerUnknown)
		files = append(files, f)
		content[f.AbsolutePath] = "class F"
	}
	return files, content
}

func TestNewFileExecutorFromConfig(t *testing.T) {
	e := NewFileExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 3, TimeoutSeconds: 30}, nil, nil)
	testutil.AssertEqual(t, 3, e.MaxConcurrency())
	testutil.AssertEqual(t, 30*time.Second, e.timeout)

	e = NewFileExecutorFromConfig(&config.PerformanceConfig{}, nil, nil)
	if e.MaxConcurrency() <= 0 {
		t.Errorf("Expected NumCPU fallback, got %d", e.MaxConcurrency())
	}
	testutil.AssertEqual(t, time.Duration(0), e.timeout)
}

func TestFileExecutor_AllFilesAllAnalyzers(t *testing.T) {
	files, content := fixtureFiles(20)
	a := &stubAnalyzer{id: "a"}
	b := &stubAnalyzer{id: "b"}

	report, err := newTestExecutor(4).Execute(context.Background(), files, []domain.Analyzer{a, b}, content)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 20, report.FilesAnalyzed)
	testutil.AssertEqual(t, 40, len(report.Findings))
	testutil.AssertEqual(t, 0, len(report.Failures))
	testutil.AssertEqual(t, int32(20), a.calls.Load())
}

// recordingProgress keeps the files reported done and their finding counts
type recordingProgress struct {
	NoOpTaskProgress
	mu    sync.Mutex
	total int
	done  map[string]int
}

func (r *recordingProgress) StartTask(_ string, total int) domain.TaskProgress {
	r.total = total
	r.done = map[string]int{}
	return r
}
func (r *recordingProgress) IsInteractive() bool { return true }
func (r *recordingProgress) Close()              {}

func (r *recordingProgress) FileDone(path string, findings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done[path] = findings
}

func TestFileExecutor_ReportsEachFileToProgress(t *testing.T) {
	files, content := fixtureFiles(5)
	progress := &recordingProgress{}
	e := NewFileExecutorFromConfig(&config.PerformanceConfig{MaxGoroutines: 3}, progress, quietLogger())

	a := &stubAnalyzer{id: "a", failOn: "src/F2.kt"}
	b := &stubAnalyzer{id: "b"}
	_, err := e.Execute(context.Background(), files, []domain.Analyzer{a, b}, content)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 5, progress.total)
	testutil.AssertEqual(t, 5, len(progress.done))
	for _, f := range files {
		want := 2
		if f.RelativePath == "src/F2.kt" {
			want = 1
		}
		if got, ok := progress.done[f.RelativePath]; !ok || got != want {
			t.Errorf("progress for %s = %d (reported %v), want %d", f.RelativePath, got, ok, want)
		}
	}
}

func TestFileExecutor_FailureIsolation(t *testing.T) {
	x := testutil.Descriptor("src/X.kt", domain.LayerUnknown)
	y := testutil.Descriptor("src/Y.kt", domain.LayerUnknown)
	content := mapContent{x.AbsolutePath: "", y.AbsolutePath: ""}

	a := &stubAnalyzer{id: "a", failOn: "src/X.kt"}
	b := &stubAnalyzer{id: "b"}

	report, err := newTestExecutor(2).Execute(context.Background(), []domain.FileDescriptor{x, y}, []domain.Analyzer{a, b}, content)
	testutil.AssertNoError(t, err)

	got := map[string]bool{}
	for _, f := range report.Findings {
		got[f.AnalyzerID+"@"+f.File] = true
	}
	for _, want := range []string{"b@src/X.kt", "a@src/Y.kt", "b@src/Y.kt"} {
		if !got[want] {
			t.Errorf("Expected finding %s, got %v", want, got)
		}
	}
	if got["a@src/X.kt"] {
		t.Error("failing analyzer must contribute zero findings")
	}

	if len(report.Failures) != 1 {
		t.Fatalf("Expected 1 failure, got %d", len(report.Failures))
	}
	if !domain.IsCode(report.Failures[0].Err, domain.ErrCodeAnalyzer) {
		t.Errorf("Expected analyzer error, got %v", report.Failures[0].Err)
	}
}

func TestFileExecutor_RecoversPanics(t *testing.T) {
	files, content := fixtureFiles(3)
	a := &stubAnalyzer{id: "a", panicOn: files[1].RelativePath}

	report, err := newTestExecutor(2).Execute(context.Background(), files, []domain.Analyzer{a}, content)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 2, len(report.Findings))
	testutil.AssertEqual(t, 1, len(report.Failures))
	testutil.AssertEqual(t, "a", report.Failures[0].AnalyzerID)
}

func TestFileExecutor_RecoversAppliesToPanics(t *testing.T) {
	files, content := fixtureFiles(2)
	a := &stubAnalyzer{id: "a", appliesPanicOn: files[0].RelativePath}
	b := &stubAnalyzer{id: "b"}

	report, err := newTestExecutor(2).Execute(context.Background(), files, []domain.Analyzer{a, b}, content)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 3, len(report.Findings))
	testutil.AssertEqual(t, 2, report.FilesAnalyzed)
	testutil.AssertEqual(t, 1, len(report.Failures))
	testutil.AssertEqual(t, "a", report.Failures[0].AnalyzerID)
	testutil.AssertEqual(t, files[0].RelativePath, report.Failures[0].File)
	if !domain.IsCode(report.Failures[0].Err, domain.ErrCodeAnalyzer) {
		t.Errorf("Expected analyzer error, got %v", report.Failures[0].Err)
	}
}

func TestFileExecutor_UnreadableFile(t *testing.T) {
	files, content := fixtureFiles(2)
	delete(content, files[0].AbsolutePath)
	a := &stubAnalyzer{id: "a"}

	report, err := newTestExecutor(1).Execute(context.Background(), files, []domain.Analyzer{a}, content)
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 1, len(report.Findings))
	testutil.AssertEqual(t, int32(1), a.calls.Load())
	if !domain.IsCode(report.Failures[0].Err, domain.ErrCodeReadError) {
		t.Errorf("Expected read error, got %v", report.Failures[0].Err)
	}
}

func TestFileExecutor_EmptyInputs(t *testing.T) {
	files, content := fixtureFiles(2)
	e := newTestExecutor(1)

	report, err := e.Execute(context.Background(), nil, []domain.Analyzer{&stubAnalyzer{id: "a"}}, content)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, len(report.Findings))

	report, err = e.Execute(context.Background(), files, nil, content)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, report.FilesAnalyzed)
}

func TestFileExecutor_CancelledContext(t *testing.T) {
	files, content := fixtureFiles(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestExecutor(2).Execute(ctx, files, []domain.Analyzer{&stubAnalyzer{id: "a"}}, content)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if report.FilesAnalyzed >= len(files) {
		t.Errorf("Expected a partial run, analyzed %d files", report.FilesAnalyzed)
	}
}

func TestExecutionReport_Summary(t *testing.T) {
	r := &ExecutionReport{}
	testutil.AssertEqual(t, "no failures", r.Summary())

	r.Failures = []FileError{{File: "A.kt", AnalyzerID: "naming", Err: errors.New("boom")}}
	testutil.AssertEqual(t, "1 failures:\n  1. [A.kt/naming] boom\n", r.Summary())
}
