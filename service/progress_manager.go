package service

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// IsInteractiveEnvironment reports whether stderr is a terminal outside CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("KTSCAN_NO_PROGRESS") != "" {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ProgressManagerImpl draws one progress bar per task on stderr
type ProgressManagerImpl struct {
	writer io.Writer
	mu     sync.Mutex
	tasks  []*progressbar.ProgressBar
}

// NewProgressManager returns a bar-drawing manager when enabled in an
// interactive terminal and a no-op manager otherwise
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return &ProgressManagerImpl{writer: os.Stderr}
	}
	return &NoOpProgressManager{}
}

// StartTask creates a bar counting files
func (pm *ProgressManagerImpl) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(24),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	pm.mu.Lock()
	pm.tasks = append(pm.tasks, bar)
	pm.mu.Unlock()

	return &TaskProgressImpl{bar: bar, label: description}
}

// IsInteractive always reports true
func (pm *ProgressManagerImpl) IsInteractive() bool {
	return true
}

// Close finishes any bar still running
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, bar := range pm.tasks {
		_ = bar.Finish()
	}
	pm.tasks = nil
}

// TaskProgressImpl adapts a progress bar to domain.TaskProgress. The
// underlying bar is safe for concurrent Add calls.
type TaskProgressImpl struct {
	bar      *progressbar.ProgressBar
	label    string
	findings atomic.Int64
}

// maxShownPath bounds the file path shown next to the bar
const maxShownPath = 40

// Increment advances the bar by n
func (tp *TaskProgressImpl) Increment(n int) {
	_ = tp.bar.Add(n)
}

// Describe replaces the bar label
func (tp *TaskProgressImpl) Describe(description string) {
	tp.bar.Describe(description)
}

// FileDone labels the bar with the last finished file and the findings
// seen so far, then advances it
func (tp *TaskProgressImpl) FileDone(path string, findings int) {
	total := tp.findings.Add(int64(findings))
	tp.bar.Describe(fileLabel(tp.label, path, total))
	_ = tp.bar.Add(1)
}

// fileLabel keeps the file name and as many trailing directories as fit
func fileLabel(label, path string, findings int64) string {
	shown := path
	if len(shown) > maxShownPath {
		parts := strings.Split(shown, "/")
		shown = parts[len(parts)-1]
		for i := len(parts) - 2; i >= 0; i-- {
			next := parts[i] + "/" + shown
			if len(next)+4 > maxShownPath {
				break
			}
			shown = next
		}
		shown = ".../" + shown
	}
	noun := "findings"
	if findings == 1 {
		noun = "finding"
	}
	return fmt.Sprintf("%s %s (%d %s)", label, shown, findings, noun)
}

// Complete fills the bar
func (tp *TaskProgressImpl) Complete() {
	_ = tp.bar.Finish()
}

// NoOpProgressManager is used for non-interactive runs
type NoOpProgressManager struct{}

// StartTask returns a no-op task
func (pm *NoOpProgressManager) StartTask(_ string, _ int) domain.TaskProgress {
	return &NoOpTaskProgress{}
}

// IsInteractive returns false
func (pm *NoOpProgressManager) IsInteractive() bool {
	return false
}

// Close is a no-op
func (pm *NoOpProgressManager) Close() {}

// NoOpTaskProgress discards progress updates
type NoOpTaskProgress struct{}

// Increment is a no-op
func (tp *NoOpTaskProgress) Increment(_ int) {}

// Describe is a no-op
func (tp *NoOpTaskProgress) Describe(_ string) {}

// FileDone is a no-op
func (tp *NoOpTaskProgress) FileDone(_ string, _ int) {}

// Complete is a no-op
func (tp *NoOpTaskProgress) Complete() {}
