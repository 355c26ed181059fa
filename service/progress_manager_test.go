package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ludo-technologies/ktscan/domain"
)

func TestNewProgressManager_Disabled(t *testing.T) {
	pm := NewProgressManager(false)
	if pm.IsInteractive() {
		t.Error("expected non-interactive progress manager when disabled")
	}
	var _ domain.ProgressManager = pm
}

func TestNewProgressManager_CI(t *testing.T) {
	t.Setenv("CI", "true")
	if IsInteractiveEnvironment() {
		t.Error("CI environments must not draw progress bars")
	}
	if NewProgressManager(true).IsInteractive() {
		t.Error("expected no-op manager under CI")
	}
}

func TestNoOpProgressManager(t *testing.T) {
	pm := &NoOpProgressManager{}

	task := pm.StartTask("Analyzing", 100)
	if task == nil {
		t.Fatal("expected non-nil task from StartTask")
	}
	task.Increment(10)
	task.Describe("still analyzing")
	task.Complete()
	pm.Close()
}

func TestProgressManagerImplDrawsToWriter(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf}

	task := pm.StartTask("Analyzing files", 3)
	task.Increment(1)
	task.Increment(2)
	task.Complete()
	pm.Close()

	if !pm.IsInteractive() {
		t.Error("ProgressManagerImpl must report interactive")
	}
	if buf.Len() == 0 {
		t.Error("expected the bar to write to its writer")
	}
	var _ domain.TaskProgress = task
}

func TestTaskProgressImplFileDone(t *testing.T) {
	var buf bytes.Buffer
	pm := &ProgressManagerImpl{writer: &buf}

	task := pm.StartTask("Analyzing", 2)
	task.FileDone("app/src/main/kotlin/Foo.kt", 2)
	task.FileDone("app/src/main/kotlin/Bar.kt", 1)

	out := buf.String()
	if !strings.Contains(out, "Analyzing app/src/main/kotlin/Bar.kt (3 findings)") {
		t.Errorf("bar should name the last file and the running total, got %q", out)
	}
	pm.Close()
}

func TestFileLabel(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		findings int64
		want     string
	}{
		{"short path", "src/Foo.kt", 0, "Analyzing src/Foo.kt (0 findings)"},
		{"singular", "src/Foo.kt", 1, "Analyzing src/Foo.kt (1 finding)"},
		{
			"long path keeps trailing directories",
			"feature/meals/src/main/kotlin/com/example/meals/ui/MealListScreen.kt", 4,
			"Analyzing .../example/meals/ui/MealListScreen.kt (4 findings)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fileLabel("Analyzing", tt.path, tt.findings); got != tt.want {
				t.Errorf("fileLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
