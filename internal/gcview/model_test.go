package gcview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ember-lang/ember/internal/ember"
)

func TestStepKindLabelCoversEveryKind(t *testing.T) {
	kinds := []ember.GCStepKind{
		ember.GCStepRootMarked,
		ember.GCStepObjectGrayed,
		ember.GCStepObjectTraced,
		ember.GCStepSweepStart,
		ember.GCStepObjectFreed,
		ember.GCStepObjectSurvived,
		ember.GCStepDone,
	}
	for _, k := range kinds {
		if got := stepKindLabel(k); got == "step" {
			t.Fatalf("stepKindLabel(%v) fell through to the default label", k)
		}
	}
}

func TestDescribeStepIncludesObjectAndDetail(t *testing.T) {
	vm := ember.New(ember.DefaultOptions())
	s := vm.Intern("x")
	step := ember.GCStep{Kind: ember.GCStepObjectFreed, Object: s, Detail: "unreachable"}
	out := describeStep(step)
	if !strings.Contains(out, "freed") || !strings.Contains(out, "unreachable") {
		t.Fatalf("describeStep(%+v) = %q, missing label or detail", step, out)
	}
}

func TestDescribeStepWithoutObjectUsesLabelOnly(t *testing.T) {
	step := ember.GCStep{Kind: ember.GCStepSweepStart}
	out := describeStep(step)
	if out != "sweep starting" {
		t.Fatalf("describeStep(%+v) = %q, want %q", step, out, "sweep starting")
	}
}

// Update must advance and retreat the cursor within [0, len(steps)] and
// never past either end, since View indexes steps[cursor-1].
func TestModelUpdateClampsCursorToStepBounds(t *testing.T) {
	vm := ember.New(ember.DefaultOptions())
	steps := []ember.GCStep{{Kind: ember.GCStepRootMarked}, {Kind: ember.GCStepDone}}
	m := newModel(vm, steps)

	for i := 0; i < 5; i++ {
		m, _ = stepModel(m, tea.KeyMsg{Type: tea.KeySpace})
	}
	if m.cursor != len(steps) {
		t.Fatalf("cursor = %d after repeated advance, want clamped to %d", m.cursor, len(steps))
	}

	for i := 0; i < 5; i++ {
		m, _ = stepModel(m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if m.cursor != 0 {
		t.Fatalf("cursor = %d after repeated retreat, want clamped to 0", m.cursor)
	}
}

func TestModelUpdateQuitSetsQuitting(t *testing.T) {
	vm := ember.New(ember.DefaultOptions())
	m := newModel(vm, nil)
	m, cmd := stepModel(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.quitting {
		t.Fatalf("quitting = false after esc, want true")
	}
	if cmd == nil {
		t.Fatalf("Update(esc) returned a nil tea.Cmd, want tea.Quit")
	}
}

func TestViewEmptyAfterQuitting(t *testing.T) {
	vm := ember.New(ember.DefaultOptions())
	m := newModel(vm, nil)
	m.quitting = true
	if got := m.View(); got != "" {
		t.Fatalf("View() after quitting = %q, want empty", got)
	}
}

func stepModel(m *model, msg tea.Msg) (*model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(*model), cmd
}
