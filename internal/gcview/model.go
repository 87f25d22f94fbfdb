// Package gcview is an interactive terminal visualizer for one Ember
// garbage-collection cycle: it drives a real ember.VM's
// CollectGarbageTraced instrumentation and lets the user step through
// the mark and sweep phases one event at a time. The cycle is recorded
// in full before the viewer starts, so the live object count and byte
// accounting it shows are the heap's state after the cycle and do not
// change as the user steps.
//
// The step-through-a-generated-sequence design is adapted from
// mknyszek/greentea-visuals' MarkSweep.Evolve iterator; the Bubble Tea
// Model/Update/View wiring and status-line styling are adapted from the
// teacher's internal/ui progress model.
package gcview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ember-lang/ember/internal/ember"
)

// Run records one traced collection cycle on vm and blocks, running an
// interactive terminal program that steps through it. It returns once
// the user quits.
func Run(vm *ember.VM) error {
	var steps []ember.GCStep
	vm.CollectGarbageTraced(func(s ember.GCStep) {
		steps = append(steps, s)
	})
	p := tea.NewProgram(newModel(vm, steps))
	_, err := p.Run()
	return err
}

type model struct {
	vm       *ember.VM
	steps    []ember.GCStep
	cursor   int
	bar      progress.Model
	printer  *message.Printer
	quitting bool
}

func newModel(vm *ember.VM, steps []ember.GCStep) *model {
	return &model{
		vm:      vm,
		steps:   steps,
		bar:     progress.New(progress.WithDefaultGradient()),
		printer: message.NewPrinter(language.English),
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case " ", "n", "right", "j":
			if m.cursor < len(m.steps) {
				m.cursor++
			}
		case "b", "left", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.cursor = 0
		case "G":
			m.cursor = len(m.steps)
		}
	case tea.WindowSizeMsg:
		m.bar.Width = msg.Width - 4
	}
	return m, nil
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	var b strings.Builder
	b.WriteString(title.Render("ember gc step viewer"))
	b.WriteString("\n\n")

	frac := 0.0
	if len(m.steps) > 0 {
		frac = float64(m.cursor) / float64(len(m.steps))
	}
	b.WriteString(m.bar.ViewAs(frac))
	b.WriteString("\n\n")

	if m.cursor == 0 {
		b.WriteString("cycle not yet started — press space to advance\n")
	} else {
		step := m.steps[m.cursor-1]
		b.WriteString(fmt.Sprintf("step %s\n", m.printer.Sprintf("%d/%d", m.cursor, len(m.steps))))
		b.WriteString(describeStep(step))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.printer.Sprintf("live objects: %d   bytes allocated: %d   next gc: %d\n",
		m.vm.Heap.LiveObjects(), m.vm.Heap.BytesAllocated(), m.vm.Heap.NextGC()))
	b.WriteString("\nspace/n: step   b: back   g/G: start/end   q: quit\n")
	return b.String()
}

func describeStep(s ember.GCStep) string {
	label := stepKindLabel(s.Kind)
	if s.Object == nil {
		if s.Detail != "" {
			return fmt.Sprintf("%s (%s)", label, s.Detail)
		}
		return label
	}
	if s.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", label, s.Object.String(), s.Detail)
	}
	return fmt.Sprintf("%s: %s", label, s.Object.String())
}

func stepKindLabel(k ember.GCStepKind) string {
	switch k {
	case ember.GCStepRootMarked:
		return "marked root"
	case ember.GCStepObjectGrayed:
		return "grayed"
	case ember.GCStepObjectTraced:
		return "tracing"
	case ember.GCStepSweepStart:
		return "sweep starting"
	case ember.GCStepObjectFreed:
		return "freed"
	case ember.GCStepObjectSurvived:
		return "survived sweep"
	case ember.GCStepDone:
		return "cycle complete"
	default:
		return "step"
	}
}
