package emberrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ember-lang/ember/internal/asm"
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
	"github.com/ember-lang/ember/internal/emberrun"
)

func writeProgram(t *testing.T, dir, name string, build func(vm *ember.VM) *ember.CodeBlock) string {
	t.Helper()
	vm := ember.New(ember.DefaultOptions())
	cb := build(vm)
	data, err := bytecode.MarshalPortable(cb)
	if err != nil {
		t.Fatalf("MarshalPortable: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func buildReturns(n float64) func(vm *ember.VM) *ember.CodeBlock {
	return func(vm *ember.VM) *ember.CodeBlock {
		b := asm.New(vm, "", 0, 0, 1)
		idx := b.Const(ember.Number(n))
		b.OpByte(ember.OpLoadConst, idx, 1)
		b.Op(ember.OpReturnVal, 1)
		return b.Build()
	}
}

func buildDivideByZero() func(vm *ember.VM) *ember.CodeBlock {
	return func(vm *ember.VM) *ember.CodeBlock {
		b := asm.New(vm, "", 0, 0, 2)
		one := b.Const(ember.Number(1))
		zero := b.Const(ember.Number(0))
		b.OpByte(ember.OpLoadConst, one, 1)
		b.OpByte(ember.OpLoadConst, zero, 1)
		b.Op(ember.OpDiv, 1)
		b.Op(ember.OpReturnVal, 1)
		return b.Build()
	}
}

func TestRunFilesRunsEachOnItsOwnVM(t *testing.T) {
	dir := t.TempDir()
	a := writeProgram(t, dir, "a.embc", buildReturns(1))
	b := writeProgram(t, dir, "b.embc", buildReturns(2))

	results, err := emberrun.RunFiles(context.Background(), []string{a, b}, 2, ember.DefaultOptions)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Path != a || results[1].Path != b {
		t.Fatalf("results out of order: %+v", results)
	}
	if results[0].ExitCode != ember.Success || !results[0].ReturnValue.Equal(ember.Number(1)) {
		t.Fatalf("results[0] = %+v, want Success/1", results[0])
	}
	if results[1].ExitCode != ember.Success || !results[1].ReturnValue.Equal(ember.Number(2)) {
		t.Fatalf("results[1] = %+v, want Success/2", results[1])
	}
}

func TestRunFilesReportsRuntimeErrorsWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	ok := writeProgram(t, dir, "ok.embc", buildReturns(42))
	bad := writeProgram(t, dir, "bad.embc", buildDivideByZero())

	results, err := emberrun.RunFiles(context.Background(), []string{bad, ok}, 1, ember.DefaultOptions)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if results[0].ExitCode == ember.Success {
		t.Fatalf("results[0] (divide by zero) reported Success")
	}
	if results[1].ExitCode != ember.Success || !results[1].ReturnValue.Equal(ember.Number(42)) {
		t.Fatalf("results[1] = %+v, want Success/42", results[1])
	}
}

func TestRunFilesReportsDecodeErrorsPerFile(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.embc")
	if err := os.WriteFile(bogus, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	results, err := emberrun.RunFiles(context.Background(), []string{bogus}, 1, ember.DefaultOptions)
	if err != nil {
		t.Fatalf("RunFiles: %v", err)
	}
	if results[0].Err == nil {
		t.Fatalf("expected a decode error for a non-msgpack file")
	}
}

func TestSummarizeSortsByPathAndReportsOutcome(t *testing.T) {
	results := []emberrun.Result{
		{Path: "b.embc", ExitCode: ember.Success, ReturnValue: ember.Number(2)},
		{Path: "a.embc", Err: errBoom},
	}
	out := emberrun.Summarize(results)

	if idxA, idxB := strings.Index(out, "a.embc"), strings.Index(out, "b.embc"); idxA < 0 || idxB < 0 || idxA > idxB {
		t.Fatalf("Summarize did not sort by path:\n%s", out)
	}
	if !strings.Contains(out, "FAIL") || !strings.Contains(out, "a.embc") {
		t.Fatalf("Summarize missing FAIL line for a.embc:\n%s", out)
	}
	if !strings.Contains(out, "PASS") || !strings.Contains(out, "b.embc") {
		t.Fatalf("Summarize missing PASS line for b.embc:\n%s", out)
	}
}

var errBoom = errors.New("boom")
