// Package emberrun implements `ember test`'s batch mode: running many
// independently-compiled bytecode files concurrently, one fresh VM per
// file. Each VM instance is itself strictly single-threaded (spec.md's
// Non-goal ruling out multi-threaded execution of a single VM); the
// concurrency here is across VMs, at the OS-thread level, the same way
// the teacher's driver.TokenizeDir/ParseDir fan out one goroutine per
// input file.
package emberrun

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
)

// Result is one file's outcome.
type Result struct {
	Path        string
	ExitCode    ember.ExitCode
	Err         error
	ReturnValue ember.Value
}

// RunFiles loads and runs each of paths (each a msgpack-encoded
// CodeBlock as written by bytecode.MarshalPortable, e.g. via `ember demo`)
// on its own VM, up to jobs at a time. Results are returned in the same
// order as paths, regardless of completion order.
func RunFiles(ctx context.Context, paths []string, jobs int, newOptions func() ember.Options) ([]Result, error) {
	if jobs <= 0 {
		jobs = len(paths)
	}
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = runOne(path, newOptions())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runOne(path string, opts ember.Options) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("emberrun: read %s: %w", path, err)}
	}

	vm := ember.New(opts)
	vm.SetErrorCallback(func(_ *ember.VM, message string) {
		fmt.Fprintln(os.Stderr, message)
	})

	proto, err := bytecode.UnmarshalPortable(vm, data)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("emberrun: decode %s: %w", path, err)}
	}

	exit := vm.Run(proto)
	return Result{Path: path, ExitCode: exit, ReturnValue: vm.ReturnValue}
}

// Summarize renders a one-line-per-file report sorted by path, for the
// CLI's stdout.
func Summarize(results []Result) string {
	sorted := append([]Result(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	out := ""
	for _, r := range sorted {
		switch {
		case r.Err != nil:
			out += fmt.Sprintf("FAIL  %s  %v\n", r.Path, r.Err)
		case r.ExitCode == ember.Success:
			out += fmt.Sprintf("PASS  %s  -> %s\n", r.Path, r.ReturnValue.String())
		default:
			out += fmt.Sprintf("FAIL  %s  runtime error\n", r.Path)
		}
	}
	return out
}
