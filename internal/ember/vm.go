package ember

import (
	"fmt"
	"os"
)

// MaxFrames bounds call-frame nesting (spec.md §4.3): exceeding it is a
// runtime error, not a host crash.
const MaxFrames = 1024

// StackMax is the fixed size of the value stack. It is never resized
// during execution, so raw pointers into it (open Upvalues, a frame's
// Base) stay stable for the lifetime of the VM (spec.md §5).
const StackMax = MaxFrames * 256

// ExitCode is the result of VM.Run.
type ExitCode int

const (
	Success ExitCode = iota
	CompileErrorExit
	RuntimeErrorExit
)

// ErrorCallback receives the fully formatted error message (with source
// line and backtrace) when execution fails. The default implementation
// prints to stderr (spec.md §6).
type ErrorCallback func(vm *VM, message string)

// Options configures VM tunables that spec.md leaves implementation-
// defined (see SPEC_FULL.md §2 "Configuration").
type Options struct {
	InitialGCLimit uint64
	GCGrowthFactor float64
	MaxFrames      int
	TableMaxLoad   float64
	Trace          bool
}

// DefaultOptions returns the tunables spec.md's prose specifies inline.
func DefaultOptions() Options {
	return Options{
		InitialGCLimit: defaultInitialGCLimit,
		GCGrowthFactor: defaultGrowthFactor,
		MaxFrames:      MaxFrames,
		TableMaxLoad:   fallbackTableMaxLoad,
	}
}

// VM is the stack-based bytecode virtual machine: the value stack, the
// call-frame stack, the open-upvalue chain, the string-intern pool, the
// global-variable table, and the heap/collector (spec.md §2, §4).
type VM struct {
	Stack   [StackMax]Value
	sp      int
	Frames  [MaxFrames]CallFrame
	frameCount int

	OpenUpvalues *Upvalue // ordered by descending stack slot (invariant 3)

	Globals *Table
	Strings *Table // string-intern pool (spec.md §4.5)

	Heap *Heap

	ReturnValue Value
	ExitCode    ExitCode

	options   Options
	onError   ErrorCallback
	nativeErr *RuntimeError

	compilerRoots []Value // hook for a front end mid-compile (spec.md §4.7 root 7)

	eb *errorBuilder
}

// New creates a VM ready to run a compiled top-level CodeBlock.
func New(opts Options) *VM {
	if opts.InitialGCLimit == 0 {
		opts.InitialGCLimit = defaultInitialGCLimit
	}
	if opts.GCGrowthFactor == 0 {
		opts.GCGrowthFactor = defaultGrowthFactor
	}
	if opts.MaxFrames == 0 {
		opts.MaxFrames = MaxFrames
	}
	if opts.TableMaxLoad == 0 {
		opts.TableMaxLoad = fallbackTableMaxLoad
	}
	vm := &VM{options: opts, onError: defaultErrorCallback}
	vm.Heap = newHeap(vm)
	vm.Heap.nextGC = opts.InitialGCLimit
	vm.Heap.growthFactor = opts.GCGrowthFactor
	vm.Globals = vm.Heap.allocTable()
	vm.Strings = vm.Heap.allocTable()
	vm.eb = &errorBuilder{vm: vm}
	return vm
}

// SetErrorCallback overrides the host error callback (spec.md §6).
func (vm *VM) SetErrorCallback(cb ErrorCallback) {
	if cb == nil {
		cb = defaultErrorCallback
	}
	vm.onError = cb
}

func defaultErrorCallback(vm *VM, message string) {
	fmt.Fprintln(os.Stderr, message) // overridden by cmd/ember with colorized stderr output
}

// RegisterNative installs a native closure under a global name, per the
// native calling convention of spec.md §6.
func (vm *VM) RegisterNative(name string, fn NativeFn) {
	nc := vm.Heap.allocNativeClosure(name, fn)
	key := vm.Intern(name)
	vm.Globals.Set(Object(key), Object(nc))
}

// Intern returns the canonical String object for s, allocating one only
// if the pool doesn't already contain an equal-content string
// (spec.md §4.5, invariant 2).
func (vm *VM) Intern(s string) *String {
	hash := hashString(s)
	if existing := vm.Strings.FindString(s, hash); existing != nil {
		return existing
	}
	str := vm.Heap.allocString(s)
	// Protect str across the intern-table Set call: growing vm.Strings
	// can itself allocate a bigger backing array (not a GC allocation in
	// this implementation, but the discipline mirrors spec.md §9's
	// protect/unprotect idiom for exactly this shape of hazard).
	defer vm.Heap.Guard(str)()
	vm.Strings.Set(Object(str), Bool(true))
	return str
}

// push and pop maintain the invariant that sp always points at the
// first free slot (invariant 5).
func (vm *VM) push(v Value) {
	vm.Stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() Value {
	vm.sp--
	return vm.Stack[vm.sp]
}

func (vm *VM) peek(depthFromTop int) Value {
	return vm.Stack[vm.sp-1-depthFromTop]
}

func (vm *VM) currentFrame() *CallFrame {
	return &vm.Frames[vm.frameCount-1]
}
