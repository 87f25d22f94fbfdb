package ember

import (
	"fmt"
	"strings"
)

// PanicCode identifies the kind of runtime failure (spec.md §7). Values
// below 1900 are ordinary runtime errors (type mismatch, non-callable,
// division by zero, ...); the 19xx range is reserved for internal
// invariant violations, which in production are treated the same as an
// ordinary RuntimeError with a distinct, visibly-different code.
type PanicCode int

const (
	ErrTypeMismatch    PanicCode = 1001
	ErrDivideByZero    PanicCode = 1002
	ErrNotCallable     PanicCode = 1003
	ErrArityMismatch   PanicCode = 1004
	ErrNilTableKey     PanicCode = 1005
	ErrStackOverflow   PanicCode = 1006
	ErrUndefinedGlobal PanicCode = 1007
	ErrCustom          PanicCode = 1008
	ErrInternal        PanicCode = 1999
)

func (c PanicCode) String() string { return fmt.Sprintf("EMBER%d", int(c)) }

// BacktraceFrame is one entry in a RuntimeError's backtrace.
type BacktraceFrame struct {
	FuncName string
	Line     int
}

// RuntimeError is produced by the dispatch loop on a first-failure basis
// (spec.md §7): it never recovers, formats a message with the offending
// source line, appends a top-to-bottom backtrace, and hands the result to
// the host error callback.
type RuntimeError struct {
	Code      PanicCode
	Message   string
	Line      int
	Backtrace []BacktraceFrame
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Format renders the full "[line N] message\nstack trace: ..." report
// spec.md §7 describes.
func (e *RuntimeError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[line %d] %s: %s\n", e.Line, e.Code, e.Message)
	for _, f := range e.Backtrace {
		fmt.Fprintf(&sb, "[line %d] in %s\n", f.Line, f.FuncName)
	}
	return sb.String()
}

// CompileError is the error type of the front-end contract boundary.
// The front end itself is out of scope (spec.md §1); nothing in this
// package produces a CompileError, and Run never returns
// CompileErrorExit.
type CompileError struct {
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] compile error: %s", e.Line, e.Message)
}

// errorBuilder constructs RuntimeErrors with the current call stack's
// line and backtrace already attached, mirroring the teacher's
// errorBuilder/VMError split.
type errorBuilder struct {
	vm *VM
}

func (eb *errorBuilder) make(code PanicCode, msg string) *RuntimeError {
	e := &RuntimeError{Code: code, Message: msg}
	if eb.vm.frameCount > 0 {
		frame := eb.vm.currentFrame()
		e.Line = frame.Closure.Proto.Chunk.LineAt(frame.IP - 1)
	}
	e.Backtrace = make([]BacktraceFrame, eb.vm.frameCount)
	for i := eb.vm.frameCount - 1; i >= 0; i-- {
		frame := &eb.vm.Frames[i]
		line := frame.Closure.Proto.Chunk.LineAt(frame.IP - 1)
		e.Backtrace[eb.vm.frameCount-1-i] = BacktraceFrame{
			FuncName: frame.Closure.Proto.String(),
			Line:     line,
		}
	}
	return e
}

// binopError restores the original snap/vyse interpreter's phrasing:
// "Cannot use operator '<op>' on type '<type>'." naming the first
// offending operand's type (SPEC_FULL.md §4 items 1-2).
func (eb *errorBuilder) binopError(op string, v Value) *RuntimeError {
	return eb.make(ErrTypeMismatch, fmt.Sprintf("Cannot use operator '%s' on type '%s'.", op, v.TypeName()))
}

func (eb *errorBuilder) unopError(op string, v Value) *RuntimeError {
	return eb.binopError(op, v)
}

func (eb *errorBuilder) divideByZero() *RuntimeError {
	return eb.make(ErrDivideByZero, "attempt to divide by 0")
}

func (eb *errorBuilder) notCallable(v Value) *RuntimeError {
	return eb.make(ErrNotCallable, fmt.Sprintf("Attempt to call a %s value.", v.TypeName()))
}

func (eb *errorBuilder) stackOverflow() *RuntimeError {
	return eb.make(ErrStackOverflow, "stack overflow")
}

func (eb *errorBuilder) nilTableKey() *RuntimeError {
	return eb.make(ErrNilTableKey, "Table key cannot be nil")
}

func (eb *errorBuilder) undefinedGlobal(name string) *RuntimeError {
	return eb.make(ErrUndefinedGlobal, fmt.Sprintf("undefined global '%s'", name))
}

func (eb *errorBuilder) internal(msg string) *RuntimeError {
	return eb.make(ErrInternal, msg)
}

func (eb *errorBuilder) customf(format string, args ...any) *RuntimeError {
	return eb.make(ErrCustom, fmt.Sprintf(format, args...))
}

// report formats err and hands it to the host callback, per spec.md §7.
func (vm *VM) report(err *RuntimeError) {
	vm.onError(vm, err.Format())
}
