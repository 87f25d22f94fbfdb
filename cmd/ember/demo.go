package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ember-lang/ember/internal/asm"
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/ember"
)

// demoCmd builds one of a few canned programs with internal/asm and
// writes it as a .embc file, since Ember's front end is out of scope
// (spec.md §1) and the CLI otherwise has no way to produce bytecode to
// run/disasm/gcview against.
var demoCmd = &cobra.Command{
	Use:   "demo <arithmetic|counter> <out.embc>",
	Short: "Emit a canned demo program built with internal/asm",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vm := ember.New(ember.DefaultOptions())

		var proto *ember.CodeBlock
		switch args[0] {
		case "arithmetic":
			proto = buildArithmeticDemo(vm)
		case "counter":
			proto = buildCounterDemo(vm)
		default:
			return fmt.Errorf("demo: unknown program %q", args[0])
		}

		data, err := bytecode.MarshalPortable(proto)
		if err != nil {
			return fmt.Errorf("demo: %w", err)
		}
		return os.WriteFile(args[1], data, 0o644)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// buildArithmeticDemo computes (4 + 2) * 3 and returns it, exercising
// load_const/add/mult/return_val.
func buildArithmeticDemo(vm *ember.VM) *ember.CodeBlock {
	b := asm.New(vm, "", 0, 0, 4)
	four := b.Const(ember.Number(4))
	two := b.Const(ember.Number(2))
	three := b.Const(ember.Number(3))
	b.OpByte(ember.OpLoadConst, four, 1)
	b.OpByte(ember.OpLoadConst, two, 1)
	b.Op(ember.OpAdd, 1)
	b.OpByte(ember.OpLoadConst, three, 1)
	b.Op(ember.OpMult, 1)
	b.Op(ember.OpReturnVal, 1)
	return b.Build()
}

// buildCounterDemo builds a make_counter-style closure, calls the
// counter it returns three times, and returns the final count —
// spec.md §8's S4 scenario (a single upvalue over n, final value 3),
// assembled by hand since there is no compiler to lower source into
// this shape.
func buildCounterDemo(vm *ember.VM) *ember.CodeBlock {
	// counter_step(): slot 0 is the callee itself (invariant 6); the
	// captured n lives at upvalue index 0.
	//   get_upval 0; load_const 1; add; set_upval 0; return_val
	inner := asm.New(vm, "counter_step", 0, 1, 1)
	one := inner.Const(ember.Number(1))
	inner.OpByte(ember.OpGetUpval, 0, 2)
	inner.OpByte(ember.OpLoadConst, one, 2)
	inner.Op(ember.OpAdd, 2)
	inner.OpByte(ember.OpSetUpval, 0, 2)
	inner.Op(ember.OpReturnVal, 2)
	innerProto := inner.Build()

	// make_counter(): declaring local n just means leaving its initial
	// value sitting on the stack at slot 1 (frame.Base+1) — the standard
	// locals-live-on-the-stack convention, so no set_var is needed for a
	// first declaration, only for a later reassignment.
	//   load_const 0; make_func <inner, capture local 1>; return_val
	outer := asm.New(vm, "make_counter", 0, 0, 2)
	zero := outer.Const(ember.Number(0))
	innerIdx := outer.Const(ember.Object(innerProto))
	outer.OpByte(ember.OpLoadConst, zero, 1)
	outer.EmitMakeFunc(innerIdx, []asm.MakeFuncCapture{{Local: true, Index: 1}}, 1)
	outer.Op(ember.OpReturnVal, 1)
	outerProto := outer.Build()

	// Top level: calling make_counter() leaves its result (c) sitting at
	// slot 1 the same way, so c needs no set_var either — only get_var to
	// duplicate it onto the stack before each call, since call_func
	// consumes the callee position in place.
	top := asm.New(vm, "", 0, 0, 3)
	outerIdx := top.Const(ember.Object(outerProto))
	top.EmitMakeFunc(outerIdx, nil, 1)
	top.OpByte(ember.OpCallFunc, 0, 1)

	for i := 0; i < 2; i++ {
		top.OpByte(ember.OpGetVar, 1, 2)
		top.OpByte(ember.OpCallFunc, 0, 2)
		top.Op(ember.OpPop, 2)
	}
	top.OpByte(ember.OpGetVar, 1, 3)
	top.OpByte(ember.OpCallFunc, 0, 3)
	top.Op(ember.OpReturnVal, 3)
	return top.Build()
}
