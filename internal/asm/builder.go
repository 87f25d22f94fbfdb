// Package asm is a small, programmatic bytecode assembler standing in
// for Ember's front end (parser/compiler), which is explicitly out of
// scope (spec.md §1). It lets tests and the CLI's demo programs build a
// *ember.CodeBlock directly, instruction by instruction, instead of
// parsing source text.
package asm

import "github.com/ember-lang/ember/internal/ember"

// Builder accumulates instructions into a single CodeBlock. Every
// method returns the Builder so calls can be chained.
type Builder struct {
	vm *ember.VM
	cb *ember.CodeBlock
}

// New starts building a CodeBlock named name (pass "" for a top-level
// script), with the given parameter count, upvalue count, and maximum
// stack slots the compiled body will use.
func New(vm *ember.VM, name string, numParams, numUpvalues, maxSlots int) *Builder {
	cb := vm.NewCodeBlock(name)
	cb.NumParams = numParams
	cb.NumUpvalues = numUpvalues
	cb.MaxSlots = maxSlots
	return &Builder{vm: vm, cb: cb}
}

// Op appends a bare opcode (one with no inline operand).
func (b *Builder) Op(op ember.OpCode, line int) *Builder {
	b.cb.Chunk.WriteOp(op, line)
	return b
}

// OpByte appends an opcode followed by a 1-byte operand.
func (b *Builder) OpByte(op ember.OpCode, operand byte, line int) *Builder {
	b.cb.Chunk.WriteOp(op, line)
	b.cb.Chunk.Write(operand, line)
	return b
}

// Const interns v into the constant pool and returns its index, for use
// with OpByte(ember.OpLoadConst, idx, line) and similar.
func (b *Builder) Const(v ember.Value) byte {
	idx, err := b.cb.Chunk.AddConstant(v)
	if err != nil {
		panic(err)
	}
	return idx
}

// ConstString interns s and adds the resulting String as a constant,
// returning its index.
func (b *Builder) ConstString(s string) byte {
	return b.Const(ember.Object(b.vm.Intern(s)))
}

// Here returns the offset of the next byte to be written, for
// recording jump targets.
func (b *Builder) Here() int {
	return len(b.cb.Chunk.Code)
}

// EmitJump appends op (one of the forward-jump opcodes) with a
// placeholder 2-byte offset and returns the offset of that placeholder,
// to be resolved later with PatchJumpHere.
func (b *Builder) EmitJump(op ember.OpCode, line int) int {
	b.cb.Chunk.WriteOp(op, line)
	pos := b.Here()
	b.cb.Chunk.WriteShort(0, line)
	return pos
}

// PatchJumpHere resolves a forward jump emitted at pos to land at the
// current end of the instruction stream (spec.md's "forward-relative,
// measured from the byte after the operand").
func (b *Builder) PatchJumpHere(pos int) {
	target := b.Here()
	offset := target - (pos + 2)
	b.cb.Chunk.PatchShort(pos, uint16(offset))
}

// EmitLoopBack appends a jmp_back targeting loopStart, computing the
// backward offset from the current position.
func (b *Builder) EmitLoopBack(loopStart int, line int) *Builder {
	b.cb.Chunk.WriteOp(ember.OpJmpBack, line)
	pos := b.Here()
	b.cb.Chunk.WriteShort(0, line)
	offset := (pos + 2) - loopStart
	b.cb.Chunk.PatchShort(pos, uint16(offset))
	return b
}

// MakeFuncCapture describes one upvalue a make_func instruction should
// capture, by slot (if Local) or by the enclosing closure's own
// upvalue index (if !Local).
type MakeFuncCapture struct {
	Local bool
	Index byte
}

// EmitMakeFunc appends a make_func instruction wrapping the constant
// pool entry at protoIdx (itself produced by a nested Builder's Build,
// added via Const) with the given capture list.
func (b *Builder) EmitMakeFunc(protoIdx byte, captures []MakeFuncCapture, line int) *Builder {
	b.cb.Chunk.WriteOp(ember.OpMakeFunc, line)
	b.cb.Chunk.Write(protoIdx, line)
	b.cb.Chunk.Write(byte(len(captures)), line)
	for _, c := range captures {
		if c.Local {
			b.cb.Chunk.Write(1, line)
		} else {
			b.cb.Chunk.Write(0, line)
		}
		b.cb.Chunk.Write(c.Index, line)
	}
	return b
}

// Build returns the finished CodeBlock.
func (b *Builder) Build() *ember.CodeBlock {
	return b.cb
}
