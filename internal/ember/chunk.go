package ember

import "fortio.org/safecast"

// Chunk is a Block (spec.md §4.1): a linear stream of opcodes and inline
// operands, a constant pool, and a parallel line-number side table used
// only for diagnostics. It is produced by the front end and never
// mutated once handed to the VM.
type Chunk struct {
	Code      []byte
	Constants []Value
	Lines     []int
}

// Write appends a single opcode/operand byte, recording its source line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// WriteShort appends a 2-byte big-endian operand.
func (c *Chunk) WriteShort(v uint16, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// AddConstant interns v into the constant pool and returns its index.
// The pool is not deduplicated across calls; callers that want sharing
// (e.g. the assembler) should track indices themselves.
func (c *Chunk) AddConstant(v Value) (byte, error) {
	idx := len(c.Constants)
	b, err := safecast.Convert[byte](idx)
	if err != nil {
		return 0, err
	}
	c.Constants = append(c.Constants, v)
	return b, nil
}

// PatchShort overwrites the 2-byte operand at offset with v, used by the
// assembler to back-patch forward jump targets once they're known.
func (c *Chunk) PatchShort(offset int, v uint16) {
	c.Code[offset] = byte(v >> 8)
	c.Code[offset+1] = byte(v)
}

// ReadByte returns the byte at ip, and true if ip is in range.
func (c *Chunk) ReadByte(ip int) (byte, bool) {
	if ip < 0 || ip >= len(c.Code) {
		return 0, false
	}
	return c.Code[ip], true
}

// ReadShort decodes the 2-byte big-endian operand starting at ip.
func (c *Chunk) ReadShort(ip int) (uint16, bool) {
	if ip < 0 || ip+1 >= len(c.Code) {
		return 0, false
	}
	return uint16(c.Code[ip])<<8 | uint16(c.Code[ip+1]), true
}

// LineAt returns the source line recorded for the byte at ip, or 0 if
// out of range.
func (c *Chunk) LineAt(ip int) int {
	if ip < 0 || ip >= len(c.Lines) {
		return 0
	}
	return c.Lines[ip]
}

// CodeBlock is a compiled function prototype (spec.md's "CodeBlock" /
// the original snap/vyse interpreter's "Prototype"): a name, arity,
// upvalue count, maximum stack size, and its Chunk. Immutable once
// produced by the front end.
type CodeBlock struct {
	Header
	Name        *String
	NumParams   int
	NumUpvalues int
	MaxSlots    int
	Chunk       *Chunk
}

func newCodeBlock(name *String) *CodeBlock {
	return &CodeBlock{
		Header: Header{Kind: ObjKindCodeBlock},
		Name:   name,
		Chunk:  &Chunk{},
	}
}

func (p *CodeBlock) Size() int {
	return 64 + len(p.Chunk.Code) + len(p.Chunk.Constants)*32
}

func (p *CodeBlock) Trace(mark func(Value)) {
	if p.Name != nil {
		mark(Object(p.Name))
	}
	for _, k := range p.Chunk.Constants {
		mark(k)
	}
}

func (p *CodeBlock) String() string {
	if p.Name == nil || p.Name.Chars == "" {
		return "<script>"
	}
	return "<fn " + p.Name.Chars + ">"
}
