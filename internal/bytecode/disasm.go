// Package bytecode provides tooling around a compiled ember.CodeBlock
// that the VM itself never needs on its hot path: a human-readable
// disassembler and a portable on-disk encoding. Neither is part of the
// VM's own instruction decoding, which reads directly out of
// ember.Chunk (spec.md §4.1/§4.2).
package bytecode

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"github.com/ember-lang/ember/internal/ember"
)

// Disassemble renders cb's instruction stream as one line per
// instruction: offset, source line, mnemonic, and decoded operand(s),
// restoring the original snap/vyse interpreter's disassemble_instr
// debug facility as a first-class, always-available function.
func Disassemble(cb *ember.CodeBlock) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", cb.String())
	chunk := cb.Chunk
	ip := 0
	for ip < len(chunk.Code) {
		next := disassembleInstr(&sb, chunk, ip)
		ip = next
	}
	return sb.String()
}

func disassembleInstr(sb *strings.Builder, chunk *ember.Chunk, ip int) int {
	opByte, _ := chunk.ReadByte(ip)
	op := ember.OpCode(opByte)
	line := chunk.LineAt(ip)

	writeCol(sb, fmt.Sprintf("%04d", ip), 6)
	writeCol(sb, fmt.Sprintf("L%d", line), 7)
	writeCol(sb, op.String(), 20)

	switch {
	case op == ember.OpMakeFunc:
		protoIdx, _ := chunk.ReadByte(ip + 1)
		n, _ := chunk.ReadByte(ip + 2)
		fmt.Fprintf(sb, "const[%d] nupvals=%d", protoIdx, n)
		sb.WriteString("\n")
		return ip + 3 + int(n)*2

	case ember.OpIsWide(op):
		off, _ := chunk.ReadShort(ip + 1)
		fmt.Fprintf(sb, "-> %04d", wideTarget(ip, off, op))
		sb.WriteString("\n")
		return ip + 3

	case ember.OpIsNarrow(op):
		b, _ := chunk.ReadByte(ip + 1)
		idx, err := safecast.Convert[int](b)
		if err != nil {
			idx = int(b)
		}
		if op == ember.OpLoadConst || op == ember.OpTableSet || op == ember.OpTableGet || op == ember.OpTableGetNoPop {
			if idx < len(chunk.Constants) {
				fmt.Fprintf(sb, "const[%d] = %s", idx, chunk.Constants[idx].String())
			} else {
				fmt.Fprintf(sb, "const[%d]", idx)
			}
		} else {
			fmt.Fprintf(sb, "%d", idx)
		}
		sb.WriteString("\n")
		return ip + 2

	default:
		sb.WriteString("\n")
		return ip + 1
	}
}

func wideTarget(ip int, off uint16, op ember.OpCode) int {
	if op == ember.OpJmpBack {
		return ip + 3 - int(off)
	}
	return ip + 3 + int(off)
}

// writeCol writes s followed by spaces up to a display width of width
// columns, measured with go-runewidth. It is used for the offset, line
// and mnemonic columns; operands and constant previews follow unpadded.
func writeCol(sb *strings.Builder, s string, width int) {
	sb.WriteString(s)
	pad := width - runewidth.StringWidth(s)
	for i := 0; i < pad; i++ {
		sb.WriteByte(' ')
	}
}
