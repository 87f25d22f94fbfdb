package ember

import (
	"math"
	"strings"
)

// execArith implements add/sub/mult/div/mod (spec.md §4.2). Both
// operands must be numbers; string concatenation is OpConcat's job
// (execConcat), not add's.
func (vm *VM) execArith(op OpCode) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() {
		return vm.eb.binopError(opSymbol(op), a)
	}
	if !b.IsNumber() {
		return vm.eb.binopError(opSymbol(op), b)
	}
	switch op {
	case OpAdd:
		vm.push(Number(a.Num + b.Num))
	case OpSub:
		vm.push(Number(a.Num - b.Num))
	case OpMult:
		vm.push(Number(a.Num * b.Num))
	case OpDiv:
		if b.Num == 0 {
			return vm.eb.divideByZero()
		}
		vm.push(Number(a.Num / b.Num))
	case OpMod:
		vm.push(Number(math.Mod(a.Num, b.Num)))
	}
	return nil
}

// execBitwise implements lshift/rshift/band/bor on truncated 64-bit
// signed integer views of the two number operands (truncInt64); the
// result is converted back to a float64 Number.
func (vm *VM) execBitwise(op OpCode) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() {
		return vm.eb.binopError(opSymbol(op), a)
	}
	if !b.IsNumber() {
		return vm.eb.binopError(opSymbol(op), b)
	}
	ai, bi := truncInt64(a.Num), truncInt64(b.Num)
	var r int64
	switch op {
	case OpLShift:
		r = ai << uint(bi&63)
	case OpRShift:
		r = ai >> uint(bi&63)
	case OpBAnd:
		r = ai & bi
	case OpBOr:
		r = ai | bi
	}
	vm.push(Number(float64(r)))
	return nil
}

// execCompare implements gt/lt/gte/lte, numeric only; spec.md does not
// define an ordering over any other type.
func (vm *VM) execCompare(op OpCode) *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsNumber() {
		return vm.eb.binopError(opSymbol(op), a)
	}
	if !b.IsNumber() {
		return vm.eb.binopError(opSymbol(op), b)
	}
	var r bool
	switch op {
	case OpGt:
		r = a.Num > b.Num
	case OpLt:
		r = a.Num < b.Num
	case OpGte:
		r = a.Num >= b.Num
	case OpLte:
		r = a.Num <= b.Num
	}
	vm.push(Bool(r))
	return nil
}

// execConcat implements string concatenation (spec.md §4.2): both
// operands must already be strings; there is no implicit number-to-
// string coercion in this operator (that is the front end's job, out of
// scope here).
func (vm *VM) execConcat() *RuntimeError {
	b := vm.pop()
	a := vm.pop()
	if !a.IsString() {
		return vm.eb.binopError("..", a)
	}
	if !b.IsString() {
		return vm.eb.binopError("..", b)
	}
	var sb strings.Builder
	sb.WriteString(a.AsString().Chars)
	sb.WriteString(b.AsString().Chars)
	vm.push(Object(vm.Intern(sb.String())))
	return nil
}

func opSymbol(op OpCode) string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMult:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpLShift:
		return "<<"
	case OpRShift:
		return ">>"
	case OpBAnd:
		return "&"
	case OpBOr:
		return "|"
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	default:
		return op.String()
	}
}
