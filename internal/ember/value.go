// Package ember implements the runtime core of the Ember scripting
// language: its tagged value representation, heap-object model with
// string interning, the open-addressed table, the stack-based bytecode
// virtual machine, and the tracing mark/sweep garbage collector.
package ember

import (
	"fmt"
	"math"
)

// Kind discriminates the tag of a Value.
type Kind uint8

const (
	// KindNil is the single absent value observable from user programs.
	KindNil Kind = iota
	// KindUndefined is an internal "hole" sentinel, distinct from Nil,
	// never observable from a user program (e.g. an empty table slot).
	KindUndefined
	// KindBool is a boolean.
	KindBool
	// KindNumber is an IEEE-754 double.
	KindNumber
	// KindObject is a non-nil pointer to a heap object.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is the fundamental tagged datum the VM operates on. It is a
// small value type (no heap allocation for Nil/Bool/Number) so it can be
// pushed and popped off the value stack cheaply.
type Value struct {
	Kind Kind
	Num  float64
	Bool bool
	Obj  Obj
}

// Nil is the shared Nil value.
var Nil = Value{Kind: KindNil}

// Undefined is the shared internal hole sentinel.
var Undefined = Value{Kind: KindUndefined}

// Number constructs a Number value.
func Number(n float64) Value {
	return Value{Kind: KindNumber, Num: n}
}

// Bool constructs a Bool value.
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Object constructs an Object value wrapping a heap object. o must not be
// nil; callers that don't yet have a live object should use Nil instead.
func Object(o Obj) Value {
	if o == nil {
		return Nil
	}
	return Value{Kind: KindObject, Obj: o}
}

// IsNil reports whether v is the Nil value.
func (v Value) IsNil() bool { return v.Kind == KindNil }

// IsUndefined reports whether v is the internal hole sentinel.
func (v Value) IsUndefined() bool { return v.Kind == KindUndefined }

// IsNumber reports whether v holds a Number.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// IsBool reports whether v holds a Bool.
func (v Value) IsBool() bool { return v.Kind == KindBool }

// IsObject reports whether v holds a heap-object pointer.
func (v Value) IsObject() bool { return v.Kind == KindObject }

// IsString reports whether v holds a String object.
func (v Value) IsString() bool {
	if v.Kind != KindObject {
		return false
	}
	_, ok := v.Obj.(*String)
	return ok
}

// AsString returns the backing *String, or nil if v is not a string.
func (v Value) AsString() *String {
	if v.Kind != KindObject {
		return nil
	}
	s, _ := v.Obj.(*String)
	return s
}

// Truthy implements the language's truthiness law: Nil and false are
// falsy; everything else (including 0 and the empty string) is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindNil, KindUndefined:
		return false
	case KindBool:
		return v.Bool
	default:
		return true
	}
}

// TypeName returns the canonical, user-facing type name used in runtime
// error messages ("Cannot use operator '+' on type 'string'."), restoring
// the phrasing of the original snap/vyse interpreter's Value::type_name.
func (v Value) TypeName() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindObject:
		if v.Obj == nil {
			return "nil"
		}
		return v.Obj.ObjHeader().Kind.String()
	default:
		return "unknown"
	}
}

// Equal implements Value equality (spec.md §3): different tags are
// unequal except that NaN is unequal to itself; Number/Bool/Nil/Undefined
// compare by content; Object compares by identity, except String, which
// is interned so identity and content equality coincide.
func (a Value) Equal(b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNil, KindUndefined:
		return true
	case KindBool:
		return a.Bool == b.Bool
	case KindNumber:
		if math.IsNaN(a.Num) || math.IsNaN(b.Num) {
			return false
		}
		return a.Num == b.Num
	case KindObject:
		return a.Obj == b.Obj
	default:
		return false
	}
}

// String renders a Value for diagnostics and the `print` native.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "nil"
	case KindUndefined:
		return "<undefined>"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return formatNumber(v.Num)
	case KindObject:
		if v.Obj == nil {
			return "nil"
		}
		return v.Obj.String()
	default:
		return "<invalid>"
	}
}

func formatNumber(n float64) string {
	if math.IsNaN(n) {
		return "nan"
	}
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return fmt.Sprintf("%d", int64(n))
	}
	return fmt.Sprintf("%g", n)
}
