package bytecode

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ember-lang/ember/internal/ember"
)

// portableKind tags a constant-pool entry in the wire format. Only the
// value shapes that can legally appear in a Chunk's constant pool are
// representable: numbers, booleans, nil, strings, and nested CodeBlocks
// (for make_func). Closures, tables, and upvalues never appear there.
type portableKind byte

const (
	portableNil portableKind = iota
	portableBool
	portableNumber
	portableString
	portableCodeBlock
)

type portableValue struct {
	Kind   portableKind `msgpack:"k"`
	Bool   bool         `msgpack:"b,omitempty"`
	Number float64      `msgpack:"n,omitempty"`
	Str    string       `msgpack:"s,omitempty"`
	Nested *portableChunk `msgpack:"c,omitempty"`
}

type portableChunk struct {
	Name        string          `msgpack:"name"`
	NumParams   int             `msgpack:"params"`
	NumUpvalues int             `msgpack:"upvalues"`
	MaxSlots    int             `msgpack:"slots"`
	Code        []byte          `msgpack:"code"`
	Lines       []int           `msgpack:"lines"`
	Constants   []portableValue `msgpack:"constants"`
}

// MarshalPortable encodes cb (and, recursively, every nested CodeBlock
// reachable through its constant pool) as msgpack: the .embc format
// `ember demo` writes and the other ember subcommands read, for
// shipping a compiled CodeBlock between processes without re-running
// the (out-of-scope) front end.
func MarshalPortable(cb *ember.CodeBlock) ([]byte, error) {
	return msgpack.Marshal(toPortable(cb))
}

// UnmarshalPortable decodes data produced by MarshalPortable back into a
// live, heap-tracked CodeBlock owned by vm.
func UnmarshalPortable(vm *ember.VM, data []byte) (*ember.CodeBlock, error) {
	var pc portableChunk
	if err := msgpack.Unmarshal(data, &pc); err != nil {
		return nil, err
	}
	return fromPortable(vm, &pc)
}

func toPortable(cb *ember.CodeBlock) *portableChunk {
	name := ""
	if cb.Name != nil {
		name = cb.Name.Chars
	}
	pc := &portableChunk{
		Name:        name,
		NumParams:   cb.NumParams,
		NumUpvalues: cb.NumUpvalues,
		MaxSlots:    cb.MaxSlots,
		Code:        append([]byte(nil), cb.Chunk.Code...),
		Lines:       append([]int(nil), cb.Chunk.Lines...),
		Constants:   make([]portableValue, len(cb.Chunk.Constants)),
	}
	for i, v := range cb.Chunk.Constants {
		pc.Constants[i] = toPortableValue(v)
	}
	return pc
}

func toPortableValue(v ember.Value) portableValue {
	switch {
	case v.IsNil() || v.IsUndefined():
		return portableValue{Kind: portableNil}
	case v.IsBool():
		return portableValue{Kind: portableBool, Bool: v.Bool}
	case v.IsNumber():
		return portableValue{Kind: portableNumber, Number: v.Num}
	case v.IsString():
		return portableValue{Kind: portableString, Str: v.AsString().Chars}
	default:
		if nested, ok := v.Obj.(*ember.CodeBlock); ok {
			return portableValue{Kind: portableCodeBlock, Nested: toPortable(nested)}
		}
		return portableValue{Kind: portableNil}
	}
}

func fromPortable(vm *ember.VM, pc *portableChunk) (*ember.CodeBlock, error) {
	cb := vm.NewCodeBlock(pc.Name)
	cb.NumParams = pc.NumParams
	cb.NumUpvalues = pc.NumUpvalues
	cb.MaxSlots = pc.MaxSlots
	cb.Chunk.Code = append([]byte(nil), pc.Code...)
	cb.Chunk.Lines = append([]int(nil), pc.Lines...)
	cb.Chunk.Constants = make([]ember.Value, len(pc.Constants))
	for i, pv := range pc.Constants {
		v, err := fromPortableValue(vm, pv)
		if err != nil {
			return nil, err
		}
		cb.Chunk.Constants[i] = v
	}
	return cb, nil
}

func fromPortableValue(vm *ember.VM, pv portableValue) (ember.Value, error) {
	switch pv.Kind {
	case portableNil:
		return ember.Nil, nil
	case portableBool:
		return ember.Bool(pv.Bool), nil
	case portableNumber:
		return ember.Number(pv.Number), nil
	case portableString:
		return ember.Object(vm.Intern(pv.Str)), nil
	case portableCodeBlock:
		nested, err := fromPortable(vm, pv.Nested)
		if err != nil {
			return ember.Nil, err
		}
		return ember.Object(nested), nil
	default:
		return ember.Nil, fmt.Errorf("bytecode: unknown portable constant kind %d", pv.Kind)
	}
}
