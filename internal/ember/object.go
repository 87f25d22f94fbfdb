package ember

import "fmt"

// ObjKind identifies the kind of a heap object.
type ObjKind uint8

const (
	ObjKindString ObjKind = iota
	ObjKindCodeBlock
	ObjKindClosure
	ObjKindNativeClosure
	ObjKindUpvalue
	ObjKindTable
)

func (k ObjKind) String() string {
	switch k {
	case ObjKindString:
		return "string"
	case ObjKindCodeBlock:
		return "function"
	case ObjKindClosure:
		return "function"
	case ObjKindNativeClosure:
		return "function"
	case ObjKindUpvalue:
		return "upvalue"
	case ObjKindTable:
		return "table"
	default:
		return fmt.Sprintf("ObjKind(%d)", uint8(k))
	}
}

// Header is the common heap-object header embedded by every object kind:
// its immutable kind tag, the GC reachability bit, and the intrusive
// pointer into the VM's all-objects list (invariant 1 of spec.md §3).
type Header struct {
	Kind   ObjKind
	Marked bool
	Next   Obj
	// hashSeed stands in for "the object's address hashed" (spec.md
	// §4.6) since Go objects have no stable numeric address a hash map
	// may use; it is assigned once, at allocation, from a monotonic
	// counter mixed the same way a pointer would be.
	hashSeed uint32
}

// ObjHeader returns h itself so embedding types satisfy Obj without
// boilerplate accessors.
func (h *Header) ObjHeader() *Header { return h }

// Obj is implemented by every heap object kind (String, CodeBlock,
// Closure, NativeClosure, Upvalue, Table).
type Obj interface {
	// ObjHeader returns the object's common header.
	ObjHeader() *Header
	// Size reports the object's approximate footprint in bytes, used to
	// drive the GC's bytes_allocated accounting.
	Size() int
	// Trace calls mark for every Value/Obj this object references,
	// implementing the per-kind reference sets of spec.md §4.7.
	Trace(mark func(Value))
	// String renders the object for diagnostics.
	String() string
}

// String is an immutable, interned byte sequence with a precomputed
// content hash (spec.md §3, §4.5).
type String struct {
	Header
	Chars string
	Hash  uint32
}

func newString(s string) *String {
	return &String{Header: Header{Kind: ObjKindString}, Chars: s, Hash: hashString(s)}
}

// hashString computes the FNV-1a hash of s, matching the original
// snap/vyse interpreter's precomputed-hash strategy for interned strings.
func hashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (s *String) Size() int              { return 24 + len(s.Chars) }
func (s *String) Trace(mark func(Value)) {}
func (s *String) String() string         { return s.Chars }
