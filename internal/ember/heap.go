package ember

// Heap owns every live object's node in the VM's intrusive all-objects
// list (invariant 1, spec.md §3), the allocation-volume accounting that
// drives the collector, and the extra-roots protect-set (spec.md §4.7).
type Heap struct {
	vm             *VM
	objects        Obj // head of the intrusive all-objects list
	bytesAllocated uint64
	nextGC         uint64
	growthFactor   float64

	extraRoots []Obj // protect-set stack; may hold duplicates
	nextHash   uint32

	cycles int // number of completed GC cycles, exposed for diagnostics
}

const defaultInitialGCLimit = 1024 * 1024 // 1 MiB, per spec.md §4.7
const defaultGrowthFactor = 2.0

func newHeap(vm *VM) *Heap {
	return &Heap{
		vm:           vm,
		nextGC:       defaultInitialGCLimit,
		growthFactor: defaultGrowthFactor,
	}
}

// BytesAllocated returns the current live-allocation byte count.
func (h *Heap) BytesAllocated() uint64 { return h.bytesAllocated }

// NextGC returns the threshold at which the next cycle will trigger.
func (h *Heap) NextGC() uint64 { return h.nextGC }

// Cycles returns the number of completed GC cycles.
func (h *Heap) Cycles() int { return h.cycles }

// alloc accounts o's size, possibly triggers a collection (before o is
// linked into the objects list, so this cycle can never sweep o itself),
// links o at the head of the all-objects list, and stamps its hash seed.
func (h *Heap) alloc(o Obj, size int) {
	h.bytesAllocated += uint64(size)
	if h.bytesAllocated >= h.nextGC {
		h.vm.collectGarbage()
	}
	hdr := o.ObjHeader()
	hdr.Next = h.objects
	h.objects = o
	h.nextHash = h.nextHash*2654435761 + 1
	hdr.hashSeed = h.nextHash
}

func (h *Heap) allocString(s string) *String {
	obj := newString(s)
	h.alloc(obj, obj.Size())
	return obj
}

func (h *Heap) allocCodeBlock(name *String) *CodeBlock {
	obj := newCodeBlock(name)
	h.alloc(obj, obj.Size())
	return obj
}

// NewCodeBlock allocates an empty CodeBlock through the same GC-tracked
// path the (out-of-scope) front end would use, for a front-end stand-in
// like internal/asm to fill in via CodeBlock's exported fields before
// handing it to VM.Run or embedding it in an enclosing Chunk's constant
// pool.
func (vm *VM) NewCodeBlock(name string) *CodeBlock {
	var interned *String
	if name != "" {
		interned = vm.Intern(name)
	}
	return vm.Heap.allocCodeBlock(interned)
}

func (h *Heap) allocClosure(proto *CodeBlock) *Closure {
	obj := newClosure(proto)
	h.alloc(obj, obj.Size())
	return obj
}

func (h *Heap) allocNativeClosure(name string, fn NativeFn) *NativeClosure {
	obj := newNativeClosure(name, fn)
	h.alloc(obj, obj.Size())
	return obj
}

func (h *Heap) allocUpvalue(loc *Value, slot int) *Upvalue {
	obj := newUpvalue(loc, slot)
	h.alloc(obj, obj.Size())
	return obj
}

func (h *Heap) allocTable() *Table {
	obj := newTable()
	obj.maxLoad = h.vm.options.TableMaxLoad
	h.alloc(obj, obj.Size())
	return obj
}

// Protect marks o as surviving the next allocation-triggered collection,
// even though it is not yet reachable from any ordinary root. Used
// around multi-step constructions (spec.md §4.7, §9's "protect/unprotect
// idiom"). Protect is a stack push: nested/duplicate protects of the
// same object are legal and independent.
func (h *Heap) Protect(o Obj) {
	if o == nil {
		return
	}
	h.extraRoots = append(h.extraRoots, o)
}

// Unprotect removes the most recently pushed protection for o.
func (h *Heap) Unprotect(o Obj) {
	for i := len(h.extraRoots) - 1; i >= 0; i-- {
		if h.extraRoots[i] == o {
			h.extraRoots = append(h.extraRoots[:i], h.extraRoots[i+1:]...)
			return
		}
	}
}

// Guard protects o and returns a release func to defer, giving the
// scoped-guard idiom spec.md §9 recommends for languages without
// destructors: `defer heap.Guard(obj)()`.
func (h *Heap) Guard(o Obj) func() {
	h.Protect(o)
	return func() { h.Unprotect(o) }
}
