package ember

// GCStepKind labels one notable event during a traced collection, for
// tools (the gcview visualizer, tests) that want to observe a cycle
// step by step instead of just its before/after effect.
type GCStepKind int

const (
	GCStepRootMarked GCStepKind = iota
	GCStepObjectGrayed
	GCStepObjectTraced
	GCStepSweepStart
	GCStepObjectFreed
	GCStepObjectSurvived
	GCStepDone
)

// GCStep is one observation emitted by CollectGarbageTraced.
type GCStep struct {
	Kind   GCStepKind
	Object Obj
	Detail string
}

// collectGarbage runs one full stop-the-world mark/sweep cycle
// (spec.md §4.7) with no observer attached; this is what Heap.alloc
// calls on the hot allocation path.
func (vm *VM) collectGarbage() {
	vm.CollectGarbageTraced(nil)
}

// CollectGarbageTraced runs the same algorithm as collectGarbage but
// invokes onStep (if non-nil) at every root mark, every trace pop, and
// every sweep decision, so a caller like internal/gcview can drive an
// interactive step-through of a real collection instead of a simulated
// one. onStep may be nil, in which case this is exactly collectGarbage.
func (vm *VM) CollectGarbageTraced(onStep func(GCStep)) {
	emit := onStep
	if emit == nil {
		emit = func(GCStep) {}
	}

	var gray []Obj

	// mark grays v.Obj if it isn't already. why distinguishes the two ways
	// an object enters the gray set: a root (stack slot, frame closure,
	// ...) is reported as GCStepRootMarked, while an object discovered by
	// tracing an already-gray object's outgoing references is a genuine
	// white-to-gray color transition, reported as GCStepObjectGrayed.
	mark := func(v Value, why string) {
		if v.Kind != KindObject || v.Obj == nil {
			return
		}
		hdr := v.Obj.ObjHeader()
		if hdr.Marked {
			return
		}
		hdr.Marked = true
		gray = append(gray, v.Obj)
		kind := GCStepRootMarked
		if why == "reference" {
			kind = GCStepObjectGrayed
		}
		emit(GCStep{Kind: kind, Object: v.Obj, Detail: why})
	}

	// Roots, per spec.md §4.7:
	// 1. every Value on the operand stack
	for i := 0; i < vm.sp; i++ {
		mark(vm.Stack[i], "stack")
	}
	// 2. each active call frame's closure
	for i := 0; i < vm.frameCount; i++ {
		if vm.Frames[i].Closure != nil {
			mark(Object(vm.Frames[i].Closure), "frame closure")
		}
	}
	// 3. the entire open-upvalue chain
	for uv := vm.OpenUpvalues; uv != nil; uv = uv.NextOpen {
		mark(Object(uv), "open upvalue")
	}
	// 4. keys and values of the string-intern pool
	if vm.Strings != nil {
		mark(Object(vm.Strings), "string pool")
	}
	// 5. the global-variable table
	if vm.Globals != nil {
		mark(Object(vm.Globals), "globals")
	}
	// 6. the extra-roots set
	for _, o := range vm.Heap.extraRoots {
		if o != nil {
			mark(Object(o), "protected")
		}
	}
	// 7. compiler roots, if a compile is in progress
	for _, v := range vm.compilerRoots {
		mark(v, "compiler root")
	}

	// Trace: pop the gray worklist, ask each object to enumerate its
	// outgoing references, mark and push anything newly reachable.
	for len(gray) > 0 {
		o := gray[len(gray)-1]
		gray = gray[:len(gray)-1]
		emit(GCStep{Kind: GCStepObjectTraced, Object: o})
		o.Trace(func(v Value) { mark(v, "reference") })
	}

	vm.Heap.sweepTraced(emit)
	vm.Heap.nextGC = uint64(float64(vm.Heap.bytesAllocated) * vm.Heap.growthFactor)
	if vm.Heap.nextGC < defaultInitialGCLimit {
		vm.Heap.nextGC = defaultInitialGCLimit
	}
	vm.Heap.cycles++
	emit(GCStep{Kind: GCStepDone, Detail: "cycle complete"})
}

// sweep traverses the all-objects list. Marked survivors have their bit
// cleared; unmarked objects are unlinked and their accounted size is
// subtracted from bytes_allocated. Go's own garbage collector reclaims
// the underlying memory once nothing (including this list) references
// it anymore; unlinking is what "destroys" the object from Ember's
// perspective.
func (h *Heap) sweep() {
	h.sweepTraced(nil)
}

func (h *Heap) sweepTraced(emit func(GCStep)) {
	if emit == nil {
		emit = func(GCStep) {}
	} else {
		emit(GCStep{Kind: GCStepSweepStart})
	}
	var prev Obj
	cur := h.objects
	for cur != nil {
		hdr := cur.ObjHeader()
		next := hdr.Next
		if hdr.Marked {
			hdr.Marked = false
			prev = cur
			emit(GCStep{Kind: GCStepObjectSurvived, Object: cur})
		} else {
			if prev != nil {
				prev.ObjHeader().Next = next
			} else {
				h.objects = next
			}
			if h.bytesAllocated >= uint64(cur.Size()) {
				h.bytesAllocated -= uint64(cur.Size())
			} else {
				h.bytesAllocated = 0
			}
			emit(GCStep{Kind: GCStepObjectFreed, Object: cur})
		}
		cur = next
	}
}

// LiveObjects counts the current all-objects list, for tests and the
// gcview visualizer. It is O(n) and not used on any hot path.
func (h *Heap) LiveObjects() int {
	n := 0
	for cur := h.objects; cur != nil; cur = cur.ObjHeader().Next {
		n++
	}
	return n
}

// Objects returns a snapshot slice of every live object, for the
// visualizer and diagnostics. Not used on any hot path.
func (h *Heap) Objects() []Obj {
	out := make([]Obj, 0, h.LiveObjects())
	for cur := h.objects; cur != nil; cur = cur.ObjHeader().Next {
		out = append(out, cur)
	}
	return out
}

// FrameCount reports the number of active call frames.
func (vm *VM) FrameCount() int { return vm.frameCount }

// StackLen reports the number of live values on the operand stack.
func (vm *VM) StackLen() int { return vm.sp }
