package ember

import "testing"

func TestCollectGarbageFreesUnreachableStrings(t *testing.T) {
	vm := New(DefaultOptions())
	before := vm.Heap.LiveObjects()

	// Intern a string but never keep a reference to it anywhere a root
	// would see (not on the stack, not in Globals/Strings-as-a-root —
	// the pool itself holds it, so dropping it from the pool is what
	// makes it collectible).
	s := vm.Intern("throwaway")
	vm.Strings.Delete(Object(s))

	vm.collectGarbage()

	if vm.Heap.LiveObjects() != before {
		t.Fatalf("LiveObjects() = %d after collecting an unreachable string, want %d", vm.Heap.LiveObjects(), before)
	}
}

func TestCollectGarbageKeepsStackRoots(t *testing.T) {
	vm := New(DefaultOptions())
	s := vm.Heap.allocString("kept")
	vm.push(Object(s))
	defer func() { vm.pop() }()

	vm.collectGarbage()

	found := false
	for cur := vm.Heap.objects; cur != nil; cur = cur.ObjHeader().Next {
		if cur == s {
			found = true
		}
	}
	if !found {
		t.Fatalf("collectGarbage freed an object reachable from the operand stack")
	}
}

func TestCollectGarbageKeepsProtectedRoots(t *testing.T) {
	vm := New(DefaultOptions())
	s := vm.Heap.allocString("guarded")
	release := vm.Heap.Guard(s)

	vm.collectGarbage()
	stillLive := objectIsLive(vm.Heap, s)
	release()
	vm.collectGarbage()
	freedAfterRelease := !objectIsLive(vm.Heap, s)

	if !stillLive {
		t.Fatalf("collectGarbage freed a protected object")
	}
	if !freedAfterRelease {
		t.Fatalf("object was not collected once its guard was released and it became unreachable")
	}
}

func TestCollectGarbageCyclesCounterAdvances(t *testing.T) {
	vm := New(DefaultOptions())
	if vm.Heap.Cycles() != 0 {
		t.Fatalf("fresh VM reports %d GC cycles, want 0", vm.Heap.Cycles())
	}
	vm.collectGarbage()
	if vm.Heap.Cycles() != 1 {
		t.Fatalf("Cycles() = %d after one collection, want 1", vm.Heap.Cycles())
	}
}

func TestCollectGarbageTracedEmitsSteps(t *testing.T) {
	vm := New(DefaultOptions())
	vm.Heap.allocString("observed")

	var kinds []GCStepKind
	vm.CollectGarbageTraced(func(s GCStep) {
		kinds = append(kinds, s.Kind)
	})

	if len(kinds) == 0 {
		t.Fatalf("CollectGarbageTraced emitted no steps")
	}
	if kinds[len(kinds)-1] != GCStepDone {
		t.Fatalf("last emitted step kind = %v, want GCStepDone", kinds[len(kinds)-1])
	}
}

// A value reachable only through another object's Trace (not directly
// off any root) must be reported as GCStepObjectGrayed, not
// GCStepRootMarked — the distinction between a root and a
// trace-discovered reference (spec.md §4.7). The first step emitted for
// an object is the one that grays it; later steps (tracing, sweep) are
// not about how it was reached.
func TestCollectGarbageTracedDistinguishesRootsFromReferences(t *testing.T) {
	vm := New(DefaultOptions())
	tbl := vm.Heap.allocTable()
	inner := vm.Heap.allocString("nested")
	tbl.Set(Number(1), Object(inner))
	vm.push(Object(tbl))
	defer vm.pop()

	var steps []GCStep
	vm.CollectGarbageTraced(func(s GCStep) { steps = append(steps, s) })

	var tblKind, innerKind GCStepKind
	var sawTbl, sawInner bool
	for _, s := range steps {
		if s.Object == Obj(tbl) && !sawTbl {
			tblKind = s.Kind
			sawTbl = true
		}
		if s.Object == Obj(inner) && !sawInner {
			innerKind = s.Kind
			sawInner = true
		}
	}
	if !sawTbl || tblKind != GCStepRootMarked {
		t.Fatalf("table (reachable from the stack) reported as %v (seen=%v), want GCStepRootMarked", tblKind, sawTbl)
	}
	if !sawInner || innerKind != GCStepObjectGrayed {
		t.Fatalf("string (reachable only via the table's Trace) reported as %v (seen=%v), want GCStepObjectGrayed", innerKind, sawInner)
	}
}

func objectIsLive(h *Heap, target Obj) bool {
	for cur := h.objects; cur != nil; cur = cur.ObjHeader().Next {
		if cur == target {
			return true
		}
	}
	return false
}
