package ember

// captureUpvalue returns the open Upvalue for the given stack slot,
// reusing an existing one if the slot is already captured (spec.md
// §4.4's sharing requirement: two closures capturing the same local see
// the same Upvalue). New upvalues are inserted keeping OpenUpvalues
// sorted by descending slot.
func (vm *VM) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	cur := vm.OpenUpvalues
	for cur != nil && cur.slot > slot {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.slot == slot {
		return cur
	}

	created := vm.Heap.allocUpvalue(&vm.Stack[slot], slot)
	created.NextOpen = cur
	if prev == nil {
		vm.OpenUpvalues = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// execMakeFunc implements make_func (spec.md §4.4): it wraps the
// constant-pool CodeBlock at the fetched index in a fresh Closure, then
// resolves each of its upvalues either by capturing a still-open local
// slot of the enclosing frame or by aliasing an upvalue already held by
// the enclosing closure.
func (vm *VM) execMakeFunc(frame *CallFrame, chunk *Chunk) *RuntimeError {
	idx, err := vm.fetchByte(frame, chunk)
	if err != nil {
		return err
	}
	if int(idx) >= len(chunk.Constants) {
		return vm.eb.internal("constant index out of range")
	}
	protoVal := chunk.Constants[idx]
	proto, ok := protoVal.Obj.(*CodeBlock)
	if protoVal.Kind != KindObject || !ok {
		return vm.eb.internal("make_func operand is not a CodeBlock")
	}

	n, err := vm.fetchByte(frame, chunk)
	if err != nil {
		return err
	}

	closure := vm.Heap.allocClosure(proto)
	defer vm.Heap.Guard(closure)()

	for i := 0; i < int(n); i++ {
		isLocal, ferr := vm.fetchByte(frame, chunk)
		if ferr != nil {
			return ferr
		}
		upIdx, ferr := vm.fetchByte(frame, chunk)
		if ferr != nil {
			return ferr
		}
		if isLocal != 0 {
			closure.Upvals[i] = vm.captureUpvalue(frame.Base + int(upIdx))
		} else {
			if int(upIdx) >= len(frame.Closure.Upvals) {
				return vm.eb.internal("upvalue index out of range")
			}
			closure.Upvals[i] = frame.Closure.Upvals[upIdx]
		}
	}

	vm.push(Object(closure))
	return nil
}
