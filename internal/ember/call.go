package ember

// callValue implements call_func (spec.md §4.3): the callee and its argc
// arguments are already on the stack, callee just below them. A Closure
// call pushes a new CallFrame; a NativeClosure call never does (spec.md
// §6) and instead runs to completion inline.
func (vm *VM) callValue(argc int) *RuntimeError {
	calleeSlot := vm.sp - 1 - argc
	callee := vm.Stack[calleeSlot]
	if callee.Kind != KindObject {
		return vm.eb.notCallable(callee)
	}

	switch fn := callee.Obj.(type) {
	case *Closure:
		want := fn.Proto.NumParams
		if argc < want {
			for i := argc; i < want; i++ {
				vm.push(Nil)
			}
		} else if argc > want {
			vm.sp -= argc - want
		}
		if vm.frameCount >= vm.options.MaxFrames {
			return vm.eb.stackOverflow()
		}
		if calleeSlot+1+fn.Proto.MaxSlots >= StackMax {
			return vm.eb.stackOverflow()
		}
		vm.Frames[vm.frameCount] = CallFrame{Closure: fn, IP: 0, Base: calleeSlot}
		vm.frameCount++
		return nil

	case *NativeClosure:
		args := make([]Value, argc)
		copy(args, vm.Stack[calleeSlot+1:vm.sp])
		ctx := &NativeContext{vm: vm, args: args}
		result := fn.Fn(ctx)
		if vm.nativeErr != nil {
			err := vm.nativeErr
			vm.nativeErr = nil
			return err
		}
		vm.sp = calleeSlot
		vm.push(result)
		return nil

	default:
		return vm.eb.notCallable(callee)
	}
}

// execReturn implements return_val (spec.md §4.3): it closes every
// upvalue captured from the returning frame's locals, unwinds the
// frame, and leaves the result on top of the caller's stack — or, for
// the outermost frame, in vm.ReturnValue.
func (vm *VM) execReturn() *RuntimeError {
	result := vm.pop()
	frame := vm.currentFrame()
	vm.closeUpvalues(frame.Base)
	vm.sp = frame.Base
	vm.frameCount--
	if vm.frameCount == 0 {
		vm.ReturnValue = result
		return nil
	}
	vm.push(result)
	return nil
}

// closeUpvalues closes every open upvalue whose captured slot is at or
// above fromSlot, per the capture/close protocol of spec.md §4.4.
// OpenUpvalues is kept sorted by descending slot, so the upvalues to
// close are exactly the prefix of the list.
func (vm *VM) closeUpvalues(fromSlot int) {
	for vm.OpenUpvalues != nil && vm.OpenUpvalues.slot >= fromSlot {
		uv := vm.OpenUpvalues
		uv.Close()
		vm.OpenUpvalues = uv.NextOpen
		uv.NextOpen = nil
	}
}
