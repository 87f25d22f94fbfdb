package ember

// Run wraps proto in a top-level Closure, pushes it as frame 0, and
// dispatches until the frame stack empties or a RuntimeError occurs
// (spec.md §2's control-flow summary).
func (vm *VM) Run(proto *CodeBlock) ExitCode {
	closure := vm.Heap.allocClosure(proto)
	vm.push(Object(closure))
	vm.frameCount = 1
	vm.Frames[0] = CallFrame{Closure: closure, IP: 0, Base: 0}

	for vm.frameCount > 0 {
		if err := vm.step(); err != nil {
			vm.report(err)
			vm.ExitCode = RuntimeErrorExit
			return RuntimeErrorExit
		}
	}
	vm.ExitCode = Success
	return Success
}

// step fetches, decodes, and executes exactly one instruction.
func (vm *VM) step() *RuntimeError {
	frame := vm.currentFrame()
	chunk := frame.Closure.Proto.Chunk

	opByte, ok := chunk.ReadByte(frame.IP)
	if !ok {
		return vm.eb.internal("instruction pointer out of range")
	}
	op := OpCode(opByte)
	frame.IP++

	if vm.options.Trace {
		vm.traceInstr(frame, chunk, op, frame.IP-1)
	}

	switch op {
	case OpLoadConst:
		idx, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		if int(idx) >= len(chunk.Constants) {
			return vm.eb.internal("constant index out of range")
		}
		vm.push(chunk.Constants[idx])

	case OpLoadNil:
		vm.push(Nil)

	case OpPop:
		vm.pop()

	case OpAdd, OpSub, OpMult, OpDiv, OpMod:
		if err := vm.execArith(op); err != nil {
			return err
		}

	case OpLShift, OpRShift, OpBAnd, OpBOr:
		if err := vm.execBitwise(op); err != nil {
			return err
		}

	case OpGt, OpLt, OpGte, OpLte:
		if err := vm.execCompare(op); err != nil {
			return err
		}

	case OpEq:
		b, a := vm.pop(), vm.pop()
		vm.push(Bool(a.Equal(b)))

	case OpNeq:
		b, a := vm.pop(), vm.pop()
		vm.push(Bool(!a.Equal(b)))

	case OpNegate:
		v := vm.pop()
		if !v.IsNumber() {
			return vm.eb.unopError("-", v)
		}
		vm.push(Number(-v.Num))

	case OpLNot:
		v := vm.pop()
		vm.push(Bool(!v.Truthy()))

	case OpConcat:
		if err := vm.execConcat(); err != nil {
			return err
		}

	case OpJmp:
		off, err := vm.fetchShort(frame, chunk)
		if err != nil {
			return err
		}
		frame.IP += int(off)

	case OpJmpBack:
		off, err := vm.fetchShort(frame, chunk)
		if err != nil {
			return err
		}
		frame.IP -= int(off)

	case OpJmpIfTrueOrPop:
		off, err := vm.fetchShort(frame, chunk)
		if err != nil {
			return err
		}
		if vm.peek(0).Truthy() {
			frame.IP += int(off)
		} else {
			vm.pop()
		}

	case OpJmpIfFalseOrPop:
		off, err := vm.fetchShort(frame, chunk)
		if err != nil {
			return err
		}
		if !vm.peek(0).Truthy() {
			frame.IP += int(off)
		} else {
			vm.pop()
		}

	case OpPopJmpIfFalse:
		off, err := vm.fetchShort(frame, chunk)
		if err != nil {
			return err
		}
		v := vm.pop()
		if !v.Truthy() {
			frame.IP += int(off)
		}

	case OpGetVar:
		slot, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		vm.push(vm.Stack[frame.Base+int(slot)])

	case OpSetVar:
		slot, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		vm.Stack[frame.Base+int(slot)] = vm.peek(0)

	case OpGetUpval:
		idx, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		if int(idx) >= len(frame.Closure.Upvals) {
			return vm.eb.internal("upvalue index out of range")
		}
		vm.push(frame.Closure.Upvals[idx].Get())

	case OpSetUpval:
		idx, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		if int(idx) >= len(frame.Closure.Upvals) {
			return vm.eb.internal("upvalue index out of range")
		}
		frame.Closure.Upvals[idx].Set(vm.peek(0))

	case OpCloseUpval:
		vm.closeUpvalues(vm.sp - 1)
		vm.pop()

	case OpNewTable:
		vm.push(Object(vm.Heap.allocTable()))

	case OpTableAddField:
		v := vm.pop()
		k := vm.pop()
		t := vm.peek(0)
		if err := vm.tableSet(t, k, v); err != nil {
			return err
		}

	case OpTableSet:
		idx, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		key := chunk.Constants[idx]
		v := vm.pop()
		t := vm.pop()
		if err := vm.tableSet(t, key, v); err != nil {
			return err
		}
		vm.push(v)

	case OpTableGet:
		idx, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		key := chunk.Constants[idx]
		t := vm.pop()
		v, err2 := vm.tableGet(t, key)
		if err2 != nil {
			return err2
		}
		vm.push(v)

	case OpTableGetNoPop:
		idx, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		key := chunk.Constants[idx]
		t := vm.peek(0)
		v, err2 := vm.tableGet(t, key)
		if err2 != nil {
			return err2
		}
		vm.push(v)

	case OpIndexSet:
		v := vm.pop()
		k := vm.pop()
		t := vm.pop()
		if k.IsNil() || k.IsUndefined() {
			return vm.eb.nilTableKey()
		}
		if err := vm.tableSet(t, k, v); err != nil {
			return err
		}
		vm.push(v)

	case OpIndex:
		k := vm.pop()
		t := vm.pop()
		if k.IsNil() || k.IsUndefined() {
			return vm.eb.nilTableKey()
		}
		v, err := vm.tableGet(t, k)
		if err != nil {
			return err
		}
		vm.push(v)

	case OpIndexNoPop:
		k := vm.peek(0)
		t := vm.peek(1)
		if k.IsNil() || k.IsUndefined() {
			return vm.eb.nilTableKey()
		}
		v, err := vm.tableGet(t, k)
		if err != nil {
			return err
		}
		vm.push(v)

	case OpCallFunc:
		argc, err := vm.fetchByte(frame, chunk)
		if err != nil {
			return err
		}
		if err := vm.callValue(int(argc)); err != nil {
			return err
		}

	case OpReturnVal:
		if err := vm.execReturn(); err != nil {
			return err
		}

	case OpMakeFunc:
		if err := vm.execMakeFunc(frame, chunk); err != nil {
			return err
		}

	default:
		return vm.eb.internal("unimplemented opcode " + op.String())
	}

	return nil
}

func (vm *VM) fetchByte(frame *CallFrame, chunk *Chunk) (byte, *RuntimeError) {
	b, ok := chunk.ReadByte(frame.IP)
	if !ok {
		return 0, vm.eb.internal("truncated instruction operand")
	}
	frame.IP++
	return b, nil
}

func (vm *VM) fetchShort(frame *CallFrame, chunk *Chunk) (uint16, *RuntimeError) {
	v, ok := chunk.ReadShort(frame.IP)
	if !ok {
		return 0, vm.eb.internal("truncated jump operand")
	}
	frame.IP += 2
	return v, nil
}
