package ember

import "fmt"

// traceInstr prints one "ip  line  opcode  stack" line when Options.Trace
// is set, mirroring the teacher's --trace developer flag for stepping
// through execution by hand.
func (vm *VM) traceInstr(frame *CallFrame, chunk *Chunk, op OpCode, ip int) {
	fmt.Printf("%04d  L%-4d  %-20s [", ip, chunk.LineAt(ip), op.String())
	for i := 0; i < vm.sp; i++ {
		if i > 0 {
			fmt.Print(", ")
		}
		fmt.Print(vm.Stack[i].String())
	}
	fmt.Println("]")
}
