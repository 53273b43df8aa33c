package asan

import "github.com/arm32cc/backend/pkg/ir"

const allocaAlign = 8

var (
	poisonFunc   = ir.ConstantRelocatable{Ty: ir.I32, Name: "__asan_poison"}
	unpoisonFunc = ir.ConstantRelocatable{Ty: ir.I32, Name: "__asan_unpoison"}
)

// InstrumentFuncStart implements §4.7's "allocas and locals" rule: every
// run of constant-size allocas sitting at fn's entry is grown to reserve
// a trailing redzone, and one more 32-byte redzone alloca is appended
// after the run. Every redzone is poisoned here, immediately after the
// run; InstrumentRet later unpoisons them all, in the order dtors
// accumulates them.
func InstrumentFuncStart(in *Instrumentor, dtors *LocalDtors, fn *ir.Function) {
	cur := fn.Entrypoint
	var tail []ir.Instruction
	hasLocals := false

	for {
		inst, ok := fn.Code[cur].(ir.IAlloca)
		if !ok {
			break
		}
		sizeConst, ok := inst.Size.(ir.ConstantInteger32)
		if !ok {
			break
		}
		hasLocals = true

		varSize := sizeConst.Value
		rzPadding := int32(RzSize) + int32(padToAlignment(int64(varSize), RzSize))
		inst.Size = ir.ConstantInteger32{Ty: ir.I32, Value: varSize + rzPadding}
		inst.Align = allocaAlign
		fn.Code[cur] = inst

		rzLoc := ir.NewVariable(in.nextRzName(), ir.I32)
		rzSizeConst := ir.ConstantInteger32{Ty: ir.I32, Value: rzPadding}
		addr := ir.IArith{Op: ir.Add, Dest: rzLoc, Src0: inst.Dest, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: varSize}}
		poison := ir.ICall{Target: poisonFunc, Args: []ir.Operand{rzLoc, rzSizeConst}}
		unpoison := ir.ICall{Target: unpoisonFunc, Args: []ir.Operand{rzLoc, rzSizeConst}}

		dtors.unpoison = append(dtors.unpoison, unpoison)
		tail = append(tail, addr, poison)

		cur = inst.Succ
	}

	var head []ir.Instruction
	if hasLocals {
		lastRz := ir.NewVariable(in.nextRzName(), ir.I32)
		sizeConst := ir.ConstantInteger32{Ty: ir.I32, Value: RzSize}
		rzAlloca := ir.IAlloca{Dest: lastRz, Size: sizeConst, Align: allocaAlign}
		poison := ir.ICall{Target: poisonFunc, Args: []ir.Operand{lastRz, sizeConst}}
		unpoison := ir.ICall{Target: unpoisonFunc, Args: []ir.Operand{lastRz, sizeConst}}

		dtors.unpoison = append(dtors.unpoison, unpoison)
		head = append(head, rzAlloca, poison)
	}

	insertBefore(fn, cur, append(head, tail...)...)
}
