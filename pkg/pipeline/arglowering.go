package pipeline

import "github.com/arm32cc/backend/pkg/ir"

// maxArgRegs is the AAPCS-subset's integer argument register count (r0..r3,
// §6's ABI bullet).
const maxArgRegs = 4

// DoArgLowering implements §4.6's argument-lowering stage: incoming
// parameters are pinned directly to their AAPCS argument registers (i64
// starting on an even register, per §6), and every call's outgoing
// arguments get an explicit copy into the matching argument register
// inserted immediately before the call — LowerCall itself now assumes
// this has already happened (see pkg/arm32/lower_call_ret.go).
func DoArgLowering(fn *ir.Function) {
	assignParamRegisters(fn)
	for node, inst := range snapshotCode(fn) {
		call, ok := inst.(ir.ICall)
		if !ok {
			continue
		}
		copies, ok := placeCallArgs(call.Args)
		if !ok {
			fn.SetError("call has more register arguments than the ABI provides")
			continue
		}
		insertBefore(fn, node, copies...)
	}
}

// assignParamRegisters walks fn.Params in order and pins each one to its
// AAPCS argument register(s) directly (SetReg for scalars, pre-populated
// Lo/Hi for i64) — no copy instruction is needed because the parameter's
// value IS that register for the rest of its live range; the ordinary
// interference mechanism in pkg/regalloc already treats any
// already-register-pinned variable as forbidding that color to whatever
// else is simultaneously live.
func assignParamRegisters(fn *ir.Function) {
	cursor := 0
	for _, p := range fn.Params {
		p.IsArg = true
		if p.Ty == ir.I64 {
			if cursor%2 != 0 {
				cursor++
			}
			if cursor+2 > maxArgRegs {
				fn.SetError("i64 parameter requires stack-passed arguments, unimplemented")
				return
			}
			p.Lo = argRegVar(cursor)
			p.Hi = argRegVar(cursor + 1)
			cursor += 2
			continue
		}
		if cursor >= maxArgRegs {
			fn.SetError("parameter requires stack-passed arguments, unimplemented")
			return
		}
		p.SetReg(ir.RegNum(cursor))
		cursor++
	}
}

// placeCallArgs returns the IAssign copies that move args into r0..r3 in
// order, splitting any i64 argument across an even/odd register pair.
// ok is false if args need more registers than the ABI provides.
func placeCallArgs(args []ir.Operand) (copies []ir.Instruction, ok bool) {
	cursor := 0
	for _, arg := range args {
		if arg.Type() == ir.I64 {
			if cursor%2 != 0 {
				cursor++
			}
			if cursor+2 > maxArgRegs {
				return nil, false
			}
			lo, hi := splitConst(arg)
			copies = append(copies,
				ir.IAssign{Dest: argRegVar(cursor), Src: lo},
				ir.IAssign{Dest: argRegVar(cursor + 1), Src: hi},
			)
			cursor += 2
			continue
		}
		if cursor >= maxArgRegs {
			return nil, false
		}
		copies = append(copies, ir.IAssign{Dest: argRegVar(cursor), Src: arg})
		cursor++
	}
	return copies, true
}

// splitConst returns the lo/hi halves of an i64 IR-level operand. Only
// the constant and variable cases reach here — a call argument is never
// itself a raw MemOperand.
func splitConst(op ir.Operand) (lo, hi ir.Operand) {
	switch v := op.(type) {
	case ir.ConstantInteger64:
		return ir.ConstantInteger32{Ty: ir.I32, Value: int32(uint32(v.Value))},
			ir.ConstantInteger32{Ty: ir.I32, Value: int32(uint32(v.Value >> 32))}
	case *ir.Variable:
		if v.IsSplit() {
			return v.Lo, v.Hi
		}
		lo := ir.NewVariable(v.Name+".lo", ir.I32)
		hi := ir.NewVariable(v.Name+".hi", ir.I32)
		v.Lo, v.Hi = lo, hi
		return lo, hi
	default:
		ir.Fatal("splitConst: unsupported i64 call argument kind %T", op)
		return nil, nil
	}
}

// argRegVar names the physical-register-pinned variable for argument
// register index (0 => r0, 1 => r1, ...).
func argRegVar(index int) *ir.Variable {
	v := ir.NewVariable("r_arg", ir.I32)
	v.SetReg(ir.RegNum(index))
	return v
}
