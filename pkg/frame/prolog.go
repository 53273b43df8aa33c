package frame

import (
	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

// BuildProlog emits the push of preserved registers, the "mov FP, SP" when
// the function needs a frame pointer, and the stack-allocation "sub sp,
// sp, #SpillAreaSizeBytes", in that order — the three prolog steps named
// in §4.5, grounded on TargetARM32::addProlog.
func BuildProlog(layout *FrameLayout) []arm32.Instruction {
	var out []arm32.Instruction
	if len(layout.PreservedRegs) > 0 {
		out = append(out, arm32.PUSH{Regs: layout.PreservedRegs})
	}
	if layout.UsesFramePointer {
		fp := fpVar()
		sp := spVar()
		out = append(out, arm32.MOV{Dest: fp, Src: sp})
		out = append(out, arm32.FakeUse{Var: fp})
	}
	if layout.SpillAreaSizeBytes > 0 {
		pre, amount := legalizeStackImm(layout.SpillAreaSizeBytes)
		out = append(out, pre...)
		sp := spVar()
		out = append(out, arm32.SUB{Dest: sp, Src0: sp, Src1: amount})
	}
	return out
}

// BuildEpilog rewrites insts in place: it finds the single arm32.Ret
// instruction (per §4.5, addEpilog's marker search) and inserts the
// frame-teardown sequence immediately before it — restoring SP (via "mov
// SP, FP" or "add SP, SpillAreaSizeBytes"), popping preserved registers in
// ascending order, and, under config.Flags.Sandboxed, replacing the Ret
// with the bundle_lock/bic/bx/bundle_unlock sandboxed return sequence.
// Returns the full rewritten instruction stream; if insts contains no Ret,
// it is returned unchanged.
func BuildEpilog(layout *FrameLayout, flags config.Flags, insts []arm32.Instruction) []arm32.Instruction {
	retIdx := -1
	for i := len(insts) - 1; i >= 0; i-- {
		if _, ok := insts[i].(arm32.Ret); ok {
			retIdx = i
			break
		}
	}
	if retIdx == -1 {
		return insts
	}

	var teardown []arm32.Instruction
	sp := spVar()
	if layout.UsesFramePointer {
		teardown = append(teardown, arm32.FakeUse{Var: sp})
		teardown = append(teardown, arm32.MOV{Dest: sp, Src: fpVar()})
	} else if layout.SpillAreaSizeBytes > 0 {
		pre, amount := legalizeStackImm(layout.SpillAreaSizeBytes)
		teardown = append(teardown, pre...)
		teardown = append(teardown, arm32.ADD{Dest: sp, Src0: sp, Src1: amount})
	}
	if len(layout.PreservedRegs) > 0 {
		teardown = append(teardown, arm32.POP{Regs: layout.PreservedRegs})
	}

	ret := insts[retIdx].(arm32.Ret)
	var tail []arm32.Instruction
	if flags.Sandboxed {
		tail = sandboxedReturn(ret)
	} else {
		tail = []arm32.Instruction{ret}
	}

	out := make([]arm32.Instruction, 0, len(insts)+len(teardown)+len(tail))
	out = append(out, insts[:retIdx]...)
	out = append(out, teardown...)
	out = append(out, tail...)
	out = append(out, insts[retIdx+1:]...)
	return out
}

// sandboxedReturn implements §4.5/§6's NaCl-style sandboxed return: LR is
// masked to the low 1GB, 4-byte-aligned range before the branch, bracketed
// by bundle lock/unlock pseudos so no branch target can land mid-sequence.
func sandboxedReturn(ret arm32.Ret) []arm32.Instruction {
	lr := ir.NewVariable("lr", ir.I32)
	lr.SetReg(ir.RegNum(regs.LR))
	var maskOperand ir.Operand
	if immed8, rot, found := arm32.CanHoldImm(0xC000000F); found {
		maskOperand = ir.FlexImm{Ty: ir.I32, Immed8: immed8, RotateAmt: rot}
	} else {
		maskBits := uint32(0xC000000F)
		maskOperand = ir.ConstantInteger32{Ty: ir.I32, Value: int32(maskBits)}
	}
	return []arm32.Instruction{
		arm32.BundleLock{},
		arm32.BIC{Dest: lr, Src0: lr, Src1: maskOperand},
		arm32.Ret{Value: ret.Value},
		arm32.BundleUnlock{},
	}
}

// legalizeStackImm returns any MOVW/MOVT pair needed to materialize amount
// into the IP scratch register when it doesn't fit a flex immediate,
// alongside the operand the caller's SUB/ADD should use.
func legalizeStackImm(amount int32) ([]arm32.Instruction, ir.Operand) {
	if immed8, rot, ok := arm32.CanHoldImm(uint32(amount)); ok {
		return nil, ir.FlexImm{Ty: ir.I32, Immed8: immed8, RotateAmt: rot}
	}
	ip := ir.NewVariable("ip", ir.I32)
	ip.SetReg(ir.RegNum(regs.IP))
	upper := uint16(uint32(amount) >> 16)
	lower := uint16(uint32(amount))
	insts := []arm32.Instruction{arm32.MOVW{Dest: ip, Imm: lower}}
	if upper != 0 {
		insts = append(insts, arm32.MOVT{Dest: ip, Imm: upper})
	}
	return insts, ip
}

func fpVar() *ir.Variable {
	v := ir.NewVariable("fp", ir.I32)
	v.SetReg(ir.RegNum(regs.FP))
	return v
}

func spVar() *ir.Variable {
	v := ir.NewVariable("sp", ir.I32)
	v.SetReg(ir.RegNum(regs.SP))
	return v
}
