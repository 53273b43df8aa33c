package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerCall implements §4.4's Call contract. inst.Args have already been
// placed into their ABI argument registers by the pipeline's argument
// lowering stage (an earlier pass over the portable IR, run before code
// generation), so this only needs to emit the branch, the register-kill
// pseudo, and the result move. A ConstantRelocatable target stays a
// direct branch-link target; anything else is legalized into a register
// for an indirect call. The function's MaybeLeafFunc is cleared
// unconditionally, and a RegKill pseudo marks every caller-save register
// clobbered for liveness (§8 property 5).
func (c *Context) LowerCall(fn *ir.Function, inst ir.ICall) {
	fn.MaybeLeafFunc = false

	var target ir.Operand
	if rel, ok := inst.Target.(ir.ConstantRelocatable); ok {
		target = rel
		c.emit(BL{Target: target})
	} else {
		target = c.legalizeToVar(inst.Target, ir.NoRegister)
		c.emit(BLX{Target: target})
	}
	c.emit(RegKill{})

	if inst.Dest == nil {
		return
	}
	switch inst.Dest.Ty {
	case ir.I64:
		lo, hi := Split64(inst.Dest)
		c.emit(MOV{Dest: lo, Src: argRegVar(0)})
		c.emit(MOV{Dest: hi, Src: argRegVar(1)})
	case ir.F32, ir.F64:
		c.skipOrError("floating-point call results are unimplemented")
	default:
		c.emit(MOV{Dest: inst.Dest, Src: argRegVar(0)})
	}
}

// argRegVar names the physical-register-pinned variable r0 (index 0) or
// r1 (index 1) used to read back a call's result.
func argRegVar(index int) *ir.Variable {
	v := ir.NewVariable("r_ret", ir.I32)
	v.SetReg(ir.RegNum(index))
	return v
}

// LowerRet implements §4.4's Return contract: route the value to r0 (or
// r0:r1 for i64), emit the pseudo Ret naming LR as its implicit target,
// and keep SP live through the epilog with a fake-use.
func (c *Context) LowerRet(inst ir.IRet) {
	if inst.Src == nil {
		c.emit(Ret{})
		c.emitFakeUseSP()
		return
	}
	if inst.Src.Type() == ir.I64 {
		lo, hi := LoOperand(inst.Src), HiOperand(c, inst.Src)
		r0 := argRegVar(0)
		r1 := argRegVar(1)
		c.emit(MOV{Dest: r0, Src: lo})
		c.emit(MOV{Dest: r1, Src: hi})
		c.emit(Ret{Value: r0})
		c.emitFakeUseSP()
		return
	}
	r0 := argRegVar(0)
	src := c.legalizeToVar(inst.Src, ir.RegNum(0))
	c.emit(MOV{Dest: r0, Src: src})
	c.emit(Ret{Value: r0})
	c.emitFakeUseSP()
}

func (c *Context) emitFakeUseSP() {
	sp := ir.NewVariable("sp", ir.I32)
	sp.SetReg(13) // regs.SP
	c.emit(FakeUse{Var: sp})
}
