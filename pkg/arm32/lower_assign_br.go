package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerAssign implements §4.4's Assign contract. For i64 it splits and
// moves through fresh temporaries to keep the SSA structure downstream
// liveness analysis expects; for scalars it legalizes to the destination's
// pre-assigned register when it has one.
func (c *Context) LowerAssign(inst ir.IAssign) {
	if inst.Dest.Ty == ir.I64 {
		lo, hi := Split64(inst.Dest)
		srcLo, srcHi := LoOperand(inst.Src), HiOperand(c, inst.Src)
		tLo := c.newTemp(ir.I32)
		c.emit(MOV{Dest: tLo, Src: srcLo})
		c.emit(MOV{Dest: lo, Src: tLo})
		tHi := c.newTemp(ir.I32)
		c.emit(MOV{Dest: tHi, Src: srcHi})
		c.emit(MOV{Dest: hi, Src: tHi})
		return
	}
	regNum := ir.NoRegister
	if inst.Dest.HasReg() {
		regNum = ir.RegNum(inst.Dest.RegNumber)
	}
	src := c.legalizeToVar(inst.Src, regNum)
	c.emit(MOV{Dest: inst.Dest, Src: src})
}

// LowerBr implements §4.4's Branch contract.
func (c *Context) LowerBr(inst ir.IBr, labelOf func(ir.Node) Label) {
	if inst.Cond == nil {
		c.emit(B{Target: labelOf(inst.IfTrue)})
		return
	}
	cond := c.legalizeToVar(inst.Cond, ir.NoRegister)
	c.emit(CMP{Src0: cond, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 0}})
	c.emit(B{Target: labelOf(inst.IfTrue), Cond: NE})
	c.emit(B{Target: labelOf(inst.IfFalse)})
}
