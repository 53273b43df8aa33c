package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerAlloca implements §4.4's Alloca contract.
func (c *Context) LowerAlloca(fn *ir.Function, inst ir.IAlloca) {
	fn.UsesFramePointer = true
	fn.NeedsStackAlignment = true

	align := inst.Align
	if align < 16 {
		align = 16
	}

	sp := c.spVar()
	if align > 16 {
		c.alignRegisterPow2(sp, uint32(align))
	}

	if size, ok := inst.Size.(ir.ConstantInteger32); ok {
		rounded := alignUp32(uint32(size.Value), uint32(align))
		c.emit(SUB{Dest: sp, Src0: sp, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: int32(rounded)}})
	} else {
		size := c.legalizeToVar(inst.Size, ir.NoRegister)
		padded := c.newTemp(ir.I32)
		c.emit(ADD{Dest: padded, Src0: size, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: align - 1}})
		c.alignRegisterPow2(padded, uint32(align))
		c.emit(SUB{Dest: sp, Src0: sp, Src1: padded})
	}
	c.emit(MOV{Dest: inst.Dest, Src: sp})
}

func (c *Context) spVar() *ir.Variable {
	v := ir.NewVariable("sp", ir.I32)
	v.SetReg(13) // regs.SP
	return v
}

func alignUp32(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
