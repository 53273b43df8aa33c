package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerCast implements §4.4's Sext/Zext/Trunc/Bitcast contracts.
func (c *Context) LowerCast(inst ir.ICast) {
	switch inst.Kind {
	case ir.Sext:
		c.lowerSext(inst)
	case ir.Zext:
		c.lowerZext(inst)
	case ir.Trunc:
		c.lowerTrunc(inst)
	case ir.Bitcast:
		c.lowerBitcast(inst)
	default:
		ir.Fatal("LowerCast: unhandled kind %v", inst.Kind)
	}
}

func (c *Context) lowerSext(inst ir.ICast) {
	srcTy := inst.Src.Type()
	if inst.Dest.Ty == ir.I64 {
		lo, hi := Split64(inst.Dest)
		src := c.legalizeToVar(inst.Src, ir.NoRegister)
		narrowed := c.sextTo32(src, srcTy)
		c.emit(MOV{Dest: lo, Src: narrowed})
		c.emit(ASR{Dest: hi, Src: narrowed, Shift: ir.ConstantInteger32{Ty: ir.I32, Value: 31}})
		return
	}
	src := c.legalizeToVar(inst.Src, ir.NoRegister)
	wide := c.sextTo32(src, srcTy)
	c.emit(MOV{Dest: inst.Dest, Src: wide})
}

// sextTo32 sign-extends a narrower-than-32-bit register to a full i32,
// using LSL #31; ASR #31 for i1 (there is no SXT for single bits) and SXTB
// / SXTH for i8 / i16.
func (c *Context) sextTo32(src *ir.Variable, srcTy ir.Type) *ir.Variable {
	switch srcTy {
	case ir.I1:
		wide := c.newTemp(ir.I32)
		c.emit(LSL{Dest: wide, Src: src, Shift: ir.ConstantInteger32{Ty: ir.I32, Value: 31}})
		c.emit(ASR{Dest: wide, Src: wide, Shift: ir.ConstantInteger32{Ty: ir.I32, Value: 31}})
		return wide
	case ir.I8:
		wide := c.newTemp(ir.I32)
		c.emit(SXTB{Dest: wide, Src: src})
		return wide
	case ir.I16:
		wide := c.newTemp(ir.I32)
		c.emit(SXTH{Dest: wide, Src: src})
		return wide
	default:
		return src
	}
}

func (c *Context) lowerZext(inst ir.ICast) {
	srcTy := inst.Src.Type()
	src := c.legalizeToVar(inst.Src, ir.NoRegister)
	wide := c.zextTo32(src, srcTy)
	if inst.Dest.Ty == ir.I64 {
		lo, hi := Split64(inst.Dest)
		c.emit(MOV{Dest: lo, Src: wide})
		c.emit(MOV{Dest: hi, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 0}})
		return
	}
	c.emit(MOV{Dest: inst.Dest, Src: wide})
}

func (c *Context) zextTo32(src *ir.Variable, srcTy ir.Type) *ir.Variable {
	switch srcTy {
	case ir.I1:
		wide := c.newTemp(ir.I32)
		mask := ir.ConstantInteger32{Ty: ir.I32, Value: 1}
		c.emit(AND{Dest: wide, Src0: src, Src1: mask})
		return wide
	case ir.I8:
		wide := c.newTemp(ir.I32)
		c.emit(UXTB{Dest: wide, Src: src})
		return wide
	case ir.I16:
		wide := c.newTemp(ir.I32)
		c.emit(UXTH{Dest: wide, Src: src})
		return wide
	default:
		return src
	}
}

func (c *Context) lowerTrunc(inst ir.ICast) {
	src := inst.Src
	if src.Type() == ir.I64 {
		src = LoOperand(src)
	}
	lowPart := c.legalizeToVar(src, ir.NoRegister)
	if inst.Dest.Ty == ir.I1 {
		masked := c.newTemp(ir.I1)
		c.emit(AND{Dest: masked, Src0: lowPart, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 1}})
		c.emit(MOV{Dest: inst.Dest, Src: masked})
		return
	}
	c.emit(MOV{Dest: inst.Dest, Src: lowPart})
}

func (c *Context) lowerBitcast(inst ir.ICast) {
	if inst.Dest.Ty != inst.Src.Type() {
		c.skipOrError("bitcast between distinct types is unimplemented")
		return
	}
	reg := c.legalizeToVar(inst.Src, ir.NoRegister)
	c.emit(MOV{Dest: inst.Dest, Src: reg})
}
