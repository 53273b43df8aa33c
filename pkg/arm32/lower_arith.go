package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerArithmetic implements §4.4's "Arithmetic" contracts for both the
// 32-bit scalar and the split 64-bit paths.
func (c *Context) LowerArithmetic(inst ir.IArith) {
	if inst.Dest.Ty == ir.I64 {
		c.lowerArithmetic64(inst)
		return
	}
	if inst.Dest.Ty == ir.F32 || inst.Dest.Ty == ir.F64 {
		c.skipOrError("floating-point arithmetic lowering is unimplemented")
		return
	}
	src0 := c.legalizeToVar(inst.Src0, ir.NoRegister)
	src1 := c.Legalize(inst.Src1, LegalReg|LegalFlex, ir.NoRegister)
	dest := c.makeReg(inst.Dest.Ty, ir.NoRegister)
	switch inst.Op {
	case ir.Add:
		c.emit(ADD{Dest: dest, Src0: src0, Src1: src1})
	case ir.Sub:
		c.emit(SUB{Dest: dest, Src0: src0, Src1: src1})
	case ir.Mul:
		c.emit(MUL{Dest: dest, Src0: src0, Src1: src1})
	case ir.And:
		c.emit(AND{Dest: dest, Src0: src0, Src1: src1})
	case ir.Or:
		c.emit(ORR{Dest: dest, Src0: src0, Src1: src1})
	case ir.Xor:
		c.emit(EOR{Dest: dest, Src0: src0, Src1: src1})
	case ir.Shl:
		c.emit(LSL{Dest: dest, Src: src0, Shift: src1})
	case ir.Lshr:
		c.emit(LSR{Dest: dest, Src: src0, Shift: src1})
	case ir.Ashr:
		c.emit(ASR{Dest: dest, Src: src0, Shift: src1})
	case ir.Sdiv:
		c.emit(SDIV{Dest: dest, Src0: src0, Src1: src1})
	case ir.Udiv:
		c.emit(UDIV{Dest: dest, Src0: src0, Src1: src1})
	case ir.Srem, ir.Urem:
		c.skipOrError("integer remainder lowering is unimplemented")
		return
	default:
		ir.Fatal("LowerArithmetic: unhandled op %v", inst.Op)
	}
	c.emit(MOV{Dest: inst.Dest, Src: dest})
}

func (c *Context) lowerArithmetic64(inst ir.IArith) {
	bLo, bHi := LoOperand(inst.Src0), HiOperand(c, inst.Src0)
	destLo, destHi := Split64(inst.Dest)

	switch inst.Op {
	case ir.Add:
		cLo, cHi := LoOperand(inst.Src1), HiOperand(c, inst.Src1)
		c.emit(ADDS{Dest: destLo, Src0: bLo, Src1: cLo})
		c.emit(ADC{Dest: destHi, Src0: bHi, Src1: cHi})
	case ir.Sub:
		cLo, cHi := LoOperand(inst.Src1), HiOperand(c, inst.Src1)
		c.emit(SUBS{Dest: destLo, Src0: bLo, Src1: cLo})
		c.emit(SBC{Dest: destHi, Src0: bHi, Src1: cHi})
	case ir.And:
		cLo, cHi := LoOperand(inst.Src1), HiOperand(c, inst.Src1)
		c.emit(AND{Dest: destLo, Src0: bLo, Src1: cLo})
		c.emit(AND{Dest: destHi, Src0: bHi, Src1: cHi})
	case ir.Or:
		cLo, cHi := LoOperand(inst.Src1), HiOperand(c, inst.Src1)
		c.emit(ORR{Dest: destLo, Src0: bLo, Src1: cLo})
		c.emit(ORR{Dest: destHi, Src0: bHi, Src1: cHi})
	case ir.Xor:
		cLo, cHi := LoOperand(inst.Src1), HiOperand(c, inst.Src1)
		c.emit(EOR{Dest: destLo, Src0: bLo, Src1: cLo})
		c.emit(EOR{Dest: destHi, Src0: bHi, Src1: cHi})
	case ir.Mul:
		cLo, cHi := LoOperand(inst.Src1), HiOperand(c, inst.Src1)
		c.lowerMul64(bLo, bHi, cLo, cHi, destLo, destHi)
	case ir.Shl:
		cLo := LoOperand(inst.Src1)
		c.lowerShl64(bLo, bHi, cLo, destLo, destHi)
	case ir.Lshr:
		cLo := LoOperand(inst.Src1)
		c.lowerShr64(bLo, bHi, cLo, destLo, destHi, false)
	case ir.Ashr:
		cLo := LoOperand(inst.Src1)
		c.lowerShr64(bLo, bHi, cLo, destLo, destHi, true)
	case ir.Udiv, ir.Sdiv, ir.Urem, ir.Srem:
		c.skipOrError("64-bit division/remainder lowering is unimplemented")
	default:
		ir.Fatal("lowerArithmetic64: unhandled op %v", inst.Op)
	}
}

// lowerMul64 implements the widening multiply sequence named in §4.4:
// MUL Tacc, Blo, Chi; MLA Tacc2, Clo, Bhi, Tacc; UMULL Tlo, Thi1, Blo, Clo;
// ADD Thi, Thi1, Tacc2.
func (c *Context) lowerMul64(bLo, bHi, cLo, cHi ir.Operand, destLo, destHi *ir.Variable) {
	tAcc := c.newTemp(ir.I32)
	c.emit(MUL{Dest: tAcc, Src0: bLo, Src1: cHi})
	tAcc2 := c.newTemp(ir.I32)
	c.emit(MLA{Dest: tAcc2, Src0: cLo, Src1: bHi, Acc: tAcc})
	tHi1 := c.newTemp(ir.I32)
	c.emit(UMULL{DestLo: destLo, DestHi: tHi1, Src0: bLo, Src1: cLo})
	c.emit(ADD{Dest: destHi, Src0: tHi1, Src1: tAcc2})
}

// lowerShl64 implements the sub+rsb trick named in §4.4: ARM's shift
// saturates (to all zero bits for LSL, all sign/zero bits for ASR/LSR) at
// a shift amount of 32, which is exactly what lets `sub Tc1, Clo, #32`
// produce a negative (hence zero-shift-result) intermediate that the ORR
// can blend in safely when Clo < 32.
func (c *Context) lowerShl64(bLo, bHi, cLo ir.Operand, destLo, destHi *ir.Variable) {
	bLoReg, ok := bLo.(*ir.Variable)
	if !ok {
		bLoReg = c.legalizeToVar(bLo, ir.NoRegister)
	}
	tc1 := c.newTemp(ir.I32)
	c.emit(SUB{Dest: tc1, Src0: cLo, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 32}})
	c.emit(LSL{Dest: destHi, Src: bHi, Shift: cLo})
	shifted := ir.FlexReg{Ty: ir.I32, Reg: bLoReg, ShiftKind: ir.LSL, ShiftReg: tc1}
	c.emit(ORR{Dest: destHi, Src0: destHi, Src1: shifted})
	tc2 := c.newTemp(ir.I32)
	c.emit(RSB{Dest: tc2, Src0: cLo, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 32}})
	shifted2 := ir.FlexReg{Ty: ir.I32, Reg: bLoReg, ShiftKind: ir.LSR, ShiftReg: tc2}
	c.emit(ORR{Dest: destHi, Src0: destHi, Src1: shifted2})
	c.emit(LSL{Dest: destLo, Src: bLoReg, Shift: cLo})
}

// lowerShr64 implements the symmetric right-shift sequence; for the
// arithmetic case the merging sub sets flags and the merge ORR runs
// predicated PL, matching the original's handling of the sign-extending
// tail.
func (c *Context) lowerShr64(bLo, bHi, cLo ir.Operand, destLo, destHi *ir.Variable, arith bool) {
	bHiReg, ok := bHi.(*ir.Variable)
	if !ok {
		bHiReg = c.legalizeToVar(bHi, ir.NoRegister)
	}
	tc1 := c.newTemp(ir.I32)
	c.emit(RSB{Dest: tc1, Src0: cLo, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 32}})
	c.emit(LSR{Dest: destLo, Src: bLo, Shift: cLo})
	shifted := ir.FlexReg{Ty: ir.I32, Reg: bHiReg, ShiftKind: ir.LSL, ShiftReg: tc1}
	c.emit(ORR{Dest: destLo, Src0: destLo, Src1: shifted})
	tc2 := c.newTemp(ir.I32)
	rshiftKind := ir.LSR
	if arith {
		c.emit(SUBS{Dest: tc2, Src0: cLo, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 32}})
		rshiftKind = ir.ASR
	} else {
		c.emit(SUB{Dest: tc2, Src0: cLo, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 32}})
	}
	shifted2 := ir.FlexReg{Ty: ir.I32, Reg: bHiReg, ShiftKind: rshiftKind, ShiftReg: tc2}
	merge := ORR{Dest: destLo, Src0: destLo, Src1: shifted2}
	if arith {
		merge.Cond = PL
	}
	c.emit(merge)
	if arith {
		c.emit(ASR{Dest: destHi, Src: bHiReg, Shift: cLo})
	} else {
		c.emit(LSR{Dest: destHi, Src: bHiReg, Shift: cLo})
	}
}
