package arm32

import (
	"github.com/arm32cc/backend/pkg/ir"
)

// LegalMask is the allowed-forms bitmask passed to Legalize (§4.2).
type LegalMask int

const (
	LegalReg LegalMask = 1 << iota
	LegalFlex
	LegalMem
)

// CanHoldImm implements the rotated-immediate predicate: v is legal as a
// FlexImm iff there is an even rotate r in [0,30] such that rotating v
// left by r leaves no bits outside the low 8; that byte is immed8, and
// rotating it right by r reproduces v. Mirrors
// OperandARM32FlexImm::canHoldImm.
func CanHoldImm(v uint32) (immed8 uint8, rotateAmt uint8, ok bool) {
	// v is representable iff it fits entirely within some 8-bit window
	// when the 32 bits are considered circularly. Try every even rotate.
	for r := 0; r <= 30; r += 2 {
		rotated := rotateLeft32(v, uint(r))
		if rotated <= 0xFF {
			return uint8(rotated), uint8(r), true
		}
	}
	return 0, 0, false
}

func rotateLeft32(v uint32, n uint) uint32 {
	n %= 32
	return (v << n) | (v >> (32 - n))
}

func rotateRight32(v uint32, n uint) uint32 {
	n %= 32
	if n == 0 {
		return v
	}
	return (v >> n) | (v << (32 - n))
}

// makeReg allocates a fresh register-homed variable of the given type, or
// one pinned to regNum when regNum is not ir.NoRegister.
func (c *Context) makeReg(ty ir.Type, regNum ir.RegNum) *ir.Variable {
	v := c.newTemp(ty)
	if regNum == ir.NoRegister {
		v.SetWeightInfinite()
	} else {
		v.SetReg(regNum)
	}
	return v
}

// copyToReg materializes any operand into a fresh (or hinted) register via
// a MOV.
func (c *Context) copyToReg(from ir.Operand, regNum ir.RegNum) *ir.Variable {
	reg := c.makeReg(from.Type(), regNum)
	c.emit(MOV{Dest: reg, Src: from})
	return reg
}

// legalizeToVar is Legalize restricted to LegalReg, then asserted to a
// *ir.Variable.
func (c *Context) legalizeToVar(from ir.Operand, regNum ir.RegNum) *ir.Variable {
	out := c.Legalize(from, LegalReg, regNum)
	if v, ok := out.(*ir.Variable); ok {
		return v
	}
	// Legalize(..., LegalReg, ...) always produces a Variable; anything
	// else is an invariant violation in the legalizer itself.
	ir.Fatal("legalizeToVar: Legalize(LegalReg) returned non-Variable %T", out)
	return nil
}

// Legalize converts op into one of the allowed forms, materializing new
// instructions into the context as a side effect. Grounded directly on
// TargetARM32::legalize.
func (c *Context) Legalize(op ir.Operand, allowed LegalMask, regNum ir.RegNum) ir.Operand {
	switch v := op.(type) {
	case *ir.MemOperand:
		return c.legalizeMem(v, allowed, regNum)
	case ir.FlexReg:
		return c.legalizeFlexReg(v, allowed, regNum)
	case ir.FlexImm:
		if allowed&LegalFlex != 0 {
			return v
		}
		return c.copyToReg(v, regNum)
	case ir.ConstantUndef:
		if v.Ty.IsVector() {
			return c.makeVectorOfZeros(v.Ty, regNum)
		}
		return c.Legalize(ir.ConstantInteger32{Ty: v.Ty, Value: 0}, allowed, regNum)
	case ir.ConstantInteger32:
		return c.legalizeConstantInt32(v, allowed, regNum)
	case ir.ConstantRelocatable:
		reg := c.makeReg(v.Ty, regNum)
		c.emit(MOVW{Dest: reg, Sym: &v})
		c.emit(MOVT{Dest: reg, Sym: &v})
		return reg
	case ir.ConstantInteger64, ir.ConstantFloat, ir.ConstantDouble:
		// Float/double pool-loads are a stub per §4.2; i64 constants are
		// handled by the splitter, never reach Legalize directly.
		return c.copyToReg(op, regNum)
	case *ir.Variable:
		return c.legalizeVariable(v, allowed, regNum)
	default:
		ir.Fatal("Legalize: unhandled operand kind %T", op)
		return nil
	}
}

func (c *Context) legalizeMem(mem *ir.MemOperand, allowed LegalMask, regNum ir.RegNum) ir.Operand {
	regBase := mem.Base
	if mem.Base != nil {
		regBase = c.legalizeToVar(mem.Base, ir.NoRegister)
	}
	var regIndex *ir.Variable
	if mem.Index != nil {
		regIndex = c.legalizeToVar(mem.Index, ir.NoRegister)
	}
	if regBase != mem.Base || regIndex != mem.Index {
		rebuilt := *mem
		rebuilt.Base = regBase
		rebuilt.Index = regIndex
		mem = &rebuilt
	}
	if allowed&LegalMem == 0 {
		reg := c.makeReg(mem.Ty, regNum)
		c.emit(LDR{Dest: reg, Addr: mem})
		return reg
	}
	return mem
}

func (c *Context) legalizeFlexReg(flex ir.FlexReg, allowed LegalMask, regNum ir.RegNum) ir.Operand {
	if allowed&LegalFlex != 0 {
		return flex
	}
	if flex.ShiftKind == ir.NoShift {
		// Falls through to the Variable case, which may or may not need
		// a fresh register depending on `allowed`.
		return c.Legalize(flex.Reg, allowed, regNum)
	}
	return c.copyToReg(flex, regNum)
}

func (c *Context) legalizeConstantInt32(v ir.ConstantInteger32, allowed LegalMask, regNum ir.RegNum) ir.Operand {
	canBeFlex := allowed&LegalFlex != 0
	value := uint32(v.Value)
	if canBeFlex {
		if immed8, rot, ok := CanHoldImm(value); ok {
			return ir.FlexImm{Ty: v.Ty, Immed8: immed8, RotateAmt: rot}
		}
		if immed8, rot, ok := CanHoldImm(^value); ok {
			inverted := ir.FlexImm{Ty: v.Ty, Immed8: immed8, RotateAmt: rot}
			reg := c.makeReg(v.Ty, regNum)
			c.emit(MVN{Dest: reg, Src: inverted})
			return reg
		}
	}
	reg := c.makeReg(v.Ty, regNum)
	upper := uint16(value >> 16)
	lower := uint16(value)
	c.emit(MOVW{Dest: reg, Imm: lower})
	if upper != 0 {
		c.emit(MOVT{Dest: reg, Imm: upper})
	}
	return reg
}

func (c *Context) legalizeVariable(v *ir.Variable, allowed LegalMask, regNum ir.RegNum) ir.Operand {
	mustHaveRegister := v.HasReg() || v.Wt.IsInf()
	needsNewReg := (allowed&LegalMem == 0 && !mustHaveRegister) ||
		(regNum != ir.NoRegister && ir.RegNum(v.RegNumber) != regNum)
	if needsNewReg {
		return c.copyToReg(v, regNum)
	}
	return v
}

// makeVectorOfZeros legalizes a ConstantUndef of vector type to a zeroed
// vector register, supplementing §4.2's scalar-only undef rule per
// original_source's makeVectorOfZeros.
func (c *Context) makeVectorOfZeros(ty ir.Type, regNum ir.RegNum) *ir.Variable {
	reg := c.makeReg(ty, regNum)
	zero := ir.ConstantInteger32{Ty: ir.I32, Value: 0}
	c.emit(MOV{Dest: reg, Src: zero})
	return reg
}

// formMemoryOperand reduces an address operand to a canonical MemOperand,
// legalizing an already-formed one or synthesizing base+0 otherwise (§4.4
// Load/Store contract).
func (c *Context) formMemoryOperand(addr ir.Operand, ty ir.Type) *ir.MemOperand {
	if mem, ok := addr.(*ir.MemOperand); ok {
		legal := c.Legalize(mem, LegalMem, ir.NoRegister)
		return legal.(*ir.MemOperand)
	}
	base := c.legalizeToVar(addr, ir.NoRegister)
	return &ir.MemOperand{Ty: ty, Base: base, Offset: 0, Mode: ir.Offset}
}

// alignRegisterPow2 rounds reg down to a power-of-two alignment in place,
// choosing BIC when align-1 fits a flex immediate and AND otherwise.
// Grounded on TargetARM32::alignRegisterPow2; used by Alloca lowering.
func (c *Context) alignRegisterPow2(reg *ir.Variable, align uint32) {
	if immed8, rot, ok := CanHoldImm(align - 1); ok {
		mask := ir.FlexImm{Ty: ir.I32, Immed8: immed8, RotateAmt: rot}
		c.emit(BIC{Dest: reg, Src0: reg, Src1: mask})
		return
	}
	immed8, rot, ok := CanHoldImm(uint32(-int32(align)))
	if !ok {
		ir.Fatal("alignRegisterPow2: neither align-1 nor -align fits a flex immediate")
	}
	mask := ir.FlexImm{Ty: ir.I32, Immed8: immed8, RotateAmt: rot}
	c.emit(AND{Dest: reg, Src0: reg, Src1: mask})
}
