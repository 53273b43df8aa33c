package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerIcmp implements §4.4's icmp contracts, dispatching on operand width.
func (c *Context) LowerIcmp(inst ir.IIcmp) {
	ty := operandType(inst.Src0)
	if ty == ir.I64 {
		c.lowerIcmp64(inst)
		return
	}
	c.lowerIcmp32(inst)
}

func operandType(op ir.Operand) ir.Type { return op.Type() }

// icmpCC maps the portable Condition to the ARM condition that selects the
// "true" outcome of a CMP.
func icmpCC(cond ir.Condition) CC {
	switch cond {
	case ir.CondEq:
		return EQ
	case ir.CondNe:
		return NE
	case ir.CondUlt:
		return CC_
	case ir.CondUle:
		return LS
	case ir.CondUgt:
		return HI
	case ir.CondUge:
		return CS
	case ir.CondSlt:
		return LT
	case ir.CondSle:
		return LE
	case ir.CondSgt:
		return GT
	case ir.CondSge:
		return GE
	default:
		ir.Fatal("icmpCC: unhandled condition %v", cond)
		return AL
	}
}

// lowerIcmp32 implements the narrow-compare shift trick: narrow types are
// shifted left by S = 32 - bitwidth before the CMP so stray high bits
// (e.g. from an unsanitized i8) cannot pollute the comparison, mirroring
// S2 of §8.
func (c *Context) lowerIcmp32(inst ir.IIcmp) {
	ty := inst.Src0.Type()
	shift := 32 - bitWidth(ty)

	src0 := c.legalizeToVar(inst.Src0, ir.NoRegister)
	src1 := c.Legalize(inst.Src1, LegalReg|LegalFlex, ir.NoRegister)

	lhs := ir.Operand(src0)
	rhs := src1
	if shift > 0 {
		shiftedLhs := c.newTemp(ir.I32)
		c.emit(LSL{Dest: shiftedLhs, Src: src0, Shift: ir.ConstantInteger32{Ty: ir.I32, Value: int32(shift)}})
		lhs = shiftedLhs
		if rv, ok := src1.(*ir.Variable); ok {
			rhs = ir.FlexReg{Ty: ir.I32, Reg: rv, ShiftKind: ir.LSL, ShiftImm: int32(shift)}
		} else {
			shiftedRhs := c.newTemp(ir.I32)
			c.emit(LSL{Dest: shiftedRhs, Src: src1, Shift: ir.ConstantInteger32{Ty: ir.I32, Value: int32(shift)}})
			rhs = shiftedRhs
		}
	}
	c.emit(CMP{Src0: lhs, Src1: rhs})

	dest := c.makeReg(ir.I1, ir.NoRegister)
	c.emit(MOV{Dest: dest, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 0}})
	cc := icmpCC(inst.Cond)
	c.emit(MOV{Dest: dest, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}, Cond: cc})
	c.emit(MOV{Dest: inst.Dest, Src: dest})
}

func bitWidth(ty ir.Type) int {
	switch ty {
	case ir.I1:
		return 1
	case ir.I8:
		return 8
	case ir.I16:
		return 16
	default:
		return 32
	}
}

type icmp64Entry struct {
	signed bool
	swap   bool
	c1     CC
}

// icmp64Table is indexed by Condition, giving (signed, swap, C1) per
// §4.4's 64-bit icmp contract: C1 selects the "true" outcome directly,
// and its complement (negateCC) selects "false" — the two cover every
// case since the comparison is genuinely binary.
var icmp64Table = map[ir.Condition]icmp64Entry{
	ir.CondEq:  {signed: false, c1: EQ},
	ir.CondNe:  {signed: false, c1: NE},
	ir.CondUlt: {signed: false, c1: CC_},
	ir.CondUle: {signed: false, swap: true, c1: CS},
	ir.CondUgt: {signed: false, swap: true, c1: CC_},
	ir.CondUge: {signed: false, c1: CS},
	ir.CondSlt: {signed: true, c1: LT},
	ir.CondSle: {signed: true, swap: true, c1: GE},
	ir.CondSgt: {signed: true, swap: true, c1: LT},
	ir.CondSge: {signed: true, c1: GE},
}

// lowerIcmp64 implements §4.4's 64-bit comparison table: for signed
// predicates, CMP lo,lo followed by SBCS on the high words folds the
// borrow from the low-word subtract into the 64-bit result; for unsigned
// predicates, CMP hi,hi followed by a CMPeq lo,lo only refines the result
// when the high words were equal.
func (c *Context) lowerIcmp64(inst ir.IIcmp) {
	entry, ok := icmp64Table[inst.Cond]
	if !ok {
		ir.Fatal("lowerIcmp64: unhandled condition %v", inst.Cond)
	}
	left, right := inst.Src0, inst.Src1
	if entry.swap {
		left, right = right, left
	}
	lLo, lHi := LoOperand(left), HiOperand(c, left)
	rLo, rHi := LoOperand(right), HiOperand(c, right)

	scratch := c.newTemp(ir.I32)
	if entry.signed {
		c.emit(CMP{Src0: lLo, Src1: rLo})
		c.emit(SBCS{Dest: scratch, Src0: lHi, Src1: rHi})
	} else {
		c.emit(CMP{Src0: lHi, Src1: rHi})
		c.emit(CMP{Src0: lLo, Src1: rLo, Cond: EQ})
	}

	tmp := c.newTemp(ir.I1)
	c.emit(MOV{Dest: tmp, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}, Cond: entry.c1})
	c.emit(MOV{Dest: tmp, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 0}, Cond: negateCC(entry.c1)})
	c.emit(MOV{Dest: inst.Dest, Src: tmp})
}

// negateCC returns the complementary ARM condition code.
func negateCC(c CC) CC {
	switch c {
	case EQ:
		return NE
	case NE:
		return EQ
	case CS:
		return CC_
	case CC_:
		return CS
	case MI:
		return PL
	case PL:
		return MI
	case VS:
		return VC
	case VC:
		return VS
	case HI:
		return LS
	case LS:
		return HI
	case GE:
		return LT
	case LT:
		return GE
	case GT:
		return LE
	case LE:
		return GT
	default:
		return AL
	}
}
