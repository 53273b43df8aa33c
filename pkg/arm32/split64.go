package arm32

import "github.com/arm32cc/backend/pkg/ir"

// Split64 installs the lo/hi i32 sub-variable pair on an i64 variable if it
// is not already split (§4.3; idempotent per §3's invariant). The pair
// inherits IsArg so argument lowering can recurse over it.
func Split64(v *ir.Variable) (lo, hi *ir.Variable) {
	if v.IsSplit() {
		return v.Lo, v.Hi
	}
	lo = ir.NewVariable(v.Name+".lo", ir.I32)
	hi = ir.NewVariable(v.Name+".hi", ir.I32)
	lo.IsArg = v.IsArg
	hi.IsArg = v.IsArg
	v.Lo, v.Hi = lo, hi
	return lo, hi
}

// LoOperand returns the low 32 bits of an i64-typed operand.
func LoOperand(op ir.Operand) ir.Operand {
	switch v := op.(type) {
	case *ir.Variable:
		lo, _ := Split64(v)
		return lo
	case ir.ConstantInteger64:
		return ir.ConstantInteger32{Ty: ir.I32, Value: int32(uint32(v.Value))}
	case *ir.MemOperand:
		lo := *v
		lo.Ty = ir.I32
		return &lo
	default:
		ir.Fatal("LoOperand: unsupported i64 operand kind %T", op)
		return nil
	}
}

// HiOperand returns the high 32 bits of an i64-typed operand. For a
// MemOperand it always advances by 4 bytes from the base — incrementing
// the offset when addressable, otherwise materializing base+4 into a
// fresh register (RegReg forms always take the register path, since 4
// can never be folded into a shifted index per §4.3).
func HiOperand(ctx *Context, op ir.Operand) ir.Operand {
	switch v := op.(type) {
	case *ir.Variable:
		_, hi := Split64(v)
		return hi
	case ir.ConstantInteger64:
		return ir.ConstantInteger32{Ty: ir.I32, Value: int32(uint32(v.Value >> 32))}
	case *ir.MemOperand:
		return hiMemOperand(ctx, v)
	default:
		ir.Fatal("HiOperand: unsupported i64 operand kind %T", op)
		return nil
	}
}

func hiMemOperand(ctx *Context, mem *ir.MemOperand) *ir.MemOperand {
	hi := *mem
	hi.Ty = ir.I32
	if mem.IsRegReg() {
		base := ctx.newTemp(ir.I32)
		ctx.emit(ADD{Dest: base, Src0: mem.Base, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: 4}})
		hi.Base = base
		return &hi
	}
	newOffset := mem.Offset + 4
	if canHoldOffset(ir.I32, newOffset) {
		hi.Offset = newOffset
		return &hi
	}
	base := ctx.newTemp(ir.I32)
	ctx.emit(ADD{Dest: base, Src0: mem.Base, Src1: ir.ConstantInteger32{Ty: ir.I32, Value: mem.Offset + 4}})
	hi.Base = base
	hi.Offset = 0
	return &hi
}

// canHoldOffset implements §8 property 1's predicate: an ARM LDR/STR
// immediate offset fits in a 12-bit magnitude with a separate add/subtract
// bit, i.e. ±4095 (the core's word/byte transfer range); narrower encodings (e.g. halfword) are more
// restrictive but the core treats 12 bits as the common case.
func canHoldOffset(ty ir.Type, offset int32) bool {
	const maxOffset = 1<<12 - 1
	return offset >= -maxOffset && offset <= maxOffset
}
