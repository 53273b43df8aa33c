package arm32

import (
	"testing"

	"github.com/arm32cc/backend/pkg/ir"
)

// S1 — i64 add: %c:i64 = add i64 %a, %b should lower to exactly
// ADDS Tlo, Alo, Blo; ADC Thi, Ahi, Bhi (register naming aside).
func TestLowerArithmeticI64AddIsAddsAdc(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	a := ir.NewVariable("a", ir.I64)
	b := ir.NewVariable("b", ir.I64)
	dest := ir.NewVariable("c", ir.I64)

	ctx.LowerArithmetic(ir.IArith{Op: ir.Add, Dest: dest, Src0: a, Src1: b})

	insts := ctx.Instructions()
	if len(insts) != 2 {
		t.Fatalf("len(insts) = %d, want 2: %#v", len(insts), insts)
	}
	adds, ok := insts[0].(ADDS)
	if !ok {
		t.Fatalf("insts[0] = %T, want ADDS", insts[0])
	}
	if adds.Dest != dest.Lo {
		t.Error("ADDS.Dest should be dest.Lo")
	}
	if adds.Src0 != a.Lo || adds.Src1 != b.Lo {
		t.Error("ADDS operands should be the lo halves of a and b")
	}
	adc, ok := insts[1].(ADC)
	if !ok {
		t.Fatalf("insts[1] = %T, want ADC", insts[1])
	}
	if adc.Dest != dest.Hi {
		t.Error("ADC.Dest should be dest.Hi")
	}
	if adc.Src0 != a.Hi || adc.Src1 != b.Hi {
		t.Error("ADC operands should be the hi halves of a and b")
	}
}

func TestLowerArithmeticI64SubIsSubsSbc(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	a := ir.NewVariable("a", ir.I64)
	b := ir.NewVariable("b", ir.I64)
	dest := ir.NewVariable("c", ir.I64)

	ctx.LowerArithmetic(ir.IArith{Op: ir.Sub, Dest: dest, Src0: a, Src1: b})

	insts := ctx.Instructions()
	if len(insts) != 2 {
		t.Fatalf("len(insts) = %d, want 2", len(insts))
	}
	if _, ok := insts[0].(SUBS); !ok {
		t.Errorf("insts[0] = %T, want SUBS", insts[0])
	}
	if _, ok := insts[1].(SBC); !ok {
		t.Errorf("insts[1] = %T, want SBC", insts[1])
	}
}

func TestLowerArithmeticI64MulSequence(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	a := ir.NewVariable("a", ir.I64)
	b := ir.NewVariable("b", ir.I64)
	dest := ir.NewVariable("c", ir.I64)

	ctx.LowerArithmetic(ir.IArith{Op: ir.Mul, Dest: dest, Src0: a, Src1: b})

	insts := ctx.Instructions()
	wantKinds := []string{"MUL", "MLA", "UMULL", "ADD"}
	if len(insts) != len(wantKinds) {
		t.Fatalf("len(insts) = %d, want %d", len(insts), len(wantKinds))
	}
	for i, want := range wantKinds {
		got := instKind(insts[i])
		if got != want {
			t.Errorf("insts[%d] = %s, want %s", i, got, want)
		}
	}
}

func instKind(inst Instruction) string {
	switch inst.(type) {
	case MUL:
		return "MUL"
	case MLA:
		return "MLA"
	case UMULL:
		return "UMULL"
	case ADD:
		return "ADD"
	default:
		return "?"
	}
}

// i64 shl:%r:i64 = shl i64 %b, %c lowers to the sub/rsb merge
// sequence from the original's GCC-4.8-derived Shl case: SUB Tc1, Clo,
// #32; LSL Thi, Bhi, Clo; ORR Thi, Thi, Blo LSL Tc1; RSB Tc2, Clo, #32;
// ORR Thi, Thi, Blo LSR Tc2; LSL Tlo, Blo, Clo.
func TestLowerArithmeticI64ShlSequence(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	b := ir.NewVariable("b", ir.I64)
	dest := ir.NewVariable("r", ir.I64)
	c := ir.ConstantInteger64{Value: 1}

	ctx.LowerArithmetic(ir.IArith{Op: ir.Shl, Dest: dest, Src0: b, Src1: c})

	insts := ctx.Instructions()
	wantKinds := []string{"SUB", "LSL", "ORR", "RSB", "ORR", "LSL"}
	if len(insts) != len(wantKinds) {
		t.Fatalf("len(insts) = %d, want %d: %#v", len(insts), len(wantKinds), insts)
	}
	for i, want := range wantKinds {
		if got := shiftInstKind(insts[i]); got != want {
			t.Errorf("insts[%d] = %s, want %s", i, got, want)
		}
	}
	sub := insts[0].(SUB)
	if sub.Src1 != (ir.ConstantInteger32{Ty: ir.I32, Value: 32}) {
		t.Errorf("first SUB should compute Clo-32, got Src1=%#v", sub.Src1)
	}
	firstOrr := insts[2].(ORR)
	flex, ok := firstOrr.Src1.(ir.FlexReg)
	if !ok || flex.ShiftKind != ir.LSL || flex.ShiftReg != sub.Dest {
		t.Errorf("first ORR should merge Blo LSL Tc1, got %#v", firstOrr.Src1)
	}
	rsb := insts[3].(RSB)
	if rsb.Src1 != (ir.ConstantInteger32{Ty: ir.I32, Value: 32}) {
		t.Errorf("RSB should compute 32-Clo, got Src1=%#v", rsb.Src1)
	}
	secondOrr := insts[4].(ORR)
	flex2, ok := secondOrr.Src1.(ir.FlexReg)
	if !ok || flex2.ShiftKind != ir.LSR || flex2.ShiftReg != rsb.Dest {
		t.Errorf("second ORR should merge Blo LSR Tc2, got %#v", secondOrr.Src1)
	}
	if secondOrr.Cond != AL {
		t.Errorf("Shl's second merge is unconditional, got Cond=%v", secondOrr.Cond)
	}
}

// i64 lshr:%r:i64 = lshr i64 0x1_00000000, 1 must produce
// {lo: 0x80000000, hi: 0}. Tc1 must be RSB(Clo,#32) = 32-Clo paired
// with an LSL merge (so Clo=1 gives a shift of 31, not a saturating
// shift of -31 truncated to >=32), and Tc2 must be SUB(Clo,#32) =
// Clo-32 paired with an unconditional LSR merge.
func TestLowerArithmeticI64LshrSequence(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	b := ir.NewVariable("b", ir.I64)
	dest := ir.NewVariable("r", ir.I64)
	c := ir.ConstantInteger64{Value: 1}

	ctx.LowerArithmetic(ir.IArith{Op: ir.Lshr, Dest: dest, Src0: b, Src1: c})

	insts := ctx.Instructions()
	wantKinds := []string{"RSB", "LSR", "ORR", "SUB", "ORR", "LSR"}
	if len(insts) != len(wantKinds) {
		t.Fatalf("len(insts) = %d, want %d: %#v", len(insts), len(wantKinds), insts)
	}
	for i, want := range wantKinds {
		if got := shiftInstKind(insts[i]); got != want {
			t.Errorf("insts[%d] = %s, want %s", i, got, want)
		}
	}
	cLo := ir.ConstantInteger32{Ty: ir.I32, Value: int32(c.Value)}
	rsb := insts[0].(RSB)
	if rsb.Src0 != cLo || rsb.Src1 != (ir.ConstantInteger32{Ty: ir.I32, Value: 32}) {
		t.Errorf("Tc1 should be RSB(Clo, #32) = 32-Clo, got %#v", rsb)
	}
	firstOrr := insts[2].(ORR)
	flex, ok := firstOrr.Src1.(ir.FlexReg)
	if !ok || flex.ShiftKind != ir.LSL || flex.ShiftReg != rsb.Dest {
		t.Errorf("first merge ORR should be Bhi LSL Tc1, got %#v", firstOrr.Src1)
	}
	sub := insts[3].(SUB)
	if sub.Src0 != cLo || sub.Src1 != (ir.ConstantInteger32{Ty: ir.I32, Value: 32}) {
		t.Errorf("Tc2 should be SUB(Clo, #32) = Clo-32, got %#v", sub)
	}
	secondOrr := insts[4].(ORR)
	flex2, ok := secondOrr.Src1.(ir.FlexReg)
	if !ok || flex2.ShiftKind != ir.LSR || flex2.ShiftReg != sub.Dest {
		t.Errorf("second merge ORR should be Bhi LSR Tc2, got %#v", secondOrr.Src1)
	}
	if secondOrr.Cond != AL {
		t.Errorf("Lshr's second merge is unconditional, got Cond=%v", secondOrr.Cond)
	}
	if _, ok := insts[5].(LSR); !ok {
		t.Errorf("Lshr's hi result should be an unsigned LSR, got %T", insts[5])
	}
}

// i64 ashr differs from lshr only in using SUBS (flags-setting) for
// Tc2, ASR instead of LSR for both the second merge and the hi result,
// and predicating the second merge ORR on PL (Clo>=32 keeps the sign bit
// intact in Bhi, so plain sign-extension there would double-count it).
func TestLowerArithmeticI64AshrSequence(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	b := ir.NewVariable("b", ir.I64)
	dest := ir.NewVariable("r", ir.I64)
	c := ir.ConstantInteger64{Value: 1}

	ctx.LowerArithmetic(ir.IArith{Op: ir.Ashr, Dest: dest, Src0: b, Src1: c})

	insts := ctx.Instructions()
	wantKinds := []string{"RSB", "LSR", "ORR", "SUBS", "ORR", "ASR"}
	if len(insts) != len(wantKinds) {
		t.Fatalf("len(insts) = %d, want %d: %#v", len(insts), len(wantKinds), insts)
	}
	for i, want := range wantKinds {
		if got := shiftInstKind(insts[i]); got != want {
			t.Errorf("insts[%d] = %s, want %s", i, got, want)
		}
	}
	cLo := ir.ConstantInteger32{Ty: ir.I32, Value: int32(c.Value)}
	subs := insts[3].(SUBS)
	if subs.Src0 != cLo || subs.Src1 != (ir.ConstantInteger32{Ty: ir.I32, Value: 32}) {
		t.Errorf("Tc2 should be SUBS(Clo, #32) = Clo-32, got %#v", subs)
	}
	secondOrr := insts[4].(ORR)
	flex, ok := secondOrr.Src1.(ir.FlexReg)
	if !ok || flex.ShiftKind != ir.ASR || flex.ShiftReg != subs.Dest {
		t.Errorf("second merge ORR should be Bhi ASR Tc2, got %#v", secondOrr.Src1)
	}
	if secondOrr.Cond != PL {
		t.Errorf("Ashr's second merge should be predicated PL, got Cond=%v", secondOrr.Cond)
	}
	if _, ok := insts[5].(ASR); !ok {
		t.Errorf("Ashr's hi result should be an arithmetic ASR, got %T", insts[5])
	}
}

func shiftInstKind(inst Instruction) string {
	switch inst.(type) {
	case SUB:
		return "SUB"
	case SUBS:
		return "SUBS"
	case RSB:
		return "RSB"
	case LSL:
		return "LSL"
	case LSR:
		return "LSR"
	case ASR:
		return "ASR"
	case ORR:
		return "ORR"
	default:
		return "?"
	}
}

func TestLowerArithmeticI32AddLegalizesFlexOperand(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	a := ir.NewVariable("a", ir.I32)
	dest := ir.NewVariable("c", ir.I32)

	ctx.LowerArithmetic(ir.IArith{Op: ir.Add, Dest: dest, Src0: a, Src1: ir32(5)})

	insts := ctx.Instructions()
	if len(insts) != 3 {
		t.Fatalf("len(insts) = %d, want 3 (copy src0 to reg, ADD, final MOV)", len(insts))
	}
	add, ok := insts[1].(ADD)
	if !ok {
		t.Fatalf("insts[1] = %T, want ADD", insts[1])
	}
	if flex, ok := add.Src1.(ir.FlexImm); !ok || flex.Value() != 5 {
		t.Errorf("ADD.Src1 = %#v, want FlexImm(5)", add.Src1)
	}
}
