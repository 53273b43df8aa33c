package arm32

import (
	"testing"

	"github.com/arm32cc/backend/pkg/ir"
)

func findKind[T Instruction](insts []Instruction) (T, bool) {
	for _, inst := range insts {
		if t, ok := inst.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

func TestLowerSextI8To32UsesSXTB(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I8)
	dest := ir.NewVariable("d", ir.I32)

	ctx.LowerCast(ir.ICast{Kind: ir.Sext, Dest: dest, Src: src})

	insts := ctx.Instructions()
	if _, ok := findKind[SXTB](insts); !ok {
		t.Errorf("expected an SXTB in %#v", insts)
	}
}

func TestLowerSextI1To64ShiftsAndArithShiftsHi(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I1)
	dest := ir.NewVariable("d", ir.I64)

	ctx.LowerCast(ir.ICast{Kind: ir.Sext, Dest: dest, Src: src})

	insts := ctx.Instructions()
	if _, ok := findKind[LSL](insts); !ok {
		t.Error("expected an LSL #31 widening step")
	}
	asrCount := countKind(insts, func(i Instruction) bool { _, ok := i.(ASR); return ok })
	if asrCount != 2 {
		t.Errorf("expected two ASR instructions (narrow + hi-fill), got %d", asrCount)
	}
}

func TestLowerZextI1UsesAndMask(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I1)
	dest := ir.NewVariable("d", ir.I32)

	ctx.LowerCast(ir.ICast{Kind: ir.Zext, Dest: dest, Src: src})

	insts := ctx.Instructions()
	and, ok := findKind[AND](insts)
	if !ok {
		t.Fatalf("expected an AND mask in %#v", insts)
	}
	if imm, ok := and.Src1.(ir.ConstantInteger32); !ok || imm.Value != 1 {
		t.Errorf("AND mask = %#v, want #1", and.Src1)
	}
}

func TestLowerZextI64ZeroesHiWord(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I8)
	dest := ir.NewVariable("d", ir.I64)

	ctx.LowerCast(ir.ICast{Kind: ir.Zext, Dest: dest, Src: src})

	insts := ctx.Instructions()
	zeroHiMov := countKind(insts, func(i Instruction) bool {
		mv, ok := i.(MOV)
		if !ok {
			return false
		}
		c, ok := mv.Src.(ir.ConstantInteger32)
		return ok && c.Value == 0 && mv.Dest == dest.Hi
	})
	if zeroHiMov != 1 {
		t.Errorf("expected exactly one MOV dest.Hi, #0, got %d", zeroHiMov)
	}
}

func TestLowerTruncToI1MasksLowBit(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I32)
	dest := ir.NewVariable("d", ir.I1)

	ctx.LowerCast(ir.ICast{Kind: ir.Trunc, Dest: dest, Src: src})

	insts := ctx.Instructions()
	and, ok := findKind[AND](insts)
	if !ok {
		t.Fatalf("expected an AND mask in %#v", insts)
	}
	if imm, ok := and.Src1.(ir.ConstantInteger32); !ok || imm.Value != 1 {
		t.Errorf("AND mask = %#v, want #1", and.Src1)
	}
}

func TestLowerTruncI64UsesLoHalf(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I64)
	dest := ir.NewVariable("d", ir.I32)

	ctx.LowerCast(ir.ICast{Kind: ir.Trunc, Dest: dest, Src: src})

	insts := ctx.Instructions()
	finalMov := countKind(insts, func(i Instruction) bool {
		mv, ok := i.(MOV)
		return ok && mv.Dest == dest
	})
	if finalMov != 1 {
		t.Errorf("expected exactly one MOV to dest, got %d", finalMov)
	}
}

func TestLowerBitcastSameTypeIsPlainMove(t *testing.T) {
	ctx := NewContext(newTestFunc("f"), testFlags())
	src := ir.NewVariable("s", ir.I32)
	dest := ir.NewVariable("d", ir.I32)

	ctx.LowerCast(ir.ICast{Kind: ir.Bitcast, Dest: dest, Src: src})

	insts := ctx.Instructions()
	if len(insts) == 0 {
		t.Fatal("expected at least one instruction")
	}
	last := insts[len(insts)-1]
	mv, ok := last.(MOV)
	if !ok || mv.Dest != dest {
		t.Errorf("last instruction = %#v, want MOV to dest", last)
	}
}
