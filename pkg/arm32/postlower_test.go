package arm32

import (
	"testing"

	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

func TestPostLowerFoldsMovIntoAdd(t *testing.T) {
	tmp := ir.NewVariable("%t1", ir.I32)
	src0 := ir.NewVariable("a", ir.I32)
	src1 := ir.NewVariable("b", ir.I32)
	insts := []Instruction{
		MOV{Dest: tmp, Src: src0},
		ADD{Dest: tmp, Src0: tmp, Src1: src1},
	}

	out := PostLower(insts, config.OptO2)

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (MOV folded into ADD)", len(out))
	}
	add, ok := out[0].(ADD)
	if !ok {
		t.Fatalf("out[0] = %T, want ADD", out[0])
	}
	if add.Src0 != src0 {
		t.Errorf("ADD.Src0 = %#v, want the original src0 (%#v)", add.Src0, src0)
	}
}

func TestPostLowerDoesNotFoldUnrelatedMov(t *testing.T) {
	tmp := ir.NewVariable("%t1", ir.I32)
	other := ir.NewVariable("%t2", ir.I32)
	src0 := ir.NewVariable("a", ir.I32)
	src1 := ir.NewVariable("b", ir.I32)
	insts := []Instruction{
		MOV{Dest: tmp, Src: src0},
		ADD{Dest: other, Src0: other, Src1: src1},
	}

	out := PostLower(insts, config.OptO2)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (unrelated MOV/ADD left untouched)", len(out))
	}
}

func TestPostLowerSkippedAtOm1(t *testing.T) {
	tmp := ir.NewVariable("%t1", ir.I32)
	src0 := ir.NewVariable("a", ir.I32)
	src1 := ir.NewVariable("b", ir.I32)
	insts := []Instruction{
		MOV{Dest: tmp, Src: src0},
		ADD{Dest: tmp, Src0: tmp, Src1: src1},
	}

	out := PostLower(insts, config.OptM1)

	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2 (PostLower is a no-op at -Om1)", len(out))
	}
}
