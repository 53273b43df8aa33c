package pipeline

import (
	"testing"

	"github.com/arm32cc/backend/pkg/arm32"
)

func TestRandomlyInsertNopIsDeterministicForAGivenSeed(t *testing.T) {
	insts := []arm32.Instruction{
		arm32.LabelDef{Name: ".L0"},
		arm32.MOV{},
		arm32.ADD{},
		arm32.Ret{},
	}
	a := RandomlyInsertNop(insts, 42)
	b := RandomlyInsertNop(insts, 42)
	if len(a) != len(b) {
		t.Fatalf("same seed should produce the same nop count, got %d vs %d", len(a), len(b))
	}
	for i := range a {
		if _, aOK := a[i].(arm32.NOP); aOK != isNop(b[i]) {
			t.Fatalf("same seed should insert nops at the same positions")
		}
	}
}

func TestRandomlyInsertNopNeverPrecedesItself(t *testing.T) {
	insts := []arm32.Instruction{arm32.LabelDef{Name: ".L0"}, arm32.Ret{}}
	out := RandomlyInsertNop(insts, 1)
	if _, ok := out[0].(arm32.LabelDef); !ok {
		t.Fatalf("a NOP must never be inserted ahead of a LabelDef, got %+v", out)
	}
}

func isNop(inst arm32.Instruction) bool {
	_, ok := inst.(arm32.NOP)
	return ok
}
