package regalloc

import (
	"testing"

	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/ir"
)

func TestClassifySpillBandsSeparatesMultiBlockFromSingleBlock(t *testing.T) {
	g := ir.NewVariable("g", ir.I32)
	l := ir.NewVariable("l", ir.I32)
	insts := []arm32.Instruction{
		arm32.MOV{Dest: g, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}},
		arm32.B{Target: "next", Cond: arm32.AL},
		arm32.LabelDef{Name: "next"},
		arm32.MOV{Dest: l, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 2}},
		arm32.ADD{Dest: l, Src0: l, Src1: l},
		arm32.FakeUse{Var: g},
		arm32.Ret{},
	}

	globals, locals := ClassifySpillBands(insts, []*ir.Variable{g, l})

	if len(globals) != 1 || globals[0] != g {
		t.Errorf("globals = %v, want [g] (defined in block 0, used in block 1)", globals)
	}
	if len(locals) != 1 || locals[0] != l {
		t.Errorf("locals = %v, want [l] (defined and used only within block 1)", locals)
	}
}

func TestClassifySpillBandsTreatsSingleUseAsLocal(t *testing.T) {
	l := ir.NewVariable("l", ir.I32)
	insts := []arm32.Instruction{
		arm32.MOV{Dest: l, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}},
		arm32.Ret{Value: l},
	}

	globals, locals := ClassifySpillBands(insts, []*ir.Variable{l})

	if len(globals) != 0 {
		t.Errorf("globals = %v, want none", globals)
	}
	if len(locals) != 1 || locals[0] != l {
		t.Errorf("locals = %v, want [l]", locals)
	}
}
