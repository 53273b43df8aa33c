package regalloc

import (
	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/ir"
)

// ClassifySpillBands splits spilled into the two lifetime bands
// pkg/frame packs into separate stack areas: globals, whose live range
// touches more than one basic block, and locals, confined to a single
// block. This mirrors the original's Variable::isMultiblockLife check,
// computed here from block membership of every def/use site rather than
// a flag carried on the variable itself.
func ClassifySpillBands(insts []arm32.Instruction, spilled []*ir.Variable) (globals, locals []*ir.Variable) {
	block := blockIndices(insts)

	want := make(map[*ir.Variable]bool, len(spilled))
	for _, v := range spilled {
		want[v] = true
	}

	firstBlock := make(map[*ir.Variable]int, len(spilled))
	multi := make(map[*ir.Variable]bool, len(spilled))
	for i, inst := range insts {
		defs, uses := defUse(inst)
		b := block[i]
		for _, v := range defs {
			markBlock(v, b, want, firstBlock, multi)
		}
		for _, v := range uses {
			markBlock(v, b, want, firstBlock, multi)
		}
	}

	for _, v := range spilled {
		if multi[v] {
			globals = append(globals, v)
		} else {
			locals = append(locals, v)
		}
	}
	return globals, locals
}

func markBlock(v *ir.Variable, b int, want map[*ir.Variable]bool, firstBlock map[*ir.Variable]int, multi map[*ir.Variable]bool) {
	if !want[v] {
		return
	}
	if fb, seen := firstBlock[v]; seen {
		if fb != b {
			multi[v] = true
		}
		return
	}
	firstBlock[v] = b
}

// blockIndices assigns each instruction index the ordinal of the basic
// block it belongs to; a new block begins at every label definition.
func blockIndices(insts []arm32.Instruction) []int {
	out := make([]int, len(insts))
	block := 0
	for i, inst := range insts {
		if _, ok := inst.(arm32.LabelDef); ok {
			block++
		}
		out[i] = block
	}
	return out
}
