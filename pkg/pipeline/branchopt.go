package pipeline

import "github.com/arm32cc/backend/pkg/arm32"

// DoBranchOpt drops every unconditional B whose target is the label
// immediately following it — a branch to the very next instruction is a
// no-op once that instruction is already going to execute by falling
// through. Must run after node reordering and before nop insertion, per
// §4.6: nop insertion would otherwise separate a branch from the label it
// could have elided.
func DoBranchOpt(insts []arm32.Instruction) []arm32.Instruction {
	out := make([]arm32.Instruction, 0, len(insts))
	for i, inst := range insts {
		if b, ok := inst.(arm32.B); ok && b.Cond == arm32.AL {
			if lbl, ok := nextLabel(insts, i+1); ok && lbl == b.Target {
				continue
			}
		}
		out = append(out, inst)
	}
	return out
}

func nextLabel(insts []arm32.Instruction, i int) (arm32.Label, bool) {
	if i >= len(insts) {
		return "", false
	}
	ld, ok := insts[i].(arm32.LabelDef)
	if !ok {
		return "", false
	}
	return ld.Name, true
}
