package regalloc

import (
	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/ir"
)

// LivenessInfo is the result of backward dataflow over a lowered
// instruction stream: per-instruction live-in/live-out sets, plus the set
// of variables that are live across some call (a RegKill point), which
// restricts their eventual color to the callee-saved set.
type LivenessInfo struct {
	LiveIn          []RegSet
	LiveOut         []RegSet
	LiveAcrossCalls RegSet
}

// AnalyzeLiveness computes LivenessInfo for insts by iterating the
// standard backward equations
//
//	LiveOut[i] = union of LiveIn[s] for s in successors(i)
//	LiveIn[i]  = (LiveOut[i] - defs(i)) + uses(i)
//
// to a fixpoint, resolving successors from arm32.LabelDef/B targets the
// way the original's liveness pass walks CfgNode successors.
func AnalyzeLiveness(insts []arm32.Instruction) *LivenessInfo {
	n := len(insts)
	succs := successors(insts)
	liveIn := make([]RegSet, n)
	liveOut := make([]RegSet, n)
	for i := range insts {
		liveIn[i] = NewRegSet()
		liveOut[i] = NewRegSet()
	}

	for changed := true; changed; {
		changed = false
		for i := n - 1; i >= 0; i-- {
			for _, s := range succs[i] {
				if liveOut[i].Union(liveIn[s]) {
					changed = true
				}
			}
			defs, uses := defUse(insts[i])
			next := liveOut[i].Clone()
			for _, d := range defs {
				next.Remove(d)
			}
			for _, u := range uses {
				next.Add(u)
			}
			if !regSetEqual(next, liveIn[i]) {
				liveIn[i] = next
				changed = true
			}
		}
	}

	acrossCalls := NewRegSet()
	for i, inst := range insts {
		if _, ok := inst.(arm32.RegKill); !ok {
			continue
		}
		for v := range liveIn[i] {
			acrossCalls.Add(v)
		}
		for v := range liveOut[i] {
			acrossCalls.Add(v)
		}
	}

	return &LivenessInfo{LiveIn: liveIn, LiveOut: liveOut, LiveAcrossCalls: acrossCalls}
}

func regSetEqual(a, b RegSet) bool {
	if len(a) != len(b) {
		return false
	}
	for v := range a {
		if !b[v] {
			return false
		}
	}
	return true
}

// successors maps each instruction index to the indices that may execute
// immediately after it: the fallthrough index for everything but
// unconditional branches and terminal pseudo-instructions, plus the
// label-resolved target for B.
func successors(insts []arm32.Instruction) [][]int {
	labelIndex := make(map[arm32.Label]int)
	for i, inst := range insts {
		if ld, ok := inst.(arm32.LabelDef); ok {
			labelIndex[ld.Name] = i
		}
	}

	out := make([][]int, len(insts))
	for i, inst := range insts {
		switch t := inst.(type) {
		case arm32.B:
			target := labelIndex[t.Target]
			if t.Cond == arm32.AL {
				out[i] = []int{target}
			} else {
				out[i] = fallthroughOf(i, len(insts), target)
			}
		case arm32.Ret:
			out[i] = nil
		case arm32.BX:
			out[i] = nil
		default:
			out[i] = fallthroughOf(i, len(insts), -1)
		}
	}
	return out
}

func fallthroughOf(i, n, extra int) []int {
	var out []int
	if i+1 < n {
		out = append(out, i+1)
	}
	if extra >= 0 {
		out = append(out, extra)
	}
	return out
}

// defUse reports the variables an instruction writes and reads. MOVT is
// both: it leaves the destination's lower half untouched, so the prior
// value is a use as well as the new value being a def.
func defUse(inst arm32.Instruction) (defs, uses []*ir.Variable) {
	use := func(ops ...ir.Operand) {
		for _, op := range ops {
			uses = append(uses, operandVars(op)...)
		}
	}
	switch t := inst.(type) {
	case arm32.MOV:
		defs = append(defs, t.Dest)
		use(t.Src)
	case arm32.MOVW:
		defs = append(defs, t.Dest)
	case arm32.MOVT:
		defs = append(defs, t.Dest)
		uses = append(uses, t.Dest)
	case arm32.MVN:
		defs = append(defs, t.Dest)
		use(t.Src)
	case arm32.ADD:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.ADDS:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.ADC:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.SUB:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.SUBS:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.SBC:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.SBCS:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.RSB:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.MUL:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.MLA:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1, t.Acc)
	case arm32.UMULL:
		defs = append(defs, t.DestLo, t.DestHi)
		use(t.Src0, t.Src1)
	case arm32.SMULL:
		defs = append(defs, t.DestLo, t.DestHi)
		use(t.Src0, t.Src1)
	case arm32.SDIV:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.UDIV:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.AND:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.ORR:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.EOR:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.BIC:
		defs = append(defs, t.Dest)
		use(t.Src0, t.Src1)
	case arm32.LSL:
		defs = append(defs, t.Dest)
		use(t.Src, t.Shift)
	case arm32.LSR:
		defs = append(defs, t.Dest)
		use(t.Src, t.Shift)
	case arm32.ASR:
		defs = append(defs, t.Dest)
		use(t.Src, t.Shift)
	case arm32.SXTB:
		defs = append(defs, t.Dest)
		use(t.Src)
	case arm32.SXTH:
		defs = append(defs, t.Dest)
		use(t.Src)
	case arm32.UXTB:
		defs = append(defs, t.Dest)
		use(t.Src)
	case arm32.UXTH:
		defs = append(defs, t.Dest)
		use(t.Src)
	case arm32.CMP:
		use(t.Src0, t.Src1)
	case arm32.CMN:
		use(t.Src0, t.Src1)
	case arm32.TST:
		use(t.Src0, t.Src1)
	case arm32.LDR:
		defs = append(defs, t.Dest)
		uses = append(uses, memVars(t.Addr)...)
	case arm32.STR:
		uses = append(uses, memVars(t.Addr)...)
		use(t.Src)
	case arm32.BL:
		use(t.Target)
	case arm32.BLX:
		use(t.Target)
	case arm32.BX:
		use(t.Target)
	case arm32.FakeUse:
		uses = append(uses, t.Var)
	case arm32.Ret:
		if t.Value != nil {
			use(t.Value)
		}
	}
	return defs, uses
}

func operandVars(op ir.Operand) []*ir.Variable {
	switch t := op.(type) {
	case *ir.Variable:
		return []*ir.Variable{t}
	case ir.FlexReg:
		out := []*ir.Variable{t.Reg}
		if t.ShiftReg != nil {
			out = append(out, t.ShiftReg)
		}
		return out
	case *ir.MemOperand:
		return memVars(t)
	default:
		return nil
	}
}

func memVars(m *ir.MemOperand) []*ir.Variable {
	if m == nil {
		return nil
	}
	out := []*ir.Variable{m.Base}
	if m.Index != nil {
		out = append(out, m.Index)
	}
	return out
}
