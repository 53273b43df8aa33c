package arm32

import (
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

// PostLower runs the two-address instruction inference pass at -O2 only,
// never at -Om1, per TargetARM32::postLower. ARM's natural encoding is
// "dest, src0 [, src1]"; when dest and src0 already name the same
// register this collapses the preceding MOV the legalizer inserted,
// trimming a redundant copy that only existed to keep the three-address
// IR shape.
func PostLower(insts []Instruction, opt config.OptLevel) []Instruction {
	if opt == config.OptM1 {
		return insts
	}
	return inferTwoAddress(insts)
}

func inferTwoAddress(insts []Instruction) []Instruction {
	out := make([]Instruction, 0, len(insts))
	for i := 0; i < len(insts); i++ {
		if i+1 < len(insts) {
			if mv, ok := insts[i].(MOV); ok {
				if folded, didFold := tryFold(mv, insts[i+1]); didFold {
					out = append(out, folded)
					i++
					continue
				}
			}
		}
		out = append(out, insts[i])
	}
	return out
}

// tryFold drops a `MOV tmp, src0` immediately followed by an arithmetic
// instruction whose Src0 is exactly that tmp and whose Dest is also tmp,
// rewriting it to read src0 directly — the two-address collapse.
func tryFold(mv MOV, next Instruction) (Instruction, bool) {
	tmp := mv.Dest
	switch n := next.(type) {
	case ADD:
		if n.Dest == tmp && sameVar(n.Src0, tmp) {
			n.Src0 = mv.Src
			return n, true
		}
	case SUB:
		if n.Dest == tmp && sameVar(n.Src0, tmp) {
			n.Src0 = mv.Src
			return n, true
		}
	case AND:
		if n.Dest == tmp && sameVar(n.Src0, tmp) {
			n.Src0 = mv.Src
			return n, true
		}
	case ORR:
		if n.Dest == tmp && sameVar(n.Src0, tmp) {
			n.Src0 = mv.Src
			return n, true
		}
	case EOR:
		if n.Dest == tmp && sameVar(n.Src0, tmp) {
			n.Src0 = mv.Src
			return n, true
		}
	}
	return next, false
}

func sameVar(op ir.Operand, v *ir.Variable) bool {
	other, ok := op.(*ir.Variable)
	return ok && other == v
}
