// Package regalloc assigns physical registers to the virtual variables a
// lowered ARM32 instruction stream still references, the way the teacher's
// pkg/regalloc does Iterated Register Coalescing over RTL — ported here to
// operate directly on *ir.Variable nodes and regs.Reg colors instead of
// rtl.Reg/ltl.MReg, since the pack's own liveness.go/RegSet substrate that
// interference.go and irc.go were written against is missing from the
// retrieval copy.
package regalloc

import "github.com/arm32cc/backend/pkg/ir"

// RegSet is a set of live variables at some program point.
type RegSet map[*ir.Variable]bool

func NewRegSet() RegSet { return make(RegSet) }

func (s RegSet) Add(v *ir.Variable)      { s[v] = true }
func (s RegSet) Remove(v *ir.Variable)   { delete(s, v) }
func (s RegSet) Contains(v *ir.Variable) bool { return s[v] }

func (s RegSet) Clone() RegSet {
	out := make(RegSet, len(s))
	for v := range s {
		out[v] = true
	}
	return out
}

// Union adds every member of other into s and reports whether s changed.
func (s RegSet) Union(other RegSet) bool {
	changed := false
	for v := range other {
		if !s[v] {
			s[v] = true
			changed = true
		}
	}
	return changed
}

func (s RegSet) Slice() []*ir.Variable {
	out := make([]*ir.Variable, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}
