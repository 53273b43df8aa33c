package regalloc

import (
	"sort"

	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

// Allocator runs the simplify/spill/select phases of Chaitin-Briggs
// graph-coloring register allocation over a Graph, ported from the shape
// of the teacher's IRC worklists (simplifyWorklist/spillWorklist/
// selectStack) but colored with regs.Reg instead of ltl.MReg and without
// the move-coalescing worklists: coalescing needs a liveness substrate
// finer than whole-variable live sets to stay safe, which the pack's own
// copy of this algorithm never supplied either (its liveness.go/RegSet
// are absent), so this is the optimistic select-and-spill core on its
// own — still correct, just without the extra copies coalescing removes.
type Allocator struct {
	graph *Graph
	k     int

	selectStack  []*ir.Variable
	removed      map[*ir.Variable]bool
	effectiveDeg map[*ir.Variable]int
}

// Result is the outcome of Allocate: every colorable variable's assigned
// physical register, and every variable that could not be colored and
// must be homed on the stack instead.
type Result struct {
	Colors  map[*ir.Variable]regs.Reg
	Spilled []*ir.Variable
}

// NewAllocator builds an Allocator over g with K colors (the int GPRs
// available to the allocator).
func NewAllocator(g *Graph) *Allocator {
	a := &Allocator{
		graph:        g,
		k:            len(regs.AllocatableIntRegs),
		removed:      make(map[*ir.Variable]bool),
		effectiveDeg: make(map[*ir.Variable]int),
	}
	for v, n := range g.Nodes {
		a.effectiveDeg[v] = len(n.neighbors) + len(n.forbidden)
	}
	return a
}

// Allocate runs simplify/spill/select to completion and returns the
// resulting color assignment and spill set.
func Allocate(g *Graph) *Result {
	a := NewAllocator(g)
	a.buildSelectStack()
	return a.selectColors()
}

// buildSelectStack repeatedly removes a node with effective degree below
// K (simplify) or, when none remains, the highest-degree remaining node
// as an optimistic potential spill, decrementing neighbors' effective
// degree as each node is removed — the teacher's simplify/spillWorklist
// split collapsed into one ordering pass since actual spill-vs-color is
// decided during select, not here.
func (a *Allocator) buildSelectStack() {
	remaining := make([]*ir.Variable, 0, len(a.graph.Nodes))
	for v := range a.graph.Nodes {
		remaining = append(remaining, v)
	}
	sort.Slice(remaining, func(i, j int) bool { return remaining[i].Name < remaining[j].Name })

	for len(a.selectStack) < len(a.graph.Nodes) {
		pick := -1
		for i, v := range remaining {
			if a.removed[v] {
				continue
			}
			if a.effectiveDeg[v] < a.k {
				pick = i
				break
			}
		}
		if pick == -1 {
			maxDeg, maxIdx := -1, -1
			for i, v := range remaining {
				if a.removed[v] {
					continue
				}
				if a.effectiveDeg[v] > maxDeg {
					maxDeg, maxIdx = a.effectiveDeg[v], i
				}
			}
			pick = maxIdx
		}
		if pick == -1 {
			break
		}
		v := remaining[pick]
		a.removed[v] = true
		a.selectStack = append(a.selectStack, v)
		for w := range a.graph.Nodes[v].neighbors {
			if !a.removed[w] {
				a.effectiveDeg[w]--
			}
		}
	}
}

// selectColors pops the stack in reverse removal order, assigning each
// variable the first physical register not already taken by an
// already-colored neighbor or forbidden by a simultaneously-live
// precolored variable. Variables live across a call are restricted to
// the callee-saved subset so a call's caller-saved clobbers never reach
// them, the LiveAcrossCalls gate named in §4.1/§8.
func (a *Allocator) selectColors() *Result {
	colors := make(map[*ir.Variable]regs.Reg)
	var spilled []*ir.Variable

	for i := len(a.selectStack) - 1; i >= 0; i-- {
		v := a.selectStack[i]
		n := a.graph.Nodes[v]

		used := make(map[regs.Reg]bool, len(n.forbidden))
		for r := range n.forbidden {
			used[r] = true
		}
		for w := range n.neighbors {
			if c, ok := colors[w]; ok {
				used[c] = true
			}
		}

		pool := regs.AllocatableIntRegs
		if n.liveAcrossCalls {
			pool = calleeSavedOnly(pool)
		}

		assigned := false
		for _, r := range pool {
			if !used[r] {
				colors[v] = r
				assigned = true
				break
			}
		}
		if !assigned {
			spilled = append(spilled, v)
		}
	}

	return &Result{Colors: colors, Spilled: spilled}
}

func calleeSavedOnly(pool []regs.Reg) []regs.Reg {
	out := make([]regs.Reg, 0, len(pool))
	for _, r := range pool {
		if regs.IsPreserved(r) {
			out = append(out, r)
		}
	}
	return out
}
