package regalloc

import (
	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

// node is one allocatable (register-less) variable's entry in the
// interference graph: its neighboring allocatable variables, the physical
// registers it can never take because a precolored variable holding that
// register is simultaneously live, and whether it is live across a call.
type node struct {
	v               *ir.Variable
	neighbors       map[*ir.Variable]bool
	forbidden       map[regs.Reg]bool
	liveAcrossCalls bool
}

// Graph is the interference graph built from a liveness analysis.
// Precolored (already register-pinned) variables are folded into each
// node's forbidden set rather than kept as graph nodes themselves, since
// they never need coloring and two precolored variables never conflict in
// a way this allocator cares about.
type Graph struct {
	Nodes map[*ir.Variable]*node
}

// BuildInterferenceGraph applies the standard def-interferes-with-live-out
// rule to every instruction: each variable a def writes conflicts with
// every other variable live immediately after it, the way the teacher's
// interference.go walks LivenessInfo to build its RTL graph.
func BuildInterferenceGraph(insts []arm32.Instruction, live *LivenessInfo) *Graph {
	g := &Graph{Nodes: make(map[*ir.Variable]*node)}
	get := func(v *ir.Variable) *node {
		if v == nil || v.HasReg() {
			return nil
		}
		n, ok := g.Nodes[v]
		if !ok {
			n = &node{v: v, neighbors: make(map[*ir.Variable]bool), forbidden: make(map[regs.Reg]bool)}
			g.Nodes[v] = n
			if live.LiveAcrossCalls.Contains(v) {
				n.liveAcrossCalls = true
			}
		}
		return n
	}

	for i := range insts {
		for v := range live.LiveIn[i] {
			get(v)
		}
		for v := range live.LiveOut[i] {
			get(v)
		}
	}

	addEdge := func(a, b *ir.Variable) {
		if a == b {
			return
		}
		na, nb := get(a), get(b)
		switch {
		case na != nil && nb != nil:
			na.neighbors[b] = true
			nb.neighbors[a] = true
		case na != nil && nb == nil:
			na.forbidden[regs.Reg(b.RegNumber)] = true
		case na == nil && nb != nil:
			nb.forbidden[regs.Reg(a.RegNumber)] = true
		}
	}

	for i, inst := range insts {
		defs, _ := defUse(inst)
		for _, d := range defs {
			for w := range live.LiveOut[i] {
				addEdge(d, w)
			}
		}
	}

	return g
}
