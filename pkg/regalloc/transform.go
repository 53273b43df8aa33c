package regalloc

import (
	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

// ApplyAllocation runs liveness, interference, and coloring over insts and
// mutates every register-less *ir.Variable it reaches in place via
// SetReg. Unlike the teacher's TransformFunction, which rebuilds a
// separate LTL function because RTL values are loc-less integers, this
// back end's arm32.Instruction stream already holds *ir.Variable pointers
// directly, so applying an allocation is just writing through those
// shared pointers — no second instruction stream to build.
//
// It returns every variable the allocator could not color (the Frame
// Builder must give these a stack slot via frame.ComputeLayout) and the
// set of physical registers now used somewhere in the function, which
// frame.ComputeLayout needs to decide which callee-saved registers the
// prolog/epilog must preserve.
func ApplyAllocation(insts []arm32.Instruction) (spilled []*ir.Variable, usedRegs map[regs.Reg]bool) {
	live := AnalyzeLiveness(insts)
	graph := BuildInterferenceGraph(insts, live)
	result := Allocate(graph)

	usedRegs = make(map[regs.Reg]bool)
	for v, r := range result.Colors {
		v.SetReg(ir.RegNum(r))
		usedRegs[r] = true
	}
	spilled = result.Spilled

	for _, inst := range insts {
		defs, uses := defUse(inst)
		for _, v := range append(defs, uses...) {
			if v.HasReg() {
				usedRegs[regs.Reg(v.RegNumber)] = true
			}
		}
	}

	return spilled, usedRegs
}

// ApplyFastAllocation is the -Om1 counterpart to ApplyAllocation: only
// variables the IR already marked as infinite weight (live across a call,
// per pkg/pipeline's basic liveness pass) or that arrived as an incoming
// argument are offered a color at all. Every other variable is forced
// straight onto the stack without ever entering the interference graph,
// skipping simplify/spill search entirely — the fast, unoptimized
// allocator the debug pipeline uses in place of full graph coloring.
// Leaving a variable out of the graph is still sound: a node that was
// never admitted never receives a color, so no colored neighbor can ever
// conflict with its (nonexistent) register.
func ApplyFastAllocation(insts []arm32.Instruction) (spilled []*ir.Variable, usedRegs map[regs.Reg]bool) {
	live := AnalyzeLiveness(insts)
	full := BuildInterferenceGraph(insts, live)

	g := &Graph{Nodes: make(map[*ir.Variable]*node)}
	for v, n := range full.Nodes {
		if v.Wt.IsInf() || v.IsArg {
			g.Nodes[v] = n
			continue
		}
		spilled = append(spilled, v)
	}

	result := Allocate(g)
	usedRegs = make(map[regs.Reg]bool)
	for v, r := range result.Colors {
		v.SetReg(ir.RegNum(r))
		usedRegs[r] = true
	}
	spilled = append(spilled, result.Spilled...)

	for _, inst := range insts {
		defs, uses := defUse(inst)
		for _, v := range append(defs, uses...) {
			if v.HasReg() {
				usedRegs[regs.Reg(v.RegNumber)] = true
			}
		}
	}

	return spilled, usedRegs
}
