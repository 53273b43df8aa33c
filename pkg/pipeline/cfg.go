// Package pipeline orchestrates the per-function translation stages named
// in §4.6: phi placement, address-mode optimization, argument lowering,
// liveness, code generation (dispatch into pkg/arm32), register
// allocation (pkg/regalloc), frame generation (pkg/frame), node
// reordering, branch optimization, and optional nop insertion. It mirrors
// the shape of the teacher's cmd/ralph-cc/main.go, which threads a
// function through one pass per stage and bails the moment the function
// enters its sticky error state.
package pipeline

import "github.com/arm32cc/backend/pkg/ir"

// setSuccessor returns a copy of inst with every successor edge equal to
// old replaced by new. Every ir.Instruction concrete type is a value
// stored directly in Function.Code, so rewiring a CFG edge means
// producing a modified copy and writing it back, not mutating through
// the interface.
func setSuccessor(inst ir.Instruction, old, new ir.Node) ir.Instruction {
	replace := func(n ir.Node) ir.Node {
		if n == old {
			return new
		}
		return n
	}
	switch t := inst.(type) {
	case ir.IArith:
		t.Succ = replace(t.Succ)
		return t
	case ir.IIcmp:
		t.Succ = replace(t.Succ)
		return t
	case ir.ICast:
		t.Succ = replace(t.Succ)
		return t
	case ir.IAssign:
		t.Succ = replace(t.Succ)
		return t
	case ir.IBr:
		t.IfTrue = replace(t.IfTrue)
		t.IfFalse = replace(t.IfFalse)
		return t
	case ir.ICall:
		t.Succ = replace(t.Succ)
		return t
	case ir.ILoad:
		t.Succ = replace(t.Succ)
		return t
	case ir.IStore:
		t.Succ = replace(t.Succ)
		return t
	case ir.IAlloca:
		t.Succ = replace(t.Succ)
		return t
	case ir.IIntrinsicCall:
		t.Succ = replace(t.Succ)
		return t
	case ir.IPhi:
		t.Succ = replace(t.Succ)
		return t
	case ir.IRet:
		return t
	default:
		return inst
	}
}

// redirectSuccessors rewrites every edge in fn that targets old to target
// new instead, including fn.Entrypoint when old is the entry node.
func redirectSuccessors(fn *ir.Function, old, new ir.Node) {
	if fn.Entrypoint == old {
		fn.Entrypoint = new
	}
	for n, inst := range fn.Code {
		for _, s := range inst.Successors() {
			if s == old {
				fn.Code[n] = setSuccessor(inst, old, new)
				break
			}
		}
	}
}

// insertBefore splices insts (in order) into fn immediately ahead of
// target, rewiring every existing predecessor of target to the first
// inserted instruction instead. Returns the node of the first inserted
// instruction, or target itself if insts is empty.
func insertBefore(fn *ir.Function, target ir.Node, insts ...ir.Instruction) ir.Node {
	if len(insts) == 0 {
		return target
	}
	nodes := make([]ir.Node, len(insts))
	for i := range insts {
		nodes[i] = fn.FreshNode()
	}
	// Redirect existing predecessors before the new nodes are wired in, so
	// the final new node's own edge into target isn't mistaken for one of
	// them and looped back onto nodes[0].
	redirectSuccessors(fn, target, nodes[0])
	for i, inst := range insts {
		next := target
		if i+1 < len(nodes) {
			next = nodes[i+1]
		}
		fn.Code[nodes[i]] = withSuccessor(inst, next)
	}
	return nodes[0]
}

// withSuccessor returns a copy of inst with its single successor field
// set to succ; it is only used for the single-successor instruction kinds
// insertBefore/removeNode ever synthesize or splice around (never IBr,
// which always names two explicit targets).
func withSuccessor(inst ir.Instruction, succ ir.Node) ir.Instruction {
	switch t := inst.(type) {
	case ir.IArith:
		t.Succ = succ
		return t
	case ir.IIcmp:
		t.Succ = succ
		return t
	case ir.ICast:
		t.Succ = succ
		return t
	case ir.IAssign:
		t.Succ = succ
		return t
	case ir.ICall:
		t.Succ = succ
		return t
	case ir.ILoad:
		t.Succ = succ
		return t
	case ir.IStore:
		t.Succ = succ
		return t
	case ir.IAlloca:
		t.Succ = succ
		return t
	case ir.IIntrinsicCall:
		t.Succ = succ
		return t
	case ir.IPhi:
		t.Succ = succ
		return t
	default:
		return inst
	}
}

// removeNode deletes a single-successor, side-effect-free node from fn,
// redirecting its predecessors to its own successor. Used by address-mode
// optimization to fold an Add into the memory operand it only fed, and
// by phi deletion.
func removeNode(fn *ir.Function, target ir.Node) {
	inst := fn.Code[target]
	succs := inst.Successors()
	if len(succs) != 1 {
		return
	}
	redirectSuccessors(fn, target, succs[0])
	delete(fn.Code, target)
}

// insertOnEdge splices insts between pred and target, redirecting only
// pred's own edge into target — unlike insertBefore, every other
// predecessor of target is left alone. Used by phi store placement,
// where each incoming edge must receive a different copy.
func insertOnEdge(fn *ir.Function, pred, target ir.Node, insts ...ir.Instruction) {
	if len(insts) == 0 {
		return
	}
	nodes := make([]ir.Node, len(insts))
	for i := range insts {
		nodes[i] = fn.FreshNode()
	}
	fn.Code[pred] = setSuccessor(fn.Code[pred], target, nodes[0])
	for i, inst := range insts {
		next := target
		if i+1 < len(nodes) {
			next = nodes[i+1]
		}
		fn.Code[nodes[i]] = withSuccessor(inst, next)
	}
}
