package asan

import "github.com/arm32cc/backend/pkg/ir"

// setSuccessor, redirectSuccessors, withSuccessor, insertBefore and
// snapshotCode mirror pkg/pipeline/cfg.go's CFG-splicing primitives: the
// instrumentation pass is its own IR-to-IR rewrite that runs ahead of
// pkg/pipeline (§2's data flow) and needs the same "splice a straight
// run of instructions in front of a node" operation the original's
// LoweringContext.insert provides both passes, so it carries its own
// copy rather than reaching into package pipeline.

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

// insertBefore splices insts (in order) into fn immediately ahead of
// target, rewiring every existing predecessor of target — including
// fn.Entrypoint, when target is the entry node — to the first inserted
// instruction instead.
func insertBefore(fn *ir.Function, target ir.Node, insts ...ir.Instruction) ir.Node {
	if len(insts) == 0 {
		return target
	}
	nodes := make([]ir.Node, len(insts))
	for i := range insts {
		nodes[i] = fn.FreshNode()
	}
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

// snapshotCode returns a point-in-time copy of fn.Code so callers can
// rewrite the live map (inserting or replacing nodes) while iterating
// over what used to be there.
func snapshotCode(fn *ir.Function) map[ir.Node]ir.Instruction {
	out := make(map[ir.Node]ir.Instruction, len(fn.Code))
	for n, inst := range fn.Code {
		out[n] = inst
	}
	return out
}
