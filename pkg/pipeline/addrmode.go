package pipeline

import "github.com/arm32cc/backend/pkg/ir"

// DoAddressOpt implements §4.6's address-mode optimization bullet: when a
// load or store's address is exactly the result of an IArith Add of a
// base variable and a constant offset, and that Add has no other use,
// fold the add directly into the load/store's Addr as a pre-formed
// *ir.MemOperand and delete the Add. pkg/arm32's formMemoryOperand
// already accepts a pre-formed MemOperand as input for exactly this
// reason — this is the pass responsible for producing one. Folds the
// common single-offset case only; chained base+index*scale addressing
// is left to the teacher's plain-stdlib legalizer to form conservatively
// at codegen time (LegalMem's offset-0 fallback), since the original's
// own address-opt pass is similarly narrow about which shapes it folds.
func DoAddressOpt(fn *ir.Function) {
	uses := countUses(fn)
	for node, inst := range snapshotCode(fn) {
		switch t := inst.(type) {
		case ir.ILoad:
			if mem, addNode := foldAddr(fn, t.Addr, uses); mem != nil {
				t.Addr = mem
				fn.Code[node] = t
				removeNode(fn, addNode)
			}
		case ir.IStore:
			if mem, addNode := foldAddr(fn, t.Addr, uses); mem != nil {
				t.Addr = mem
				fn.Code[node] = t
				removeNode(fn, addNode)
			}
		}
	}
}

// foldAddr recognizes addr as the *ir.Variable result of a single-use
// IArith{Op: Add, Src1: ConstantInteger32} and returns the equivalent
// MemOperand plus the node defining that Add, so the caller can delete
// it once it splices the fold in. Returns (nil, 0) when addr doesn't
// match that shape.
func foldAddr(fn *ir.Function, addr ir.Operand, uses map[*ir.Variable]int) (*ir.MemOperand, ir.Node) {
	v, ok := addr.(*ir.Variable)
	if !ok || uses[v] != 1 {
		return nil, 0
	}
	defNode, arith, ok := findArithDef(fn, v)
	if !ok || arith.Op != ir.Add {
		return nil, 0
	}
	base, ok := arith.Src0.(*ir.Variable)
	if !ok {
		return nil, 0
	}
	imm, ok := arith.Src1.(ir.ConstantInteger32)
	if !ok {
		return nil, 0
	}
	return &ir.MemOperand{Ty: v.Ty, Base: base, Offset: imm.Value, Mode: ir.Offset}, defNode
}

func findArithDef(fn *ir.Function, v *ir.Variable) (ir.Node, ir.IArith, bool) {
	for node, inst := range fn.Code {
		if a, ok := inst.(ir.IArith); ok && a.Dest == v {
			return node, a, true
		}
	}
	return 0, ir.IArith{}, false
}

// countUses counts, across every instruction's Src/Args/Addr operands
// (not Dest), how many times each variable is read — used to decide
// whether folding an Add away is safe (its result must have no other
// reader).
func countUses(fn *ir.Function) map[*ir.Variable]int {
	counts := make(map[*ir.Variable]int)
	add := func(op ir.Operand) {
		if v, ok := op.(*ir.Variable); ok {
			counts[v]++
		}
	}
	for _, inst := range fn.Code {
		switch t := inst.(type) {
		case ir.IArith:
			add(t.Src0)
			add(t.Src1)
		case ir.IIcmp:
			add(t.Src0)
			add(t.Src1)
		case ir.ICast:
			add(t.Src)
		case ir.IAssign:
			add(t.Src)
		case ir.IBr:
			add(t.Cond)
		case ir.ICall:
			add(t.Target)
			for _, arg := range t.Args {
				add(arg)
			}
		case ir.IRet:
			add(t.Src)
		case ir.ILoad:
			add(t.Addr)
		case ir.IStore:
			add(t.Addr)
			add(t.Src)
		case ir.IAlloca:
			add(t.Size)
		case ir.IIntrinsicCall:
			for _, arg := range t.Args {
				add(arg)
			}
		case ir.IPhi:
			for _, arg := range t.Args {
				add(arg)
			}
		}
	}
	return counts
}
