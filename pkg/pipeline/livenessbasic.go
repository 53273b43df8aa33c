package pipeline

import "github.com/arm32cc/backend/pkg/ir"

// MarkCallSurvivors implements §4.6's basic-liveness stage: a backward
// fixpoint dataflow over the portable IR, run purely to find which
// variables are live across an ICall and flag them SetWeightInfinite.
// -Om1's fast allocator (pkg/regalloc.ApplyFastAllocation) only offers a
// real register to infinite-weight variables and stack-homes everything
// else outright; call-survivors are exactly the values that allocator
// would otherwise reload most expensively, so they're worth keeping in
// registers even at -Om1. The full-interval liveness pkg/regalloc itself
// runs (AnalyzeLiveness) operates later, over the final ARM32 stream once
// registers are legalized, and is unaffected by this pass.
func MarkCallSurvivors(fn *ir.Function) {
	liveIn := make(map[ir.Node]map[*ir.Variable]bool, len(fn.Code))
	liveOut := make(map[ir.Node]map[*ir.Variable]bool, len(fn.Code))
	for n := range fn.Code {
		liveIn[n] = make(map[*ir.Variable]bool)
		liveOut[n] = make(map[*ir.Variable]bool)
	}

	for changed := true; changed; {
		changed = false
		for n, inst := range fn.Code {
			out := make(map[*ir.Variable]bool)
			for _, s := range inst.Successors() {
				for v := range liveIn[s] {
					out[v] = true
				}
			}
			def, uses := irDefUse(inst)
			in := make(map[*ir.Variable]bool, len(out)+len(uses))
			for v := range out {
				in[v] = true
			}
			if def != nil {
				delete(in, def)
			}
			for _, v := range uses {
				in[v] = true
			}
			if !setEqual(in, liveIn[n]) {
				liveIn[n] = in
				changed = true
			}
			if !setEqual(out, liveOut[n]) {
				liveOut[n] = out
				changed = true
			}
		}
	}

	for n, inst := range fn.Code {
		if _, ok := inst.(ir.ICall); !ok {
			continue
		}
		for v := range liveIn[n] {
			if liveOut[n][v] {
				v.SetWeightInfinite()
			}
		}
	}
}

// irDefUse returns the variable inst defines (nil for instructions with no
// destination) and every variable its operands read, covering every
// portable-IR instruction kind.
func irDefUse(inst ir.Instruction) (def *ir.Variable, uses []*ir.Variable) {
	add := func(op ir.Operand) {
		if v, ok := op.(*ir.Variable); ok {
			uses = append(uses, v)
		}
	}
	switch t := inst.(type) {
	case ir.IArith:
		def = t.Dest
		add(t.Src0)
		add(t.Src1)
	case ir.IIcmp:
		def = t.Dest
		add(t.Src0)
		add(t.Src1)
	case ir.ICast:
		def = t.Dest
		add(t.Src)
	case ir.IAssign:
		def = t.Dest
		add(t.Src)
	case ir.IBr:
		add(t.Cond)
	case ir.ICall:
		def = t.Dest
		add(t.Target)
		for _, a := range t.Args {
			add(a)
		}
	case ir.IRet:
		add(t.Src)
	case ir.ILoad:
		def = t.Dest
		add(t.Addr)
	case ir.IStore:
		add(t.Addr)
		add(t.Src)
	case ir.IAlloca:
		def = t.Dest
		add(t.Size)
	case ir.IIntrinsicCall:
		def = t.Dest
		for _, a := range t.Args {
			add(a)
		}
	case ir.IPhi:
		def = t.Dest
		for _, a := range t.Args {
			add(a)
		}
	}
	return def, uses
}

func setEqual(a, b map[*ir.Variable]bool) bool {
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
