package pipeline

import (
	"testing"

	"github.com/arm32cc/backend/pkg/ir"
)

func TestMarkCallSurvivorsFlagsVariableLiveAcrossACall(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{})
	a := ir.NewVariable("a", ir.I32)
	callee := ir.ConstantRelocatable{Ty: ir.I32, Name: "g"}

	ret := fn.Append(ir.IRet{Src: a})
	call := fn.FreshNode()
	fn.Code[call] = ir.ICall{Target: callee, Succ: ret}
	def := fn.FreshNode()
	fn.Code[def] = ir.IAssign{Dest: a, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}, Succ: call}
	fn.Entrypoint = def

	MarkCallSurvivors(fn)

	if !a.Wt.IsInf() {
		t.Fatalf("a is live across the call and should have been marked infinite weight")
	}
}

func TestMarkCallSurvivorsLeavesVariableThatDiesBeforeTheCallAlone(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{})
	a := ir.NewVariable("a", ir.I32)
	b := ir.NewVariable("b", ir.I32)
	callee := ir.ConstantRelocatable{Ty: ir.I32, Name: "g"}

	ret := fn.Append(ir.IRet{Src: b})
	call := fn.FreshNode()
	fn.Code[call] = ir.ICall{Target: callee, Dest: b, Succ: ret}
	useA := fn.FreshNode()
	fn.Code[useA] = ir.IAssign{Dest: b, Src: a, Succ: call}
	def := fn.FreshNode()
	fn.Code[def] = ir.IAssign{Dest: a, Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}, Succ: useA}
	fn.Entrypoint = def

	MarkCallSurvivors(fn)

	if a.Wt.IsInf() {
		t.Fatalf("a's last use is before the call, so it should not be flagged")
	}
}
