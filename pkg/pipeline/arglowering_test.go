package pipeline

import (
	"testing"

	"github.com/arm32cc/backend/pkg/ir"
)

func TestDoArgLoweringPinsScalarParamsToArgRegisters(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{Args: []ir.Type{ir.I32, ir.I32}})
	p0 := ir.NewVariable("p0", ir.I32)
	p1 := ir.NewVariable("p1", ir.I32)
	fn.Params = []*ir.Variable{p0, p1}
	fn.Entrypoint = fn.Append(ir.IRet{Src: p0})

	DoArgLowering(fn)

	if fn.Err() != nil {
		t.Fatalf("unexpected error: %v", fn.Err())
	}
	if !p0.HasReg() || p0.RegNumber != 0 {
		t.Fatalf("p0 should be pinned to r0, got %v", p0.RegNumber)
	}
	if !p1.HasReg() || p1.RegNumber != 1 {
		t.Fatalf("p1 should be pinned to r1, got %v", p1.RegNumber)
	}
	if !p0.IsArg || !p1.IsArg {
		t.Fatalf("both params should be flagged IsArg")
	}
}

func TestDoArgLoweringSplitsI64ParamOnEvenRegisterPair(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{Args: []ir.Type{ir.I32, ir.I64}})
	p0 := ir.NewVariable("p0", ir.I32)
	p1 := ir.NewVariable("p1", ir.I64)
	fn.Params = []*ir.Variable{p0, p1}
	fn.Entrypoint = fn.Append(ir.IRet{Src: p0})

	DoArgLowering(fn)

	if fn.Err() != nil {
		t.Fatalf("unexpected error: %v", fn.Err())
	}
	if !p1.IsSplit() {
		t.Fatalf("i64 param should have been split")
	}
	if p1.Lo.RegNumber != 2 || p1.Hi.RegNumber != 3 {
		t.Fatalf("i64 param starting at register 1 should round up to r2:r3, got lo=%v hi=%v", p1.Lo.RegNumber, p1.Hi.RegNumber)
	}
}

func TestDoArgLoweringInsertsCopiesBeforeEachCall(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{})
	callee := ir.ConstantRelocatable{Ty: ir.I32, Name: "g"}
	arg := ir.ConstantInteger32{Ty: ir.I32, Value: 5}
	ret := fn.Append(ir.IRet{})
	call := fn.FreshNode()
	fn.Code[call] = ir.ICall{Target: callee, Args: []ir.Operand{arg}, Succ: ret}
	fn.Entrypoint = call

	DoArgLowering(fn)

	if fn.Err() != nil {
		t.Fatalf("unexpected error: %v", fn.Err())
	}
	inserted := fn.Code[call].Successors()
	if len(inserted) != 1 {
		t.Fatalf("call should still have one successor")
	}
	// Walking forward from the (possibly moved) call's own position: the
	// call itself must no longer be the entrypoint once a copy is spliced
	// ahead of it.
	if fn.Entrypoint == call {
		t.Fatalf("entrypoint should have moved to the inserted argument copy")
	}
	copyInst, ok := fn.Code[fn.Entrypoint].(ir.IAssign)
	if !ok {
		t.Fatalf("entrypoint should now be the inserted IAssign copy, got %T", fn.Code[fn.Entrypoint])
	}
	if copyInst.Src != arg {
		t.Fatalf("copy should move the literal call argument into the arg register")
	}
}
