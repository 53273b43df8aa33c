package asan

import (
	"testing"

	"github.com/arm32cc/backend/pkg/ir"
)

// twoAllocaFunction builds a function with two constant-size allocas at
// its entry followed by a single return, mirroring spec scenario S4's
// shape (scaled to two allocas so property 7's "+1" is exercised).
func twoAllocaFunction(t *testing.T) (*ir.Function, ir.Node, ir.Node) {
	t.Helper()
	fn := ir.NewFunction("f", ir.Sig{})
	d0 := ir.NewVariable("a0", ir.I32)
	d1 := ir.NewVariable("a1", ir.I32)

	ret := fn.Append(ir.IRet{})
	a1 := fn.FreshNode()
	fn.Code[a1] = ir.IAlloca{Dest: d1, Size: ir.ConstantInteger32{Ty: ir.I32, Value: 40}, Succ: ret}
	a0 := fn.FreshNode()
	fn.Code[a0] = ir.IAlloca{Dest: d0, Size: ir.ConstantInteger32{Ty: ir.I32, Value: 40}, Succ: a1}
	fn.Entrypoint = a0
	return fn, a0, ret
}

func TestInstrumentFuncStartGrowsAllocaPerScenario(t *testing.T) {
	fn, a0, _ := twoAllocaFunction(t)
	in := NewInstrumentor()
	dtors := &LocalDtors{}

	InstrumentFuncStart(in, dtors, fn)

	grown := fn.Code[a0].(ir.IAlloca)
	sz := grown.Size.(ir.ConstantInteger32).Value
	// S4: 40 + 32 + pad_to(40,32)=40+32+24=96.
	if sz != 96 {
		t.Fatalf("expected grown alloca size 96 per scenario S4, got %d", sz)
	}
	if grown.Align != allocaAlign {
		t.Fatalf("expected alloca alignment %d, got %d", allocaAlign, grown.Align)
	}
}

func TestInstrumentFuncStartRecordsOneUnpoisonPerAllocaPlusLeftmost(t *testing.T) {
	fn, _, ret := twoAllocaFunction(t)
	in := NewInstrumentor()
	dtors := &LocalDtors{}

	InstrumentFuncStart(in, dtors, fn)
	if len(dtors.unpoison) != 3 {
		t.Fatalf("2 allocas + 1 leftmost redzone should produce 3 pending unpoison calls, got %d", len(dtors.unpoison))
	}

	InstrumentRet(fn, ret, dtors)
	count := countUnpoisonCallsBefore(fn, ret)
	if count != 3 {
		t.Fatalf("property 7: expected 3 __asan_unpoison calls ahead of ret, got %d", count)
	}
}

func TestInstrumentFuncStartOnFunctionWithNoAllocasIsANoOp(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{})
	ret := fn.Append(ir.IRet{})
	fn.Entrypoint = ret
	in := NewInstrumentor()
	dtors := &LocalDtors{}

	InstrumentFuncStart(in, dtors, fn)

	if fn.Entrypoint != ret {
		t.Fatalf("a function with no entry allocas must be left untouched, entrypoint now %v", fn.Entrypoint)
	}
	if len(dtors.unpoison) != 0 {
		t.Fatalf("expected no pending unpoison calls, got %d", len(dtors.unpoison))
	}
}

// countUnpoisonCallsBefore walks fn from its entrypoint to target,
// counting __asan_unpoison calls encountered along the way.
func countUnpoisonCallsBefore(fn *ir.Function, target ir.Node) int {
	count := 0
	cur := fn.Entrypoint
	for cur != target {
		call, ok := fn.Code[cur].(ir.ICall)
		if ok {
			if reloc, ok := call.Target.(ir.ConstantRelocatable); ok && reloc.Name == "__asan_unpoison" {
				count++
			}
		}
		succs := fn.Code[cur].Successors()
		if len(succs) == 0 {
			break
		}
		cur = succs[0]
	}
	return count
}
