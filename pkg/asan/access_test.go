package asan

import (
	"testing"

	"github.com/arm32cc/backend/pkg/ir"
)

func TestInstrumentLoadInsertsCheckWithCorrectByteWidth(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{})
	base := ir.NewVariable("p", ir.I32)
	dest := ir.NewVariable("v", ir.I16)
	ret := fn.Append(ir.IRet{Src: dest})
	load := fn.FreshNode()
	fn.Code[load] = ir.ILoad{Dest: dest, Addr: base, Succ: ret}
	fn.Entrypoint = load

	InstrumentLoad(fn, load, fn.Code[load].(ir.ILoad))

	check := firstICall(t, fn, fn.Entrypoint)
	reloc := check.Target.(ir.ConstantRelocatable)
	if reloc.Name != "__asan_check" {
		t.Fatalf("expected a __asan_check call ahead of the load, got target %+v", check.Target)
	}
	width := check.Args[1].(ir.ConstantInteger32).Value
	if width != 2 {
		t.Fatalf("i16 load should check width 2, got %d", width)
	}
}

func TestInstrumentCallSubstitutesMallocAndFree(t *testing.T) {
	for _, tc := range []struct{ name, want string }{
		{"malloc", "__asan_malloc"},
		{"free", "__asan_free"},
	} {
		fn := ir.NewFunction("f", ir.Sig{})
		ret := fn.Append(ir.IRet{})
		callNode := fn.FreshNode()
		call := ir.ICall{Target: ir.ConstantRelocatable{Ty: ir.I32, Name: tc.name}, Succ: ret}
		fn.Code[callNode] = call
		fn.Entrypoint = callNode

		InstrumentCall(fn, callNode, call)

		got := fn.Code[callNode].(ir.ICall).Target.(ir.ConstantRelocatable).Name
		if got != tc.want {
			t.Fatalf("%s should have been substituted with %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestInstrumentCallLeavesUnrelatedCallsAlone(t *testing.T) {
	fn := ir.NewFunction("f", ir.Sig{})
	ret := fn.Append(ir.IRet{})
	callNode := fn.FreshNode()
	call := ir.ICall{Target: ir.ConstantRelocatable{Ty: ir.I32, Name: "strlen"}, Succ: ret}
	fn.Code[callNode] = call
	fn.Entrypoint = callNode

	InstrumentCall(fn, callNode, call)

	got := fn.Code[callNode].(ir.ICall).Target.(ir.ConstantRelocatable).Name
	if got != "strlen" {
		t.Fatalf("a non-substituted call target must be left alone, got %s", got)
	}
}

// firstICall walks fn from start, returning the first ICall it finds.
func firstICall(t *testing.T, fn *ir.Function, start ir.Node) ir.ICall {
	t.Helper()
	cur := start
	for {
		if call, ok := fn.Code[cur].(ir.ICall); ok {
			return call
		}
		succs := fn.Code[cur].Successors()
		if len(succs) == 0 {
			t.Fatalf("walked off the end without finding an ICall")
		}
		cur = succs[0]
	}
}
