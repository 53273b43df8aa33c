package asan

import "github.com/arm32cc/backend/pkg/ir"

var checkFunc = ir.ConstantRelocatable{Ty: ir.I32, Name: "__asan_check"}

// InstrumentCall implements §4.7's "allocator substitution" rule: a
// direct call to a name in FuncSubstitutions is redirected to its
// checked wrapper in place, preserving every argument and the tailcall
// flag. Indirect calls and calls to any other name are left alone.
func InstrumentCall(fn *ir.Function, node ir.Node, call ir.ICall) {
	target, ok := call.Target.(ir.ConstantRelocatable)
	if !ok {
		return
	}
	subst, ok := FuncSubstitutions[target.Name]
	if !ok {
		return
	}
	call.Target = ir.ConstantRelocatable{Ty: target.Ty, Name: subst, Offset: target.Offset}
	fn.Code[node] = call
}

// InstrumentLoad and InstrumentStore implement §4.7's "loads/stores"
// rule: every access gets a __asan_check(addr, byte_width) call
// immediately ahead of it.
func InstrumentLoad(fn *ir.Function, node ir.Node, load ir.ILoad) {
	instrumentAccess(fn, node, load.Addr, load.Dest.Ty.ByteWidth())
}

func InstrumentStore(fn *ir.Function, node ir.Node, store ir.IStore) {
	instrumentAccess(fn, node, store.Addr, store.Src.Type().ByteWidth())
}

func instrumentAccess(fn *ir.Function, node ir.Node, addr ir.Operand, width int) {
	check := ir.ICall{
		Target: checkFunc,
		Args:   []ir.Operand{addr, ir.ConstantInteger32{Ty: ir.I32, Value: int32(width)}},
	}
	insertBefore(fn, node, check)
}
