package asan

import "github.com/arm32cc/backend/pkg/ir"

var initFunc = ir.ConstantRelocatable{Ty: ir.I32, Name: "__asan_init"}

// InstrumentStart implements §4.7's start hook: every function gets an
// __asan_init(count, array, sizes) call prepended at its entry. The
// count argument blocks on in.Gate until InstrumentGlobals has published
// the final redzone-globals count (§5); the wait happens on this
// function's own translation goroutine, so it never holds up any other
// worker.
func InstrumentStart(in *Instrumentor, fn *ir.Function) {
	count := in.Gate.Wait()
	call := ir.ICall{
		Target: initFunc,
		Args: []ir.Operand{
			ir.ConstantInteger32{Ty: ir.I32, Value: count},
			ir.ConstantRelocatable{Ty: ir.I32, Name: RzArrayName},
			ir.ConstantRelocatable{Ty: ir.I32, Name: RzSizesName},
		},
	}
	entry := fn.FreshNode()
	fn.Code[entry] = withSuccessor(call, fn.Entrypoint)
	fn.Entrypoint = entry
}
