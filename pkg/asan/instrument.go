package asan

import "github.com/arm32cc/backend/pkg/ir"

// InstrumentFunction runs every per-function ASan rewrite in the order
// that keeps each stage's precondition intact: the entry alloca run is
// grown and redzoned first, since it depends on fn's original entry
// node; only then is the __asan_init hook prepended, shifting the
// entrypoint again. Every load, store, and allocator call in the body is
// instrumented next, and finally every return gets the accumulated
// unpoison list spliced in front of it. Callers translating many
// functions on one goroutine should call FinishFunc(dtors) after each.
func InstrumentFunction(in *Instrumentor, dtors *LocalDtors, fn *ir.Function) {
	InstrumentFuncStart(in, dtors, fn)
	InstrumentStart(in, fn)

	for node, inst := range snapshotCode(fn) {
		switch t := inst.(type) {
		case ir.ILoad:
			InstrumentLoad(fn, node, t)
		case ir.IStore:
			InstrumentStore(fn, node, t)
		case ir.ICall:
			InstrumentCall(fn, node, t)
		}
	}

	for node, inst := range snapshotCode(fn) {
		if _, ok := inst.(ir.IRet); ok {
			InstrumentRet(fn, node, dtors)
		}
	}
}
