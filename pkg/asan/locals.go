package asan

import "github.com/arm32cc/backend/pkg/ir"

// LocalDtors is the per-worker pending list of __asan_unpoison calls
// that InstrumentFuncStart promises and InstrumentRet later emits. The
// original keeps this in a thread-local slot lazily reinitialized per
// worker thread (§5, §9's design note); here a worker goroutine just
// owns one LocalDtors across every function it translates in turn — no
// locking needed, since nothing else ever touches it.
type LocalDtors struct {
	unpoison []ir.ICall
}

// FinishFunc implements §5's per-function cleanup: the list is emptied
// by truncating rather than reallocating, so the backing array is
// reused across every function the owning worker goes on to translate.
func FinishFunc(dtors *LocalDtors) {
	dtors.unpoison = dtors.unpoison[:0]
}
