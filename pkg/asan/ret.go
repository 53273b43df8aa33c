package asan

import "github.com/arm32cc/backend/pkg/ir"

// InstrumentRet implements §4.7's return rule: every __asan_unpoison
// call dtors has accumulated for this function is spliced in, in order,
// immediately ahead of the return.
func InstrumentRet(fn *ir.Function, node ir.Node, dtors *LocalDtors) {
	if len(dtors.unpoison) == 0 {
		return
	}
	calls := make([]ir.Instruction, len(dtors.unpoison))
	for i, c := range dtors.unpoison {
		calls[i] = c
	}
	insertBefore(fn, node, calls...)
}
