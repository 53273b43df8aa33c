// Package asan implements §4.7's AddressSanitizer-style instrumentation
// pass: a separate IR-to-IR rewrite that runs ahead of pkg/pipeline,
// wrapping globals and stack allocations in redzones, substituting
// allocator calls, and checking every load/store address. Grounded on
// IceASanInstrumentation.cpp; the per-function pieces reuse the CFG
// splicing primitive pkg/pipeline/cfg.go also ports from the original's
// LoweringContext.insert.
package asan

import (
	"fmt"
	"sync/atomic"
)

// RzSize is the fixed redzone width in bytes (§3's data-model invariant:
// "Redzone sizes in ASan are exactly 32 bytes").
const RzSize = 32

const rzNamePrefix = "__$rz"

// RzArrayName and RzSizesName name the two globals InstrumentGlobals
// builds to describe every redzone it created; InstrumentStart's
// __asan_init call is handed pointers to both once they're finalized.
const (
	RzArrayName = "__$rz_array"
	RzSizesName = "__$rz_sizes"
)

// FuncSubstitutions names the allocator entry points InstrumentCall
// redirects to their checked wrappers. Handling every allocation
// function is future work, mirroring the original's own TODO; malloc
// and free are all spec.md asks for.
var FuncSubstitutions = map[string]string{
	"malloc": "__asan_malloc",
	"free":   "__asan_free",
}

// Instrumentor is the process-wide ASan state shared across every worker
// goroutine instrumenting a function: the monotonic redzone-name counter
// and the globals-finalization latch described in §5.
type Instrumentor struct {
	rzNum int32
	Gate  *GlobalsGate
}

// NewInstrumentor creates an Instrumentor with a fresh, unpublished gate.
func NewInstrumentor() *Instrumentor {
	return &Instrumentor{Gate: NewGlobalsGate()}
}

// nextRzName allocates the next "__$rzN" redzone name. Safe to call
// concurrently: InstrumentGlobals and every worker's InstrumentFuncStart
// share this one counter, exactly as the original's global RzNum does.
func (in *Instrumentor) nextRzName() string {
	n := atomic.AddInt32(&in.rzNum, 1) - 1
	return fmt.Sprintf("%s%d", rzNamePrefix, n)
}
