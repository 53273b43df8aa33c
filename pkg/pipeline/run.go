package pipeline

import (
	"io"
	"sync"

	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/asan"
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

// FuncResult is one function's translation outcome, indexed back to its
// position in the Program's function list so Run's caller can match
// results up without relying on completion order.
type FuncResult struct {
	Name  string
	Insts []arm32.Instruction
	Err   error
}

// Run implements §5's worker pool: up to workers goroutines translate
// the program's functions concurrently, each owning exactly one function
// (and, when ASan is enabled, its own asan.LocalDtors across every
// function it goes on to handle) at a time. When flags.Asan is set, the
// one-time global instrumentation pass runs concurrently with the
// worker pool rather than ahead of it, so InstrumentStart's wait on the
// globals gate is a real synchronization point and not a formality.
func Run(prog *ir.Program, flags config.Flags, workers int, w io.Writer) []FuncResult {
	var instrumentor *asan.Instrumentor
	var globalsDone chan struct{}
	if flags.Asan {
		instrumentor = asan.NewInstrumentor()
		globalsDone = make(chan struct{})
		go func() {
			defer close(globalsDone)
			prog.Globals = asan.InstrumentGlobals(instrumentor, prog.Globals)
		}()
	}

	if workers < 1 {
		workers = 1
	}

	type job struct {
		idx int
		fn  *ir.Function
	}
	jobs := make(chan job)
	results := make([]FuncResult, len(prog.Functions))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dtors := &asan.LocalDtors{}
			for j := range jobs {
				if flags.Asan {
					asan.InstrumentFunction(instrumentor, dtors, j.fn)
					asan.FinishFunc(dtors)
				}
				insts, err := Translate(j.fn, flags, w)
				results[j.idx] = FuncResult{Name: j.fn.Name, Insts: insts, Err: err}
			}
		}()
	}

	for i, fn := range prog.Functions {
		jobs <- job{idx: i, fn: fn}
	}
	close(jobs)
	wg.Wait()
	if globalsDone != nil {
		<-globalsDone
	}

	return results
}
