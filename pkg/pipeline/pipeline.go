package pipeline

import (
	"fmt"
	"io"

	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/frame"
	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regalloc"
	"github.com/arm32cc/backend/pkg/regs"
)

// trace writes stage to w, if non-nil, the way the teacher's -dh/-drtl dump
// flags narrate which pass just ran.
func trace(w io.Writer, fn *ir.Function, stage string) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, "[%s] after %s\n", fn.Name, stage)
}

// stopped reports whether fn has entered its sticky error state, tracing
// the stage name that was about to run when it's checked right after a
// stage returns.
func stopped(fn *ir.Function, w io.Writer, stage string) bool {
	trace(w, fn, stage)
	return fn.Err() != nil
}

// Translate runs fn through the -O2 or -Om1 pipeline selected by
// flags.OptLevel (§4.6's translateO2/translateOm1) and returns the final
// ARM32 instruction stream, ready for pkg/frame's prolog/epilog and the
// assembly emitter. It checks fn.Err() after every stage and bails
// immediately once set, per §7's sticky-error contract, and recovers any
// ir.FatalError a lowering stage panics with (e.g. splitConst's
// unsupported-operand case) so one bad function can't take down a whole
// multi-function, concurrently-translated run (§5).
func Translate(fn *ir.Function, flags config.Flags, w io.Writer) (insts []arm32.Instruction, err error) {
	defer func() {
		if r := recover(); r != nil {
			fatal, ok := r.(ir.FatalError)
			if !ok {
				panic(r)
			}
			insts, err = nil, fatal
		}
	}()
	if flags.OptLevel == config.OptM1 {
		return translateOm1(fn, flags, w)
	}
	return translateO2(fn, flags, w)
}

// translateO2 runs the full optimizing pipeline: phi placement, the IR-level
// optimizations, code generation, full graph-coloring register allocation,
// frame generation, and the two code-shape cleanup passes that must run
// last. Mirrors the stage order TargetARM32::translateO2 runs (phi
// lowering, address-mode opt, argument lowering, code gen, regalloc, frame,
// contraction/reorder, branch opt, nop insertion), generalized to this
// target's node-map CFG and pkg/regalloc's graph-coloring allocator in
// place of linear scan.
func translateO2(fn *ir.Function, flags config.Flags, w io.Writer) ([]arm32.Instruction, error) {
	if err := lowerPhis(fn, flags); err != nil {
		return nil, err
	}
	if stopped(fn, w, "phi lowering") {
		return nil, fn.Err()
	}

	DoAddressOpt(fn)
	if stopped(fn, w, "address-mode optimization") {
		return nil, fn.Err()
	}

	DoArgLowering(fn)
	if stopped(fn, w, "argument lowering") {
		return nil, fn.Err()
	}

	insts := GenCode(fn, flags)
	if stopped(fn, w, "code generation") {
		return nil, fn.Err()
	}
	insts = arm32.PostLower(insts, flags.OptLevel)

	spilled, usedRegs := regalloc.ApplyAllocation(insts)
	if stopped(fn, w, "register allocation") {
		return nil, fn.Err()
	}

	insts = buildFrame(fn, flags, insts, spilled, usedRegs)
	if stopped(fn, w, "frame generation") {
		return nil, fn.Err()
	}

	insts = DoBranchOpt(insts)
	trace(w, fn, "branch optimization")

	if flags.RandomNopInsertion {
		insts = RandomlyInsertNop(insts, flags.RandomSeed)
		trace(w, fn, "nop insertion")
	}

	return insts, nil
}

// translateOm1 runs the fast, unoptimized debug pipeline: the same phi
// placement and argument-lowering stages, but no address-mode
// optimization, PostLower's two-address inference is not run,
// and register allocation is limited to infinite-weight variables
// (regalloc.ApplyFastAllocation) rather than full graph coloring —
// mirroring TargetARM32::translateOm1's "quick and dirty" RegAlloc_MinimalRegisterSet
// pass, which only colors variables the optimizer couldn't already prove
// didn't need one.
func translateOm1(fn *ir.Function, flags config.Flags, w io.Writer) ([]arm32.Instruction, error) {
	if err := lowerPhis(fn, flags); err != nil {
		return nil, err
	}
	if stopped(fn, w, "phi lowering") {
		return nil, fn.Err()
	}

	DoArgLowering(fn)
	if stopped(fn, w, "argument lowering") {
		return nil, fn.Err()
	}

	MarkCallSurvivors(fn)
	trace(w, fn, "basic liveness")

	insts := GenCode(fn, flags)
	if stopped(fn, w, "code generation") {
		return nil, fn.Err()
	}

	spilled, usedRegs := regalloc.ApplyFastAllocation(insts)
	if stopped(fn, w, "register allocation") {
		return nil, fn.Err()
	}

	insts = buildFrame(fn, flags, insts, spilled, usedRegs)
	if stopped(fn, w, "frame generation") {
		return nil, fn.Err()
	}

	if flags.RandomNopInsertion {
		insts = RandomlyInsertNop(insts, flags.RandomSeed)
		trace(w, fn, "nop insertion")
	}

	return insts, nil
}

// lowerPhis runs the three phi-placement passes named in §4.6 in order,
// translating ErrPhiEdgeSplittingUnsupported into fn's sticky error state
// so every caller can keep checking fn.Err() uniformly.
func lowerPhis(fn *ir.Function, flags config.Flags) error {
	PlacePhiLoads(fn)
	if err := PlacePhiStores(fn, flags); err != nil {
		fn.SetError(err.Error())
		return err
	}
	DeletePhis(fn)
	return nil
}

// buildFrame runs pkg/frame's layout/prolog/epilog sequence over insts,
// the §4.6 "frame generation" stage.
func buildFrame(fn *ir.Function, flags config.Flags, insts []arm32.Instruction, spilled []*ir.Variable, usedRegs map[regs.Reg]bool) []arm32.Instruction {
	globals, locals := regalloc.ClassifySpillBands(insts, spilled)
	layout := frame.ComputeLayout(fn, usedRegs, globals, locals)
	insts = append(frame.BuildProlog(layout), insts...)
	return frame.BuildEpilog(layout, flags, insts)
}
