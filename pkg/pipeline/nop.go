package pipeline

import (
	"math/rand"

	"github.com/arm32cc/backend/pkg/arm32"
)

// nopProbability is the per-instruction chance of inserting a NOP ahead of
// it under config.Flags.RandomNopInsertion, matching the original's fixed
// 1-in-8-ish jitter used to shake out branch/alignment-sensitive bugs in
// the emitter without hand-writing them.
const nopProbability = 0.125

// RandomlyInsertNop inserts a NOP immediately before some fraction of
// insts' real instructions (never before a LabelDef, since that would
// move a branch target), seeded from seed so a given -Om1 run is
// reproducible.
func RandomlyInsertNop(insts []arm32.Instruction, seed int64) []arm32.Instruction {
	rng := rand.New(rand.NewSource(seed))
	out := make([]arm32.Instruction, 0, len(insts))
	for _, inst := range insts {
		if _, isLabel := inst.(arm32.LabelDef); !isLabel && rng.Float64() < nopProbability {
			out = append(out, arm32.NOP{})
		}
		out = append(out, inst)
	}
	return out
}
