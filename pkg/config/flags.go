// Package config holds the translation-wide flags threaded through the
// pipeline by value, the way cmd/ralph-cc's main.go parses flags into
// local variables and passes them down rather than reaching for a global
// singleton.
package config

// OptLevel selects between the optimized and debug translation pipelines
// (§4.6's translateO2 vs translateOm1).
type OptLevel int

const (
	OptO2 OptLevel = iota
	OptM1
)

// Flags is the full set of translator-context properties named by spec.md.
type Flags struct {
	OptLevel OptLevel

	// SkipUnimplemented selects the §9/open-question-1 behavior: true
	// yields a partial but linkable object (nothing emitted, skip counted),
	// false escalates to Function.SetError.
	SkipUnimplemented bool

	// Sandboxed enables the NaCl-style sandboxed return sequence (§4.5,
	// §6).
	Sandboxed bool

	// RandomNopInsertion enables randomlyInsertNop in both the -O2 and
	// -Om1 pipelines.
	RandomNopInsertion bool
	RandomSeed          int64

	// PhiEdgeSplitting selects the advanced phi-lowering path. Only the
	// off (false) path is implemented; see SPEC_FULL.md open question 2.
	PhiEdgeSplitting bool

	// Asan enables the ASan instrumentation pass ahead of the pipeline.
	Asan bool
}
