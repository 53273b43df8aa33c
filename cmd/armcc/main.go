// Command armcc is a debug-oriented front end for the ARM32 back end,
// the way the teacher's cmd/ralph-cc is a CLI built to exercise
// compilation passes rather than stand in for a production compiler.
// Since parsing real C source is out of scope here, armcc takes the
// portable IR directly as a YAML fixture (pkg/ir/testfixture) and runs
// it through the translation pipeline, dumping the resulting ARM32
// instructions as text.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir/testfixture"
	"github.com/arm32cc/backend/pkg/pipeline"
)

var version = "0.1.0"

var (
	optM1             bool
	sandboxed         bool
	skipUnimplemented bool
	asan              bool
	randomNop         bool
	randomSeed        int64
	workers           int
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "armcc [fixture.yaml]",
		Short:         "armcc translates a portable-IR fixture to ARM32 assembly text",
		Long: `armcc reads a YAML-described program (pkg/ir/testfixture's grammar),
builds it into the ARM32 back end's portable IR, and runs it through the
translation pipeline (§5's worker pool, optionally ASan-instrumented),
printing the resulting instruction stream in GNU as syntax.`,
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doTranslate(args[0], out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.Flags().BoolVar(&optM1, "om1", false, "use the -Om1 (debug) translation pipeline instead of -O2")
	rootCmd.Flags().BoolVar(&sandboxed, "sandboxed", false, "emit the NaCl-style sandboxed return sequence")
	rootCmd.Flags().BoolVar(&skipUnimplemented, "skip-unimplemented", false, "emit nothing (and count the skip) rather than erroring on an unimplemented lowering")
	rootCmd.Flags().BoolVar(&asan, "asan", false, "run the AddressSanitizer instrumentation pass ahead of translation")
	rootCmd.Flags().BoolVar(&randomNop, "random-nop-insertion", false, "randomly insert nops into the translated code")
	rootCmd.Flags().Int64Var(&randomSeed, "random-seed", 0, "seed for --random-nop-insertion")
	rootCmd.Flags().IntVar(&workers, "workers", 1, "number of worker goroutines translating functions concurrently")

	return rootCmd
}

func doTranslate(filename string, out, errOut io.Writer) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(errOut, "armcc: error reading %s: %v\n", filename, err)
		return err
	}

	fixture, err := testfixture.Parse(data)
	if err != nil {
		fmt.Fprintf(errOut, "armcc: error parsing %s: %v\n", filename, err)
		return err
	}

	prog, err := fixture.Build()
	if err != nil {
		fmt.Fprintf(errOut, "armcc: error building %s: %v\n", filename, err)
		return err
	}

	flags := config.Flags{
		Sandboxed:          sandboxed,
		SkipUnimplemented:  skipUnimplemented,
		Asan:               asan,
		RandomNopInsertion: randomNop,
		RandomSeed:         randomSeed,
	}
	if optM1 {
		flags.OptLevel = config.OptM1
	}

	results := pipeline.Run(prog, flags, workers, errOut)

	var failed bool
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(errOut, "armcc: %s: %v\n", r.Name, r.Err)
			failed = true
			continue
		}
		p := arm32.NewPrinter(out)
		p.PrintFunction(r.Name, r.Insts)
	}
	if failed {
		return fmt.Errorf("armcc: translation failed")
	}
	return nil
}
