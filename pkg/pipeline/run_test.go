package pipeline

import (
	"testing"

	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

func TestRunTranslatesEveryFunctionConcurrently(t *testing.T) {
	prog := &ir.Program{
		Functions: []*ir.Function{incrementFunction(), incrementFunction()},
	}
	results := Run(prog, config.Flags{OptLevel: config.OptO2}, 2, nil)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: %v", i, r.Err)
		}
		if !hasRet(r.Insts) {
			t.Fatalf("result %d: expected a Ret in the final stream", i)
		}
	}
}

func TestRunWithAsanInstrumentsGlobalsAndFunctions(t *testing.T) {
	prog := &ir.Program{
		Globals:   []*ir.GlobVar{{Name: "g", Size: 4, Align: 4}},
		Functions: []*ir.Function{incrementFunction()},
	}
	results := Run(prog, config.Flags{OptLevel: config.OptO2, Asan: true}, 1, nil)

	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected result: %+v", results)
	}
	if len(prog.Globals) != 5 {
		t.Fatalf("expected the globals list to grow to array+sizes+left+g+right (5), got %d", len(prog.Globals))
	}
}
