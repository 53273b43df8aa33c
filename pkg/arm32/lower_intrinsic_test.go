package arm32

import (
	"testing"

	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

func TestLowerIntrinsicCallMemcpyDispatchesToHelper(t *testing.T) {
	fn := newTestFunc("f")
	ctx := NewContext(fn, testFlags())

	ctx.LowerIntrinsicCall(fn, ir.IIntrinsicCall{Kind: ir.Memcpy})

	bl, ok := findKind[BL](ctx.Instructions())
	if !ok {
		t.Fatalf("expected a BL in %#v", ctx.Instructions())
	}
	rel, ok := bl.Target.(ir.ConstantRelocatable)
	if !ok || rel.Name != "memcpy" {
		t.Errorf("BL.Target = %#v, want ConstantRelocatable(\"memcpy\")", bl.Target)
	}
}

func TestLowerIntrinsicCallMemsetZextsI8Value(t *testing.T) {
	fn := newTestFunc("f")
	ctx := NewContext(fn, testFlags())
	dst := ir.NewVariable("dst", ir.I32)
	val := ir.NewVariable("val", ir.I8)
	n := ir.NewVariable("n", ir.I32)

	ctx.LowerIntrinsicCall(fn, ir.IIntrinsicCall{Kind: ir.Memset, Args: []ir.Operand{dst, val, n}})

	if _, ok := findKind[UXTB](ctx.Instructions()); !ok {
		t.Error("expected a UXTB widening memset's i8 value argument")
	}
}

func TestLowerIntrinsicCallUnknownIsSkippedOrErrored(t *testing.T) {
	fn := newTestFunc("f")
	ctx := NewContext(fn, config.Flags{SkipUnimplemented: true})

	ctx.LowerIntrinsicCall(fn, ir.IIntrinsicCall{Kind: ir.UnknownIntrinsic})

	if len(ctx.Instructions()) != 0 {
		t.Errorf("expected no instructions for a skipped unknown intrinsic, got %#v", ctx.Instructions())
	}
	if fn.SkippedCount != 1 {
		t.Errorf("SkippedCount = %d, want 1", fn.SkippedCount)
	}
}
