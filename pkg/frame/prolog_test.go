package frame

import (
	"testing"

	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

func findInst[T arm32.Instruction](insts []arm32.Instruction) (T, bool) {
	for _, inst := range insts {
		if t, ok := inst.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

func TestBuildPrologPushesPreservedRegsFirst(t *testing.T) {
	layout := &FrameLayout{PreservedRegs: []regs.Reg{regs.R4, regs.R5}, UsesFramePointer: false}

	insts := BuildProlog(layout)

	if len(insts) == 0 {
		t.Fatal("expected at least one instruction")
	}
	push, ok := insts[0].(arm32.PUSH)
	if !ok {
		t.Fatalf("insts[0] = %T, want PUSH", insts[0])
	}
	if len(push.Regs) != 2 || push.Regs[0] != regs.R4 || push.Regs[1] != regs.R5 {
		t.Errorf("PUSH.Regs = %v, want [r4, r5]", push.Regs)
	}
}

func TestBuildPrologMovesFPFromSPWhenUsed(t *testing.T) {
	layout := &FrameLayout{UsesFramePointer: true}

	insts := BuildProlog(layout)

	mov, ok := findInst[arm32.MOV](insts)
	if !ok {
		t.Fatalf("expected a MOV in %#v", insts)
	}
	if mov.Dest.RegNumber != ir.RegNum(regs.FP) {
		t.Errorf("MOV.Dest reg = %v, want FP", mov.Dest.RegNumber)
	}
	if _, ok := findInst[arm32.FakeUse](insts); !ok {
		t.Error("expected a FakeUse of FP to keep it live")
	}
}

func TestBuildPrologSubsSPByFlexImmWhenItFits(t *testing.T) {
	layout := &FrameLayout{SpillAreaSizeBytes: 32}

	insts := BuildProlog(layout)

	sub, ok := findInst[arm32.SUB](insts)
	if !ok {
		t.Fatalf("expected a SUB in %#v", insts)
	}
	if flex, ok := sub.Src1.(ir.FlexImm); !ok || flex.Value() != 32 {
		t.Errorf("SUB.Src1 = %#v, want FlexImm(32)", sub.Src1)
	}
}

func TestBuildPrologSubsSPThroughIPForUnencodableImm(t *testing.T) {
	layout := &FrameLayout{SpillAreaSizeBytes: 0x12345678}

	insts := BuildProlog(layout)

	if _, ok := findInst[arm32.MOVW](insts); !ok {
		t.Error("expected a MOVW materializing the SP adjustment through IP")
	}
	sub, ok := findInst[arm32.SUB](insts)
	if !ok {
		t.Fatalf("expected a SUB in %#v", insts)
	}
	ipVar, ok := sub.Src1.(*ir.Variable)
	if !ok || ipVar.RegNumber != ir.RegNum(regs.IP) {
		t.Errorf("SUB.Src1 = %#v, want the IP-pinned variable", sub.Src1)
	}
}

func TestBuildEpilogInsertsTeardownBeforeRet(t *testing.T) {
	layout := &FrameLayout{UsesFramePointer: true, PreservedRegs: []regs.Reg{regs.R4}}
	body := []arm32.Instruction{
		arm32.MOV{Dest: ir.NewVariable("r0", ir.I32), Src: ir.ConstantInteger32{Ty: ir.I32, Value: 1}},
		arm32.Ret{},
	}

	out := BuildEpilog(layout, config.Flags{}, body)

	if _, ok := findInst[arm32.POP](out); !ok {
		t.Error("expected a POP restoring preserved registers")
	}
	last := out[len(out)-1]
	if _, ok := last.(arm32.Ret); !ok {
		t.Errorf("last instruction = %T, want Ret (no sandboxing requested)", last)
	}
}

func TestBuildEpilogSandboxedReplacesRetWithBundleSequence(t *testing.T) {
	layout := &FrameLayout{}
	body := []arm32.Instruction{arm32.Ret{}}

	out := BuildEpilog(layout, config.Flags{Sandboxed: true}, body)

	if _, ok := findInst[arm32.BundleLock](out); !ok {
		t.Error("expected a BundleLock")
	}
	if _, ok := findInst[arm32.BIC](out); !ok {
		t.Error("expected a BIC masking LR")
	}
	if _, ok := findInst[arm32.BundleUnlock](out); !ok {
		t.Error("expected a BundleUnlock")
	}
	last := out[len(out)-1]
	if _, ok := last.(arm32.BundleUnlock); !ok {
		t.Errorf("last instruction = %T, want BundleUnlock", last)
	}
}

func TestBuildEpilogNoRetIsUnchanged(t *testing.T) {
	layout := &FrameLayout{PreservedRegs: []regs.Reg{regs.R4}}
	body := []arm32.Instruction{arm32.NOP{}}

	out := BuildEpilog(layout, config.Flags{}, body)

	if len(out) != 1 {
		t.Errorf("len(out) = %d, want 1 (unchanged, no Ret present)", len(out))
	}
}
