// Package frame lays out activation records and builds the prolog/epilog
// instruction sequences that wrap a lowered function body, the way the
// original's TargetARM32::addProlog/addEpilog pair does once register
// allocation has assigned (or spilled) every variable.
package frame

import (
	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

// StackAlignmentBytes is ARM32's required stack alignment at a call
// boundary.
const StackAlignmentBytes = 16

// FrameLayout records the stack frame's area sizes, mirroring §4.5's
// seven-area picture: preserved registers, padding, globals, padding,
// locals, padding, allocas.
type FrameLayout struct {
	PreservedRegs           []regs.Reg
	PreservedRegsSizeBytes  int32
	SpillAreaPaddingBytes   int32
	GlobalsSize             int32
	GlobalsPaddingBytes     int32 // padding between the globals and locals bands
	LocalsSpillAreaSize     int32
	SpillAreaSizeBytes      int32 // areas 2-6: padding + globals + padding + locals
	SpillAreaAlignmentBytes int32
	UsesFramePointer        bool
}

// ComputeLayout determines preserved registers and the spill area size for
// fn. usedRegs is the set of physical registers (regs.Reg) the register
// allocator actually assigned somewhere in the function body; globals and
// locals are the two spill bands regalloc.ClassifySpillBands produces,
// separated by lifetime: globals span more than one basic block, locals
// stay confined to one, and each is packed and aligned as its own area
// per §4.5's picture (globals nearer the preserved-register area, then
// padding, then locals).
func ComputeLayout(fn *ir.Function, usedRegs map[regs.Reg]bool, globals, locals []*ir.Variable) *FrameLayout {
	layout := &FrameLayout{UsesFramePointer: fn.UsesFramePointer}

	if fn.UsesFramePointer {
		usedRegs = withReg(usedRegs, regs.FP)
	}
	if !fn.MaybeLeafFunc {
		usedRegs = withReg(usedRegs, regs.LR)
	}
	for r := regs.Reg(0); r < regs.NumRegs; r++ {
		preserved := regs.IsPreserved(r) || (fn.UsesFramePointer && r == regs.FP) || (!fn.MaybeLeafFunc && r == regs.LR)
		if preserved && usedRegs[r] {
			layout.PreservedRegs = append(layout.PreservedRegs, r)
			layout.PreservedRegsSizeBytes += 4
		}
	}

	layout.SpillAreaAlignmentBytes = maxSlotAlignment(4, globals, locals)

	layout.GlobalsSize = packSpillArea(globals, 0)
	localsBase := alignUp(layout.GlobalsSize, maxSlotAlignment(4, locals, nil))
	layout.GlobalsPaddingBytes = localsBase - layout.GlobalsSize
	layout.LocalsSpillAreaSize = packSpillArea(locals, localsBase) - localsBase

	layout.SpillAreaSizeBytes = layout.GlobalsSize + layout.GlobalsPaddingBytes + layout.LocalsSpillAreaSize

	layout.SpillAreaPaddingBytes = alignmentPadding(layout.PreservedRegsSizeBytes, layout.SpillAreaAlignmentBytes)
	layout.SpillAreaSizeBytes += layout.SpillAreaPaddingBytes

	if fn.NeedsStackAlignment {
		stackSize := applyStackAlignment(layout.PreservedRegsSizeBytes + layout.SpillAreaSizeBytes)
		layout.SpillAreaSizeBytes = stackSize - layout.PreservedRegsSizeBytes
	}

	// Stack-resident variables live above the preserved-register area and
	// any padding: [FP/SP + PreservedRegsSizeBytes + SpillAreaPaddingBytes
	// + their own offset within the globals/locals area].
	base := layout.PreservedRegsSizeBytes + layout.SpillAreaPaddingBytes
	for _, v := range globals {
		v.StackOffset += base
	}
	for _, v := range locals {
		v.StackOffset += base
	}

	return layout
}

// packSpillArea lays vars out consecutively starting at startOffset,
// each aligned to its own stack-slot width, and returns the offset one
// past the last variable (i.e. startOffset + the area's size).
func packSpillArea(vars []*ir.Variable, startOffset int32) int32 {
	offset := startOffset
	for _, v := range vars {
		w := int32(v.Ty.StackSlotWidth())
		offset = alignUp(offset, w)
		v.StackOffset = offset
		v.HasStackOffset = true
		offset += w
	}
	return offset
}

// maxSlotAlignment returns the widest stack-slot width across both
// bands (defaulting to floor), matching the original's habit of
// aligning the whole spill area to its widest member.
func maxSlotAlignment(floor int32, a, b []*ir.Variable) int32 {
	max := floor
	for _, vars := range [][]*ir.Variable{a, b} {
		for _, v := range vars {
			if w := int32(v.Ty.StackSlotWidth()); w > max {
				max = w
			}
		}
	}
	return max
}

func withReg(set map[regs.Reg]bool, r regs.Reg) map[regs.Reg]bool {
	out := make(map[regs.Reg]bool, len(set)+1)
	for k, v := range set {
		out[k] = v
	}
	out[r] = true
	return out
}

func alignUp(n, align int32) int32 {
	if align <= 0 {
		return n
	}
	return (n + align - 1) &^ (align - 1)
}

// alignmentPadding returns the bytes needed after a PreservedRegsSizeBytes
// region so the following spill area starts at its required alignment.
func alignmentPadding(afterBytes, alignment int32) int32 {
	if alignment == 0 {
		return 0
	}
	return alignUp(afterBytes, alignment) - afterBytes
}

// applyStackAlignment rounds n up to StackAlignmentBytes.
func applyStackAlignment(n int32) int32 {
	return alignUp(n, StackAlignmentBytes)
}
