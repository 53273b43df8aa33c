// Package regs is the ARM32 register model: physical register identifiers,
// their caller/callee-save classification, and the reserved roles the rest
// of the back end depends on (§4.1).
package regs

// Reg is a physical ARM32 general-purpose register index, 0..15.
type Reg int8

const (
	R0 Reg = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11 // FP, the frame pointer when UsesFramePointer
	R12 // IP, inter-procedural scratch used by legalization
	R13 // SP, the stack pointer
	R14 // LR, the link register
	R15 // PC
	NumRegs
)

// FP, IP, SP, LR, PC are the conventional aliases for the reserved roles.
const (
	FP = R11
	IP = R12
	SP = R13
	LR = R14
	PC = R15
)

func (r Reg) String() string {
	names := [...]string{
		"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7",
		"r8", "r9", "r10", "fp", "ip", "sp", "lr", "pc",
	}
	if int(r) < len(names) {
		return names[r]
	}
	return "?"
}

// calleeSaved is r4..r11: preserved across calls, pushed/popped by the
// callee when used.
var calleeSaved = map[Reg]bool{
	R4: true, R5: true, R6: true, R7: true,
	R8: true, R9: true, R10: true, R11: true,
}

// IsPreserved reports whether r is a callee-saved GPR that the Frame
// Builder must push/pop if the function clobbers it.
func IsPreserved(r Reg) bool { return calleeSaved[r] }

// IsScratch reports whether r is caller-saved (the callee may clobber it
// freely): r0..r3 and r12, disjoint from IsPreserved by construction.
// sp/lr/pc are special and belong to neither partition.
func IsScratch(r Reg) bool {
	switch r {
	case R0, R1, R2, R3, R12:
		return true
	default:
		return false
	}
}

// ArgRegs are the AAPCS-subset argument GPRs, in order.
var ArgRegs = []Reg{R0, R1, R2, R3}

// AllocatableIntRegs are the GPRs available to the register allocator:
// the argument/scratch registers plus the callee-saved set, excluding the
// reserved roles (FP, IP, SP, LR, PC).
var AllocatableIntRegs = []Reg{R0, R1, R2, R3, R4, R5, R6, R7, R8, R9, R10}

// Mask is a bitset over {CallerSave, CalleeSave, StackPointer, FramePointer}
// used by RegisterSet's include/exclude arguments.
type Mask uint8

const (
	CallerSave Mask = 1 << iota
	CalleeSave
	StackPointer
	FramePointer
)

// RegisterSet returns the bitset of physical register indices selected by
// include, with bits in exclude cleared afterward. Include sets bits
// first, then exclude clears them — the contract named in §4.1.
func RegisterSet(include, exclude Mask) []bool {
	set := make([]bool, NumRegs)
	apply := func(mask Mask, fn func(Reg) bool) {
		for r := Reg(0); r < NumRegs; r++ {
			if fn(r) {
				set[r] = true
			}
		}
	}
	if include&CallerSave != 0 {
		apply(include, IsScratch)
	}
	if include&CalleeSave != 0 {
		apply(include, IsPreserved)
	}
	if include&StackPointer != 0 {
		set[SP] = true
	}
	if include&FramePointer != 0 {
		set[FP] = true
	}

	if exclude&CallerSave != 0 {
		for r := Reg(0); r < NumRegs; r++ {
			if IsScratch(r) {
				set[r] = false
			}
		}
	}
	if exclude&CalleeSave != 0 {
		for r := Reg(0); r < NumRegs; r++ {
			if IsPreserved(r) {
				set[r] = false
			}
		}
	}
	if exclude&StackPointer != 0 {
		set[SP] = false
	}
	if exclude&FramePointer != 0 {
		set[FP] = false
	}
	return set
}
