package arm32

// EmitHeader returns the assembly header lines emitted once per output
// file, bit-exact per §6: .syntax unified, the Cortex-A9 CPU directive,
// and the enumerated .eabi_attribute tags (IEEE 754 double-precision
// model, Thumb-2, VFP/NEON availability, ...).
func EmitHeader() []string {
	return []string{
		".syntax unified",
		`.eabi_attribute 67, "2.09"`,
		".cpu cortex-a9",
		".eabi_attribute 6, 10",  // Tag_CPU_arch: ARMv7
		".eabi_attribute 7, 65",  // Tag_CPU_arch_profile: Application
		".eabi_attribute 8, 1",   // Tag_ARM_ISA_use
		".eabi_attribute 9, 2",   // Tag_THUMB_ISA_use: Thumb-2
		".eabi_attribute 14, 0",  // Tag_ABI_PCS_R9_use: V6
		".eabi_attribute 17, 1",  // Tag_ABI_PCS_GOT_use
		".eabi_attribute 20, 1",  // Tag_ABI_FP_denormal
		".eabi_attribute 21, 1",  // Tag_ABI_FP_exceptions
		".eabi_attribute 23, 3",  // Tag_ABI_FP_number_model: IEEE 754
		".eabi_attribute 24, 1",  // Tag_ABI_align_needed
		".eabi_attribute 25, 1",  // Tag_ABI_align_preserved
		".eabi_attribute 28, 1",  // Tag_ABI_VFP_args
		".eabi_attribute 34, 1",  // Tag_CPU_unaligned_access
		".eabi_attribute 36, 1",  // Tag_FP_HP_extension
		".eabi_attribute 38, 1",  // Tag_ABI_FP_16bit_format
		".eabi_attribute 42, 1",  // Tag_MPextension_use
		".eabi_attribute 68, 3",  // Tag_Virtualization_use
	}
}
