package arm32

import "github.com/arm32cc/backend/pkg/ir"

// HelperSymbols maps the known intrinsics to the external helper
// trampoline named in §6.
var HelperSymbols = map[ir.Intrinsic]string{
	ir.Memcpy:     "memcpy",
	ir.Memmove:    "memmove",
	ir.Memset:     "memset",
	ir.Setjmp:     "setjmp",
	ir.Longjmp:    "longjmp",
	ir.NaClReadTP: "__nacl_read_tp",
}

// LowerIntrinsicCall implements §4.4's Intrinsic call contract: known
// intrinsics lower to a call to their helper symbol; memset's i8 value
// argument is zero-extended to i32 first because the ABI requires
// argument slots of at least 32 bits.
func (c *Context) LowerIntrinsicCall(fn *ir.Function, inst ir.IIntrinsicCall) {
	name, known := HelperSymbols[inst.Kind]
	if !known {
		c.skipOrError("unknown intrinsic is unimplemented")
		return
	}

	args := append([]ir.Operand(nil), inst.Args...)
	if inst.Kind == ir.Memset && len(args) >= 2 {
		if args[1].Type() == ir.I8 {
			v := c.legalizeToVar(args[1], ir.NoRegister)
			wide := c.zextTo32(v, ir.I8)
			args[1] = wide
		}
	}

	target := ir.ConstantRelocatable{Ty: ir.I32, Name: name}
	c.LowerCall(fn, ir.ICall{Target: target, Args: args, Dest: inst.Dest, Succ: inst.Succ})
}
