package arm32

import "github.com/arm32cc/backend/pkg/ir"

// LowerLoad implements §4.4's Load contract: reduce the address to a
// canonical memory operand, then issue one LDR for scalars or two (lo/hi)
// for i64.
func (c *Context) LowerLoad(inst ir.ILoad) {
	mem := c.formMemoryOperand(inst.Addr, inst.Dest.Ty)
	if inst.Dest.Ty == ir.I64 {
		lo, hi := Split64(inst.Dest)
		c.emit(LDR{Dest: lo, Addr: mem})
		hiMem := HiOperand(c, mem).(*ir.MemOperand)
		c.emit(LDR{Dest: hi, Addr: hiMem})
		return
	}
	c.emit(LDR{Dest: inst.Dest, Addr: mem})
}

// LowerStore implements §4.4's Store contract, symmetric to LowerLoad.
func (c *Context) LowerStore(inst ir.IStore) {
	ty := inst.Src.Type()
	mem := c.formMemoryOperand(inst.Addr, ty)
	if ty == ir.I64 {
		lo, hi := LoOperand(inst.Src), HiOperand(c, inst.Src)
		c.emit(STR{Addr: mem, Src: lo})
		hiMem := HiOperand(c, mem).(*ir.MemOperand)
		c.emit(STR{Addr: hiMem, Src: hi})
		return
	}
	c.emit(STR{Addr: mem, Src: inst.Src})
}
