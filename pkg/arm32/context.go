package arm32

import (
	"fmt"

	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

// Context is the per-function lowering context: it owns the growing list
// of emitted ARM instructions and the fresh-variable counter, the way the
// original's TargetARM32/Cfg::Context pair owns the function's arena.
type Context struct {
	Func    *ir.Function
	Flags   config.Flags
	out     []Instruction
	tmpNext int
}

func NewContext(fn *ir.Function, flags config.Flags) *Context {
	return &Context{Func: fn, Flags: flags}
}

func (c *Context) emit(inst Instruction) { c.out = append(c.out, inst) }

// EmitLabel emits a label definition at the current position in the
// instruction stream. pkg/pipeline's code generator calls this once per
// CFG node so every IBr target resolves to a real position in the final
// stream.
func (c *Context) EmitLabel(name Label) { c.emit(LabelDef{Name: name}) }

// Instructions returns the accumulated ARM instruction stream.
func (c *Context) Instructions() []Instruction { return c.out }

// newTemp allocates a fresh SSA-like temporary of the given type.
func (c *Context) newTemp(ty ir.Type) *ir.Variable {
	c.tmpNext++
	return ir.NewVariable(fmt.Sprintf("%%t%d", c.tmpNext), ty)
}

// skipOrError implements the §9/open-question-1 decision: under
// SkipUnimplemented the lowerer counts the skip and emits nothing; else it
// sets the sticky function error.
func (c *Context) skipOrError(msg string) {
	if c.Flags.SkipUnimplemented {
		c.Func.SkippedCount++
		return
	}
	c.Func.SetError(msg)
}
