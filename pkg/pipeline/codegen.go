package pipeline

import (
	"fmt"

	"github.com/arm32cc/backend/pkg/arm32"
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

// GenCode dispatches every node of fn, in LayoutOrder, to its matching
// pkg/arm32 lowering method, labeling each node's position so LowerBr's
// targets always resolve. It stops as soon as fn.Err() is set, per §7's
// sticky-error contract.
func GenCode(fn *ir.Function, flags config.Flags) []arm32.Instruction {
	order := LayoutOrder(fn)
	c := arm32.NewContext(fn, flags)

	for _, node := range order {
		c.EmitLabel(labelOf(node))
		switch inst := fn.Code[node].(type) {
		case ir.IArith:
			c.LowerArithmetic(inst)
		case ir.IIcmp:
			c.LowerIcmp(inst)
		case ir.ICast:
			c.LowerCast(inst)
		case ir.IAssign:
			c.LowerAssign(inst)
		case ir.IBr:
			c.LowerBr(inst, labelOf)
		case ir.ICall:
			c.LowerCall(fn, inst)
		case ir.IRet:
			c.LowerRet(inst)
		case ir.ILoad:
			c.LowerLoad(inst)
		case ir.IStore:
			c.LowerStore(inst)
		case ir.IAlloca:
			c.LowerAlloca(fn, inst)
		case ir.IIntrinsicCall:
			c.LowerIntrinsicCall(fn, inst)
		case ir.IPhi:
			fn.SetError("phi node reached code generation")
		}
		if fn.Err() != nil {
			return nil
		}
	}
	return c.Instructions()
}

// labelOf names the label a branch into node resolves to; GenCode defines
// one at every node's position, so every target always exists.
func labelOf(n ir.Node) arm32.Label {
	return arm32.Label(fmt.Sprintf(".L%d", n))
}
