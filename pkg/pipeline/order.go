package pipeline

import "github.com/arm32cc/backend/pkg/ir"

// LayoutOrder returns a deterministic program-point order for fn's nodes.
// fn.Code is a map, so iterating it directly for code generation would
// emit instructions in a different order every run; this combines §4.6's
// "node reordering" stage with the empty-node contraction phi deletion
// and address-mode optimization already perform via removeNode. It walks
// the CFG depth-first from the entrypoint, visiting a conditional
// branch's IfFalse edge immediately after the branch itself, so the
// false block falls straight through and only the true edge stays a real
// (conditional) jump, giving branch optimization the most fallthrough
// opportunities to find.
func LayoutOrder(fn *ir.Function) []ir.Node {
	var order []ir.Node
	visited := make(map[ir.Node]bool)
	stack := []ir.Node{fn.Entrypoint}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		inst, ok := fn.Code[n]
		if !ok {
			continue
		}
		visited[n] = true
		order = append(order, n)

		if br, ok := inst.(ir.IBr); ok && br.IfTrue != br.IfFalse {
			stack = append(stack, br.IfTrue, br.IfFalse)
			continue
		}
		succs := inst.Successors()
		for i := len(succs) - 1; i >= 0; i-- {
			stack = append(stack, succs[i])
		}
	}
	return order
}
