package testfixture

import (
	"fmt"

	"github.com/arm32cc/backend/pkg/ir"
)

// Build turns a decoded fixture Program into an *ir.Program, the way the
// teacher's integration tests turn a YAML E2EAsmTestSpec into the inputs
// CompCert's pipeline actually runs on.
func (p *Program) Build() (*ir.Program, error) {
	out := &ir.Program{}
	for _, g := range p.Globals {
		out.Globals = append(out.Globals, &ir.GlobVar{
			Name:       g.Name,
			Size:       g.Size,
			Align:      g.Align,
			HasNonzero: g.Nonzero,
			IsConstant: g.Constant,
		})
	}
	for _, f := range p.Functions {
		fn, err := buildFunction(f)
		if err != nil {
			return nil, fmt.Errorf("testfixture: function %q: %w", f.Name, err)
		}
		out.Functions = append(out.Functions, fn)
	}
	return out, nil
}

func buildFunction(f Function) (*ir.Function, error) {
	var sig ir.Sig
	for _, p := range f.Params {
		ty, err := parseType(p.Type)
		if err != nil {
			return nil, err
		}
		sig.Args = append(sig.Args, ty)
	}
	ret, err := parseType(f.Return)
	if err != nil {
		return nil, err
	}
	sig.Return = ret

	fn := ir.NewFunction(f.Name, sig)
	vars := make(map[string]*ir.Variable)

	labelToNode := make(map[string]ir.Node, len(f.Code))
	for _, op := range f.Code {
		if op.Label == "" {
			return nil, fmt.Errorf("every op needs a label")
		}
		if _, dup := labelToNode[op.Label]; dup {
			return nil, fmt.Errorf("duplicate label %q", op.Label)
		}
		labelToNode[op.Label] = fn.FreshNode()
	}

	resolveNode := func(label string) (ir.Node, error) {
		n, ok := labelToNode[label]
		if !ok {
			return 0, fmt.Errorf("undefined label %q", label)
		}
		return n, nil
	}

	for _, p := range f.Params {
		ty, err := parseType(p.Type)
		if err != nil {
			return nil, err
		}
		v := getVar(vars, p.Name, ty)
		v.IsArg = true
		fn.Params = append(fn.Params, v)
	}

	for _, op := range f.Code {
		inst, err := buildOp(op, vars, resolveNode)
		if err != nil {
			return nil, fmt.Errorf("op %q: %w", op.Label, err)
		}
		fn.Code[labelToNode[op.Label]] = inst
	}

	entry := f.Entry
	if entry == "" && len(f.Code) > 0 {
		entry = f.Code[0].Label
	}
	if entry != "" {
		n, err := resolveNode(entry)
		if err != nil {
			return nil, fmt.Errorf("entry: %w", err)
		}
		fn.Entrypoint = n
	}

	return fn, nil
}

func buildOp(op Op, vars map[string]*ir.Variable, resolveNode func(string) (ir.Node, error)) (ir.Instruction, error) {
	destTy, err := parseType(op.Type)
	if err != nil {
		return nil, err
	}

	resolveSucc := func() (ir.Node, error) {
		if op.Succ == "" {
			return 0, fmt.Errorf("missing succ")
		}
		return resolveNode(op.Succ)
	}

	switch op.Kind {
	case "arith":
		arithOp, err := parseArithOp(op.Arith)
		if err != nil {
			return nil, err
		}
		src0, err := resolveOperand(op.Src0, vars)
		if err != nil {
			return nil, err
		}
		src1, err := resolveOperand(op.Src1, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		return ir.IArith{Op: arithOp, Dest: getVar(vars, op.Dest, destTy), Src0: src0, Src1: src1, Succ: succ}, nil

	case "icmp":
		cond, err := parseCond(op.Cmp)
		if err != nil {
			return nil, err
		}
		src0, err := resolveOperand(op.Src0, vars)
		if err != nil {
			return nil, err
		}
		src1, err := resolveOperand(op.Src1, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		return ir.IIcmp{Cond: cond, Dest: getVar(vars, op.Dest, destTy), Src0: src0, Src1: src1, Succ: succ}, nil

	case "cast":
		kind, err := parseCast(op.Cast)
		if err != nil {
			return nil, err
		}
		src, err := resolveOperand(op.Src, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		return ir.ICast{Kind: kind, Dest: getVar(vars, op.Dest, destTy), Src: src, Succ: succ}, nil

	case "assign":
		src, err := resolveOperand(op.Src, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		return ir.IAssign{Dest: getVar(vars, op.Dest, destTy), Src: src, Succ: succ}, nil

	case "br":
		var cond ir.Operand
		if op.Cond.Var != "" || op.Cond.Const != nil || op.Cond.Global != "" {
			c, err := resolveOperand(op.Cond, vars)
			if err != nil {
				return nil, err
			}
			cond = c
		}
		ifTrue, err := resolveNode(op.IfTrue)
		if err != nil {
			return nil, fmt.Errorf("if_true: %w", err)
		}
		ifFalse := ifTrue
		if op.IfFalse != "" {
			ifFalse, err = resolveNode(op.IfFalse)
			if err != nil {
				return nil, fmt.Errorf("if_false: %w", err)
			}
		}
		return ir.IBr{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse}, nil

	case "call":
		target, err := resolveOperand(op.Src0, vars)
		if err != nil {
			return nil, fmt.Errorf("target: %w", err)
		}
		args := make([]ir.Operand, 0, len(op.Args))
		for i, a := range op.Args {
			v, err := resolveOperand(a, vars)
			if err != nil {
				return nil, fmt.Errorf("arg %d: %w", i, err)
			}
			args = append(args, v)
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		var dest *ir.Variable
		if op.Dest != "" {
			dest = getVar(vars, op.Dest, destTy)
		}
		return ir.ICall{Target: target, Args: args, Dest: dest, Succ: succ}, nil

	case "ret":
		if op.Src.Var == "" && op.Src.Const == nil && op.Src.Global == "" {
			return ir.IRet{}, nil
		}
		src, err := resolveOperand(op.Src, vars)
		if err != nil {
			return nil, err
		}
		return ir.IRet{Src: src}, nil

	case "load":
		addr, err := resolveOperand(op.Addr, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		return ir.ILoad{Dest: getVar(vars, op.Dest, destTy), Addr: addr, Succ: succ}, nil

	case "store":
		addr, err := resolveOperand(op.Addr, vars)
		if err != nil {
			return nil, err
		}
		src, err := resolveOperand(op.Src, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		return ir.IStore{Addr: addr, Src: src, Succ: succ}, nil

	case "alloca":
		size, err := resolveOperand(op.Size, vars)
		if err != nil {
			return nil, err
		}
		succ, err := resolveSucc()
		if err != nil {
			return nil, err
		}
		align := op.Align
		if align == 0 {
			align = 4
		}
		return ir.IAlloca{Dest: getVar(vars, op.Dest, destTy), Size: size, Align: align, Succ: succ}, nil

	default:
		return nil, fmt.Errorf("unknown op kind %q", op.Kind)
	}
}
