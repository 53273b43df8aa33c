package testfixture

import (
	"fmt"

	"github.com/arm32cc/backend/pkg/ir"
)

func parseType(s string) (ir.Type, error) {
	switch s {
	case "", "void":
		return ir.Void, nil
	case "i1":
		return ir.I1, nil
	case "i8":
		return ir.I8, nil
	case "i16":
		return ir.I16, nil
	case "i32":
		return ir.I32, nil
	case "i64":
		return ir.I64, nil
	case "f32":
		return ir.F32, nil
	case "f64":
		return ir.F64, nil
	default:
		return ir.Void, fmt.Errorf("testfixture: unknown type %q", s)
	}
}

func parseArithOp(s string) (ir.ArithOp, error) {
	switch s {
	case "add":
		return ir.Add, nil
	case "sub":
		return ir.Sub, nil
	case "mul":
		return ir.Mul, nil
	case "and":
		return ir.And, nil
	case "or":
		return ir.Or, nil
	case "xor":
		return ir.Xor, nil
	case "shl":
		return ir.Shl, nil
	case "lshr":
		return ir.Lshr, nil
	case "ashr":
		return ir.Ashr, nil
	case "udiv":
		return ir.Udiv, nil
	case "sdiv":
		return ir.Sdiv, nil
	case "urem":
		return ir.Urem, nil
	case "srem":
		return ir.Srem, nil
	default:
		return 0, fmt.Errorf("testfixture: unknown arith op %q", s)
	}
}

func parseCond(s string) (ir.Condition, error) {
	switch s {
	case "eq":
		return ir.CondEq, nil
	case "ne":
		return ir.CondNe, nil
	case "ult":
		return ir.CondUlt, nil
	case "ule":
		return ir.CondUle, nil
	case "ugt":
		return ir.CondUgt, nil
	case "uge":
		return ir.CondUge, nil
	case "slt":
		return ir.CondSlt, nil
	case "sle":
		return ir.CondSle, nil
	case "sgt":
		return ir.CondSgt, nil
	case "sge":
		return ir.CondSge, nil
	default:
		return 0, fmt.Errorf("testfixture: unknown condition %q", s)
	}
}

func parseCast(s string) (ir.CastKind, error) {
	switch s {
	case "sext":
		return ir.Sext, nil
	case "zext":
		return ir.Zext, nil
	case "trunc":
		return ir.Trunc, nil
	case "bitcast":
		return ir.Bitcast, nil
	default:
		return 0, fmt.Errorf("testfixture: unknown cast kind %q", s)
	}
}

// getVar returns the existing variable named name, creating it with type
// typ the first time it's referenced so dest and later src operands agree
// on the same *ir.Variable.
func getVar(vars map[string]*ir.Variable, name string, typ ir.Type) *ir.Variable {
	if v, ok := vars[name]; ok {
		return v
	}
	v := ir.NewVariable(name, typ)
	vars[name] = v
	return v
}

// resolveOperand turns a fixture Operand into an ir.Operand, dispatching
// on whichever of Var/Const/Global was set.
func resolveOperand(op Operand, vars map[string]*ir.Variable) (ir.Operand, error) {
	switch {
	case op.Var != "":
		ty, err := parseType(op.Type)
		if err != nil {
			return nil, err
		}
		return getVar(vars, op.Var, ty), nil
	case op.Const != nil:
		ty, err := parseType(op.Type)
		if err != nil {
			return nil, err
		}
		if ty == ir.I64 {
			return ir.ConstantInteger64{Value: *op.Const}, nil
		}
		return ir.ConstantInteger32{Ty: ty, Value: int32(*op.Const)}, nil
	case op.Global != "":
		ty, err := parseType(op.Type)
		if err != nil {
			return nil, err
		}
		return ir.ConstantRelocatable{Ty: ty, Name: op.Global}, nil
	default:
		return nil, fmt.Errorf("testfixture: operand has neither var, const, nor global set")
	}
}
