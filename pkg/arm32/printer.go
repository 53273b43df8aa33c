package arm32

import (
	"bytes"
	"fmt"
	"io"

	"github.com/arm32cc/backend/pkg/ir"
	"github.com/arm32cc/backend/pkg/regs"
)

// Printer outputs the ARM32 instruction AST in GNU as syntax. It mirrors
// the teacher's pkg/asm Printer, generalized from ARM64's fixed MReg
// operands to this back end's ir.Variable/ir.Operand model: a variable
// prints as its assigned physical register once one exists, and falls
// back to its pseudo-register name otherwise (e.g. ahead of register
// allocation, or under -Om1 for an operand the legalizer left virtual).
// Full object emission is out of scope; this exists for debug dumps
// (cmd/armcc) and tests that want a human-readable instruction stream.
type Printer struct {
	w io.Writer
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Render formats insts as GNU as-style text, without a function wrapper.
// Convenience for callers (cmd/armcc, tests) that just want a string.
func Render(insts []Instruction) string {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintInstructions(insts)
	return buf.String()
}

// PrintFunction writes one function's label and body.
func (p *Printer) PrintFunction(name string, insts []Instruction) {
	fmt.Fprintf(p.w, "\t.align\t2\n")
	fmt.Fprintf(p.w, "\t.global\t%s\n", name)
	fmt.Fprintf(p.w, "\t.type\t%s, %%function\n", name)
	fmt.Fprintf(p.w, "%s:\n", name)
	p.PrintInstructions(insts)
	fmt.Fprintf(p.w, "\t.size\t%s, .-%s\n", name, name)
}

// PrintInstructions writes each instruction in order, one per line.
func (p *Printer) PrintInstructions(insts []Instruction) {
	for _, inst := range insts {
		p.printInstruction(inst)
	}
}

func regName(r regs.Reg) string { return r.String() }

// varName names a variable operand: its assigned physical register if one
// exists, otherwise a pseudo-register name so unallocated dumps (e.g. from
// -Om1 debug output ahead of the Frame Builder) still read sensibly.
func varName(v *ir.Variable) string {
	if v == nil {
		return "<nil>"
	}
	if v.HasReg() {
		return regName(regs.Reg(v.RegNumber))
	}
	return "%" + v.Name
}

func operandText(op ir.Operand) string {
	switch o := op.(type) {
	case nil:
		return ""
	case *ir.Variable:
		return varName(o)
	case ir.ConstantInteger32:
		return fmt.Sprintf("#%d", o.Value)
	case ir.ConstantInteger64:
		return fmt.Sprintf("#%d", o.Value)
	case ir.ConstantFloat:
		return fmt.Sprintf("#%g", o.Value)
	case ir.ConstantDouble:
		return fmt.Sprintf("#%g", o.Value)
	case ir.ConstantRelocatable:
		if o.Offset != 0 {
			return fmt.Sprintf("%s+%d", o.Name, o.Offset)
		}
		return o.Name
	case ir.ConstantUndef:
		return "<undef>"
	case *ir.MemOperand:
		return memText(o)
	case ir.FlexImm:
		return fmt.Sprintf("#%d", o.Value())
	case ir.FlexReg:
		s := varName(o.Reg)
		if o.ShiftKind != ir.NoShift {
			s += fmt.Sprintf(", %s #%d", shiftName(o.ShiftKind), o.ShiftImm)
		}
		return s
	default:
		return fmt.Sprintf("<%T>", op)
	}
}

func shiftName(s ir.ShiftOp) string {
	switch s {
	case ir.LSL:
		return "lsl"
	case ir.LSR:
		return "lsr"
	case ir.ASR:
		return "asr"
	case ir.ROR:
		return "ror"
	case ir.RRX:
		return "rrx"
	default:
		return ""
	}
}

func memText(m *ir.MemOperand) string {
	base := varName(m.Base)
	if m.Index != nil {
		return fmt.Sprintf("[%s, %s]", base, varName(m.Index))
	}
	if m.Offset == 0 {
		return fmt.Sprintf("[%s]", base)
	}
	return fmt.Sprintf("[%s, #%d]", base, m.Offset)
}

// condSuffix renders a non-AL condition code as a two-letter mnemonic
// suffix (e.g. "ne"), with no separator.
func condSuffix(c CC) string {
	if c == AL {
		return ""
	}
	return c.String()
}

func (p *Printer) printInstruction(inst Instruction) {
	switch i := inst.(type) {
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	case MOV:
		fmt.Fprintf(p.w, "\tmov%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src))
	case MOVW:
		if i.Sym != nil {
			fmt.Fprintf(p.w, "\tmovw%s\t%s, :lower16:%s\n", condSuffix(i.Cond), varName(i.Dest), operandText(*i.Sym))
		} else {
			fmt.Fprintf(p.w, "\tmovw%s\t%s, #%d\n", condSuffix(i.Cond), varName(i.Dest), i.Imm)
		}
	case MOVT:
		if i.Sym != nil {
			fmt.Fprintf(p.w, "\tmovt%s\t%s, :upper16:%s\n", condSuffix(i.Cond), varName(i.Dest), operandText(*i.Sym))
		} else {
			fmt.Fprintf(p.w, "\tmovt%s\t%s, #%d\n", condSuffix(i.Cond), varName(i.Dest), i.Imm)
		}
	case MVN:
		fmt.Fprintf(p.w, "\tmvn%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src))
	case ADD:
		fmt.Fprintf(p.w, "\tadd%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case ADDS:
		fmt.Fprintf(p.w, "\tadds%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case ADC:
		fmt.Fprintf(p.w, "\tadc%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case SUB:
		fmt.Fprintf(p.w, "\tsub%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case SUBS:
		fmt.Fprintf(p.w, "\tsubs%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case SBC:
		fmt.Fprintf(p.w, "\tsbc%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case SBCS:
		fmt.Fprintf(p.w, "\tsbcs%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case RSB:
		fmt.Fprintf(p.w, "\trsb%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case MUL:
		fmt.Fprintf(p.w, "\tmul%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case MLA:
		fmt.Fprintf(p.w, "\tmla%s\t%s, %s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1), operandText(i.Acc))
	case UMULL:
		fmt.Fprintf(p.w, "\tumull%s\t%s, %s, %s, %s\n", condSuffix(i.Cond), varName(i.DestLo), varName(i.DestHi), operandText(i.Src0), operandText(i.Src1))
	case SMULL:
		fmt.Fprintf(p.w, "\tsmull%s\t%s, %s, %s, %s\n", condSuffix(i.Cond), varName(i.DestLo), varName(i.DestHi), operandText(i.Src0), operandText(i.Src1))
	case SDIV:
		fmt.Fprintf(p.w, "\tsdiv%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case UDIV:
		fmt.Fprintf(p.w, "\tudiv%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case AND:
		fmt.Fprintf(p.w, "\tand%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case ORR:
		fmt.Fprintf(p.w, "\torr%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case EOR:
		fmt.Fprintf(p.w, "\teor%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case BIC:
		fmt.Fprintf(p.w, "\tbic%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src0), operandText(i.Src1))
	case LSL:
		fmt.Fprintf(p.w, "\tlsl%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src), operandText(i.Shift))
	case LSR:
		fmt.Fprintf(p.w, "\tlsr%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src), operandText(i.Shift))
	case ASR:
		fmt.Fprintf(p.w, "\tasr%s\t%s, %s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src), operandText(i.Shift))
	case SXTB:
		fmt.Fprintf(p.w, "\tsxtb%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src))
	case SXTH:
		fmt.Fprintf(p.w, "\tsxth%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src))
	case UXTB:
		fmt.Fprintf(p.w, "\tuxtb%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src))
	case UXTH:
		fmt.Fprintf(p.w, "\tuxth%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), operandText(i.Src))
	case CMP:
		fmt.Fprintf(p.w, "\tcmp%s\t%s, %s\n", condSuffix(i.Cond), operandText(i.Src0), operandText(i.Src1))
	case CMN:
		fmt.Fprintf(p.w, "\tcmn%s\t%s, %s\n", condSuffix(i.Cond), operandText(i.Src0), operandText(i.Src1))
	case TST:
		fmt.Fprintf(p.w, "\ttst%s\t%s, %s\n", condSuffix(i.Cond), operandText(i.Src0), operandText(i.Src1))
	case LDR:
		fmt.Fprintf(p.w, "\tldr%s\t%s, %s\n", condSuffix(i.Cond), varName(i.Dest), memText(i.Addr))
	case STR:
		fmt.Fprintf(p.w, "\tstr%s\t%s, %s\n", condSuffix(i.Cond), operandText(i.Src), memText(i.Addr))
	case B:
		fmt.Fprintf(p.w, "\tb%s\t%s\n", condSuffix(i.Cond), i.Target)
	case BL:
		fmt.Fprintf(p.w, "\tbl%s\t%s\n", condSuffix(i.Cond), operandText(i.Target))
	case BLX:
		fmt.Fprintf(p.w, "\tblx%s\t%s\n", condSuffix(i.Cond), operandText(i.Target))
	case BX:
		fmt.Fprintf(p.w, "\tbx%s\t%s\n", condSuffix(i.Cond), operandText(i.Target))
	case PUSH:
		fmt.Fprintf(p.w, "\tpush\t{%s}\n", regList(i.Regs))
	case POP:
		fmt.Fprintf(p.w, "\tpop\t{%s}\n", regList(i.Regs))
	case NOP:
		fmt.Fprintf(p.w, "\tnop\n")
	case RegKill:
		fmt.Fprintf(p.w, "\t// regkill\n")
	case FakeUse:
		fmt.Fprintf(p.w, "\t// fakeuse\t%s\n", varName(i.Var))
	case Ret:
		fmt.Fprintf(p.w, "\tbx\tlr\n")
	case BundleLock:
		fmt.Fprintf(p.w, "\t.bundle_lock\n")
	case BundleUnlock:
		fmt.Fprintf(p.w, "\t.bundle_unlock\n")
	default:
		fmt.Fprintf(p.w, "\t// unknown instruction: %T\n", inst)
	}
}

func regList(rs []regs.Reg) string {
	s := ""
	for i, r := range rs {
		if i > 0 {
			s += ", "
		}
		s += regName(r)
	}
	return s
}
