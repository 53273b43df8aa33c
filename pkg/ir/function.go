package ir

// Sig is a function signature: argument types in order and a return type.
type Sig struct {
	Args   []Type
	Return Type
}

// Function is a CFG-based function body together with the lowering state
// the Frame Builder and pipeline accumulate as they run.
type Function struct {
	Name       string
	Sig        Sig
	Params     []*Variable
	Code       map[Node]Instruction
	Entrypoint Node
	NextNode   Node

	// Populated/consulted by the Frame Builder (§4.5).
	UsesFramePointer   bool
	NeedsStackAlignment bool
	MaybeLeafFunc       bool
	StackSize           int64

	// §7: sticky per-function error state.
	err *FuncError

	// §9 open-question 1: count of lowerings skipped under
	// config.Flags.SkipUnimplemented rather than hard-errored.
	SkippedCount int
}

// NewFunction creates a function with an initialized, empty CFG and the
// conservative default of "not yet known to be a leaf" (true until a call
// is lowered into it; see pkg/arm32 LowerCall).
func NewFunction(name string, sig Sig) *Function {
	return &Function{
		Name:         name,
		Sig:          sig,
		Code:         make(map[Node]Instruction),
		MaybeLeafFunc: true,
	}
}

// FreshNode allocates the next CFG node identifier.
func (f *Function) FreshNode() Node {
	f.NextNode++
	return f.NextNode
}

// Append adds an instruction at a fresh node and returns its identifier.
func (f *Function) Append(inst Instruction) Node {
	n := f.FreshNode()
	f.Code[n] = inst
	return n
}

// SetError records a sticky per-function error. Once set, pipeline stages
// must short-circuit (§7).
func (f *Function) SetError(msg string) {
	if f.err == nil {
		f.err = &FuncError{Func: f.Name, Msg: msg}
	}
}

// Err returns the sticky error, or nil if the function is still healthy.
func (f *Function) Err() *FuncError { return f.err }

// GlobalReloc is a relocation-initialized word inside a GlobVar: the byte
// at Offset holds the address of the global named Symbol (plus Addend)
// rather than a literal value. Used for the pointer table ASan Instrumentation
// builds over redzone globals (§4.7); ELF emission (out of scope here)
// resolves these at link/load time.
type GlobalReloc struct {
	Offset int32
	Symbol string
	Addend int32
}

// GlobVar is a program-level global variable.
type GlobVar struct {
	Name       string
	Size       int64
	Align      int32
	Init       []byte
	Relocs     []GlobalReloc
	HasNonzero bool
	IsConstant bool
}

// Program is a complete translation unit: globals plus functions.
type Program struct {
	Globals   []*GlobVar
	Functions []*Function
}
