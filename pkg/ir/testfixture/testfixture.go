// Package testfixture decodes a small YAML-described program into an
// *ir.Function/*ir.Program pair, the way the teacher's cmd/ralph-cc
// integration tests describe compiler test cases declaratively in YAML
// rather than hand-building AST nodes in Go. It is test tooling only —
// real IR construction is out of scope (§1) — so its grammar covers
// exactly the opcode set §4.4 names and nothing more.
package testfixture

import "gopkg.in/yaml.v3"

// Program is the YAML-decoded shape of a fixture file.
type Program struct {
	Globals   []Global   `yaml:"globals"`
	Functions []Function `yaml:"functions"`
}

// Global describes one program-level variable before redzone wrapping.
type Global struct {
	Name     string `yaml:"name"`
	Size     int64  `yaml:"size"`
	Align    int32  `yaml:"align"`
	Nonzero  bool   `yaml:"nonzero"`
	Constant bool   `yaml:"constant"`
}

// Function describes one function: its signature and a flat instruction
// list, each entry labeled so later entries can name it as a successor.
type Function struct {
	Name   string `yaml:"name"`
	Params []Param `yaml:"params"`
	Return string `yaml:"return"`
	Entry  string `yaml:"entry"`
	Code   []Op   `yaml:"code"`
}

// Param is one incoming argument.
type Param struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Operand is the YAML encoding of an ir.Operand. Exactly one of Var,
// Const, or Global should be set; Type only matters for Const and
// Global (a Var's type comes from wherever it was first declared).
type Operand struct {
	Var    string `yaml:"var,omitempty"`
	Const  *int64 `yaml:"const,omitempty"`
	Global string `yaml:"global,omitempty"`
	Type   string `yaml:"type,omitempty"`
}

// Op is one instruction. Label names its node; exactly the fields
// relevant to Kind are read, matching §4.4's opcode set (arith, icmp,
// cast, assign, br, call, ret, load, store, alloca).
type Op struct {
	Label string `yaml:"label"`
	Kind  string `yaml:"op"`

	Dest  string `yaml:"dest,omitempty"`
	Type  string `yaml:"type,omitempty"`
	Arith string `yaml:"arith,omitempty"`
	Cmp   string `yaml:"cmp,omitempty"`
	Cast  string `yaml:"cast,omitempty"`

	Src0 Operand   `yaml:"src0,omitempty"`
	Src1 Operand   `yaml:"src1,omitempty"`
	Src  Operand   `yaml:"src,omitempty"`
	Addr Operand   `yaml:"addr,omitempty"`
	Cond Operand   `yaml:"cond,omitempty"`
	Size Operand   `yaml:"size,omitempty"`
	Args []Operand `yaml:"args,omitempty"`

	Target string `yaml:"target,omitempty"`
	Align  int32  `yaml:"align,omitempty"`

	Succ    string `yaml:"succ,omitempty"`
	IfTrue  string `yaml:"if_true,omitempty"`
	IfFalse string `yaml:"if_false,omitempty"`
}

// Parse decodes a fixture file's YAML bytes into a Program.
func Parse(data []byte) (*Program, error) {
	var p Program
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
