package arm32

import (
	"github.com/arm32cc/backend/pkg/config"
	"github.com/arm32cc/backend/pkg/ir"
)

func ir32(v int32) ir.ConstantInteger32 { return ir.ConstantInteger32{Ty: ir.I32, Value: v} }

func testFlags() config.Flags { return config.Flags{} }

func newTestFunc(name string) *ir.Function {
	return ir.NewFunction(name, ir.Sig{})
}
