package asan

import (
	"encoding/binary"

	"github.com/arm32cc/backend/pkg/ir"
)

// InstrumentGlobals implements §4.7's globals rule: rebuilds the global
// list, wrapping every input global in a pair of redzones and recording
// pointers to every redzone (in left/right order) plus their sizes in
// two new constant globals, __$rz_array and __$rz_sizes. Runs exactly
// once for the whole program; a second call is a no-op, matching the
// original's own DidProcessGlobals guard.
func InstrumentGlobals(in *Instrumentor, globals []*ir.GlobVar) []*ir.GlobVar {
	if in.Gate.Done() {
		return globals
	}

	rzArray := &ir.GlobVar{Name: RzArrayName, IsConstant: true}
	rzSizes := &ir.GlobVar{Name: RzSizesName, IsConstant: true}

	out := make([]*ir.GlobVar, 0, len(globals)*3+2)
	out = append(out, rzArray, rzSizes)

	var ptrOffset int32
	for _, g := range globals {
		align := g.Align
		if align < RzSize {
			align = RzSize
		}
		leftSize := int64(align)
		rightSize := int64(RzSize) + padToAlignment(g.Size, int64(align))

		left := newRedzone(in, leftSize, align, g)
		right := newRedzone(in, rightSize, 1, g)

		g.Align = align

		rzArray.Relocs = append(rzArray.Relocs,
			ir.GlobalReloc{Offset: ptrOffset, Symbol: left.Name},
			ir.GlobalReloc{Offset: ptrOffset + 4, Symbol: right.Name})
		ptrOffset += 8
		rzArray.Size += 8

		rzSizes.Init = append(rzSizes.Init, le8(leftSize)...)
		rzSizes.Init = append(rzSizes.Init, le8(rightSize)...)
		rzSizes.Size += 16

		out = append(out, left, g, right)
	}

	in.Gate.Publish(int32(len(globals)) * 2)
	return out
}

// newRedzone builds one fresh redzone global of the given size and
// alignment, filled per rule 4: 'R' bytes if host inherits a nonzero
// initializer, otherwise zero.
func newRedzone(in *Instrumentor, size int64, align int32, host *ir.GlobVar) *ir.GlobVar {
	rz := &ir.GlobVar{
		Name:       in.nextRzName(),
		Size:       size,
		Align:      align,
		IsConstant: host.IsConstant,
		HasNonzero: host.HasNonzero,
	}
	rz.Init = make([]byte, size)
	if host.HasNonzero {
		for i := range rz.Init {
			rz.Init[i] = 'R'
		}
	}
	return rz
}

// padToAlignment is pad_to_alignment(n, align): the number of bytes
// needed to round n up to a multiple of align.
func padToAlignment(n, align int64) int64 {
	if align == 0 {
		return 0
	}
	if rem := n % align; rem != 0 {
		return align - rem
	}
	return 0
}

func le8(v int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	return b[:]
}
