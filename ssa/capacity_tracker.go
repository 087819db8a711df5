package ssa

import (
	"fmt"

	"github.com/0xsisyfos/noir/ssa/ir"
)

// sliceSizes records, for one sequence value, its observed row count and the
// sequence values nested one level below it.
type sliceSizes struct {
	size     int
	children []ir.ValueId
}

// sliceCapacityTracker observes every instruction of a block once, in
// program order, and derives how nested slice sizes can evolve: which
// constant roots need rewriting, how large each slice may grow, and which
// value is the current identity of a slice after a write.
type sliceCapacityTracker struct {
	dfg *ir.DataFlowGraph

	// original slice value -> the value it becomes after a write or a
	// size-changing intrinsic
	mappedSliceValues map[ir.ValueId]ir.ValueId

	// inverse of mappedSliceValues, locating the defining constant of any
	// derived value
	sliceParents map[ir.ValueId]ir.ValueId

	// constant roots containing nested slices, in first-seen order
	sliceValues []ir.ValueId
	tracked     map[ir.ValueId]bool
}

func newSliceCapacityTracker(dfg *ir.DataFlowGraph) *sliceCapacityTracker {
	return &sliceCapacityTracker{
		dfg:               dfg,
		mappedSliceValues: make(map[ir.ValueId]ir.ValueId),
		sliceParents:      make(map[ir.ValueId]ir.ValueId),
		tracked:           make(map[ir.ValueId]bool),
	}
}

func (t *sliceCapacityTracker) constantNestedSlices() map[ir.ValueId]bool {
	return t.tracked
}

// collectSliceInformation updates the slice sizes map according to a single
// instruction. Instructions with no bearing on slice sizes are still
// scanned so their results never interfere with later lookups.
func (t *sliceCapacityTracker) collectSliceInformation(insn ir.Instruction, results []ir.ValueId, sizes map[ir.ValueId]*sliceSizes) {
	switch insn.Op {
	case ir.OpArrayGet:
		t.seedConstant(insn.Array, sizes)
		if !t.dfg.TypeOf(results[0]).ContainsSliceElement() {
			return
		}
		entry, ok := sizes[insn.Array]
		if !ok {
			return
		}
		// The fetched element aliases the backing contents of one of the
		// array's children, so a later write through it must be reflected
		// back: record it as a possible child, carrying the children of
		// its potential aliases one level down.
		var nested []ir.ValueId
		for _, child := range entry.children {
			if childEntry, ok := sizes[child]; ok {
				nested = append(nested, childEntry.children...)
			}
		}
		sizes[results[0]] = &sliceSizes{children: nested}
		entry.children = append(entry.children, results[0])

	case ir.OpArraySet:
		t.seedConstant(insn.Array, sizes)
		entry, ok := sizes[insn.Array]
		if !ok {
			return
		}
		children := append([]ir.ValueId{}, entry.children...)
		if t.dfg.TypeOf(insn.ValueArg).ContainsSliceElement() {
			t.seedConstant(insn.ValueArg, sizes)
			children = append(children, insn.ValueArg)
		}
		sizes[results[0]] = &sliceSizes{size: entry.size, children: children}
		t.mappedSliceValues[insn.Array] = results[0]
		t.sliceParents[results[0]] = insn.Array

	case ir.OpCall:
		fn := t.dfg.Value(insn.Func)
		if fn.Kind == ir.ValueIntrinsic && fn.Intrinsic.IsSliceIntrinsic() {
			t.collectSliceIntrinsic(fn.Intrinsic, insn.Args, results, sizes)
			return
		}
		for _, arg := range insn.Args {
			t.seedConstant(arg, sizes)
		}

	default:
		// inert for size tracking
	}
}

// collectSliceIntrinsic applies the ArraySet equivalence-linking rules to a
// slice intrinsic call, and bumps the recorded size for growing intrinsics.
// Shrinking intrinsics never decrement a recorded size: the pre-shrink
// maximum stays reserved so a later re-growth cannot exceed the bound.
//
// Every slice intrinsic takes (length, slice, ...) and returns the updated
// slice right after the new length, except pop_front which returns the
// popped elements first and the updated slice last. The positions matter:
// a popped element can itself be slice-typed and must never be mistaken
// for the updated slice.
func (t *sliceCapacityTracker) collectSliceIntrinsic(intrinsic ir.Intrinsic, args, results []ir.ValueId, sizes map[ir.ValueId]*sliceSizes) {
	if len(args) < 2 || len(results) < 2 {
		panic(fmt.Sprintf("internal: malformed %s call", intrinsic))
	}
	source := args[1]

	var result ir.ValueId
	switch intrinsic {
	case ir.SlicePushBack, ir.SlicePushFront, ir.SliceInsert, ir.SlicePopBack, ir.SliceRemove:
		result = results[1]
	case ir.SlicePopFront:
		result = results[len(results)-1]
	default:
		panic(fmt.Sprintf("internal: %s does not produce an updated slice", intrinsic))
	}

	t.seedConstant(source, sizes)
	entry, ok := sizes[source]
	if !ok {
		return
	}

	size := entry.size
	if intrinsic.GrowsSlice() {
		size++
	}
	children := append([]ir.ValueId{}, entry.children...)
	for _, arg := range args[2:] {
		if t.dfg.TypeOf(arg).ContainsSliceElement() {
			t.seedConstant(arg, sizes)
			children = append(children, arg)
		}
	}
	sizes[result] = &sliceSizes{size: size, children: children}
	t.mappedSliceValues[source] = result
	t.sliceParents[result] = source
}

// seedConstant populates the initial slice sizes for an array constant and
// marks it as a root requiring rewriting when it contains nested slices.
func (t *sliceCapacityTracker) seedConstant(v ir.ValueId, sizes map[ir.ValueId]*sliceSizes) {
	_, typ, ok := t.dfg.GetArrayConstant(v)
	if !ok {
		return
	}
	if ir.ContainsNestedSlice(typ) && !t.tracked[v] {
		t.tracked[v] = true
		t.sliceValues = append(t.sliceValues, v)
	}
	t.computeSliceSizes(v, sizes)
}

// computeSliceSizes builds the size entry for a slice constant: its row
// count plus every slice-typed sub-value recorded as a child, recursively.
func (t *sliceCapacityTracker) computeSliceSizes(v ir.ValueId, sizes map[ir.ValueId]*sliceSizes) {
	contents, typ, ok := t.dfg.GetArrayConstant(v)
	if !ok {
		return
	}
	slice, ok := typ.(*ir.SliceType)
	if !ok {
		return
	}
	if _, ok := sizes[v]; ok {
		return
	}

	entry := &sliceSizes{size: len(contents) / len(slice.ElementTypes)}
	for _, sub := range contents {
		if _, ok := t.dfg.TypeOf(sub).(*ir.SliceType); ok {
			entry.children = append(entry.children, sub)
			t.computeSliceSizes(sub, sizes)
		}
	}
	sizes[v] = entry
}
