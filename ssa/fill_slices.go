package ssa

import (
	"fmt"

	"github.com/0xsisyfos/noir/ssa/ir"
	"github.com/consensys/gnark/logger"
)

// FillInternalSlices rewrites every nested slice in circuit-targeted
// functions so that, within each tracked root and at each nesting depth, all
// concrete instances share one length, padding smaller ones with dummy data.
// Circuit generation needs a known size for every memory operation and slice
// types do not carry one.
//
// The pass runs on a single flattened block right before circuit generation.
// Functions targeting the unconstrained runtime are skipped entirely.
func (s *Ssa) FillInternalSlices() *Ssa {
	log := logger.Logger()
	for _, f := range s.Functions {
		if f.Runtime != ir.RuntimeAcir {
			continue
		}
		databus := f.DataBus
		ctx := newFillContext(f)
		ctx.processBlocks()
		// the databus must observe the rewritten slice identities
		f.DataBus = databus.MapValues(ctx.inserter.Resolve)

		log.Debug().
			Str("function", f.Name).
			Int("nbTrackedSlices", len(ctx.sliceValues)).
			Msg("filled internal slices")
	}
	return s
}

type fillContext struct {
	inserter *ir.FunctionInserter

	// original slice value -> its value after a write or slice intrinsic
	mappedSliceValues map[ir.ValueId]ir.ValueId

	// updated value -> its previous value; with mappedSliceValues this forms
	// a two way map over every value used in array operations
	sliceParents map[ir.ValueId]ir.ValueId

	// constant roots containing nested slices to be replaced
	sliceValues map[ir.ValueId]bool

	// per-root maximum row count at each nesting depth, set after the
	// collection scan
	rootMaxSizes map[ir.ValueId][]int

	// bound vector of the root whose instruction is being rewritten
	maxSizes []int
}

func newFillContext(f *ir.Function) *fillContext {
	return &fillContext{inserter: ir.NewFunctionInserter(f)}
}

func (ctx *fillContext) processBlocks() {
	f := ctx.inserter.Function()
	order := ir.NewPostOrder(f).Reversed()
	// Merging size bounds across branches or loops is a materially harder
	// analysis; a circuit-targeted function must arrive here flattened.
	if len(order) > 1 {
		panic(fmt.Sprintf("internal: filling internal slices requires a single flattened block, function %s has %d", f.Name, len(order)))
	}
	for _, block := range order {
		ctx.processBlock(block)
	}
}

func (ctx *fillContext) processBlock(block ir.BasicBlockId) {
	dfg := ctx.inserter.Function().Dfg
	// stable snapshot of the original instruction stream
	instructions := dfg.Block(block).TakeInstructions()

	sizes := make(map[ir.ValueId]*sliceSizes)
	tracker := newSliceCapacityTracker(dfg)
	for _, id := range instructions {
		tracker.collectSliceInformation(dfg.Instruction(id), dfg.InstructionResults(id), sizes)
	}
	ctx.sliceValues = tracker.constantNestedSlices()
	ctx.mappedSliceValues = tracker.mappedSliceValues
	ctx.sliceParents = tracker.sliceParents

	ctx.rootMaxSizes = ctx.computeRootMaxSizes(sizes)

	for _, id := range instructions {
		ctx.pushUpdatedInstruction(id, block)
	}
	ctx.inserter.MapTerminatorInPlace(block)
}

// computeRootMaxSizes resolves one bound vector per tracked constant root:
// entry d is the largest row count any sequence at nesting depth d reaches
// under that root. Keeping the bounds per root avoids padding a sequence to
// the size of an unrelated one that happens to share a nesting depth.
func (ctx *fillContext) computeRootMaxSizes(sizes map[ir.ValueId]*sliceSizes) map[ir.ValueId][]int {
	dfg := ctx.inserter.Function().Dfg

	rootMaxSizes := make(map[ir.ValueId][]int, len(ctx.sliceValues))
	for v := range ctx.sliceValues {
		// array-typed roots have a static outer length and no size entry
		entry, ok := sizes[v]
		if !ok {
			continue
		}
		depth := nestedSliceDepth(dfg.TypeOf(v))
		if depth == 0 {
			continue
		}
		local := make([]int, depth)
		local[0] = entry.size
		if resolved, ok := sizes[ctx.resolveSliceValue(v)]; ok {
			local[0] = resolved.size
		}
		ctx.computeSliceMaxSizes(v, sizes, local, 1)
		rootMaxSizes[v] = local
	}
	return rootMaxSizes
}

// computeSliceMaxSizes determines the maximum possible row count of an
// internal slice at each layer of a nested slice, writing results into the
// shared maxSizes accumulator. If the slice map is incorrectly formed the
// recursion exceeds the type's nested slice depth and panics.
func (ctx *fillContext) computeSliceMaxSizes(v ir.ValueId, sizes map[ir.ValueId]*sliceSizes, maxSizes []int, depth int) {
	v = ctx.resolveSliceValue(v)
	entry, ok := sizes[v]
	if !ok {
		panic(fmt.Sprintf("internal: should have slice sizes for v%d", v))
	}
	if len(entry.children) == 0 {
		return
	}

	max := entry.size
	for _, child := range entry.children {
		child = ctx.resolveSliceValue(child)
		childEntry, ok := sizes[child]
		if !ok {
			panic(fmt.Sprintf("internal: should have slice sizes for v%d", child))
		}
		if childEntry.size > max {
			max = childEntry.size
		}
		ctx.computeSliceMaxSizes(child, sizes, maxSizes, depth+1)
	}

	if depth >= len(maxSizes) {
		panic(fmt.Sprintf("internal: slice sizes map exceeds nested depth of its type at v%d", v))
	}
	if max > maxSizes[depth] {
		maxSizes[depth] = max
	}
}

// nestedSliceDepth computes the depth of nested slices in a type: a slice
// adds one level plus the depth of its elements, an array passes its
// elements' depth through without adding a level.
func nestedSliceDepth(typ ir.Type) int {
	switch typ := typ.(type) {
	case *ir.SliceType:
		depth := 1
		for _, e := range typ.ElementTypes {
			depth += nestedSliceDepth(e)
		}
		return depth
	case *ir.ArrayType:
		depth := 0
		for _, e := range typ.ElementTypes {
			depth += nestedSliceDepth(e)
		}
		return depth
	case *ir.ReferenceType:
		return nestedSliceDepth(typ.Element)
	default:
		return 0
	}
}

func (ctx *fillContext) pushUpdatedInstruction(id ir.InstructionId, block ir.BasicBlockId) {
	dfg := ctx.inserter.Function().Dfg
	insn := dfg.Instruction(id)

	switch insn.Op {
	case ir.OpArrayGet, ir.OpArraySet:
		if !ctx.sliceValues[insn.Array] {
			ctx.inserter.PushInstruction(id, block)
			return
		}
		newInsn, callStack := ctx.updatedArrayOpInstr(insn.Array, id)
		ctx.inserter.PushInstructionValue(newInsn, id, block, callStack)

	case ir.OpCall:
		type replacement struct {
			index int
			arg   ir.ValueId
		}
		var argsToReplace []replacement
		for i, arg := range insn.Args {
			if ctx.sliceValues[arg] && dfg.TypeOf(arg).ContainsSliceElement() {
				argsToReplace = append(argsToReplace, replacement{i, arg})
			}
		}
		if len(argsToReplace) == 0 {
			ctx.inserter.PushInstruction(id, block)
			return
		}
		// Each qualifying argument is substituted into the instruction in
		// turn; the working copy accumulates earlier substitutions so the
		// final emitted call carries all of them.
		work, callStack := ctx.inserter.MapInstruction(id)
		if work.Op != ir.OpCall {
			panic("internal: expected call instruction")
		}
		for _, r := range argsToReplace {
			ctx.maxSizes = ctx.rootMaxSizes[ctx.resolveSliceParent(r.arg)]
			work.Args[r.index] = ctx.attachSliceDummies(dfg.TypeOf(r.arg), r.arg, false, 0)
			ctx.inserter.PushInstructionValue(work.Clone(), id, block, callStack)
		}

	default:
		ctx.inserter.PushInstruction(id, block)
	}
}

// updatedArrayOpInstr constructs an ArrayGet or ArraySet whose array operand
// has been replaced by a filled-in copy, preserving the original call stack.
func (ctx *fillContext) updatedArrayOpInstr(array ir.ValueId, id ir.InstructionId) (ir.Instruction, ir.CallStack) {
	dfg := ctx.inserter.Function().Dfg
	// a derived identity reads its bounds from the constant that defines it
	ctx.maxSizes = ctx.rootMaxSizes[ctx.resolveSliceParent(array)]
	newArray := ctx.attachSliceDummies(dfg.TypeOf(array), array, true, 0)

	insn, callStack := ctx.inserter.MapInstruction(id)
	switch insn.Op {
	case ir.OpArrayGet, ir.OpArraySet:
		insn.Array = newArray
	default:
		panic("internal: expected array operation")
	}
	return insn, callStack
}

// attachSliceDummies produces a value of the given type padded to the
// required row count, preserving any real data in value. isParent marks the
// outermost sequence directly touched by the instruction under rewrite: its
// own length is already correct and only its interior needs padding.
func (ctx *fillContext) attachSliceDummies(typ ir.Type, value ir.ValueId, isParent bool, depth int) ir.ValueId {
	dfg := ctx.inserter.Function().Dfg

	switch typ := typ.(type) {
	case *ir.NumericType:
		if value != ir.InvalidValueId {
			return ctx.inserter.Resolve(value)
		}
		return dfg.ZeroConstant(typ)

	case *ir.ArrayType:
		// fixed-size arrays never need padding themselves
		if value != ir.InvalidValueId {
			return ctx.inserter.Resolve(value)
		}
		var contents []ir.ValueId
		for i := 0; i < typ.Length; i++ {
			for _, elem := range typ.ElementTypes {
				contents = append(contents, ctx.attachSliceDummies(elem, ir.InvalidValueId, false, depth))
			}
		}
		return dfg.MakeArray(contents, typ)

	case *ir.SliceType:
		width := len(typ.ElementTypes)
		maxSize := ctx.nestedMax(depth)

		if value != ir.InvalidValueId {
			contents, _, ok := dfg.GetArrayConstant(value)
			if !ok {
				panic(fmt.Sprintf("internal: expected an array constant backing slice v%d", value))
			}
			if isParent {
				maxSize = len(contents) / width
			}
			newContents := make([]ir.ValueId, 0, maxSize*width)
			for i := 0; i < maxSize; i++ {
				for j, elem := range typ.ElementTypes {
					index := i*width + j
					known := ir.InvalidValueId
					if index < len(contents) {
						known = contents[index]
					}
					newContents = append(newContents, ctx.attachSliceDummies(elem, known, false, depth+1))
				}
			}
			return dfg.MakeArray(newContents, typ)
		}

		newContents := make([]ir.ValueId, 0, maxSize*width)
		for i := 0; i < maxSize; i++ {
			for _, elem := range typ.ElementTypes {
				newContents = append(newContents, ctx.attachSliceDummies(elem, ir.InvalidValueId, false, depth+1))
			}
		}
		return dfg.MakeArray(newContents, typ)

	case *ir.ReferenceType:
		panic("internal: cannot generate dummy data for reference types")

	case *ir.FunctionType:
		panic("internal: cannot generate dummy data for function types")

	default:
		panic(fmt.Sprintf("unknown type %T", typ))
	}
}

func (ctx *fillContext) nestedMax(depth int) int {
	if depth < len(ctx.maxSizes) {
		return ctx.maxSizes[depth]
	}
	return 0
}

// resolveSliceValue follows a slice value to its updated identity after any
// writes or slice intrinsics.
func (ctx *fillContext) resolveSliceValue(v ir.ValueId) ir.ValueId {
	if mapped, ok := ctx.mappedSliceValues[v]; ok {
		return ctx.resolveSliceValue(mapped)
	}
	return v
}

// resolveSliceParent follows a derived slice value back to its defining
// constant.
func (ctx *fillContext) resolveSliceParent(v ir.ValueId) ir.ValueId {
	if parent, ok := ctx.sliceParents[v]; ok {
		return ctx.resolveSliceParent(parent)
	}
	return v
}
