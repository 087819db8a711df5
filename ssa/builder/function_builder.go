// Package builder constructs SSA functions instruction by instruction. It is
// the entry point for upstream lowering and for tests that need hand-built
// functions.
package builder

import (
	"github.com/0xsisyfos/noir/field"
	"github.com/0xsisyfos/noir/ssa/ir"
)

type FunctionBuilder struct {
	f     *ir.Function
	block ir.BasicBlockId
}

func NewFunctionBuilder(name string, id ir.FunctionId, runtime ir.RuntimeType, engine field.Field) *FunctionBuilder {
	dfg := ir.NewDataFlowGraph(engine)
	f := &ir.Function{
		Name:    name,
		Id:      id,
		Runtime: runtime,
		Dfg:     dfg,
		DataBus: ir.NewDataBus(),
	}
	f.Entry = dfg.AddBlock()
	return &FunctionBuilder{f: f, block: f.Entry}
}

func (b *FunctionBuilder) Function() *ir.Function {
	return b.f
}

func (b *FunctionBuilder) CurrentBlock() ir.BasicBlockId {
	return b.block
}

// NewBlock creates a fresh empty block and returns its id without switching
// to it.
func (b *FunctionBuilder) NewBlock() ir.BasicBlockId {
	return b.f.Dfg.AddBlock()
}

// SwitchToBlock directs subsequent insertions into the given block.
func (b *FunctionBuilder) SwitchToBlock(block ir.BasicBlockId) {
	b.block = block
}

// AddParameter appends a parameter to the entry block.
func (b *FunctionBuilder) AddParameter(typ ir.Type) ir.ValueId {
	return b.f.Dfg.AddParameter(b.f.Entry, typ)
}

// FieldConstant interns a native-field constant from any numeric Go value.
func (b *FunctionBuilder) FieldConstant(value interface{}) ir.ValueId {
	c := b.f.Dfg.Field.FromInterface(value)
	return b.f.Dfg.MakeConstant(c, ir.FieldType())
}

// NumericConstant interns a constant of an arbitrary numeric type.
func (b *FunctionBuilder) NumericConstant(value interface{}, typ ir.Type) ir.ValueId {
	c := b.f.Dfg.Field.FromInterface(value)
	return b.f.Dfg.MakeConstant(c, typ)
}

// ArrayConstant creates an array or slice constant from flattened contents.
func (b *FunctionBuilder) ArrayConstant(contents []ir.ValueId, typ ir.Type) ir.ValueId {
	return b.f.Dfg.MakeArray(contents, typ)
}

func (b *FunctionBuilder) ImportIntrinsic(intrinsic ir.Intrinsic) ir.ValueId {
	return b.f.Dfg.ImportIntrinsic(intrinsic)
}

func (b *FunctionBuilder) ImportFunction(id ir.FunctionId) ir.ValueId {
	return b.f.Dfg.ImportFunction(id)
}

func (b *FunctionBuilder) insert(insn ir.Instruction, resultTypes []ir.Type) []ir.ValueId {
	id := b.f.Dfg.MakeInstruction(insn, resultTypes, nil)
	b.f.Dfg.InsertInBlock(b.block, id)
	return b.f.Dfg.InstructionResults(id)
}

func (b *FunctionBuilder) InsertBinary(lhs ir.ValueId, op ir.BinaryOp, rhs ir.ValueId) ir.ValueId {
	resultType := b.f.Dfg.TypeOf(lhs)
	if op == ir.BinaryEq || op == ir.BinaryLt {
		resultType = ir.BoolType()
	}
	return b.insert(ir.Instruction{Op: ir.OpBinary, Binary: op, Lhs: lhs, Rhs: rhs}, []ir.Type{resultType})[0]
}

func (b *FunctionBuilder) InsertNot(v ir.ValueId) ir.ValueId {
	return b.insert(ir.Instruction{Op: ir.OpNot, Lhs: v}, []ir.Type{b.f.Dfg.TypeOf(v)})[0]
}

func (b *FunctionBuilder) InsertConstrain(lhs, rhs ir.ValueId, message string) {
	b.insert(ir.Instruction{Op: ir.OpConstrain, Lhs: lhs, Rhs: rhs, Message: message}, nil)
}

func (b *FunctionBuilder) InsertArrayGet(array, index ir.ValueId, elementType ir.Type) ir.ValueId {
	return b.insert(ir.Instruction{Op: ir.OpArrayGet, Array: array, Index: index}, []ir.Type{elementType})[0]
}

func (b *FunctionBuilder) InsertArraySet(array, index, value ir.ValueId) ir.ValueId {
	resultType := b.f.Dfg.TypeOf(array)
	return b.insert(ir.Instruction{Op: ir.OpArraySet, Array: array, Index: index, ValueArg: value}, []ir.Type{resultType})[0]
}

func (b *FunctionBuilder) InsertCall(fn ir.ValueId, args []ir.ValueId, resultTypes []ir.Type) []ir.ValueId {
	return b.insert(ir.Instruction{Op: ir.OpCall, Func: fn, Args: args}, resultTypes)
}

func (b *FunctionBuilder) TerminateWithReturn(values []ir.ValueId) {
	b.f.Dfg.Block(b.block).Terminator = &ir.Terminator{Kind: ir.TerminatorReturn, Args: values}
}

func (b *FunctionBuilder) TerminateWithJmp(dest ir.BasicBlockId, args []ir.ValueId) {
	b.f.Dfg.Block(b.block).Terminator = &ir.Terminator{Kind: ir.TerminatorJmp, Dest: dest, Args: args}
}

func (b *FunctionBuilder) TerminateWithJmpIf(condition ir.ValueId, then, els ir.BasicBlockId) {
	b.f.Dfg.Block(b.block).Terminator = &ir.Terminator{Kind: ir.TerminatorJmpIf, Condition: condition, Dest: then, Else: els}
}

// Finish returns the built function.
func (b *FunctionBuilder) Finish() *ir.Function {
	return b.f
}
