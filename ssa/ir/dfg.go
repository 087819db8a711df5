package ir

import (
	"fmt"

	"github.com/0xsisyfos/noir/field"
	"github.com/consensys/gnark/constraint"
)

type constantKey struct {
	constant constraint.Element
	typ      string
}

// DataFlowGraph owns every value, instruction and block of one function.
type DataFlowGraph struct {
	Field field.Field

	values       []Value
	instructions []Instruction
	results      [][]ValueId
	callStacks   []CallStack
	blocks       []BasicBlock

	constants  map[constantKey]ValueId
	intrinsics map[Intrinsic]ValueId
	functions  map[FunctionId]ValueId
}

func NewDataFlowGraph(engine field.Field) *DataFlowGraph {
	return &DataFlowGraph{
		Field:      engine,
		constants:  make(map[constantKey]ValueId),
		intrinsics: make(map[Intrinsic]ValueId),
		functions:  make(map[FunctionId]ValueId),
	}
}

func (dfg *DataFlowGraph) addValue(v Value) ValueId {
	dfg.values = append(dfg.values, v)
	return ValueId(len(dfg.values) - 1)
}

func (dfg *DataFlowGraph) Value(id ValueId) *Value {
	return &dfg.values[id]
}

func (dfg *DataFlowGraph) NumValues() int {
	return len(dfg.values)
}

func (dfg *DataFlowGraph) TypeOf(id ValueId) Type {
	return dfg.values[id].Typ
}

func (dfg *DataFlowGraph) AddBlock() BasicBlockId {
	dfg.blocks = append(dfg.blocks, BasicBlock{})
	return BasicBlockId(len(dfg.blocks) - 1)
}

func (dfg *DataFlowGraph) Block(id BasicBlockId) *BasicBlock {
	return &dfg.blocks[id]
}

func (dfg *DataFlowGraph) NumBlocks() int {
	return len(dfg.blocks)
}

// AddParameter appends a fresh parameter value to the given block.
func (dfg *DataFlowGraph) AddParameter(block BasicBlockId, typ Type) ValueId {
	b := dfg.Block(block)
	id := dfg.addValue(Value{
		Kind:     ValueParam,
		Typ:      typ,
		Position: len(b.Params),
	})
	b.Params = append(b.Params, id)
	return id
}

// MakeConstant interns a numeric constant per (value, type) pair.
func (dfg *DataFlowGraph) MakeConstant(c constraint.Element, typ Type) ValueId {
	if _, ok := typ.(*NumericType); !ok {
		panic(fmt.Sprintf("internal: numeric constant of non-numeric type %s", typ))
	}
	key := constantKey{constant: c, typ: typ.String()}
	if id, ok := dfg.constants[key]; ok {
		return id
	}
	id := dfg.addValue(Value{Kind: ValueNumericConstant, Typ: typ, Constant: c})
	dfg.constants[key] = id
	return id
}

// ZeroConstant returns the canonical zero of the given numeric type.
func (dfg *DataFlowGraph) ZeroConstant(typ Type) ValueId {
	return dfg.MakeConstant(constraint.Element{}, typ)
}

// MakeArray creates an array or slice constant from its flattened contents.
func (dfg *DataFlowGraph) MakeArray(contents []ValueId, typ Type) ValueId {
	switch typ.(type) {
	case *ArrayType, *SliceType:
	default:
		panic(fmt.Sprintf("internal: array constant of non-sequence type %s", typ))
	}
	return dfg.addValue(Value{Kind: ValueArray, Typ: typ, Array: contents})
}

func (dfg *DataFlowGraph) ImportIntrinsic(intrinsic Intrinsic) ValueId {
	if id, ok := dfg.intrinsics[intrinsic]; ok {
		return id
	}
	id := dfg.addValue(Value{Kind: ValueIntrinsic, Typ: &FunctionType{}, Intrinsic: intrinsic})
	dfg.intrinsics[intrinsic] = id
	return id
}

func (dfg *DataFlowGraph) ImportFunction(f FunctionId) ValueId {
	if id, ok := dfg.functions[f]; ok {
		return id
	}
	id := dfg.addValue(Value{Kind: ValueFunction, Typ: &FunctionType{}, Function: f})
	dfg.functions[f] = id
	return id
}

// MakeInstruction adds an instruction to the arena together with one result
// value per entry of resultTypes. It does not place the instruction in any
// block.
func (dfg *DataFlowGraph) MakeInstruction(insn Instruction, resultTypes []Type, callStack CallStack) InstructionId {
	id := InstructionId(len(dfg.instructions))
	dfg.instructions = append(dfg.instructions, insn)
	dfg.callStacks = append(dfg.callStacks, callStack)

	results := make([]ValueId, len(resultTypes))
	for i, typ := range resultTypes {
		results[i] = dfg.addValue(Value{
			Kind:        ValueInstruction,
			Typ:         typ,
			Instruction: id,
			Position:    i,
		})
	}
	dfg.results = append(dfg.results, results)
	return id
}

func (dfg *DataFlowGraph) Instruction(id InstructionId) Instruction {
	return dfg.instructions[id]
}

// SetInstruction overwrites the stored instruction, keeping its results.
func (dfg *DataFlowGraph) SetInstruction(id InstructionId, insn Instruction) {
	dfg.instructions[id] = insn
}

func (dfg *DataFlowGraph) InstructionResults(id InstructionId) []ValueId {
	return dfg.results[id]
}

func (dfg *DataFlowGraph) CallStack(id InstructionId) CallStack {
	return dfg.callStacks[id]
}

func (dfg *DataFlowGraph) NumInstructions() int {
	return len(dfg.instructions)
}

// InsertInBlock appends an already-created instruction to a block.
func (dfg *DataFlowGraph) InsertInBlock(block BasicBlockId, id InstructionId) {
	b := dfg.Block(block)
	b.Instructions = append(b.Instructions, id)
}

// GetArrayConstant returns the contents and type of an array or slice
// constant, or ok=false when the value is not one.
func (dfg *DataFlowGraph) GetArrayConstant(id ValueId) ([]ValueId, Type, bool) {
	v := dfg.Value(id)
	if v.Kind != ValueArray {
		return nil, nil, false
	}
	return v.Array, v.Typ, true
}

// GetNumericConstant returns the scalar constant backing a value, or
// ok=false when the value is not a numeric constant.
func (dfg *DataFlowGraph) GetNumericConstant(id ValueId) (constraint.Element, bool) {
	v := dfg.Value(id)
	if v.Kind != ValueNumericConstant {
		return constraint.Element{}, false
	}
	return v.Constant, true
}
