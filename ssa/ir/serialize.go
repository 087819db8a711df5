package ir

import (
	"fmt"

	"github.com/0xsisyfos/noir/field"
	"github.com/0xsisyfos/noir/utils"
)

// Flat binary encoding of a function, used to hand SSA between pipeline
// stages running in separate processes.

const (
	typeTagNumeric = iota
	typeTagArray
	typeTagSlice
	typeTagReference
	typeTagFunction
)

// Serialize encodes the function into a flat byte stream.
func (f *Function) Serialize() []byte {
	o := &utils.OutputBuf{}
	o.AppendBytes([]byte(f.Name))
	o.AppendUint32(uint32(f.Id))
	o.AppendUint32(uint32(f.Runtime))
	o.AppendUint32(uint32(f.Entry))

	dfg := f.Dfg
	o.AppendUint32(uint32(dfg.NumValues()))
	for id := 0; id < dfg.NumValues(); id++ {
		v := dfg.Value(ValueId(id))
		o.AppendUint32(uint32(v.Kind))
		serializeType(o, v.Typ)
		switch v.Kind {
		case ValueInstruction:
			o.AppendUint32(uint32(v.Instruction))
			o.AppendUint32(uint32(v.Position))
		case ValueParam:
			o.AppendUint32(uint32(v.Position))
		case ValueNumericConstant:
			o.AppendBigInt(dfg.Field.ToBigInt(v.Constant))
		case ValueArray:
			appendValueIds(o, v.Array)
		case ValueIntrinsic:
			o.AppendUint32(uint32(v.Intrinsic))
		case ValueFunction:
			o.AppendUint32(uint32(v.Function))
		default:
			panic(fmt.Sprintf("unknown value kind %d", v.Kind))
		}
	}

	o.AppendUint32(uint32(dfg.NumInstructions()))
	for id := 0; id < dfg.NumInstructions(); id++ {
		serializeInstruction(o, dfg.Instruction(InstructionId(id)))
		appendValueIds(o, dfg.InstructionResults(InstructionId(id)))
		cs := dfg.CallStack(InstructionId(id))
		o.AppendUint32(uint32(len(cs)))
		for _, loc := range cs {
			o.AppendBytes([]byte(loc.File))
			o.AppendUint32(loc.Line)
		}
	}

	o.AppendUint32(uint32(dfg.NumBlocks()))
	for id := 0; id < dfg.NumBlocks(); id++ {
		b := dfg.Block(BasicBlockId(id))
		appendValueIds(o, b.Params)
		o.AppendUint32(uint32(len(b.Instructions)))
		for _, insn := range b.Instructions {
			o.AppendUint32(uint32(insn))
		}
		if b.Terminator == nil {
			o.AppendUint32(0)
		} else {
			o.AppendUint32(1)
			t := *b.Terminator
			o.AppendUint32(uint32(t.Kind))
			appendValueIds(o, t.Args)
			if t.Kind == TerminatorJmpIf {
				o.AppendUint32(uint32(t.Condition))
				o.AppendUint32(uint32(t.Else))
			}
			if t.Kind != TerminatorReturn {
				o.AppendUint32(uint32(t.Dest))
			}
		}
	}

	appendValueIds(o, f.DataBus.CallData)
	o.AppendUint32(uint32(f.DataBus.ReturnData + 1))
	return o.Bytes()
}

// DeserializeFunction decodes a function serialized by Serialize.
func DeserializeFunction(buf []byte, engine field.Field) *Function {
	in := utils.NewInputBuf(buf)
	f := &Function{
		Name:    string(in.ReadBytes()),
		Dfg:     NewDataFlowGraph(engine),
		DataBus: NewDataBus(),
	}
	f.Id = FunctionId(in.ReadUint32())
	f.Runtime = RuntimeType(in.ReadUint32())
	f.Entry = BasicBlockId(in.ReadUint32())
	dfg := f.Dfg

	numValues := int(in.ReadUint32())
	for i := 0; i < numValues; i++ {
		v := Value{Kind: ValueKind(in.ReadUint32())}
		v.Typ = deserializeType(in)
		switch v.Kind {
		case ValueInstruction:
			v.Instruction = InstructionId(in.ReadUint32())
			v.Position = int(in.ReadUint32())
		case ValueParam:
			v.Position = int(in.ReadUint32())
		case ValueNumericConstant:
			v.Constant = engine.FromInterface(in.ReadBigInt())
			dfg.constants[constantKey{constant: v.Constant, typ: v.Typ.String()}] = ValueId(i)
		case ValueArray:
			v.Array = readValueIds(in)
		case ValueIntrinsic:
			v.Intrinsic = Intrinsic(in.ReadUint32())
			dfg.intrinsics[v.Intrinsic] = ValueId(i)
		case ValueFunction:
			v.Function = FunctionId(in.ReadUint32())
			dfg.functions[v.Function] = ValueId(i)
		default:
			panic(fmt.Sprintf("unknown value kind %d", v.Kind))
		}
		dfg.values = append(dfg.values, v)
	}

	numInstructions := int(in.ReadUint32())
	for i := 0; i < numInstructions; i++ {
		dfg.instructions = append(dfg.instructions, deserializeInstruction(in))
		dfg.results = append(dfg.results, readValueIds(in))
		numLocs := int(in.ReadUint32())
		var cs CallStack
		for j := 0; j < numLocs; j++ {
			file := string(in.ReadBytes())
			cs = append(cs, Location{File: file, Line: in.ReadUint32()})
		}
		dfg.callStacks = append(dfg.callStacks, cs)
	}

	numBlocks := int(in.ReadUint32())
	for i := 0; i < numBlocks; i++ {
		b := BasicBlock{Params: readValueIds(in)}
		numInsns := int(in.ReadUint32())
		for j := 0; j < numInsns; j++ {
			b.Instructions = append(b.Instructions, InstructionId(in.ReadUint32()))
		}
		if in.ReadUint32() == 1 {
			t := Terminator{Kind: TerminatorKind(in.ReadUint32())}
			t.Args = readValueIds(in)
			if t.Kind == TerminatorJmpIf {
				t.Condition = ValueId(in.ReadUint32())
				t.Else = BasicBlockId(in.ReadUint32())
			}
			if t.Kind != TerminatorReturn {
				t.Dest = BasicBlockId(in.ReadUint32())
			}
			b.Terminator = &t
		}
		dfg.blocks = append(dfg.blocks, b)
	}

	f.DataBus.CallData = readValueIds(in)
	f.DataBus.ReturnData = ValueId(in.ReadUint32()) - 1
	if !in.IsEnd() {
		panic("trailing bytes after function")
	}
	return f
}

func serializeType(o *utils.OutputBuf, t Type) {
	switch t := t.(type) {
	case *NumericType:
		o.AppendUint32(typeTagNumeric)
		o.AppendUint32(uint32(t.Kind))
		o.AppendUint32(t.BitSize)
	case *ArrayType:
		o.AppendUint32(typeTagArray)
		o.AppendUint32(uint32(len(t.ElementTypes)))
		for _, e := range t.ElementTypes {
			serializeType(o, e)
		}
		o.AppendUint32(uint32(t.Length))
	case *SliceType:
		o.AppendUint32(typeTagSlice)
		o.AppendUint32(uint32(len(t.ElementTypes)))
		for _, e := range t.ElementTypes {
			serializeType(o, e)
		}
	case *ReferenceType:
		o.AppendUint32(typeTagReference)
		serializeType(o, t.Element)
	case *FunctionType:
		o.AppendUint32(typeTagFunction)
	default:
		panic(fmt.Sprintf("unknown type %T", t))
	}
}

func deserializeType(in *utils.InputBuf) Type {
	switch tag := in.ReadUint32(); tag {
	case typeTagNumeric:
		t := &NumericType{Kind: NumericKind(in.ReadUint32())}
		t.BitSize = in.ReadUint32()
		return t
	case typeTagArray:
		n := int(in.ReadUint32())
		t := &ArrayType{ElementTypes: make([]Type, n)}
		for i := 0; i < n; i++ {
			t.ElementTypes[i] = deserializeType(in)
		}
		t.Length = int(in.ReadUint32())
		return t
	case typeTagSlice:
		n := int(in.ReadUint32())
		t := &SliceType{ElementTypes: make([]Type, n)}
		for i := 0; i < n; i++ {
			t.ElementTypes[i] = deserializeType(in)
		}
		return t
	case typeTagReference:
		return &ReferenceType{Element: deserializeType(in)}
	case typeTagFunction:
		return &FunctionType{}
	default:
		panic(fmt.Sprintf("unknown type tag %d", tag))
	}
}

func serializeInstruction(o *utils.OutputBuf, insn Instruction) {
	o.AppendUint32(uint32(insn.Op))
	switch insn.Op {
	case OpBinary:
		o.AppendUint32(uint32(insn.Binary))
		o.AppendUint32(uint32(insn.Lhs))
		o.AppendUint32(uint32(insn.Rhs))
	case OpNot:
		o.AppendUint32(uint32(insn.Lhs))
	case OpConstrain:
		o.AppendUint32(uint32(insn.Lhs))
		o.AppendUint32(uint32(insn.Rhs))
		o.AppendBytes([]byte(insn.Message))
	case OpArrayGet:
		o.AppendUint32(uint32(insn.Array))
		o.AppendUint32(uint32(insn.Index))
	case OpArraySet:
		o.AppendUint32(uint32(insn.Array))
		o.AppendUint32(uint32(insn.Index))
		o.AppendUint32(uint32(insn.ValueArg))
	case OpCall:
		o.AppendUint32(uint32(insn.Func))
		appendValueIds(o, insn.Args)
	default:
		panic(fmt.Sprintf("unknown opcode %d", insn.Op))
	}
}

func deserializeInstruction(in *utils.InputBuf) Instruction {
	insn := Instruction{Op: Opcode(in.ReadUint32())}
	switch insn.Op {
	case OpBinary:
		insn.Binary = BinaryOp(in.ReadUint32())
		insn.Lhs = ValueId(in.ReadUint32())
		insn.Rhs = ValueId(in.ReadUint32())
	case OpNot:
		insn.Lhs = ValueId(in.ReadUint32())
	case OpConstrain:
		insn.Lhs = ValueId(in.ReadUint32())
		insn.Rhs = ValueId(in.ReadUint32())
		insn.Message = string(in.ReadBytes())
	case OpArrayGet:
		insn.Array = ValueId(in.ReadUint32())
		insn.Index = ValueId(in.ReadUint32())
	case OpArraySet:
		insn.Array = ValueId(in.ReadUint32())
		insn.Index = ValueId(in.ReadUint32())
		insn.ValueArg = ValueId(in.ReadUint32())
	case OpCall:
		insn.Func = ValueId(in.ReadUint32())
		insn.Args = readValueIds(in)
	default:
		panic(fmt.Sprintf("unknown opcode %d", insn.Op))
	}
	return insn
}

func appendValueIds(o *utils.OutputBuf, ids []ValueId) {
	o.AppendUint32(uint32(len(ids)))
	for _, id := range ids {
		o.AppendUint32(uint32(id))
	}
}

func readValueIds(in *utils.InputBuf) []ValueId {
	n := int(in.ReadUint32())
	if n == 0 {
		return nil
	}
	ids := make([]ValueId, n)
	for i := range ids {
		ids[i] = ValueId(in.ReadUint32())
	}
	return ids
}
