package ir

import "fmt"

// InstructionId identifies an instruction in the function's arena.
type InstructionId int

type Opcode int

const (
	// OpBinary computes a binary operation over two scalars.
	OpBinary Opcode = iota
	// OpNot computes the bitwise/logical negation of a scalar.
	OpNot
	// OpConstrain asserts that two values are equal.
	OpConstrain
	// OpArrayGet reads Array at Index.
	OpArrayGet
	// OpArraySet produces a copy of Array with Index replaced by ValueArg.
	OpArraySet
	// OpCall calls a function or intrinsic value with Args.
	OpCall
)

type BinaryOp int

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryEq
	BinaryLt
)

var binaryOpNames = map[BinaryOp]string{
	BinaryAdd: "add",
	BinarySub: "sub",
	BinaryMul: "mul",
	BinaryDiv: "div",
	BinaryEq:  "eq",
	BinaryLt:  "lt",
}

func (op BinaryOp) String() string {
	return binaryOpNames[op]
}

// Instruction is a discriminated union over Opcode. Which fields are
// meaningful depends on Op; Args is only used by OpCall.
type Instruction struct {
	Op Opcode

	Binary BinaryOp
	Lhs    ValueId
	Rhs    ValueId

	// constrain failure message, empty when none
	Message string

	Array    ValueId
	Index    ValueId
	ValueArg ValueId

	Func ValueId
	Args []ValueId
}

// MapValues returns a copy of the instruction with every operand replaced by
// f(operand). Args is cloned, never shared.
func (i Instruction) MapValues(f func(ValueId) ValueId) Instruction {
	r := i
	switch i.Op {
	case OpBinary, OpConstrain:
		r.Lhs = f(i.Lhs)
		r.Rhs = f(i.Rhs)
	case OpNot:
		r.Lhs = f(i.Lhs)
	case OpArrayGet:
		r.Array = f(i.Array)
		r.Index = f(i.Index)
	case OpArraySet:
		r.Array = f(i.Array)
		r.Index = f(i.Index)
		r.ValueArg = f(i.ValueArg)
	case OpCall:
		r.Func = f(i.Func)
		r.Args = make([]ValueId, len(i.Args))
		for j, a := range i.Args {
			r.Args[j] = f(a)
		}
	default:
		panic(fmt.Sprintf("unknown opcode %d", i.Op))
	}
	return r
}

// Clone returns a copy of the instruction that shares no mutable state.
func (i Instruction) Clone() Instruction {
	return i.MapValues(func(v ValueId) ValueId { return v })
}

type TerminatorKind int

const (
	TerminatorReturn TerminatorKind = iota
	TerminatorJmp
	TerminatorJmpIf
)

// Terminator ends a basic block.
type Terminator struct {
	Kind TerminatorKind

	// return values or jump arguments
	Args []ValueId

	Condition ValueId
	// Dest is the jmp target, or the then-target for jmpif.
	Dest BasicBlockId
	Else BasicBlockId
}

func (t Terminator) MapValues(f func(ValueId) ValueId) Terminator {
	r := t
	r.Args = make([]ValueId, len(t.Args))
	for i, a := range t.Args {
		r.Args[i] = f(a)
	}
	if t.Kind == TerminatorJmpIf {
		r.Condition = f(t.Condition)
	}
	return r
}

// Successors lists the blocks the terminator can transfer control to.
func (t Terminator) Successors() []BasicBlockId {
	switch t.Kind {
	case TerminatorReturn:
		return nil
	case TerminatorJmp:
		return []BasicBlockId{t.Dest}
	case TerminatorJmpIf:
		return []BasicBlockId{t.Dest, t.Else}
	default:
		panic(fmt.Sprintf("unknown terminator kind %d", t.Kind))
	}
}

// Location is one frame of source provenance attached to an instruction.
type Location struct {
	File string
	Line uint32
}

// CallStack records where an instruction originates; it is carried through
// rewrites so diagnostics keep pointing at user code.
type CallStack []Location
