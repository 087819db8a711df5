package ir

import "github.com/consensys/gnark/constraint"

// ValueId identifies a value in the function's SSA value space.
type ValueId int

const InvalidValueId ValueId = -1

type ValueKind int

const (
	// ValueInstruction is the result of an instruction.
	ValueInstruction ValueKind = iota
	// ValueParam is a block parameter.
	ValueParam
	// ValueNumericConstant is an interned scalar constant.
	ValueNumericConstant
	// ValueArray is an array or slice constant: an ordered group of values,
	// each group of len(ElementTypes) values forming one row.
	ValueArray
	// ValueIntrinsic references a builtin function.
	ValueIntrinsic
	// ValueFunction references another function of the program.
	ValueFunction
)

// Value is an entry in the value arena. Which fields are meaningful depends
// on Kind; values are immutable once created.
type Value struct {
	Kind ValueKind
	Typ  Type

	// instruction results and block parameters
	Instruction InstructionId
	Position    int

	Constant constraint.Element
	Array    []ValueId

	Intrinsic Intrinsic
	Function  FunctionId
}

// Intrinsic enumerates builtin functions. Only the slice intrinsics are
// meaningful to size tracking; the rest are opaque callees.
type Intrinsic int

const (
	SlicePushBack Intrinsic = iota
	SlicePushFront
	SliceInsert
	SlicePopBack
	SlicePopFront
	SliceRemove
	SliceLen
	AssertConstant
)

var intrinsicNames = map[Intrinsic]string{
	SlicePushBack:  "slice_push_back",
	SlicePushFront: "slice_push_front",
	SliceInsert:    "slice_insert",
	SlicePopBack:   "slice_pop_back",
	SlicePopFront:  "slice_pop_front",
	SliceRemove:    "slice_remove",
	SliceLen:       "slice_len",
	AssertConstant: "assert_constant",
}

func (i Intrinsic) String() string {
	return intrinsicNames[i]
}

// GrowsSlice reports whether the intrinsic produces a slice one row longer
// than its input.
func (i Intrinsic) GrowsSlice() bool {
	switch i {
	case SlicePushBack, SlicePushFront, SliceInsert:
		return true
	default:
		return false
	}
}

// ShrinksSlice reports whether the intrinsic can reduce the used length of
// its input. Recorded maximum sizes are never revised downward for these.
func (i Intrinsic) ShrinksSlice() bool {
	switch i {
	case SlicePopBack, SlicePopFront, SliceRemove:
		return true
	default:
		return false
	}
}

// IsSliceIntrinsic reports whether the intrinsic consumes a slice and
// produces an updated slice identity.
func (i Intrinsic) IsSliceIntrinsic() bool {
	return i.GrowsSlice() || i.ShrinksSlice()
}
