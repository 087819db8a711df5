package ir

// FunctionInserter re-emits instructions into a function while resolving
// operands through an old-to-new value substitution built up as it goes.
type FunctionInserter struct {
	f      *Function
	values map[ValueId]ValueId
}

func NewFunctionInserter(f *Function) *FunctionInserter {
	return &FunctionInserter{
		f:      f,
		values: make(map[ValueId]ValueId),
	}
}

func (ins *FunctionInserter) Function() *Function {
	return ins.f
}

// Resolve follows the substitution chain from v to its current identity.
func (ins *FunctionInserter) Resolve(v ValueId) ValueId {
	if mapped, ok := ins.values[v]; ok {
		return ins.Resolve(mapped)
	}
	return v
}

// Map records that old is now represented by new.
func (ins *FunctionInserter) Map(old, new ValueId) {
	if old == new {
		return
	}
	ins.values[old] = new
}

// MapInstruction returns a copy of the instruction with operands resolved
// through the current substitution, along with its call stack.
func (ins *FunctionInserter) MapInstruction(id InstructionId) (Instruction, CallStack) {
	insn := ins.f.Dfg.Instruction(id).MapValues(ins.Resolve)
	return insn, ins.f.Dfg.CallStack(id)
}

// PushInstruction re-emits an existing instruction unchanged except that its
// operands observe the current substitution. Its results keep their ids.
func (ins *FunctionInserter) PushInstruction(id InstructionId, block BasicBlockId) {
	insn, _ := ins.MapInstruction(id)
	ins.f.Dfg.SetInstruction(id, insn)
	ins.f.Dfg.InsertInBlock(block, id)
}

// PushInstructionValue emits a fresh instruction in place of an old one. The
// old instruction's results are mapped to the new results so later uses
// observe the rewritten identity.
func (ins *FunctionInserter) PushInstructionValue(insn Instruction, old InstructionId, block BasicBlockId, callStack CallStack) InstructionId {
	dfg := ins.f.Dfg
	oldResults := dfg.InstructionResults(old)
	resultTypes := make([]Type, len(oldResults))
	for i, r := range oldResults {
		resultTypes[i] = dfg.TypeOf(r)
	}

	id := dfg.MakeInstruction(insn, resultTypes, callStack)
	dfg.InsertInBlock(block, id)

	newResults := dfg.InstructionResults(id)
	for i, r := range oldResults {
		ins.Map(r, newResults[i])
	}
	return id
}

// MapTerminatorInPlace resolves the block terminator's operands through the
// current substitution.
func (ins *FunctionInserter) MapTerminatorInPlace(block BasicBlockId) {
	b := ins.f.Dfg.Block(block)
	if b.Terminator == nil {
		return
	}
	mapped := b.Terminator.MapValues(ins.Resolve)
	b.Terminator = &mapped
}
