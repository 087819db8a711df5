package ir

// BasicBlockId identifies a block within a function.
type BasicBlockId int

// BasicBlock is an ordered list of instruction ids plus a terminator.
type BasicBlock struct {
	Params       []ValueId
	Instructions []InstructionId
	Terminator   *Terminator
}

// TakeInstructions removes and returns the block's instruction list, leaving
// the block empty so a rewrite can re-emit from a stable snapshot.
func (b *BasicBlock) TakeInstructions() []InstructionId {
	instructions := b.Instructions
	b.Instructions = nil
	return instructions
}
