package ir

import (
	"fmt"
	"strings"
)

// String renders the function in a human-readable SSA form, mainly for
// debugging and test diagnostics.
func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s fn %s f%d {\n", f.Runtime, f.Name, f.Id)
	for _, block := range NewPostOrder(f).Reversed() {
		f.printBlock(&sb, block)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (f *Function) printBlock(sb *strings.Builder, id BasicBlockId) {
	b := f.Dfg.Block(id)

	params := make([]string, len(b.Params))
	for i, p := range b.Params {
		params[i] = fmt.Sprintf("v%d: %s", p, f.Dfg.TypeOf(p))
	}
	fmt.Fprintf(sb, "  b%d(%s):\n", id, strings.Join(params, ", "))

	for _, insn := range b.Instructions {
		fmt.Fprintf(sb, "    %s\n", f.printInstruction(insn))
	}
	if b.Terminator != nil {
		fmt.Fprintf(sb, "    %s\n", f.printTerminator(*b.Terminator))
	}
}

func (f *Function) printInstruction(id InstructionId) string {
	insn := f.Dfg.Instruction(id)
	results := f.Dfg.InstructionResults(id)

	lhs := ""
	if len(results) > 0 {
		rs := make([]string, len(results))
		for i, r := range results {
			rs[i] = fmt.Sprintf("v%d", r)
		}
		lhs = strings.Join(rs, ", ") + " = "
	}

	switch insn.Op {
	case OpBinary:
		return fmt.Sprintf("%s%s %s, %s", lhs, insn.Binary, f.valueToString(insn.Lhs), f.valueToString(insn.Rhs))
	case OpNot:
		return fmt.Sprintf("%snot %s", lhs, f.valueToString(insn.Lhs))
	case OpConstrain:
		s := fmt.Sprintf("constrain %s == %s", f.valueToString(insn.Lhs), f.valueToString(insn.Rhs))
		if insn.Message != "" {
			s += fmt.Sprintf(" %q", insn.Message)
		}
		return s
	case OpArrayGet:
		return fmt.Sprintf("%sarray_get %s, index %s", lhs, f.valueToString(insn.Array), f.valueToString(insn.Index))
	case OpArraySet:
		return fmt.Sprintf("%sarray_set %s, index %s, value %s",
			lhs, f.valueToString(insn.Array), f.valueToString(insn.Index), f.valueToString(insn.ValueArg))
	case OpCall:
		args := make([]string, len(insn.Args))
		for i, a := range insn.Args {
			args[i] = f.valueToString(a)
		}
		return fmt.Sprintf("%scall %s(%s)", lhs, f.valueToString(insn.Func), strings.Join(args, ", "))
	default:
		panic(fmt.Sprintf("unknown opcode %d", insn.Op))
	}
}

func (f *Function) printTerminator(t Terminator) string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = f.valueToString(a)
	}
	switch t.Kind {
	case TerminatorReturn:
		return strings.TrimSpace("return " + strings.Join(args, ", "))
	case TerminatorJmp:
		return fmt.Sprintf("jmp b%d(%s)", t.Dest, strings.Join(args, ", "))
	case TerminatorJmpIf:
		return fmt.Sprintf("jmpif %s then: b%d, else: b%d", f.valueToString(t.Condition), t.Dest, t.Else)
	default:
		panic(fmt.Sprintf("unknown terminator kind %d", t.Kind))
	}
}

func (f *Function) valueToString(id ValueId) string {
	v := f.Dfg.Value(id)
	switch v.Kind {
	case ValueNumericConstant:
		return fmt.Sprintf("%s %s", v.Typ, f.Dfg.Field.String(v.Constant))
	case ValueArray:
		elems := make([]string, len(v.Array))
		for i, e := range v.Array {
			elems[i] = f.valueToString(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case ValueIntrinsic:
		return v.Intrinsic.String()
	case ValueFunction:
		return fmt.Sprintf("f%d", v.Function)
	default:
		return fmt.Sprintf("v%d", id)
	}
}
