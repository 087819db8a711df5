package ir

// PostOrder is a post-order traversal of a function's blocks. Reversing it
// yields the order passes visit blocks in.
type PostOrder []BasicBlockId

func NewPostOrder(f *Function) PostOrder {
	type frame struct {
		block   BasicBlockId
		visited bool
	}

	var order PostOrder
	seen := make(map[BasicBlockId]bool)
	stack := []frame{{block: f.Entry}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.visited {
			order = append(order, top.block)
			continue
		}
		if seen[top.block] {
			continue
		}
		seen[top.block] = true
		stack = append(stack, frame{block: top.block, visited: true})

		if term := f.Dfg.Block(top.block).Terminator; term != nil {
			succs := term.Successors()
			for i := len(succs) - 1; i >= 0; i-- {
				if !seen[succs[i]] {
					stack = append(stack, frame{block: succs[i]})
				}
			}
		}
	}
	return order
}

// Reversed returns the blocks in reverse post order.
func (po PostOrder) Reversed() []BasicBlockId {
	r := make([]BasicBlockId, len(po))
	for i, b := range po {
		r[len(po)-1-i] = b
	}
	return r
}
