// Package ssa holds the optimizing middle tier of the compiler: passes that
// rewrite type-checked, monomorphic SSA functions before circuit generation.
package ssa

import (
	"fmt"

	"github.com/0xsisyfos/noir/ssa/ir"
)

// Ssa is a whole program in SSA form.
type Ssa struct {
	Functions map[ir.FunctionId]*ir.Function
	Main      ir.FunctionId
}

// New builds a program from its functions; the first one is main.
func New(main *ir.Function, others ...*ir.Function) *Ssa {
	s := &Ssa{
		Functions: make(map[ir.FunctionId]*ir.Function),
		Main:      main.Id,
	}
	s.Functions[main.Id] = main
	for _, f := range others {
		if _, ok := s.Functions[f.Id]; ok {
			panic(fmt.Sprintf("duplicate function id f%d", f.Id))
		}
		s.Functions[f.Id] = f
	}
	return s
}

func (s *Ssa) MainFunction() *ir.Function {
	return s.Functions[s.Main]
}
