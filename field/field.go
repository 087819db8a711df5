// Package field abstracts the arithmetic engine behind the numeric constants
// of the SSA. Constants are stored as constraint.Element and interpreted
// through a Field engine; the native field of the language is bn254.
package field

import (
	"fmt"
	"math/big"

	"github.com/0xsisyfos/noir/field/bn254"
	"github.com/consensys/gnark/constraint"
)

type Field interface {
	constraint.Field
	Field() *big.Int
	FieldBitLen() int
}

func GetFieldFromOrder(x *big.Int) Field {
	if x.Cmp(bn254.ScalarField) == 0 {
		return &bn254.Field{}
	}
	panic(fmt.Sprintf("unknown field %v", x))
}
