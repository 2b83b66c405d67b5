package operator

import (
	"fmt"
	"strings"

	"github.com/dora-network/num2int/compare"
	"github.com/dora-network/num2int/errors"
)

// Kind is a comparison operator.
type Kind uint8

const (
	EQ Kind = iota + 1
	NE
	LT
	GT
	LE
	GE
)

// Kinds lists every operator kind.
var Kinds = [...]Kind{EQ, NE, LT, GT, LE, GE}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "=", "==", "eq":
		return EQ, nil
	case "<>", "!=", "ne":
		return NE, nil
	case "<", "lt":
		return LT, nil
	case ">", "gt":
		return GT, nil
	case "<=", "le":
		return LE, nil
	case ">=", "ge":
		return GE, nil
	default:
		return 0, errors.Wrap(errors.InvalidInputError, errors.ErrInvalidOperator, fmt.Sprintf("operator %q", s))
	}
}

func (k Kind) Valid() bool {
	return k >= EQ && k <= GE
}

// Commute returns the operator that gives the same result with the operands swapped.
func (k Kind) Commute() Kind {
	switch k {
	case LT:
		return GT
	case GT:
		return LT
	case LE:
		return GE
	case GE:
		return LE
	default:
		return k
	}
}

// Negate returns the operator that gives the opposite result for every ordered input.
func (k Kind) Negate() Kind {
	switch k {
	case EQ:
		return NE
	case NE:
		return EQ
	case LT:
		return GE
	case GE:
		return LT
	case GT:
		return LE
	case LE:
		return GT
	default:
		return k
	}
}

// Eval applies the operator to the ordering of its left operand against its right.
func (k Kind) Eval(o compare.Ordering) bool {
	switch k {
	case EQ:
		return o == compare.Equal
	case NE:
		return o != compare.Equal
	case LT:
		return o == compare.Less
	case GT:
		return o == compare.Greater
	case LE:
		return o != compare.Greater
	case GE:
		return o != compare.Less
	default:
		return false
	}
}

func (k Kind) Symbol() string {
	switch k {
	case EQ:
		return "="
	case NE:
		return "<>"
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "?"
	}
}

func (k Kind) String() string {
	switch k {
	case EQ:
		return "eq"
	case NE:
		return "ne"
	case LT:
		return "lt"
	case GT:
		return "gt"
	case LE:
		return "le"
	case GE:
		return "ge"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}
