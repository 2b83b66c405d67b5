package operator

import (
	"context"
	"fmt"
	"strings"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/numeric"
)

// LiteralType is the inexact type on the non-integer side of a comparison.
type LiteralType uint8

const (
	Numeric LiteralType = iota + 1
	Float4
	Float8
)

var LiteralTypes = [...]LiteralType{Numeric, Float4, Float8}

func ParseLiteralType(s string) (LiteralType, error) {
	switch strings.ToLower(s) {
	case "numeric", "decimal":
		return Numeric, nil
	case "float4", "real", "float32":
		return Float4, nil
	case "float8", "double", "float64":
		return Float8, nil
	default:
		return 0, errors.Wrap(errors.InvalidInputError, errors.ErrInvalidLiteral, fmt.Sprintf("literal type %q", s))
	}
}

func (t LiteralType) Valid() bool {
	return t >= Numeric && t <= Float8
}

func (t LiteralType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Float4:
		return "float4"
	case Float8:
		return "float8"
	default:
		return fmt.Sprintf("LiteralType(%d)", uint8(t))
	}
}

// Identity is the host catalog's opaque identifier for a registered operator.
type Identity uint32

// InvalidIdentity is never assigned to an operator.
const InvalidIdentity Identity = 0

// Key names one operator signature: the literal type, the integer width, the operator
// kind, and which side the literal sits on.
type Key struct {
	Literal     LiteralType
	Width       numeric.Width
	Kind        Kind
	LiteralLeft bool
}

func (k Key) Valid() bool {
	return k.Literal.Valid() && k.Width.Valid() && k.Kind.Valid()
}

// String renders the key as left_kind_right, for example numeric_lt_int4 or int8_eq_float8.
func (k Key) String() string {
	lit, in := k.Literal.String(), k.Width.TypeName()
	if k.LiteralLeft {
		return lit + "_" + k.Kind.String() + "_" + in
	}
	return in + "_" + k.Kind.String() + "_" + lit
}

// ParseKey reads the form produced by Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return Key{}, errors.Newf(errors.InvalidInputError, "operator key %q: want left_kind_right", s)
	}
	kind, err := ParseKind(parts[1])
	if err != nil {
		return Key{}, err
	}

	left, right := parts[0], parts[2]
	if lit, err := ParseLiteralType(left); err == nil {
		w, err := numeric.ParseWidth(right)
		if err != nil {
			return Key{}, err
		}
		return Key{Literal: lit, Width: w, Kind: kind, LiteralLeft: true}, nil
	}
	w, err := numeric.ParseWidth(left)
	if err != nil {
		return Key{}, err
	}
	lit, err := ParseLiteralType(right)
	if err != nil {
		return Key{}, err
	}
	return Key{Literal: lit, Width: w, Kind: kind}, nil
}

// Signature is a resolved operator.
type Signature struct {
	ID  Identity
	Key Key
}

// Catalog answers which operator identities the host has registered.
type Catalog interface {
	// LookupOperators returns the identity of every key the host has registered.
	// Keys the host does not know are absent from the result and are not an error.
	LookupOperators(ctx context.Context, keys []Key) (map[Key]Identity, error)
}

// Candidates enumerates every key the folder knows how to rewrite.
func Candidates() []Key {
	keys := make([]Key, 0, len(LiteralTypes)*len(numeric.Widths)*len(Kinds)*2)
	for _, lit := range LiteralTypes {
		for _, w := range numeric.Widths {
			for _, k := range Kinds {
				for _, left := range []bool{true, false} {
					keys = append(keys, Key{Literal: lit, Width: w, Kind: k, LiteralLeft: left})
				}
			}
		}
	}
	return keys
}

// StandardKeys is the subset hosts usually register: equality and inequality in both
// directions, ordering operators with the literal on the left.
func StandardKeys() []Key {
	var keys []Key
	for _, k := range Candidates() {
		if k.LiteralLeft || k.Kind == EQ || k.Kind == NE {
			keys = append(keys, k)
		}
	}
	return keys
}
