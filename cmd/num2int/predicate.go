package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dora-network/num2int/fold"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
)

var (
	predicateRe = regexp.MustCompile(`^\s*(\S+?)\s*(<=|>=|<>|!=|==|=|<|>)\s*(\S+)\s*$`)
	columnRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Predicate is one `column op literal` or `literal op column` comparison.
type Predicate struct {
	Column      string
	Width       numeric.Width
	Kind        operator.Kind
	Literal     fold.Literal
	LiteralType operator.LiteralType
	LiteralLeft bool
}

// Key is the catalog key of the predicate's operator.
func (p Predicate) Key() operator.Key {
	return operator.Key{Literal: p.LiteralType, Width: p.Width, Kind: p.Kind, LiteralLeft: p.LiteralLeft}
}

func (p Predicate) String() string {
	col := p.Column + "::" + p.Width.TypeName()
	lit := p.Literal.String() + "::" + p.LiteralType.String()
	if p.LiteralLeft {
		return fmt.Sprintf("%s %s %s", lit, p.Kind.Symbol(), col)
	}
	return fmt.Sprintf("%s %s %s", col, p.Kind.Symbol(), lit)
}

// ParsePredicate reads comparisons such as "c > 10.5", "c::int2 = 1e3::float8" or
// "-Infinity < c". Columns without a type suffix get width w; literals without one are
// numeric.
func ParsePredicate(s string, w numeric.Width) (Predicate, error) {
	m := predicateRe.FindStringSubmatch(s)
	if m == nil {
		return Predicate{}, fmt.Errorf("predicate %q: want <column> <op> <literal>", s)
	}
	kind, err := operator.ParseKind(m[2])
	if err != nil {
		return Predicate{}, err
	}

	p := Predicate{Kind: kind}
	colSide, litSide := m[1], m[3]
	if !isColumn(m[1]) {
		colSide, litSide = m[3], m[1]
		p.LiteralLeft = true
	}
	if !isColumn(colSide) {
		return Predicate{}, fmt.Errorf("predicate %q: no integer column", s)
	}
	if isColumn(litSide) {
		return Predicate{}, fmt.Errorf("predicate %q: both sides are columns", s)
	}

	p.Column, p.Width, err = parseColumn(colSide, w)
	if err != nil {
		return Predicate{}, err
	}
	p.Literal, p.LiteralType, err = ParseLiteral(litSide)
	if err != nil {
		return Predicate{}, err
	}
	return p, nil
}

func isColumn(s string) bool {
	name, _, _ := strings.Cut(s, "::")
	if !columnRe.MatchString(name) {
		return false
	}
	switch strings.ToLower(name) {
	case "nan", "inf", "infinity", "null":
		return false
	}
	return true
}

func parseColumn(s string, w numeric.Width) (string, numeric.Width, error) {
	name, typ, ok := strings.Cut(s, "::")
	if !ok {
		return name, w, nil
	}
	cw, err := numeric.ParseWidth(typ)
	if err != nil {
		return "", 0, fmt.Errorf("column %s: %w", name, err)
	}
	return name, cw, nil
}

// ParseLiteral reads "value[::type]". The value is a decimal number, NaN, Infinity,
// -Infinity or NULL; the type is numeric, float4 or float8 and defaults to numeric.
func ParseLiteral(s string) (fold.Literal, operator.LiteralType, error) {
	value, typName, hasType := strings.Cut(s, "::")
	typ := operator.Numeric
	if hasType {
		var err error
		if typ, err = operator.ParseLiteralType(typName); err != nil {
			return fold.Literal{}, 0, err
		}
	}
	if strings.EqualFold(value, "null") {
		return fold.Null(), typ, nil
	}

	switch typ {
	case operator.Float4:
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fold.Literal{}, 0, fmt.Errorf("float4 literal %q: %w", value, err)
		}
		return fold.Float32(float32(f)), typ, nil
	case operator.Float8:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fold.Literal{}, 0, fmt.Errorf("float8 literal %q: %w", value, err)
		}
		return fold.Float64(f), typ, nil
	default:
		v, err := numeric.ParseString(value)
		if err != nil {
			return fold.Literal{}, 0, err
		}
		return fold.Decimal(v), typ, nil
	}
}
