// Package fold rewrites comparisons between an integer column and an inexact constant
// into an equivalent integer comparison or a boolean constant at plan time.
//
// Every rewrite is sound: for each value the column's width can hold, the folded
// predicate agrees with the exact comparison of that value against the literal.
package fold

import (
	"context"
	"fmt"

	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
)

// Expr is a comparison between an integer column of Width and a Literal, as handed over
// by the planner. LiteralLeft is set for `literal op column`.
type Expr struct {
	Operator    operator.Identity
	Width       numeric.Width
	Literal     Literal
	LiteralLeft bool
}

func (e Expr) String() string {
	if e.LiteralLeft {
		return fmt.Sprintf("%s op(%d) col::%s", e.Literal, e.Operator, e.Width.TypeName())
	}
	return fmt.Sprintf("col::%s op(%d) %s", e.Width.TypeName(), e.Operator, e.Literal)
}

// Resolver maps an operator identity to its signature. *operator.Registry implements it.
type Resolver interface {
	Resolve(ctx context.Context, id operator.Identity) (operator.Signature, bool, error)
}

// Folder folds comparisons whose operator a Resolver recognizes. It holds no state of
// its own and is safe for concurrent use when its Resolver is.
type Folder struct {
	resolver Resolver
}

func New(resolver Resolver) *Folder {
	return &Folder{resolver: resolver}
}

// Fold returns the rewrite for e. The error only reports a failed operator lookup;
// callers should treat it as NoRewrite.
func (f *Folder) Fold(ctx context.Context, e Expr) (Result, error) {
	res, _, _, err := f.FoldWithSignature(ctx, e)
	return res, err
}

// FoldWithSignature is Fold that also returns the signature the operator resolved to,
// from the same lookup. ok is false when the operator was not resolved.
func (f *Folder) FoldWithSignature(ctx context.Context, e Expr) (res Result, sig operator.Signature, ok bool, err error) {
	if e.Literal.IsNull() {
		return NoRewrite(), sig, false, nil
	}

	sig, ok, err = f.resolver.Resolve(ctx, e.Operator)
	if err != nil || !ok {
		return NoRewrite(), operator.Signature{}, false, err
	}

	lit, _ := e.Literal.Type()
	if sig.Key.Literal != lit || sig.Key.Width != e.Width || sig.Key.LiteralLeft != e.LiteralLeft {
		return NoRewrite(), sig, true, nil
	}

	op := sig.Key.Kind
	if e.LiteralLeft {
		op = op.Commute()
	}

	c := e.Literal.Classify(e.Width)
	if !c.Valid {
		return NoRewrite(), sig, true, nil
	}
	return Rewrite(op, e.Width, c), sig, true, nil
}

// Rewrite folds `column op literal` for a column of width w, given the literal's
// classification at that width. c must be Valid.
func Rewrite(op operator.Kind, w numeric.Width, c Classification) Result {
	if c.Overflow != numeric.NoOverflow {
		above := c.Overflow == numeric.Above
		switch op {
		case operator.EQ:
			return Constant(false)
		case operator.NE:
			return Constant(true)
		case operator.LT, operator.LE:
			return Constant(above)
		default:
			return Constant(!above)
		}
	}

	switch op {
	case operator.EQ:
		if c.HasFraction {
			return Constant(false)
		}
		return Rewritten(operator.EQ, w, c.Value)
	case operator.NE:
		if c.HasFraction {
			return Constant(true)
		}
		return Rewritten(operator.NE, w, c.Value)
	}

	if c.HasFraction {
		return snap(op, w, c.Value)
	}
	return saturate(op, w, c.Value)
}

// snap moves a fractional bound onto the integers: with floor < literal < floor+1,
// `col > literal` is `col >= floor+1` and `col < literal` is `col <= floor`.
func snap(op operator.Kind, w numeric.Width, floor int64) Result {
	atMax := floor == w.Max()
	switch op {
	case operator.GT, operator.GE:
		if atMax {
			return Constant(false)
		}
		return Rewritten(operator.GE, w, floor+1)
	default:
		if atMax {
			return Constant(true)
		}
		return Rewritten(operator.LE, w, floor)
	}
}

// saturate folds integral bounds that sit on the edge of w's range and so admit every
// value or none.
func saturate(op operator.Kind, w numeric.Width, v int64) Result {
	switch {
	case op == operator.GT && v == w.Max():
		return Constant(false)
	case op == operator.LE && v == w.Max():
		return Constant(true)
	case op == operator.LT && v == w.Min():
		return Constant(false)
	case op == operator.GE && v == w.Min():
		return Constant(true)
	}
	return Rewritten(op, w, v)
}
