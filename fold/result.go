package fold

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/dora-network/num2int/compare"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
)

// ResultKind tags the variant held by a Result.
type ResultKind uint8

const (
	KindNoRewrite ResultKind = iota
	KindConstant
	KindRewritten
)

func (k ResultKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindRewritten:
		return "rewritten"
	default:
		return "no_rewrite"
	}
}

// Result is the outcome of folding one comparison: leave it alone, replace it with a
// boolean constant, or replace it with an integer comparison at the column's width.
// The zero value is NoRewrite.
type Result struct {
	kind    ResultKind
	value   bool
	op      operator.Kind
	width   numeric.Width
	operand int64
}

func NoRewrite() Result {
	return Result{}
}

func Constant(value bool) Result {
	return Result{kind: KindConstant, value: value}
}

// Rewritten stands for the predicate `column op operand` with operand of width w.
func Rewritten(op operator.Kind, w numeric.Width, operand int64) Result {
	return Result{kind: KindRewritten, op: op, width: w, operand: operand}
}

func (r Result) Kind() ResultKind {
	return r.kind
}

// Constant returns the folded boolean.
func (r Result) Constant() (bool, bool) {
	return r.value, r.kind == KindConstant
}

// Comparison returns the rewritten integer predicate.
func (r Result) Comparison() (operator.Kind, numeric.Width, int64, bool) {
	return r.op, r.width, r.operand, r.kind == KindRewritten
}

// Eval evaluates the folded predicate for the column value x. The second return is false
// for NoRewrite, which has nothing to evaluate.
func (r Result) Eval(x int64) (bool, bool) {
	switch r.kind {
	case KindConstant:
		return r.value, true
	case KindRewritten:
		return r.op.Eval(compare.Ints(x, r.operand)), true
	default:
		return false, false
	}
}

func (r Result) String() string {
	switch r.kind {
	case KindConstant:
		return fmt.Sprintf("%t", r.value)
	case KindRewritten:
		return fmt.Sprintf("col %s %d::%s", r.op.Symbol(), r.operand, r.width.TypeName())
	default:
		return "no rewrite"
	}
}

type resultJSON struct {
	Kind     string `json:"kind"`
	Value    *bool  `json:"value,omitempty"`
	Operator string `json:"operator,omitempty"`
	Width    uint8  `json:"width,omitempty"`
	Operand  *int64 `json:"operand,omitempty"`
}

// MarshalJSON renders the result for plan explain output.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Kind: r.kind.String()}
	switch r.kind {
	case KindConstant:
		out.Value = &r.value
	case KindRewritten:
		out.Operator = r.op.Symbol()
		out.Width = uint8(r.width)
		out.Operand = &r.operand
	}
	return json.Marshal(out)
}
