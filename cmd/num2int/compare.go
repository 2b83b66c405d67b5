package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dora-network/num2int/fold"
	"github.com/dora-network/num2int/hash"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
)

type compareOutput struct {
	Integer   int64           `json:"integer"`
	Width     string          `json:"width"`
	Literal   string          `json:"literal"`
	Type      string          `json:"type"`
	Ordering  string          `json:"ordering"`
	Operators map[string]bool `json:"operators"`
	HashMatch bool            `json:"hash_match"`
}

// NewCompareCommand creates the compare command.
func NewCompareCommand(rootOpts *RootOptions) *cobra.Command {
	var width string
	cmd := &cobra.Command{
		Use:   "compare <integer> <literal>...",
		Short: "Compare an integer with decimal or float literals exactly",
		Long: `Compare an integer with each literal without rounding either side, print the
ordering, every comparison operator's verdict and whether their hashes agree.`,
		Example: `  num2int compare -w int4 16777217 16777216::float4 16777217.0`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWidthFlag(width)
			if err != nil {
				return err
			}
			x, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("integer %q: %w", args[0], err)
			}
			if !w.Contains(x) {
				return fmt.Errorf("integer %d does not fit %s", x, w.TypeName())
			}

			outputs := make([]compareOutput, 0, len(args)-1)
			for _, arg := range args[1:] {
				lit, typ, err := ParseLiteral(arg)
				if err != nil {
					return err
				}
				if lit.IsNull() {
					return fmt.Errorf("literal %q: NULL has no ordering", arg)
				}
				outputs = append(outputs, compareLiteral(x, w, lit, typ))
			}
			return renderCompare(cmd, rootOpts, outputs)
		},
	}
	widthFlag(cmd, &width)
	return cmd
}

func compareLiteral(x int64, w numeric.Width, lit fold.Literal, typ operator.LiteralType) compareOutput {
	// integer against literal
	ord := lit.Compare(x).Negate()
	out := compareOutput{
		Integer:   x,
		Width:     w.TypeName(),
		Literal:   lit.String(),
		Type:      typ.String(),
		Ordering:  ord.String(),
		Operators: make(map[string]bool, len(operator.Kinds)),
		HashMatch: lit.Hash(0) == integerHash(x, typ),
	}
	for _, k := range operator.Kinds {
		out.Operators[k.Symbol()] = k.Eval(ord)
	}
	return out
}

func integerHash(x int64, typ operator.LiteralType) uint64 {
	switch typ {
	case operator.Float4:
		return hash.IntAsFloat(x, hash.Single)
	case operator.Float8:
		return hash.IntAsFloat(x, hash.Double)
	default:
		return hash.IntAsDecimal(x)
	}
}

func renderCompare(cmd *cobra.Command, opts *RootOptions, outputs []compareOutput) error {
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), outputs)
	}
	header := []any{"Integer", "Literal", "Ordering"}
	for _, k := range operator.Kinds {
		header = append(header, k.Symbol())
	}
	header = append(header, "Hash match")

	t := newTable(cmd.OutOrStdout(), header...)
	for _, o := range outputs {
		row := []any{
			fmt.Sprintf("%d::%s", o.Integer, o.Width),
			o.Literal + "::" + o.Type,
			o.Ordering,
		}
		for _, k := range operator.Kinds {
			row = append(row, o.Operators[k.Symbol()])
		}
		row = append(row, o.HashMatch)
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
