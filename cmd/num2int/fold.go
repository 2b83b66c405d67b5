package main

import (
	"github.com/spf13/cobra"

	"github.com/dora-network/num2int/fold"
	"github.com/dora-network/num2int/operator"
	"github.com/dora-network/num2int/planner"
)

type foldOutput struct {
	Predicate string      `json:"predicate"`
	Operator  string      `json:"operator"`
	Result    fold.Result `json:"result"`
}

// NewFoldCommand creates the fold command.
func NewFoldCommand(rootOpts *RootOptions) *cobra.Command {
	var width string
	cmd := &cobra.Command{
		Use:   "fold <predicate>...",
		Short: "Fold comparisons against integer columns",
		Long: `Fold each predicate the way the planner would and print the rewrite.

Predicates read "<column>[::int2|int4|int8] <op> <literal>[::numeric|float4|float8]",
either side first, for example "c > 10.5" or "1e10::float8 <= c::int8".`,
		Example: `  num2int fold "c > 10.5" "c::int2 = 99999" "c < 2147483647.5"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parseWidthFlag(width)
			if err != nil {
				return err
			}
			predicates := make([]Predicate, len(args))
			for i, arg := range args {
				if predicates[i], err = ParsePredicate(arg, w); err != nil {
					return err
				}
			}
			return runFold(cmd, rootOpts, predicates)
		},
	}
	widthFlag(cmd, &width)
	return cmd
}

func runFold(cmd *cobra.Command, opts *RootOptions, predicates []Predicate) error {
	catalog := operator.NumberedCatalog(1, operator.Candidates())
	engine := planner.NewEngine(catalog,
		planner.WithLogger(opts.logger),
	)

	outputs := make([]foldOutput, 0, len(predicates))
	for _, p := range predicates {
		id, _ := catalog.Identity(p.Key())
		res := engine.Fold(cmd.Context(), fold.Expr{
			Operator:    id,
			Width:       p.Width,
			Literal:     p.Literal,
			LiteralLeft: p.LiteralLeft,
		})
		outputs = append(outputs, foldOutput{
			Predicate: p.String(),
			Operator:  p.Key().String(),
			Result:    res,
		})
	}

	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), outputs)
	}
	t := newTable(cmd.OutOrStdout(), "Predicate", "Operator", "Kind", "Folded")
	for _, o := range outputs {
		t.AppendRow([]any{o.Predicate, o.Operator, o.Result.Kind(), folded(o)})
	}
	t.Render()
	return nil
}

func folded(o foldOutput) string {
	if o.Result.Kind() == fold.KindNoRewrite {
		return o.Predicate
	}
	return o.Result.String()
}
