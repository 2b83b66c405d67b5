package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dora-network/num2int/hash"
	"github.com/dora-network/num2int/numeric"
	"github.com/dora-network/num2int/operator"
)

type hashOutput struct {
	Value string `json:"value"`
	Type  string `json:"type"`
	Hash  string `json:"hash"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		seed      uint64
		precision string
	)
	cmd := &cobra.Command{
		Use:   "hash <value>...",
		Short: "Print the cross-type hash of values",
		Long: `Print the hash of each value. Values equal as numbers hash alike across types:
an integer typed int2, int4 or int8 hashes like the equal decimal, or like the equal
float when --precision is float4 or float8.`,
		Example: `  num2int hash 10::int4 10.000 10::float8
  num2int hash --precision float8 9007199254740993::int8 9007199254740992::float8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := operator.ParseLiteralType(precision)
			if err != nil {
				return fmt.Errorf("--precision: %w", err)
			}
			var intAs *operator.LiteralType
			if typ != operator.Numeric {
				intAs = &typ
			}

			outputs := make([]hashOutput, 0, len(args))
			for _, arg := range args {
				out, err := hashValue(arg, intAs, seed)
				if err != nil {
					return err
				}
				outputs = append(outputs, out)
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), outputs)
			}
			t := newTable(cmd.OutOrStdout(), "Value", "Type", "Hash")
			for _, o := range outputs {
				t.AppendRow([]any{o.Value, o.Type, o.Hash})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().Uint64Var(&seed, "seed", 0, "hash seed")
	cmd.Flags().StringVar(&precision, "precision", "numeric", "what integers hash as (numeric|float4|float8)")
	return cmd
}

func hashValue(arg string, intAs *operator.LiteralType, seed uint64) (hashOutput, error) {
	value, typ, ok := strings.Cut(arg, "::")
	if ok {
		if w, err := numeric.ParseWidth(typ); err == nil {
			return hashInteger(value, w, intAs, seed)
		}
	}

	lit, litType, err := ParseLiteral(arg)
	if err != nil {
		return hashOutput{}, err
	}
	if lit.IsNull() {
		return hashOutput{}, fmt.Errorf("value %q: NULL is not hashed", arg)
	}
	return hashOutput{
		Value: lit.String(),
		Type:  litType.String(),
		Hash:  formatHash(lit.Hash(seed)),
	}, nil
}

func hashInteger(value string, w numeric.Width, intAs *operator.LiteralType, seed uint64) (hashOutput, error) {
	x, err := strconv.ParseInt(value, 10, int(w))
	if err != nil {
		return hashOutput{}, fmt.Errorf("%s value %q: %w", w.TypeName(), value, err)
	}
	out := hashOutput{Value: strconv.FormatInt(x, 10), Type: w.TypeName()}
	switch {
	case intAs == nil:
		out.Hash = formatHash(hash.IntAsDecimalExtended(x, seed))
	case *intAs == operator.Float4:
		out.Type += " as float4"
		out.Hash = formatHash(hash.IntAsFloatExtended(x, hash.Single, seed))
	default:
		out.Type += " as float8"
		out.Hash = formatHash(hash.IntAsFloatExtended(x, hash.Double, seed))
	}
	return out, nil
}

func formatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}
