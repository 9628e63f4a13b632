package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lampe2020/l2db/pkg/value"
)

var setType string

// setCmd represents the set command
var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a key to a value",
	Long: `Set a key to a value in the database. Without --type the literal
is interpreted as an integer, float, boolean, null or string, in that
order. With --type the value is converted to the given type; "raw"
expects a hex-encoded literal.

Example:
  l2db set answer 42
  l2db set greeting "hello there"
  l2db set blob deadbeef --type raw`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := storeFromContext(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}

		v, err := parseLiteral(args[1], value.Type(setType))
		if err != nil {
			fmt.Printf("Error parsing value: %v\n", err)
			return
		}

		stored, err := st.Write(args[0], v, value.Type(setType))
		if err != nil {
			fmt.Printf("Error setting value: %v\n", err)
			return
		}

		if err := flushIfNeeded(st); err != nil {
			fmt.Printf("Error writing database: %v\n", err)
			return
		}

		fmt.Printf("Set key '%s' to a %s value\n", args[0], stored.Type())
	},
}

// parseLiteral interprets a command-line literal. An explicit raw type
// switches to hex decoding; otherwise the most specific interpretation
// wins and any requested conversion happens in the store.
func parseLiteral(lit string, vtype value.Type) (value.Value, error) {
	if vtype == value.TypeRaw {
		data, err := hex.DecodeString(lit)
		if err != nil {
			return value.Value{}, fmt.Errorf("raw literals must be hex encoded: %w", err)
		}
		return value.Raw(data), nil
	}

	if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return value.Int(i), nil
	}
	if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
		return value.Uint(u), nil
	}
	if f, err := strconv.ParseFloat(lit, 64); err == nil {
		return value.Float(f), nil
	}
	if b, err := strconv.ParseBool(lit); err == nil {
		return value.Bool(b), nil
	}
	if lit == "null" {
		return value.Null(), nil
	}
	return value.String(lit), nil
}

func init() {
	rootCmd.AddCommand(setCmd)
	setCmd.Flags().StringVarP(&setType, "type", "t", "", "Store the value as this type")
}
