// Field commands manage the field definitions the parser consults.
package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/types"
)

var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Manage field definitions",
}

var fieldAddCmd = &cobra.Command{
	Use:   "add <kind> <name>",
	Short: "Define a field of an entity kind",
	Long: `Add records a field definition in the data directory. Values of defined
fields are parsed into structured values; all other fields are passed through
as plain strings.

Example:
  larder field add node field_tags`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := types.ParseKind(args[0])
		if err != nil {
			return userError(fmt.Errorf("%w %q (valid: %s)", err, args[0], kindNames()))
		}

		backend, err := attachBackend()
		if err != nil {
			return systemError(err)
		}
		defer backend.Detach()

		if err := backend.DefineField(kind, args[1]); err != nil {
			if errors.Is(err, types.ErrInvalidData) {
				return userError(err)
			}
			return systemError(fmt.Errorf("define field: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "defined %s field %s\n", kind, args[1])
		return nil
	},
}

var fieldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List field definitions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := attachBackend()
		if err != nil {
			return systemError(err)
		}
		defer backend.Detach()

		defs, err := backend.Fields()
		if err != nil {
			return systemError(fmt.Errorf("list fields: %w", err))
		}
		if flagJSON {
			return writeJSON(cmd.OutOrStdout(), defs)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KIND\tFIELD")
		for _, d := range defs {
			fmt.Fprintf(tw, "%s\t%s\n", d.EntityType, d.FieldName)
		}
		return tw.Flush()
	},
}

func init() {
	fieldCmd.AddCommand(fieldAddCmd)
	fieldCmd.AddCommand(fieldListCmd)
}
