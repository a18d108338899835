// Parse command shows how a table row is turned into field values.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/pkg/fields"
	"github.com/mesh-intelligence/larder/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <kind> <name=value>...",
	Short: "Parse a table row and print the resulting entity",
	Long: `Parse builds an entity from name=value pairs, in the order given, and
runs the field parser over it using the configured field definitions. The
result is printed as JSON.

Valid kinds: node, user, term, role, language

Example:
  larder parse node title=Hello "field_tags=A, B"
  larder parse node "field_image:alt=foo, bar" ":title=t1, t2"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	kind, err := types.ParseKind(args[0])
	if err != nil {
		return userError(fmt.Errorf("%w %q (valid: %s)", err, args[0], kindNames()))
	}

	raw := types.NewEntity()
	for _, arg := range args[1:] {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return userError(fmt.Errorf("invalid field %q (expected name=value)", arg))
		}
		raw.Set(name, value)
	}

	backend, err := attachBackend()
	if err != nil {
		return systemError(err)
	}
	defer backend.Detach()

	parsed, err := fields.Parse(kind, raw, backend.IsField)
	if err != nil {
		return userError(err)
	}
	return writeJSON(cmd.OutOrStdout(), parsed)
}

func kindNames() string {
	var names []string
	for _, k := range types.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
