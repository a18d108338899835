// Init command for the larder CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize larder configuration and storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return systemError(fmt.Errorf("init: %w", err))
		}
		if err := ensureConfigDir(configDir); err != nil {
			return systemError(fmt.Errorf("init: %w", err))
		}
		if err := ensureDefaultConfigFile(configDir); err != nil {
			return systemError(fmt.Errorf("init: %w", err))
		}

		// Attach creates the data directory and seeds field definitions.
		backend, err := attachBackend()
		if err != nil {
			return systemError(fmt.Errorf("init: %w", err))
		}
		defer backend.Detach()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "larder initialized successfully")
		fmt.Fprintln(out, "  config:", configDir)
		fmt.Fprintln(out, "  data:  ", backend.DataDir())
		return nil
	},
}
