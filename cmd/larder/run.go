// Run command executes scenario files against the configured backend.
package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/larder/internal/runner"
)

var flagFailFast bool

// errScenariosFailed is returned when at least one scenario did not pass.
var errScenariosFailed = errors.New("scenarios failed")

var runCmd = &cobra.Command{
	Use:   "run <file|dir>...",
	Short: "Run fixture scenarios",
	Long: `Run loads YAML scenario files and runs each scenario in order. Every
fixture a scenario creates is removed when the scenario ends, pass or fail.

Directories contribute their *.yaml and *.yml files in name order.

Example:
  larder run scenarios/
  larder run --verbose scenarios/articles.yaml
  larder run --json scenarios/ > report.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScenarios,
}

func init() {
	runCmd.Flags().BoolVar(&flagFailFast, "fail-fast", false, "stop after the first scenario that does not pass")
}

func runScenarios(cmd *cobra.Command, args []string) error {
	scenarios, err := runner.LoadScenarios(args...)
	if err != nil {
		return userError(fmt.Errorf("load scenarios: %w", err))
	}

	backend, err := attachBackend()
	if err != nil {
		return systemError(err)
	}
	defer backend.Detach()

	reporter := runner.NewConsoleReporter(cmd.OutOrStdout(), flagVerbose)
	if flagJSON {
		reporter = runner.NewJSONReporter(cmd.OutOrStdout())
	}

	r, err := runner.New(runner.Options{
		Driver:   backend,
		Reporter: reporter,
		Logger:   newLogger(cmd.ErrOrStderr()),
		FailFast: flagFailFast,
	})
	if err != nil {
		return systemError(err)
	}

	suite, err := r.Run(cmd.Context(), scenarios)
	if err != nil {
		return systemError(fmt.Errorf("run interrupted: %w", err))
	}
	if !suite.Succeeded() {
		return userError(fmt.Errorf("%w: %d of %d", errScenariosFailed,
			suite.FailedScenarios+suite.ErrorScenarios, suite.TotalScenarios))
	}
	return nil
}
