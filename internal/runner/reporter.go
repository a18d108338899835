package runner

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// consoleReporter writes human-readable progress. Colors are only emitted
// when the writer is a terminal.
type consoleReporter struct {
	w       io.Writer
	verbose bool

	passed  lipgloss.Style
	failed  lipgloss.Style
	errored lipgloss.Style
	skipped lipgloss.Style
	title   lipgloss.Style
	faint   lipgloss.Style
}

// NewConsoleReporter creates a reporter that writes to w. Verbose output
// lists every step.
func NewConsoleReporter(w io.Writer, verbose bool) Reporter {
	re := lipgloss.NewRenderer(w)
	return &consoleReporter{
		w:       w,
		verbose: verbose,
		passed:  re.NewStyle().Foreground(lipgloss.Color("10")),
		failed:  re.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		errored: re.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		skipped: re.NewStyle().Foreground(lipgloss.Color("8")),
		title:   re.NewStyle().Bold(true),
		faint:   re.NewStyle().Faint(true),
	}
}

func (r *consoleReporter) symbol(result Result) string {
	switch result {
	case ResultPassed:
		return r.passed.Render("✓ " + string(result))
	case ResultFailed:
		return r.failed.Render("✗ " + string(result))
	case ResultError:
		return r.errored.Render("! " + string(result))
	case ResultSkipped:
		return r.skipped.Render("- " + string(result))
	default:
		return string(result)
	}
}

func (r *consoleReporter) ReportStart(scenarios []Scenario) {
	fmt.Fprintln(r.w, r.title.Render(fmt.Sprintf("Running %d scenario(s)", len(scenarios))))
}

func (r *consoleReporter) ReportScenarioStart(scenario Scenario) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.w, "\n%s\n", r.title.Render(scenario.Name))
	if scenario.Description != "" {
		fmt.Fprintf(r.w, "  %s\n", r.faint.Render(scenario.Description))
	}
	if len(scenario.Tags) > 0 {
		fmt.Fprintf(r.w, "  tags: %s\n", strings.Join(scenario.Tags, ", "))
	}
}

func (r *consoleReporter) ReportStepResult(result StepResult) {
	if !r.verbose {
		return
	}
	fmt.Fprintf(r.w, "  %s %s (%v)\n", r.symbol(result.Result), result.Step.Label(), result.Duration)
	if result.Created > 0 {
		fmt.Fprintf(r.w, "      created: %d\n", result.Created)
	}
	if result.Error != "" {
		fmt.Fprintf(r.w, "      error: %s\n", result.Error)
	}
}

func (r *consoleReporter) ReportScenarioResult(result ScenarioResult) {
	fmt.Fprintf(r.w, "%s %s (%v)\n", r.symbol(result.Result), result.Scenario.Name, result.Duration)
	if result.Error != "" {
		fmt.Fprintf(r.w, "    error: %s\n", result.Error)
	}
	if result.CleanupError != "" {
		fmt.Fprintf(r.w, "    cleanup: %s\n", result.CleanupError)
	}
}

func (r *consoleReporter) ReportSuiteResult(result SuiteResult) {
	fmt.Fprintf(r.w, "\n%s\n", r.title.Render("Summary"))
	fmt.Fprintf(r.w, "  passed:  %d\n", result.PassedScenarios)
	if result.FailedScenarios > 0 {
		fmt.Fprintf(r.w, "  failed:  %d\n", result.FailedScenarios)
	}
	if result.ErrorScenarios > 0 {
		fmt.Fprintf(r.w, "  errors:  %d\n", result.ErrorScenarios)
	}
	if result.SkippedScenarios > 0 {
		fmt.Fprintf(r.w, "  skipped: %d\n", result.SkippedScenarios)
	}
	fmt.Fprintf(r.w, "  total:   %d (%v)\n", result.TotalScenarios, result.Duration)

	if result.Succeeded() {
		fmt.Fprintln(r.w, r.passed.Render("All scenarios passed"))
	} else {
		fmt.Fprintln(r.w, r.failed.Render("Some scenarios failed"))
	}
}

// jsonReporter writes the suite result as one JSON document at the end.
type jsonReporter struct {
	w io.Writer
}

// NewJSONReporter creates a reporter that writes the final SuiteResult as
// indented JSON.
func NewJSONReporter(w io.Writer) Reporter {
	return &jsonReporter{w: w}
}

func (r *jsonReporter) ReportStart([]Scenario)              {}
func (r *jsonReporter) ReportScenarioStart(Scenario)        {}
func (r *jsonReporter) ReportStepResult(StepResult)         {}
func (r *jsonReporter) ReportScenarioResult(ScenarioResult) {}

func (r *jsonReporter) ReportSuiteResult(result SuiteResult) {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(result)
}
