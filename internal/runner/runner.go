package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mesh-intelligence/larder/pkg/fixtures"
	"github.com/mesh-intelligence/larder/pkg/hooks"
	"github.com/mesh-intelligence/larder/pkg/session"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Step failures.
var (
	ErrUnknownUser      = errors.New("unknown user")
	ErrRolesUnsupported = errors.New("driver cannot create roles")
	ErrCheckFailed      = errors.New("check failed")
	ErrExpectedError    = errors.New("step succeeded but an error was expected")
)

// Options configures a Runner.
type Options struct {
	Driver types.Driver

	// Dispatcher is shared by every scenario. Nil uses the default
	// dispatcher with the built-in observers.
	Dispatcher *hooks.Dispatcher

	// Reporter receives progress. Nil reports nothing.
	Reporter Reporter

	Logger *slog.Logger

	// FailFast stops after the first scenario that does not pass.
	FailFast bool
}

// Runner executes scenarios sequentially.
type Runner struct {
	driver     types.Driver
	dispatcher *hooks.Dispatcher
	reporter   Reporter
	base       *slog.Logger
	logger     *slog.Logger
	failFast   bool
}

// New creates a runner.
func New(opts Options) (*Runner, error) {
	if opts.Driver == nil {
		return nil, fixtures.ErrNoDriver
	}
	r := &Runner{
		driver:     opts.Driver,
		dispatcher: opts.Dispatcher,
		reporter:   opts.Reporter,
		base:       opts.Logger,
		failFast:   opts.FailFast,
	}
	if r.dispatcher == nil {
		r.dispatcher = hooks.NewDefaultDispatcher()
	}
	if r.reporter == nil {
		r.reporter = nopReporter{}
	}
	if r.base == nil {
		r.base = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r.logger = r.base.With("subsystem", "runner")
	return r, nil
}

// Run executes the scenarios in order. Scenarios not started because the
// context was cancelled or FailFast tripped are reported as skipped.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*SuiteResult, error) {
	suite := &SuiteResult{
		StartTime:      time.Now(),
		TotalScenarios: len(scenarios),
	}
	r.reporter.ReportStart(scenarios)

	stop := false
	for _, sc := range scenarios {
		var result ScenarioResult
		if stop || ctx.Err() != nil {
			result = ScenarioResult{Scenario: sc, Result: ResultSkipped, StartTime: time.Now()}
		} else {
			r.reporter.ReportScenarioStart(sc)
			result = r.runScenario(sc)
		}
		r.reporter.ReportScenarioResult(result)
		suite.ScenarioResults = append(suite.ScenarioResults, result)

		switch result.Result {
		case ResultPassed:
			suite.PassedScenarios++
		case ResultFailed:
			suite.FailedScenarios++
		case ResultError:
			suite.ErrorScenarios++
		case ResultSkipped:
			suite.SkippedScenarios++
		}
		if r.failFast && (result.Result == ResultFailed || result.Result == ResultError) {
			stop = true
		}
	}

	suite.EndTime = time.Now()
	suite.Duration = suite.EndTime.Sub(suite.StartTime)
	r.reporter.ReportSuiteResult(*suite)
	return suite, ctx.Err()
}

// scenarioRun is the state of one running scenario.
type scenarioRun struct {
	fixtures *fixtures.Scenario
	users    *session.Users
}

func (r *Runner) runScenario(sc Scenario) ScenarioResult {
	result := ScenarioResult{Scenario: sc, Result: ResultPassed, StartTime: time.Now()}
	logger := r.logger.With("scenario", sc.Name)

	users := session.NewUsers()
	fx, err := fixtures.New(fixtures.Options{
		Name:       sc.Name,
		Driver:     r.driver,
		Dispatcher: r.dispatcher,
		Users:      users,
		Auth:       session.New(users, r.base),
		Logger:     r.base,
	})
	if err != nil {
		result.Result = ResultError
		result.Error = err.Error()
		result.Duration = time.Since(result.StartTime)
		return result
	}
	run := &scenarioRun{fixtures: fx, users: users}

	failed := false
	for _, step := range sc.Steps {
		if failed {
			sr := StepResult{Step: step, Result: ResultSkipped}
			result.StepResults = append(result.StepResults, sr)
			r.reporter.ReportStepResult(sr)
			continue
		}
		sr := r.runStep(run, step)
		result.StepResults = append(result.StepResults, sr)
		r.reporter.ReportStepResult(sr)
		if sr.Result != ResultPassed {
			failed = true
			result.Result = sr.Result
			result.Error = fmt.Sprintf("%s: %s", step.Label(), sr.Error)
		}
	}

	if err := fx.Cleanup(); err != nil {
		logger.Warn("teardown failed", "error", err)
		result.CleanupError = err.Error()
		if result.Result == ResultPassed {
			result.Result = ResultError
		}
	}
	if state := fx.State(); state != fixtures.StateEmpty {
		result.Result = ResultError
		result.CleanupError = strings.TrimSpace(result.CleanupError + fmt.Sprintf(" scenario left %s after cleanup", state))
	}

	result.Duration = time.Since(result.StartTime)
	logger.Debug("scenario finished", "result", result.Result, "duration", result.Duration)
	return result
}

func (r *Runner) runStep(run *scenarioRun, step Step) StepResult {
	start := time.Now()
	created, err := r.execute(run, step)
	sr := StepResult{Step: step, Result: ResultPassed, Created: created}

	switch {
	case step.ExpectError != "":
		if err == nil {
			sr.Result = ResultFailed
			sr.Error = fmt.Sprintf("%v: %q", ErrExpectedError, step.ExpectError)
		} else if !strings.Contains(err.Error(), step.ExpectError) {
			sr.Result = ResultFailed
			sr.Error = fmt.Sprintf("expected error containing %q, got: %v", step.ExpectError, err)
		}
	case errors.Is(err, ErrCheckFailed):
		sr.Result = ResultFailed
		sr.Error = err.Error()
	case err != nil:
		sr.Result = ResultError
		sr.Error = err.Error()
	}
	sr.Duration = time.Since(start)
	return sr
}

// execute runs the step and returns the number of fixtures it created.
func (r *Runner) execute(run *scenarioRun, step Step) (int, error) {
	action, err := step.Action()
	if err != nil {
		return 0, err
	}
	switch action {
	case ActionCreate:
		return r.create(run, step)
	case ActionLogin:
		user, ok := run.users.User(step.Login)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownUser, step.Login)
		}
		return 0, run.fixtures.LogIn(user)
	case ActionLogout:
		return 0, run.fixtures.LogOut()
	case ActionRole:
		creator, ok := r.driver.(types.RoleCreator)
		if !ok {
			return 0, ErrRolesUnsupported
		}
		if err := creator.CreateRole(step.Role.RID, step.Role.Label); err != nil {
			return 0, err
		}
		return 1, run.fixtures.TrackRole(step.Role.RID)
	case ActionCheck:
		return 0, check(run.fixtures, step.Check)
	default:
		return 0, fmt.Errorf("%w: %s", ErrNoAction, action)
	}
}

func (r *Runner) create(run *scenarioRun, step Step) (int, error) {
	kind, err := types.ParseKind(step.Create)
	if err != nil {
		return 0, err
	}
	var create func(*types.Entity) (*types.Entity, error)
	switch kind {
	case types.KindNode:
		create = run.fixtures.CreateNode
	case types.KindTerm:
		create = run.fixtures.CreateTerm
	case types.KindUser:
		create = run.fixtures.CreateUser
	case types.KindLanguage:
		create = run.fixtures.CreateLanguage
	default:
		return 0, fmt.Errorf("%w: %s cannot be created from rows, use a role step", types.ErrInvalidKind, kind)
	}

	created := 0
	for i, row := range step.Rows {
		handle, err := create(row.Entity())
		if err != nil {
			return created, fmt.Errorf("row %d: %w", i+1, err)
		}
		if handle != nil {
			created++
		}
	}
	return created, nil
}

func check(fx *fixtures.Scenario, c *Check) error {
	if c.LoggedIn != nil && fx.LoggedIn() != *c.LoggedIn {
		return fmt.Errorf("%w: logged in is %t, want %t", ErrCheckFailed, fx.LoggedIn(), *c.LoggedIn)
	}
	if c.Role != "" && !fx.LoggedInWithRole(c.Role) {
		return fmt.Errorf("%w: not logged in with role %q", ErrCheckFailed, c.Role)
	}
	return nil
}

type nopReporter struct{}

func (nopReporter) ReportStart([]Scenario)              {}
func (nopReporter) ReportScenarioStart(Scenario)        {}
func (nopReporter) ReportStepResult(StepResult)         {}
func (nopReporter) ReportScenarioResult(ScenarioResult) {}
func (nopReporter) ReportSuiteResult(SuiteResult)       {}
