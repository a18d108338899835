// Package runner loads YAML scenario files and runs them against a fixture
// driver, one fresh fixtures.Scenario per scenario.
package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Scenario is one scenario definition.
type Scenario struct {
	// Name identifies the scenario in reports.
	Name string `yaml:"name" json:"name"`
	// Description is free text shown in verbose output.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	// Tags are free-form labels.
	Tags []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	// Steps run in order until one fails.
	Steps []Step `yaml:"steps" json:"steps"`

	// File is the path the scenario was loaded from.
	File string `yaml:"-" json:"file,omitempty"`
}

// Action is what a step does.
type Action string

const (
	ActionCreate Action = "create"
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
	ActionRole   Action = "role"
	ActionCheck  Action = "check"
)

// Step is a single scenario step. Exactly one of Create, Login, Logout, Role
// and Check is set.
type Step struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Create names the entity kind to create, one fixture per row.
	Create string `yaml:"create,omitempty" json:"create,omitempty"`
	Rows   []Row  `yaml:"rows,omitempty" json:"rows,omitempty"`

	// Login names a user created earlier in the scenario.
	Login string `yaml:"login,omitempty" json:"login,omitempty"`

	Logout bool `yaml:"logout,omitempty" json:"logout,omitempty"`

	// Role creates a role out of band and tracks it for deletion.
	Role *RoleSpec `yaml:"role,omitempty" json:"role,omitempty"`

	Check *Check `yaml:"check,omitempty" json:"check,omitempty"`

	// ExpectError makes the step pass only when it fails with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty" json:"expect_error,omitempty"`
}

// RoleSpec describes a role to create.
type RoleSpec struct {
	RID   string `yaml:"rid" json:"rid"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Check asserts the session state.
type Check struct {
	LoggedIn *bool `yaml:"logged_in,omitempty" json:"logged_in,omitempty"`
	// Role is a comma-separated list the current user must hold.
	Role string `yaml:"role,omitempty" json:"role,omitempty"`
}

// Step validation errors.
var (
	ErrNoAction        = errors.New("step has no action")
	ErrMultipleActions = errors.New("step has more than one action")
	ErrNoRows          = errors.New("create step has no rows")
	ErrBadRow          = errors.New("row must be a mapping of scalar values")
)

// Action returns the single action of the step.
func (s Step) Action() (Action, error) {
	var actions []Action
	if s.Create != "" {
		actions = append(actions, ActionCreate)
	}
	if s.Login != "" {
		actions = append(actions, ActionLogin)
	}
	if s.Logout {
		actions = append(actions, ActionLogout)
	}
	if s.Role != nil {
		actions = append(actions, ActionRole)
	}
	if s.Check != nil {
		actions = append(actions, ActionCheck)
	}
	switch len(actions) {
	case 0:
		return "", ErrNoAction
	case 1:
		return actions[0], nil
	default:
		return "", fmt.Errorf("%w: %v", ErrMultipleActions, actions)
	}
}

// Label returns the step name, or a description built from its action.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	action, err := s.Action()
	if err != nil {
		return "invalid step"
	}
	switch action {
	case ActionCreate:
		return fmt.Sprintf("create %d %s", len(s.Rows), s.Create)
	case ActionLogin:
		return "login " + s.Login
	case ActionRole:
		return "role " + s.Role.RID
	default:
		return string(action)
	}
}

// Row is one table row of raw field values, kept in authored order.
type Row struct {
	entity *types.Entity
}

// RowOf builds a row from alternating name/value pairs.
func RowOf(pairs ...string) Row {
	return Row{entity: types.EntityOf(pairs...)}
}

// Entity returns a fresh raw entity holding the row's values.
func (r Row) Entity() *types.Entity {
	return r.entity.Clone()
}

// UnmarshalYAML decodes a mapping node, keeping key order. Values must be
// scalars; they are kept as their literal text.
func (r *Row) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d", ErrBadRow, node.Line)
	}
	e := types.NewEntity()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: field %q on line %d", ErrBadRow, key.Value, value.Line)
		}
		text := value.Value
		if value.Tag == "!!null" {
			text = ""
		}
		e.Set(key.Value, text)
	}
	r.entity = e
	return nil
}

// MarshalJSON encodes the row in field order.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.entity == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.entity)
}

// Result is the outcome of a step or scenario.
type Result string

const (
	ResultPassed  Result = "PASSED"
	ResultFailed  Result = "FAILED"
	ResultSkipped Result = "SKIPPED"
	ResultError   Result = "ERROR"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Step     Step          `json:"step"`
	Result   Result        `json:"result"`
	Duration time.Duration `json:"duration"`
	// Created is the number of fixtures the step created.
	Created int    `json:"created,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ScenarioResult is the outcome of one scenario, teardown included.
type ScenarioResult struct {
	Scenario    Scenario      `json:"scenario"`
	Result      Result        `json:"result"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
	StepResults []StepResult  `json:"step_results"`
	Error       string        `json:"error,omitempty"`
	// CleanupError holds the joined teardown failures.
	CleanupError string `json:"cleanup_error,omitempty"`
}

// SuiteResult is the outcome of a run.
type SuiteResult struct {
	StartTime        time.Time        `json:"start_time"`
	EndTime          time.Time        `json:"end_time"`
	Duration         time.Duration    `json:"duration"`
	TotalScenarios   int              `json:"total_scenarios"`
	PassedScenarios  int              `json:"passed_scenarios"`
	FailedScenarios  int              `json:"failed_scenarios"`
	ErrorScenarios   int              `json:"error_scenarios"`
	SkippedScenarios int              `json:"skipped_scenarios"`
	ScenarioResults  []ScenarioResult `json:"scenario_results"`
}

// Succeeded reports whether no scenario failed or errored.
func (r *SuiteResult) Succeeded() bool {
	return r.FailedScenarios == 0 && r.ErrorScenarios == 0
}

// Reporter receives progress while a suite runs.
type Reporter interface {
	ReportStart(scenarios []Scenario)
	ReportScenarioStart(scenario Scenario)
	ReportStepResult(result StepResult)
	ReportScenarioResult(result ScenarioResult)
	ReportSuiteResult(result SuiteResult)
}
