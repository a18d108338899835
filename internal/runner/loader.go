package runner

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidScenario wraps every validation failure of a scenario file.
var ErrInvalidScenario = errors.New("invalid scenario")

// LoadScenarios loads scenarios from files and directories. Directories
// contribute their *.yaml and *.yml files in name order. A file may hold
// several scenarios as separate YAML documents.
func LoadScenarios(paths ...string) ([]Scenario, error) {
	var scenarios []Scenario
	for _, p := range paths {
		files, err := scenarioFiles(p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			loaded, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			scenarios = append(scenarios, loaded...)
		}
	}
	return scenarios, nil
}

func scenarioFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// LoadFile reads every scenario document in a file.
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scenarios, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range scenarios {
		scenarios[i].File = path
	}
	return scenarios, nil
}

// Decode reads and validates every scenario document from r.
func Decode(r io.Reader) ([]Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var scenarios []Scenario
	for {
		var s Scenario
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Validate checks that the scenario is runnable.
func (s Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: scenario name is required", ErrInvalidScenario)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: %s: at least one step is required", ErrInvalidScenario, s.Name)
	}
	for i, step := range s.Steps {
		action, err := step.Action()
		if err != nil {
			return fmt.Errorf("%w: %s: step %d: %w", ErrInvalidScenario, s.Name, i+1, err)
		}
		if action == ActionCreate && len(step.Rows) == 0 {
			return fmt.Errorf("%w: %s: step %d: %w", ErrInvalidScenario, s.Name, i+1, ErrNoRows)
		}
		if action == ActionRole && step.Role.RID == "" {
			return fmt.Errorf("%w: %s: step %d: role rid is required", ErrInvalidScenario, s.Name, i+1)
		}
	}
	return nil
}
