// Package scenario loads scripted runs: a map, a starting random index and
// the triggers to apply, as YAML files on disk or built into the binary.
package scenario

import (
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/sectorsim/internal/level"
	"github.com/vovakirdan/sectorsim/internal/sim"
)

//go:embed scenarios/*.yaml
var builtinScenarios embed.FS

// Scenario is a scripted session.
type Scenario struct {
	Name     string            `yaml:"name"`
	Level    string            `yaml:"level"` // builtin map name or path
	Seed     uint32            `yaml:"seed"`
	Ticks    uint64            `yaml:"ticks"`
	Hazard   *sim.HazardConfig `yaml:"hazard,omitempty"`
	Triggers []sim.Trigger     `yaml:"triggers"`
}

// Validate checks the scenario without loading its level.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario: missing name")
	}
	if sc.Level == "" {
		return fmt.Errorf("scenario %s: missing level", sc.Name)
	}
	for _, t := range sc.Triggers {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
	}
	return nil
}

// LoadLevel resolves the scenario's level.
func (sc *Scenario) LoadLevel() (*level.Level, error) {
	return level.Resolve(sc.Level)
}

// Options returns the session options that apply the scenario's triggers
// and hazard. The hazard consumer, if any, is returned so callers can read
// it after the run.
func (sc *Scenario) Options() ([]sim.Option, *sim.Hazard) {
	opts := []sim.Option{sim.WithTriggers(sc.Triggers...)}
	if sc.Hazard == nil {
		return opts, nil
	}
	h := sim.NewHazard(*sc.Hazard)
	return append(opts, sim.WithConsumer(h)), h
}

// Parse decodes and validates a scenario file.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: yaml unmarshal: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sim.SortTriggers(sc.Triggers)
	return &sc, nil
}

// Load reads and parses a scenario file from disk.
func Load(filePath string) (*Scenario, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("scenario: reading %s: %w", filePath, err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scenario: parsing %s: %w", filePath, err)
	}
	return sc, nil
}

// Builtin loads one of the embedded scenarios by name.
func Builtin(name string) (*Scenario, error) {
	data, err := builtinScenarios.ReadFile(path.Join("scenarios", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("scenario: unknown builtin %q", name)
	}
	return Parse(data)
}

// BuiltinNames lists the embedded scenarios, sorted.
func BuiltinNames() []string {
	entries, err := builtinScenarios.ReadDir("scenarios")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Resolve loads ref as a builtin scenario name first, then as a file path.
func Resolve(ref string) (*Scenario, error) {
	if !strings.ContainsAny(ref, "/\\.") {
		if sc, err := Builtin(ref); err == nil {
			return sc, nil
		}
	}
	return Load(ref)
}
