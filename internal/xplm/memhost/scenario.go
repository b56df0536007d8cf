package memhost

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario describes a host state: which add-on plugins are loaded, the
// user aircraft model and the data fields and commands it exposes. It is
// used to run acfkit without a simulator and as a test fixture.
//
// YAML schema (v1):
//
//	version: 1
//	model:
//	  file: "a319.acf"
//	  path: "Aircraft/ToLiss A319/a319.acf"
//	plugins: ["XP11.ToLiss.A319.systems"]
//	strings:
//	  sim/aircraft/view/acf_author: "Gliding Kiwi"
//	ints:
//	  sim/aircraft/engine/acf_num_engines: 2
//	floats:
//	  sim/flightmodel/controls/parkbrake: 0
//	int_arrays:
//	  sim/aircraft/prop/acf_en_type: [5, 5]
//	float_arrays: {}
//	commands: ["sim/flight_controls/brakes_max"]
//	shared_values:
//	  version: "2.1.0"
//	  values:
//	    Aircraft.Cockpit.Pedestal.BrakeParking: 0
//	    Aircraft.Cockpit.Pedals.BrakeLeft: 0
//	    Aircraft.Cockpit.Pedals.BrakeRight: 0
type Scenario struct {
	Version      int                  `yaml:"version"`
	Model        ScenarioModel        `yaml:"model"`
	Plugins      []string             `yaml:"plugins"`
	Strings      map[string]string    `yaml:"strings"`
	Ints         map[string]int       `yaml:"ints"`
	Floats       map[string]float32   `yaml:"floats"`
	IntArrays    map[string][]int     `yaml:"int_arrays"`
	FloatArrays  map[string][]float32 `yaml:"float_arrays"`
	Commands     []string             `yaml:"commands"`
	SharedValues *ScenarioShared      `yaml:"shared_values"`
}

// ScenarioModel is the user aircraft model.
type ScenarioModel struct {
	File string `yaml:"file"`
	Path string `yaml:"path"`
}

// ScenarioShared is an optional vendor shared value tree.
type ScenarioShared struct {
	Version string             `yaml:"version"`
	Values  map[string]float64 `yaml:"values"`
}

// stringFieldSize is the byte size given to scenario string fields.
const stringFieldSize = 512

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	return ParseScenarioYAML(b)
}

// ParseScenarioYAML parses and validates a scenario.
func ParseScenarioYAML(b []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Version == 0 {
		s.Version = 1
	}
	if s.Version != 1 {
		return Scenario{}, fmt.Errorf("unsupported scenario version %d", s.Version)
	}
	if s.SharedValues != nil && s.SharedValues.Version == "" {
		return Scenario{}, fmt.Errorf("shared_values.version is required")
	}
	return s, nil
}

// Apply loads the scenario into h. Fields and commands already defined are
// overwritten; nothing is removed.
func (s Scenario) Apply(h *Host) {
	if s.Model.File != "" || s.Model.Path != "" {
		h.SetModel(s.Model.File, s.Model.Path)
	}
	for _, p := range s.Plugins {
		h.AddPlugin(p)
	}
	for _, name := range sortedKeys(s.Strings) {
		h.DefineString(name, s.Strings[name], stringFieldSize)
	}
	for _, name := range sortedKeys(s.Ints) {
		h.DefineInt(name, s.Ints[name])
	}
	for _, name := range sortedKeys(s.Floats) {
		h.DefineFloat(name, s.Floats[name])
	}
	for _, name := range sortedKeys(s.IntArrays) {
		h.DefineInts(name, s.IntArrays[name])
	}
	for _, name := range sortedKeys(s.FloatArrays) {
		h.DefineFloats(name, s.FloatArrays[name])
	}
	for _, c := range s.Commands {
		h.DefineCommand(c)
	}
	if s.SharedValues != nil {
		h.EnableSharedValues(s.SharedValues.Version, s.SharedValues.Values)
	}
}

// NewFromScenario builds a host from a scenario file.
func NewFromScenario(path string) (*Host, error) {
	s, err := LoadScenario(path)
	if err != nil {
		return nil, err
	}
	h := New()
	s.Apply(h)
	return h, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
