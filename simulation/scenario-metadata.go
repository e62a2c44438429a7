package simulation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"trollmod-model/model"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ScenarioMetadata describes one configuration run to a fixed tick budget
type ScenarioMetadata struct {
	UniqueName string `json:"unique_name" yaml:"unique_name"`

	model.Params `yaml:",inline"`

	MaxSimulationStep int `json:"max_simulation_step" yaml:"max_simulation_step"`
}

func DefaultScenarioMetadata() *ScenarioMetadata {
	return &ScenarioMetadata{
		UniqueName:        "default",
		Params:            *model.DefaultParams(),
		MaxSimulationStep: 100,
	}
}

// SweepMetadata describes a parameter grid run like a batch runner:
// every combination of Variables, Iterations times, MaxSteps ticks each.
type SweepMetadata struct {
	UniqueName string           `json:"unique_name" yaml:"unique_name"`
	Base       ScenarioMetadata `json:"base" yaml:"base"`

	// explicit value lists per parameter name
	Variables map[string][]float64 `json:"variables" yaml:"variables"`
	// [start, stop, step) ranges per parameter name, expanded into Variables
	Ranges map[string][3]float64 `json:"ranges" yaml:"ranges"`

	Iterations int `json:"iterations" yaml:"iterations"`
	MaxSteps   int `json:"max_steps" yaml:"max_steps"`

	// Reporter is the model reporter summarised on stdout, empty for the first one
	Reporter string `json:"reporter" yaml:"reporter"`
}

func DefaultSweepMetadata() *SweepMetadata {
	return &SweepMetadata{
		UniqueName: "sweep",
		Base:       *DefaultScenarioMetadata(),
		Variables:  map[string][]float64{},
		Iterations: 5,
		MaxSteps:   100,
	}
}

// SweepParamNames are the parameters a sweep may vary
var SweepParamNames = []string{
	"num_agents",
	"percent_trolls",
	"percent_mods",
	"density_factor",
	"cluster_probability",
	"topology_seed",
	"mod_power",
	"history_length",
	"mod_work",
	"pool_size",
	"token_max",
}

// SetParam assigns a numeric parameter by its configuration name
func SetParam(p *model.Params, name string, value float64) error {
	asInt := func() (int, error) {
		if value != math.Trunc(value) || math.IsInf(value, 0) {
			return 0, fmt.Errorf("%s must be an integer, got %v", name, value)
		}
		return int(value), nil
	}

	switch name {
	case "percent_trolls":
		p.PercentAdversarial = value
	case "percent_mods":
		p.PercentModerators = value
	case "density_factor":
		p.DensityFactor = value
	case "cluster_probability":
		p.ClusterProbability = value
	default:
		v, err := asInt()
		if err != nil {
			return err
		}
		switch name {
		case "num_agents":
			p.NumAgents = v
		case "topology_seed":
			p.TopologySeed = int64(v)
		case "mod_power":
			p.ModPower = v
		case "history_length":
			p.HistoryLength = v
		case "mod_work":
			p.ModWork = v
		case "pool_size":
			p.PoolSize = v
		case "token_max":
			p.TokenMax = v
		default:
			return fmt.Errorf("unknown sweep parameter %q (valid: %s)", name, strings.Join(SweepParamNames, ", "))
		}
	}
	return nil
}

// Arange mirrors numpy.arange for the small grids sweeps use
func Arange(start, stop, step float64) ([]float64, error) {
	if step <= 0 || math.IsNaN(step) {
		return nil, fmt.Errorf("range step must be positive, got %v", step)
	}
	var ret []float64
	for i := 0; ; i++ {
		v := start + float64(i)*step
		if v >= stop-step*1e-9 {
			break
		}
		// keep 0.1*3 from printing as 0.30000000000000004
		ret = append(ret, math.Round(v*1e9)/1e9)
	}
	return ret, nil
}

// Grid returns the sweep variables with ranges expanded, names sorted
func (s *SweepMetadata) Grid() ([]string, map[string][]float64, error) {
	grid := make(map[string][]float64, len(s.Variables)+len(s.Ranges))
	for name, values := range s.Variables {
		grid[name] = slices.Clone(values)
	}
	for name, r := range s.Ranges {
		values, err := Arange(r[0], r[1], r[2])
		if err != nil {
			return nil, nil, fmt.Errorf("range %s: %w", name, err)
		}
		grid[name] = append(grid[name], values...)
	}

	names := make([]string, 0, len(grid))
	for name, values := range grid {
		if !slices.Contains(SweepParamNames, name) {
			return nil, nil, fmt.Errorf("unknown sweep parameter %q", name)
		}
		if len(values) == 0 {
			return nil, nil, fmt.Errorf("sweep parameter %q has no values", name)
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, grid, nil
}

// Validate checks the sweep driver settings; model parameters are checked per run
func (s *SweepMetadata) Validate() error {
	if s.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", s.Iterations)
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative, got %d", s.MaxSteps)
	}
	if s.UniqueName == "" {
		return errors.New("unique_name must not be empty")
	}
	_, _, err := s.Grid()
	return err
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file; a missing file is not an error
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// decodeFile unmarshals JSON or YAML into v depending on the file extension
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, v)
	default:
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// LoadScenarioMetadata reads a scenario file over the defaults, then applies env overrides
func LoadScenarioMetadata(path string) (*ScenarioMetadata, error) {
	metadata := DefaultScenarioMetadata()
	if path != "" {
		if err := decodeFile(path, metadata); err != nil {
			return nil, err
		}
	}
	if err := metadata.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return metadata, nil
}

// LoadSweepMetadata reads a sweep file over the defaults, then applies env overrides
func LoadSweepMetadata(path string) (*SweepMetadata, error) {
	metadata := DefaultSweepMetadata()
	if path != "" {
		if err := decodeFile(path, metadata); err != nil {
			return nil, err
		}
	}
	if err := metadata.Base.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if v, ok := os.LookupEnv("TROLLMOD_MAX_STEPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("TROLLMOD_MAX_STEPS: %w", err)
		}
		metadata.MaxSteps = n
	}
	return metadata, nil
}

func (s *ScenarioMetadata) applyEnvOverrides() error {
	if v, ok := os.LookupEnv("TROLLMOD_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TROLLMOD_SEED: %w", err)
		}
		s.Seed = &n
	}
	if v, ok := os.LookupEnv("TROLLMOD_TOPOLOGY_SEED"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TROLLMOD_TOPOLOGY_SEED: %w", err)
		}
		s.TopologySeed = n
	}
	if v, ok := os.LookupEnv("TROLLMOD_MAX_STEPS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TROLLMOD_MAX_STEPS: %w", err)
		}
		s.MaxSimulationStep = n
	}
	return nil
}
