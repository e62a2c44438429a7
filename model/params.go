package model

import (
	"fmt"
	"math"

	"trollmod-model/utils"

	"gonum.org/v1/gonum/graph/simple"
)

const (
	VariantHarm    = "harm"
	VariantContent = "content"

	TopologyScaleFree       = "scale-free"
	TopologyPowerlawCluster = "powerlaw-cluster"
)

// Params contains configuration parameters for a troll/moderator network
type Params struct {
	NumAgents          int     `json:"num_agents" yaml:"num_agents"`
	Variant            string  `json:"variant" yaml:"variant"`
	PercentAdversarial float64 `json:"percent_trolls" yaml:"percent_trolls"`
	PercentModerators  float64 `json:"percent_mods" yaml:"percent_mods"`

	Topology           string  `json:"topology" yaml:"topology"`
	DensityFactor      float64 `json:"density_factor" yaml:"density_factor"`
	ClusterProbability float64 `json:"cluster_probability" yaml:"cluster_probability"`
	TopologySeed       int64   `json:"topology_seed" yaml:"topology_seed"`

	// Seed drives placement and every per-tick draw; nil seeds from the clock
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// harm variant
	ModPower      int  `json:"mod_power" yaml:"mod_power"`
	TrackDelta    bool `json:"track_delta" yaml:"track_delta"`
	HistoryLength int  `json:"history_length" yaml:"history_length"`

	// content variant
	ModWork  int `json:"mod_work" yaml:"mod_work"`
	PoolSize int `json:"pool_size" yaml:"pool_size"`
	TokenMax int `json:"token_max" yaml:"token_max"`
}

// DefaultParams creates a new parameters struct with default values
func DefaultParams() *Params {
	return &Params{
		NumAgents:          50,
		Variant:            VariantHarm,
		PercentAdversarial: 0.1,
		PercentModerators:  0.2,
		Topology:           TopologyScaleFree,
		DensityFactor:      0.75,
		ClusterProbability: 0.9,
		TopologySeed:       11,
		ModPower:           1,
		TrackDelta:         true,
		HistoryLength:      5,
		ModWork:            10,
		PoolSize:           10,
		TokenMax:           10000,
	}
}

// ToMap converts the parameters to a map
func (p *Params) ToMap() map[string]any {
	ret := map[string]any{
		"num_agents":          p.NumAgents,
		"variant":             p.Variant,
		"percent_trolls":      p.PercentAdversarial,
		"percent_mods":        p.PercentModerators,
		"topology":            p.Topology,
		"density_factor":      p.DensityFactor,
		"cluster_probability": p.ClusterProbability,
		"topology_seed":       p.TopologySeed,
		"mod_power":           p.ModPower,
		"track_delta":         p.TrackDelta,
		"history_length":      p.HistoryLength,
		"mod_work":            p.ModWork,
		"pool_size":           p.PoolSize,
		"token_max":           p.TokenMax,
	}
	if p.Seed != nil {
		ret["seed"] = *p.Seed
	}
	return ret
}

// RoleCounts is the size of every role group
type RoleCounts struct {
	Adversarial int
	Moderator   int
	Regular     int
}

func (c RoleCounts) Total() int {
	return c.Adversarial + c.Moderator + c.Regular
}

// RoleCounts floors each proportion independently; regular agents take the rest
func (p *Params) RoleCounts() RoleCounts {
	n := float64(p.NumAgents)
	adv := int(math.Floor(n * p.PercentAdversarial))
	mod := int(math.Floor(n * p.PercentModerators))
	return RoleCounts{
		Adversarial: adv,
		Moderator:   mod,
		Regular:     p.NumAgents - (adv + mod),
	}
}

// AttachmentCount is the preferential attachment count m of the topology
func (p *Params) AttachmentCount() int {
	return utils.AttachmentCount(p.NumAgents, p.DensityFactor)
}

// validateRoster checks everything except the topology generator arguments
func (p *Params) validateRoster() error {
	if p.NumAgents <= 0 {
		return fmt.Errorf("%w: num_agents must be positive, got %d", ErrConfiguration, p.NumAgents)
	}
	if !validProportion(p.PercentAdversarial) {
		return fmt.Errorf("%w: percent_trolls must be in [0, 1], got %v", ErrConfiguration, p.PercentAdversarial)
	}
	if !validProportion(p.PercentModerators) {
		return fmt.Errorf("%w: percent_mods must be in [0, 1], got %v", ErrConfiguration, p.PercentModerators)
	}
	if c := p.RoleCounts(); c.Regular < 0 {
		return fmt.Errorf("%w: %d trolls and %d mods exceed %d agents",
			ErrConfiguration, c.Adversarial, c.Moderator, p.NumAgents)
	}

	switch p.Variant {
	case VariantHarm:
		if p.ModPower < 0 {
			return fmt.Errorf("%w: mod_power must be non-negative, got %d", ErrConfiguration, p.ModPower)
		}
		if p.TrackDelta && p.HistoryLength < 1 {
			return fmt.Errorf("%w: history_length must be positive, got %d", ErrConfiguration, p.HistoryLength)
		}
	case VariantContent:
		if p.ModWork < 0 {
			return fmt.Errorf("%w: mod_work must be non-negative, got %d", ErrConfiguration, p.ModWork)
		}
		if p.PoolSize < 1 {
			return fmt.Errorf("%w: pool_size must be positive, got %d", ErrConfiguration, p.PoolSize)
		}
		if p.TokenMax < 1 {
			return fmt.Errorf("%w: token_max must be positive, got %d", ErrConfiguration, p.TokenMax)
		}
	default:
		return fmt.Errorf("%w: unknown variant %q (valid: %s, %s)", ErrConfiguration, p.Variant, VariantHarm, VariantContent)
	}

	return nil
}

func (p *Params) validateTopology() error {
	switch p.Topology {
	case TopologyScaleFree:
	case TopologyPowerlawCluster:
		if !validProportion(p.ClusterProbability) {
			return fmt.Errorf("%w: cluster_probability must be in [0, 1], got %v", ErrConfiguration, p.ClusterProbability)
		}
	default:
		return fmt.Errorf("%w: unknown topology %q (valid: %s, %s)",
			ErrConfiguration, p.Topology, TopologyScaleFree, TopologyPowerlawCluster)
	}
	if m := p.AttachmentCount(); m < 1 || m >= p.NumAgents {
		return fmt.Errorf("%w: attachment count %d (density_factor %v) must be in [1, %d)",
			ErrConfiguration, m, p.DensityFactor, p.NumAgents)
	}
	return nil
}

// Validate checks that the parameters describe a runnable model
func (p *Params) Validate() error {
	if err := p.validateRoster(); err != nil {
		return err
	}
	return p.validateTopology()
}

// BuildTopology generates the graph the parameters describe.
// The result depends only on NumAgents, the topology fields and TopologySeed.
func (p *Params) BuildTopology() (*simple.UndirectedGraph, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var (
		g   *simple.UndirectedGraph
		err error
	)
	m := p.AttachmentCount()
	switch p.Topology {
	case TopologyPowerlawCluster:
		g, err = utils.CreatePowerlawClusterNetwork(p.NumAgents, m, p.ClusterProbability, p.TopologySeed)
	default:
		g, err = utils.CreateScaleFreeNetwork(p.NumAgents, m, p.TopologySeed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return g, nil
}

func validProportion(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}
