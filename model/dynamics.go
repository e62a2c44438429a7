package model

import "fmt"

// ModelReporter reduces the whole model to one value per tick
type ModelReporter struct {
	Name   string
	Report func(*Model) float64
}

// AgentReporter observes one value per agent per tick
type AgentReporter struct {
	Name   string
	Report func(Agent) float64
}

// Dynamics is the behaviour variant a model runs
type Dynamics interface {
	Name() string

	// NewAgent creates an unplaced agent of the variant
	NewAgent(id int, role Role) Agent

	// PreStep is called before the scheduler pass of every tick
	PreStep(m *Model)

	// PostStep is called after the tick has been collected
	PostStep(m *Model)

	ModelReporters() []ModelReporter
	AgentReporters() []AgentReporter
}

type BaseDynamics struct {
	// do nothing, provide default empty hooks
}

func (d *BaseDynamics) PreStep(m *Model) {
}

func (d *BaseDynamics) PostStep(m *Model) {
}

// NewDynamics returns the dynamics registered for a variant name
func NewDynamics(variant string) (Dynamics, error) {
	switch variant {
	case VariantHarm:
		return &HarmDynamics{}, nil
	case VariantContent:
		return &ContentDynamics{}, nil
	}
	return nil, fmt.Errorf("%w: unknown variant %q", ErrConfiguration, variant)
}
