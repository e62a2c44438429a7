package model

// RandomActivation activates every agent once per tick, in a fresh random order
type RandomActivation struct {
	Model  *Model
	Agents []Agent

	// Shuffle overrides the permutation of agent indices; nil draws one
	// from the model's random source
	Shuffle func(n int) []int

	// LastOrder holds the agent ids in the order of the latest Step
	LastOrder []int
}

// NewRandomActivation creates a new random activation scheduler
func NewRandomActivation(model *Model) *RandomActivation {
	return &RandomActivation{
		Model:  model,
		Agents: make([]Agent, 0),
	}
}

// AddAgent adds an agent to the scheduler
func (ra *RandomActivation) AddAgent(agent Agent) {
	ra.Agents = append(ra.Agents, agent)
}

func (ra *RandomActivation) permutation() []int {
	if ra.Shuffle != nil {
		return ra.Shuffle(len(ra.Agents))
	}

	indices := make([]int, len(ra.Agents))
	for i := range indices {
		indices[i] = i
	}

	// Fisher-Yates shuffle
	rng := ra.Model.rng
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}
	return indices
}

// Step activates all agents in random order.
// Writes into a neighbour are visible to agents activated later in the same step.
func (ra *RandomActivation) Step() {
	indices := ra.permutation()

	ra.LastOrder = ra.LastOrder[:0]
	for _, i := range indices {
		agent := ra.Agents[i]
		ra.LastOrder = append(ra.LastOrder, agent.ID())
		agent.Step(ra.Model)
	}
}
