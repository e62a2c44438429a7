package model

import (
	"fmt"
	"math/rand"
	"time"

	"trollmod-model/utils"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/stat"
)

// Model is a network of trolls, moderators, and regular users
type Model struct {
	Graph         *simple.UndirectedGraph
	Params        *Params
	Dynamics      Dynamics
	EventLogger   func(*EventRecord)
	CurStep       int
	Counts        RoleCounts
	Grid          *NetworkGrid
	Schedule      *RandomActivation
	DataCollector *DataCollector

	// Pool only exists while a content tick is running
	Pool *ContentPool

	rng *rand.Rand
}

// NewModel builds the topology from params and populates it
func NewModel(params *Params, eventLogger func(*EventRecord)) (*Model, error) {
	if params == nil {
		params = DefaultParams()
	}

	g, err := params.BuildTopology()
	if err != nil {
		return nil, err
	}

	return NewModelWithGraph(g, params, eventLogger)
}

// NewModelWithGraph populates a prebuilt graph, which needs at least NumAgents nodes
func NewModelWithGraph(
	g *simple.UndirectedGraph,
	params *Params,
	eventLogger func(*EventRecord),
) (*Model, error) {
	if params == nil {
		params = DefaultParams()
	}
	if err := params.validateRoster(); err != nil {
		return nil, err
	}
	if g == nil || g.Nodes().Len() < params.NumAgents {
		return nil, fmt.Errorf("%w: graph cannot host %d agents", ErrConfiguration, params.NumAgents)
	}

	dynamics, err := NewDynamics(params.Variant)
	if err != nil {
		return nil, err
	}

	seed := time.Now().UnixNano()
	if params.Seed != nil {
		seed = *params.Seed
	}

	model := &Model{
		Graph:       g,
		Params:      params,
		Dynamics:    dynamics,
		EventLogger: eventLogger,
		CurStep:     0,
		Counts:      params.RoleCounts(),
		rng:         rand.New(rand.NewSource(seed)),
	}

	// Initialize grid and scheduler
	model.Grid = NewNetworkGrid(g)
	model.Schedule = NewRandomActivation(model)
	model.DataCollector = NewDataCollector(dynamics.ModelReporters(), dynamics.AgentReporters())

	if err := model.populate(); err != nil {
		return nil, err
	}

	model.DataCollector.Collect(model)

	return model, nil
}

// populate creates agents trolls first, then moderators, then regular users,
// and puts agent i on the i-th node of a random permutation
func (m *Model) populate() error {
	c := m.Counts
	if c.Total() != m.Params.NumAgents || c.Regular < 0 {
		return fmt.Errorf("%w: role counts %+v do not sum to %d", ErrInvariantViolation, c, m.Params.NumAgents)
	}

	nodes := utils.SortedNodes(m.Graph)
	perm := m.rng.Perm(len(nodes))

	roles := make([]Role, 0, c.Total())
	for i := 0; i < c.Adversarial; i++ {
		roles = append(roles, RoleAdversarial)
	}
	for i := 0; i < c.Moderator; i++ {
		roles = append(roles, RoleModerator)
	}
	for i := 0; i < c.Regular; i++ {
		roles = append(roles, RoleRegular)
	}

	for i, role := range roles {
		agent := m.Dynamics.NewAgent(i, role)
		m.Schedule.AddAgent(agent)
		if err := m.Grid.PlaceAgent(agent, nodes[perm[i]]); err != nil {
			return err
		}
	}

	return nil
}

// Step advances the model by one tick
func (m *Model) Step() {
	m.Dynamics.PreStep(m)

	m.Schedule.Step()

	m.CurStep++
	m.DataCollector.Collect(m)

	m.Dynamics.PostStep(m)
}

// Run calls Step n times
func (m *Model) Run(n int) {
	for i := 0; i < max(n, 0); i++ {
		m.Step()
	}
}

// NeighborsOf returns the agents adjacent to agent's node
func (m *Model) NeighborsOf(agent Agent) []Agent {
	if agent.Node() < 0 {
		return nil
	}
	return m.Grid.GetNeighbors(agent.Node())
}

// Agents returns the agents in id order
func (m *Model) Agents() []Agent {
	ret := make([]Agent, len(m.Schedule.Agents))
	copy(ret, m.Schedule.Agents)
	return ret
}

// AgentAt returns the agent on a node, if any
func (m *Model) AgentAt(nodeID int64) (Agent, bool) {
	return m.Grid.GetAgent(nodeID)
}

// AgentMean averages f over all agents
func (m *Model) AgentMean(f func(Agent) float64) float64 {
	agents := m.Schedule.Agents
	if len(agents) == 0 {
		return 0
	}
	values := make([]float64, len(agents))
	for i, a := range agents {
		values[i] = f(a)
	}
	return stat.Mean(values, nil)
}

// Edges returns every edge of the graph once
func (m *Model) Edges() []utils.Edge {
	return utils.EdgeList(m.Graph)
}
