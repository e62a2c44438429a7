package model

import (
	"slices"
	"testing"

	"trollmod-model/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

func TestNewModelPlacesEveryAgentOnItsOwnNode(t *testing.T) {
	p := DefaultParams()
	p.Seed = seed(1)
	m, err := NewModel(p, nil)
	require.NoError(t, err)

	agents := m.Agents()
	require.Len(t, agents, 50)

	used := make(map[int64]bool)
	for i, a := range agents {
		assert.Equal(t, i, a.ID())
		require.GreaterOrEqual(t, a.Node(), int64(0))
		assert.False(t, used[a.Node()], "node %d used twice", a.Node())
		used[a.Node()] = true

		onNode, ok := m.AgentAt(a.Node())
		require.True(t, ok)
		assert.Same(t, a, onNode)
	}

	// creation order: trolls, moderators, regular users
	for i, a := range agents {
		switch {
		case i < 5:
			assert.Equal(t, RoleAdversarial, a.Role())
		case i < 15:
			assert.Equal(t, RoleModerator, a.Role())
		default:
			assert.Equal(t, RoleRegular, a.Role())
		}
	}
}

func TestSameTopologySeedGivesSameGraph(t *testing.T) {
	for _, topology := range []string{TopologyScaleFree, TopologyPowerlawCluster} {
		t.Run(topology, func(t *testing.T) {
			p1 := DefaultParams()
			p1.Topology = topology
			p1.Seed = seed(1)
			p2 := *p1
			p2.Seed = seed(2)

			m1, err := NewModel(p1, nil)
			require.NoError(t, err)
			m2, err := NewModel(&p2, nil)
			require.NoError(t, err)

			assert.Equal(t, m1.Graph.Nodes().Len(), m2.Graph.Nodes().Len())
			assert.Equal(t, m1.Edges(), m2.Edges())
			assert.True(t, utils.CompareGraphs(m1.Graph, m2.Graph))

			m1.Run(10)
			m2.Run(10)
			// stepping never touches the graph
			assert.Equal(t, m1.Edges(), m2.Edges())
		})
	}
}

func TestFixedSeedReproducesTrajectory(t *testing.T) {
	for _, variant := range []string{VariantHarm, VariantContent} {
		t.Run(variant, func(t *testing.T) {
			build := func() *Model {
				p := DefaultParams()
				p.Variant = variant
				p.Seed = seed(42)
				m, err := NewModel(p, nil)
				require.NoError(t, err)
				m.Run(15)
				return m
			}
			m1, m2 := build(), build()
			for _, name := range m1.DataCollector.ModelReporterNames() {
				assert.Equal(t, m1.DataCollector.ModelSeries(name), m2.DataCollector.ModelSeries(name), name)
			}
		})
	}
}

func TestScheduleActivatesEveryAgentOnce(t *testing.T) {
	p := DefaultParams()
	p.Seed = seed(5)
	m, err := NewModel(p, nil)
	require.NoError(t, err)

	want := identityOrder(p.NumAgents)
	var orders [][]int
	for i := 0; i < 30; i++ {
		m.Step()
		order := slices.Clone(m.Schedule.LastOrder)
		orders = append(orders, order)

		sorted := slices.Clone(order)
		slices.Sort(sorted)
		require.Equal(t, want, sorted, "activation order is not a permutation")
	}

	distinct := false
	for _, order := range orders[1:] {
		if !slices.Equal(order, orders[0]) {
			distinct = true
			break
		}
	}
	assert.True(t, distinct, "activation order never changed across ticks")
}

func TestCollectorRowsPerTick(t *testing.T) {
	p := DefaultParams()
	p.Seed = seed(9)
	m, err := NewModel(p, nil)
	require.NoError(t, err)

	m.Run(5)
	m.Run(0)
	m.Run(-3)

	assert.Equal(t, 5, m.CurStep)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, m.DataCollector.Steps)
	for _, name := range m.DataCollector.ModelReporterNames() {
		assert.Len(t, m.DataCollector.ModelVars[name], 6, name)
	}
	assert.Len(t, m.DataCollector.AgentRecords, 6*p.NumAgents)
	assert.Len(t, m.DataCollector.AgentSeries(ReporterHarmReceived, 7), 6)
	assert.Nil(t, m.DataCollector.AgentSeries("unknown", 7))

	final, ok := m.DataCollector.Final(ReporterAverageHarm)
	require.True(t, ok)
	assert.Equal(t, m.AgentMean(harmValue), final)
}

func TestNewModelWithGraphNeedsEnoughNodes(t *testing.T) {
	p := DefaultParams()
	p.NumAgents = 10

	_, err := NewModelWithGraph(completeGraph(9), p, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewModelWithGraph(nil, p, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	m, err := NewModelWithGraph(completeGraph(12), p, nil)
	require.NoError(t, err)
	occupied := 0
	for _, id := range utils.SortedNodes(m.Graph) {
		if _, ok := m.AgentAt(id); ok {
			occupied++
		}
	}
	assert.Equal(t, 10, occupied)
}

func TestPlaceAgentRejectsDoublePlacement(t *testing.T) {
	g := completeGraph(3)
	grid := NewNetworkGrid(g)

	a := NewHarmAgent(0, RoleRegular)
	b := NewHarmAgent(1, RoleRegular)
	require.NoError(t, grid.PlaceAgent(a, 0))

	assert.ErrorIs(t, grid.PlaceAgent(b, 0), ErrInvariantViolation)
	assert.ErrorIs(t, grid.PlaceAgent(a, 1), ErrInvariantViolation)
	assert.ErrorIs(t, grid.PlaceAgent(b, 7), ErrInvariantViolation)
	assert.NoError(t, grid.PlaceAgent(b, 2))

	assert.Equal(t, []Agent{b}, grid.GetNeighbors(0))
	assert.Equal(t, []Agent{a}, grid.GetNeighbors(2))
}

func TestIsolatedAgentIsUntouched(t *testing.T) {
	g := simple.NewUndirectedGraph()
	g.AddNode(simple.Node(0))
	g.AddNode(simple.Node(1))

	p := DefaultParams()
	p.NumAgents = 2
	p.PercentAdversarial = 0.5
	p.PercentModerators = 0
	p.Seed = seed(1)

	m, err := NewModelWithGraph(g, p, nil)
	require.NoError(t, err)
	m.Run(5)

	for _, a := range harmAgents(t, m) {
		assert.Empty(t, m.NeighborsOf(a))
		assert.Zero(t, a.HarmReceived)
	}
}

func TestPortrayal(t *testing.T) {
	p := DefaultParams()
	p.NumAgents = 3
	p.PercentAdversarial = 0.34
	p.PercentModerators = 0.34
	p.Seed = seed(1)

	m, err := NewModelWithGraph(completeGraph(4), p, nil)
	require.NoError(t, err)
	m.Run(2)

	portrayal := m.Portrayal()
	assert.Equal(t, 2, portrayal.Step)
	assert.Equal(t, VariantHarm, portrayal.Variant)
	require.Len(t, portrayal.Nodes, 4)
	assert.Len(t, portrayal.Edges, 6)

	colors := make(map[string]string)
	empty := 0
	for _, n := range portrayal.Nodes {
		if n.AgentID < 0 {
			empty++
			assert.Equal(t, colorEmpty, n.Color)
			continue
		}
		colors[n.Role] = n.Color
		assert.Contains(t, n.Label, "Agent:")
	}
	assert.Equal(t, 1, empty)
	assert.Equal(t, colorAdversarial, colors["adversarial"])
	assert.Equal(t, colorModerator, colors["moderator"])
	assert.Contains(t, []string{colorCalm, colorWarn, colorHarmed}, colors["regular"])
}
