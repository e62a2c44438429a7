package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarmNeverNegative(t *testing.T) {
	p := DefaultParams()
	p.PercentAdversarial = 0.1
	p.PercentModerators = 0.4
	p.ModPower = 3
	p.Seed = seed(17)

	var m *Model
	checks := 0
	logger := func(e *EventRecord) {
		if e.Type != EventModerate {
			return
		}
		body := e.Body.(ModerateEventBody)
		target := m.Schedule.Agents[body.Target].(*HarmAgent)
		assert.GreaterOrEqual(t, target.HarmReceived, 0)
		assert.Positive(t, body.Removed)
		checks++
	}

	m, err := NewModel(p, logger)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		m.Step()
		for _, a := range harmAgents(t, m) {
			require.GreaterOrEqual(t, a.HarmReceived, 0, "agent %d", a.UniqueID)
		}
	}
	assert.Positive(t, checks)
}

func TestHarmNonDecreasingWithoutModerators(t *testing.T) {
	p := DefaultParams()
	p.NumAgents = 30
	p.PercentAdversarial = 0.1
	p.PercentModerators = 0
	p.DensityFactor = 0.1
	p.Seed = seed(3)

	m, err := NewModel(p, nil)
	require.NoError(t, err)
	require.Equal(t, 3, m.Counts.Adversarial)

	m.Run(20)

	for _, a := range harmAgents(t, m) {
		series := m.DataCollector.AgentSeries(ReporterHarmReceived, a.UniqueID)
		require.Len(t, series, 21)
		for i := 1; i < len(series); i++ {
			assert.GreaterOrEqual(t, series[i], series[i-1], "agent %d tick %d", a.UniqueID, i)
		}
	}

	// every neighbour of a troll got hit once per troll per tick
	for _, a := range harmAgents(t, m) {
		if a.Role() != RoleAdversarial {
			continue
		}
		neighbors := m.NeighborsOf(a)
		require.NotEmpty(t, neighbors)
		for _, n := range neighbors {
			assert.GreaterOrEqual(t, n.(*HarmAgent).HarmReceived, 20)
		}
	}
}

func TestStrongModerationKeepsHarmBounded(t *testing.T) {
	p := DefaultParams()
	p.PercentAdversarial = 0.1
	p.PercentModerators = 0.8
	p.ModPower = 30
	p.Seed = seed(8)

	m, err := NewModelWithGraph(completeGraph(p.NumAgents), p, nil)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		m.Step()
		for _, a := range harmAgents(t, m) {
			require.LessOrEqual(t, a.HarmReceived, m.Counts.Adversarial, "agent %d", a.UniqueID)
		}
	}

	for _, v := range m.DataCollector.ModelSeries(ReporterAverageHarm) {
		assert.LessOrEqual(t, v, float64(m.Counts.Adversarial))
	}
}

// moderatedTrollNeighbors returns the regular neighbours of the troll when
// every one of them also neighbours a moderator, nil otherwise
func moderatedTrollNeighbors(m *Model) []*HarmAgent {
	var troll Agent
	moderated := make(map[int]bool)
	for _, a := range m.Schedule.Agents {
		switch a.Role() {
		case RoleAdversarial:
			troll = a
		case RoleModerator:
			for _, n := range m.NeighborsOf(a) {
				moderated[n.ID()] = true
			}
		}
	}

	var ret []*HarmAgent
	for _, n := range m.NeighborsOf(troll) {
		if n.Role() != RoleRegular {
			continue
		}
		if !moderated[n.ID()] {
			return nil
		}
		ret = append(ret, n.(*HarmAgent))
	}
	return ret
}

// N=10: one troll, two moderators, seven regular users, attachment count 1
func TestModeratorsOffsetTrollWithinTwoTicks(t *testing.T) {
	hits := make(map[int]int)
	logger := func(e *EventRecord) {
		if e.Type == EventHarm {
			hits[e.Body.(HarmEventBody).Target]++
		}
	}

	// the topology is fixed by TopologySeed; search placements for one where
	// the troll has regular neighbours and all of them are moderated
	var m *Model
	var checked []*HarmAgent
	for s := int64(1); s <= 500 && len(checked) == 0; s++ {
		p := DefaultParams()
		p.NumAgents = 10
		p.DensityFactor = 0.1
		p.ModPower = 1
		p.Seed = seed(s)

		candidate, err := NewModel(p, logger)
		require.NoError(t, err)
		require.Equal(t, 1, p.AttachmentCount())
		require.Equal(t, RoleCounts{Adversarial: 1, Moderator: 2, Regular: 7}, candidate.Counts)

		m = candidate
		checked = moderatedTrollNeighbors(candidate)
	}
	require.NotEmpty(t, checked, "no placement gives the troll a moderated regular neighbour")

	// troll first, moderators right after
	m.Schedule.Shuffle = identityOrder

	const ticks = 5
	for tick := 0; tick < ticks; tick++ {
		m.Step()
		require.Equal(t, []int{0, 1, 2}, m.Schedule.LastOrder[:3])
		for _, h := range checked {
			assert.Zero(t, h.HarmReceived, "tick %d agent %d", tick, h.UniqueID)
		}
	}

	// the harm did land every tick before it was removed
	for _, h := range checked {
		assert.Equal(t, ticks, hits[h.UniqueID], "agent %d", h.UniqueID)
		series := m.DataCollector.AgentSeries(ReporterHarmReceived, h.UniqueID)
		assert.Equal(t, make([]float64, ticks+1), series, "agent %d", h.UniqueID)
	}
}

func TestModeratorsScheduledAfterTrollClearHarm(t *testing.T) {
	p := DefaultParams()
	p.NumAgents = 10
	p.ModPower = 1
	p.Seed = seed(2)

	m, err := NewModelWithGraph(completeGraph(10), p, nil)
	require.NoError(t, err)
	agents := harmAgents(t, m)

	// moderators before the troll: harm lands after moderation
	m.Schedule.Shuffle = reverseOrder
	m.Step()
	for _, a := range agents[1:] {
		assert.Equal(t, 1, a.HarmReceived, "agent %d", a.UniqueID)
	}
	assert.Zero(t, agents[0].HarmReceived)

	// troll first: moderators see this tick's harm and clear both ticks
	m.Schedule.Shuffle = identityOrder
	m.Step()
	for _, a := range agents {
		assert.Zero(t, a.HarmReceived, "agent %d", a.UniqueID)
	}
}

func TestHistoryWindow(t *testing.T) {
	p := DefaultParams()
	a := NewHarmAgent(0, RoleRegular)

	assert.Zero(t, a.NormalizedDelta())

	for _, harm := range []int{1, 3, 4, 4, 6, 9, 10} {
		a.HarmReceived = harm
		a.snapshot(p)
	}
	assert.Equal(t, []int{10, 9, 6, 4, 4}, a.History)
	assert.Equal(t, 6, a.Delta)
	assert.InDelta(t, 6.0/5.0, a.NormalizedDelta(), 1e-12)

	short := NewHarmAgent(1, RoleRegular)
	short.HarmReceived = 2
	short.snapshot(p)
	assert.Equal(t, []int{2}, short.History)
	assert.Zero(t, short.Delta)

	p.TrackDelta = false
	untracked := NewHarmAgent(2, RoleRegular)
	untracked.snapshot(p)
	assert.Empty(t, untracked.History)
}

func TestModeratorReducesOwnHarm(t *testing.T) {
	mod := NewHarmAgent(0, RoleModerator)
	mod.HarmReceived = 5
	assert.Equal(t, 3, mod.reduceHarm(3))
	assert.Equal(t, 2, mod.HarmReceived)
	assert.Equal(t, 2, mod.reduceHarm(3))
	assert.Zero(t, mod.HarmReceived)
	assert.Zero(t, mod.reduceHarm(3))
	assert.Zero(t, mod.reduceHarm(0))
}

func TestHarmReporters(t *testing.T) {
	p := DefaultParams()
	p.Seed = seed(4)
	m, err := NewModel(p, nil)
	require.NoError(t, err)

	// every series starts from an untouched network
	assert.Equal(t, []float64{0}, m.DataCollector.ModelSeries(ReporterAverageHarm))
	assert.Equal(t, []float64{0}, m.DataCollector.ModelSeries(ReporterAverageDeltaHarm))

	m.Run(10)
	total := 0
	for _, a := range harmAgents(t, m) {
		total += a.HarmReceived
	}
	final, _ := m.DataCollector.Final(ReporterAverageHarm)
	assert.InDelta(t, float64(total)/float64(p.NumAgents), final, 1e-9)
	assert.InDelta(t, stepMean(m.DataCollector.ModelSeries(ReporterAverageDeltaHarm)),
		m.DataCollector.SeriesMean(ReporterAverageDeltaHarm), 1e-9)
}

func stepMean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
