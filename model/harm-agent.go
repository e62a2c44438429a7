package model

import "fmt"

// HarmAgent is an agent of the counter variant: trolls add harm to their
// neighbours, moderators remove it.
type HarmAgent struct {
	agentBase
	HarmReceived int

	// most recent first, at most Params.HistoryLength entries
	History []int
	Delta   int
}

func NewHarmAgent(id int, role Role) *HarmAgent {
	return &HarmAgent{agentBase: newAgentBase(id, role)}
}

// Step implements the agent's one-tick behaviour
func (a *HarmAgent) Step(m *Model) {
	switch a.role {
	case RoleAdversarial:
		a.sendHarm(m)
	case RoleModerator:
		a.moderate(m)
	}
	a.snapshot(m.Params)
}

func (a *HarmAgent) sendHarm(m *Model) {
	for _, n := range m.NeighborsOf(a) {
		neighbor, ok := n.(*HarmAgent)
		if !ok {
			continue
		}
		neighbor.HarmReceived++
		m.logEvent(a, EventHarm, HarmEventBody{Target: neighbor.UniqueID})
	}
}

func (a *HarmAgent) moderate(m *Model) {
	power := m.Params.ModPower
	for _, n := range m.NeighborsOf(a) {
		neighbor, ok := n.(*HarmAgent)
		if !ok {
			continue
		}
		if removed := neighbor.reduceHarm(power); removed > 0 {
			m.logEvent(a, EventModerate, ModerateEventBody{Target: neighbor.UniqueID, Removed: removed})
		}
	}
	if removed := a.reduceHarm(power); removed > 0 {
		m.logEvent(a, EventModerate, ModerateEventBody{Target: a.UniqueID, Removed: removed})
	}
}

// reduceHarm removes up to power, never going below zero
func (a *HarmAgent) reduceHarm(power int) int {
	removed := min(power, a.HarmReceived)
	if removed <= 0 {
		return 0
	}
	a.HarmReceived -= removed
	return removed
}

// snapshot pushes the current harm onto the history window and refreshes Delta
func (a *HarmAgent) snapshot(p *Params) {
	if !p.TrackDelta {
		return
	}

	a.History = append([]int{a.HarmReceived}, a.History...)
	if len(a.History) > p.HistoryLength {
		a.History = a.History[:p.HistoryLength]
	}
	a.Delta = a.History[0] - a.History[len(a.History)-1]
}

// NormalizedDelta is the window delta divided by the window length, 0 with no history
func (a *HarmAgent) NormalizedDelta() float64 {
	if len(a.History) == 0 {
		return 0
	}
	return float64(a.History[0]-a.History[len(a.History)-1]) / float64(len(a.History))
}

func (a *HarmAgent) portray() (string, string) {
	label := fmt.Sprintf("Agent:%d Harm Delta:%d Total: %d", a.UniqueID, a.Delta, a.HarmReceived)
	if color, ok := roleColor(a.role); ok {
		return color, label
	}
	switch {
	case a.Delta <= 0:
		return colorCalm, label
	case a.Delta < 2:
		return colorWarn, label
	default:
		return colorHarmed, label
	}
}

// HarmDynamics runs the counter variant
type HarmDynamics struct {
	BaseDynamics
}

func (d *HarmDynamics) Name() string {
	return VariantHarm
}

func (d *HarmDynamics) NewAgent(id int, role Role) Agent {
	return NewHarmAgent(id, role)
}

func (d *HarmDynamics) ModelReporters() []ModelReporter {
	return []ModelReporter{
		{
			Name: ReporterAverageHarm,
			Report: func(m *Model) float64 {
				return m.AgentMean(func(a Agent) float64 { return harmValue(a) })
			},
		},
		{
			Name: ReporterAverageDeltaHarm,
			Report: func(m *Model) float64 {
				return m.AgentMean(func(a Agent) float64 {
					if h, ok := a.(*HarmAgent); ok {
						return h.NormalizedDelta()
					}
					return 0
				})
			},
		},
	}
}

func (d *HarmDynamics) AgentReporters() []AgentReporter {
	return []AgentReporter{
		{Name: ReporterHarmReceived, Report: harmValue},
		{
			Name: ReporterHarmDelta,
			Report: func(a Agent) float64 {
				if h, ok := a.(*HarmAgent); ok {
					return float64(h.Delta)
				}
				return 0
			},
		},
	}
}

func harmValue(a Agent) float64 {
	if h, ok := a.(*HarmAgent); ok {
		return float64(h.HarmReceived)
	}
	return 0
}
