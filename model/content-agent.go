package model

import (
	"fmt"
	"slices"
)

// labelDesk is the all-time labeling record of a moderator
type labelDesk struct {
	labeled []int
	index   map[int]struct{}
}

func newLabelDesk() *labelDesk {
	return &labelDesk{index: make(map[int]struct{})}
}

func (d *labelDesk) add(token int) {
	d.labeled = append(d.labeled, token)
	d.index[token] = struct{}{}
}

// ContentAgent is an agent of the token variant: misinformers post tokens,
// moderators label them, and everyone sorts what they received into seen
// or blocked.
type ContentAgent struct {
	agentBase

	// pending tokens, cleared after every activation
	Received []int
	Seen     []int
	Blocked  []int

	// nil unless the agent is a moderator
	desk *labelDesk
}

func NewContentAgent(id int, role Role) *ContentAgent {
	a := &ContentAgent{agentBase: newAgentBase(id, role)}
	if role == RoleModerator {
		a.desk = newLabelDesk()
	}
	return a
}

// Labeled returns the tokens this agent has labeled, in labeling order
func (a *ContentAgent) Labeled() []int {
	if a.desk == nil {
		return nil
	}
	return a.desk.labeled
}

// HasLabeled matches by token value, not by the post it came from
func (a *ContentAgent) HasLabeled(token int) bool {
	if a.desk == nil {
		return false
	}
	_, ok := a.desk.index[token]
	return ok
}

// Step implements the agent's one-tick behaviour
func (a *ContentAgent) Step(m *Model) {
	switch a.role {
	case RoleAdversarial:
		a.post(m)
	case RoleModerator:
		a.label(m)
	}
	a.process(m)
}

func (a *ContentAgent) post(m *Model) {
	token, ok := m.Pool.Pick(m.rng)
	if !ok {
		return
	}

	var targets []int
	for _, n := range m.NeighborsOf(a) {
		neighbor, ok := n.(*ContentAgent)
		if !ok || slices.Contains(neighbor.Received, token) {
			continue
		}
		neighbor.Received = append(neighbor.Received, token)
		targets = append(targets, neighbor.UniqueID)
	}
	m.logEvent(a, EventPost, PostEventBody{Token: token, Targets: targets})
}

// label spends at most ModWork labels on the shuffled queue. Whatever is
// left unlabeled is only processed, never retried.
func (a *ContentAgent) label(m *Model) {
	if a.desk == nil {
		return
	}

	m.rng.Shuffle(len(a.Received), func(i, j int) {
		a.Received[i], a.Received[j] = a.Received[j], a.Received[i]
	})

	work := m.Params.ModWork
	var labeled []int
	for _, token := range a.Received {
		if work <= 0 {
			break
		}
		a.desk.add(token)
		labeled = append(labeled, token)
		work--
	}
	if len(labeled) > 0 {
		m.logEvent(a, EventLabel, LabelEventBody{Tokens: labeled})
	}
}

func (a *ContentAgent) process(m *Model) {
	if len(a.Received) == 0 {
		return
	}

	neighbors := m.NeighborsOf(a)
	for _, token := range a.Received {
		if a.isLabeled(token, neighbors) {
			a.Blocked = append(a.Blocked, token)
		} else {
			a.Seen = append(a.Seen, token)
		}
	}
	a.Received = nil
}

func (a *ContentAgent) isLabeled(token int, neighbors []Agent) bool {
	if a.HasLabeled(token) {
		return true
	}
	for _, n := range neighbors {
		if neighbor, ok := n.(*ContentAgent); ok && neighbor.HasLabeled(token) {
			return true
		}
	}
	return false
}

func (a *ContentAgent) portray() (string, string) {
	label := fmt.Sprintf("Agent:%d Misinfo Seen:%d Blocked: %d", a.UniqueID, len(a.Seen), len(a.Blocked))
	if color, ok := roleColor(a.role); ok {
		return color, label
	}
	switch {
	case len(a.Seen) == 0:
		return colorCalm, label
	case len(a.Seen) < 10:
		return colorWarn, label
	default:
		return colorHarmed, label
	}
}

// ContentDynamics runs the token labeling variant
type ContentDynamics struct {
	BaseDynamics
}

func (d *ContentDynamics) Name() string {
	return VariantContent
}

func (d *ContentDynamics) NewAgent(id int, role Role) Agent {
	return NewContentAgent(id, role)
}

// PreStep draws the pool shared by every agent this tick
func (d *ContentDynamics) PreStep(m *Model) {
	m.Pool = NewContentPool(m.CurStep, m.Params.PoolSize, m.Params.TokenMax, m.rng)
}

// PostStep drops the pool so nothing refers to it in later ticks
func (d *ContentDynamics) PostStep(m *Model) {
	m.Pool = nil
}

func (d *ContentDynamics) ModelReporters() []ModelReporter {
	return []ModelReporter{
		{
			Name: ReporterAvgMisinfoSeen,
			Report: func(m *Model) float64 {
				return m.AgentMean(seenValue)
			},
		},
		{
			Name: ReporterAvgMisinfoBlocked,
			Report: func(m *Model) float64 {
				return m.AgentMean(blockedValue)
			},
		},
	}
}

func (d *ContentDynamics) AgentReporters() []AgentReporter {
	return []AgentReporter{
		{Name: ReporterMisinfoSeen, Report: seenValue},
		{Name: ReporterMisinfoBlocked, Report: blockedValue},
	}
}

func seenValue(a Agent) float64 {
	if c, ok := a.(*ContentAgent); ok {
		return float64(len(c.Seen))
	}
	return 0
}

func blockedValue(a Agent) float64 {
	if c, ok := a.(*ContentAgent); ok {
		return float64(len(c.Blocked))
	}
	return 0
}
