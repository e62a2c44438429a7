package model

import "fmt"

// Role is the mutually exclusive role of an agent
type Role int

const (
	RoleRegular Role = iota
	RoleAdversarial
	RoleModerator
)

func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "regular"
	case RoleAdversarial:
		return "adversarial"
	case RoleModerator:
		return "moderator"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Agent is one user of the network.
//
// The set of implementations is closed: HarmAgent and ContentAgent. Both
// dispatch on their role inside Step.
type Agent interface {
	ID() int
	Role() Role
	// Node is the graph node the agent occupies, -1 before placement
	Node() int64
	// Step runs one activation; it may write into neighbours
	Step(m *Model)

	setNode(node int64)
	portray() (color string, label string)
}

// agentBase holds what every agent carries regardless of variant
type agentBase struct {
	UniqueID int
	role     Role
	node     int64
}

func newAgentBase(id int, role Role) agentBase {
	return agentBase{UniqueID: id, role: role, node: -1}
}

func (a *agentBase) ID() int {
	return a.UniqueID
}

func (a *agentBase) Role() Role {
	return a.role
}

func (a *agentBase) Node() int64 {
	return a.node
}

func (a *agentBase) setNode(node int64) {
	a.node = node
}

const (
	colorModerator   = "#0000FF"
	colorAdversarial = "#CC0000"
	colorCalm        = "#037f51"
	colorWarn        = "#FFFF00"
	colorHarmed      = "#FFA500"
	colorEmpty       = "#FFFFFF"
)

// roleColor returns the fixed colour of non-regular roles
func roleColor(r Role) (string, bool) {
	switch r {
	case RoleModerator:
		return colorModerator, true
	case RoleAdversarial:
		return colorAdversarial, true
	}
	return "", false
}
