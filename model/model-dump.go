package model

import "trollmod-model/utils"

type PortrayalNode struct {
	ID    int64  `msgpack:"id" json:"id"`
	Size  int    `msgpack:"size" json:"size"`
	Color string `msgpack:"color" json:"color"`
	Label string `msgpack:"label,omitempty" json:"label,omitempty"`
	// AgentID is -1 for an empty node
	AgentID int    `msgpack:"agent" json:"agent"`
	Role    string `msgpack:"role,omitempty" json:"role,omitempty"`
}

type PortrayalEdge struct {
	ID     int    `msgpack:"id" json:"id"`
	Source int64  `msgpack:"source" json:"source"`
	Target int64  `msgpack:"target" json:"target"`
	Color  string `msgpack:"color" json:"color"`
}

// Portrayal is a read-only picture of the network for visualization
type Portrayal struct {
	Step    int             `msgpack:"step" json:"step"`
	Variant string          `msgpack:"variant" json:"variant"`
	Nodes   []PortrayalNode `msgpack:"nodes" json:"nodes"`
	Edges   []PortrayalEdge `msgpack:"edges" json:"edges"`
}

// Portrayal colours every node by the role and state of its agent
func (m *Model) Portrayal() *Portrayal {
	ret := &Portrayal{
		Step:    m.CurStep,
		Variant: m.Dynamics.Name(),
	}

	for _, id := range utils.SortedNodes(m.Graph) {
		node := PortrayalNode{ID: id, Size: 2, Color: colorEmpty, AgentID: -1}
		if agent, ok := m.Grid.GetAgent(id); ok {
			node.Color, node.Label = agent.portray()
			node.AgentID = agent.ID()
			node.Role = agent.Role().String()
		}
		ret.Nodes = append(ret.Nodes, node)
	}

	for i, e := range m.Edges() {
		ret.Edges = append(ret.Edges, PortrayalEdge{
			ID:     i,
			Source: e.U,
			Target: e.V,
			Color:  "#000000",
		})
	}

	return ret
}
