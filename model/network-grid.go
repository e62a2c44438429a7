package model

import (
	"fmt"

	"trollmod-model/utils"

	"gonum.org/v1/gonum/graph/simple"
)

// NetworkGrid places at most one agent on every node of an immutable graph
type NetworkGrid struct {
	Graph    *simple.UndirectedGraph
	AgentMap map[int64]Agent

	// sorted adjacency, computed once since the graph never changes
	adjacency map[int64][]int64
}

// NewNetworkGrid creates a new network grid
func NewNetworkGrid(g *simple.UndirectedGraph) *NetworkGrid {
	ng := &NetworkGrid{
		Graph:     g,
		AgentMap:  make(map[int64]Agent),
		adjacency: make(map[int64][]int64),
	}
	for _, id := range utils.SortedNodes(g) {
		ng.adjacency[id] = utils.SortedNeighbors(g, id)
	}
	return ng
}

// PlaceAgent places an agent on an empty node
func (ng *NetworkGrid) PlaceAgent(agent Agent, nodeID int64) error {
	if _, ok := ng.adjacency[nodeID]; !ok {
		return fmt.Errorf("%w: node %d is not in the graph", ErrInvariantViolation, nodeID)
	}
	if other, ok := ng.AgentMap[nodeID]; ok {
		return fmt.Errorf("%w: node %d already holds agent %d", ErrInvariantViolation, nodeID, other.ID())
	}
	if agent.Node() >= 0 {
		return fmt.Errorf("%w: agent %d is already placed on node %d", ErrInvariantViolation, agent.ID(), agent.Node())
	}
	ng.AgentMap[nodeID] = agent
	agent.setNode(nodeID)
	return nil
}

// GetAgent returns the agent at the specified node
func (ng *NetworkGrid) GetAgent(nodeID int64) (Agent, bool) {
	agent, ok := ng.AgentMap[nodeID]
	return agent, ok
}

// GetNeighbors returns the agents on the neighbouring nodes, by node id.
// Empty nodes are skipped.
func (ng *NetworkGrid) GetNeighbors(nodeID int64) []Agent {
	nodes := ng.adjacency[nodeID]
	ret := make([]Agent, 0, len(nodes))
	for _, id := range nodes {
		if agent, ok := ng.AgentMap[id]; ok {
			ret = append(ret, agent)
		}
	}
	return ret
}

// NeighborNodes returns the sorted neighbour node ids
func (ng *NetworkGrid) NeighborNodes(nodeID int64) []int64 {
	return ng.adjacency[nodeID]
}
