package utils

import (
	"slices"

	"gonum.org/v1/gonum/graph"
)

// Edge is an undirected edge with U < V
type Edge struct {
	U int64 `msgpack:"u" json:"u"`
	V int64 `msgpack:"v" json:"v"`
}

// SortedNeighbors returns the neighbour ids of a node in ascending order.
// gonum iterates adjacency maps in random order, so anything that has to be
// reproducible goes through here.
func SortedNeighbors(g graph.Graph, id int64) []int64 {
	nodes := g.From(id)
	ret := make([]int64, 0, nodes.Len())
	for nodes.Next() {
		ret = append(ret, nodes.Node().ID())
	}
	slices.Sort(ret)
	return ret
}

// SortedNodes returns all node ids in ascending order
func SortedNodes(g graph.Graph) []int64 {
	nodes := g.Nodes()
	ret := make([]int64, 0, nodes.Len())
	for nodes.Next() {
		ret = append(ret, nodes.Node().ID())
	}
	slices.Sort(ret)
	return ret
}

// EdgeList returns every undirected edge once, sorted by (U, V)
func EdgeList(g graph.Undirected) []Edge {
	var ret []Edge
	for _, u := range SortedNodes(g) {
		for _, v := range SortedNeighbors(g, u) {
			if u < v {
				ret = append(ret, Edge{U: u, V: v})
			}
		}
	}
	return ret
}

// CompareGraphs reports whether two undirected graphs have the same node and edge sets
func CompareGraphs(g1, g2 graph.Undirected) bool {
	if !slices.Equal(SortedNodes(g1), SortedNodes(g2)) {
		return false
	}
	return slices.Equal(EdgeList(g1), EdgeList(g2))
}
