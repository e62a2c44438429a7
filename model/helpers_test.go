package model

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

func seed(v int64) *int64 {
	return &v
}

func completeGraph(n int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(i))
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
		}
	}
	return g
}

func identityOrder(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

func reverseOrder(n int) []int {
	ret := make([]int, n)
	for i := range ret {
		ret[i] = n - 1 - i
	}
	return ret
}

func harmAgents(t *testing.T, m *Model) []*HarmAgent {
	t.Helper()
	ret := make([]*HarmAgent, 0, len(m.Schedule.Agents))
	for _, a := range m.Schedule.Agents {
		h, ok := a.(*HarmAgent)
		require.True(t, ok, "agent %d is %T", a.ID(), a)
		ret = append(ret, h)
	}
	return ret
}

func contentAgents(t *testing.T, m *Model) []*ContentAgent {
	t.Helper()
	ret := make([]*ContentAgent, 0, len(m.Schedule.Agents))
	for _, a := range m.Schedule.Agents {
		c, ok := a.(*ContentAgent)
		require.True(t, ok, "agent %d is %T", a.ID(), a)
		ret = append(ret, c)
	}
	return ret
}
