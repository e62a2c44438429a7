package utils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/simple"
)

func TestAttachmentCount(t *testing.T) {
	assert.Equal(t, 38, AttachmentCount(50, 0.75))
	assert.Equal(t, 1, AttachmentCount(10, 0.1))
	assert.Equal(t, 5, AttachmentCount(50, 0.1))
	// half rounds to even
	assert.Equal(t, 22, AttachmentCount(30, 0.75))
	assert.Equal(t, 8, AttachmentCount(10, 0.75))
}

func TestScaleFreeNetworkShape(t *testing.T) {
	n, m := 50, 3
	g, err := CreateScaleFreeNetwork(n, m, 11)
	require.NoError(t, err)

	assert.Equal(t, n, g.Nodes().Len())
	// every new node brings exactly m edges
	assert.Len(t, EdgeList(g), (n-m)*m)

	for _, id := range SortedNodes(g) {
		assert.GreaterOrEqual(t, g.From(id).Len(), 1, "node %d is isolated", id)
	}
}

func TestScaleFreeNetworkDeterministic(t *testing.T) {
	g1, err := CreateScaleFreeNetwork(40, 4, 11)
	require.NoError(t, err)
	g2, err := CreateScaleFreeNetwork(40, 4, 11)
	require.NoError(t, err)
	assert.True(t, CompareGraphs(g1, g2))

	g3, err := CreateScaleFreeNetwork(40, 4, 12)
	require.NoError(t, err)
	assert.False(t, CompareGraphs(g1, g3))
}

func TestPowerlawClusterNetwork(t *testing.T) {
	n, m := 60, 4
	g1, err := CreatePowerlawClusterNetwork(n, m, 0.9, 11)
	require.NoError(t, err)
	g2, err := CreatePowerlawClusterNetwork(n, m, 0.9, 11)
	require.NoError(t, err)

	assert.True(t, CompareGraphs(g1, g2))
	assert.Equal(t, n, g1.Nodes().Len())
	assert.LessOrEqual(t, len(EdgeList(g1)), (n-m)*m)
	for _, id := range SortedNodes(g1) {
		assert.GreaterOrEqual(t, g1.From(id).Len(), 1, "node %d is isolated", id)
	}
}

func TestGeneratorsRejectBadParameters(t *testing.T) {
	tests := []struct {
		name string
		n, m int
		p    float64
	}{
		{"zero nodes", 0, 1, 0.5},
		{"negative nodes", -3, 1, 0.5},
		{"attachment equals nodes", 5, 5, 0.5},
		{"attachment above nodes", 5, 9, 0.5},
		{"zero attachment", 5, 0, 0.5},
		{"probability above one", 10, 2, 1.5},
		{"negative probability", 10, 2, -0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreatePowerlawClusterNetwork(tt.n, tt.m, tt.p, 1)
			assert.ErrorIs(t, err, ErrInvalidTopology)
			if tt.p >= 0 && tt.p <= 1 {
				_, err = CreateScaleFreeNetwork(tt.n, tt.m, 1)
				assert.ErrorIs(t, err, ErrInvalidTopology)
			}
		})
	}
}

func TestSerializeAndDeserializeGraph(t *testing.T) {
	g, err := CreateScaleFreeNetwork(100, 5, 7)
	require.NoError(t, err)

	nxGraph := SerializeGraph(g)
	assert.False(t, nxGraph.Directed)

	assert.True(t, CompareGraphs(g, DeserializeGraph(nxGraph)))
}

func TestIsolatedNodeSurvivesSerialization(t *testing.T) {
	g := simple.NewUndirectedGraph()
	g.AddNode(simple.Node(0))
	g.AddNode(simple.Node(1))
	g.AddNode(simple.Node(2))
	g.SetEdge(simple.Edge{F: simple.Node(0), T: simple.Node(1)})

	assert.True(t, CompareGraphs(g, DeserializeGraph(SerializeGraph(g))))
}

func TestSaveAndLoadGraphToFile(t *testing.T) {
	g, err := CreatePowerlawClusterNetwork(80, 4, 0.5, 3)
	require.NoError(t, err)

	for _, name := range []string{"graph.msgpack", "graph.msgpack.lz4"} {
		t.Run(name, func(t *testing.T) {
			filename := filepath.Join(t.TempDir(), name)
			require.NoError(t, SaveGraphToFile(g, filename))

			loaded, err := LoadGraphFromFile(filename)
			require.NoError(t, err)
			assert.True(t, CompareGraphs(g, loaded))
		})
	}
}
