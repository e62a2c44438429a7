package utils

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
	"gonum.org/v1/gonum/graph/simple"
)

type NetworkXGraph struct {
	Adjacency map[int64]map[int64]any  `msgpack:"adjacency" json:"adjacency"`
	Directed  bool                     `msgpack:"directed" json:"directed"`
	Nodes     map[int64]map[string]any `msgpack:"nodes" json:"nodes"`
	Graph     map[string]any           `msgpack:"graph" json:"graph"`
}

// SerializeGraph converts the graph to the networkx adjacency layout.
// Undirected edges appear under both endpoints.
func SerializeGraph(g *simple.UndirectedGraph) *NetworkXGraph {
	nxGraph := &NetworkXGraph{
		Adjacency: make(map[int64]map[int64]any),
		Directed:  false,
		Nodes:     make(map[int64]map[string]any),
		Graph:     make(map[string]any),
	}

	// isolated nodes must survive the round trip
	for _, id := range SortedNodes(g) {
		nxGraph.Nodes[id] = make(map[string]any)
		nxGraph.Adjacency[id] = make(map[int64]any)
	}

	for _, e := range EdgeList(g) {
		nxGraph.Adjacency[e.U][e.V] = map[string]any{}
		nxGraph.Adjacency[e.V][e.U] = map[string]any{}
	}

	nxGraph.Graph["name"] = "Generated from Gonum UndirectedGraph"

	return nxGraph
}

func DeserializeGraph(nxGraph *NetworkXGraph) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()

	ensure := func(id int64) {
		if g.Node(id) == nil {
			g.AddNode(simple.Node(id))
		}
	}

	for nodeID := range nxGraph.Nodes {
		ensure(nodeID)
	}

	for fromID, targets := range nxGraph.Adjacency {
		ensure(fromID)
		for toID := range targets {
			ensure(toID)
			if fromID == toID || g.HasEdgeBetween(fromID, toID) {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}

	return g
}

// WriteMsgpackFile marshals v into filename, lz4 framed if the name ends in .lz4
func WriteMsgpackFile(filename string, v any) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	if strings.HasSuffix(filename, ".lz4") {
		var out bytes.Buffer
		w := lz4.NewWriter(&out)
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		data = out.Bytes()
	}

	return os.WriteFile(filename, data, 0644)
}

// ReadMsgpackFile is the inverse of WriteMsgpackFile
func ReadMsgpackFile(filename string, v any) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if strings.HasSuffix(filename, ".lz4") {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, lz4.NewReader(bytes.NewReader(raw))); err != nil {
			return err
		}
		raw = buf.Bytes()
	}

	return msgpack.Unmarshal(raw, v)
}

func SaveGraphToFile(g *simple.UndirectedGraph, filename string) error {
	return WriteMsgpackFile(filename, SerializeGraph(g))
}

func LoadGraphFromFile(filename string) (*simple.UndirectedGraph, error) {
	var nxGraph NetworkXGraph
	if err := ReadMsgpackFile(filename, &nxGraph); err != nil {
		return nil, err
	}
	return DeserializeGraph(&nxGraph), nil
}
