package utils

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/graph/simple"
)

// ErrInvalidTopology is returned when generator parameters cannot produce a graph
var ErrInvalidTopology = errors.New("invalid topology parameters")

// AttachmentCount returns m = round(n * density), rounding half to even
func AttachmentCount(nodeCount int, density float64) int {
	return int(math.RoundToEven(float64(nodeCount) * density))
}

func checkAttachment(nodeCount int, m int) error {
	if nodeCount <= 0 {
		return fmt.Errorf("node count %d must be positive: %w", nodeCount, ErrInvalidTopology)
	}
	if m < 1 || m >= nodeCount {
		return fmt.Errorf("attachment count %d must be in [1, %d): %w", m, nodeCount, ErrInvalidTopology)
	}
	return nil
}

func newEmptyNetwork(nodeCount int) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := 0; i < nodeCount; i++ {
		g.AddNode(simple.Node(i))
	}
	return g
}

func setUndirectedEdge(g *simple.UndirectedGraph, u int64, v int64) {
	g.SetEdge(g.NewEdge(simple.Node(u), simple.Node(v)))
}

// randomSubset draws from seq (with repetition weighting) until m distinct
// values are collected. Values are returned in the order they were first drawn.
func randomSubset(seq []int64, m int, rng *rand.Rand) []int64 {
	picked := make(map[int64]bool, m)
	ret := make([]int64, 0, m)
	for len(ret) < m {
		x := seq[rng.Intn(len(seq))]
		if !picked[x] {
			picked[x] = true
			ret = append(ret, x)
		}
	}
	return ret
}

// scale-free graph by preferential attachment (Barabasi-Albert)
//
// nodes 0..m-1 start unconnected, every later node attaches to m distinct
// existing nodes picked proportionally to their degree.
func CreateScaleFreeNetwork(nodeCount int, m int, seed int64) (*simple.UndirectedGraph, error) {
	if err := checkAttachment(nodeCount, m); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	g := newEmptyNetwork(nodeCount)

	targets := make([]int64, m)
	for i := 0; i < m; i++ {
		targets[i] = int64(i)
	}
	repeated := make([]int64, 0, 2*m*nodeCount)

	for source := int64(m); source < int64(nodeCount); source++ {
		for _, target := range targets {
			setUndirectedEdge(g, source, target)
		}
		repeated = append(repeated, targets...)
		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
		targets = randomSubset(repeated, m, rng)
	}

	return g, nil
}

// scale-free graph with tunable clustering (Holme-Kim)
//
// same attachment process as CreateScaleFreeNetwork, but after the first
// edge of every new node, each further edge closes a triangle with
// probability p when a candidate exists.
func CreatePowerlawClusterNetwork(nodeCount int, m int, p float64, seed int64) (*simple.UndirectedGraph, error) {
	if err := checkAttachment(nodeCount, m); err != nil {
		return nil, err
	}
	if p < 0 || p > 1 || math.IsNaN(p) {
		return nil, fmt.Errorf("triangle probability %v must be in [0, 1]: %w", p, ErrInvalidTopology)
	}

	rng := rand.New(rand.NewSource(seed))
	g := newEmptyNetwork(nodeCount)

	repeated := make([]int64, m, 2*m*nodeCount)
	for i := 0; i < m; i++ {
		repeated[i] = int64(i)
	}

	for source := int64(m); source < int64(nodeCount); source++ {
		possible := randomSubset(repeated, m, rng)
		pop := func() int64 {
			last := possible[len(possible)-1]
			possible = possible[:len(possible)-1]
			return last
		}

		target := pop()
		setUndirectedEdge(g, source, target)
		repeated = append(repeated, target)

		for count := 1; count < m; count++ {
			if rng.Float64() < p {
				candidates := triangleCandidates(g, source, target)
				if len(candidates) > 0 {
					nbr := candidates[rng.Intn(len(candidates))]
					setUndirectedEdge(g, source, nbr)
					repeated = append(repeated, nbr)
					continue
				}
			}
			target = pop()
			setUndirectedEdge(g, source, target)
			repeated = append(repeated, target)
		}

		for i := 0; i < m; i++ {
			repeated = append(repeated, source)
		}
	}

	return g, nil
}

// neighbours of target that are not source and not yet linked to source
func triangleCandidates(g *simple.UndirectedGraph, source int64, target int64) []int64 {
	var ret []int64
	for _, nbr := range SortedNeighbors(g, target) {
		if nbr != source && !g.HasEdgeBetween(source, nbr) {
			ret = append(ret, nbr)
		}
	}
	return ret
}
