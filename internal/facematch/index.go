package facematch

import (
	"errors"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/recognize"
)

// Index is an approximate nearest neighbour graph over gallery descriptors. Node keys are
// positions in the entry slice the index was built from. Results may miss true neighbours,
// so callers must not use it where an exact answer is required.
type Index struct {
	graph *hnsw.Graph[int]
}

// NewIndex builds an index over entries.
func NewIndex(entries []Entry) *Index {
	if len(entries) == 0 {
		return &Index{}
	}

	g := hnsw.NewGraph[int]()
	g.M = constants.HNSWMaxNeighbors
	g.Ml = 1.0 / float64(constants.HNSWMaxNeighbors) // Standard HNSW formula
	g.EfSearch = constants.HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance
	for i := range entries {
		g.Add(hnsw.MakeNode(i, entries[i].Descriptor.Slice()))
	}
	return &Index{graph: g}
}

// Search returns up to k entry positions ordered by approximate distance to query.
func (x *Index) Search(query recognize.Descriptor, k int) ([]int, error) {
	if x.graph == nil {
		return nil, errors.New("index is empty")
	}

	neighbors := x.graph.Search(query.Slice(), k)
	ids := make([]int, len(neighbors))
	for i, n := range neighbors {
		ids[i] = n.Key
	}
	return ids, nil
}
