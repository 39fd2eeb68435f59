package facematch

import (
	"sort"

	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/recognize"
)

// Conflict is a pair of known faces of different people that lie within tolerance of each
// other. A face close to such a pair can be recognized as either person.
type Conflict struct {
	A        Entry   `json:"a"`
	B        Entry   `json:"b"`
	Distance float64 `json:"distance"`
}

// FindConflicts looks for entries of different people within tolerance using the HNSW
// graph. Only the nearest ConflictNeighbors of each entry are checked, so on large
// galleries some pairs may be missed. Every reported pair is verified by exact distance.
// Results are ordered by distance.
func FindConflicts(entries []Entry, tolerance float64) []Conflict {
	if len(entries) < 2 {
		return nil
	}

	idx := NewIndex(entries)
	k := min(constants.ConflictNeighbors+1, len(entries))

	type pair struct{ a, b int }
	seen := make(map[pair]bool)
	var out []Conflict
	for i := range entries {
		ids, err := idx.Search(entries[i].Descriptor, k)
		if err != nil {
			return nil
		}
		for _, j := range ids {
			if j == i || entries[j].Name == entries[i].Name {
				continue
			}
			p := pair{min(i, j), max(i, j)}
			if seen[p] {
				continue
			}
			seen[p] = true

			d := recognize.Distance(entries[p.a].Descriptor, entries[p.b].Descriptor)
			if d <= tolerance {
				out = append(out, Conflict{A: entries[p.a], B: entries[p.b], Distance: d})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}
