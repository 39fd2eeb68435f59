package facematch

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/kozaktomas/facecam/internal/recognize"
)

// descriptorAt returns a descriptor whose first component is x and the rest zero, so the
// distance between two of them is the difference of their x values.
func descriptorAt(x float32) recognize.Descriptor {
	var d recognize.Descriptor
	d[0] = x
	return d
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyFirst, false},
		{"first", StrategyFirst, false},
		{"closest", StrategyClosest, false},
		{"best", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStrategy(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStrategy(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatcher_EmptyGallery(t *testing.T) {
	m := NewMatcher(nil, 0.6, StrategyFirst)
	if _, ok := m.Match(descriptorAt(0)); ok {
		t.Error("expected no match against an empty gallery")
	}

	m = NewMatcher(nil, 0.6, StrategyClosest)
	if _, ok := m.Match(descriptorAt(0)); ok {
		t.Error("expected no match against an empty gallery with closest strategy")
	}
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	entries := []Entry{
		{Name: "alice", Descriptor: descriptorAt(0.5)},
		{Name: "bob", Descriptor: descriptorAt(0.05)},
	}
	m := NewMatcher(entries, 0.6, StrategyFirst)

	match, ok := m.Match(descriptorAt(0))
	if !ok {
		t.Fatal("expected a match")
	}
	// bob is closer, but alice comes first and is within tolerance
	if match.Entry.Name != "alice" {
		t.Errorf("expected first entry 'alice', got '%s'", match.Entry.Name)
	}
	if match.Index != 0 {
		t.Errorf("expected index 0, got %d", match.Index)
	}
	if math.Abs(match.Distance-0.5) > 1e-6 {
		t.Errorf("expected distance 0.5, got %f", match.Distance)
	}
}

func TestMatcher_ClosestMatchWins(t *testing.T) {
	entries := []Entry{
		{Name: "alice", Descriptor: descriptorAt(0.5)},
		{Name: "bob", Descriptor: descriptorAt(0.05)},
	}
	m := NewMatcher(entries, 0.6, StrategyClosest)

	match, ok := m.Match(descriptorAt(0))
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Entry.Name != "bob" {
		t.Errorf("expected closest entry 'bob', got '%s'", match.Entry.Name)
	}
}

func TestMatcher_OutsideTolerance(t *testing.T) {
	entries := []Entry{
		{Name: "alice", Descriptor: descriptorAt(0.7)},
		{Name: "bob", Descriptor: descriptorAt(-0.9)},
	}

	for _, s := range []Strategy{StrategyFirst, StrategyClosest} {
		t.Run(string(s), func(t *testing.T) {
			m := NewMatcher(entries, 0.6, s)
			if match, ok := m.Match(descriptorAt(0)); ok {
				t.Errorf("expected no match, got '%s' at %f", match.Entry.Name, match.Distance)
			}
		})
	}
}

func TestMatcher_ToleranceIsInclusive(t *testing.T) {
	entries := []Entry{{Name: "alice", Descriptor: descriptorAt(0.5)}}
	m := NewMatcher(entries, 0.5, StrategyFirst)

	if _, ok := m.Match(descriptorAt(0)); !ok {
		t.Error("expected a face exactly at the tolerance to match")
	}
}

func TestMatcher_DefaultTolerance(t *testing.T) {
	m := NewMatcher(nil, 0, StrategyFirst)
	if m.Tolerance() != 0.6 {
		t.Errorf("expected default tolerance 0.6, got %f", m.Tolerance())
	}
}

func TestMatcher_ClosestTieKeepsEarliest(t *testing.T) {
	entries := []Entry{
		{Name: "alice", Descriptor: descriptorAt(0.3)},
		{Name: "bob", Descriptor: descriptorAt(-0.3)},
	}
	m := NewMatcher(entries, 0.6, StrategyClosest)

	match, ok := m.Match(descriptorAt(0))
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Index != 0 {
		t.Errorf("expected earliest entry on a tie, got index %d", match.Index)
	}
}

// randomDescriptor returns a descriptor with normally distributed components.
func randomDescriptor(r *rand.Rand, sigma float64) recognize.Descriptor {
	var d recognize.Descriptor
	for i := range d {
		d[i] = float32(r.NormFloat64() * sigma)
	}
	return d
}

func perturb(r *rand.Rand, d recognize.Descriptor, sigma float64) recognize.Descriptor {
	for i := range d {
		d[i] += float32(r.NormFloat64() * sigma)
	}
	return d
}

// nearest is the exhaustive reference for the closest strategy.
func nearest(entries []Entry, query recognize.Descriptor) (int, float64) {
	best, bestDist := -1, math.MaxFloat64
	for i := range entries {
		if d := recognize.Distance(entries[i].Descriptor, query); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func TestMatcher_ClosestAgreesWithExhaustiveSearch(t *testing.T) {
	const tolerance = 0.6

	for _, size := range []int{20, 100, 400} {
		t.Run(fmt.Sprintf("%d entries", size), func(t *testing.T) {
			r := rand.New(rand.NewPCG(uint64(size), 42))
			entries := make([]Entry, size)
			for i := range entries {
				entries[i] = Entry{Name: fmt.Sprintf("person-%d", i), Descriptor: randomDescriptor(r, 0.09)}
			}
			closest := NewMatcher(entries, tolerance, StrategyClosest)
			first := NewMatcher(entries, tolerance, StrategyFirst)

			for range 200 {
				query := perturb(r, entries[r.IntN(size)].Descriptor, 0.05)
				wantIdx, wantDist := nearest(entries, query)

				match, ok := closest.Match(query)
				if _, firstOK := first.Match(query); firstOK != ok {
					t.Fatalf("first match found=%v but closest found=%v", firstOK, ok)
				}
				if wantDist > tolerance {
					if ok {
						t.Fatalf("expected no match beyond tolerance, got index %d", match.Index)
					}
					continue
				}
				if !ok {
					t.Fatalf("expected a match at distance %f", wantDist)
				}
				if match.Index != wantIdx {
					t.Fatalf("expected nearest index %d, got %d", wantIdx, match.Index)
				}
			}
		})
	}
}

func TestIndex_Search(t *testing.T) {
	if _, err := NewIndex(nil).Search(descriptorAt(0), 1); err == nil {
		t.Error("expected error searching an empty index")
	}

	idx := NewIndex([]Entry{
		{Name: "a", Descriptor: descriptorAt(0)},
		{Name: "b", Descriptor: descriptorAt(1)},
		{Name: "c", Descriptor: descriptorAt(2)},
	})
	ids, err := idx.Search(descriptorAt(1.9), 1)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("expected nearest id 2, got %v", ids)
	}
}

func TestFindConflicts(t *testing.T) {
	entries := []Entry{
		{Name: "alice", Descriptor: descriptorAt(0)},
		{Name: "bob", Descriptor: descriptorAt(0.3)},
		{Name: "carol", Descriptor: descriptorAt(5)},
		{Name: "alice", Descriptor: descriptorAt(0.1)},
	}

	conflicts := FindConflicts(entries, 0.6)
	if len(conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d: %+v", len(conflicts), conflicts)
	}
	for _, c := range conflicts {
		if c.A.Name == c.B.Name {
			t.Errorf("conflict between faces of the same person: %+v", c)
		}
		if c.A.Name == "carol" || c.B.Name == "carol" {
			t.Errorf("carol is far from everyone, got %+v", c)
		}
	}
	if math.Abs(conflicts[0].Distance-0.2) > 1e-6 {
		t.Errorf("expected nearest conflict first at 0.2, got %f", conflicts[0].Distance)
	}

	if got := FindConflicts(entries[:1], 0.6); got != nil {
		t.Errorf("expected no conflicts for a single entry, got %+v", got)
	}
}
