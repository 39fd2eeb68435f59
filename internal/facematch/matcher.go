package facematch

import (
	"math"

	"github.com/kozaktomas/facecam/internal/constants"
	"github.com/kozaktomas/facecam/internal/recognize"
)

// Matcher compares query descriptors against a fixed set of entries.
// It is immutable after construction and safe for concurrent use.
type Matcher struct {
	entries   []Entry
	tolerance float64
	strategy  Strategy
}

// NewMatcher builds a matcher over entries. Both strategies compare the query against
// every entry.
func NewMatcher(entries []Entry, tolerance float64, strategy Strategy) *Matcher {
	if tolerance <= 0 {
		tolerance = constants.DefaultMatchTolerance
	}
	return &Matcher{
		entries:   entries,
		tolerance: tolerance,
		strategy:  strategy,
	}
}

// Entries returns the entries the matcher was built from.
func (m *Matcher) Entries() []Entry {
	return m.entries
}

// Tolerance returns the maximum matching distance.
func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// Strategy returns the configured strategy.
func (m *Matcher) Strategy() Strategy {
	return m.strategy
}

// Match returns the winning entry for query, or false when nothing is within tolerance.
func (m *Matcher) Match(query recognize.Descriptor) (Match, bool) {
	if len(m.entries) == 0 {
		return Match{}, false
	}
	if m.strategy == StrategyClosest {
		return m.matchClosest(query)
	}
	return m.matchFirst(query)
}

func (m *Matcher) matchFirst(query recognize.Descriptor) (Match, bool) {
	for i := range m.entries {
		d := recognize.Distance(m.entries[i].Descriptor, query)
		if d <= m.tolerance {
			return Match{Entry: m.entries[i], Index: i, Distance: d}, true
		}
	}
	return Match{}, false
}

func (m *Matcher) matchClosest(query recognize.Descriptor) (Match, bool) {
	best := -1
	bestDist := math.MaxFloat64
	for i := range m.entries {
		// strict less keeps the earliest entry on ties
		if d := recognize.Distance(m.entries[i].Descriptor, query); d < bestDist {
			best = i
			bestDist = d
		}
	}

	if best < 0 || bestDist > m.tolerance {
		return Match{}, false
	}
	return Match{Entry: m.entries[best], Index: best, Distance: bestDist}, true
}
