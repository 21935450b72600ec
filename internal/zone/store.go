package zone

import (
	"sync/atomic"

	"github.com/hearthdns/hearth/internal/wire"
)

// snapshot is the immutable value a Store publishes atomically on
// reload. Readers take a reference to one snapshot for the duration of
// a single query, so a concurrent reload never blocks or tears a read.
type snapshot struct {
	authoritative []*Zone // sorted longest-origin-first
	hints         []*Zone
}

// Store is the zone database: authoritative zones plus hint zones,
// selected by longest-suffix match.
type Store struct {
	current atomic.Pointer[snapshot]
}

// NewStore returns an empty Store ready for its first Load.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&snapshot{})
	return s
}

// Load replaces the store's contents atomically. In-flight queries
// holding a reference obtained before Load returns continue to observe
// the previous snapshot.
func (s *Store) Load(authoritative, hints []*Zone) {
	sorted := append([]*Zone(nil), authoritative...)
	sortByOriginDepthDesc(sorted)
	s.current.Store(&snapshot{authoritative: sorted, hints: hints})
}

func sortByOriginDepthDesc(zones []*Zone) {
	for i := 1; i < len(zones); i++ {
		for j := i; j > 0 && len(zones[j].Origin.Labels) > len(zones[j-1].Origin.Labels); j-- {
			zones[j], zones[j-1] = zones[j-1], zones[j]
		}
	}
}

// Select returns the authoritative zone whose origin is the longest
// suffix of name, if any.
func (s *Store) Select(name wire.Name) (*Zone, bool) {
	snap := s.current.Load()
	for _, z := range snap.authoritative {
		if name.IsSubdomainOf(z.Origin) {
			return z, true
		}
	}
	return nil, false
}

// HintNS returns every record held by hint zones (their NS records and
// any glue address records), used to seed the recursive resolver when no
// better delegation is known.
func (s *Store) HintNS() []wire.RR {
	snap := s.current.Load()
	var out []wire.RR
	for _, z := range snap.hints {
		out = append(out, z.AllRecords()...)
	}
	return out
}

// Zones returns every authoritative zone currently live.
func (s *Store) Zones() []*Zone {
	snap := s.current.Load()
	return snap.authoritative
}
