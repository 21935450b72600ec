// Package zone implements the in-memory authoritative and hint zone
// database: per-origin record sets looked up by longest-suffix match,
// with RFC 1034 §4.3.3 wildcard synthesis.
package zone

import (
	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
)

// LookupResult classifies what a Zone.Lookup call found.
type LookupResult int

const (
	// ResultHit means records of the requested type were found (possibly
	// via wildcard synthesis).
	ResultHit LookupResult = iota
	// ResultCNAME means the owner has a CNAME and the caller should chase it.
	ResultCNAME
	// ResultNoData means the owner exists but has no record of the
	// requested type.
	ResultNoData
	// ResultNXDomain means no node in the zone matches the owner, nor any
	// wildcard ancestor.
	ResultNXDomain
)

// Zone is one authoritative or hint origin and its owned records. An
// authoritative zone always carries exactly one SOA at its apex; a hint
// zone never does.
type Zone struct {
	Origin  wire.Name
	records map[string][]wire.RR // keyed by owner Name.Key()
}

// NewZone creates an empty zone rooted at origin.
func NewZone(origin wire.Name) *Zone {
	return &Zone{Origin: origin, records: make(map[string][]wire.RR)}
}

// Authoritative reports whether the zone carries an SOA at its apex.
func (z *Zone) Authoritative() bool {
	for _, rr := range z.records[z.Origin.Key()] {
		if rr.Type == protocol.TypeSOA {
			return true
		}
	}
	return false
}

// SOA returns the zone's apex SOA record, if any.
func (z *Zone) SOA() (wire.RR, bool) {
	for _, rr := range z.records[z.Origin.Key()] {
		if rr.Type == protocol.TypeSOA {
			return rr, true
		}
	}
	return wire.RR{}, false
}

// Add inserts rr into the zone, deduplicating byte-equal RDATA at the
// same (owner, type), since an RRset is a set, not a list.
func (z *Zone) Add(rr wire.RR) {
	key := rr.Name.Key()
	existing := z.records[key]
	for i, other := range existing {
		if other.Type == rr.Type && rdataEqual(other, rr) {
			existing[i] = rr // later insertion's TTL/RDATA wins on exact RDATA match
			return
		}
	}
	z.records[key] = append(existing, rr)
}

// Merge folds other's records into z (used when multiple zone files
// declare the same authoritative origin). On SOA conflict the later
// (other's) SOA wins.
func (z *Zone) Merge(other *Zone) {
	for key, rrs := range other.records {
		for _, rr := range rrs {
			if rr.Type == protocol.TypeSOA {
				z.replaceSOA(rr)
				continue
			}
			z.Add(rr)
			_ = key
		}
	}
}

func (z *Zone) replaceSOA(soa wire.RR) {
	key := z.Origin.Key()
	existing := z.records[key]
	filtered := existing[:0]
	for _, rr := range existing {
		if rr.Type != protocol.TypeSOA {
			filtered = append(filtered, rr)
		}
	}
	z.records[key] = append(filtered, soa)
}

func rdataEqual(a, b wire.RR) bool {
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			return false
		}
	}
	return true
}

// Lookup implements the within-zone lookup algorithm for (owner,
// qtype). owner must already have been established to fall within z's
// authority by the caller (via Store.Select).
func (z *Zone) Lookup(owner wire.Name, qtype protocol.Type) ([]wire.RR, LookupResult) {
	if rrs, ok := z.exactMatch(owner, qtype); ok {
		return rrs, ResultHit
	}
	if cname, ok := z.exactMatch(owner, protocol.TypeCNAME); ok {
		return cname, ResultCNAME
	}
	// owner already has records of some other type: RFC 1034 §4.3.3
	// wildcards only cover labels with no explicit node of their own, so
	// this is NODATA, not a candidate for wildcard synthesis.
	if z.nodeExists(owner) {
		return nil, ResultNoData
	}
	if rrs, ok := z.wildcardMatch(owner, qtype); ok {
		return rrs, ResultHit
	}
	if cname, ok := z.wildcardMatch(owner, protocol.TypeCNAME); ok {
		return cname, ResultCNAME
	}
	return nil, ResultNXDomain
}

func (z *Zone) exactMatch(owner wire.Name, qtype protocol.Type) ([]wire.RR, bool) {
	rrs, ok := z.records[owner.Key()]
	if !ok {
		return nil, false
	}
	var out []wire.RR
	for _, rr := range rrs {
		if rr.Type == qtype || qtype == protocol.TypeALL {
			out = append(out, rr)
		}
	}
	return out, len(out) > 0
}

// nodeExists reports whether owner has any RR of any type, used to
// distinguish NODATA from NXDOMAIN.
func (z *Zone) nodeExists(owner wire.Name) bool {
	rrs, ok := z.records[owner.Key()]
	return ok && len(rrs) > 0
}

// wildcardMatch looks for the closest wildcard ancestor of owner, per
// RFC 1034 §4.3.3: a wildcard "*.x" matches "a.x", "a.b.x", etc. The
// nearest enclosing wildcard (most specific suffix) is tried first, so
// a wildcard at "*.b.x" shadows one at "*.x" for queries under "b.x".
func (z *Zone) wildcardMatch(owner wire.Name, qtype protocol.Type) ([]wire.RR, bool) {
	if !owner.IsSubdomainOf(z.Origin) || owner.Equal(z.Origin) {
		return nil, false
	}
	suffix, ok := owner.Parent()
	for ok {
		wildcard := prependWildcard(suffix)
		if rrs, found := z.exactMatch(wildcard, qtype); found {
			return synthesize(rrs, owner), true
		}
		if suffix.Equal(z.Origin) {
			break
		}
		suffix, ok = suffix.Parent()
	}
	return nil, false
}

func prependWildcard(suffix wire.Name) wire.Name {
	labels := make([][]byte, 0, len(suffix.Labels)+1)
	labels = append(labels, []byte("*"))
	labels = append(labels, suffix.Labels...)
	return wire.Name{Labels: labels}
}

func synthesize(rrs []wire.RR, owner wire.Name) []wire.RR {
	out := make([]wire.RR, len(rrs))
	for i, rr := range rrs {
		synthesized := rr
		synthesized.Name = owner
		out[i] = synthesized
	}
	return out
}

// NSRecords returns the zone's delegation NS records at owner, if any.
func (z *Zone) NSRecords(owner wire.Name) []wire.RR {
	rrs, _ := z.exactMatch(owner, protocol.TypeNS)
	return rrs
}

// AllRecords returns every RR the zone holds; Store.HintNS uses it to
// hand hint-zone records to the recursive resolver.
func (z *Zone) AllRecords() []wire.RR {
	var out []wire.RR
	for _, rrs := range z.records {
		out = append(out, rrs...)
	}
	return out
}
