package resolver

import (
	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
)

// delegation is the best-known NS set for some owner name.
type delegation struct {
	owner   wire.Name
	nsNames []wire.Name
}

// bestDelegation scans zones then the cache for the longest-suffix
// owner of qname that carries an NS RRset, falling back to the
// configured root hints.
func (r *Recursive) bestDelegation(qname wire.Name) delegation {
	ancestor := qname
	for {
		if z, ok := r.Store.Select(ancestor); ok {
			if ns := z.NSRecords(ancestor); len(ns) > 0 {
				return delegation{owner: ancestor, nsNames: targetsOf(ns)}
			}
		}
		if ns := r.Cache.Get(ancestor, protocol.TypeNS, protocol.ClassIN); len(ns) > 0 {
			return delegation{owner: ancestor, nsNames: targetsOf(ns)}
		}
		parent, ok := ancestor.Parent()
		if !ok || parent.Equal(ancestor) {
			break
		}
		ancestor = parent
	}
	return delegation{owner: wire.Root, nsNames: targetsOf(r.Store.HintNS())}
}

func targetsOf(rrs []wire.RR) []wire.Name {
	var out []wire.Name
	for _, rr := range rrs {
		if rr.Type != protocol.TypeNS {
			continue
		}
		if nr, ok := rr.Record.(wire.NameRecord); ok {
			out = append(out, nr.Target)
		}
	}
	return out
}

// glueAddress returns the first A record in glue whose owner matches name.
func glueAddress(glue []wire.RR, name wire.Name) (wire.RR, bool) {
	for _, rr := range glue {
		if rr.Type == protocol.TypeA && rr.Name.Equal(name) {
			return rr, true
		}
	}
	return wire.RR{}, false
}

// inBailiwick reports whether owner lies at or under zoneOrigin, the
// gate that must pass before trusting a record from a referral or
// answer.
func inBailiwick(owner, zoneOrigin wire.Name) bool {
	return owner.IsSubdomainOf(zoneOrigin)
}
