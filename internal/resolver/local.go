package resolver

import (
	"github.com/hearthdns/hearth/internal/cache"
	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
	"github.com/hearthdns/hearth/internal/zone"
)

// Local answers a question using only locally-loaded zones and the
// cache. It never consults hint zones or the network.
type Local struct {
	Store *zone.Store
	Cache *cache.Cache
}

// Resolve implements the zone-then-cache algorithm with CNAME chasing.
func (l *Local) Resolve(qname wire.Name, qtype protocol.Type, class protocol.Class) Answer {
	var accumulated []wire.RR
	visited := make(map[string]bool)
	current := qname

	for hop := 0; ; hop++ {
		if hop > maxCNAMEHops {
			return Answer{Code: ServFail}
		}
		key := current.Key()
		if visited[key] {
			return Answer{Code: ServFail}
		}
		visited[key] = true

		if z, ok := l.Store.Select(current); ok {
			rrs, result := z.Lookup(current, qtype)
			switch result {
			case zone.ResultHit:
				return Answer{Code: NoError, Answers: append(accumulated, rrs...), Authoritative: true}
			case zone.ResultCNAME:
				accumulated = append(accumulated, rrs...)
				target, ok := cnameTarget(rrs)
				if !ok {
					return Answer{Code: ServFail}
				}
				current = target
				continue
			case zone.ResultNoData:
				soa, _ := z.SOA()
				return Answer{Code: NoData, Answers: accumulated, Authority: soaSlice(soa), Authoritative: true}
			case zone.ResultNXDomain:
				soa, _ := z.SOA()
				return Answer{Code: NXDomain, Answers: accumulated, Authority: soaSlice(soa), Authoritative: true}
			}
		}

		if rrs := l.Cache.Get(current, qtype, class); len(rrs) > 0 {
			return Answer{Code: NoError, Answers: append(accumulated, rrs...), Authoritative: false}
		}
		if qtype != protocol.TypeCNAME {
			if cnames := l.Cache.Get(current, protocol.TypeCNAME, class); len(cnames) > 0 {
				accumulated = append(accumulated, cnames...)
				target, ok := cnameTarget(cnames)
				if !ok {
					return Answer{Code: ServFail}
				}
				current = target
				continue
			}
		}

		if len(accumulated) > 0 {
			// A CNAME chain bottomed out with nothing further to say
			// locally; let the caller try recursive resolution for the
			// final target, still carrying the chain gathered so far.
			return Answer{Code: NoLocalAnswer, Answers: accumulated}
		}
		return Answer{Code: NoLocalAnswer}
	}
}

func cnameTarget(rrs []wire.RR) (wire.Name, bool) {
	for _, rr := range rrs {
		if nr, ok := rr.Record.(wire.NameRecord); ok && rr.Type == protocol.TypeCNAME {
			return nr.Target, true
		}
	}
	return wire.Name{}, false
}

func soaSlice(soa wire.RR) []wire.RR {
	if soa.Type != protocol.TypeSOA {
		return nil
	}
	return []wire.RR{soa}
}
