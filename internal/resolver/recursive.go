package resolver

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hearthdns/hearth/internal/cache"
	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/transport"
	"github.com/hearthdns/hearth/internal/wire"
	"github.com/hearthdns/hearth/internal/zone"
)

const (
	defaultMaxReferrals = 32
	defaultMaxDepth     = 8
	defaultTimeout      = 10 * time.Second
	defaultPerQuery     = 2 * time.Second
	dnsPort             = "53"
)

// Recursive implements the iterative referral-following resolver:
// starting from the best-known delegation, it queries authoritative
// servers directly, follows referrals deeper into the namespace, and
// chases CNAMEs along the way, all under fixed budgets.
type Recursive struct {
	Store *zone.Store
	Cache *cache.Cache

	MaxReferrals int
	MaxDepth     int
	Timeout      time.Duration
	PerQuery     time.Duration

	// UpstreamPort is the port every upstream query is sent to. It is
	// always "53" in production; tests override it to address a
	// loopback stand-in nameserver bound to an ephemeral port.
	UpstreamPort string

	group singleflight.Group
}

// NewRecursive returns a Recursive with default budgets. Root hints are
// not a fixed construction-time snapshot: bestDelegation reads
// store.HintNS() live on every call, so a Store.Load from a SIGHUP
// reload is picked up immediately.
func NewRecursive(store *zone.Store, c *cache.Cache) *Recursive {
	return &Recursive{
		Store:        store,
		Cache:        c,
		MaxReferrals: defaultMaxReferrals,
		MaxDepth:     defaultMaxDepth,
		Timeout:      defaultTimeout,
		PerQuery:     defaultPerQuery,
		UpstreamPort: dnsPort,
	}
}

// Resolve answers (qname, qtype, class) recursively, coalescing
// concurrent requests for the identical question into one in-flight
// lookup.
func (r *Recursive) Resolve(ctx context.Context, qname wire.Name, qtype protocol.Type, class protocol.Class) Answer {
	key := fmt.Sprintf("%s|%d|%d", qname.Key(), qtype, class)
	v, _, _ := r.group.Do(key, func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(ctx, r.Timeout)
		defer cancel()
		ans := r.resolveHops(cctx, qname, qtype, class, 0, new(int))
		return ans, nil
	})
	return v.(Answer)
}

// resolveHops drives the CNAME-chasing outer loop; each hop resolves
// one owner name via referral-following.
func (r *Recursive) resolveHops(ctx context.Context, qname wire.Name, qtype protocol.Type, class protocol.Class, depth int, referrals *int) Answer {
	if depth > r.MaxDepth {
		return Answer{Code: ServFail}
	}

	var accumulated []wire.RR
	current := qname
	seen := make(map[string]bool)

	for hop := 0; hop <= maxCNAMEHops; hop++ {
		if seen[current.Key()] {
			return Answer{Code: ServFail, Answers: accumulated}
		}
		seen[current.Key()] = true

		step, ok := r.followReferrals(ctx, current, qtype, class, depth, referrals)
		if !ok {
			return Answer{Code: ServFail, Answers: accumulated}
		}
		switch step.code {
		case stepAnswer:
			return Answer{Code: NoError, Answers: append(accumulated, step.rrs...), Authority: step.authority}
		case stepCNAME:
			accumulated = append(accumulated, step.rrs...)
			target, ok := cnameTarget(step.rrs)
			if !ok {
				return Answer{Code: ServFail, Answers: accumulated}
			}
			current = target
			continue
		case stepNXDomain:
			return Answer{Code: NXDomain, Answers: accumulated, Authority: step.authority}
		case stepNoData:
			return Answer{Code: NoData, Answers: accumulated, Authority: step.authority}
		}
	}
	return Answer{Code: ServFail, Answers: accumulated}
}

type stepCode int

const (
	stepAnswer stepCode = iota
	stepCNAME
	stepNXDomain
	stepNoData
)

type referralStep struct {
	code      stepCode
	rrs       []wire.RR
	authority []wire.RR
}

// followReferrals resolves a single owner name by querying the
// best-known delegation and descending through referrals until an
// authoritative server answers, the referral budget is exhausted, or
// no further progress is possible.
func (r *Recursive) followReferrals(ctx context.Context, qname wire.Name, qtype protocol.Type, class protocol.Class, depth int, referrals *int) (referralStep, bool) {
	deleg := r.bestDelegation(qname)

	for {
		select {
		case <-ctx.Done():
			return referralStep{}, false
		default:
		}

		addrs := r.candidateAddresses(ctx, deleg, depth)
		if len(addrs) == 0 {
			return referralStep{}, false
		}

		var resp *wire.Message
		for _, addr := range addrs {
			if *referrals >= r.MaxReferrals {
				return referralStep{}, false
			}
			*referrals++
			m, err := r.query(ctx, addr, qname, qtype, class)
			if err != nil {
				continue
			}
			resp = m
			break
		}
		if resp == nil {
			return referralStep{}, false
		}

		r.cacheResponse(resp, deleg.owner)

		if rrs, ok := matchingRRs(resp.Answers, qname, qtype); ok {
			return referralStep{code: stepAnswer, rrs: rrs, authority: resp.Authority}, true
		}
		if cname, ok := matchingRRs(resp.Answers, qname, protocol.TypeCNAME); ok {
			return referralStep{code: stepCNAME, rrs: cname}, true
		}
		if resp.Header.RCode() == protocol.RCodeNameError {
			return referralStep{code: stepNXDomain, authority: resp.Authority}, true
		}

		next, ok := nextDelegationFrom(resp.Authority, qname, deleg.owner)
		if !ok {
			return referralStep{code: stepNoData, authority: resp.Authority}, true
		}
		deleg = next
	}
}

// matchingRRs returns every RR in rrs owned by name with the given type.
func matchingRRs(rrs []wire.RR, name wire.Name, rtype protocol.Type) ([]wire.RR, bool) {
	var out []wire.RR
	for _, rr := range rrs {
		if rr.Name.Equal(name) && (rr.Type == rtype || rtype == protocol.TypeALL) {
			out = append(out, rr)
		}
	}
	return out, len(out) > 0
}

// nextDelegationFrom looks for an NS RRset in an authority section that
// delegates strictly deeper than prevOwner and is in-bailiwick for
// qname, the signature of a legitimate referral.
func nextDelegationFrom(authority []wire.RR, qname, prevOwner wire.Name) (delegation, bool) {
	var owner wire.Name
	var found bool
	for _, rr := range authority {
		if rr.Type != protocol.TypeNS {
			continue
		}
		if !qname.IsSubdomainOf(rr.Name) {
			continue
		}
		if len(rr.Name.Labels) <= len(prevOwner.Labels) {
			continue
		}
		owner = rr.Name
		found = true
		break
	}
	if !found {
		return delegation{}, false
	}
	names := targetsOf(matchingNSOnly(authority, owner))
	if len(names) == 0 {
		return delegation{}, false
	}
	return delegation{owner: owner, nsNames: names}, true
}

func matchingNSOnly(rrs []wire.RR, owner wire.Name) []wire.RR {
	var out []wire.RR
	for _, rr := range rrs {
		if rr.Type == protocol.TypeNS && rr.Name.Equal(owner) {
			out = append(out, rr)
		}
	}
	return out
}

// cacheResponse stores every RR from resp that lies in zoneOrigin's
// bailiwick, rejecting anything an upstream server tried to plant
// outside the zone it is authoritative for.
func (r *Recursive) cacheResponse(resp *wire.Message, zoneOrigin wire.Name) {
	for _, section := range [][]wire.RR{resp.Answers, resp.Authority, resp.Additional} {
		for _, rr := range section {
			if !inBailiwick(rr.Name, zoneOrigin) {
				continue
			}
			r.Cache.Put(rr)
		}
	}
}

// candidateAddresses resolves every NS name in deleg to an address,
// preferring cached/glue addresses and falling back to a bounded
// recursive A lookup for names this resolver has no address for yet.
func (r *Recursive) candidateAddresses(ctx context.Context, deleg delegation, depth int) []net.IP {
	var out []net.IP
	hints := r.Store.HintNS()
	for _, ns := range deleg.nsNames {
		if rrs := r.Cache.Get(ns, protocol.TypeA, protocol.ClassIN); len(rrs) > 0 {
			out = append(out, addrsOf(rrs)...)
			continue
		}
		if z, ok := r.Store.Select(ns); ok {
			if rrs, result := z.Lookup(ns, protocol.TypeA); result == zone.ResultHit {
				out = append(out, addrsOf(rrs)...)
				continue
			}
		}
		// Root-hint NS names have no upstream to query until their own
		// address is known; their glue lives alongside the hint zone's
		// NS records rather than in the cache or an authoritative zone.
		if glue, ok := glueAddress(hints, ns); ok {
			out = append(out, addrsOf([]wire.RR{glue})...)
			continue
		}
		if depth+1 > r.MaxDepth {
			continue
		}
		sub := r.resolveHops(ctx, ns, protocol.TypeA, protocol.ClassIN, depth+1, new(int))
		if sub.Code == NoError {
			out = append(out, addrsOf(sub.Answers)...)
		}
	}
	return out
}

func addrsOf(rrs []wire.RR) []net.IP {
	var out []net.IP
	for _, rr := range rrs {
		if a, ok := rr.Record.(wire.ARecord); ok {
			out = append(out, a.Addr)
		}
	}
	return out
}

// query sends (qname, qtype, class) to addr:53 over UDP, retrying over
// TCP if the response arrives truncated.
func (r *Recursive) query(ctx context.Context, addr net.IP, qname wire.Name, qtype protocol.Type, class protocol.Class) (*wire.Message, error) {
	qctx, cancel := context.WithTimeout(ctx, r.PerQuery)
	defer cancel()

	id, err := wire.NewID()
	if err != nil {
		return nil, err
	}
	query := wire.NewQuery(id, qname, qtype, class, false)
	packet, err := wire.EncodeForUDP(&query)
	if err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(r.UpstreamPort)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream port %q", r.UpstreamPort)
	}
	dest := &net.UDPAddr{IP: addr, Port: port}
	conn, err := transport.DialUDP()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Send(qctx, packet, dest); err != nil {
		return nil, err
	}
	raw, _, err := conn.Receive(qctx)
	if err != nil {
		return nil, err
	}
	resp, err := wire.ParseMessage(raw)
	if err != nil {
		return nil, err
	}
	if resp.Header.ID != id {
		return nil, fmt.Errorf("query ID mismatch")
	}
	if !resp.Header.TC() {
		return resp, nil
	}

	tcpConn, err := transport.DialTCP(qctx, net.JoinHostPort(addr.String(), r.UpstreamPort))
	if err != nil {
		return resp, nil // fall back to the truncated UDP answer
	}
	defer tcpConn.Close()
	tcpRaw, err := transport.QueryTCP(qctx, tcpConn, packet)
	if err != nil {
		return resp, nil
	}
	tcpResp, err := wire.ParseMessage(tcpRaw)
	if err != nil {
		return resp, nil
	}
	return tcpResp, nil
}
