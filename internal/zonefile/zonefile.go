// Package zonefile parses the RFC 1035 §5 zone-file subset this server
// supports: $ORIGIN, owner/TTL/class inheritance, parenthesized groups,
// and quoted strings with backslash escapes. $INCLUDE and $TTL are
// rejected.
package zonefile

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
	"github.com/hearthdns/hearth/internal/zone"
)

// ParseResult is the outcome of loading one zone file.
type ParseResult struct {
	Zone   *zone.Zone
	Failed int
	Errors []error
}

// Parse reads zone-file formatted text and returns the Zone it
// describes. Relative names are completed with initialOrigin until a
// $ORIGIN directive changes it; the returned Zone's origin is the owner
// of the file's SOA record, or initialOrigin when the file has none. A
// malformed record line is skipped (counted in Failed); the rest of the
// file continues to load. $INCLUDE and $TTL lines are reported as
// errors and counted in Failed the same way.
func Parse(text string, initialOrigin wire.Name) ParseResult {
	lines, err := joinLines(text)
	if err != nil {
		return ParseResult{Zone: zone.NewZone(initialOrigin), Failed: 1, Errors: []error{err}}
	}

	z := zone.NewZone(initialOrigin)
	origin := initialOrigin
	var lastOwner wire.Name
	haveOwner := false
	var lastTTL uint32 = 3600
	haveTTL := false

	result := ParseResult{Zone: z}

	for _, ln := range lines {
		fields := tokenize(ln.text)
		if len(fields) == 0 {
			continue
		}

		if strings.HasPrefix(fields[0], "$") {
			directive := strings.ToUpper(fields[0])
			switch directive {
			case "$ORIGIN":
				if len(fields) < 2 {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Errorf("line %d: $ORIGIN needs an argument", ln.lineNo))
					continue
				}
				o, err := resolveName(fields[1], origin)
				if err != nil {
					result.Failed++
					result.Errors = append(result.Errors, fmt.Errorf("line %d: %w", ln.lineNo, err))
					continue
				}
				origin = o
				continue
			case "$INCLUDE", "$TTL":
				result.Errors = append(result.Errors, fmt.Errorf("line %d: unsupported directive %s", ln.lineNo, directive))
				result.Failed++
				continue
			default:
				result.Failed++
				result.Errors = append(result.Errors, fmt.Errorf("line %d: unknown directive %s", ln.lineNo, directive))
				continue
			}
		}

		rr, newOwner, newTTL, err := parseRecord(fields, ln.leadingSpace, origin, lastOwner, haveOwner, lastTTL, haveTTL)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("line %d: %w", ln.lineNo, err))
			continue
		}
		lastOwner, haveOwner = newOwner, true
		lastTTL, haveTTL = newTTL, true
		z.Add(rr)
		if rr.Type == protocol.TypeSOA {
			z.Origin = rr.Name
		}
	}

	return result
}

func resolveName(raw string, origin wire.Name) (wire.Name, error) {
	if raw == "@" {
		return origin, nil
	}
	if strings.HasSuffix(raw, ".") {
		return wire.NewName(raw)
	}
	relative, err := wire.NewName(raw)
	if err != nil {
		return wire.Name{}, err
	}
	return wire.Name{Labels: append(append([][]byte{}, relative.Labels...), origin.Labels...)}, nil
}

var classMnemonics = map[string]protocol.Class{"IN": protocol.ClassIN, "CS": protocol.ClassCS, "CH": protocol.ClassCH, "HS": protocol.ClassHS}

var typeMnemonics = map[string]protocol.Type{
	"A": protocol.TypeA, "NS": protocol.TypeNS, "MD": protocol.TypeMD, "MF": protocol.TypeMF,
	"CNAME": protocol.TypeCNAME, "SOA": protocol.TypeSOA, "MB": protocol.TypeMB, "MG": protocol.TypeMG,
	"MR": protocol.TypeMR, "NULL": protocol.TypeNULL, "WKS": protocol.TypeWKS, "PTR": protocol.TypePTR,
	"HINFO": protocol.TypeHINFO, "MINFO": protocol.TypeMINFO, "MX": protocol.TypeMX, "TXT": protocol.TypeTXT,
	"AAAA": protocol.TypeAAAA, "SRV": protocol.TypeSRV,
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func parseRecord(fields []string, leadingSpace bool, origin, lastOwner wire.Name, haveOwner bool, lastTTL uint32, haveTTL bool) (wire.RR, wire.Name, uint32, error) {
	idx := 0
	var owner wire.Name

	if leadingSpace {
		if !haveOwner {
			return wire.RR{}, wire.Name{}, 0, fmt.Errorf("no owner to inherit")
		}
		owner = lastOwner
	} else {
		if idx >= len(fields) {
			return wire.RR{}, wire.Name{}, 0, fmt.Errorf("missing owner")
		}
		o, err := resolveName(fields[idx], origin)
		if err != nil {
			return wire.RR{}, wire.Name{}, 0, err
		}
		owner = o
		idx++
	}

	ttl := lastTTL
	if idx < len(fields) && isAllDigits(fields[idx]) {
		v, err := strconv.ParseUint(fields[idx], 10, 32)
		if err != nil {
			return wire.RR{}, wire.Name{}, 0, fmt.Errorf("invalid TTL %q", fields[idx])
		}
		ttl = uint32(v)
		idx++
	} else if !haveTTL {
		return wire.RR{}, wire.Name{}, 0, fmt.Errorf("no TTL given or inherited")
	}

	class := protocol.ClassIN
	if idx < len(fields) {
		if c, ok := classMnemonics[strings.ToUpper(fields[idx])]; ok {
			class = c
			idx++
		}
	}

	if idx >= len(fields) {
		return wire.RR{}, wire.Name{}, 0, fmt.Errorf("missing record type")
	}
	rtype, ok := typeMnemonics[strings.ToUpper(fields[idx])]
	if !ok {
		return wire.RR{}, wire.Name{}, 0, fmt.Errorf("unknown record type %q", fields[idx])
	}
	idx++

	record, err := parseRData(rtype, fields[idx:], origin)
	if err != nil {
		return wire.RR{}, wire.Name{}, 0, err
	}
	data, err := wire.PackRecord(record)
	if err != nil {
		return wire.RR{}, wire.Name{}, 0, err
	}

	return wire.RR{Name: owner, Type: rtype, Class: class, TTL: ttl, Data: data, Record: record}, owner, ttl, nil
}

func parseRData(rtype protocol.Type, rdata []string, origin wire.Name) (wire.Record, error) {
	switch rtype {
	case protocol.TypeA:
		if len(rdata) != 1 {
			return nil, fmt.Errorf("A record needs exactly one address")
		}
		ip := net.ParseIP(rdata[0]).To4()
		if ip == nil {
			return nil, fmt.Errorf("invalid IPv4 address %q", rdata[0])
		}
		return wire.ARecord{Addr: ip}, nil

	case protocol.TypeAAAA:
		if len(rdata) != 1 {
			return nil, fmt.Errorf("AAAA record needs exactly one address")
		}
		ip := net.ParseIP(rdata[0])
		if ip == nil || ip.To4() != nil {
			return nil, fmt.Errorf("invalid IPv6 address %q", rdata[0])
		}
		return wire.AAAARecord{Addr: ip}, nil

	case protocol.TypeNS, protocol.TypeCNAME, protocol.TypePTR, protocol.TypeMB, protocol.TypeMD, protocol.TypeMF, protocol.TypeMG, protocol.TypeMR:
		if len(rdata) != 1 {
			return nil, fmt.Errorf("%s record needs exactly one name", rtype)
		}
		target, err := resolveName(rdata[0], origin)
		if err != nil {
			return nil, err
		}
		return wire.NameRecord{Target: target}, nil

	case protocol.TypeMX:
		if len(rdata) != 2 {
			return nil, fmt.Errorf("MX record needs preference and exchange")
		}
		pref, err := strconv.ParseUint(rdata[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid MX preference %q", rdata[0])
		}
		exchange, err := resolveName(rdata[1], origin)
		if err != nil {
			return nil, err
		}
		return wire.MXRecord{Preference: uint16(pref), Exchange: exchange}, nil

	case protocol.TypeSOA:
		if len(rdata) != 7 {
			return nil, fmt.Errorf("SOA record needs mname rname serial refresh retry expire minimum")
		}
		mname, err := resolveName(rdata[0], origin)
		if err != nil {
			return nil, err
		}
		rname, err := resolveName(rdata[1], origin)
		if err != nil {
			return nil, err
		}
		nums := make([]uint32, 5)
		for i, f := range rdata[2:] {
			v, err := strconv.ParseUint(f, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid SOA field %q", f)
			}
			nums[i] = uint32(v)
		}
		return wire.SOARecord{MName: mname, RName: rname, Serial: nums[0], Refresh: nums[1], Retry: nums[2], Expire: nums[3], Minimum: nums[4]}, nil

	case protocol.TypeSRV:
		if len(rdata) != 4 {
			return nil, fmt.Errorf("SRV record needs priority weight port target")
		}
		priority, err := strconv.ParseUint(rdata[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid SRV priority %q", rdata[0])
		}
		weight, err := strconv.ParseUint(rdata[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid SRV weight %q", rdata[1])
		}
		port, err := strconv.ParseUint(rdata[2], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid SRV port %q", rdata[2])
		}
		target, err := resolveName(rdata[3], origin)
		if err != nil {
			return nil, err
		}
		return wire.SRVRecord{Priority: uint16(priority), Weight: uint16(weight), Port: uint16(port), Target: target}, nil

	case protocol.TypeTXT:
		var buf []byte
		for _, tok := range rdata {
			s := unescapeQuoted(tok)
			if len(s) > 255 {
				return nil, fmt.Errorf("TXT segment exceeds 255 bytes")
			}
			buf = append(buf, byte(len(s)))
			buf = append(buf, s...)
		}
		return wire.OpaqueRecord{Bytes: buf}, nil

	case protocol.TypeHINFO:
		var buf []byte
		for _, tok := range rdata {
			s := unescapeQuoted(tok)
			buf = append(buf, byte(len(s)))
			buf = append(buf, s...)
		}
		return wire.OpaqueRecord{Bytes: buf}, nil

	default:
		var buf []byte
		for _, tok := range rdata {
			buf = append(buf, []byte(unescapeQuoted(tok))...)
		}
		return wire.OpaqueRecord{Bytes: buf}, nil
	}
}
