// Package resolver implements the non-recursive local resolver and the
// iterative recursive resolver.
package resolver

import (
	"github.com/hearthdns/hearth/internal/protocol"
	"github.com/hearthdns/hearth/internal/wire"
)

// Code classifies the outcome of a resolution attempt.
type Code int

const (
	// NoError means Answers holds a usable (possibly empty-for-RD0) result.
	NoError Code = iota
	// NXDomain means the queried name does not exist.
	NXDomain
	// NoData means the name exists but not with the requested type.
	NoData
	// ServFail covers CNAME loops, upstream exhaustion, and internal failure.
	ServFail
	// NoLocalAnswer means the local resolver has nothing to say and the
	// caller should escalate to recursive resolution.
	NoLocalAnswer
)

// Answer is the result of a local or recursive resolution.
type Answer struct {
	Code          Code
	Answers       []wire.RR
	Authority     []wire.RR // SOA on NODATA/NXDOMAIN, or delegation NS mid-recursion
	Authoritative bool
}

const maxCNAMEHops = 16

// rcodeFor maps a Code to the wire RCODE the front-end should send.
func rcodeFor(c Code) protocol.RCode {
	switch c {
	case NXDomain:
		return protocol.RCodeNameError
	case ServFail:
		return protocol.RCodeServerFailure
	default:
		return protocol.RCodeSuccess
	}
}

// RCode exposes rcodeFor for callers outside this package (the server
// front-end, when assembling the outbound header).
func (a Answer) RCode() protocol.RCode { return rcodeFor(a.Code) }
