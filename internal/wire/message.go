package wire

import "github.com/hearthdns/hearth/internal/protocol"

// Header is the 12-byte fixed DNS message header per RFC 1035 §4.1.1.
//
//	                                1  1  1  1  1  1
//	  0  1  2  3  4  5  6  7  8  9  0  1  2  3  4  5
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                      ID                       |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA|   Z    |   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    QDCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ANCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    NSCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|                    ARCOUNT                    |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
type Header struct {
	ID      uint16
	Flags   uint16
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

func (h Header) QR() bool     { return h.Flags&protocol.FlagQR != 0 }
func (h Header) AA() bool     { return h.Flags&protocol.FlagAA != 0 }
func (h Header) TC() bool     { return h.Flags&protocol.FlagTC != 0 }
func (h Header) RD() bool     { return h.Flags&protocol.FlagRD != 0 }
func (h Header) RA() bool     { return h.Flags&protocol.FlagRA != 0 }
func (h Header) Opcode() protocol.Opcode {
	return protocol.Opcode((h.Flags >> 11) & 0x0F)
}
func (h Header) RCode() protocol.RCode {
	return protocol.RCode(h.Flags & 0x0F)
}

func (h *Header) SetFlag(flag uint16, on bool) {
	if on {
		h.Flags |= flag
	} else {
		h.Flags &^= flag
	}
}

func (h *Header) SetOpcode(op protocol.Opcode) {
	h.Flags = (h.Flags &^ (0x0F << 11)) | (uint16(op) << 11)
}

func (h *Header) SetRCode(rc protocol.RCode) {
	h.Flags = (h.Flags &^ 0x0F) | uint16(rc)
}

// Question is a single entry of the question section per RFC 1035 §4.1.2.
type Question struct {
	Name  Name
	Type  protocol.Type
	Class protocol.Class
}

// RR is a resource record as it appears on the wire: a name/type/class/TTL
// envelope around type-specific RDATA. Data holds the already-decompressed
// RDATA bytes (any embedded name has been expanded to its full form);
// Record holds the typed decoding produced by DecodeRDATA, or nil if the
// record was only parsed structurally.
type RR struct {
	Name   Name
	Type   protocol.Type
	Class  protocol.Class
	TTL    uint32
	Data   []byte
	Record Record
}

// Message is a complete parsed or to-be-built DNS message per RFC 1035 §4.1.
type Message struct {
	Header     Header
	Questions  []Question
	Answers    []RR
	Authority  []RR
	Additional []RR
}

// NewQuery builds the skeleton of a standard query message for name/qtype,
// with RD set as requested by the caller (set for queries this resolver
// sends recursively on a client's behalf when forwarding is ever enabled;
// clear when querying authoritative upstreams iteratively).
func NewQuery(id uint16, name Name, qtype protocol.Type, qclass protocol.Class, recursionDesired bool) Message {
	h := Header{ID: id, QDCount: 1}
	h.SetOpcode(protocol.OpcodeQuery)
	h.SetFlag(protocol.FlagRD, recursionDesired)
	return Message{
		Header:    h,
		Questions: []Question{{Name: name, Type: qtype, Class: qclass}},
	}
}
