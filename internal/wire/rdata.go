package wire

import (
	"encoding/binary"
	"net"

	"github.com/hearthdns/hearth/internal/errors"
	"github.com/hearthdns/hearth/internal/protocol"
)

// Record is the typed decoding of an RR's RDATA. Pack appends the wire
// encoding of the RDATA (with any embedded name resolved through enc for
// compression) and returns it.
type Record interface {
	Pack(enc *Encoder) error
}

// ARecord is an A record: a 4-byte IPv4 address.
type ARecord struct{ Addr net.IP }

func (r ARecord) Pack(enc *Encoder) error {
	ip4 := r.Addr.To4()
	if ip4 == nil {
		return &errors.ValidationError{Field: "A.Addr", Value: r.Addr.String(), Message: "not an IPv4 address"}
	}
	enc.writeBytes(ip4)
	return nil
}

// AAAARecord is an AAAA record: a 16-byte IPv6 address.
type AAAARecord struct{ Addr net.IP }

func (r AAAARecord) Pack(enc *Encoder) error {
	ip16 := r.Addr.To16()
	if ip16 == nil || r.Addr.To4() != nil {
		return &errors.ValidationError{Field: "AAAA.Addr", Value: r.Addr.String(), Message: "not an IPv6 address"}
	}
	enc.writeBytes(ip16)
	return nil
}

// NameRecord covers every RDATA that is exactly one domain name: NS,
// CNAME, PTR, and the obsolete MB/MD/MF/MG/MR mailbox types.
type NameRecord struct{ Target Name }

func (r NameRecord) Pack(enc *Encoder) error {
	return enc.writeName(r.Target, true)
}

// MXRecord is a mail-exchange record per RFC 1035 §3.3.9.
type MXRecord struct {
	Preference uint16
	Exchange   Name
}

func (r MXRecord) Pack(enc *Encoder) error {
	enc.writeUint16(r.Preference)
	return enc.writeName(r.Exchange, true)
}

// SOARecord is a start-of-authority record per RFC 1035 §3.3.13.
type SOARecord struct {
	MName   Name
	RName   Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r SOARecord) Pack(enc *Encoder) error {
	if err := enc.writeName(r.MName, true); err != nil {
		return err
	}
	if err := enc.writeName(r.RName, true); err != nil {
		return err
	}
	enc.writeUint32(r.Serial)
	enc.writeUint32(r.Refresh)
	enc.writeUint32(r.Retry)
	enc.writeUint32(r.Expire)
	enc.writeUint32(r.Minimum)
	return nil
}

// SRVRecord is a service location record per RFC 2782. The target name is
// never compressed on the wire, by convention of that RFC.
type SRVRecord struct {
	Priority uint16
	Weight   uint16
	Port     uint16
	Target   Name
}

func (r SRVRecord) Pack(enc *Encoder) error {
	enc.writeUint16(r.Priority)
	enc.writeUint16(r.Weight)
	enc.writeUint16(r.Port)
	return enc.writeName(r.Target, false)
}

// OpaqueRecord covers RDATA this resolver never interprets structurally:
// TXT, HINFO, NULL, WKS. The raw bytes are stored and replayed verbatim.
type OpaqueRecord struct{ Bytes []byte }

func (r OpaqueRecord) Pack(enc *Encoder) error {
	enc.writeBytes(r.Bytes)
	return nil
}

// UnknownRecord is RDATA for a type this resolver does not recognize at
// all. It is retained so the record can be reproduced byte-for-byte, e.g.
// when relaying an additional-section record from an upstream answer.
type UnknownRecord struct{ Bytes []byte }

func (r UnknownRecord) Pack(enc *Encoder) error {
	enc.writeBytes(r.Bytes)
	return nil
}

// PackRecord serializes rec to its canonical RDATA bytes, uncompressed.
// Callers that construct an RR directly from a typed Record (the
// zone-file and hosts-file parsers) use this to populate RR.Data, since
// zone and cache deduplication compare RDATA by those raw bytes, not by
// the typed Record value.
func PackRecord(rec Record) ([]byte, error) {
	enc := &Encoder{buf: make([]byte, 0, 64)} // no name table: nothing is compressed
	if err := rec.Pack(enc); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// DecodeRDATA interprets rdata (already extracted from msg at
// [rdataOffset, rdataOffset+len(rdata))) into a typed Record. msg and
// rdataOffset are needed because PTR/CNAME/NS/MX/SOA targets may be
// compression pointers that reach outside the RDATA slice itself.
func DecodeRDATA(msg []byte, rdataOffset int, rtype protocol.Type, rdata []byte) (Record, error) {
	switch {
	case rtype == protocol.TypeA:
		if len(rdata) != 4 {
			return nil, &errors.WireFormatError{Operation: "decode A", Message: "RDATA must be 4 bytes"}
		}
		return ARecord{Addr: net.IPv4(rdata[0], rdata[1], rdata[2], rdata[3])}, nil

	case rtype == protocol.TypeAAAA:
		if len(rdata) != 16 {
			return nil, &errors.WireFormatError{Operation: "decode AAAA", Message: "RDATA must be 16 bytes"}
		}
		ip := make(net.IP, 16)
		copy(ip, rdata)
		return AAAARecord{Addr: ip}, nil

	case rtype.IsDomainNameOnly():
		name, _, err := ParseName(msg, rdataOffset)
		if err != nil {
			return nil, err
		}
		return NameRecord{Target: name}, nil

	case rtype == protocol.TypeMX:
		if len(rdata) < 3 {
			return nil, &errors.WireFormatError{Operation: "decode MX", Message: "truncated RDATA"}
		}
		name, _, err := ParseName(msg, rdataOffset+2)
		if err != nil {
			return nil, err
		}
		return MXRecord{Preference: binary.BigEndian.Uint16(rdata[0:2]), Exchange: name}, nil

	case rtype == protocol.TypeSOA:
		mname, next, err := ParseName(msg, rdataOffset)
		if err != nil {
			return nil, err
		}
		rname, next, err := ParseName(msg, next)
		if err != nil {
			return nil, err
		}
		fixedStart := next - rdataOffset
		if fixedStart+20 > len(rdata) {
			return nil, &errors.WireFormatError{Operation: "decode SOA", Message: "truncated fixed fields"}
		}
		fixed := rdata[fixedStart:]
		return SOARecord{
			MName:   mname,
			RName:   rname,
			Serial:  binary.BigEndian.Uint32(fixed[0:4]),
			Refresh: binary.BigEndian.Uint32(fixed[4:8]),
			Retry:   binary.BigEndian.Uint32(fixed[8:12]),
			Expire:  binary.BigEndian.Uint32(fixed[12:16]),
			Minimum: binary.BigEndian.Uint32(fixed[16:20]),
		}, nil

	case rtype == protocol.TypeSRV:
		if len(rdata) < 6 {
			return nil, &errors.WireFormatError{Operation: "decode SRV", Message: "truncated RDATA"}
		}
		target, _, err := ParseName(msg, rdataOffset+6)
		if err != nil {
			return nil, err
		}
		return SRVRecord{
			Priority: binary.BigEndian.Uint16(rdata[0:2]),
			Weight:   binary.BigEndian.Uint16(rdata[2:4]),
			Port:     binary.BigEndian.Uint16(rdata[4:6]),
			Target:   target,
		}, nil

	case rtype.IsOpaque():
		cp := make([]byte, len(rdata))
		copy(cp, rdata)
		return OpaqueRecord{Bytes: cp}, nil

	default:
		cp := make([]byte, len(rdata))
		copy(cp, rdata)
		return UnknownRecord{Bytes: cp}, nil
	}
}
