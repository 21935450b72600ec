package wire

import (
	"encoding/binary"

	"github.com/hearthdns/hearth/internal/errors"
	"github.com/hearthdns/hearth/internal/protocol"
)

func typeOf(v uint16) protocol.Type   { return protocol.Type(v) }
func classOf(v uint16) protocol.Class { return protocol.Class(v) }

// ParseMessage decodes a complete DNS message per RFC 1035 §4.1, decoding
// every section's compressed names and typed RDATA.
func ParseMessage(msg []byte) (*Message, error) {
	header, err := parseHeader(msg)
	if err != nil {
		return nil, err
	}

	offset := 12

	questions := make([]Question, 0, header.QDCount)
	for i := uint16(0); i < header.QDCount; i++ {
		q, next, err := parseQuestion(msg, offset)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
		offset = next
	}

	answers, offset, err := parseRRSection(msg, offset, header.ANCount)
	if err != nil {
		return nil, err
	}
	authority, offset, err := parseRRSection(msg, offset, header.NSCount)
	if err != nil {
		return nil, err
	}
	additional, _, err := parseRRSection(msg, offset, header.ARCount)
	if err != nil {
		return nil, err
	}

	return &Message{
		Header:     header,
		Questions:  questions,
		Answers:    answers,
		Authority:  authority,
		Additional: additional,
	}, nil
}

func parseHeader(msg []byte) (Header, error) {
	if len(msg) < 12 {
		return Header{}, &errors.WireFormatError{Operation: "parse header", Offset: 0, Message: "message shorter than 12-byte header"}
	}
	return Header{
		ID:      binary.BigEndian.Uint16(msg[0:2]),
		Flags:   binary.BigEndian.Uint16(msg[2:4]),
		QDCount: binary.BigEndian.Uint16(msg[4:6]),
		ANCount: binary.BigEndian.Uint16(msg[6:8]),
		NSCount: binary.BigEndian.Uint16(msg[8:10]),
		ARCount: binary.BigEndian.Uint16(msg[10:12]),
	}, nil
}

func parseQuestion(msg []byte, offset int) (Question, int, error) {
	name, next, err := ParseName(msg, offset)
	if err != nil {
		return Question{}, offset, err
	}
	if next+4 > len(msg) {
		return Question{}, offset, &errors.WireFormatError{Operation: "parse question", Offset: next, Message: "truncated QTYPE/QCLASS"}
	}
	qtype := binary.BigEndian.Uint16(msg[next : next+2])
	qclass := binary.BigEndian.Uint16(msg[next+2 : next+4])
	return Question{Name: name, Type: typeOf(qtype), Class: classOf(qclass)}, next + 4, nil
}

func parseRRSection(msg []byte, offset int, count uint16) ([]RR, int, error) {
	rrs := make([]RR, 0, count)
	for i := uint16(0); i < count; i++ {
		rr, next, err := parseRR(msg, offset)
		if err != nil {
			return nil, offset, err
		}
		rrs = append(rrs, rr)
		offset = next
	}
	return rrs, offset, nil
}

func parseRR(msg []byte, offset int) (RR, int, error) {
	name, next, err := ParseName(msg, offset)
	if err != nil {
		return RR{}, offset, err
	}
	if next+10 > len(msg) {
		return RR{}, offset, &errors.WireFormatError{Operation: "parse RR", Offset: next, Message: "truncated fixed fields"}
	}
	rtype := binary.BigEndian.Uint16(msg[next : next+2])
	rclass := binary.BigEndian.Uint16(msg[next+2 : next+4])
	ttl := binary.BigEndian.Uint32(msg[next+4 : next+8])
	rdlen := binary.BigEndian.Uint16(msg[next+8 : next+10])
	rdataOffset := next + 10

	if rdataOffset+int(rdlen) > len(msg) {
		return RR{}, offset, &errors.WireFormatError{Operation: "parse RR", Offset: rdataOffset, Message: "truncated RDATA"}
	}
	rdata := msg[rdataOffset : rdataOffset+int(rdlen)]

	typ := typeOf(rtype)
	record, err := DecodeRDATA(msg, rdataOffset, typ, rdata)
	if err != nil {
		return RR{}, offset, err
	}

	// Re-pack the decoded record so Data holds its uncompressed form; the
	// raw wire bytes may contain pointers into this message.
	var data []byte
	if record != nil {
		data, err = PackRecord(record)
	}
	if record == nil || err != nil {
		data = make([]byte, len(rdata))
		copy(data, rdata)
	}

	return RR{
		Name:   name,
		Type:   typ,
		Class:  classOf(rclass),
		TTL:    ttl,
		Data:   data,
		Record: record,
	}, rdataOffset + int(rdlen), nil
}
