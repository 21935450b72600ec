package wire

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/hearthdns/hearth/internal/errors"
	"github.com/hearthdns/hearth/internal/protocol"
)

var randRead = rand.Read

// Encoder serializes a Message to wire format, applying name compression
// per RFC 1035 §4.1.4: every name it writes is checked against the set of
// names already written at this position, and a suffix match becomes a
// pointer instead of being spelled out again.
type Encoder struct {
	buf    []byte
	names  map[string]int // canonical dotted name -> offset it starts at
}

// NewEncoder returns an Encoder with buf as its backing storage,
// preallocated to cap.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity), names: make(map[string]int)}
}

// Bytes returns the encoded message so far.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) writeBytes(b []byte) { e.buf = append(e.buf, b...) }

func (e *Encoder) writeUint16(v uint16) {
	e.buf = append(e.buf, byte(v>>8), byte(v))
}

func (e *Encoder) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// writeName writes name at the encoder's current position. When
// compress is true and a suffix of name (down to and including the full
// name) was previously written at a reachable offset (<= 0x3FFF), that
// suffix is replaced by a pointer.
func (e *Encoder) writeName(name Name, compress bool) error {
	labels := name.Labels
	for i := 0; i <= len(labels); i++ {
		suffix := Name{Labels: labels[i:]}
		if compress {
			if off, ok := e.names[suffix.Key()]; ok && off <= protocol.CompressionPointerMax {
				ptr := uint16(off) | uint16(protocol.CompressionPointerMask)<<8
				e.writeUint16(ptr)
				return nil
			}
		}
		if i == len(labels) {
			break
		}
		if compress && e.names != nil && len(e.buf) <= protocol.CompressionPointerMax {
			e.names[suffix.Key()] = len(e.buf)
		}
		label := labels[i]
		if len(label) > protocol.MaxLabelLength {
			return &errors.ValidationError{Field: "name", Value: name.String(), Message: "label exceeds 63 bytes"}
		}
		e.buf = append(e.buf, byte(len(label)))
		e.buf = append(e.buf, label...)
	}
	e.buf = append(e.buf, 0)
	return nil
}

// EncodeMessage serializes msg in its entirety.
func EncodeMessage(msg *Message) ([]byte, error) {
	msg.Header.QDCount = uint16(len(msg.Questions))
	msg.Header.ANCount = uint16(len(msg.Answers))
	msg.Header.NSCount = uint16(len(msg.Authority))
	msg.Header.ARCount = uint16(len(msg.Additional))

	enc := NewEncoder(512)
	enc.writeHeader(msg.Header)

	for _, q := range msg.Questions {
		if err := enc.writeName(q.Name, true); err != nil {
			return nil, err
		}
		enc.writeUint16(uint16(q.Type))
		enc.writeUint16(uint16(q.Class))
	}

	for _, section := range [][]RR{msg.Answers, msg.Authority, msg.Additional} {
		for _, rr := range section {
			if err := enc.writeRR(rr); err != nil {
				return nil, err
			}
		}
	}

	return enc.Bytes(), nil
}

func (e *Encoder) writeHeader(h Header) {
	e.writeUint16(h.ID)
	e.writeUint16(h.Flags)
	e.writeUint16(h.QDCount)
	e.writeUint16(h.ANCount)
	e.writeUint16(h.NSCount)
	e.writeUint16(h.ARCount)
}

func (e *Encoder) writeRR(rr RR) error {
	if err := e.writeName(rr.Name, true); err != nil {
		return err
	}
	e.writeUint16(uint16(rr.Type))
	e.writeUint16(uint16(rr.Class))
	e.writeUint32(rr.TTL)

	lenPos := len(e.buf)
	e.writeUint16(0) // RDLENGTH placeholder

	rdataStart := len(e.buf)
	if rr.Record != nil {
		if err := rr.Record.Pack(e); err != nil {
			return err
		}
	} else {
		e.writeBytes(rr.Data)
	}
	rdlen := len(e.buf) - rdataStart
	if rdlen > 0xFFFF {
		return &errors.ValidationError{Field: "RDATA", Value: rdlen, Message: "RDATA exceeds 65535 bytes"}
	}
	binary.BigEndian.PutUint16(e.buf[lenPos:lenPos+2], uint16(rdlen))
	return nil
}

// NewID returns a query ID drawn from a cryptographically random source,
// matching the entropy expectations of RFC 5452 §9.
func NewID() (uint16, error) {
	var b [2]byte
	if _, err := randRead(b[:]); err != nil {
		return 0, &errors.NetworkError{Operation: "generate query id", Err: err}
	}
	return binary.BigEndian.Uint16(b[:]), nil
}
