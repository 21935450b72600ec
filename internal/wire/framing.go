package wire

import (
	"encoding/binary"
	"io"

	"github.com/hearthdns/hearth/internal/errors"
	"github.com/hearthdns/hearth/internal/protocol"
)

// EncodeForUDP serializes msg and, if it would exceed the 512-byte
// classic UDP limit, drops answer/authority/additional records from the
// tail and sets the TC bit per RFC 1035 §4.2.1, re-encoding the trimmed
// message so its counts stay consistent with its content.
func EncodeForUDP(msg *Message) ([]byte, error) {
	encoded, err := EncodeMessage(msg)
	if err != nil {
		return nil, err
	}
	if len(encoded) <= protocol.MaxUDPMessage {
		return encoded, nil
	}

	trimmed := *msg
	trimmed.Header.SetFlag(protocol.FlagTC, true)
	trimmed.Additional = nil
	trimmed.Authority = nil

	for len(trimmed.Answers) > 0 {
		encoded, err = EncodeMessage(&trimmed)
		if err != nil {
			return nil, err
		}
		if len(encoded) <= protocol.MaxUDPMessage {
			return encoded, nil
		}
		trimmed.Answers = trimmed.Answers[:len(trimmed.Answers)-1]
	}

	trimmed.Header.SetFlag(protocol.FlagTC, true)
	return EncodeMessage(&trimmed)
}

// ReadTCPMessage reads one length-prefixed DNS message from r per
// RFC 1035 §4.2.2: a 2-byte big-endian length followed by that many
// message bytes.
func ReadTCPMessage(r io.Reader) ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(lenBuf[:])
	if length == 0 {
		return nil, &errors.WireFormatError{Operation: "read TCP message", Message: "zero-length message"}
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteTCPMessage writes msg to w with its 2-byte length prefix.
func WriteTCPMessage(w io.Writer, msg []byte) error {
	if len(msg) > 0xFFFF {
		return &errors.ValidationError{Field: "message", Value: len(msg), Message: "exceeds 65535-byte TCP message limit"}
	}
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(msg)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(msg)
	return err
}
