// Package transport provides the UDP and TCP plumbing the resolver uses
// both to listen for client queries and to query upstream nameservers.
package transport

import (
	"context"
	"fmt"
	"net"

	"github.com/hearthdns/hearth/internal/errors"
)

// UDPConn wraps a UDP socket used for both serving queries (bound to a
// fixed local address) and issuing upstream queries (bound ephemerally).
type UDPConn struct {
	conn *net.UDPConn
}

// ListenUDP binds a UDP socket at addr ("host:port" or ":port"), applying
// SO_REUSEADDR/SO_REUSEPORT via the platform-specific control function so
// the listener can rebind quickly across restarts.
func ListenUDP(ctx context.Context, addr string) (*UDPConn, error) {
	lc := net.ListenConfig{Control: PlatformControl}
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "listen udp", Err: err, Details: fmt.Sprintf("bind %s", addr)}
	}
	udpConn, ok := pc.(*net.UDPConn)
	if !ok {
		_ = pc.Close()
		return nil, &errors.NetworkError{Operation: "listen udp", Err: fmt.Errorf("unexpected conn type %T", pc)}
	}
	return &UDPConn{conn: udpConn}, nil
}

// DialUDP opens a UDP socket on an ephemeral local port, suitable for sending queries to
// arbitrary upstream nameservers and reading their replies.
func DialUDP() (*UDPConn, error) {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, &errors.NetworkError{Operation: "dial udp", Err: err}
	}
	return &UDPConn{conn: conn}, nil
}

// Send transmits packet to dest, honoring ctx's deadline if set.
func (u *UDPConn) Send(ctx context.Context, packet []byte, dest net.Addr) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := u.conn.SetWriteDeadline(deadline); err != nil {
			return &errors.NetworkError{Operation: "set write deadline", Err: err}
		}
	}
	n, err := u.conn.WriteTo(packet, dest)
	if err != nil {
		return &errors.NetworkError{Operation: "send udp", Err: err, Details: fmt.Sprintf("to %s", dest)}
	}
	if n != len(packet) {
		return &errors.NetworkError{Operation: "send udp", Err: fmt.Errorf("partial write %d/%d bytes", n, len(packet))}
	}
	return nil
}

// Receive reads one datagram, honoring ctx's deadline if set, and returns
// a copy owned by the caller (the read buffer comes from a shared pool).
func (u *UDPConn) Receive(ctx context.Context) ([]byte, net.Addr, error) {
	select {
	case <-ctx.Done():
		return nil, nil, &errors.NetworkError{Operation: "receive udp", Err: ctx.Err()}
	default:
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := u.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, &errors.NetworkError{Operation: "set read deadline", Err: err}
		}
	}

	bufPtr := GetBuffer()
	defer PutBuffer(bufPtr)
	buf := *bufPtr

	n, srcAddr, err := u.conn.ReadFrom(buf)
	if err != nil {
		return nil, nil, &errors.NetworkError{Operation: "receive udp", Err: err}
	}

	result := make([]byte, n)
	copy(result, buf[:n])
	return result, srcAddr, nil
}

// LocalAddr returns the socket's bound local address.
func (u *UDPConn) LocalAddr() net.Addr { return u.conn.LocalAddr() }

// Close releases the socket.
func (u *UDPConn) Close() error {
	if u.conn == nil {
		return nil
	}
	if err := u.conn.Close(); err != nil {
		return &errors.NetworkError{Operation: "close udp", Err: err}
	}
	return nil
}
